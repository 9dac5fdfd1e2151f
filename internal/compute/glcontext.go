//go:build opengl

package compute

import (
	"fmt"
	"sync"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/san-kum/clothlab/internal/dynamo"
)

// glContext is the process-wide compute context: a hidden 1x1 window whose
// GL 4.3 core context stays current on the thread that created it.
var glContext struct {
	mu     sync.Mutex
	window *glfw.Window
	opened bool
	err    error
}

// OpenContext creates the compute context and makes it current on the
// calling OS thread, which the caller must have locked. Later calls return
// the first result without touching the thread.
func OpenContext() error {
	glContext.mu.Lock()
	defer glContext.mu.Unlock()

	if glContext.opened {
		return glContext.err
	}
	glContext.opened = true
	glContext.window, glContext.err = newHiddenWindow()
	if glContext.err != nil {
		dynamo.Logger().Warn("opengl context unavailable", "err", glContext.err)
		return glContext.err
	}
	dynamo.Logger().Info("opengl context created", "version", gl.GoStr(gl.GetString(gl.VERSION)))
	return nil
}

func newHiddenWindow() (*glfw.Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("%w: glfw: %v", dynamo.ErrBackendUnavailable, err)
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(1, 1, "clothlab compute", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("%w: create context: %v", dynamo.ErrBackendUnavailable, err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("%w: %v", dynamo.ErrBackendUnavailable, err)
	}
	return window, nil
}

// CloseContext destroys the compute context on the thread that owns it.
// Backends using it must be cleaned up first. A later OpenContext starts
// over.
func CloseContext() {
	glContext.mu.Lock()
	defer glContext.mu.Unlock()

	if glContext.window != nil {
		glContext.window.Destroy()
		glfw.Terminate()
	}
	glContext.window = nil
	glContext.opened = false
	glContext.err = nil
}
