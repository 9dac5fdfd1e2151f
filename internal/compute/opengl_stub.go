//go:build !opengl

package compute

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/grid"
	"github.com/san-kum/clothlab/internal/physics"
)

// OpenContext always fails in builds without the opengl tag.
func OpenContext() error {
	return dynamo.ErrBackendUnavailable
}

func CloseContext() {}

// OpenGLBackend is unavailable in builds without the opengl tag.
type OpenGLBackend struct{}

func NewOpenGLBackend() *OpenGLBackend {
	return &OpenGLBackend{}
}

func (b *OpenGLBackend) Name() string    { return "opengl (not available)" }
func (b *OpenGLBackend) Available() bool { return false }
func (b *OpenGLBackend) Cleanup()        {}

func (b *OpenGLBackend) Init(*grid.Grid) error {
	return dynamo.ErrBackendUnavailable
}

func (b *OpenGLBackend) Upload(pos, vel []mgl32.Vec3)   {}
func (b *OpenGLBackend) Dispatch(physics.Uniforms)      {}
func (b *OpenGLBackend) ReadBack(pos, vel []mgl32.Vec3) {}
