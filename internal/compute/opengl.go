//go:build opengl

package compute

import (
	_ "embed"
	"fmt"
	"math"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/grid"
	"github.com/san-kum/clothlab/internal/physics"
)

//go:embed shaders/cloth_step.comp
var clothStepGLSL string

const workGroupSize = 128

// SSBO binding points, matching shaders/cloth_step.comp.
const (
	bindPosIn = iota
	bindVelIn
	bindPosOut
	bindVelOut
	bindFixed
	bindSprings
)

type glBufferSet struct {
	pos uint32
	vel uint32
}

// OpenGLBackend runs the kernel as a GLSL compute shader on the context
// from OpenContext. It must be used from the thread that owns it.
type OpenGLBackend struct {
	program     uint32
	sets        [2]glBufferSet
	fixedSSBO   uint32
	springSSBO  uint32
	read        int
	rows, cols  int32
	spacing     float32
	n           int32
	levels      []int // spring offsets per strain level
	loc         map[string]int32
	staging     []float32
	initialized bool
}

func NewOpenGLBackend() *OpenGLBackend {
	return &OpenGLBackend{}
}

func (b *OpenGLBackend) Name() string { return "opengl" }

// Available opens the compute context on first use and reports whether it
// could be created.
func (b *OpenGLBackend) Available() bool { return OpenContext() == nil }

var uniformNames = []string{
	"uMode", "uRows", "uCols", "uSpacing", "uDt", "uMass", "uStiffness", "uDamping",
	"uSpringDamping", "uMaxSpeed", "uMaxStretch", "uGroundY", "uGravity", "uWind",
	"uDragged", "uDragTarget", "uLevelStart", "uLevelCount",
}

func (b *OpenGLBackend) Init(g *grid.Grid) error {
	if err := OpenContext(); err != nil {
		return err
	}
	if gl.GetString(gl.VERSION) == nil {
		return fmt.Errorf("%w: no current OpenGL context", dynamo.ErrBackendUnavailable)
	}

	program, err := createComputeProgram(clothStepGLSL)
	if err != nil {
		return err
	}
	b.program = program

	b.rows, b.cols = int32(g.Rows()), int32(g.Cols())
	b.spacing = g.Spacing()
	b.n = int32(g.Len())
	b.staging = make([]float32, 4*g.Len())

	b.loc = make(map[string]int32, len(uniformNames))
	for _, name := range uniformNames {
		b.loc[name] = gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	}

	size := 16 * g.Len()
	for k := range b.sets {
		b.sets[k].pos = newSSBO(size, nil)
		b.sets[k].vel = newSSBO(size, nil)
	}

	fixed := make([]int32, g.Len())
	for i, f := range g.FixedFlags() {
		if f {
			fixed[i] = 1
		}
	}
	b.fixedSSBO = newSSBO(4*len(fixed), gl.Ptr(fixed))

	sched := grid.NewSchedule(g.Springs(), g.Len())
	packed := make([]uint32, 4*len(sched.Springs))
	for k, s := range sched.Springs {
		packed[4*k] = uint32(int32(s.A))
		packed[4*k+1] = uint32(int32(s.B))
		packed[4*k+2] = math.Float32bits(s.Rest)
	}
	b.springSSBO = newSSBO(4*len(packed), gl.Ptr(packed))
	b.levels = sched.Offsets

	b.initialized = true

	var maxGroups [3]int32
	gl.GetIntegeri_v(gl.MAX_COMPUTE_WORK_GROUP_COUNT, 0, &maxGroups[0])
	dynamo.Logger().Info("opengl compute ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"particles", b.n, "strain_levels", sched.Levels(), "max_groups", maxGroups[0])
	return nil
}

func newSSBO(size int, data unsafe.Pointer) uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, id)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, data, gl.DYNAMIC_COPY)
	return id
}

func (b *OpenGLBackend) writeVec3(id uint32, vs []mgl32.Vec3) {
	for i, v := range vs {
		b.staging[4*i], b.staging[4*i+1], b.staging[4*i+2], b.staging[4*i+3] = v[0], v[1], v[2], 0
	}
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, id)
	gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, 0, 16*len(vs), gl.Ptr(b.staging))
}

func (b *OpenGLBackend) readVec3(id uint32, vs []mgl32.Vec3) {
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, id)
	gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, 16*len(vs), gl.Ptr(b.staging))
	for i := range vs {
		vs[i] = mgl32.Vec3{b.staging[4*i], b.staging[4*i+1], b.staging[4*i+2]}
	}
}

func (b *OpenGLBackend) Upload(pos, vel []mgl32.Vec3) {
	if !b.initialized {
		return
	}
	for k := range b.sets {
		b.writeVec3(b.sets[k].pos, pos)
		b.writeVec3(b.sets[k].vel, vel)
	}
	b.read = 0
}

func (b *OpenGLBackend) bind() {
	in, out := b.sets[b.read], b.sets[1-b.read]
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, bindPosIn, in.pos)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, bindVelIn, in.vel)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, bindPosOut, out.pos)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, bindVelOut, out.vel)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, bindFixed, b.fixedSSBO)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, bindSprings, b.springSSBO)
}

func (b *OpenGLBackend) setUniforms(u *physics.Uniforms) {
	gl.Uniform1i(b.loc["uRows"], b.rows)
	gl.Uniform1i(b.loc["uCols"], b.cols)
	gl.Uniform1f(b.loc["uSpacing"], b.spacing)
	gl.Uniform1f(b.loc["uDt"], u.Dt)
	gl.Uniform1f(b.loc["uMass"], u.Mass)
	gl.Uniform1f(b.loc["uStiffness"], u.Stiffness)
	gl.Uniform1f(b.loc["uDamping"], u.Damping)
	gl.Uniform1f(b.loc["uSpringDamping"], u.SpringDamping)
	gl.Uniform1f(b.loc["uMaxSpeed"], u.MaxSpeed)
	gl.Uniform1f(b.loc["uMaxStretch"], u.MaxStretchRatio)
	gl.Uniform1f(b.loc["uGroundY"], u.GroundY)
	gl.Uniform3f(b.loc["uGravity"], u.Gravity[0], u.Gravity[1], u.Gravity[2])
	gl.Uniform3f(b.loc["uWind"], u.Wind[0], u.Wind[1], u.Wind[2])
	gl.Uniform1i(b.loc["uDragged"], int32(u.Dragged))
	gl.Uniform3f(b.loc["uDragTarget"], u.DragTarget[0], u.DragTarget[1], u.DragTarget[2])
}

func groups(n int32) uint32 {
	return uint32((n + workGroupSize - 1) / workGroupSize)
}

func (b *OpenGLBackend) Dispatch(u physics.Uniforms) {
	if !b.initialized {
		return
	}

	gl.UseProgram(b.program)
	b.bind()
	b.setUniforms(&u)

	gl.Uniform1i(b.loc["uMode"], 0)
	gl.DispatchCompute(groups(b.n), 1, 1)
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT)

	gl.Uniform1i(b.loc["uMode"], 1)
	for k := 0; k+1 < len(b.levels); k++ {
		count := int32(b.levels[k+1] - b.levels[k])
		gl.Uniform1i(b.loc["uLevelStart"], int32(b.levels[k]))
		gl.Uniform1i(b.loc["uLevelCount"], count)
		gl.DispatchCompute(groups(count), 1, 1)
		gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT)
	}

	b.read = 1 - b.read
}

func (b *OpenGLBackend) ReadBack(pos, vel []mgl32.Vec3) {
	if !b.initialized {
		return
	}
	gl.MemoryBarrier(gl.BUFFER_UPDATE_BARRIER_BIT)
	b.readVec3(b.sets[b.read].pos, pos)
	b.readVec3(b.sets[b.read].vel, vel)
}

func (b *OpenGLBackend) Cleanup() {
	if !b.initialized {
		return
	}
	for k := range b.sets {
		gl.DeleteBuffers(1, &b.sets[k].pos)
		gl.DeleteBuffers(1, &b.sets[k].vel)
	}
	gl.DeleteBuffers(1, &b.fixedSSBO)
	gl.DeleteBuffers(1, &b.springSSBO)
	gl.DeleteProgram(b.program)
	b.initialized = false
}

func createComputeProgram(source string) (uint32, error) {
	shader := gl.CreateShader(gl.COMPUTE_SHADER)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: compile compute shader: %s", dynamo.ErrKernelInit, strings.TrimRight(log, "\x00"))
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, shader)
	gl.LinkProgram(program)
	gl.DeleteShader(shader)

	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: link compute program: %s", dynamo.ErrKernelInit, strings.TrimRight(log, "\x00"))
	}
	return program, nil
}
