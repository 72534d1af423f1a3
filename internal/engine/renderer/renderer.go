// Package renderer draws the scene meshes, selection highlight and octree
// markers with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshlens/internal/engine/debug"
	"github.com/Faultbox/meshlens/internal/engine/lighting"
	"github.com/Faultbox/meshlens/internal/engine/shader"
	"github.com/Faultbox/meshlens/internal/logger"
	"github.com/Faultbox/meshlens/internal/scene"
	"github.com/Faultbox/meshlens/pkg/math"
)

var (
	meshColor   = [3]float32{0.72, 0.72, 0.78}
	markerColor = [3]float32{0, 1, 0}
	boundsColor = [3]float32{1, 0.85, 0.1}
)

// Config holds renderer configuration.
type Config struct {
	Width    int
	Height   int
	LightDir math.Vec3 // towards the light; zero uses the default sun
}

// Frame holds the per-frame camera state.
type Frame struct {
	View        math.Mat4
	Projection  math.Mat4
	ShowMarkers bool
}

// buffer is one uploaded vertex array.
type buffer struct {
	vao, vbo uint32
	count    int32
}

func (b *buffer) release() {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
	}
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
	}
	*b = buffer{}
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config

	solid *shader.Program
	lines *shader.Program

	// GPU state mirrors one scene generation and is dropped on reset.
	generation  uint64
	meshes      map[*scene.Mesh]*buffer
	markers     buffer
	markerCount int
	bounds      buffer
	boundsCount int
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	if cfg.LightDir == (math.Vec3{}) {
		cfg.LightDir = lighting.SunDirection(lighting.DefaultSunAzimuth, lighting.DefaultSunElevation)
	}
	r := &Renderer{
		config: cfg,
		meshes: make(map[*scene.Mesh]*buffer),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	var err error
	r.solid, err = shader.New(solidVertexShader, solidFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create mesh shader: %w", err)
	}
	r.lines, err = shader.New(lineVertexShader, lineFragmentShader)
	if err != nil {
		r.solid.Delete()
		return nil, fmt.Errorf("failed to create line shader: %w", err)
	}

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	r.releaseScene()
	if r.solid != nil {
		r.solid.Delete()
	}
	if r.lines != nil {
		r.lines.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns the viewport width/height ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// ReadPixels reads back the current color buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width, height = r.config.Width, r.config.Height
	pixels = make([]byte, width*height*4)
	if len(pixels) == 0 {
		return pixels, width, height
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, width, height
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	gl.BindVertexArray(0)
}

// DrawScene draws every mesh, the cumulative bounds of each load and,
// when enabled, the octree markers.
func (r *Renderer) DrawScene(sc *scene.Scene, f Frame) {
	if gen := sc.Generation(); gen != r.generation {
		r.releaseScene()
		r.generation = gen
	}
	viewProj := f.Projection.Mul(f.View)

	r.solid.Use()
	r.solid.SetMat4("uViewProj", viewProj)
	light := r.config.LightDir.Normalize()
	r.solid.SetVec3("uLightDir", [3]float32{light.X, light.Y, light.Z})
	for _, m := range sc.Meshes() {
		buf := r.meshBuffer(m)
		if buf.count == 0 {
			continue
		}

		hl := m.Highlight()
		color, emissive := meshColor, float32(0)
		if hl.Enabled {
			color, emissive = hl.Color, 1
		}
		r.solid.SetVec3("uColor", color)
		r.solid.SetFloat("uEmissive", emissive)

		if hl.Enabled && hl.Wireframe {
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		}
		gl.BindVertexArray(buf.vao)
		gl.DrawArrays(gl.TRIANGLES, 0, buf.count)
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	r.lines.Use()
	r.lines.SetMat4("uViewProj", viewProj)

	if boxes := sc.Bounds(); len(boxes) != r.boundsCount {
		r.bounds.release()
		r.bounds = upload(debug.BoxLines(boxes), 3)
		r.boundsCount = len(boxes)
	}
	r.drawLines(r.bounds, boundsColor)

	if f.ShowMarkers {
		if boxes := markerBoxes(sc); len(boxes) != r.markerCount {
			r.markers.release()
			r.markers = upload(debug.BoxLines(boxes), 3)
			r.markerCount = len(boxes)
		}
		r.drawLines(r.markers, markerColor)
	}
}

func (r *Renderer) drawLines(b buffer, color [3]float32) {
	if b.count == 0 {
		return
	}
	r.lines.SetVec3("uColor", color)
	gl.BindVertexArray(b.vao)
	gl.DrawArrays(gl.LINES, 0, b.count)
}

func (r *Renderer) meshBuffer(m *scene.Mesh) *buffer {
	if buf, ok := r.meshes[m]; ok {
		return buf
	}
	buf := upload(meshVertices(m), solidStride)
	r.meshes[m] = &buf
	logger.Debug("mesh uploaded", zap.String("mesh", m.Name()), zap.Int32("vertices", buf.count))
	return &buf
}

func (r *Renderer) releaseScene() {
	for m, buf := range r.meshes {
		buf.release()
		delete(r.meshes, m)
	}
	r.markers.release()
	r.markerCount = 0
	r.bounds.release()
	r.boundsCount = 0
}

// upload creates a VAO for interleaved float data. Attribute 0 is the
// position; with a stride of 6 attribute 1 is the normal.
func upload(data []float32, stride int) buffer {
	if len(data) == 0 {
		return buffer{}
	}

	var b buffer
	b.count = int32(len(data) / stride)

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, int32(stride*4), nil)
	gl.EnableVertexAttribArray(0)
	if stride == solidStride {
		gl.VertexAttribPointer(1, 3, gl.FLOAT, false, int32(stride*4), gl.PtrOffset(3*4))
		gl.EnableVertexAttribArray(1)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return b
}
