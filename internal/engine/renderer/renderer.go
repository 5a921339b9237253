// Package renderer draws the scene graph into an offscreen framebuffer.
package renderer

import (
	"fmt"
	"sort"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/glbview/internal/engine/camera"
	"github.com/Faultbox/glbview/internal/engine/framebuffer"
	"github.com/Faultbox/glbview/internal/engine/scene"
	"github.com/Faultbox/glbview/internal/engine/shader"
	"github.com/Faultbox/glbview/pkg/math"
)

const meshVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aTexCoord;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vNormal;
out vec2 vTexCoord;

void main() {
    vNormal = mat3(uModel) * aNormal;
    vTexCoord = aTexCoord;
    gl_Position = uProjection * uView * uModel * vec4(aPosition, 1.0);
}
`

const meshFragmentShader = `#version 410 core
in vec3 vNormal;
in vec2 vTexCoord;

uniform sampler2D uTexture;
uniform bool uUseTexture;
uniform vec3 uBaseColor;
uniform float uOpacity;
uniform vec3 uLightDir;
uniform vec3 uAmbient;
uniform vec3 uDiffuse;

out vec4 FragColor;

void main() {
    vec3 normal = normalize(vNormal);
    float diff = max(dot(normal, normalize(uLightDir)), 0.0);
    vec4 base = vec4(uBaseColor, 1.0);
    if (uUseTexture) {
        base *= texture(uTexture, vTexCoord);
    }
    vec3 lit = (uAmbient + diff * uDiffuse) * base.rgb;
    FragColor = vec4(lit, base.a * uOpacity);
}
`

const lineVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

void main() {
    gl_Position = uProjection * uView * uModel * vec4(aPosition, 1.0);
}
`

const lineFragmentShader = `#version 410 core
uniform vec4 uColor;

out vec4 FragColor;

void main() {
    FragColor = uColor;
}
`

// Init initializes the OpenGL bindings and logs the driver identity.
// Must be called once after the GL context exists and before New.
func Init(log *zap.Logger) error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("initializing OpenGL: %w", err)
	}
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)
	return nil
}

// Stats reports what the last frame drew.
type Stats struct {
	DrawCalls int
	Triangles int
	Segments  int
}

// Renderer owns the GPU resources for drawing scene objects. Geometry
// and textures are uploaded lazily on first use and freed once no
// frame references them anymore.
type Renderer struct {
	fb *framebuffer.Framebuffer

	meshProgram   uint32
	locModel      int32
	locView       int32
	locProjection int32
	locLightDir   int32
	locAmbient    int32
	locDiffuse    int32
	locBaseColor  int32
	locOpacity    int32
	locUseTexture int32
	locTexture    int32

	lineProgram  uint32
	locLineModel int32
	locLineView  int32
	locLineProj  int32
	locLineColor int32

	meshBuffers map[*scene.Mesh]*meshBuffers
	lineBuffers map[*scene.LineSet]*lineBuffers
	textures    map[*scene.Texture]*textureEntry
	generation  uint64

	fallbackTexture uint32

	background [3]float32
	fovY       float32

	stats Stats
	log   *zap.Logger
}

type meshBuffers struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
	gen        uint64
}

type lineBuffers struct {
	vao         uint32
	vbo         uint32
	vertexCount int32
	gen         uint64
}

type textureEntry struct {
	id  uint32
	gen uint64
}

var defaultMaterial = scene.NewMaterial("")

// New creates a renderer targeting an offscreen framebuffer of the
// given size. Requires a current GL context.
func New(width, height int32, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}

	fb, err := framebuffer.New(width, height)
	if err != nil {
		return nil, fmt.Errorf("framebuffer: %w", err)
	}

	r := &Renderer{
		fb:          fb,
		meshBuffers: make(map[*scene.Mesh]*meshBuffers),
		lineBuffers: make(map[*scene.LineSet]*lineBuffers),
		textures:    make(map[*scene.Texture]*textureEntry),
		background:  [3]float32{0.15, 0.15, 0.2},
		fovY:        45,
		log:         log,
	}

	r.meshProgram, err = shader.CompileProgram(meshVertexShader, meshFragmentShader)
	if err != nil {
		r.Destroy()
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	r.locModel = shader.GetUniform(r.meshProgram, "uModel")
	r.locView = shader.GetUniform(r.meshProgram, "uView")
	r.locProjection = shader.GetUniform(r.meshProgram, "uProjection")
	r.locLightDir = shader.GetUniform(r.meshProgram, "uLightDir")
	r.locAmbient = shader.GetUniform(r.meshProgram, "uAmbient")
	r.locDiffuse = shader.GetUniform(r.meshProgram, "uDiffuse")
	r.locBaseColor = shader.GetUniform(r.meshProgram, "uBaseColor")
	r.locOpacity = shader.GetUniform(r.meshProgram, "uOpacity")
	r.locUseTexture = shader.GetUniform(r.meshProgram, "uUseTexture")
	r.locTexture = shader.GetUniform(r.meshProgram, "uTexture")

	r.lineProgram, err = shader.CompileProgram(lineVertexShader, lineFragmentShader)
	if err != nil {
		r.Destroy()
		return nil, fmt.Errorf("line shader: %w", err)
	}
	r.locLineModel = shader.GetUniform(r.lineProgram, "uModel")
	r.locLineView = shader.GetUniform(r.lineProgram, "uView")
	r.locLineProj = shader.GetUniform(r.lineProgram, "uProjection")
	r.locLineColor = shader.GetUniform(r.lineProgram, "uColor")

	r.createFallbackTexture()

	return r, nil
}

func (r *Renderer) createFallbackTexture() {
	// 1x1 white, stands in for missing or broken textures.
	gl.GenTextures(1, &r.fallbackTexture)
	gl.BindTexture(gl.TEXTURE_2D, r.fallbackTexture)
	white := []uint8{255, 255, 255, 255}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, 1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&white[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
}

// SetBackground sets the clear color.
func (r *Renderer) SetBackground(red, green, blue float32) {
	r.background = [3]float32{red, green, blue}
}

// SetFOV sets the vertical field of view in degrees.
func (r *Renderer) SetFOV(degrees float32) {
	if degrees < 1 {
		degrees = 1
	}
	if degrees > 179 {
		degrees = 179
	}
	r.fovY = degrees
}

// Resize updates the framebuffer dimensions if they have changed.
func (r *Renderer) Resize(width, height int32) {
	r.fb.Resize(width, height)
}

// Size returns the framebuffer dimensions.
func (r *Renderer) Size() (width, height int32) {
	return r.fb.Size()
}

// ReadPixels reads back the last rendered frame as RGBA bytes in GL
// row order (bottom row first).
func (r *Renderer) ReadPixels() []byte {
	return r.fb.ReadPixels()
}

// Present blits the last rendered frame to the default framebuffer,
// scaled to the given window size.
func (r *Renderer) Present(width, height int32) {
	r.fb.BlitToDefault(width, height)
}

// Stats returns the counters of the last rendered frame.
func (r *Renderer) Stats() Stats {
	return r.stats
}

type meshItem struct {
	world math.Mat4
	mesh  *scene.Mesh
	depth float32
}

type lineItem struct {
	world math.Mat4
	lines *scene.LineSet
}

// Render draws the object as seen from the camera and returns the
// color texture the frame landed in. A nil object clears to the
// background color.
func (r *Renderer) Render(obj *scene.Object, cam *camera.OrbitCamera) uint32 {
	restore := r.fb.BindWithViewport()
	defer restore()

	r.fb.Clear(r.background[0], r.background[1], r.background[2], 1.0)
	r.stats = Stats{}
	r.generation++

	if obj == nil || obj.Root == nil {
		r.sweep()
		return r.fb.ColorTexture()
	}

	width, height := r.fb.Size()
	aspect := float32(width) / float32(height)
	projection := math.Perspective(math.Radians(r.fovY), aspect, 0.01, 10000.0)
	view := cam.ViewMatrix()

	var opaque, transparent []meshItem
	var lines []lineItem
	collectItems(obj.Root, math.Identity(), &opaque, &transparent, &lines)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	// Push surfaces back a touch so edge overlays at the same depth
	// win the depth test.
	gl.Enable(gl.POLYGON_OFFSET_FILL)
	gl.PolygonOffset(1, 1)

	gl.UseProgram(r.meshProgram)
	gl.UniformMatrix4fv(r.locView, 1, false, view.Ptr())
	gl.UniformMatrix4fv(r.locProjection, 1, false, projection.Ptr())
	gl.Uniform3f(r.locLightDir, 0.5, 1.0, 0.5)
	gl.Uniform3f(r.locAmbient, 0.4, 0.4, 0.4)
	gl.Uniform3f(r.locDiffuse, 0.6, 0.6, 0.6)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.Uniform1i(r.locTexture, 0)

	// Opaque surfaces draw first with blending off, so alpha has no
	// effect on them no matter what opacity the material carries.
	gl.Disable(gl.BLEND)
	for i := range opaque {
		r.drawMesh(&opaque[i])
	}

	// Transparent surfaces draw back to front with depth writes off.
	sortByViewDepth(transparent, view)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)
	for i := range transparent {
		r.drawMesh(&transparent[i])
	}
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)

	gl.Disable(gl.POLYGON_OFFSET_FILL)
	gl.Disable(gl.CULL_FACE)

	if len(lines) > 0 {
		gl.UseProgram(r.lineProgram)
		gl.UniformMatrix4fv(r.locLineView, 1, false, view.Ptr())
		gl.UniformMatrix4fv(r.locLineProj, 1, false, projection.Ptr())
		for i := range lines {
			r.drawLines(&lines[i])
		}
	}

	gl.BindVertexArray(0)

	r.sweep()
	return r.fb.ColorTexture()
}

func collectItems(n *scene.Node, parent math.Mat4, opaque, transparent *[]meshItem, lines *[]lineItem) {
	world := parent.Mul(n.LocalMatrix())

	switch {
	case n.Kind == scene.KindMesh && n.Mesh != nil:
		item := meshItem{world: world, mesh: n.Mesh}
		if n.Mesh.Material != nil && n.Mesh.Material.Transparent {
			*transparent = append(*transparent, item)
		} else {
			*opaque = append(*opaque, item)
		}
	case n.Kind == scene.KindLines && n.Lines != nil:
		*lines = append(*lines, lineItem{world: world, lines: n.Lines})
	}

	for _, c := range n.Children {
		collectItems(c, world, opaque, transparent, lines)
	}
}

// sortByViewDepth orders items farthest first. View space looks down
// -Z, so the smallest Z is the farthest surface.
func sortByViewDepth(items []meshItem, view math.Mat4) {
	for i := range items {
		c := items[i].mesh.Bounds().Center()
		p := view.Mul(items[i].world).TransformPoint([3]float32{c.X, c.Y, c.Z})
		items[i].depth = p[2]
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].depth < items[j].depth
	})
}

func (r *Renderer) drawMesh(item *meshItem) {
	mb := r.meshBufferFor(item.mesh)
	if mb == nil {
		return
	}

	mat := item.mesh.Material
	if mat == nil {
		mat = defaultMaterial
	}

	gl.UniformMatrix4fv(r.locModel, 1, false, item.world.Ptr())
	gl.Uniform3f(r.locBaseColor, mat.BaseColor[0], mat.BaseColor[1], mat.BaseColor[2])
	gl.Uniform1f(r.locOpacity, mat.Opacity)

	texID := r.fallbackTexture
	useTexture := int32(0)
	if mat.Texture != nil {
		if id := r.textureFor(mat.Texture); id != 0 {
			texID = id
			useTexture = 1
		}
	}
	gl.Uniform1i(r.locUseTexture, useTexture)
	gl.BindTexture(gl.TEXTURE_2D, texID)

	if mat.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
	}

	gl.BindVertexArray(mb.vao)
	gl.DrawElements(gl.TRIANGLES, mb.indexCount, gl.UNSIGNED_INT, nil)

	r.stats.DrawCalls++
	r.stats.Triangles += int(mb.indexCount) / 3
}

func (r *Renderer) drawLines(item *lineItem) {
	lb := r.lineBufferFor(item.lines)
	if lb == nil {
		return
	}

	c := item.lines.Color
	gl.UniformMatrix4fv(r.locLineModel, 1, false, item.world.Ptr())
	gl.Uniform4f(r.locLineColor, c[0], c[1], c[2], c[3])

	gl.BindVertexArray(lb.vao)
	gl.DrawArrays(gl.LINES, 0, lb.vertexCount)

	r.stats.DrawCalls++
	r.stats.Segments += int(lb.vertexCount) / 2
}

func (r *Renderer) meshBufferFor(mesh *scene.Mesh) *meshBuffers {
	if mb, ok := r.meshBuffers[mesh]; ok {
		mb.gen = r.generation
		return mb
	}
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return nil
	}

	mb := &meshBuffers{
		indexCount: int32(len(mesh.Indices)),
		gen:        r.generation,
	}

	gl.GenVertexArrays(1, &mb.vao)
	gl.BindVertexArray(mb.vao)

	gl.GenBuffers(1, &mb.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, mb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*4, unsafe.Pointer(&mesh.Vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &mb.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mb.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, unsafe.Pointer(&mesh.Indices[0]), gl.STATIC_DRAW)

	stride := int32(scene.VertexStride * 4)

	// Position attribute (location = 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)

	// Normal attribute (location = 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 12)
	gl.EnableVertexAttribArray(1)

	// TexCoord attribute (location = 2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 24)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)

	r.meshBuffers[mesh] = mb
	r.log.Debug("uploaded mesh",
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()),
	)
	return mb
}

func (r *Renderer) lineBufferFor(lines *scene.LineSet) *lineBuffers {
	if lb, ok := r.lineBuffers[lines]; ok {
		lb.gen = r.generation
		return lb
	}
	if len(lines.Positions) == 0 {
		return nil
	}

	lb := &lineBuffers{
		vertexCount: int32(len(lines.Positions) / 3),
		gen:         r.generation,
	}

	gl.GenVertexArrays(1, &lb.vao)
	gl.BindVertexArray(lb.vao)

	gl.GenBuffers(1, &lb.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, lb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(lines.Positions)*4, unsafe.Pointer(&lines.Positions[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 12, 0)
	gl.EnableVertexAttribArray(0)

	gl.BindVertexArray(0)

	r.lineBuffers[lines] = lb
	return lb
}

func (r *Renderer) textureFor(tex *scene.Texture) uint32 {
	if te, ok := r.textures[tex]; ok {
		te.gen = r.generation
		return te.id
	}
	if tex.Width < 1 || tex.Height < 1 || len(tex.Pixels) < tex.Width*tex.Height*4 {
		return 0
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(tex.Width), int32(tex.Height),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&tex.Pixels[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.GenerateMipmap(gl.TEXTURE_2D)

	r.textures[tex] = &textureEntry{id: id, gen: r.generation}
	r.log.Debug("uploaded texture",
		zap.Int("width", tex.Width),
		zap.Int("height", tex.Height),
	)
	return id
}

// sweep frees GPU resources that no draw touched this frame. Cloned
// scene graphs and dropped overlays fall out of the caches here.
func (r *Renderer) sweep() {
	for mesh, mb := range r.meshBuffers {
		if mb.gen != r.generation {
			gl.DeleteVertexArrays(1, &mb.vao)
			gl.DeleteBuffers(1, &mb.vbo)
			gl.DeleteBuffers(1, &mb.ebo)
			delete(r.meshBuffers, mesh)
		}
	}
	for lines, lb := range r.lineBuffers {
		if lb.gen != r.generation {
			gl.DeleteVertexArrays(1, &lb.vao)
			gl.DeleteBuffers(1, &lb.vbo)
			delete(r.lineBuffers, lines)
		}
	}
	for tex, te := range r.textures {
		if te.gen != r.generation {
			gl.DeleteTextures(1, &te.id)
			delete(r.textures, tex)
		}
	}
}

// Destroy releases all OpenGL resources.
func (r *Renderer) Destroy() {
	for _, mb := range r.meshBuffers {
		gl.DeleteVertexArrays(1, &mb.vao)
		gl.DeleteBuffers(1, &mb.vbo)
		gl.DeleteBuffers(1, &mb.ebo)
	}
	r.meshBuffers = make(map[*scene.Mesh]*meshBuffers)

	for _, lb := range r.lineBuffers {
		gl.DeleteVertexArrays(1, &lb.vao)
		gl.DeleteBuffers(1, &lb.vbo)
	}
	r.lineBuffers = make(map[*scene.LineSet]*lineBuffers)

	for _, te := range r.textures {
		gl.DeleteTextures(1, &te.id)
	}
	r.textures = make(map[*scene.Texture]*textureEntry)

	if r.fallbackTexture != 0 {
		gl.DeleteTextures(1, &r.fallbackTexture)
		r.fallbackTexture = 0
	}
	if r.meshProgram != 0 {
		gl.DeleteProgram(r.meshProgram)
		r.meshProgram = 0
	}
	if r.lineProgram != 0 {
		gl.DeleteProgram(r.lineProgram)
		r.lineProgram = 0
	}
	if r.fb != nil {
		r.fb.Destroy()
	}
}
