package render

import (
	"math"

	"github.com/taigrr/tumble/pkg/math3d"
)

// Vertex represents a vertex with all attributes needed for rasterization.
type Vertex struct {
	Position math3d.Vec3 // World position
	Normal   math3d.Vec3 // Normal vector (for lighting)
	UV       math3d.Vec2 // Texture coordinates
}

// Triangle represents a triangle to be rasterized.
type Triangle struct {
	V [3]Vertex
}

// MeshRenderer is the view of a mesh the rasterizer needs.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer extends MeshRenderer with bounding box support for frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (lo, hi math3d.Vec3)
}

// Stats counts what the last frame did.
type Stats struct {
	MeshesCulled int
	MeshesDrawn  int
	Triangles    int
}

// Rasterizer handles software triangle rasterization.
type Rasterizer struct {
	camera                 *Camera
	fb                     *Framebuffer
	zbuffer                []float64
	Stats                  Stats
	DisableBackfaceCulling bool // If true, render both sides of triangles
	Ambient                float64
}

// NewRasterizer creates a new rasterizer.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{camera: camera, fb: fb, Ambient: 0.3}
	r.Resize()
	return r
}

// Resize resizes the depth buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int { return r.fb.Width }

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int { return r.fb.Height }

// BeginFrame clears the depth buffer and the frame statistics.
func (r *Rasterizer) BeginFrame() {
	if len(r.zbuffer) != r.fb.Width*r.fb.Height {
		r.Resize()
	}
	// copy-doubling fill
	n := len(r.zbuffer)
	if n > 0 {
		r.zbuffer[0] = math.MaxFloat64
		for i := 1; i < n; i *= 2 {
			copy(r.zbuffer[i:], r.zbuffer[:i])
		}
	}
	r.Stats = Stats{}
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y      float64 // Screen coordinates
	Z         float64 // Depth (for Z-buffer)
	InvW      float64 // 1/W for perspective-correct interpolation
	UV        math3d.Vec2
	Intensity float64
}

// edgeCoeffs returns A, B, C for edge(x, y) = A*x + B*y + C, positive on
// the inside of a clockwise screen triangle.
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1
	B = x1 - x0
	C = x0*y1 - x1*y0
	return
}

// DrawTriangle rasterizes a textured triangle with per-vertex lighting.
// It reports whether the triangle reached the screen.
func (r *Rasterizer) DrawTriangle(tri Triangle, tex *Texture, lightDir math3d.Vec3) bool {
	var sv [3]screenVertex
	viewProj := r.camera.ViewProjectionMatrix()
	light := lightDir.Normalize()

	for i := range 3 {
		clip := viewProj.MulVec4(math3d.V4FromV3(tri.V[i].Position, 1))
		// no near-plane clipping; drop anything reaching behind the eye
		if clip.W <= r.camera.Near {
			return false
		}
		invW := 1 / clip.W
		sv[i] = screenVertex{
			X:         (clip.X*invW + 1) * 0.5 * float64(r.Width()),
			Y:         (1 - clip.Y*invW) * 0.5 * float64(r.Height()), // Y flipped
			Z:         clip.Z * invW,
			InvW:      invW,
			UV:        tri.V[i].UV,
			Intensity: r.Ambient + (1-r.Ambient)*math.Max(0, tri.V[i].Normal.Dot(light)),
		}
	}

	// Backface culling (using screen-space winding)
	area2 := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if area2 == 0 || (area2 < 0 && !r.DisableBackfaceCulling) {
		return false
	}
	if area2 < 0 {
		sv[1], sv[2] = sv[2], sv[1]
		area2 = -area2
	}

	minX := max(0, int(math.Floor(min(sv[0].X, sv[1].X, sv[2].X))))
	maxX := min(r.Width()-1, int(math.Ceil(max(sv[0].X, sv[1].X, sv[2].X))))
	minY := max(0, int(math.Floor(min(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := min(r.Height()-1, int(math.Ceil(max(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return false
	}

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1
	A0, B0, C0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	A1, B1, C1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	A2, B2, C2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)
	invArea := 1 / area2

	px, py := float64(minX)+0.5, float64(minY)+0.5
	w0Row := A0*px + B0*py + C0
	w1Row := A1*px + B1*py + C1
	w2Row := A2*px + B2*py + C2

	width := r.Width()
	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		rowOffset := y * width

		for x := minX; x <= maxX; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				bc0, bc1, bc2 := w0*invArea, w1*invArea, w2*invArea
				z := bc0*sv[0].Z + bc1*sv[1].Z + bc2*sv[2].Z

				idx := rowOffset + x
				if z < r.zbuffer[idx] {
					// Perspective-correct interpolation
					pw0, pw1, pw2 := bc0*sv[0].InvW, bc1*sv[1].InvW, bc2*sv[2].InvW
					w := 1 / (pw0 + pw1 + pw2)
					u := (pw0*sv[0].UV.X + pw1*sv[1].UV.X + pw2*sv[2].UV.X) * w
					v := (pw0*sv[0].UV.Y + pw1*sv[1].UV.Y + pw2*sv[2].UV.Y) * w
					intensity := (pw0*sv[0].Intensity + pw1*sv[1].Intensity + pw2*sv[2].Intensity) * w

					r.zbuffer[idx] = z
					r.fb.SetPixel(x, y, MultiplyColor(tex.Sample(u, v), intensity))
				}
			}
			w0 += A0
			w1 += A1
			w2 += A2
		}
		w0Row += B0
		w1Row += B1
		w2Row += B2
	}
	return true
}

// culled reports whether a mesh with bounds lies outside the view.
func (r *Rasterizer) culled(mesh MeshRenderer, transform math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}
	lo, hi := bounded.GetBounds()
	world := AABB{Min: lo, Max: hi}.Transform(transform)
	return !r.camera.Frustum().IntersectAABB(world)
}

// DrawMesh renders a textured mesh. Meshes that report bounds are skipped
// when outside the view frustum. It reports whether the mesh was drawn.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, transform math3d.Mat4, tex *Texture, lightDir math3d.Vec3) bool {
	if r.culled(mesh, transform) {
		r.Stats.MeshesCulled++
		return false
	}
	r.Stats.MeshesDrawn++

	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		var tri Triangle
		for k, idx := range face {
			p, n, uv := mesh.GetVertex(idx)
			tri.V[k] = Vertex{
				Position: transform.MulVec3(p),
				Normal:   transform.MulVec3Dir(n).Normalize(),
				UV:       uv,
			}
		}
		if r.DrawTriangle(tri, tex, lightDir) {
			r.Stats.Triangles++
		}
	}
	return true
}
