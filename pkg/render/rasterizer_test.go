package render

import (
	"math"
	"testing"

	"github.com/taigrr/tumble/pkg/dice"
	"github.com/taigrr/tumble/pkg/math3d"
	"github.com/taigrr/tumble/pkg/models"
)

// createTestRasterizer creates a rasterizer with the camera on +Z looking at the origin.
func createTestRasterizer(width, height int) (*Rasterizer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	camera := NewCamera()
	camera.SetPosition(math3d.V3(0, 0, 10))
	camera.LookAt(math3d.Vec3{})
	camera.SetAspectRatio(float64(width) / float64(height))
	r := NewRasterizer(camera, fb)
	r.BeginFrame()
	fb.Clear(ColorBlack)
	return r, fb
}

// near compares colors allowing for rounding in the lighting math.
func near(a, b Color) bool {
	d := func(x, y uint8) bool { return int(x)-int(y) <= 2 && int(y)-int(x) <= 2 }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && a.A == b.A
}

func solid(c Color) *Texture {
	tex := NewTexture(1, 1)
	tex.SetPixel(0, 0, c)
	return tex
}

// frontTriangle is clockwise as seen from +Z.
func frontTriangle(z float64, normal math3d.Vec3) Triangle {
	return Triangle{V: [3]Vertex{
		{Position: math3d.V3(-5, -5, z), Normal: normal},
		{Position: math3d.V3(0, 5, z), Normal: normal},
		{Position: math3d.V3(5, -5, z), Normal: normal},
	}}
}

func TestEdgeCoeffs(t *testing.T) {
	// clockwise on screen: (0,0) -> (10,0) -> (0,10)
	A, B, C := edgeCoeffs(0, 0, 10, 0)
	if got := A*2 + B*2 + C; got <= 0 {
		t.Errorf("point inside scored %v, want > 0", got)
	}
	if got := A*2 + B*(-2) + C; got >= 0 {
		t.Errorf("point outside scored %v, want < 0", got)
	}
}

func TestDrawTriangleLit(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	light := math3d.V3(0, 0, 1)

	if !r.DrawTriangle(frontTriangle(0, math3d.V3(0, 0, 1)), solid(ColorWhite), light) {
		t.Fatal("front-facing triangle was not drawn")
	}
	if got := fb.GetPixel(50, 50); !near(got, ColorWhite) {
		t.Errorf("center pixel = %v, want fully lit white", got)
	}
	if got := fb.GetPixel(2, 2); got != ColorBlack {
		t.Errorf("corner pixel = %v, want untouched", got)
	}
}

func TestDrawTriangleAmbientOnly(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	// normal perpendicular to the light
	r.DrawTriangle(frontTriangle(0, math3d.V3(1, 0, 0)), solid(ColorWhite), math3d.V3(0, 0, 1))

	got := fb.GetPixel(50, 50)
	want := uint8(255 * r.Ambient)
	if diff := int(got.R) - int(want); diff < -1 || diff > 1 {
		t.Errorf("center red = %d, want about %d", got.R, want)
	}
}

func TestDrawTriangleBackfaceCulling(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	tri := frontTriangle(0, math3d.V3(0, 0, 1))
	tri.V[1], tri.V[2] = tri.V[2], tri.V[1]

	if r.DrawTriangle(tri, solid(ColorWhite), math3d.V3(0, 0, 1)) {
		t.Error("back-facing triangle reported as drawn")
	}
	if got := fb.GetPixel(50, 50); got != ColorBlack {
		t.Errorf("center pixel = %v after culled draw", got)
	}

	r.DisableBackfaceCulling = true
	if !r.DrawTriangle(tri, solid(ColorWhite), math3d.V3(0, 0, 1)) {
		t.Error("back face not drawn with culling disabled")
	}
	if got := fb.GetPixel(50, 50); got == ColorBlack {
		t.Error("center pixel untouched with culling disabled")
	}
}

func TestDrawTriangleDepth(t *testing.T) {
	for _, nearFirst := range []bool{true, false} {
		r, fb := createTestRasterizer(100, 100)
		nearTri := frontTriangle(1, math3d.V3(0, 0, 1))
		farTri := frontTriangle(-1, math3d.V3(0, 0, 1))
		red, blue := solid(RGB(255, 0, 0)), solid(RGB(0, 0, 255))
		light := math3d.V3(0, 0, 1)

		if nearFirst {
			r.DrawTriangle(nearTri, red, light)
			r.DrawTriangle(farTri, blue, light)
		} else {
			r.DrawTriangle(farTri, blue, light)
			r.DrawTriangle(nearTri, red, light)
		}
		if got := fb.GetPixel(50, 50); !near(got, RGB(255, 0, 0)) {
			t.Errorf("nearFirst=%v: center = %v, want the nearer red triangle", nearFirst, got)
		}
	}
}

func TestDrawTriangleBehindCamera(t *testing.T) {
	r, _ := createTestRasterizer(100, 100)
	if r.DrawTriangle(frontTriangle(20, math3d.V3(0, 0, 1)), solid(ColorWhite), math3d.V3(0, 0, 1)) {
		t.Error("triangle behind the camera reported as drawn")
	}
}

func TestDrawMeshDie(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.camera.SetPosition(math3d.V3(0, 0, 5))
	atlas := NewPipAtlas(48, ColorIvory, ColorBlack, ColorRed)

	if !r.DrawMesh(models.NewDie(), math3d.Identity(), atlas, math3d.V3(0, 0, 1)) {
		t.Fatal("die in view was culled")
	}
	if r.Stats.MeshesDrawn != 1 || r.Stats.Triangles != 2 {
		t.Errorf("stats = %+v, want one mesh with only the facing side's 2 triangles", r.Stats)
	}
	// +Z is face 2, whose center has no pip
	if got := fb.GetPixel(50, 50); !near(got, ColorIvory) {
		t.Errorf("center pixel = %v, want die body", got)
	}
}

func TestDrawMeshCulled(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	far := math3d.Translate(math3d.V3(100, 0, 0))

	if r.DrawMesh(models.NewDie(), far, solid(ColorWhite), math3d.V3(0, 0, 1)) {
		t.Error("die far outside the view was drawn")
	}
	if r.Stats.MeshesCulled != 1 || r.Stats.Triangles != 0 {
		t.Errorf("stats = %+v, want one culled mesh", r.Stats)
	}
	for i, p := range fb.Pixels {
		if p != ColorBlack {
			t.Fatalf("pixel %d written by culled mesh", i)
		}
	}
}

// The face dice.FaceUp turns upward is the face drawn on top.
func TestFaceUpShowsFace(t *testing.T) {
	tests := []struct {
		face  dice.Face
		ace   bool // center pixel is the red ace pip
		plain bool // center pixel is bare body
	}{
		{1, true, false},
		{2, false, true},
		{3, false, false},
		{4, false, true},
		{5, false, false},
		{6, false, true},
	}
	atlas := NewPipAtlas(48, ColorIvory, ColorBlack, ColorRed)

	for _, tt := range tests {
		t.Run(tt.face.String(), func(t *testing.T) {
			r, fb := createTestRasterizer(100, 100)
			r.camera.SetPosition(math3d.V3(0, 6, 0.5))
			rot := dice.FaceUp(tt.face)
			if got := dice.TopFace(rot); got != tt.face {
				t.Fatalf("TopFace(FaceUp(%v)) = %v", tt.face, got)
			}

			r.DrawMesh(models.NewDie(), rot.Mat4(), atlas, math3d.Up())
			got := fb.GetPixel(50, 50)
			switch {
			case tt.ace:
				if !near(got, ColorRed) {
					t.Errorf("center = %v, want ace pip", got)
				}
			case tt.plain:
				if !near(got, ColorIvory) {
					t.Errorf("center = %v, want die body", got)
				}
			default:
				if !near(got, ColorBlack) {
					t.Errorf("center = %v, want black pip", got)
				}
			}
		})
	}
}

func TestBeginFrameResetsDepth(t *testing.T) {
	r, fb := createTestRasterizer(10, 10)
	r.DrawTriangle(frontTriangle(0, math3d.V3(0, 0, 1)), solid(ColorWhite), math3d.V3(0, 0, 1))
	r.Stats.Triangles = 7

	fb.Resize(20, 8)
	r.BeginFrame()
	if len(r.zbuffer) != 160 {
		t.Fatalf("zbuffer len = %d, want 160", len(r.zbuffer))
	}
	for i, z := range r.zbuffer {
		if z != math.MaxFloat64 {
			t.Fatalf("zbuffer[%d] = %v, want MaxFloat64", i, z)
		}
	}
	if r.Stats != (Stats{}) {
		t.Errorf("Stats = %+v after BeginFrame", r.Stats)
	}
}

func BenchmarkDrawMeshDie(b *testing.B) {
	r, _ := createTestRasterizer(160, 96)
	r.camera.SetPosition(math3d.V3(3, 4, 5))
	die := models.NewDie()
	atlas := NewPipAtlas(48, ColorIvory, ColorBlack, ColorRed)
	m := math3d.QuatEuler(0.4, 0.7, 0.1).Mat4()

	for b.Loop() {
		r.BeginFrame()
		r.DrawMesh(die, m, atlas, math3d.V3(0.3, 1, 0.5))
	}
}
