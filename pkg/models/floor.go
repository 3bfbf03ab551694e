package models

import "github.com/taigrr/tumble/pkg/math3d"

// NewFloor builds a square grid of tiles on the y = 0 plane, centered on
// the origin and facing up. A texture repeats every repeat world units.
// Separate tiles let the rasterizer drop only the ones behind the camera.
func NewFloor(size float64, tiles int, repeat float64) *Mesh {
	m := NewMesh("floor")
	tiles = max(tiles, 1)
	step := size / float64(tiles)
	half := size / 2
	up := math3d.Up()

	for i := range tiles {
		for j := range tiles {
			x0, z0 := -half+float64(i)*step, -half+float64(j)*step
			x1, z1 := x0+step, z0+step

			base := len(m.Vertices)
			for _, p := range [4]math3d.Vec3{
				math3d.V3(x0, 0, z0),
				math3d.V3(x1, 0, z0),
				math3d.V3(x1, 0, z1),
				math3d.V3(x0, 0, z1),
			} {
				m.Vertices = append(m.Vertices, MeshVertex{
					Position: p,
					Normal:   up,
					UV:       math3d.V2(p.X/repeat, -p.Z/repeat),
				})
			}
			// clockwise seen from above
			m.Faces = append(m.Faces,
				Face{V: [3]int{base, base + 1, base + 2}},
				Face{V: [3]int{base, base + 2, base + 3}},
			)
		}
	}
	m.CalculateBounds()
	return m
}
