package models

import (
	"github.com/taigrr/tumble/pkg/dice"
	"github.com/taigrr/tumble/pkg/math3d"
)

// Atlas layout of the die texture: face f sits in column (f-1)%3 and row
// (f-1)/3 counted from the top of the image.
const (
	AtlasColumns = 3
	AtlasRows    = 2
)

// AtlasCell returns the column and row of face f in the texture atlas.
func AtlasCell(f dice.Face) (col, row int) {
	i := int(f) - 1
	return i % AtlasColumns, i / AtlasColumns
}

// faceBasis returns in-plane axes u, v for a face with outward normal n,
// chosen so u x v = n and v points "up" on the printed face.
func faceBasis(n math3d.Vec3) (u, v math3d.Vec3) {
	switch {
	case n.Y > 0.5:
		return math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)
	case n.Y < -0.5:
		return math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)
	default:
		v = math3d.Up()
		return v.Cross(n), v
	}
}

// NewDie builds a cube spanning [-1, 1] with four vertices per side so each
// side gets its own normal and atlas cell.
func NewDie() *Mesh {
	m := NewMesh("die")
	for _, fa := range dice.Faces() {
		n := fa.Axis
		u, v := faceBasis(n)
		col, row := AtlasCell(fa.Face)

		base := len(m.Vertices)
		for _, c := range [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			s, t := c[0], c[1]
			m.Vertices = append(m.Vertices, MeshVertex{
				Position: n.Add(u.Scale(s)).Add(v.Scale(t)),
				Normal:   n,
				UV: math3d.V2(
					(float64(col)+(s+1)/2)/AtlasColumns,
					1-(float64(row)+(1-t)/2)/AtlasRows,
				),
			})
		}
		// corners above run counter-clockwise seen from outside
		m.Faces = append(m.Faces,
			Face{V: [3]int{base, base + 3, base + 2}},
			Face{V: [3]int{base, base + 2, base + 1}},
		)
	}
	m.CalculateBounds()
	return m
}
