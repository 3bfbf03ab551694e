// Package dice turns a simulated six-sided die into a face value. A Roller
// throws the die, a Detector watches it come to rest, and TopFace reads which
// side points up.
//
// Nothing in this package is safe for concurrent use. The simulation loop
// that steps the physics world also drives the Roller.
package dice

import (
	"math"
	"strconv"

	"github.com/taigrr/tumble/pkg/math3d"
)

// Face is the value printed on one side of the die, 1 through 6.
type Face int

// Valid reports whether f is a real face value.
func (f Face) Valid() bool {
	return f >= 1 && f <= 6
}

// Opposite returns the value on the other side of the die.
func (f Face) Opposite() Face {
	if !f.Valid() {
		return 0
	}
	return 7 - f
}

func (f Face) String() string {
	if !f.Valid() {
		return "none"
	}
	return strconv.Itoa(int(f))
}

// FaceAxis pairs a local axis of the die with the value on that side.
type FaceAxis struct {
	Axis math3d.Vec3
	Face Face
}

// faceAxes is the face mapping. Its order is also the tie-break order of
// TopFace.
var faceAxes = [6]FaceAxis{
	{math3d.V3(1, 0, 0), 3},
	{math3d.V3(-1, 0, 0), 4},
	{math3d.V3(0, 1, 0), 1},
	{math3d.V3(0, -1, 0), 6},
	{math3d.V3(0, 0, 1), 2},
	{math3d.V3(0, 0, -1), 5},
}

// Faces returns a copy of the face mapping in resolution order.
func Faces() [6]FaceAxis {
	return faceAxes
}

// AxisOf returns the local axis carrying face f.
func AxisOf(f Face) (math3d.Vec3, bool) {
	for _, fa := range faceAxes {
		if fa.Face == f {
			return fa.Axis, true
		}
	}
	return math3d.Vec3{}, false
}

// TopFace returns the face whose axis, rotated by q, points most nearly
// along world up. Exact ties go to the earlier entry of Faces.
func TopFace(q math3d.Quat) Face {
	up := math3d.Up()
	var dots [6]float64
	for i, fa := range faceAxes {
		dots[i] = q.Rotate(fa.Axis).Dot(up)
	}
	return highest(dots)
}

// highest returns the face of the first maximal entry of dots.
func highest(dots [6]float64) Face {
	best := faceAxes[0].Face
	bestDot := math.Inf(-1)
	for i, d := range dots {
		if d > bestDot {
			best, bestDot = faceAxes[i].Face, d
		}
	}
	return best
}

// faceUpEuler holds XYZ Euler angles that bring each face to the top.
var faceUpEuler = [7]math3d.Vec3{
	1: {},
	2: {X: -math.Pi / 2},
	3: {Z: math.Pi / 2},
	4: {Z: -math.Pi / 2},
	5: {X: math.Pi / 2},
	6: {X: math.Pi},
}

// FaceUp returns a resting orientation that shows face f on top. Invalid
// faces get the identity, which shows 1.
func FaceUp(f Face) math3d.Quat {
	if !f.Valid() {
		return math3d.QuatIdent()
	}
	e := faceUpEuler[f]
	return math3d.QuatEuler(e.X, e.Y, e.Z)
}
