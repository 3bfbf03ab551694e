package dice

import "github.com/taigrr/tumble/pkg/math3d"

// Body is the simulated die as the roll pipeline sees it. The physics world
// owns it and steps it; the pipeline writes it only when throwing.
type Body interface {
	// Alive reports whether the body still belongs to a world. Calls on a
	// dead body are ignored by the pipeline.
	Alive() bool

	Position() math3d.Vec3
	Orientation() math3d.Quat
	LinearVelocity() math3d.Vec3
	AngularVelocity() math3d.Vec3

	SetPosition(math3d.Vec3)
	SetOrientation(math3d.Quat)
	SetLinearVelocity(math3d.Vec3)
	SetAngularVelocity(math3d.Vec3)

	// Wake takes the body out of sleep so the next step moves it.
	Wake()
}

func available(b Body) bool {
	return b != nil && b.Alive()
}
