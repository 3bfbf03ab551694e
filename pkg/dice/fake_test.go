package dice

import "github.com/taigrr/tumble/pkg/math3d"

// fakeBody is a scripted die. Tests set its velocities directly.
type fakeBody struct {
	dead   bool
	woken  int
	pos    math3d.Vec3
	rot    math3d.Quat
	linvel math3d.Vec3
	angvel math3d.Vec3
}

func newFakeBody() *fakeBody {
	return &fakeBody{rot: math3d.QuatIdent()}
}

func (b *fakeBody) Alive() bool                     { return !b.dead }
func (b *fakeBody) Position() math3d.Vec3           { return b.pos }
func (b *fakeBody) Orientation() math3d.Quat        { return b.rot }
func (b *fakeBody) LinearVelocity() math3d.Vec3     { return b.linvel }
func (b *fakeBody) AngularVelocity() math3d.Vec3    { return b.angvel }
func (b *fakeBody) SetPosition(v math3d.Vec3)       { b.pos = v }
func (b *fakeBody) SetOrientation(q math3d.Quat)    { b.rot = q }
func (b *fakeBody) SetLinearVelocity(v math3d.Vec3) { b.linvel = v }
func (b *fakeBody) SetAngularVelocity(v math3d.Vec3) {
	b.angvel = v
}
func (b *fakeBody) Wake() { b.woken++ }

// setSpeed gives the body the same speed on both channels.
func (b *fakeBody) setSpeed(s float64) {
	b.linvel = math3d.V3(s, 0, 0)
	b.angvel = math3d.V3(0, s, 0)
}

// recorder is a Listener that keeps every face it hears.
type recorder struct {
	faces []Face
}

func (r *recorder) OnSettled(f Face) { r.faces = append(r.faces, f) }
