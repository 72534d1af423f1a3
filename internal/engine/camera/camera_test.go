package camera

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/meshlens/pkg/math"
	"github.com/Faultbox/meshlens/pkg/volume"
)

const eps = 1e-5

func near(a, b math.Vec3) bool {
	return math32.Abs(a.X-b.X) < eps && math32.Abs(a.Y-b.Y) < eps && math32.Abs(a.Z-b.Z) < eps
}

func TestForward(t *testing.T) {
	tests := []struct {
		name       string
		yaw, pitch float32
		want       math.Vec3
	}{
		{"default", 0, 0, math.Vec3{Z: -1}},
		{"turn right", math32.Pi / 2, 0, math.Vec3{X: 1}},
		{"look up", 0, math32.Pi / 2, math.Vec3{Y: 1}},
		{"turn around", math32.Pi, 0, math.Vec3{Z: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewFlyCamera()
			c.Yaw, c.Pitch = tt.yaw, tt.pitch
			if got := c.Forward(); !near(got, tt.want) {
				t.Errorf("Forward() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRightIsPerpendicular(t *testing.T) {
	c := NewFlyCamera()
	for _, yaw := range []float32{0, 0.3, 1.7, -2.2} {
		c.Yaw = yaw
		c.Pitch = 0.4
		if d := c.Forward().Dot(c.Right()); math32.Abs(d) > eps {
			t.Errorf("yaw %v: Forward·Right = %v, want 0", yaw, d)
		}
	}
}

func TestLookClampsPitch(t *testing.T) {
	c := NewFlyCamera()
	c.Look(0, -1e6)
	if c.Pitch != c.MaxPitch {
		t.Errorf("Pitch = %v, want %v", c.Pitch, c.MaxPitch)
	}
	c.Look(0, 1e6)
	if c.Pitch != -c.MaxPitch {
		t.Errorf("Pitch = %v, want %v", c.Pitch, -c.MaxPitch)
	}
}

func TestMove(t *testing.T) {
	c := NewFlyCamera()
	c.MoveSpeed = 2

	c.Move(1, 0, 0, 0.5)
	if want := (math.Vec3{Z: -1}); !near(c.Position, want) {
		t.Errorf("after forward Position = %v, want %v", c.Position, want)
	}

	c.Move(0, 1, 1, 1)
	if want := (math.Vec3{X: 2, Y: 2, Z: -1}); !near(c.Position, want) {
		t.Errorf("after strafe Position = %v, want %v", c.Position, want)
	}
}

func TestRayFollowsCamera(t *testing.T) {
	c := NewFlyCamera()
	c.Position = math.Vec3{X: 1, Y: 2, Z: 3}
	c.Yaw = math32.Pi / 2

	r := c.Ray()
	if r.Origin != c.Position {
		t.Errorf("Ray().Origin = %v, want %v", r.Origin, c.Position)
	}
	if !near(r.Direction, c.Forward()) {
		t.Errorf("Ray().Direction = %v, want %v", r.Direction, c.Forward())
	}
}

func TestFitToBounds(t *testing.T) {
	c := NewFlyCamera()
	b := volume.AABB{Min: math.Vec3{X: -1, Y: -1, Z: -1}, Max: math.Vec3{X: 3, Y: 1, Z: 1}}
	c.FitToBounds(b)

	if _, hit := c.Ray().IntersectAABB(b); !hit {
		t.Errorf("ray from fitted camera %v misses %v", c.Position, b)
	}
	if c.Position.Z <= b.Max.Z {
		t.Errorf("camera Z = %v, want in front of %v", c.Position.Z, b.Max.Z)
	}

	before := c.Position
	c.FitToBounds(volume.AABB{Min: math.Splat(1), Max: math.Splat(-1)})
	if c.Position != before {
		t.Error("FitToBounds with an inverted box should not move the camera")
	}
}
