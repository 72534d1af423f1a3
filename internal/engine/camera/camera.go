// Package camera provides the free-flying viewer camera.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshlens/internal/picking"
	"github.com/Faultbox/meshlens/pkg/math"
	"github.com/Faultbox/meshlens/pkg/volume"
)

// FlyCamera moves freely through the scene. Yaw 0 and pitch 0 look down -Z.
type FlyCamera struct {
	Position math.Vec3
	Yaw      float32 // radians, positive turns right
	Pitch    float32 // radians, positive looks up

	FOV  float32 // vertical field of view, radians
	Near float32
	Far  float32

	MoveSpeed       float32 // units per second
	LookSensitivity float32 // radians per pixel
	MaxPitch        float32
}

// NewFlyCamera creates a camera at the origin with default settings.
func NewFlyCamera() *FlyCamera {
	return &FlyCamera{
		FOV:             math32.Pi / 4,
		Near:            0.1,
		Far:             10000,
		MoveSpeed:       5,
		LookSensitivity: 0.003,
		MaxPitch:        1.55,
	}
}

// Forward returns the unit view direction.
func (c *FlyCamera) Forward() math.Vec3 {
	sy, cy := math32.Sincos(c.Yaw)
	sp, cp := math32.Sincos(c.Pitch)
	return math.Vec3{X: sy * cp, Y: sp, Z: -cy * cp}
}

// Right returns the unit direction to the camera's right on the XZ plane.
func (c *FlyCamera) Right() math.Vec3 {
	sy, cy := math32.Sincos(c.Yaw)
	return math.Vec3{X: cy, Z: sy}
}

// Ray returns the view ray from the camera position along Forward.
func (c *FlyCamera) Ray() picking.Ray {
	return picking.NewRay(c.Position, c.Forward())
}

// ViewMatrix returns the view matrix for this camera.
func (c *FlyCamera) ViewMatrix() math.Mat4 {
	up := math.Vec3{Y: 1}
	return math.LookAt(c.Position, c.Position.Add(c.Forward()), up)
}

// ProjectionMatrix returns the perspective projection for aspect (width/height).
func (c *FlyCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	return math.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// Look turns the camera by a mouse delta in pixels.
func (c *FlyCamera) Look(dx, dy float32) {
	c.Yaw += dx * c.LookSensitivity
	c.Pitch -= dy * c.LookSensitivity

	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}
	if c.Pitch < -c.MaxPitch {
		c.Pitch = -c.MaxPitch
	}
}

// Move translates the camera. forward follows the view direction, right
// strafes on the XZ plane and up moves along world Y. dt is in seconds.
func (c *FlyCamera) Move(forward, right, up, dt float32) {
	step := c.MoveSpeed * dt
	delta := c.Forward().Scale(forward).
		Add(c.Right().Scale(right)).
		Add(math.Vec3{Y: up})
	c.Position = c.Position.Add(delta.Scale(step))
}

// FitToBounds places the camera in front of b (on its +Z side) so the whole
// box is in view, looking down -Z. Move speed scales with the box size.
func (c *FlyCamera) FitToBounds(b volume.AABB) {
	if !b.Valid() {
		return
	}
	center := b.Center()
	radius := b.Size().Length() / 2
	if radius == 0 {
		radius = 1
	}
	dist := radius / math32.Tan(c.FOV/2)

	c.Position = center.Add(math.Vec3{Z: dist * 1.1})
	c.Yaw = 0
	c.Pitch = 0
	c.MoveSpeed = radius
	if c.Far < dist*4 {
		c.Far = dist * 4
	}
}
