// Package lighting provides lighting utilities for 3D rendering.
package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshlens/pkg/math"
)

// Default sun angles used when the config leaves them unset.
const (
	DefaultSunAzimuth   = 35
	DefaultSunElevation = 60
)

// SunDirection converts azimuth/elevation angles in degrees to a light
// direction vector. Azimuth rotates around the Y axis starting at +Z,
// elevation is measured up from the horizon. The returned vector is
// normalized and points towards the sun.
func SunDirection(azimuth, elevation float32) math.Vec3 {
	az := azimuth * math32.Pi / 180
	el := elevation * math32.Pi / 180

	return math.Vec3{
		X: math32.Cos(el) * math32.Sin(az),
		Y: math32.Sin(el),
		Z: math32.Cos(el) * math32.Cos(az),
	}
}
