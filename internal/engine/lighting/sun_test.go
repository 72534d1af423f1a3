package lighting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/meshlens/pkg/math"
)

func TestSunDirection(t *testing.T) {
	tests := []struct {
		name      string
		azimuth   float32
		elevation float32
		want      math.Vec3
	}{
		{"zenith", 0, 90, math.Vec3{Y: 1}},
		{"horizon +Z", 0, 0, math.Vec3{Z: 1}},
		{"horizon +X", 90, 0, math.Vec3{X: 1}},
		{"horizon -Z", 180, 0, math.Vec3{Z: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SunDirection(tt.azimuth, tt.elevation)
			assert.InDelta(t, tt.want.X, got.X, 1e-5)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-5)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-5)
			assert.InDelta(t, 1, got.Length(), 1e-5)
		})
	}
}
