package player

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	minPitch = -89.0
	maxPitch = 89.0
)

func (v Vec3) vec() mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

// Distance returns the Euclidean distance between two points.
func Distance(a, b Vec3) float64 {
	return a.vec().Sub(b.vec()).Len()
}

// InSphere reports whether point lies on or inside the sphere around
// center. The boundary counts as inside.
func InSphere(point, center Vec3, radius float64) bool {
	return Distance(point, center) <= radius
}

// Move returns the position after applying yaw-relative forward/strafe
// input for dt seconds at the given speed in m/s. There is no vertical
// movement; Y passes through unchanged.
func Move(pos Vec3, rot Rotation, forward, strafe, dt, speed float64) Vec3 {
	sin, cos := math.Sincos(mgl64.DegToRad(rot.Yaw))
	step := speed * dt
	return Vec3{
		X: pos.X + (sin*forward+cos*strafe)*step,
		Y: pos.Y,
		Z: pos.Z + (cos*forward-sin*strafe)*step,
	}
}

// Rotate applies pitch and yaw deltas in degrees. Pitch is clamped to
// [-89, 89]; yaw wraps into [0, 360) even for negative inputs.
func Rotate(rot Rotation, deltaPitch, deltaYaw float64) Rotation {
	return Rotation{
		Pitch: mgl64.Clamp(rot.Pitch+deltaPitch, minPitch, maxPitch),
		Yaw:   wrapDegrees(rot.Yaw + deltaYaw),
	}
}

func wrapDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}
