// Package steering holds the Reynolds steering primitives shared by the herd agents.
package steering

import "github.com/lao-tseu-is-alive/go-herding-simulation/pkg/geometry"

// SteerTowards returns the force that turns current into a velocity pointing
// along desired at maxSpeed, clamped to maxForce.
// Only the direction of desired matters. A zero desired vector normalizes to
// zero, so the result then simply opposes current.
func SteerTowards(desired, current geometry.Vector3D, maxSpeed, maxForce float64) geometry.Vector3D {
	steer := desired.Normalize().Mul(maxSpeed).Sub(current)
	return steer.ClampMagnitude(maxForce)
}

// Integrate applies force as an acceleration over dt and caps the resulting speed.
func Integrate(velocity, force geometry.Vector3D, dt, maxForce, maxSpeed float64) geometry.Vector3D {
	acceleration := force.ClampMagnitude(maxForce)
	return velocity.Add(acceleration.Mul(dt)).ClampMagnitude(maxSpeed)
}
