// Package herd implements the flocking herd: a registry of members that compute
// separation, alignment, cohesion and flee forces, and a herder that orbits them.
//
// Nothing in this package moves an agent directly. Positions belong to a
// Navigator, which applies surface constraints to every movement request.
package herd

import (
	"github.com/google/uuid"

	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/geometry"
)

// AgentID is the opaque handle of an agent known to a Navigator.
type AgentID string

// NewAgentID returns a fresh random agent handle.
func NewAgentID() AgentID {
	return AgentID(uuid.NewString())
}

func (id AgentID) String() string {
	return string(id)
}

// Navigator is the movement provider the herd steers through.
// Calls referencing an unknown agent are no-ops that report false.
type Navigator interface {
	// Position returns the current position of the agent.
	Position(id AgentID) (geometry.Vector3D, bool)
	// Move attempts a surface constrained translation of the agent by delta.
	Move(id AgentID, delta geometry.Vector3D) bool
	// SamplePosition finds the closest walkable point within searchRadius of point.
	SamplePosition(point geometry.Vector3D, searchRadius float64) (geometry.Vector3D, bool)
	// SetDestination asks the agent to path toward point.
	SetDestination(id AgentID, point geometry.Vector3D) bool
}

// Anchor is something members flee from.
type Anchor interface {
	Position() geometry.Vector3D
}

// RequestPathTo sends the agent toward the walkable point nearest to point.
// When no walkable point lies within searchRadius the raw point is used instead.
// It returns the destination actually requested and whether it was snapped.
func RequestPathTo(nav Navigator, id AgentID, point geometry.Vector3D, searchRadius float64) (geometry.Vector3D, bool) {
	if hit, ok := nav.SamplePosition(point, searchRadius); ok {
		nav.SetDestination(id, hit)
		return hit, true
	}
	nav.SetDestination(id, point)
	return point, false
}
