package herd

import "github.com/lao-tseu-is-alive/go-herding-simulation/pkg/geometry"

// MemberGizmo is what a debug renderer needs to draw a member and its radii.
type MemberGizmo struct {
	ID               AgentID
	Position         geometry.Vector3D
	Velocity         geometry.Vector3D
	Heading          geometry.Vector3D
	PerceptionRadius float64
	SeparationRadius float64
	FleeDistance     float64 // zero when the member has no anchor
	Fleeing          bool
}

// Gizmo returns the debug view of the member, or false if it has no position.
func (m *Member) Gizmo() (MemberGizmo, bool) {
	pos, ok := m.position()
	if !ok {
		return MemberGizmo{}, false
	}
	g := MemberGizmo{
		ID:               m.id,
		Position:         pos,
		Velocity:         m.velocity,
		Heading:          m.heading,
		PerceptionRadius: m.params.PerceptionRadius,
		SeparationRadius: m.params.SeparationRadius,
		Fleeing:          m.fleeing,
	}
	if m.anchor != nil {
		g.FleeDistance = m.params.FleeDistance
	}
	return g, true
}

// HerderGizmo is the debug view of the herder and its orbit.
type HerderGizmo struct {
	ID        AgentID
	Position  geometry.Vector3D
	Forward   geometry.Vector3D
	Direction Direction
	Orbit     Orbit
}

// Gizmo returns the debug view of the herder.
func (h *Herder) Gizmo() HerderGizmo {
	return HerderGizmo{
		ID:        h.id,
		Position:  h.Position(),
		Forward:   h.forward,
		Direction: h.direction,
		Orbit:     h.orbit,
	}
}
