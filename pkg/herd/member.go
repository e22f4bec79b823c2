package herd

import (
	"sync/atomic"

	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/steering"
)

// headingEpsilonSq is the squared speed under which the heading is left alone.
const headingEpsilonSq = 0.01

// Forces is the per rule breakdown of a member's steering for one tick.
// Each rule is already scaled by its weight.
type Forces struct {
	Separation geometry.Vector3D
	Alignment  geometry.Vector3D
	Cohesion   geometry.Vector3D
	Flee       geometry.Vector3D
}

// Total sums the weighted rules.
func (f Forces) Total() geometry.Vector3D {
	return f.Separation.Add(f.Alignment).Add(f.Cohesion).Add(f.Flee)
}

// Member is one flocking agent. It owns its velocity; its position belongs to the Navigator.
type Member struct {
	id       AgentID
	params   MemberParams
	registry *Registry
	nav      Navigator
	anchor   Anchor
	logger   log.Logger

	velocity geometry.Vector3D
	heading  geometry.Vector3D
	forces   Forces
	fleeing  bool

	// closed may be set from the agent's goroutine while the tick runs.
	closed atomic.Bool
}

// MemberOption configures optional collaborators of a Member.
type MemberOption func(*Member)

// WithAnchor sets the herder the member flees from.
func WithAnchor(a Anchor) MemberOption {
	return func(m *Member) {
		m.anchor = a
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l log.Logger) MemberOption {
	return func(m *Member) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithVelocity sets the initial velocity, capped to MaxSpeed.
func WithVelocity(v geometry.Vector3D) MemberOption {
	return func(m *Member) {
		m.velocity = v.ClampMagnitude(m.params.MaxSpeed)
	}
}

// NewMember creates a member for the navigator agent id and registers it.
// Without an anchor the flee behavior is disabled for the member's whole life.
func NewMember(id AgentID, params MemberParams, registry *Registry, nav Navigator, opts ...MemberOption) *Member {
	m := &Member{
		id:       id,
		params:   params,
		registry: registry,
		nav:      nav,
		logger:   log.DiscardLogger,
		heading:  geometry.Vector3D{Z: 1},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.velocity.LenSqr() > headingEpsilonSq {
		m.heading = m.velocity.Normalize()
	}

	if m.anchor == nil {
		m.logger.Warnf("herd member %s has no herder anchor, flee disabled", id)
	}
	if registry != nil {
		registry.Register(m)
	}
	return m
}

// ID returns the navigator handle of the member.
func (m *Member) ID() AgentID { return m.id }

// Params returns the member tunables.
func (m *Member) Params() MemberParams { return m.params }

// Velocity returns the member velocity.
func (m *Member) Velocity() geometry.Vector3D { return m.velocity }

// Heading returns the unit facing direction.
func (m *Member) Heading() geometry.Vector3D { return m.heading }

// LastForces returns the steering breakdown computed by the last Update.
func (m *Member) LastForces() Forces { return m.forces }

// Fleeing reports whether the herder was inside flee distance at the last Update.
func (m *Member) Fleeing() bool { return m.fleeing }

// Position returns the member position as reported by the navigator.
func (m *Member) Position() (geometry.Vector3D, bool) { return m.position() }

func (m *Member) position() (geometry.Vector3D, bool) {
	if m.nav == nil {
		return geometry.Zero, false
	}
	return m.nav.Position(m.id)
}

// Close unregisters the member. It is safe to call more than once and from
// any goroutine.
func (m *Member) Close() {
	if m.closed.Swap(true) {
		return
	}
	if m.registry != nil {
		m.registry.Unregister(m)
	}
}

// Update runs one steering step of dt seconds and requests the resulting move.
// It is a no-op for a closed member or one the navigator does not know.
func (m *Member) Update(dt float64) {
	if m.closed.Load() {
		return
	}
	pos, ok := m.position()
	if !ok {
		return
	}

	m.forces = m.Forces(pos)
	m.velocity = steering.Integrate(m.velocity, m.forces.Total(), dt, m.params.MaxForce, m.params.MaxSpeed)
	m.nav.Move(m.id, m.velocity.Mul(dt))

	if m.velocity.LenSqr() > headingEpsilonSq {
		m.heading = m.velocity.Normalize()
	}
}

// Forces computes the weighted steering rules for a member standing at pos.
// Flocking rules need at least two members in the registry snapshot; flee always applies.
func (m *Member) Forces(pos geometry.Vector3D) Forces {
	var f Forces
	if m.registry != nil && m.registry.Len() > 1 {
		f.Separation = m.separation(pos).Mul(m.params.SeparationWeight)
		f.Alignment = m.alignment(pos).Mul(m.params.AlignmentWeight)
		f.Cohesion = m.cohesion(pos).Mul(m.params.CohesionWeight)
	}
	f.Flee = m.flee(pos).Mul(m.params.FleeStrength)
	return f
}

// separation steers away from neighbors inside the separation radius.
func (m *Member) separation(pos geometry.Vector3D) geometry.Vector3D {
	away := m.separationPush(pos)
	if away.LenSqr() < geometry.Epsilon {
		// No neighbor in range, or symmetric crowding that cancels out.
		return geometry.Zero
	}
	return m.steerTowards(away)
}

// separationPush averages the unit vectors pointing away from each neighbor
// in the separation radius, each divided by that neighbor's distance.
// Coincident neighbors give no direction and are skipped.
func (m *Member) separationPush(pos geometry.Vector3D) geometry.Vector3D {
	away := geometry.Zero
	count := 0
	for n := range m.registry.Neighbors(pos, m.params.SeparationRadius) {
		if n.Member == m {
			continue
		}
		offset := pos.Sub(n.Position)
		dist := offset.Len()
		if dist < geometry.Epsilon {
			continue
		}
		away = away.Add(offset.Mul(1 / (dist * dist)))
		count++
	}
	if count == 0 {
		return geometry.Zero
	}
	return away.Mul(1 / float64(count))
}

// alignment matches the average heading of neighbors in perception range.
func (m *Member) alignment(pos geometry.Vector3D) geometry.Vector3D {
	heading := geometry.Zero
	count := 0
	for n := range m.registry.Neighbors(pos, m.params.PerceptionRadius) {
		if n.Member == m {
			continue
		}
		heading = heading.Add(n.Velocity)
		count++
	}
	if count == 0 {
		return geometry.Zero
	}
	heading = heading.Mul(1 / float64(count)).Normalize()
	if heading == geometry.Zero {
		return geometry.Zero
	}
	return m.steerTowards(heading.Mul(m.params.MaxSpeed))
}

// cohesion steers toward the local center of mass of neighbors in perception range.
func (m *Member) cohesion(pos geometry.Vector3D) geometry.Vector3D {
	center := geometry.Zero
	count := 0
	for n := range m.registry.Neighbors(pos, m.params.PerceptionRadius) {
		if n.Member == m {
			continue
		}
		center = center.Add(n.Position)
		count++
	}
	if count == 0 {
		return geometry.Zero
	}
	center = center.Mul(1 / float64(count))
	desired := center.Sub(pos)
	if desired.LenSqr() < geometry.Epsilon {
		return geometry.Zero
	}
	return m.steerTowards(desired)
}

// flee runs straight away from the anchor while it is inside flee distance.
func (m *Member) flee(pos geometry.Vector3D) geometry.Vector3D {
	m.fleeing = false
	if m.anchor == nil {
		return geometry.Zero
	}
	away := pos.Sub(m.anchor.Position())
	if away.LenSqr() >= m.params.FleeDistance*m.params.FleeDistance {
		return geometry.Zero
	}
	m.fleeing = true
	if away.LenSqr() < geometry.Epsilon {
		return geometry.Zero
	}
	return m.steerTowards(away.Normalize().Mul(m.params.MaxSpeed))
}

func (m *Member) steerTowards(desired geometry.Vector3D) geometry.Vector3D {
	return steering.SteerTowards(desired, m.velocity, m.params.MaxSpeed, m.params.MaxForce)
}
