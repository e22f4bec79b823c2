package herd

import (
	"math"

	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/geometry"
)

// nearZeroRadius is the radius under which the orbit runs at max angular speed.
const nearZeroRadius = 0.01

// Direction is the orbit direction of the herder.
type Direction int

const (
	Clockwise Direction = iota
	CounterClockwise
)

// Sign is +1 for Clockwise and -1 for CounterClockwise.
func (d Direction) Sign() float64 {
	if d == CounterClockwise {
		return -1
	}
	return 1
}

// Toggled returns the opposite direction.
func (d Direction) Toggled() Direction {
	if d == Clockwise {
		return CounterClockwise
	}
	return Clockwise
}

func (d Direction) String() string {
	if d == CounterClockwise {
		return "counter-clockwise"
	}
	return "clockwise"
}

// Orbit is the circle the herder followed during its last Update.
type Orbit struct {
	Center       geometry.Vector3D
	Radius       float64
	AngularSpeed float64
	Angle        float64
	Target       geometry.Vector3D // raw point on the circle
	Destination  geometry.Vector3D // point actually requested from the navigator
	Snapped      bool              // Destination is a sampled walkable point
}

// Herder circles the herd centroid at a roughly constant linear speed.
// It also acts as the Anchor members flee from.
type Herder struct {
	id       AgentID
	params   HerderParams
	registry *Registry
	nav      Navigator
	logger   log.Logger

	angle     float64
	direction Direction
	forward   geometry.Vector3D
	lastPos   geometry.Vector3D
	orbit     Orbit
}

var _ Anchor = (*Herder)(nil)

// NewHerder creates the herder for the navigator agent id, orbiting clockwise.
// A nil registry leaves the herder circling in front of itself.
func NewHerder(id AgentID, params HerderParams, registry *Registry, nav Navigator, logger log.Logger) *Herder {
	if logger == nil {
		logger = log.DiscardLogger
	}
	h := &Herder{
		id:        id,
		params:    params,
		registry:  registry,
		nav:       nav,
		logger:    logger,
		direction: Clockwise,
		forward:   geometry.Vector3D{Z: 1},
	}
	if registry == nil {
		logger.Warnf("herder %s has no herd registry, herding behavior will be limited", id)
	}
	if pos, ok := nav.Position(id); ok {
		h.lastPos = pos
	} else {
		logger.Warnf("herder %s is unknown to the navigator", id)
	}
	return h
}

// ID returns the navigator handle of the herder.
func (h *Herder) ID() AgentID { return h.id }

// Params returns the herder tunables.
func (h *Herder) Params() HerderParams { return h.params }

// Direction returns the current orbit direction.
func (h *Herder) Direction() Direction { return h.direction }

// Angle returns the current orbit angle in [0, 2π).
func (h *Herder) Angle() float64 { return h.angle }

// Forward returns the unit direction the herder is facing.
func (h *Herder) Forward() geometry.Vector3D { return h.forward }

// Orbit returns the orbit computed by the last Update.
func (h *Herder) Orbit() Orbit { return h.orbit }

// ToggleDirection reverses the orbit direction. It is driven by an edge trigger.
func (h *Herder) ToggleDirection() {
	h.direction = h.direction.Toggled()
	h.logger.Debugf("herder %s now orbiting %s", h.id, h.direction)
}

// Position returns the herder position, or the last known one if the navigator lost it.
func (h *Herder) Position() geometry.Vector3D {
	if pos, ok := h.nav.Position(h.id); ok {
		h.lastPos = pos
	}
	return h.lastPos
}

// Update advances the orbit angle by dt seconds and sends the herder toward the new orbit point.
func (h *Herder) Update(dt float64) {
	pos := h.Position()
	center, radius := h.OrbitFrame(pos)
	angularSpeed := AngularSpeed(radius, h.params)

	h.angle = wrapAngle(h.angle + h.direction.Sign()*angularSpeed*dt)
	target := center.Add(geometry.NewVectorOnPlane(radius, h.angle))

	dest, snapped := RequestPathTo(h.nav, h.id, target, radius*0.5)
	if !snapped {
		h.logger.Debugf("herder %s: no walkable point near %s, using raw target", h.id, target)
	}

	if heading := dest.Sub(pos).Flatten(); heading.LenSqr() > headingEpsilonSq {
		h.forward = heading.Normalize()
	}

	h.orbit = Orbit{
		Center:       center,
		Radius:       radius,
		AngularSpeed: angularSpeed,
		Angle:        h.angle,
		Target:       target,
		Destination:  dest,
		Snapped:      snapped,
	}
}

// OrbitFrame returns the circle to orbit: the herd centroid pushed out by the
// circling offset, or, with no herd, a circle just in front of the herder.
func (h *Herder) OrbitFrame(pos geometry.Vector3D) (geometry.Vector3D, float64) {
	if h.registry != nil && h.registry.Len() > 0 {
		radius := math.Max(h.registry.Radius()+h.params.CirclingRadiusOffset, h.params.MinCirclingRadius)
		return h.registry.Centroid(), radius
	}
	return pos.Add(h.forward.Mul(h.params.MinCirclingRadius)), h.params.MinCirclingRadius
}

// AngularSpeed returns the angular speed that keeps the orbit point near the
// desired linear speed on a circle of the given radius, bounded by the
// min and max angular speeds.
func AngularSpeed(radius float64, p HerderParams) float64 {
	effective := math.Max(radius, p.MinRadiusForSpeedCalc)
	speed := p.MaxAngularSpeed
	if effective > nearZeroRadius {
		speed = p.DesiredOrbitLinearSpeed / effective
	}
	return math.Max(p.MinAngularSpeed, math.Min(speed, p.MaxAngularSpeed))
}

// wrapAngle maps a into [0, 2π).
func wrapAngle(a float64) float64 {
	const twoPi = 2 * math.Pi
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	if a >= twoPi {
		a = 0
	}
	return a
}
