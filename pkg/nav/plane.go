// Package nav provides a flat navigation surface the herd can walk on.
package nav

import (
	"fmt"
	"math"
	"slices"

	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/herd"
)

// pushOutMargin keeps projected points strictly outside obstacles.
const pushOutMargin = 1e-6

// Bounds is the walkable rectangle of the plane on the XZ axes.
type Bounds struct {
	MinX float64 `json:"minX"`
	MinZ float64 `json:"minZ"`
	MaxX float64 `json:"maxX"`
	MaxZ float64 `json:"maxZ"`
}

// Centered returns bounds of the given width (X) and depth (Z) around the origin.
func Centered(width, depth float64) Bounds {
	return Bounds{MinX: -width / 2, MinZ: -depth / 2, MaxX: width / 2, MaxZ: depth / 2}
}

func (b Bounds) Width() float64 { return b.MaxX - b.MinX }
func (b Bounds) Depth() float64 { return b.MaxZ - b.MinZ }

func (b Bounds) contains(p geometry.Vector3D) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Z >= b.MinZ && p.Z <= b.MaxZ
}

func (b Bounds) clamp(p geometry.Vector3D) geometry.Vector3D {
	return geometry.Vector3D{
		X: math.Max(b.MinX, math.Min(p.X, b.MaxX)),
		Z: math.Max(b.MinZ, math.Min(p.Z, b.MaxZ)),
	}
}

// Obstacle is a circular area agents cannot enter.
type Obstacle struct {
	Center geometry.Vector3D `json:"center"`
	Radius float64           `json:"radius"`
}

func (o Obstacle) contains(p geometry.Vector3D) bool {
	return p.Flatten().DistanceSquaredTo(o.Center.Flatten()) < o.Radius*o.Radius
}

// Agent is the navigation state of a single agent.
type Agent struct {
	ID               herd.AgentID
	Position         geometry.Vector3D
	Velocity         geometry.Vector3D // displacement per second during the last Step
	Destination      geometry.Vector3D
	HasDestination   bool
	Speed            float64
	StoppingDistance float64
}

// Plane is a herd.Navigator over a bounded plane at height 0.
// It is not safe for concurrent use; the simulation goroutine owns it.
type Plane struct {
	bounds    Bounds
	obstacles []Obstacle
	agents    map[herd.AgentID]*Agent
	logger    log.Logger
}

var _ herd.Navigator = (*Plane)(nil)

// NewPlane creates an empty plane. A nil logger discards output.
func NewPlane(bounds Bounds, obstacles []Obstacle, logger log.Logger) (*Plane, error) {
	if bounds.Width() <= 0 || bounds.Depth() <= 0 {
		return nil, fmt.Errorf("plane bounds must have a positive area, got %vx%v", bounds.Width(), bounds.Depth())
	}
	for i, o := range obstacles {
		if o.Radius <= 0 {
			return nil, fmt.Errorf("obstacle %d has a non positive radius %v", i, o.Radius)
		}
	}
	if logger == nil {
		logger = log.DiscardLogger
	}
	return &Plane{
		bounds:    bounds,
		obstacles: append([]Obstacle(nil), obstacles...),
		agents:    make(map[herd.AgentID]*Agent),
		logger:    logger,
	}, nil
}

// Bounds returns the walkable rectangle.
func (p *Plane) Bounds() Bounds { return p.bounds }

// Obstacles returns a copy of the obstacles.
func (p *Plane) Obstacles() []Obstacle { return append([]Obstacle(nil), p.obstacles...) }

// Walkable reports whether point lies on the plane and outside every obstacle.
func (p *Plane) Walkable(point geometry.Vector3D) bool {
	if !p.bounds.contains(point) {
		return false
	}
	for _, o := range p.obstacles {
		if o.contains(point) {
			return false
		}
	}
	return true
}

// project returns the walkable point closest to point that this plane can find:
// clamped into bounds and pushed radially out of obstacles.
func (p *Plane) project(point geometry.Vector3D) geometry.Vector3D {
	q := p.bounds.clamp(point.Flatten())
	// Overlapping obstacles may push a point into one another, a few passes settle it.
	for range 3 {
		moved := false
		for _, o := range p.obstacles {
			if !o.contains(q) {
				continue
			}
			out := q.Sub(o.Center.Flatten())
			if out.LenSqr() < geometry.Epsilon {
				out = geometry.Vector3D{X: 1}
			}
			q = p.bounds.clamp(o.Center.Flatten().Add(out.Normalize().Mul(o.Radius + pushOutMargin)))
			moved = true
		}
		if !moved {
			break
		}
	}
	return q
}

// AddAgent places a new agent at the walkable point closest to pos and returns that point.
// It fails if the id is taken or no walkable point could be found.
func (p *Plane) AddAgent(id herd.AgentID, pos geometry.Vector3D, speed, stoppingDistance float64) (geometry.Vector3D, error) {
	if _, ok := p.agents[id]; ok {
		return geometry.Zero, fmt.Errorf("agent %s already exists", id)
	}
	start := p.project(pos)
	if !p.Walkable(start) {
		return geometry.Zero, fmt.Errorf("no walkable point near %s for agent %s", pos, id)
	}
	p.agents[id] = &Agent{
		ID:               id,
		Position:         start,
		Speed:            speed,
		StoppingDistance: stoppingDistance,
	}
	return start, nil
}

// RemoveAgent forgets the agent. Removing an unknown agent reports false.
func (p *Plane) RemoveAgent(id herd.AgentID) bool {
	if _, ok := p.agents[id]; !ok {
		return false
	}
	delete(p.agents, id)
	return true
}

// Agent returns a copy of the agent state.
func (p *Plane) Agent(id herd.AgentID) (Agent, bool) {
	a, ok := p.agents[id]
	if !ok {
		return Agent{}, false
	}
	return *a, true
}

// Len returns the number of agents on the plane.
func (p *Plane) Len() int { return len(p.agents) }

func (p *Plane) Position(id herd.AgentID) (geometry.Vector3D, bool) {
	a, ok := p.agents[id]
	if !ok {
		return geometry.Zero, false
	}
	return a.Position, true
}

// Move translates the agent by delta on the plane. A move ending off the
// surface stops at the closest walkable point instead.
func (p *Plane) Move(id herd.AgentID, delta geometry.Vector3D) bool {
	a, ok := p.agents[id]
	if !ok {
		return false
	}
	p.moveAgent(a, delta.Flatten())
	return true
}

func (p *Plane) moveAgent(a *Agent, delta geometry.Vector3D) geometry.Vector3D {
	target := a.Position.Add(delta)
	if !p.Walkable(target) {
		target = p.project(target)
		if !p.Walkable(target) {
			p.logger.Debugf("agent %s blocked at %s", a.ID, a.Position)
			return geometry.Zero
		}
	}
	moved := target.Sub(a.Position)
	a.Position = target
	return moved
}

// SamplePosition returns the walkable point closest to point, if it lies within searchRadius.
func (p *Plane) SamplePosition(point geometry.Vector3D, searchRadius float64) (geometry.Vector3D, bool) {
	flat := point.Flatten()
	if p.Walkable(flat) {
		return flat, true
	}
	hit := p.project(flat)
	if !p.Walkable(hit) || hit.DistanceTo(flat) > searchRadius {
		return geometry.Zero, false
	}
	return hit, true
}

func (p *Plane) SetDestination(id herd.AgentID, point geometry.Vector3D) bool {
	a, ok := p.agents[id]
	if !ok {
		return false
	}
	a.Destination = point.Flatten()
	a.HasDestination = true
	return true
}

// Step advances every agent with a destination by up to Speed*dt toward it,
// stopping within StoppingDistance.
func (p *Plane) Step(dt float64) {
	if dt <= 0 {
		return
	}
	for _, id := range p.sortedIDs() {
		a := p.agents[id]
		if !a.HasDestination {
			continue
		}
		dist := a.Position.DistanceTo(a.Destination)
		if dist <= a.StoppingDistance {
			a.Velocity = geometry.Zero
			continue
		}
		next := a.Position.MoveTowards(a.Destination, math.Min(a.Speed*dt, dist-a.StoppingDistance))
		moved := p.moveAgent(a, next.Sub(a.Position))
		a.Velocity = moved.Mul(1 / dt)
	}
}

// sortedIDs keeps Step deterministic for a given seed.
func (p *Plane) sortedIDs() []herd.AgentID {
	ids := make([]herd.AgentID, 0, len(p.agents))
	for id := range p.agents {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
