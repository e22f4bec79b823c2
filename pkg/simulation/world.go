package simulation

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/herd"
	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/nav"
)

// World owns the herd, its herder and the plane they walk on, and advances
// them in a fixed order. It is not safe for concurrent use; WorldActor
// serialises access to it.
type World struct {
	cfg    *Config
	logger log.Logger
	rng    *rand.Rand

	plane    *nav.Plane
	registry *herd.Registry
	herder   *herd.Herder
	members  []*herd.Member // spawn order
	byID     map[herd.AgentID]*herd.Member

	ticks   uint64
	elapsed float64
}

// NewWorld builds the plane, places the herder and spawns cfg.NumMembers members.
func NewWorld(cfg *Config, logger log.Logger) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.DiscardLogger
	}

	plane, err := nav.NewPlane(cfg.Bounds(), cfg.Obstacles, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create plane: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	w := &World{
		cfg:      cfg,
		logger:   logger,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		plane:    plane,
		registry: herd.NewRegistry(cfg.Anchor, logger),
		byID:     make(map[herd.AgentID]*herd.Member),
	}

	herderID := herd.NewAgentID()
	if _, err := plane.AddAgent(herderID, cfg.HerderStart, cfg.Herder.Speed, cfg.Herder.StoppingDistance); err != nil {
		return nil, fmt.Errorf("failed to place herder: %w", err)
	}
	w.herder = herd.NewHerder(herderID, cfg.Herder, w.registry, plane, logger)

	if _, err := w.SpawnFlock(cfg.NumMembers); err != nil {
		return nil, err
	}
	logger.Infof("world ready: %d members, herder %s at %s, seed %d",
		len(w.members), herderID, w.herder.Position(), seed)
	return w, nil
}

// Spawn adds one member near pos heading in a random direction at
// a random speed between half and full MaxSpeed.
func (w *World) Spawn(pos geometry.Vector3D) (*herd.Member, error) {
	id := herd.NewAgentID()
	if _, err := w.plane.AddAgent(id, pos, 0, 0); err != nil {
		return nil, fmt.Errorf("failed to spawn member: %w", err)
	}

	forward := geometry.NewVectorOnPlane(1, w.rng.Float64()*2*math.Pi)
	speed := (0.5 + 0.5*w.rng.Float64()) * w.cfg.Member.MaxSpeed

	m := herd.NewMember(id, w.cfg.Member, w.registry, w.plane,
		herd.WithAnchor(w.herder),
		herd.WithLogger(w.logger),
		herd.WithVelocity(forward.Mul(speed)),
	)
	w.members = append(w.members, m)
	w.byID[id] = m
	return m, nil
}

// SpawnFlock spawns n members uniformly inside SpawnRadius around the current
// herd centroid, or around the anchor when the herd is empty. It returns how
// many members were spawned before the first failure.
func (w *World) SpawnFlock(n int) (int, error) {
	center := w.cfg.Anchor
	if w.registry.Len() > 0 {
		center = w.registry.Centroid()
	}
	for i := range n {
		r := w.cfg.SpawnRadius * math.Sqrt(w.rng.Float64())
		p := center.Add(geometry.NewVectorOnPlane(r, w.rng.Float64()*2*math.Pi))
		if _, err := w.Spawn(p); err != nil {
			return i, err
		}
	}
	return n, nil
}

// Despawn removes the member and its navigator agent. Unknown ids report false.
func (w *World) Despawn(id herd.AgentID) bool {
	m, ok := w.byID[id]
	if !ok {
		return false
	}
	m.Close()
	w.plane.RemoveAgent(id)
	delete(w.byID, id)
	w.members = slices.DeleteFunc(w.members, func(other *herd.Member) bool { return other == m })
	return true
}

// DespawnNewest removes the most recently spawned member, if any.
func (w *World) DespawnNewest() (herd.AgentID, bool) {
	if len(w.members) == 0 {
		return "", false
	}
	id := w.members[len(w.members)-1].ID()
	return id, w.Despawn(id)
}

// ToggleDirection reverses the herder orbit.
func (w *World) ToggleDirection() {
	w.herder.ToggleDirection()
}

// Step advances the simulation by dt seconds: the registry snapshot is
// frozen first, then members steer, then the herder picks its next orbit
// point, and finally the navigator moves path following agents.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	w.registry.Tick()
	for _, m := range w.members {
		m.Update(dt)
	}
	w.herder.Update(dt)
	w.plane.Step(dt)

	w.ticks++
	w.elapsed += dt
}

// Snapshot copies the current state for rendering.
func (w *World) Snapshot() *Snapshot {
	return w.buildSnapshot()
}

// Len returns the number of spawned members.
func (w *World) Len() int { return len(w.members) }

// Member returns the member with the given id.
func (w *World) Member(id herd.AgentID) (*herd.Member, bool) {
	m, ok := w.byID[id]
	return m, ok
}

// Herder returns the herder.
func (w *World) Herder() *herd.Herder { return w.herder }

// Registry returns the herd registry.
func (w *World) Registry() *herd.Registry { return w.registry }

// Plane returns the navigation surface.
func (w *World) Plane() *nav.Plane { return w.plane }

// Ticks returns the number of completed steps.
func (w *World) Ticks() uint64 { return w.ticks }

// Close releases every member. The world must not be stepped afterwards.
func (w *World) Close() {
	for _, m := range w.members {
		m.Close()
		w.plane.RemoveAgent(m.ID())
	}
	w.members = nil
	clear(w.byID)
	w.plane.RemoveAgent(w.herder.ID())
}
