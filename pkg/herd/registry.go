package herd

import (
	"iter"
	"math"
	"sync"

	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/geometry"
)

// Neighbor is the frozen view of a member taken at the start of a tick.
type Neighbor struct {
	Member   *Member
	Position geometry.Vector3D
	Velocity geometry.Vector3D
}

// Registry tracks the live members of a herd and derives the herd centroid
// and radius once per tick.
//
// Register and Unregister are safe to call from any goroutine. Their effect
// becomes visible to readers at the next Tick, which must run on the single
// simulation goroutine before members and the herder update.
type Registry struct {
	mu      sync.Mutex
	members []*Member
	index   map[*Member]int

	anchor geometry.Vector3D
	logger log.Logger

	// Derived state, written only by Tick.
	snapshot []Neighbor
	centroid geometry.Vector3D
	radius   float64
	grid     spatialGrid
	scratch  []*Member
}

// NewRegistry creates an empty registry. With no members the centroid is the anchor.
func NewRegistry(anchor geometry.Vector3D, logger log.Logger) *Registry {
	if logger == nil {
		logger = log.DiscardLogger
	}
	return &Registry{
		index:    make(map[*Member]int),
		anchor:   anchor,
		logger:   logger,
		centroid: anchor,
		grid:     newSpatialGrid(),
	}
}

// Register adds m to the membership set. Registering twice is a no-op.
func (r *Registry) Register(m *Member) {
	if m == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[m]; ok {
		return
	}
	r.index[m] = len(r.members)
	r.members = append(r.members, m)
}

// Unregister removes m from the membership set. Removing a non member is a no-op.
func (r *Registry) Unregister(m *Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[m]
	if !ok {
		return
	}
	last := len(r.members) - 1
	if i != last {
		moved := r.members[last]
		r.members[i] = moved
		r.index[moved] = i
	}
	r.members[last] = nil
	r.members = r.members[:last]
	delete(r.index, m)
}

// Size returns the current membership count, including changes not yet ticked.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Contains reports whether m is currently registered.
func (r *Registry) Contains(m *Member) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.index[m]
	return ok
}

// Anchor returns the fallback centroid used when the herd is empty.
func (r *Registry) Anchor() geometry.Vector3D {
	return r.anchor
}

// Tick freezes the membership into this tick's snapshot and recomputes the
// centroid (mean position) and radius (largest distance to the centroid).
// Members whose navigator no longer knows their position are left out.
func (r *Registry) Tick() {
	r.mu.Lock()
	r.scratch = append(r.scratch[:0], r.members...)
	r.mu.Unlock()

	r.snapshot = r.snapshot[:0]
	cellSize := 0.0
	sum := geometry.Zero
	for _, m := range r.scratch {
		pos, ok := m.position()
		if !ok {
			r.logger.Debugf("herd member %s has no position, skipped this tick", m.ID())
			continue
		}
		r.snapshot = append(r.snapshot, Neighbor{Member: m, Position: pos, Velocity: m.Velocity()})
		sum = sum.Add(pos)
		cellSize = math.Max(cellSize, math.Max(m.params.PerceptionRadius, m.params.SeparationRadius))
	}
	clear(r.scratch)

	if len(r.snapshot) == 0 {
		r.centroid = r.anchor
		r.radius = 0
		r.grid.rebuild(nil, cellSize)
		return
	}

	r.centroid = sum.Mul(1 / float64(len(r.snapshot)))
	maxSq := 0.0
	for _, n := range r.snapshot {
		maxSq = math.Max(maxSq, n.Position.DistanceSquaredTo(r.centroid))
	}
	r.radius = math.Sqrt(maxSq)
	r.grid.rebuild(r.snapshot, cellSize)
}

// Centroid returns the mean member position as of the last Tick.
func (r *Registry) Centroid() geometry.Vector3D {
	return r.centroid
}

// Radius returns the largest member distance from the centroid as of the last Tick.
func (r *Registry) Radius() float64 {
	return r.radius
}

// Len returns the number of members in the current tick's snapshot.
func (r *Registry) Len() int {
	return len(r.snapshot)
}

// Members yields the members of the current tick's snapshot, in no particular order.
func (r *Registry) Members() iter.Seq[*Member] {
	return func(yield func(*Member) bool) {
		for _, n := range r.snapshot {
			if !yield(n.Member) {
				return
			}
		}
	}
}

// All yields the frozen view of every member in the current snapshot.
func (r *Registry) All() iter.Seq[Neighbor] {
	return func(yield func(Neighbor) bool) {
		for _, n := range r.snapshot {
			if !yield(n) {
				return
			}
		}
	}
}

// Neighbors yields the snapshot entries strictly closer than radius to pos.
// The caller's own entry is included when it lies in range.
func (r *Registry) Neighbors(pos geometry.Vector3D, radius float64) iter.Seq[Neighbor] {
	return func(yield func(Neighbor) bool) {
		if radius <= 0 || len(r.snapshot) == 0 {
			return
		}
		radiusSq := radius * radius

		// A query wider than the population is cheaper as a linear scan.
		span := 2*radius/r.grid.cellSize + 1
		if span*span > float64(len(r.snapshot)) {
			for _, n := range r.snapshot {
				if n.Position.DistanceSquaredTo(pos) < radiusSq && !yield(n) {
					return
				}
			}
			return
		}

		r.grid.query(pos, radius, func(i int) bool {
			n := r.snapshot[i]
			if n.Position.DistanceSquaredTo(pos) >= radiusSq {
				return true
			}
			return yield(n)
		})
	}
}
