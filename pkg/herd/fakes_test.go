package herd

import "github.com/lao-tseu-is-alive/go-herding-simulation/pkg/geometry"

// fakeNav is an unconstrained navigator: moves are applied as is and
// SamplePosition succeeds only when walkable is unset or returns true.
type fakeNav struct {
	positions    map[AgentID]geometry.Vector3D
	destinations map[AgentID]geometry.Vector3D
	walkable     func(p geometry.Vector3D) bool
	moves        int
}

func newFakeNav() *fakeNav {
	return &fakeNav{
		positions:    make(map[AgentID]geometry.Vector3D),
		destinations: make(map[AgentID]geometry.Vector3D),
	}
}

func (f *fakeNav) Position(id AgentID) (geometry.Vector3D, bool) {
	p, ok := f.positions[id]
	return p, ok
}

func (f *fakeNav) Move(id AgentID, delta geometry.Vector3D) bool {
	p, ok := f.positions[id]
	if !ok {
		return false
	}
	f.positions[id] = p.Add(delta)
	f.moves++
	return true
}

func (f *fakeNav) SamplePosition(point geometry.Vector3D, _ float64) (geometry.Vector3D, bool) {
	if f.walkable != nil && !f.walkable(point) {
		return geometry.Zero, false
	}
	return point, true
}

func (f *fakeNav) SetDestination(id AgentID, point geometry.Vector3D) bool {
	if _, ok := f.positions[id]; !ok {
		return false
	}
	f.destinations[id] = point
	return true
}

// place puts a new agent at p and returns its id.
func (f *fakeNav) place(name string, p geometry.Vector3D) AgentID {
	id := AgentID(name)
	f.positions[id] = p
	return id
}

// fixedAnchor is a herder stand in at a fixed position.
type fixedAnchor struct {
	pos geometry.Vector3D
}

func (a *fixedAnchor) Position() geometry.Vector3D { return a.pos }
