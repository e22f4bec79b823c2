package simulation

import (
	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/herd"
	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/nav"
)

// Snapshot is an immutable copy of the world handed to the viewer after a tick.
type Snapshot struct {
	Tick    uint64
	Elapsed float64 // simulated seconds

	Bounds    nav.Bounds
	Obstacles []nav.Obstacle

	Members  []herd.MemberGizmo
	Herder   herd.HerderGizmo
	Centroid geometry.Vector3D
	Radius   float64

	FleeingCount int
}

func (w *World) buildSnapshot() *Snapshot {
	snap := &Snapshot{
		Tick:      w.ticks,
		Elapsed:   w.elapsed,
		Bounds:    w.plane.Bounds(),
		Obstacles: w.plane.Obstacles(),
		Members:   make([]herd.MemberGizmo, 0, len(w.members)),
		Herder:    w.herder.Gizmo(),
		Centroid:  w.registry.Centroid(),
		Radius:    w.registry.Radius(),
	}
	for _, m := range w.members {
		g, ok := m.Gizmo()
		if !ok {
			continue
		}
		snap.Members = append(snap.Members, g)
		if g.Fleeing {
			snap.FleeingCount++
		}
	}
	return snap
}
