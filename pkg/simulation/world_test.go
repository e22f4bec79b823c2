package simulation

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/nav"
)

func testConfig(numMembers int) *Config {
	cfg := DefaultConfig()
	cfg.NumMembers = numMembers
	cfg.Seed = 7
	cfg.Obstacles = nil
	return cfg
}

func newTestWorld(t *testing.T, cfg *Config) *World {
	t.Helper()
	w, err := NewWorld(cfg, nil)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	t.Cleanup(w.Close)
	return w
}

func TestNewWorld_SpawnsPopulation(t *testing.T) {
	cfg := testConfig(12)
	w := newTestWorld(t, cfg)

	if w.Len() != 12 {
		t.Fatalf("Len = %d; want 12", w.Len())
	}
	if w.Registry().Size() != 12 {
		t.Errorf("registry size = %d; want 12", w.Registry().Size())
	}
	if w.Plane().Len() != 13 {
		t.Errorf("plane agents = %d; want 12 members + herder", w.Plane().Len())
	}

	for m := range w.Registry().Members() {
		t.Fatalf("members visible before the first tick: %s", m.ID())
	}

	maxSpeed := cfg.Member.MaxSpeed
	for _, g := range w.Snapshot().Members {
		if g.Position.DistanceTo(cfg.Anchor) > cfg.SpawnRadius+1e-9 {
			t.Errorf("member %s spawned at %v, outside spawn radius", g.ID, g.Position)
		}
		speed := g.Velocity.Len()
		if speed < 0.5*maxSpeed-1e-9 || speed > maxSpeed+1e-9 {
			t.Errorf("member %s initial speed %v not in [%v, %v]", g.ID, speed, 0.5*maxSpeed, maxSpeed)
		}
	}
}

func TestNewWorld_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(3)
	cfg.Member.MaxSpeed = -1
	if _, err := NewWorld(cfg, nil); err == nil {
		t.Fatal("NewWorld with a negative max speed succeeded")
	}
}

func TestWorld_SameSeedSameRun(t *testing.T) {
	run := func() []geometry.Vector3D {
		w := newTestWorld(t, testConfig(8))
		for range 120 {
			w.Step(1.0 / 60)
		}
		var out []geometry.Vector3D
		for _, g := range w.Snapshot().Members {
			out = append(out, g.Position)
		}
		return out
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("runs differ in size: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].Eq(b[i]) {
			t.Errorf("member %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestWorld_StepKeepsInvariants(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 11
	cfg.NumMembers = 40
	w := newTestWorld(t, cfg)

	for i := range 600 {
		w.Step(1.0 / 60)
		if i%97 == 0 {
			w.ToggleDirection()
		}

		snap := w.Snapshot()
		for _, g := range snap.Members {
			if !g.Position.IsFinite() || !g.Velocity.IsFinite() {
				t.Fatalf("tick %d: member %s has non finite state %v %v", i, g.ID, g.Position, g.Velocity)
			}
			if g.Velocity.Len() > cfg.Member.MaxSpeed+1e-9 {
				t.Fatalf("tick %d: member %s speed %v above max", i, g.ID, g.Velocity.Len())
			}
			if !w.Plane().Walkable(g.Position) {
				t.Fatalf("tick %d: member %s off the walkable surface at %v", i, g.ID, g.Position)
			}
		}
		o := snap.Herder.Orbit
		if o.Angle < 0 || o.Angle >= 2*math.Pi {
			t.Fatalf("tick %d: herder angle %v outside [0, 2π)", i, o.Angle)
		}
		if o.AngularSpeed < cfg.Herder.MinAngularSpeed || o.AngularSpeed > cfg.Herder.MaxAngularSpeed {
			t.Fatalf("tick %d: angular speed %v out of bounds", i, o.AngularSpeed)
		}
		if o.Radius < cfg.Herder.MinCirclingRadius {
			t.Fatalf("tick %d: orbit radius %v below the minimum", i, o.Radius)
		}
	}
	if w.Ticks() != 600 {
		t.Errorf("Ticks = %d; want 600", w.Ticks())
	}
}

func TestWorld_HerderOrbitsCentroid(t *testing.T) {
	w := newTestWorld(t, testConfig(10))
	w.Step(0.1)

	snap := w.Snapshot()
	if !snap.Herder.Orbit.Center.Eq(snap.Centroid) {
		t.Errorf("orbit center %v; want centroid %v", snap.Herder.Orbit.Center, snap.Centroid)
	}
	want := math.Max(snap.Radius+w.cfg.Herder.CirclingRadiusOffset, w.cfg.Herder.MinCirclingRadius)
	if math.Abs(snap.Herder.Orbit.Radius-want) > 1e-9 {
		t.Errorf("orbit radius %v; want %v", snap.Herder.Orbit.Radius, want)
	}
}

func TestWorld_HerderMovesAlongPath(t *testing.T) {
	w := newTestWorld(t, testConfig(5))
	start := w.Herder().Position()
	for range 30 {
		w.Step(1.0 / 30)
	}
	if w.Herder().Position().Eq(start) {
		t.Errorf("herder did not move from %v", start)
	}
}

func TestWorld_SpawnAndDespawn(t *testing.T) {
	w := newTestWorld(t, testConfig(3))
	w.Step(0.1)

	n, err := w.SpawnFlock(4)
	if err != nil || n != 4 {
		t.Fatalf("SpawnFlock(4) = %d, %v", n, err)
	}
	if w.Len() != 7 {
		t.Fatalf("Len = %d; want 7", w.Len())
	}

	m, err := w.Spawn(geometry.Vector3D{X: 1, Z: 1})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if got, ok := w.Member(m.ID()); !ok || got != m {
		t.Fatal("spawned member not found by id")
	}

	if !w.Despawn(m.ID()) {
		t.Fatal("Despawn of a spawned member = false")
	}
	if w.Despawn(m.ID()) {
		t.Error("second Despawn = true")
	}
	if _, ok := w.Plane().Position(m.ID()); ok {
		t.Error("despawned member still on the plane")
	}
	if w.Registry().Contains(m) {
		t.Error("despawned member still registered")
	}

	newest := w.members[len(w.members)-1].ID()
	id, ok := w.DespawnNewest()
	if !ok || id != newest {
		t.Errorf("DespawnNewest = %s, %v; want %s", id, ok, newest)
	}
	if w.Len() != 6 {
		t.Errorf("Len = %d; want 6", w.Len())
	}

	w.Step(0.1)
	if w.Registry().Len() != 6 {
		t.Errorf("registry snapshot = %d; want 6 after tick", w.Registry().Len())
	}
}

func TestWorld_DespawnNewestOnEmpty(t *testing.T) {
	w := newTestWorld(t, testConfig(0))
	if _, ok := w.DespawnNewest(); ok {
		t.Error("DespawnNewest on an empty world = true")
	}
	w.Step(0.1)
	snap := w.Snapshot()
	if !snap.Centroid.Eq(w.cfg.Anchor) || snap.Radius != 0 {
		t.Errorf("empty world centroid=%v radius=%v; want anchor and 0", snap.Centroid, snap.Radius)
	}
}

func TestWorld_HerdFleesFromHerder(t *testing.T) {
	cfg := testConfig(0)
	cfg.HerderStart = geometry.Vector3D{X: 5}
	w := newTestWorld(t, cfg)
	m, err := w.Spawn(geometry.Zero)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	w.Step(1.0 / 60)
	if !m.Fleeing() {
		t.Fatal("member within flee distance is not fleeing")
	}
	if f := m.LastForces().Flee; f.X >= 0 {
		t.Errorf("flee force %v; want directed toward -X", f)
	}
	if w.Snapshot().FleeingCount != 1 {
		t.Errorf("FleeingCount = %d; want 1", w.Snapshot().FleeingCount)
	}
}

func TestWorld_StepIgnoresNonPositiveDt(t *testing.T) {
	w := newTestWorld(t, testConfig(3))
	w.Step(0)
	w.Step(-1)
	if w.Ticks() != 0 {
		t.Errorf("Ticks = %d; want 0", w.Ticks())
	}
}

func TestWorld_Close(t *testing.T) {
	w, err := NewWorld(testConfig(5), nil)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	w.Close()
	if w.Registry().Size() != 0 || w.Plane().Len() != 0 || w.Len() != 0 {
		t.Errorf("after Close: registry=%d plane=%d members=%d; want all zero",
			w.Registry().Size(), w.Plane().Len(), w.Len())
	}
}

func TestWorld_ObstaclesAreAvoided(t *testing.T) {
	cfg := testConfig(0)
	cfg.Obstacles = []nav.Obstacle{{Center: geometry.Zero, Radius: 3}}
	w := newTestWorld(t, cfg)

	m, err := w.Spawn(geometry.Vector3D{X: 0.5})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	pos, _ := m.Position()
	if !w.Plane().Walkable(pos) {
		t.Errorf("member spawned inside the obstacle at %v", pos)
	}
}

func BenchmarkWorld_Step(b *testing.B) {
	cfg := DefaultConfig()
	cfg.Seed = 1
	cfg.NumMembers = 500
	w, err := NewWorld(cfg, nil)
	if err != nil {
		b.Fatalf("NewWorld: %v", err)
	}
	defer w.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Step(1.0 / 60)
	}
}
