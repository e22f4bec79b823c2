package simulation

import (
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/herd"
)

// Messages understood by WorldActor:
//
//	*durationpb.Duration     advance the world by that much simulated time
//	*emptypb.Empty           toggle the herder orbit direction
//	*wrapperspb.UInt32Value  spawn that many members
//	*wrapperspb.StringValue  despawn the member with that id, or the newest one when empty

// WorldActor owns a World and serialises every tick and membership change
// through its mailbox. After each tick it pushes a Snapshot to the viewer.
type WorldActor struct {
	cfg        *Config
	world      *World
	snapshotCh chan<- *Snapshot

	// --- Benchmark Stats ---
	ticks       int
	simulated   time.Duration
	stepTime    time.Duration
	lastLogTime time.Time
}

var _ actor.Actor = (*WorldActor)(nil)

// NewWorldActor creates the world logic unit. snapshotCh may be nil.
func NewWorldActor(snapshotCh chan<- *Snapshot, cfg *Config) *WorldActor {
	return &WorldActor{
		cfg:         cfg,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	logger := ctx.ActorSystem().Logger()
	logger.Info("World is spawning the herd...")
	world, err := NewWorld(w.cfg, logger)
	if err != nil {
		return err
	}
	w.world = world
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {

	case *goaktpb.PostStart:
		ctx.Logger().Infof("World started with %d members", w.world.Len())

	// The main simulation step, driven by the game loop.
	case *durationpb.Duration:
		dt := msg.AsDuration()
		start := time.Now()
		w.world.Step(dt.Seconds())
		w.stepTime += time.Since(start)
		w.simulated += dt
		w.ticks++

		w.logBenchmarks(ctx)
		w.pushSnapshot()

	case *emptypb.Empty:
		w.world.ToggleDirection()
		ctx.Logger().Infof("herder now orbiting %s", w.world.Herder().Direction())

	case *wrapperspb.UInt32Value:
		n, err := w.world.SpawnFlock(int(msg.GetValue()))
		if err != nil {
			ctx.Logger().Errorf("spawned %d of %d members: %v", n, msg.GetValue(), err)
		}
		ctx.Logger().Debugf("herd size now %d", w.world.Len())

	case *wrapperspb.StringValue:
		w.despawn(ctx, herd.AgentID(msg.GetValue()))

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) despawn(ctx *actor.ReceiveContext, id herd.AgentID) {
	if id == "" {
		if removed, ok := w.world.DespawnNewest(); ok {
			ctx.Logger().Debugf("despawned %s, herd size now %d", removed, w.world.Len())
		}
		return
	}
	if !w.world.Despawn(id) {
		ctx.Logger().Warnf("cannot despawn unknown member %s", id)
	}
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) < time.Second {
		return
	}
	avg := time.Duration(0)
	if w.ticks > 0 {
		avg = w.stepTime / time.Duration(w.ticks)
	}
	ctx.Logger().Infof("📊 TICK RATE: %d/sec (simulated %s, avg step %s) | Members: %d | Fleeing: %d",
		w.ticks, w.simulated, avg, w.world.Len(), countFleeing(w.world))
	w.ticks = 0
	w.simulated = 0
	w.stepTime = 0
	w.lastLogTime = time.Now()
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- w.world.Snapshot():
	default:
		// UI busy, skip frame
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	if w.world != nil {
		w.world.Close()
	}
	ctx.ActorSystem().Logger().Info("World is shutdown...")
	return nil
}

func countFleeing(w *World) int {
	n := 0
	for _, m := range w.members {
		if m.Fleeing() {
			n++
		}
	}
	return n
}
