// Command herding-headless runs the herding world without a window, for
// profiling and for checking a config file on a machine with no display.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/simulation"
)

// tickTimeout bounds the wait for the world actor to answer one tick.
const tickTimeout = 5 * time.Second

func main() {
	configFile := flag.String("config", "configs/herding.json", "simulation config file, empty for the built in defaults")
	schemaFile := flag.String("schema", "configs/herding.schema.json", "JSON schema the config file is validated against")
	ticks := flag.Uint64("ticks", 600, "number of ticks to simulate")
	toggleEvery := flag.Uint64("toggle-every", 0, "reverse the herder every N ticks, 0 to never reverse")
	debug := flag.Bool("debug", false, "log every tick at debug level")
	flag.Parse()

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = simulation.LoadConfig(*configFile, *schemaFile)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	level := golog.InfoLevel
	if *debug {
		level = golog.DebugLevel
	}
	logger := golog.New(level, os.Stdout)

	ctx := context.Background()
	system, err := actor.NewActorSystem("HerdingHeadless",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(1))
	if err != nil {
		log.Fatalf("Error creating actor system: %v", err)
	}
	if err := system.Start(ctx); err != nil {
		log.Fatalf("Error starting actor system: %v", err)
	}
	defer func() { _ = system.Stop(ctx) }()

	start := time.Now()
	last, err := run(ctx, system, cfg, *ticks, *toggleEvery)
	if err != nil {
		log.Fatal(err)
	}
	logger.Infof("simulated %d ticks (%.1fs) in %s", last.Tick, last.Elapsed, time.Since(start))
	logger.Infof("herd: %d members, centroid %v, radius %.2f, fleeing %d",
		len(last.Members), last.Centroid, last.Radius, last.FleeingCount)
	logger.Infof("herder: %s at %v, orbit radius %.2f",
		last.Herder.Direction, last.Herder.Position, last.Herder.Orbit.Radius)
}

// run spawns the world on system and advances it one tick at a time, waiting
// for each tick's snapshot before sending the next so none is dropped.
// It returns the snapshot of the last tick.
func run(ctx context.Context, system actor.ActorSystem, cfg *simulation.Config, ticks, toggleEvery uint64) (*simulation.Snapshot, error) {
	snapshots := make(chan *simulation.Snapshot, 1)
	pid, err := system.Spawn(ctx, "world", simulation.NewWorldActor(snapshots, cfg))
	if err != nil {
		return nil, fmt.Errorf("error spawning world: %w", err)
	}

	dt := durationpb.New(time.Second / time.Duration(cfg.TickRate))
	var last *simulation.Snapshot
	for i := uint64(1); i <= ticks; i++ {
		if err := actor.Tell(ctx, pid, dt); err != nil {
			return nil, fmt.Errorf("error sending tick %d: %w", i, err)
		}
		last = waitForTick(snapshots, i, tickTimeout)
		if last == nil || last.Tick < i {
			return nil, fmt.Errorf("no snapshot for tick %d after %s", i, tickTimeout)
		}
		if toggleEvery > 0 && i%toggleEvery == 0 {
			if err := actor.Tell(ctx, pid, &emptypb.Empty{}); err != nil {
				return nil, fmt.Errorf("error reversing herder: %w", err)
			}
		}
	}
	if last == nil {
		return nil, errors.New("no tick was simulated")
	}
	return last, nil
}

// waitForTick keeps the latest snapshot until one reaches tick or the timeout expires.
func waitForTick(snapshots <-chan *simulation.Snapshot, tick uint64, timeout time.Duration) *simulation.Snapshot {
	deadline := time.After(timeout)
	var last *simulation.Snapshot
	for {
		select {
		case s := <-snapshots:
			last = s
			if s.Tick >= tick {
				return last
			}
		case <-deadline:
			return last
		}
	}
}
