package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/viewer"
)

func main() {
	configFile := flag.String("config", "configs/herding.json", "simulation config file, empty for the built in defaults")
	schemaFile := flag.String("schema", "configs/herding.schema.json", "JSON schema the config file is validated against")
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
	system, err := actor.NewActorSystem("HerdingWorld",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(1))
	if err != nil {
		log.Fatalf("Error creating actor system: %v", err)
	}
	if err := system.Start(ctx); err != nil {
		log.Fatalf("Error starting actor system: %v", err)
	}
	defer func() { _ = system.Stop(ctx) }()

	game, err := viewer.NewGame(ctx, cfg, system)
	if err != nil {
		log.Fatal(err)
	}

	w, h := game.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("Herding: flock and herder")
	ebiten.SetTPS(cfg.TickRate)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
