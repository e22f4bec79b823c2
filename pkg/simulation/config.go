package simulation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/herd"
	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/nav"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid simulation config")

type Config struct {
	// World dimensions in world units, centered on the origin.
	WorldWidth float64 `json:"worldWidth"`
	WorldDepth float64 `json:"worldDepth"`
	// Screen pixels per world unit in the viewer.
	PixelsPerUnit float64 `json:"pixelsPerUnit"`

	// Population
	NumMembers  int     `json:"numMembers"`
	SpawnRadius float64 `json:"spawnRadius"`
	// Seed of the spawn RNG. Zero picks a random seed.
	Seed uint64 `json:"seed"`

	// Simulation ticks per second.
	TickRate int `json:"tickRate"`

	// Fallback herd center when the herd is empty.
	Anchor      geometry.Vector3D `json:"anchor"`
	HerderStart geometry.Vector3D `json:"herderStart"`
	Obstacles   []nav.Obstacle    `json:"obstacles"`

	Member herd.MemberParams `json:"member"`
	Herder herd.HerderParams `json:"herder"`

	// Debug gizmo layers shown at startup.
	ShowPerception bool `json:"showPerception"`
	ShowSeparation bool `json:"showSeparation"`
	ShowFlee       bool `json:"showFlee"`
	ShowOrbit      bool `json:"showOrbit"`
}

func DefaultConfig() *Config {
	return &Config{
		WorldWidth:    120,
		WorldDepth:    90,
		PixelsPerUnit: 8,
		NumMembers:    30,
		SpawnRadius:   12,
		TickRate:      60,
		HerderStart:   geometry.Vector3D{X: 25},
		Obstacles: []nav.Obstacle{
			{Center: geometry.Vector3D{X: -30, Z: 20}, Radius: 6},
			{Center: geometry.Vector3D{X: 35, Z: -25}, Radius: 8},
		},
		Member:    herd.DefaultMemberParams(),
		Herder:    herd.DefaultHerderParams(),
		ShowFlee:  true,
		ShowOrbit: true,
	}
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error
	if c.WorldWidth <= 0 || c.WorldDepth <= 0 {
		errs = append(errs, fmt.Errorf("%w: world size must be positive, got %vx%v", ErrInvalidConfig, c.WorldWidth, c.WorldDepth))
	}
	if c.PixelsPerUnit <= 0 {
		errs = append(errs, fmt.Errorf("%w: pixelsPerUnit must be positive, got %v", ErrInvalidConfig, c.PixelsPerUnit))
	}
	if c.NumMembers < 0 {
		errs = append(errs, fmt.Errorf("%w: numMembers must be >= 0, got %d", ErrInvalidConfig, c.NumMembers))
	}
	if c.SpawnRadius < 0 {
		errs = append(errs, fmt.Errorf("%w: spawnRadius must be >= 0, got %v", ErrInvalidConfig, c.SpawnRadius))
	}
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("%w: tickRate must be positive, got %d", ErrInvalidConfig, c.TickRate))
	}
	for i, o := range c.Obstacles {
		if o.Radius <= 0 {
			errs = append(errs, fmt.Errorf("%w: obstacle %d radius must be positive, got %v", ErrInvalidConfig, i, o.Radius))
		}
	}
	if err := c.Member.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("member: %w", err))
	}
	if err := c.Herder.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("herder: %w", err))
	}
	return errors.Join(errs...)
}

// Bounds returns the walkable rectangle described by the world size.
func (c *Config) Bounds() nav.Bounds {
	return nav.Centered(c.WorldWidth, c.WorldDepth)
}

// LoadConfig loads configuration from a JSON file and validates it against the schema.
// Fields missing from the file keep their DefaultConfig value.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := jsonschema.Compile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. Validate against the schema
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal over the defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
