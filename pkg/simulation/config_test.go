package simulation

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/herd"
)

const schemaFile = "../../configs/herding.schema.json"

func TestDefaultConfig_IsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestLoadConfig_ShippedConfig(t *testing.T) {
	cfg, err := LoadConfig("../../configs/herding.json", schemaFile)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Member != herd.DefaultMemberParams() {
		t.Errorf("member params = %+v; want the defaults %+v", cfg.Member, herd.DefaultMemberParams())
	}
	if cfg.Herder != herd.DefaultHerderParams() {
		t.Errorf("herder params = %+v; want the defaults %+v", cfg.Herder, herd.DefaultHerderParams())
	}
	if len(cfg.Obstacles) != 2 {
		t.Errorf("obstacles = %d; want 2", len(cfg.Obstacles))
	}
}

func TestLoadConfig_PartialKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata", "partial.json"), schemaFile)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.NumMembers != 4 || cfg.Seed != 42 {
		t.Errorf("numMembers=%d seed=%d; want 4 and 42", cfg.NumMembers, cfg.Seed)
	}
	if cfg.Member.MaxSpeed != 2.5 {
		t.Errorf("member maxSpeed = %v; want 2.5", cfg.Member.MaxSpeed)
	}
	if cfg.Member.FleeDistance != herd.DefaultMemberParams().FleeDistance {
		t.Errorf("member fleeDistance = %v; want default", cfg.Member.FleeDistance)
	}
	if cfg.WorldWidth != DefaultConfig().WorldWidth {
		t.Errorf("worldWidth = %v; want default", cfg.WorldWidth)
	}
	if len(cfg.Obstacles) != 0 {
		t.Errorf("obstacles = %v; want the explicit empty list", cfg.Obstacles)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		schema  string
		wantErr string
	}{
		{"Missing file", "testdata/nope.json", schemaFile, "failed to read config file"},
		{"Missing schema", "testdata/partial.json", "testdata/nope.schema.json", "failed to compile schema"},
		{"Broken json", "testdata/broken.json", schemaFile, "failed to decode config json"},
		{"Schema violation", "testdata/bad_schema.json", schemaFile, "config validation failed"},
		{"Unknown field", "testdata/unknown_field.json", schemaFile, "config validation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.file, tt.schema)
			if err == nil {
				t.Fatal("LoadConfig() error = nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadConfig() = %q; want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_SemanticValidation(t *testing.T) {
	_, err := LoadConfig("testdata/inverted_angular.json", schemaFile)
	if !errors.Is(err, herd.ErrInvalidParams) {
		t.Fatalf("LoadConfig() = %v; want ErrInvalidParams", err)
	}
	if !strings.Contains(err.Error(), "herder") {
		t.Errorf("LoadConfig() = %q; want the herder section named", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"Zero width", func(c *Config) { c.WorldWidth = 0 }, "world size"},
		{"Negative members", func(c *Config) { c.NumMembers = -1 }, "numMembers"},
		{"Zero tick rate", func(c *Config) { c.TickRate = 0 }, "tickRate"},
		{"Zero scale", func(c *Config) { c.PixelsPerUnit = 0 }, "pixelsPerUnit"},
		{"Flat obstacle", func(c *Config) { c.Obstacles[0].Radius = 0 }, "obstacle 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() = %v; want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q; want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
