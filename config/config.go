// Package config loads arena settings from YAML.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/nathoo/spellcore/engine/world"
	"gopkg.in/yaml.v3"
)

// Config is the full arena configuration.
type Config struct {
	Seed      int64           `yaml:"seed"`
	Spellbook string          `yaml:"spellbook"` // directory of .lua files; empty uses the built-in spells
	Tick      TickConfig      `yaml:"tick"`
	World     WorldConfig     `yaml:"world"`
	Player    PlayerConfig    `yaml:"player"`
	Generator GeneratorConfig `yaml:"generator"`
	Bots      []BotConfig     `yaml:"bots"`
}

type TickConfig struct {
	Period  float64 `yaml:"period"`
	Damping float64 `yaml:"damping"`
	SlowBy  float64 `yaml:"slow_by"`
}

type WorldConfig struct {
	CollisionRadius float64 `yaml:"collision_radius"`
	BuffDuration    float64 `yaml:"buff_duration"`
	MaxExecDepth    int     `yaml:"max_exec_depth"`
	MaxSteps        int     `yaml:"max_steps"`
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
}

// PlayerConfig describes the local player.
type PlayerConfig struct {
	Name   string   `yaml:"name"`
	Health int32    `yaml:"health"`
	Mana   int32    `yaml:"mana"`
	X      float64  `yaml:"x"`
	Y      float64  `yaml:"y"`
	Spells []string `yaml:"spells"`
}

type GeneratorConfig struct {
	MaxDepth      int    `yaml:"max_depth"`
	MinComplexity uint32 `yaml:"min_complexity"`
	MaxComplexity uint32 `yaml:"max_complexity"`
	Attempts      int    `yaml:"attempts"`
}

// BotConfig describes a computer opponent. Weights pairs with Spells;
// missing weights count as 1.
type BotConfig struct {
	Name    string   `yaml:"name"`
	X       float64  `yaml:"x"`
	Y       float64  `yaml:"y"`
	Spells  []string `yaml:"spells"`
	Weights []int    `yaml:"weights"`
	Every   int      `yaml:"every"` // ticks between casts
}

// Default returns the configuration the arena runs with when no file is
// given.
func Default() Config {
	w := world.DefaultConfig()
	return Config{
		Seed: 1,
		Tick: TickConfig{
			Period:  w.TickPeriod,
			Damping: w.Damping,
			SlowBy:  w.SlowBy,
		},
		World: WorldConfig{
			CollisionRadius: w.CollisionRadius,
			BuffDuration:    w.BuffDuration,
			MaxExecDepth:    w.MaxExecDepth,
			MaxSteps:        w.MaxSteps,
			Width:           40,
			Height:          20,
		},
		Player: PlayerConfig{
			Name:   "you",
			Health: 100,
			Mana:   100,
		},
		Generator: GeneratorConfig{
			MaxDepth:      6,
			MinComplexity: 5,
			MaxComplexity: 35,
			Attempts:      64,
		},
	}
}

// Load reads a YAML file. Fields it leaves out keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and normalizes the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	cfg = cfg.Normalized()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Normalized returns a config with defaults applied to every unset or
// out-of-range field.
func (c Config) Normalized() Config {
	def := Default()
	n := c
	n.Spellbook = strings.TrimSpace(n.Spellbook)
	positive(&n.Tick.Period, def.Tick.Period)
	if n.Tick.Damping <= 0 || n.Tick.Damping > 1 {
		n.Tick.Damping = def.Tick.Damping
	}
	if n.Tick.SlowBy < 0 {
		n.Tick.SlowBy = def.Tick.SlowBy
	}
	positive(&n.World.CollisionRadius, def.World.CollisionRadius)
	positive(&n.World.BuffDuration, def.World.BuffDuration)
	positive(&n.World.Width, def.World.Width)
	positive(&n.World.Height, def.World.Height)
	if n.World.MaxExecDepth <= 0 {
		n.World.MaxExecDepth = def.World.MaxExecDepth
	}
	if n.World.MaxSteps <= 0 {
		n.World.MaxSteps = def.World.MaxSteps
	}

	n.Player.Name = strings.TrimSpace(n.Player.Name)
	if n.Player.Name == "" {
		n.Player.Name = def.Player.Name
	}
	if n.Player.Health <= 0 {
		n.Player.Health = def.Player.Health
	}
	if n.Player.Mana < 0 {
		n.Player.Mana = def.Player.Mana
	}

	if n.Generator.MaxDepth <= 0 {
		n.Generator.MaxDepth = def.Generator.MaxDepth
	}
	if n.Generator.Attempts <= 0 {
		n.Generator.Attempts = def.Generator.Attempts
	}
	if n.Generator.MaxComplexity == 0 {
		n.Generator.MaxComplexity = def.Generator.MaxComplexity
	}
	if n.Generator.MinComplexity > n.Generator.MaxComplexity {
		n.Generator.MinComplexity, n.Generator.MaxComplexity = n.Generator.MaxComplexity, n.Generator.MinComplexity
	}

	n.Bots = make([]BotConfig, len(c.Bots))
	for i, b := range c.Bots {
		b.Name = strings.TrimSpace(b.Name)
		weights := make([]int, len(b.Spells))
		for j := range weights {
			weights[j] = 1
			if j < len(b.Weights) && b.Weights[j] > 0 {
				weights[j] = b.Weights[j]
			}
		}
		b.Weights = weights
		if b.Every <= 0 {
			b.Every = 20
		}
		n.Bots[i] = b
	}
	return n
}

func positive(v *float64, def float64) {
	if *v <= 0 {
		*v = def
	}
}

// Validate reports settings that have no sensible default.
func (c Config) Validate() error {
	seen := map[string]bool{c.Player.Name: true}
	for i, b := range c.Bots {
		if b.Name == "" {
			return fmt.Errorf("bot %d has no name", i+1)
		}
		if seen[b.Name] {
			return fmt.Errorf("duplicate player name %q", b.Name)
		}
		seen[b.Name] = true
	}
	return nil
}

// WorldConfig returns the simulation constants for world.New.
func (c Config) WorldConfig() world.Config {
	return world.Config{
		TickPeriod:      c.Tick.Period,
		Damping:         c.Tick.Damping,
		SlowBy:          c.Tick.SlowBy,
		CollisionRadius: c.World.CollisionRadius,
		BuffDuration:    c.World.BuffDuration,
		MaxExecDepth:    c.World.MaxExecDepth,
		MaxSteps:        c.World.MaxSteps,
	}
}
