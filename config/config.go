// Package config provides configuration loading and access for the miasma engine.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Sim       SimConfig       `yaml:"sim"`
	Solver    SolverConfig    `yaml:"solver"`
	Spawner   SpawnerConfig   `yaml:"spawner"`
	Animator  AnimatorConfig  `yaml:"animator"`
	Noise     NoiseConfig     `yaml:"noise"`
	Level     LevelConfig     `yaml:"level"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// Range is an inclusive [min, max] pair, written as a two element list in YAML.
type Range [2]float64

// Min returns the lower bound.
func (r Range) Min() float64 { return r[0] }

// Max returns the upper bound.
func (r Range) Max() float64 { return r[1] }

// F32 returns both bounds as float32.
func (r Range) F32() (float32, float32) { return float32(r[0]), float32(r[1]) }

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimConfig holds the fixed tick settings.
type SimConfig struct {
	DT   float64 `yaml:"dt"`   // seconds per tick
	Seed int64   `yaml:"seed"` // 0 = time based
}

// SolverConfig holds field solver parameters.
type SolverConfig struct {
	Enabled         bool    `yaml:"enabled"`
	DiffusionRate   float64 `yaml:"diffusion_rate"`   // blend toward neighbour mean per tick, [0,1]
	DecayRate       float64 `yaml:"decay_rate"`       // fraction lost per tick at modifier 1.0
	GradientScale   float64 `yaml:"gradient_scale"`   // pressure gradient to velocity
	VelocityDamping float64 `yaml:"velocity_damping"` // fraction of previous velocity kept
	MaxVelocity     float64 `yaml:"max_velocity"`     // soft cap on velocity magnitude
	MaxPressure     float64 `yaml:"max_pressure"`     // hard cap on cell pressure
}

// SpawnerConfig holds wisp spawning parameters.
type SpawnerConfig struct {
	MaxParticles        int     `yaml:"max_particles"`
	SampleCells         int     `yaml:"sample_cells"` // cells sampled per tick (<=0 = all)
	MaxPerTick          int     `yaml:"max_per_tick"`
	ProbabilityScale    float64 `yaml:"probability_scale"`
	ProbabilityExponent float64 `yaml:"probability_exponent"`
	MaxProbability      float64 `yaml:"max_probability"`
	Life                Range   `yaml:"life"`
	VelSpeed            Range   `yaml:"vel_speed"`
	RadiusXY            Range   `yaml:"radius_xy"`
	RadiusZ             Range   `yaml:"radius_z"`
	SpeedXY             Range   `yaml:"speed_xy"`
	SpeedZ              Range   `yaml:"speed_z"`
}

// AnimatorConfig holds per-wisp animation parameters.
type AnimatorConfig struct {
	LifeDecay          float64 `yaml:"life_decay"`          // life removed per tick
	FadeIn             float64 `yaml:"fade_in"`             // fraction of life spent fading in
	FadeOut            float64 `yaml:"fade_out"`            // fraction of life spent fading out
	VisibilityRate     float64 `yaml:"visibility_rate"`     // max visibility change per second
	NoiseAmplitude     float64 `yaml:"noise_amplitude"`     // world units
	NoiseScale         float64 `yaml:"noise_scale"`         // noise coords per world unit
	NoiseSpeed         float64 `yaml:"noise_speed"`         // noise coords per second
	DirectionSmoothing float64 `yaml:"direction_smoothing"` // 0..1, weight of the new sample
	ParallelThreshold  int     `yaml:"parallel_threshold"`  // live wisps before parallel update
}

// NoiseConfig selects the coherent noise backend.
type NoiseConfig struct {
	Kind string `yaml:"kind"` // "perlin" or "simplex"
	Seed int64  `yaml:"seed"`
}

// LevelConfig holds the house layout source.
type LevelConfig struct {
	Path string `yaml:"path"` // empty = embedded demo house
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // seconds
	PerfWindow  int     `yaml:"perf_window"`  // ticks
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32             float32 // Sim.DT as float32
	TicksPerSecond   int     // round(1/DT)
	StatsWindowTicks int32   // Telemetry.StatsWindow in ticks
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects settings the solver cannot run stably with.
func (c *Config) validate() error {
	if c.Sim.DT <= 0 {
		return fmt.Errorf("sim.dt must be positive, got %v", c.Sim.DT)
	}
	if c.Solver.DiffusionRate < 0 || c.Solver.DiffusionRate > 1 {
		return fmt.Errorf("solver.diffusion_rate must be in [0,1], got %v", c.Solver.DiffusionRate)
	}
	if c.Solver.DecayRate < 0 {
		return fmt.Errorf("solver.decay_rate must be non-negative, got %v", c.Solver.DecayRate)
	}
	if c.Solver.MaxVelocity <= 0 {
		return fmt.Errorf("solver.max_velocity must be positive, got %v", c.Solver.MaxVelocity)
	}
	if c.Animator.LifeDecay <= 0 {
		return fmt.Errorf("animator.life_decay must be positive, got %v", c.Animator.LifeDecay)
	}
	if c.Spawner.Life.Min() <= 0 {
		return fmt.Errorf("spawner.life: min must be positive, got %v", c.Spawner.Life.Min())
	}
	if c.Spawner.MaxParticles < 0 {
		return fmt.Errorf("spawner.max_particles must be non-negative, got %d", c.Spawner.MaxParticles)
	}
	if c.Animator.FadeIn < 0 || c.Animator.FadeOut < 0 || c.Animator.FadeIn+c.Animator.FadeOut > 1 {
		return fmt.Errorf("animator fade fractions must be non-negative and sum to at most 1 (fade_in=%v, fade_out=%v)",
			c.Animator.FadeIn, c.Animator.FadeOut)
	}
	ranges := map[string]Range{
		"spawner.life":      c.Spawner.Life,
		"spawner.vel_speed": c.Spawner.VelSpeed,
		"spawner.radius_xy": c.Spawner.RadiusXY,
		"spawner.radius_z":  c.Spawner.RadiusZ,
		"spawner.speed_xy":  c.Spawner.SpeedXY,
		"spawner.speed_z":   c.Spawner.SpeedZ,
	}
	for name, r := range ranges {
		if r.Min() > r.Max() {
			return fmt.Errorf("%s: min %v exceeds max %v", name, r.Min(), r.Max())
		}
	}
	switch c.Noise.Kind {
	case "perlin", "simplex":
	default:
		return fmt.Errorf("noise.kind must be perlin or simplex, got %q", c.Noise.Kind)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Sim.DT)
	c.Derived.TicksPerSecond = int(1.0/c.Sim.DT + 0.5)
	c.Derived.StatsWindowTicks = int32(c.Telemetry.StatsWindow/c.Sim.DT + 0.5)
	if c.Derived.StatsWindowTicks < 1 {
		c.Derived.StatsWindowTicks = 1
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
