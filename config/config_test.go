package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}

	if !cfg.Solver.Enabled {
		t.Error("expected solver enabled by default")
	}
	if cfg.Spawner.RadiusXY != (Range{0.5, 1.0}) {
		t.Errorf("radius_xy = %v, want [0.5 1.0]", cfg.Spawner.RadiusXY)
	}
	if cfg.Spawner.RadiusZ != (Range{0.05, 0.1}) {
		t.Errorf("radius_z = %v, want [0.05 0.1]", cfg.Spawner.RadiusZ)
	}
	if cfg.Spawner.SpeedXY != (Range{0.2, 0.5}) || cfg.Spawner.SpeedZ != (Range{0.3, 0.6}) {
		t.Errorf("unexpected speed ranges xy=%v z=%v", cfg.Spawner.SpeedXY, cfg.Spawner.SpeedZ)
	}
	if cfg.Derived.TicksPerSecond != 60 {
		t.Errorf("ticks per second = %d, want 60", cfg.Derived.TicksPerSecond)
	}
	if cfg.Derived.StatsWindowTicks != 600 {
		t.Errorf("stats window ticks = %d, want 600", cfg.Derived.StatsWindowTicks)
	}
}

func TestLoadOverridesOnlyPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "solver:\n  decay_rate: 0.05\nspawner:\n  max_particles: 12\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading override: %v", err)
	}

	if cfg.Solver.DecayRate != 0.05 {
		t.Errorf("decay_rate = %v, want 0.05", cfg.Solver.DecayRate)
	}
	if cfg.Spawner.MaxParticles != 12 {
		t.Errorf("max_particles = %d, want 12", cfg.Spawner.MaxParticles)
	}
	// Untouched fields keep their defaults
	if cfg.Solver.DiffusionRate != 0.1 {
		t.Errorf("diffusion_rate = %v, want default 0.1", cfg.Solver.DiffusionRate)
	}
}

func TestLoadRejectsUnstableSettings(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"diffusion above one", "solver:\n  diffusion_rate: 1.5\n", "diffusion_rate"},
		{"negative decay", "solver:\n  decay_rate: -0.1\n", "decay_rate"},
		{"fade overlap", "animator:\n  fade_in: 0.7\n  fade_out: 0.7\n", "fade"},
		{"inverted range", "spawner:\n  life: [5, 1]\n", "spawner.life"},
		{"unknown noise", "noise:\n  kind: worley\n", "noise.kind"},
		{"zero life decay", "animator:\n  life_decay: 0\n", "life_decay"},
		{"negative life decay", "animator:\n  life_decay: -0.01\n", "life_decay"},
		{"non-positive life", "spawner:\n  life: [0, 3]\n", "spawner.life"},
		{"negative max particles", "spawner:\n  max_particles: -1\n", "max_particles"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Solver.DecayRate = 0.125

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("writing yaml: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading yaml: %v", err)
	}
	if loaded.Solver.DecayRate != 0.125 {
		t.Errorf("decay_rate = %v after roundtrip, want 0.125", loaded.Solver.DecayRate)
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("solver:\n  decay_rate: 0.01\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("creating watcher: %v", err)
	}
	defer w.Close()

	// Unwatched sibling must not produce an event
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("solver:\n  decay_rate: 0.02\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-w.Events:
		if name != filepath.Clean(path) {
			t.Errorf("event for %q, want %q", name, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watcher event")
	}
}
