package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/miasma/config"
	"github.com/pthm-cable/miasma/telemetry"
)

func TestParamVectorRoundtrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()

	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-12 {
			t.Errorf("%s: roundtrip %v, want %v", pv.Specs[i].Name, back[i], def[i])
		}
	}
}

func TestParamVectorMatchesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	got := pv.ExtractFromConfig(cfg)
	if len(got) != pv.Dim() {
		t.Fatalf("extracted %d values, want %d", len(got), pv.Dim())
	}
	for i, spec := range pv.Specs {
		if got[i] != spec.Default {
			t.Errorf("%s: config default %v, spec default %v", spec.Path, got[i], spec.Default)
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	values := make([]float64, pv.Dim())
	for i := range values {
		values[i] = 1e6
	}
	pv.ApplyToConfig(cfg, values)

	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if got[i] != spec.Max {
			t.Errorf("%s = %v, want clamped to %v", spec.Path, got[i], spec.Max)
		}
	}
}

func TestSummarizeSkipsWarmup(t *testing.T) {
	var windows []telemetry.FieldStats
	for i := 0; i < warmupWindows; i++ {
		windows = append(windows, telemetry.FieldStats{LiveWisps: 1000, TotalPressure: 1})
	}
	for i := 0; i < 4; i++ {
		windows = append(windows, telemetry.FieldStats{LiveWisps: 50, CoverageFrac: 0.25, TotalPressure: 10})
	}

	s := summarize(windows, 100)
	if !s.valid {
		t.Fatal("expected a valid summary")
	}
	if s.fill != 0.5 || s.coverage != 0.25 {
		t.Errorf("fill=%v coverage=%v, want 0.5 and 0.25", s.fill, s.coverage)
	}
	if s.pressureCV != 0 {
		t.Errorf("constant pressure cv = %v, want 0", s.pressureCV)
	}

	if summarize(windows[:warmupWindows], 100).valid {
		t.Error("warmup-only run should be invalid")
	}
}

func TestComputeFitnessPrefersTargets(t *testing.T) {
	fe := &FitnessEvaluator{targets: Targets{Fill: 0.5, Coverage: 0.3}}

	onTarget := fe.computeFitness(runSummary{fill: 0.5, coverage: 0.3, valid: true})
	offTarget := fe.computeFitness(runSummary{fill: 0.9, coverage: 0.05, valid: true})
	swinging := fe.computeFitness(runSummary{fill: 0.5, coverage: 0.3, pressureCV: 0.8, valid: true})

	if onTarget != 0 {
		t.Errorf("on-target fitness = %v, want 0", onTarget)
	}
	if !(offTarget > onTarget && swinging > onTarget) {
		t.Errorf("fitness ordering wrong: on=%v off=%v swinging=%v", onTarget, offTarget, swinging)
	}
	if fe.computeFitness(runSummary{}) != invalidFitness {
		t.Error("invalid run should get the invalid fitness")
	}
}
