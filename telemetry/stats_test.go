package telemetry

import (
	"math"
	"testing"
)

func TestQuantiles(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		wantMean float64
		wantMin  float64 // lower bound for p50
		wantMax  float64 // upper bound for p50
	}{
		{"empty", nil, 0, 0, 0},
		{"single", []float64{5}, 5, 5, 5},
		{"constant", []float64{2, 2, 2, 2}, 2, 2, 2},
		{"ramp", []float64{5, 1, 4, 2, 3}, 3, 2, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, qs := Quantiles(tt.values, 0.5)
			if math.Abs(mean-tt.wantMean) > 1e-9 {
				t.Errorf("mean = %v, want %v", mean, tt.wantMean)
			}
			if len(qs) != 1 {
				t.Fatalf("got %d quantiles, want 1", len(qs))
			}
			if qs[0] < tt.wantMin || qs[0] > tt.wantMax {
				t.Errorf("p50 = %v, want in [%v, %v]", qs[0], tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestQuantilesDoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Quantiles(values, 0.9)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input reordered: %v", values)
	}
}

func TestPressureSummary(t *testing.T) {
	pressure := []float32{0, 0, 0.5, 1.5}

	total, mean, p50, p90, peak, coverage := PressureSummary(pressure, CoverageThreshold)

	if math.Abs(total-2) > 1e-6 {
		t.Errorf("total = %v, want 2", total)
	}
	if math.Abs(mean-0.5) > 1e-6 {
		t.Errorf("mean = %v, want 0.5", mean)
	}
	if peak != 1.5 {
		t.Errorf("peak = %v, want 1.5", peak)
	}
	if coverage != 0.5 {
		t.Errorf("coverage = %v, want 0.5", coverage)
	}
	if p50 > p90 || p90 > peak {
		t.Errorf("quantiles out of order: p50=%v p90=%v peak=%v", p50, p90, peak)
	}
}

func TestPressureSummaryEmpty(t *testing.T) {
	total, mean, p50, p90, peak, coverage := PressureSummary(nil, CoverageThreshold)
	if total != 0 || mean != 0 || p50 != 0 || p90 != 0 || peak != 0 || coverage != 0 {
		t.Error("empty buffer should return all zeros")
	}
}
