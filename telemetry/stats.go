package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FieldStats holds aggregated statistics for a time window.
type FieldStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Pressure distribution (sampled at window end)
	TotalPressure float64 `csv:"total_pressure"`
	PressureMean  float64 `csv:"pressure_mean"`
	PressureP50   float64 `csv:"pressure_p50"`
	PressureP90   float64 `csv:"pressure_p90"`
	PressureMax   float64 `csv:"pressure_max"`
	CoverageFrac  float64 `csv:"coverage"` // fraction of cells above the coverage threshold

	MeanSpeed float64 `csv:"mean_speed"`
	MaxSpeed  float64 `csv:"max_speed"`

	// Wisps
	LiveWisps      int     `csv:"live_wisps"`
	Spawned        int     `csv:"spawned"`
	Expired        int     `csv:"expired"`
	Despawned      int     `csv:"despawned"`
	MeanVisibility float64 `csv:"mean_visibility"`

	// Emitter inflow during the window
	Inflow float64 `csv:"inflow"`
}

// Quantiles returns the mean and the requested quantiles of values.
// values is not modified. Returns zeros for an empty slice.
func Quantiles(values []float64, ps ...float64) (mean float64, qs []float64) {
	qs = make([]float64, len(ps))
	if len(values) == 0 {
		return 0, qs
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	for i, p := range ps {
		qs[i] = stat.Quantile(p, stat.LinInterp, sorted, nil)
	}
	return mean, qs
}

// PressureSummary reduces a pressure buffer to the distribution fields.
func PressureSummary(pressure []float32, coverageThreshold float32) (total, mean, p50, p90, peak, coverage float64) {
	if len(pressure) == 0 {
		return 0, 0, 0, 0, 0, 0
	}
	vals := make([]float64, len(pressure))
	covered := 0
	for i, p := range pressure {
		vals[i] = float64(p)
		if p > coverageThreshold {
			covered++
		}
	}
	total = floats.Sum(vals)
	peak = floats.Max(vals)
	mean, qs := Quantiles(vals, 0.5, 0.9)
	coverage = float64(covered) / float64(len(vals))
	return total, mean, qs[0], qs[1], peak, coverage
}

// LogValue implements slog.LogValuer for structured logging.
func (s FieldStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Float64("total_pressure", s.TotalPressure),
		slog.Float64("pressure_mean", s.PressureMean),
		slog.Float64("pressure_p50", s.PressureP50),
		slog.Float64("pressure_p90", s.PressureP90),
		slog.Float64("pressure_max", s.PressureMax),
		slog.Float64("coverage", s.CoverageFrac),
		slog.Float64("mean_speed", s.MeanSpeed),
		slog.Float64("max_speed", s.MaxSpeed),
		slog.Int("live_wisps", s.LiveWisps),
		slog.Int("spawned", s.Spawned),
		slog.Int("expired", s.Expired),
		slog.Int("despawned", s.Despawned),
		slog.Float64("mean_visibility", s.MeanVisibility),
		slog.Float64("inflow", s.Inflow),
	)
}

// LogStats logs the window stats using slog.
func (s FieldStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"total_pressure", s.TotalPressure,
		"pressure_p90", s.PressureP90,
		"pressure_max", s.PressureMax,
		"coverage", s.CoverageFrac,
		"max_speed", s.MaxSpeed,
		"live_wisps", s.LiveWisps,
		"spawned", s.Spawned,
		"expired", s.Expired,
		"despawned", s.Despawned,
		"mean_visibility", s.MeanVisibility,
	)
}
