package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of frames.
type WindowStats struct {
	WindowStartFrame int `csv:"-"`
	WindowEndFrame   int `csv:"window_end"`

	// Population at window end
	Population int `csv:"population"`
	Target     int `csv:"target"`
	Sparks     int `csv:"sparks"`
	Glowing    int `csv:"glowing"`

	// Events during window
	Presses       int `csv:"presses"`
	SparksEmitted int `csv:"sparks_emitted"`
	Nudged        int `csv:"nudged"`
	Respawns      int `csv:"respawns"`
	Resizes       int `csv:"resizes"`

	// Pointer influence (sampled at window end)
	Influenced    int     `csv:"influenced"`
	AlignmentMean float64 `csv:"alignment_mean"`
	AlignmentStd  float64 `csv:"alignment_std"`
	AlignmentP90  float64 `csv:"alignment_p90"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Quality
	FPS     float64 `csv:"fps"`
	Reduced bool    `csv:"reduced"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Distribution returns mean, standard deviation and the 50th and 90th
// percentiles of values. values is sorted in place.
func Distribution(values []float64) (mean, std, p50, p90 float64) {
	switch len(values) {
	case 0:
		return 0, 0, 0, 0
	case 1:
		return values[0], 0, values[0], values[0]
	}

	mean, std = stat.MeanStdDev(values, nil)
	sort.Float64s(values)
	return mean, std, Percentile(values, 0.5), Percentile(values, 0.9)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frame", s.WindowEndFrame),
		slog.Int("population", s.Population),
		slog.Int("target", s.Target),
		slog.Int("sparks", s.Sparks),
		slog.Int("presses", s.Presses),
		slog.Int("respawns", s.Respawns),
		slog.Int("influenced", s.Influenced),
		slog.Float64("alignment_mean", s.AlignmentMean),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("fps", s.FPS),
		slog.Bool("reduced", s.Reduced),
	)
}

// LogStats logs the window at info level.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
