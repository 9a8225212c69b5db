package systems

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/heroflow/config"
)

// QualityController watches the frame rate and degrades the population once
// when it stays low. There is no way back to nominal within a session.
type QualityController struct {
	cfg config.QualityConfig

	samples []float64 // Ring of instantaneous FPS values
	next    int
	count   int

	frames  int
	last    time.Time
	mean    float64
	reduced bool
}

// NewQualityController creates a controller with an empty sample window.
func NewQualityController(cfg config.QualityConfig) *QualityController {
	window := max(cfg.Window, 1)
	if cfg.CheckInterval < 1 {
		cfg.CheckInterval = 1
	}
	return &QualityController{
		cfg:     cfg,
		samples: make([]float64, window),
	}
}

// Sample records the frame boundary observed at now. It returns true exactly
// once: on the check that latches the controller into the reduced state.
func (q *QualityController) Sample(now time.Time) bool {
	if !q.last.IsZero() {
		if dt := now.Sub(q.last); dt > 0 {
			q.push(1000 / (float64(dt) / float64(time.Millisecond)))
		}
	}
	q.last = now
	q.frames++

	if q.count < len(q.samples) || q.frames%q.cfg.CheckInterval != 0 {
		return false
	}
	q.mean = stat.Mean(q.samples, nil)
	if q.reduced || q.mean >= q.cfg.LowFPS {
		return false
	}
	q.reduced = true
	return true
}

func (q *QualityController) push(fps float64) {
	q.samples[q.next] = fps
	q.next = (q.next + 1) % len(q.samples)
	if q.count < len(q.samples) {
		q.count++
	}
}

// Keep returns how many of n agents survive the reduction.
func (q *QualityController) Keep(n int) int {
	return int(math.Floor(float64(n)*q.cfg.Keep + 1e-9))
}

// Reduced reports whether the controller has latched.
func (q *QualityController) Reduced() bool {
	return q.reduced
}

// MeanFPS returns the mean of the window at the last check.
func (q *QualityController) MeanFPS() float64 {
	return q.mean
}

// Full reports whether the sample window has filled.
func (q *QualityController) Full() bool {
	return q.count == len(q.samples)
}
