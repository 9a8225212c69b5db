package telemetry

import "github.com/pthm-cable/heroflow/components"

// InfluenceThreshold is the alignment above which an agent counts as influenced.
const InfluenceThreshold = 0.1

// Collector accumulates events within frame windows and produces WindowStats.
type Collector struct {
	windowFrames int

	// Current window tracking
	windowStart int

	// Event counters for current window
	presses       int
	sparksEmitted int
	nudged        int
	respawns      int
	resizes       int

	// Scratch buffers reused across flushes
	alignment []float64
	speed     []float64
}

// NewCollector creates a new stats collector flushing every windowFrames frames.
func NewCollector(windowFrames int) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{windowFrames: windowFrames}
}

// RecordPress records a click or touch-start.
func (c *Collector) RecordPress() {
	c.presses++
}

// RecordSparks records sparks spawned by a burst.
func (c *Collector) RecordSparks(n int) {
	c.sparksEmitted += n
}

// RecordNudged records agents pushed by an impulse burst.
func (c *Collector) RecordNudged(n int) {
	c.nudged += n
}

// RecordRespawns records agents reset in place.
func (c *Collector) RecordRespawns(n int) {
	c.respawns += n
}

// RecordResize records a viewport resize.
func (c *Collector) RecordResize() {
	c.resizes++
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(frame int) bool {
	return frame-c.windowStart >= c.windowFrames
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(frame int, agents []components.Agent, target, sparks int, fps float64, reduced bool) WindowStats {
	c.alignment = c.alignment[:0]
	c.speed = c.speed[:0]
	influenced, glowing := 0, 0
	for i := range agents {
		a := &agents[i]
		c.alignment = append(c.alignment, a.Alignment)
		c.speed = append(c.speed, a.Speed())
		if a.Alignment > InfluenceThreshold {
			influenced++
		}
		if a.Glow.Intensity > 0 {
			glowing++
		}
	}

	alignMean, alignStd, _, alignP90 := Distribution(c.alignment)
	speedMean, speedStd, speedP50, speedP90 := Distribution(c.speed)

	stats := WindowStats{
		WindowStartFrame: c.windowStart,
		WindowEndFrame:   frame,

		Population: len(agents),
		Target:     target,
		Sparks:     sparks,
		Glowing:    glowing,

		Presses:       c.presses,
		SparksEmitted: c.sparksEmitted,
		Nudged:        c.nudged,
		Respawns:      c.respawns,
		Resizes:       c.resizes,

		Influenced:    influenced,
		AlignmentMean: alignMean,
		AlignmentStd:  alignStd,
		AlignmentP90:  alignP90,

		SpeedMean: speedMean,
		SpeedStd:  speedStd,
		SpeedP50:  speedP50,
		SpeedP90:  speedP90,

		FPS:     fps,
		Reduced: reduced,
	}

	// Reset for next window
	c.windowStart = frame
	c.presses = 0
	c.sparksEmitted = 0
	c.nudged = 0
	c.respawns = 0
	c.resizes = 0

	return stats
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() int {
	return c.windowFrames
}
