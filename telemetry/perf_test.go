package telemetry

import (
	"testing"
	"time"
)

// fakeClock advances only when told to.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestPerfCollector_PhaseTiming(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	pc := NewPerfCollector(10, clk.now)

	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseAgents)
		clk.advance(3 * time.Millisecond)
		pc.StartPhase(PhaseRender)
		clk.advance(1 * time.Millisecond)
		pc.EndFrame()
		clk.advance(12 * time.Millisecond)
	}

	stats := pc.Stats()
	if stats.AvgFrameDuration != 4*time.Millisecond {
		t.Errorf("expected 4ms average frame, got %v", stats.AvgFrameDuration)
	}
	if stats.PhaseAvg[PhaseAgents] != 3*time.Millisecond {
		t.Errorf("expected 3ms agents phase, got %v", stats.PhaseAvg[PhaseAgents])
	}
	if pct := stats.PhasePct[PhaseAgents]; pct < 74.9 || pct > 75.1 {
		t.Errorf("expected agents at 75%%, got %v", pct)
	}
	if stats.Headroom < 249 || stats.Headroom > 251 {
		t.Errorf("expected headroom near 250 fps, got %v", stats.Headroom)
	}
	// Frames end every 16ms.
	if stats.FPS < 62 || stats.FPS > 63 {
		t.Errorf("expected 62.5 fps, got %v", stats.FPS)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	pc := NewPerfCollector(5, clk.now)

	// Old slow frames are pushed out by fast ones.
	for i := 0; i < 5; i++ {
		pc.StartFrame()
		clk.advance(20 * time.Millisecond)
		pc.EndFrame()
	}
	for i := 0; i < 5; i++ {
		pc.StartFrame()
		clk.advance(2 * time.Millisecond)
		pc.EndFrame()
	}

	stats := pc.Stats()
	if stats.MaxFrameDuration != 2*time.Millisecond {
		t.Errorf("expected window to hold only fast frames, max %v", stats.MaxFrameDuration)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10, nil)

	stats := pc.Stats()
	if stats.AvgFrameDuration != 0 {
		t.Error("expected zero avg frame duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	s := PerfStats{
		AvgFrameDuration: 1500 * time.Microsecond,
		PhasePct:         map[string]float64{PhaseAgents: 60, PhaseRender: 30},
		FPS:              59.9,
	}
	rec := s.ToCSV(600)
	if rec.WindowEnd != 600 || rec.AvgFrameUS != 1500 {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.AgentsPct != 60 || rec.RenderPct != 30 || rec.BurstsPct != 0 {
		t.Errorf("unexpected phase split %+v", rec)
	}
}
