package systems

import (
	"testing"
	"time"

	"github.com/pthm-cable/heroflow/config"
)

func testQualityConfig() config.QualityConfig {
	return config.QualityConfig{
		Enabled:       true,
		Window:        30,
		CheckInterval: 60,
		LowFPS:        30,
		Keep:          0.7,
	}
}

// feed samples n frames spaced by dt and returns the frame numbers (1-based) that latched.
func feed(q *QualityController, now *time.Time, n int, dt time.Duration) []int {
	var fired []int
	for i := 0; i < n; i++ {
		*now = now.Add(dt)
		if q.Sample(*now) {
			fired = append(fired, i+1)
		}
	}
	return fired
}

func TestQualityController_LatchesOnLowFPS(t *testing.T) {
	q := NewQualityController(testQualityConfig())
	now := time.Unix(0, 0)

	// 20 FPS for one check interval
	fired := feed(q, &now, 60, 50*time.Millisecond)
	if len(fired) != 1 || fired[0] != 60 {
		t.Fatalf("expected a single latch on frame 60, got %v", fired)
	}
	if !q.Reduced() {
		t.Error("expected reduced state")
	}
	if q.MeanFPS() < 19.9 || q.MeanFPS() > 20.1 {
		t.Errorf("expected mean near 20 fps, got %v", q.MeanFPS())
	}

	// A second sustained low period never fires again.
	if again := feed(q, &now, 600, 100*time.Millisecond); len(again) != 0 {
		t.Errorf("expected one-way latch, fired again on %v", again)
	}
}

func TestQualityController_NominalFPS(t *testing.T) {
	q := NewQualityController(testQualityConfig())
	now := time.Unix(0, 0)

	if fired := feed(q, &now, 600, 16*time.Millisecond); len(fired) != 0 {
		t.Errorf("expected no latch at 60 fps, fired on %v", fired)
	}
	if q.Reduced() {
		t.Error("expected nominal state")
	}
}

func TestQualityController_WaitsForFullWindow(t *testing.T) {
	cfg := testQualityConfig()
	cfg.Window = 30
	cfg.CheckInterval = 10
	q := NewQualityController(cfg)
	now := time.Unix(0, 0)

	// The first frame has no predecessor, so the window fills on frame 31.
	fired := feed(q, &now, 40, 50*time.Millisecond)
	if len(fired) != 1 || fired[0] != 40 {
		t.Errorf("expected first latch at frame 40 once the window is full, got %v", fired)
	}
}

func TestQualityController_RecoversBeforeCheck(t *testing.T) {
	q := NewQualityController(testQualityConfig())
	now := time.Unix(0, 0)

	// Slow start, then the last full window is fast.
	feed(q, &now, 20, 100*time.Millisecond)
	if fired := feed(q, &now, 40, 10*time.Millisecond); len(fired) != 0 {
		t.Errorf("expected no latch when the window mean is healthy, got %v", fired)
	}
}

func TestQualityController_Keep(t *testing.T) {
	q := NewQualityController(testQualityConfig())
	tests := []struct {
		n, want int
	}{
		{1000, 700},
		{700, 490},
		{333, 233},
		{1, 0},
		{0, 0},
	}
	for _, tt := range tests {
		if got := q.Keep(tt.n); got != tt.want {
			t.Errorf("Keep(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
