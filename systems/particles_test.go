package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/heroflow/components"
	"github.com/pthm-cable/heroflow/config"
)

func TestBursts_EmitAndExpire(t *testing.T) {
	cfg := loadConfig(t, "")

	tests := []struct {
		name string
		emit config.EmitConfig
	}{
		{"click", cfg.Burst.Click},
		{"touch", cfg.Burst.Touch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBursts(cfg.Burst, rand.New(rand.NewSource(1)))

			n := b.Emit(100, 100, tt.emit)
			if n != tt.emit.Count {
				t.Fatalf("expected %d sparks emitted, got %d", tt.emit.Count, n)
			}
			if b.Count() != tt.emit.Count {
				t.Fatalf("expected %d live sparks, got %d", tt.emit.Count, b.Count())
			}

			b.Each(func(spark *components.Spark, life *components.Lifetime) {
				if life.Life < tt.emit.Life.Min || life.Life > tt.emit.Life.Max {
					t.Errorf("spark life %v outside [%v, %v]", life.Life, tt.emit.Life.Min, tt.emit.Life.Max)
				}
				if s := spark.Vel.X*spark.Vel.X + spark.Vel.Y*spark.Vel.Y; s < tt.emit.Speed.Min*tt.emit.Speed.Min-1e-9 {
					t.Errorf("spark speed below minimum")
				}
			})

			for i := 0; i < int(tt.emit.Life.Max); i++ {
				b.Update()
			}
			if b.Count() != 0 {
				t.Errorf("expected all sparks expired, %d left", b.Count())
			}
			remaining := 0
			b.Each(func(*components.Spark, *components.Lifetime) { remaining++ })
			if remaining != 0 {
				t.Errorf("expected empty world, iterated %d sparks", remaining)
			}
		})
	}
}

func TestBursts_DragSlowsSparks(t *testing.T) {
	cfg := loadConfig(t, "")
	b := NewBursts(cfg.Burst, rand.New(rand.NewSource(2)))
	b.Emit(0, 0, config.EmitConfig{Count: 1, Speed: config.Range{Min: 4, Max: 4}, Life: config.Range{Min: 10, Max: 10}, MaxLife: 10})

	b.Update()
	b.Each(func(spark *components.Spark, _ *components.Lifetime) {
		speed := spark.Vel.X*spark.Vel.X + spark.Vel.Y*spark.Vel.Y
		want := 4 * cfg.Burst.Drag
		if d := speed - want*want; d > 1e-9 || d < -1e-9 {
			t.Errorf("expected speed %v after drag, got squared %v", want, speed)
		}
	})
}

func TestBursts_Cap(t *testing.T) {
	cfg := loadConfig(t, "")
	cfg.Burst.MaxSparks = 30
	b := NewBursts(cfg.Burst, rand.New(rand.NewSource(3)))

	b.Emit(0, 0, cfg.Burst.Click)
	n := b.Emit(0, 0, cfg.Burst.Click)
	if n != 5 {
		t.Errorf("expected second burst capped at 5, got %d", n)
	}
	if b.Count() != 30 {
		t.Errorf("expected 30 live sparks, got %d", b.Count())
	}

	b.Clear()
	if b.Count() != 0 {
		t.Errorf("expected no sparks after clear, got %d", b.Count())
	}
}
