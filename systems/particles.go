package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/heroflow/components"
	"github.com/pthm-cable/heroflow/config"
)

// Bursts manages the transient sparks spawned by presses.
// Sparks live in their own ECS world and never interact with agents.
type Bursts struct {
	world  *ecs.World
	mapper *ecs.Map2[components.Spark, components.Lifetime]
	filter *ecs.Filter2[components.Spark, components.Lifetime]
	rng    *rand.Rand

	drag     float64
	max      int
	count    int
	toRemove []ecs.Entity
}

// NewBursts creates the spark world.
func NewBursts(cfg config.BurstConfig, rng *rand.Rand) *Bursts {
	world := ecs.NewWorld()
	return &Bursts{
		world:  world,
		mapper: ecs.NewMap2[components.Spark, components.Lifetime](world),
		filter: ecs.NewFilter2[components.Spark, components.Lifetime](world),
		rng:    rng,
		drag:   cfg.Drag,
		max:    cfg.MaxSparks,
	}
}

// SetConfig updates drag and the spark cap.
func (b *Bursts) SetConfig(cfg config.BurstConfig) {
	b.drag = cfg.Drag
	b.max = cfg.MaxSparks
}

// Emit spawns a radial burst at (x, y) and returns the number of sparks created.
func (b *Bursts) Emit(x, y float64, cfg config.EmitConfig) int {
	n := cfg.Count
	if b.max > 0 {
		n = min(n, b.max-b.count)
	}
	for i := 0; i < n; i++ {
		angle := b.rng.Float64() * 2 * math.Pi
		speed := cfg.Speed.Lerp(b.rng.Float64())

		spark := components.Spark{
			Pos: r2.Vec{X: x, Y: y},
			Vel: r2.Vec{X: math.Cos(angle) * speed, Y: math.Sin(angle) * speed},
		}
		life := components.Lifetime{
			Life:    cfg.Life.Lerp(b.rng.Float64()),
			MaxLife: cfg.MaxLife,
		}
		b.mapper.NewEntity(&spark, &life)
	}
	b.count += max(n, 0)
	return max(n, 0)
}

// Update moves sparks, applies drag and removes the expired ones.
func (b *Bursts) Update() {
	b.toRemove = b.toRemove[:0]

	query := b.filter.Query()
	for query.Next() {
		spark, life := query.Get()

		spark.Pos = r2.Add(spark.Pos, spark.Vel)
		spark.Vel = r2.Scale(b.drag, spark.Vel)

		life.Life--
		if life.Life <= 0 {
			b.toRemove = append(b.toRemove, query.Entity())
		}
	}

	// Removal after the query has finished iterating
	for _, e := range b.toRemove {
		b.mapper.Remove(e)
	}
	b.count -= len(b.toRemove)
}

// Each calls fn for every live spark.
func (b *Bursts) Each(fn func(spark *components.Spark, life *components.Lifetime)) {
	query := b.filter.Query()
	for query.Next() {
		spark, life := query.Get()
		fn(spark, life)
	}
}

// Count returns the number of live sparks.
func (b *Bursts) Count() int {
	return b.count
}

// Clear removes every spark.
func (b *Bursts) Clear() {
	b.toRemove = b.toRemove[:0]
	query := b.filter.Query()
	for query.Next() {
		b.toRemove = append(b.toRemove, query.Entity())
	}
	for _, e := range b.toRemove {
		b.mapper.Remove(e)
	}
	b.count = 0
}
