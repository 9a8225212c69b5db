package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/heroflow/components"
	"github.com/pthm-cable/heroflow/config"
)

// Motion advances agents under wander, pointer attraction and integration.
type Motion struct {
	cfg    *config.FieldConfig
	noise  *NoiseField
	rng    *rand.Rand
	bounds Bounds
}

// NewMotion creates the force model.
func NewMotion(cfg *config.FieldConfig, noise *NoiseField, rng *rand.Rand) *Motion {
	return &Motion{cfg: cfg, noise: noise, rng: rng}
}

// SetBounds updates the surface agents spawn into and wrap around.
func (m *Motion) SetBounds(b Bounds) {
	m.bounds = b
}

// Bounds returns the current surface bounds.
func (m *Motion) Bounds() Bounds {
	return m.bounds
}

// SetConfig swaps the field parameters, taking effect on the next update.
func (m *Motion) SetConfig(cfg *config.FieldConfig) {
	m.cfg = cfg
}

// Spawn returns a freshly randomized agent.
func (m *Motion) Spawn() components.Agent {
	var a components.Agent
	m.Reset(&a)
	return a
}

// Reset replaces every field of the agent with a new random state.
func (m *Motion) Reset(a *components.Agent) {
	cfg := m.cfg
	pos := r2.Vec{X: m.rng.Float64() * m.bounds.Width, Y: m.rng.Float64() * m.bounds.Height}
	base := cfg.Speed.Base.Lerp(m.rng.Float64())

	vel := r2.Vec{
		X: (m.rng.Float64()*2 - 1) * cfg.InitialSpeed,
		Y: (m.rng.Float64()*2 - 1) * cfg.InitialSpeed,
	}
	if speed := r2.Norm(vel); speed > base {
		vel = r2.Scale(base/speed, vel)
	}

	*a = components.Agent{
		Pos:          pos,
		Prev:         pos,
		Vel:          vel,
		BaseMaxSpeed: base,
		MaxSpeed:     base,
		Life:         cfg.Life.Lerp(m.rng.Float64()),
		Noise:        r2.Vec{X: m.rng.Float64() * 1000, Y: m.rng.Float64() * 1000},
		Phase:        m.rng.Float64() * 2 * math.Pi,
	}
}

// Update advances one agent by one frame.
func (m *Motion) Update(a *components.Agent, ptr components.Pointer, frame int) {
	cfg := m.cfg
	a.Prev = a.Pos

	dir, dist, falloff, influenced := m.probe(a, ptr)

	if !influenced || !cfg.Wander.SuppressWhenAttracted {
		m.wander(a, frame)
	}

	switch {
	case influenced:
		m.attract(a, dir, dist, falloff)
	case ptr.Active:
		m.relax(a, cfg.Attract.DecayRate)
	default:
		m.relax(a, cfg.Attract.IdleDecayRate)
	}

	integrate(a, cfg.Friction, cfg.Speed.AlignmentBonus)
	wrap(a, m.bounds, cfg.Margin)

	if a.Age > a.Life {
		m.Reset(a)
	}
}

// probe returns the unit direction to the pointer, the distance and the falloff,
// and whether the agent is inside the influence annulus.
func (m *Motion) probe(a *components.Agent, ptr components.Pointer) (r2.Vec, float64, float64, bool) {
	at := m.cfg.Attract
	if !ptr.Active || at.Mode == config.AttractNone {
		return r2.Vec{}, 0, 0, false
	}

	d := r2.Sub(ptr.Vec(), a.Pos)
	dist := r2.Norm(d)
	if dist >= at.InfluenceRadius || dist <= at.MinDistance {
		return r2.Vec{}, dist, 0, false
	}

	falloff := math.Pow(1-dist/at.InfluenceRadius, at.Exponent)
	return r2.Scale(1/dist, d), dist, falloff, true
}

func (m *Motion) wander(a *components.Agent, frame int) {
	w := m.cfg.Wander
	switch w.Mode {
	case config.WanderNoise:
		n := m.noise.Sample(a.Noise.X, a.Noise.Y, float64(frame)*w.TimeDrift)
		angle := n * w.AngleSpan
		a.Acc = r2.Add(a.Acc, r2.Scale(w.Force, r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}))
		a.Noise = r2.Add(a.Noise, r2.Vec{X: w.Step, Y: w.Step})

	case config.WanderBrownian:
		a.Acc = r2.Add(a.Acc, r2.Vec{X: m.uniform(w.Jitter), Y: m.uniform(w.Jitter)})
		if m.rng.Float64() < w.KickChance {
			a.Acc = r2.Add(a.Acc, r2.Vec{X: m.uniform(w.Kick), Y: m.uniform(w.Kick)})
		}
	}
}

func (m *Motion) attract(a *components.Agent, dir r2.Vec, dist, falloff float64) {
	at := m.cfg.Attract

	switch at.Mode {
	case config.AttractOrbit:
		if dist > at.OrbitRadius {
			a.Acc = r2.Add(a.Acc, r2.Scale(at.Attract*falloff, dir))
		} else {
			a.Acc = r2.Sub(a.Acc, r2.Scale(at.Repel*(1-dist/at.OrbitRadius), dir))
		}
		tangent := r2.Vec{X: -dir.Y, Y: dir.X}
		a.Acc = r2.Add(a.Acc, r2.Scale(at.Orbit*falloff, tangent))

	case config.AttractSteer:
		target := r2.Scale(a.BaseMaxSpeed*at.SteerSpeed, dir)
		t := at.Steer * falloff
		a.Vel = r2.Vec{X: lerp(a.Vel.X, target.X, t), Y: lerp(a.Vel.Y, target.Y, t)}
	}

	a.Alignment = clamp01(lerp(a.Alignment, falloff, at.AlignRate))

	sp := m.cfg.Speed
	target := lerp(a.BaseMaxSpeed, a.BaseMaxSpeed*sp.Boost, a.Alignment)
	a.MaxSpeed = lerp(a.MaxSpeed, target, sp.BoostSmoothing)
}

// relax decays alignment toward zero and the speed cap toward its base.
func (m *Motion) relax(a *components.Agent, rate float64) {
	a.Alignment = clamp01(lerp(a.Alignment, 0, rate))
	a.MaxSpeed = lerp(a.MaxSpeed, a.BaseMaxSpeed, m.cfg.Speed.RecoverRate)
}

// Impulse pushes agents within radius of at away from it, scaled by (1 - d/radius).
// Returns the number of agents nudged.
func (m *Motion) Impulse(agents []components.Agent, at r2.Vec, radius, strength float64) int {
	if radius <= 0 {
		return 0
	}
	n := 0
	for i := range agents {
		a := &agents[i]
		d := r2.Sub(a.Pos, at)
		dist := r2.Norm(d)
		if dist >= radius || dist == 0 {
			continue
		}
		a.Vel = r2.Add(a.Vel, r2.Scale(strength*(1-dist/radius)/dist, d))
		n++
	}
	return n
}

func (m *Motion) uniform(span float64) float64 {
	return (m.rng.Float64()*2 - 1) * span
}
