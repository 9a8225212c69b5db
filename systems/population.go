package systems

import (
	"math"
	"slices"

	"github.com/pthm-cable/heroflow/components"
	"github.com/pthm-cable/heroflow/config"
)

// Population is the ordered, explicitly owned collection of agents.
type Population struct {
	Agents []components.Agent
}

// Len returns the number of agents.
func (p *Population) Len() int {
	return len(p.Agents)
}

// Resize truncates the tail or appends freshly spawned agents until the
// population holds exactly n agents.
func (p *Population) Resize(n int, spawn func() components.Agent) {
	if n < 0 {
		n = 0
	}
	if n <= len(p.Agents) {
		p.Agents = p.Agents[:n]
		return
	}
	p.Agents = slices.Grow(p.Agents, n-len(p.Agents))
	for len(p.Agents) < n {
		p.Agents = append(p.Agents, spawn())
	}
}

// DropFront removes the n earliest-indexed agents.
func (p *Population) DropFront(n int) {
	n = min(max(n, 0), len(p.Agents))
	p.Agents = slices.Delete(p.Agents, 0, n)
}

// TargetCount picks the population size for a viewport width.
// The first tier whose max_width exceeds the width wins; max_width 0 matches any width.
func TargetCount(pc config.PopulationConfig, width int, reducedMotion bool) int {
	count := 0
	for _, tier := range pc.Tiers {
		if tier.MaxWidth == 0 || width < tier.MaxWidth {
			count = tier.Count
			break
		}
	}
	if reducedMotion {
		count = int(math.Floor(float64(count) * pc.ReducedMotionScale))
	}
	return count
}
