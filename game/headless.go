package game

import "math"

// Synthetic pointer for headless runs: a Lissajous sweep that leaves the
// surface for the last quarter of every cycle.
const (
	headlessCycle      = 1200
	headlessPressEvery = 240
)

// UpdateHeadless drives the synthetic pointer and advances one frame.
func (s *Simulator) UpdateHeadless() {
	f := s.frame
	phase := float64(f%headlessCycle) / headlessCycle
	if phase >= 0.75 {
		s.PointerLeave()
	} else {
		t := float64(f) * 0.01
		x := float64(s.width) * (0.5 + 0.35*math.Sin(3*t))
		y := float64(s.height) * (0.5 + 0.35*math.Sin(2*t+math.Pi/4))
		s.PointerMove(x, y)
		if f > 0 && f%headlessPressEvery == 0 {
			kind := PressClick
			if (f/headlessPressEvery)%2 == 0 {
				kind = PressTouch
			}
			s.Press(x, y, kind)
		}
	}
	s.Frame()
}
