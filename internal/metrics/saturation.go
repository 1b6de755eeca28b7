package metrics

import "github.com/san-kum/xosa/internal/loop"

// Saturation is the fraction of ticks on which either axis saturated.
type Saturation struct {
	name      string
	saturated int
	samples   int
}

func NewSaturation() *Saturation {
	return &Saturation{name: "saturation"}
}

func (s *Saturation) Name() string {
	return s.name
}

func (s *Saturation) OnTick(r loop.Report) {
	s.samples++
	if r.Saturated() {
		s.saturated++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}
