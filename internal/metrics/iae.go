package metrics

import (
	"math"

	"github.com/san-kum/xosa/internal/loop"
)

// IAE integrates |linear error| + |angular error| over time.
type IAE struct {
	name  string
	dt    float64
	total float64
}

func NewIAE(dt float64) *IAE {
	return &IAE{name: "iae", dt: dt}
}

func (m *IAE) Name() string { return m.name }

func (m *IAE) OnTick(r loop.Report) {
	m.total += (math.Abs(r.Error.Linear) + math.Abs(r.Error.Angular)) * m.dt
}

func (m *IAE) Value() float64 { return m.total }

func (m *IAE) Reset() { m.total = 0 }
