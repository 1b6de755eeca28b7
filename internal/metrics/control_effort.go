package metrics

import (
	"math"

	"github.com/san-kum/xosa/internal/loop"
)

// ControlEffort is the mean of |left| + |right| thrust per tick.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) OnTick(r loop.Report) {
	c.sum += math.Abs(r.Thrust.Left) + math.Abs(r.Thrust.Right)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
