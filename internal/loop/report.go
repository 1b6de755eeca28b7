package loop

import (
	"time"

	"github.com/san-kum/xosa/internal/control"
	"github.com/san-kum/xosa/internal/motion"
)

// Report describes one completed tick.
type Report struct {
	Tick        uint64        `json:"tick"`
	Time        time.Time     `json:"time"`
	Setpoint    motion.Twist  `json:"setpoint"`
	Measurement motion.Twist  `json:"measurement"`
	Error       motion.Twist  `json:"error"`
	Correction  motion.Twist  `json:"correction"`
	Thrust      motion.Thrust `json:"thrust"`
	MotorGain   float64       `json:"motor_gain"`

	Linear  control.State `json:"linear"`
	Angular control.State `json:"angular"`

	PublishErr      string `json:"publish_err,omitempty"`
	PublishFailures uint64 `json:"publish_failures"`
	Overruns        uint64 `json:"overruns"`
}

// Saturated reports whether either axis saturated on this tick.
func (r Report) Saturated() bool {
	return r.Linear.Saturated || r.Angular.Saturated
}

// Observer is notified synchronously after every tick, on the loop goroutine.
// Implementations must return quickly.
type Observer interface {
	OnTick(r Report)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Report)

func (f ObserverFunc) OnTick(r Report) { f(r) }
