package scenario

import (
	"context"
	"time"

	"github.com/san-kum/xosa/internal/monitoring"
	"github.com/san-kum/xosa/internal/timeutil"
	"github.com/san-kum/xosa/internal/transport"
)

// Runner publishes a scenario's setpoints as commanded velocity messages.
type Runner struct {
	scenario *Scenario
	broker   transport.Broker
	topic    string
	clock    timeutil.Clock
}

func NewRunner(s *Scenario, b transport.Broker, topic string) *Runner {
	return &Runner{scenario: s, broker: b, topic: topic, clock: timeutil.RealClock{}}
}

func (r *Runner) SetClock(c timeutil.Clock) { r.clock = c }

// Run publishes every step at its offset from the moment Run is called and
// returns once the last step is out, or with ctx.Err() if ctx ends first.
func (r *Runner) Run(ctx context.Context) error {
	start := r.clock.Now()
	var timer timeutil.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for _, st := range r.scenario.Steps {
		if wait := start.Add(st.At).Sub(r.clock.Now()); wait > 0 {
			if timer == nil {
				timer = r.clock.NewTimer(wait)
			} else {
				timer.Reset(wait)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C():
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		r.publish(st)
	}
	return nil
}

func (r *Runner) publish(st Step) {
	payload, err := transport.EncodeTwist(st.Twist())
	if err != nil {
		monitoring.Logf("scenario: encode step at %v: %v", st.At, err)
		return
	}
	if err := r.broker.Publish(r.topic, payload); err != nil {
		monitoring.Logf("scenario: publish step at %v: %v", st.At, err)
	}
}

// Elapsed turns a tick count at a fixed period into a scenario offset.
func Elapsed(tick uint64, period time.Duration) time.Duration {
	return time.Duration(tick) * period
}
