package vessel

import (
	"context"
	"sync"
	"time"

	"github.com/san-kum/xosa/internal/monitoring"
	"github.com/san-kum/xosa/internal/motion"
	"github.com/san-kum/xosa/internal/timeutil"
	"github.com/san-kum/xosa/internal/transport"
)

// Runner closes the loop in simulation. It listens for thrust on the motor
// topics, steps the plant at its own rate and publishes the velocity.
type Runner struct {
	plant  *Plant
	broker transport.Broker
	topics transport.Topics
	period time.Duration
	clock  timeutil.Clock

	mu     sync.Mutex
	thrust motion.Thrust
}

func NewRunner(plant *Plant, b transport.Broker, topics transport.Topics, period time.Duration) *Runner {
	return &Runner{plant: plant, broker: b, topics: topics, period: period, clock: timeutil.RealClock{}}
}

func (r *Runner) SetClock(c timeutil.Clock) { r.clock = c }

// Attach subscribes to the motor topics.
func (r *Runner) Attach() error {
	if err := r.broker.Subscribe(r.topics.Left, r.onPower(func(th *motion.Thrust, v float64) { th.Left = v })); err != nil {
		return err
	}
	return r.broker.Subscribe(r.topics.Right, r.onPower(func(th *motion.Thrust, v float64) { th.Right = v }))
}

func (r *Runner) onPower(set func(*motion.Thrust, float64)) transport.Handler {
	return func(topic string, payload []byte) {
		v, err := transport.DecodePower(payload)
		if err != nil {
			monitoring.Logf("vessel: %s: %v", topic, err)
			return
		}
		r.mu.Lock()
		set(&r.thrust, v)
		r.mu.Unlock()
	}
}

// Thrust returns the most recently received command.
func (r *Runner) Thrust() motion.Thrust {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.thrust
}

// Step advances the plant one period under the latest thrust and publishes
// the new velocity.
func (r *Runner) Step() error {
	v := r.plant.Step(r.Thrust(), r.period.Seconds())
	payload, err := transport.EncodeVector(v)
	if err != nil {
		return err
	}
	return r.broker.Publish(r.topics.Velocity, payload)
}

// Run steps the plant every period until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	timer := r.clock.NewTimer(r.period)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C():
		}
		if err := r.Step(); err != nil {
			monitoring.Logf("vessel: publish velocity: %v", err)
		}
		timer.Reset(r.period)
	}
}
