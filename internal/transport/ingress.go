package transport

import (
	"sync/atomic"

	"github.com/san-kum/xosa/internal/monitoring"
	"github.com/san-kum/xosa/internal/motion"
	"github.com/san-kum/xosa/internal/shared"
)

// IngressStats counts inbound messages by outcome.
type IngressStats struct {
	Accepted  uint64 `json:"accepted"`
	Rejected  uint64 `json:"rejected"`
	Malformed uint64 `json:"malformed"`
}

// Ingress is the only writer of the measurement and setpoint cells.
type Ingress struct {
	topics          Topics
	measurement     *shared.Writer[motion.Twist]
	setpoint        *shared.Writer[motion.Twist]
	rejectNonFinite bool

	accepted  atomic.Uint64
	rejected  atomic.Uint64
	malformed atomic.Uint64
}

// NewIngress writes decoded velocities into measurement and commands into
// setpoint. With rejectNonFinite set, messages carrying NaN or infinite
// components are dropped and the cells keep their last value.
func NewIngress(topics Topics, measurement, setpoint *shared.Writer[motion.Twist], rejectNonFinite bool) *Ingress {
	return &Ingress{
		topics:          topics,
		measurement:     measurement,
		setpoint:        setpoint,
		rejectNonFinite: rejectNonFinite,
	}
}

// Attach subscribes to the velocity and command topics.
func (in *Ingress) Attach(b Broker) error {
	if err := b.Subscribe(in.topics.Velocity, in.HandleVelocity); err != nil {
		return err
	}
	return b.Subscribe(in.topics.Command, in.HandleCommand)
}

func (in *Ingress) HandleVelocity(topic string, payload []byte) {
	t, err := DecodeVector(payload)
	in.accept(topic, t, err, in.measurement)
}

func (in *Ingress) HandleCommand(topic string, payload []byte) {
	t, err := DecodeTwist(payload)
	in.accept(topic, t, err, in.setpoint)
}

func (in *Ingress) accept(topic string, t motion.Twist, err error, w *shared.Writer[motion.Twist]) {
	if err != nil {
		in.malformed.Add(1)
		monitoring.Logf("ingress: %s: %v", topic, err)
		return
	}
	if in.rejectNonFinite && !t.IsFinite() {
		in.rejected.Add(1)
		monitoring.Logf("ingress: %s: dropping non-finite %+v", topic, t)
		return
	}
	w.Write(t)
	in.accepted.Add(1)
}

func (in *Ingress) Stats() IngressStats {
	return IngressStats{
		Accepted:  in.accepted.Load(),
		Rejected:  in.rejected.Load(),
		Malformed: in.malformed.Load(),
	}
}
