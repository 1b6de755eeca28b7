package transport

import (
	"context"
	"fmt"

	"github.com/san-kum/xosa/internal/motion"
)

// ThrustPublisher emits thrust as two power messages, left then right. A failed
// left publish skips the right one for that tick.
type ThrustPublisher struct {
	broker Broker
	topics Topics
}

func NewThrustPublisher(b Broker, topics Topics) *ThrustPublisher {
	return &ThrustPublisher{broker: b, topics: topics}
}

func (p *ThrustPublisher) Publish(ctx context.Context, th motion.Thrust) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.send(p.topics.Left, th.Left); err != nil {
		return err
	}
	return p.send(p.topics.Right, th.Right)
}

func (p *ThrustPublisher) send(topic string, v float64) error {
	payload, err := EncodePower(v)
	if err != nil {
		return err
	}
	if err := p.broker.Publish(topic, payload); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
