package transport

import (
	"errors"
	"sync"
)

var (
	// ErrClosed is returned by operations on a closed broker.
	ErrClosed = errors.New("transport: broker closed")

	// ErrTimeout is returned when a broker operation does not complete in time.
	ErrTimeout = errors.New("transport: timed out")
)

// Handler receives one message. The payload must not be retained after it returns.
type Handler func(topic string, payload []byte)

// Broker is a topic-based publish/subscribe connection.
type Broker interface {
	Publish(topic string, payload []byte) error
	Subscribe(topic string, h Handler) error
}

// Topics names the four wire topics.
type Topics struct {
	Velocity string `yaml:"velocity" json:"velocity"`
	Command  string `yaml:"command" json:"command"`
	Left     string `yaml:"left" json:"left"`
	Right    string `yaml:"right" json:"right"`
}

func DefaultTopics() Topics {
	return Topics{
		Velocity: "velocity_vector",
		Command:  "/cmd_vel",
		Left:     "motor_1_power",
		Right:    "motor_2_power",
	}
}

// Bus is an in-process broker. Publish delivers synchronously on the caller's
// goroutine to every handler subscribed to the exact topic.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]Handler
	closed bool
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string][]Handler)}
}

func (b *Bus) Publish(topic string, payload []byte) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	hs := append([]Handler(nil), b.subs[topic]...)
	b.mu.RUnlock()

	for _, h := range hs {
		h(topic, payload)
	}
	return nil
}

func (b *Bus) Subscribe(topic string, h Handler) error {
	if h == nil {
		return errors.New("transport: nil handler")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.subs[topic] = append(b.subs[topic], h)
	return nil
}

// Close drops all subscriptions. Later publishes fail with ErrClosed.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = nil
	return nil
}
