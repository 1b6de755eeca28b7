package transport

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/xosa/internal/motion"
)

type failingBroker struct {
	failOn string
	sent   []string
}

func (b *failingBroker) Publish(topic string, payload []byte) error {
	if topic == b.failOn {
		return errors.New("link down")
	}
	b.sent = append(b.sent, topic+" "+string(payload))
	return nil
}

func (b *failingBroker) Subscribe(string, Handler) error { return nil }

func TestThrustPublisherSendsBothSides(t *testing.T) {
	bus := NewBus()
	got := map[string]float64{}
	for _, topic := range []string{"motor_1_power", "motor_2_power"} {
		require.NoError(t, bus.Subscribe(topic, func(topic string, p []byte) {
			v, err := DecodePower(p)
			require.NoError(t, err)
			got[topic] = v
		}))
	}

	p := NewThrustPublisher(bus, DefaultTopics())
	require.NoError(t, p.Publish(context.Background(), motion.Thrust{Left: -0.25, Right: 0.75}))
	assert.Equal(t, map[string]float64{"motor_1_power": -0.25, "motor_2_power": 0.75}, got)
}

func TestThrustPublisherLeftFailureSkipsRight(t *testing.T) {
	b := &failingBroker{failOn: "motor_1_power"}
	err := NewThrustPublisher(b, DefaultTopics()).Publish(context.Background(), motion.Thrust{Left: 1, Right: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "motor_1_power")
	assert.Empty(t, b.sent)
}

func TestThrustPublisherRightFailure(t *testing.T) {
	b := &failingBroker{failOn: "motor_2_power"}
	err := NewThrustPublisher(b, DefaultTopics()).Publish(context.Background(), motion.Thrust{Left: 1, Right: 1})
	require.Error(t, err)
	assert.Equal(t, []string{`motor_1_power {"data":1}`}, b.sent)
}

func TestThrustPublisherCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := &failingBroker{}
	assert.ErrorIs(t, NewThrustPublisher(b, DefaultTopics()).Publish(ctx, motion.Thrust{}), context.Canceled)
	assert.Empty(t, b.sent)
}

type bufferPort struct {
	bytes.Buffer
	closed bool
	fail   bool
}

func (p *bufferPort) Write(b []byte) (int, error) {
	if p.fail {
		return 0, errors.New("unplugged")
	}
	return p.Buffer.Write(b)
}

func (p *bufferPort) Close() error {
	p.closed = true
	return nil
}

func TestSerialThrustLines(t *testing.T) {
	port := &bufferPort{}
	s := NewSerialThrust(port)
	require.NoError(t, s.Publish(context.Background(), motion.Thrust{Left: 0.5, Right: -1}))
	require.NoError(t, s.Publish(context.Background(), motion.Thrust{Left: 0, Right: 0.12345}))
	assert.Equal(t, "L0.5000 R-1.0000\nL0.0000 R0.1235\n", port.String())

	require.NoError(t, s.Close())
	assert.True(t, port.closed)
}

func TestSerialThrustWriteError(t *testing.T) {
	s := NewSerialThrust(&bufferPort{fail: true})
	err := s.Publish(context.Background(), motion.Thrust{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unplugged")
}

func TestSerialMode(t *testing.T) {
	m := SerialOptions{BaudRate: 57600}.Mode()
	assert.Equal(t, 57600, m.BaudRate)
	assert.Equal(t, 8, m.DataBits)
	assert.Equal(t, 115200, SerialOptions{}.Mode().BaudRate)
}
