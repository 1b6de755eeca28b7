package transport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/xosa/internal/motion"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func completed(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func pending() *fakeToken { return &fakeToken{done: make(chan struct{})} }

func (t *fakeToken) Wait() bool { <-t.done; return true }
func (t *fakeToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}
func (t *fakeToken) Done() <-chan struct{} { return t.done }
func (t *fakeToken) Error() error          { return t.err }

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type fakeClient struct {
	mu           sync.Mutex
	connect      mqtt.Token
	publishToken mqtt.Token
	published    []string
	handlers     map[string]mqtt.MessageHandler
	disconnected bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		connect:      completed(nil),
		publishToken: completed(nil),
		handlers:     map[string]mqtt.MessageHandler{},
	}
}

func (c *fakeClient) Connect() mqtt.Token { return c.connect }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, topic+" "+string(payload.([]byte)))
	return c.publishToken
}

func (c *fakeClient) Subscribe(topic string, qos byte, cb mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = cb
	return completed(nil)
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func (c *fakeClient) deliver(topic string, payload []byte) {
	c.mu.Lock()
	h := c.handlers[topic]
	c.mu.Unlock()
	h(nil, fakeMessage{topic: topic, payload: payload})
}

func opts() MQTTOptions {
	o := DefaultMQTTOptions()
	o.ConnectTimeout = 50 * time.Millisecond
	o.PublishTimeout = 20 * time.Millisecond
	return o
}

func TestMQTTConnectFailure(t *testing.T) {
	c := newFakeClient()
	c.connect = completed(errors.New("refused"))
	_, err := connectMQTT(context.Background(), c, opts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

func TestMQTTConnectTimeout(t *testing.T) {
	c := newFakeClient()
	c.connect = pending()
	_, err := connectMQTT(context.Background(), c, opts())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestMQTTConnectCancelled(t *testing.T) {
	c := newFakeClient()
	c.connect = pending()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o := opts()
	o.ConnectTimeout = 0
	_, err := connectMQTT(ctx, c, o)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMQTTPublishSubscribe(t *testing.T) {
	c := newFakeClient()
	m, err := connectMQTT(context.Background(), c, opts())
	require.NoError(t, err)

	require.NoError(t, m.Publish("motor_1_power", []byte(`{"data":1}`)))
	assert.Equal(t, []string{`motor_1_power {"data":1}`}, c.published)

	var got string
	require.NoError(t, m.Subscribe("velocity_vector", func(topic string, p []byte) { got = topic + " " + string(p) }))
	c.deliver("velocity_vector", []byte(`{"x":1}`))
	assert.Equal(t, `velocity_vector {"x":1}`, got)

	require.NoError(t, m.Close())
	assert.True(t, c.disconnected)
}

func TestMQTTPublishTimeout(t *testing.T) {
	c := newFakeClient()
	m, err := connectMQTT(context.Background(), c, opts())
	require.NoError(t, err)

	c.publishToken = pending()
	assert.ErrorIs(t, m.Publish("motor_1_power", nil), ErrTimeout)
}

func TestMQTTAsLoopPublisher(t *testing.T) {
	c := newFakeClient()
	m, err := connectMQTT(context.Background(), c, opts())
	require.NoError(t, err)

	c.publishToken = completed(errors.New("not connected"))
	err = NewThrustPublisher(m, DefaultTopics()).Publish(context.Background(), motion.Thrust{Left: 0.1, Right: 0.2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}
