package transport

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/san-kum/xosa/internal/monitoring"
)

type MQTTOptions struct {
	Broker         string        `yaml:"broker"`
	ClientID       string        `yaml:"client_id"`
	QoS            byte          `yaml:"qos"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	PublishTimeout time.Duration `yaml:"publish_timeout"`
}

func DefaultMQTTOptions() MQTTOptions {
	return MQTTOptions{
		Broker:         "tcp://localhost:1883",
		ConnectTimeout: 5 * time.Second,
		PublishTimeout: 20 * time.Millisecond,
	}
}

// mqttClient is the part of mqtt.Client the broker uses.
type mqttClient interface {
	Connect() mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTT is a Broker backed by an MQTT connection.
type MQTT struct {
	client         mqttClient
	qos            byte
	publishTimeout time.Duration
}

// DialMQTT connects to the broker and fails if the connection is not up within
// the connect timeout or before ctx ends. Once connected, paho reconnects on
// its own and subscriptions are restored.
func DialMQTT(ctx context.Context, opts MQTTOptions) (*MQTT, error) {
	if opts.ClientID == "" {
		opts.ClientID = "xosa-" + uuid.NewString()
	}

	o := mqtt.NewClientOptions()
	o.AddBroker(opts.Broker)
	o.SetClientID(opts.ClientID)
	o.SetAutoReconnect(true)
	o.SetCleanSession(false)
	o.SetResumeSubs(true)
	o.SetConnectTimeout(opts.ConnectTimeout)
	o.OnConnect = func(mqtt.Client) {
		monitoring.Logf("transport: connected to %s as %s", opts.Broker, opts.ClientID)
	}
	o.OnConnectionLost = func(_ mqtt.Client, err error) {
		monitoring.Logf("transport: connection to %s lost: %v", opts.Broker, err)
	}

	return connectMQTT(ctx, mqtt.NewClient(o), opts)
}

func connectMQTT(ctx context.Context, c mqttClient, opts MQTTOptions) (*MQTT, error) {
	if err := waitToken(ctx, c.Connect(), opts.ConnectTimeout); err != nil {
		return nil, fmt.Errorf("transport: connect %s: %w", opts.Broker, err)
	}
	return &MQTT{client: c, qos: opts.QoS, publishTimeout: opts.PublishTimeout}, nil
}

func (m *MQTT) Publish(topic string, payload []byte) error {
	return waitToken(context.Background(), m.client.Publish(topic, m.qos, false, payload), m.publishTimeout)
}

func (m *MQTT) Subscribe(topic string, h Handler) error {
	tok := m.client.Subscribe(topic, m.qos, func(_ mqtt.Client, msg mqtt.Message) {
		h(msg.Topic(), msg.Payload())
	})
	if err := waitToken(context.Background(), tok, 5*time.Second); err != nil {
		return fmt.Errorf("transport: subscribe %s: %w", topic, err)
	}
	return nil
}

func (m *MQTT) Close() error {
	m.client.Disconnect(250)
	return nil
}

// waitToken waits for tok to complete. A non-positive timeout waits until ctx ends.
func waitToken(ctx context.Context, tok mqtt.Token, timeout time.Duration) error {
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}
	select {
	case <-tok.Done():
		return tok.Error()
	case <-expired:
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
