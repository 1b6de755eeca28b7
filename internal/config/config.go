// Package config loads the controller's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/xosa/internal/loop"
	"github.com/san-kum/xosa/internal/transport"
	"github.com/san-kum/xosa/internal/tuning"
	"github.com/san-kum/xosa/internal/vessel"
)

const (
	DefaultRateHz    = 20.0
	DefaultMass      = 1.0
	DefaultLeverArm  = 3.0
	DefaultKp        = 3.0
	DefaultKi        = 0.001
	DefaultKd        = 6.5
	DefaultMotorGain = 1.0
	DefaultMaxOutput = 100.0
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Loop      LoopConfig       `yaml:"loop"`
	Gains     GainsConfig      `yaml:"gains"`
	MotorGain float64          `yaml:"motor_gain"`
	MaxOutput MaxOutputConfig  `yaml:"max_output"`
	Limits    tuning.Limits    `yaml:"limits"`
	Ingress   IngressConfig    `yaml:"ingress"`
	Topics    transport.Topics `yaml:"topics"`
	Transport TransportConfig  `yaml:"transport"`
	Diag      DiagConfig       `yaml:"diag"`
	Record    RecordConfig     `yaml:"record"`
	Vessel    vessel.Params    `yaml:"vessel"`
}

type LoopConfig struct {
	RateHz   float64 `yaml:"rate_hz"`
	Mass     float64 `yaml:"mass"`
	LeverArm float64 `yaml:"lever_arm"`
	CPU      int     `yaml:"cpu"`
}

type GainsConfig struct {
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`
}

type MaxOutputConfig struct {
	Linear  float64 `yaml:"linear"`
	Angular float64 `yaml:"angular"`
}

type IngressConfig struct {
	RejectNonFinite bool `yaml:"reject_non_finite"`
}

type TransportConfig struct {
	Kind   string                  `yaml:"kind"`
	MQTT   transport.MQTTOptions   `yaml:"mqtt"`
	Serial transport.SerialOptions `yaml:"serial"`
}

type DiagConfig struct {
	Listen string `yaml:"listen"`
}

type RecordConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

func DefaultConfig() *Config {
	return &Config{
		Loop: LoopConfig{
			RateHz:   DefaultRateHz,
			Mass:     DefaultMass,
			LeverArm: DefaultLeverArm,
			CPU:      -1,
		},
		Gains:     GainsConfig{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd},
		MotorGain: DefaultMotorGain,
		MaxOutput: MaxOutputConfig{Linear: DefaultMaxOutput, Angular: DefaultMaxOutput},
		Limits:    tuning.DefaultLimits(),
		Ingress:   IngressConfig{RejectNonFinite: true},
		Topics:    transport.DefaultTopics(),
		Transport: TransportConfig{
			Kind:   "mqtt",
			MQTT:   transport.DefaultMQTTOptions(),
			Serial: transport.DefaultSerialOptions(),
		},
		Diag:   DiagConfig{Listen: ":8090"},
		Record: RecordConfig{Dir: "sessions"},
		Vessel: vessel.DefaultParams(),
	}
}

// Load reads path and overlays it on the defaults, then validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 0) }

func (c *Config) Validate() error {
	switch {
	case !positive(c.Loop.RateHz):
		return fmt.Errorf("%w: loop.rate_hz must be positive, got %v", ErrInvalid, c.Loop.RateHz)
	case !positive(c.Loop.Mass):
		return fmt.Errorf("%w: loop.mass must be positive, got %v", ErrInvalid, c.Loop.Mass)
	case !positive(c.Loop.LeverArm):
		return fmt.Errorf("%w: loop.lever_arm must be positive, got %v", ErrInvalid, c.Loop.LeverArm)
	case !positive(c.MaxOutput.Linear) || !positive(c.MaxOutput.Angular):
		return fmt.Errorf("%w: max_output must be positive", ErrInvalid)
	case !positive(c.Limits.GainMax) || !positive(c.Limits.MotorGainMax):
		return fmt.Errorf("%w: limits must be positive", ErrInvalid)
	case c.Transport.Kind != "mqtt" && c.Transport.Kind != "serial":
		return fmt.Errorf("%w: transport.kind %q (want mqtt or serial)", ErrInvalid, c.Transport.Kind)
	case !positive(c.Vessel.Mass) || !positive(c.Vessel.Inertia):
		return fmt.Errorf("%w: vessel mass and inertia must be positive", ErrInvalid)
	}
	for _, p := range []struct {
		name string
		v    float64
		max  float64
	}{
		{"gains.kp", c.Gains.Kp, c.Limits.GainMax},
		{"gains.ki", c.Gains.Ki, c.Limits.GainMax},
		{"gains.kd", c.Gains.Kd, c.Limits.GainMax},
		{"motor_gain", c.MotorGain, c.Limits.MotorGainMax},
	} {
		if !(p.v >= 0 && p.v <= p.max) {
			return fmt.Errorf("%w: %s=%v not in [0, %g]", ErrInvalid, p.name, p.v, p.max)
		}
	}
	return nil
}

// Period converts the loop rate to a tick period.
func (c *Config) Period() time.Duration {
	return time.Duration(float64(time.Second) / c.Loop.RateHz)
}

func (c *Config) LoopConfig() loop.Config {
	return loop.Config{
		Period:   c.Period(),
		Mass:     c.Loop.Mass,
		LeverArm: c.Loop.LeverArm,
		CPU:      c.Loop.CPU,
	}
}

// TuningValues is the initial state of the tuning panel.
func (c *Config) TuningValues() tuning.Values {
	return tuning.Values{KP: c.Gains.Kp, KI: c.Gains.Ki, KD: c.Gains.Kd, MotorGain: c.MotorGain}
}
