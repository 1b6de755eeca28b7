// Package tuning owns the operator-adjustable parameters of the controller.
//
// A Panel holds the only write handles for the kp, ki, kd and motor_gain cells.
// Every surface that changes them (the TUI, the diagnostics API) goes through
// the same Panel, which serialises writes and enforces the allowed ranges.
package tuning

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/xosa/internal/control"
	"github.com/san-kum/xosa/internal/shared"
)

const (
	KP        = "kp"
	KI        = "ki"
	KD        = "kd"
	MotorGain = "motor_gain"
)

var names = []string{KP, KI, KD, MotorGain}

var (
	ErrUnknownParam = errors.New("tuning: unknown parameter")
	ErrOutOfRange   = errors.New("tuning: value out of range")
)

// Limits bound the tunable values. All lower bounds are zero.
type Limits struct {
	GainMax      float64 `yaml:"gain_max" json:"gain_max"`
	MotorGainMax float64 `yaml:"motor_gain_max" json:"motor_gain_max"`
}

func DefaultLimits() Limits {
	return Limits{GainMax: 50, MotorGainMax: 100}
}

type Values struct {
	KP        float64 `json:"kp"`
	KI        float64 `json:"ki"`
	KD        float64 `json:"kd"`
	MotorGain float64 `json:"motor_gain"`
}

func (v Values) get(name string) float64 {
	switch name {
	case KP:
		return v.KP
	case KI:
		return v.KI
	case KD:
		return v.KD
	}
	return v.MotorGain
}

type Panel struct {
	mu      sync.Mutex
	limits  Limits
	writers map[string]*shared.Writer[float64]
}

func NewPanel(initial Values, limits Limits) (*Panel, error) {
	p := &Panel{limits: limits, writers: make(map[string]*shared.Writer[float64], len(names))}
	for _, n := range names {
		v := initial.get(n)
		if err := p.check(n, v); err != nil {
			return nil, err
		}
		w, _ := shared.New(v)
		p.writers[n] = w
	}
	return p, nil
}

// Gains returns read handles on the three gain cells.
func (p *Panel) Gains() control.Gains {
	return control.Gains{
		P: p.writers[KP].Reader(),
		I: p.writers[KI].Reader(),
		D: p.writers[KD].Reader(),
	}
}

func (p *Panel) MotorGain() shared.Reader[float64] {
	return p.writers[MotorGain].Reader()
}

// Names lists the parameters in display order.
func (p *Panel) Names() []string {
	return append([]string(nil), names...)
}

func (p *Panel) Limits() Limits { return p.limits }

// Range returns the inclusive bounds for name.
func (p *Panel) Range(name string) (lo, hi float64, err error) {
	switch name {
	case KP, KI, KD:
		return 0, p.limits.GainMax, nil
	case MotorGain:
		return 0, p.limits.MotorGainMax, nil
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrUnknownParam, name)
}

func (p *Panel) Get(name string) (float64, error) {
	w, ok := p.writers[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return w.Read(), nil
}

func (p *Panel) GetParams() map[string]float64 {
	out := make(map[string]float64, len(names))
	for _, n := range names {
		out[n] = p.writers[n].Read()
	}
	return out
}

func (p *Panel) Values() Values {
	return Values{
		KP:        p.writers[KP].Read(),
		KI:        p.writers[KI].Read(),
		KD:        p.writers[KD].Read(),
		MotorGain: p.writers[MotorGain].Read(),
	}
}

// SetParam writes one parameter. The loop sees it from its next tick.
func (p *Panel) SetParam(name string, v float64) error {
	if err := p.check(name, v); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writers[name].Write(v)
	return nil
}

// Set validates all four values and writes them only if every one is valid.
func (p *Panel) Set(v Values) error {
	for _, n := range names {
		if err := p.check(n, v.get(n)); err != nil {
			return err
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range names {
		p.writers[n].Write(v.get(n))
	}
	return nil
}

// Nudge adds delta to name, clamped to its range, and returns the new value.
func (p *Panel) Nudge(name string, delta float64) (float64, error) {
	lo, hi, err := p.Range(name)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 0, fmt.Errorf("%w: %s delta %v", ErrOutOfRange, name, delta)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writers[name].Update(func(cur float64) float64 {
		return math.Max(lo, math.Min(hi, cur+delta))
	}), nil
}

func (p *Panel) check(name string, v float64) error {
	lo, hi, err := p.Range(name)
	if err != nil {
		return err
	}
	if !(v >= lo && v <= hi) {
		return fmt.Errorf("%w: %s=%v not in [%g, %g]", ErrOutOfRange, name, v, lo, hi)
	}
	return nil
}
