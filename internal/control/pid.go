package control

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/san-kum/xosa/internal/motion"
	"github.com/san-kum/xosa/internal/shared"
)

// ErrMaxOutput indicates a non-positive or non-finite output bound.
var ErrMaxOutput = errors.New("control: max output must be positive and finite")

// Gains are read handles on the three tunable gain cells.
type Gains struct {
	P shared.Reader[float64]
	I shared.Reader[float64]
	D shared.Reader[float64]
}

// Values reads the three gains.
func (g Gains) Values() (kp, ki, kd float64) {
	return g.P.Read(), g.I.Read(), g.D.Read()
}

// State is a copy of a controller's internal state.
type State struct {
	Err        float64 `json:"err"`
	PrevErr    float64 `json:"prev_err"`
	Integral   float64 `json:"integral"`
	Derivative float64 `json:"derivative"`
	Saturated  bool    `json:"saturated"`
	Output     float64 `json:"output"`
	MaxOutput  float64 `json:"max_output"`
}

type PID struct {
	gains      Gains
	maxOutput  float64
	err        float64
	prevErr    float64
	integral   float64
	derivative float64
	saturated  bool
	output     float64
}

func NewPID(gains Gains, maxOutput float64) (*PID, error) {
	if !(maxOutput > 0) || math.IsInf(maxOutput, 0) {
		return nil, ErrMaxOutput
	}
	return &PID{gains: gains, maxOutput: maxOutput}, nil
}

// Step advances the controller by dt seconds with the given error and returns
// the clamped correction. A dt that is not positive leaves the state untouched
// and returns the previous output.
func (p *PID) Step(err, dt float64) float64 {
	if !(dt > 0) {
		return p.output
	}

	p.prevErr = p.err
	p.err = err
	p.derivative = (p.err - p.prevErr) / dt
	if !p.saturated {
		p.integral += p.err * dt
	}

	kp, ki, kd := p.gains.Values()
	u := kp*p.err + ki*p.integral + kd*p.derivative

	p.saturated = math.Abs(u) >= p.maxOutput
	// math.Max/Min propagate NaN, so a poisoned state stays visible downstream.
	p.output = math.Max(-p.maxOutput, math.Min(p.maxOutput, u))
	return p.output
}

// Reset clears error history, integral and saturation.
func (p *PID) Reset() {
	p.err = 0
	p.prevErr = 0
	p.integral = 0
	p.derivative = 0
	p.saturated = false
	p.output = 0
}

func (p *PID) Saturated() bool    { return p.saturated }
func (p *PID) Integral() float64  { return p.integral }
func (p *PID) MaxOutput() float64 { return p.maxOutput }

// State returns a copy of the internal state.
func (p *PID) State() State {
	return State{
		Err:        p.err,
		PrevErr:    p.prevErr,
		Integral:   p.integral,
		Derivative: p.derivative,
		Saturated:  p.saturated,
		Output:     p.output,
		MaxOutput:  p.maxOutput,
	}
}

// GetParams returns the gains currently in effect.
func (p *PID) GetParams() map[string]float64 {
	kp, ki, kd := p.gains.Values()
	return map[string]float64{
		"Kp":  kp,
		"Ki":  ki,
		"Kd":  kd,
		"Max": p.maxOutput,
	}
}

type stateJSON struct {
	Err        motion.Float `json:"err"`
	PrevErr    motion.Float `json:"prev_err"`
	Integral   motion.Float `json:"integral"`
	Derivative motion.Float `json:"derivative"`
	Saturated  bool         `json:"saturated"`
	Output     motion.Float `json:"output"`
	MaxOutput  motion.Float `json:"max_output"`
}

// MarshalJSON encodes non-finite terms as strings rather than failing.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		Err:        motion.Float(s.Err),
		PrevErr:    motion.Float(s.PrevErr),
		Integral:   motion.Float(s.Integral),
		Derivative: motion.Float(s.Derivative),
		Saturated:  s.Saturated,
		Output:     motion.Float(s.Output),
		MaxOutput:  motion.Float(s.MaxOutput),
	})
}

func (s *State) UnmarshalJSON(b []byte) error {
	var w stateJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*s = State{
		Err:        float64(w.Err),
		PrevErr:    float64(w.PrevErr),
		Integral:   float64(w.Integral),
		Derivative: float64(w.Derivative),
		Saturated:  w.Saturated,
		Output:     float64(w.Output),
		MaxOutput:  float64(w.MaxOutput),
	}
	return nil
}
