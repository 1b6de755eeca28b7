// Package integrators advances ODE systems dx/dt = f(x, u, t) by fixed steps.
package integrators

import (
	"errors"
	"fmt"
)

// State is a system state vector.
type State []float64

// System is an ODE whose derivative depends on the state x, an input vector u
// and time t.
type System interface {
	Derivative(x State, u []float64, t float64) State
	Dim() int
}

// Stepper advances x by one step of size dt and returns the new state. The
// input x is not modified.
type Stepper interface {
	Step(sys System, x State, u []float64, t, dt float64) State
}

var ErrUnknownStepper = errors.New("integrators: unknown stepper")

func New(name string) (Stepper, error) {
	switch name {
	case "rk4", "":
		return NewRK4(), nil
	case "euler":
		return NewEuler(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStepper, name)
}

// axpy stores x + a*k into dst.
func axpy(dst, x State, a float64, k State) {
	for i := range dst {
		dst[i] = x[i] + a*k[i]
	}
}
