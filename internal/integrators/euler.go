package integrators

// Euler is the explicit first-order method.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (Euler) Step(sys System, x State, u []float64, t, dt float64) State {
	next := make(State, len(x))
	axpy(next, x, dt, sys.Derivative(x, u, t))
	return next
}
