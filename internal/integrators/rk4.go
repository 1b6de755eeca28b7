package integrators

// RK4 is the classic fourth-order Runge-Kutta method. Stage buffers are reused
// between steps, so an RK4 must not be shared between goroutines.
type RK4 struct {
	k     [4]State
	stage State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) grow(n int) {
	if len(r.stage) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(State, n)
	}
	r.stage = make(State, n)
}

func (r *RK4) Step(sys System, x State, u []float64, t, dt float64) State {
	n := len(x)
	r.grow(n)
	half := 0.5 * dt

	copy(r.k[0], sys.Derivative(x, u, t))
	axpy(r.stage, x, half, r.k[0])
	copy(r.k[1], sys.Derivative(r.stage, u, t+half))
	axpy(r.stage, x, half, r.k[1])
	copy(r.k[2], sys.Derivative(r.stage, u, t+half))
	axpy(r.stage, x, dt, r.k[2])
	copy(r.k[3], sys.Derivative(r.stage, u, t+dt))

	next := make(State, n)
	w := dt / 6
	for i := range next {
		next[i] = x[i] + w*(r.k[0][i]+2*r.k[1][i]+2*r.k[2][i]+r.k[3][i])
	}
	return next
}
