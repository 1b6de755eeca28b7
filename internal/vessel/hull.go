// Package vessel simulates a two-thruster surface vessel so the controller can
// be exercised without hardware.
package vessel

import (
	"math"

	"github.com/san-kum/xosa/internal/integrators"
)

// Hull state layout.
const (
	Surge = iota
	YawRate
	Heading
	PosX
	PosY
	stateDim
)

// Params are the hull's physical constants.
type Params struct {
	Mass        float64 `yaml:"mass" json:"mass"`
	Inertia     float64 `yaml:"inertia" json:"inertia"`
	LeverArm    float64 `yaml:"lever_arm" json:"lever_arm"`
	LinearDrag  float64 `yaml:"linear_drag" json:"linear_drag"`
	AngularDrag float64 `yaml:"angular_drag" json:"angular_drag"`
	// MaxThrust caps each thruster's force magnitude. Zero means uncapped.
	MaxThrust float64 `yaml:"max_thrust" json:"max_thrust"`
}

func DefaultParams() Params {
	return Params{
		Mass:        1.0,
		Inertia:     1.5,
		LeverArm:    3.0,
		LinearDrag:  0.8,
		AngularDrag: 1.2,
	}
}

// Hull is the vessel's equations of motion. Inputs are left and right thrust.
// The thrusters sit LeverArm apart, symmetric about the centreline.
type Hull struct {
	Params
}

func NewHull(p Params) *Hull {
	return &Hull{Params: p}
}

func (h *Hull) Dim() int { return stateDim }

func (h *Hull) Derivative(x integrators.State, u []float64, t float64) integrators.State {
	left, right := 0.0, 0.0
	if len(u) >= 2 {
		left, right = h.cap(u[0]), h.cap(u[1])
	}

	surge, yawRate, heading := x[Surge], x[YawRate], x[Heading]
	force := left + right
	torque := (right - left) * h.LeverArm / 2

	dx := make(integrators.State, stateDim)
	dx[Surge] = (force - h.LinearDrag*surge) / h.Mass
	dx[YawRate] = (torque - h.AngularDrag*yawRate) / h.Inertia
	dx[Heading] = yawRate
	dx[PosX] = surge * math.Cos(heading)
	dx[PosY] = surge * math.Sin(heading)
	return dx
}

func (h *Hull) cap(f float64) float64 {
	if h.MaxThrust <= 0 {
		return f
	}
	return math.Max(-h.MaxThrust, math.Min(h.MaxThrust, f))
}

// SteadySurge is the forward speed reached under equal thrust f on both sides.
func (h *Hull) SteadySurge(f float64) float64 {
	return 2 * h.cap(f) / h.LinearDrag
}
