// Package motion defines the velocity and thrust values exchanged between the
// transport adapters and the control loop.
package motion

import "math"

// Twist is a planar velocity: forward speed and yaw rate.
type Twist struct {
	Linear  float64 `json:"linear"`
	Angular float64 `json:"angular"`
}

// Sub returns the component-wise difference t - o.
func (t Twist) Sub(o Twist) Twist {
	return Twist{Linear: t.Linear - o.Linear, Angular: t.Angular - o.Angular}
}

// IsFinite reports whether both components are neither NaN nor infinite.
func (t Twist) IsFinite() bool {
	return isFinite(t.Linear) && isFinite(t.Angular)
}

// Thrust is a pair of thruster commands.
type Thrust struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Clamp limits both commands to [-limit, limit]. A negative limit is treated
// as its magnitude.
func (th Thrust) Clamp(limit float64) Thrust {
	limit = math.Abs(limit)
	return Thrust{Left: clamp(th.Left, limit), Right: clamp(th.Right, limit)}
}

// Differential maps a linear correction (force analog) and an angular
// correction (torque analog) to a thruster pair.
//
//	force  = linear * mass
//	torque = angular * mass * leverArm
//	left   = (force - torque) / 2
//	right  = (force + torque) / 2
func Differential(linear, angular, mass, leverArm float64) Thrust {
	force := linear * mass
	torque := angular * mass * leverArm
	return Thrust{
		Left:  (force - torque) / 2,
		Right: (force + torque) / 2,
	}
}

func clamp(v, limit float64) float64 {
	switch {
	case v > limit:
		return limit
	case v < -limit:
		return -limit
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
