// Package control provides the per-axis PID controller used by the thruster
// control loop.
//
// A [PID] does not own its gains. It holds read handles on gain cells owned by
// the tuning surface and reads them on every [PID.Step], so an edit made between
// two ticks is used by the very next one:
//
//	kp, kpR := shared.New(3.0)
//	ki, kiR := shared.New(0.001)
//	kd, kdR := shared.New(6.5)
//	pid, _ := control.NewPID(control.Gains{P: kpR, I: kiR, D: kdR}, 100)
//	out := pid.Step(err, 0.05)
//
// # Anti-windup
//
// The integral only accumulates while the previous step was not saturated.
// Saturation means the unclamped output reached max output in magnitude; the
// returned output is always clamped to [-max, max].
package control
