// Package loop runs the fixed-rate thruster control loop.
//
// Each tick reads the latest measurement and setpoint, records the tracking
// errors into the history, steps one [control.PID] per axis, mixes the two
// corrections into differential thrust, clamps it to the motor gain ceiling and
// hands it to a [Publisher]:
//
//	l, _ := loop.New(loop.DefaultConfig(), inputs, linear, angular, hist, pub)
//	go l.Run(ctx) // until ctx is cancelled
//
// # Scheduling
//
// Tick k is due at start + k*period. A tick that overruns its period is
// followed immediately by the next one; ticks are never skipped or merged and
// the deadlines stay anchored to the start time, so overruns do not accumulate
// drift.
//
// # Thread Safety
//
// A Loop is driven by one goroutine. [Loop.Tick] must not be called while
// [Loop.Run] is active. [Loop.Report] and [Loop.State] are safe from any goroutine.
package loop
