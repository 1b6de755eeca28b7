// Package viz is the terminal tuning console for a running controller.
//
// The console is a Bubble Tea program that only reads the controller's shared
// cells and writes gains through a [tuning.Panel]:
//
//   - vertical sliders for kp, ki, kd and motor_gain
//   - linear and angular error plots from the error history
//   - a thrust gauge drawn on a Braille [Canvas]
//
// # Key Bindings
//
//	Tab/Shift+Tab - Select parameter
//	Up/Down       - Coarse adjust
//	Left/Right    - Fine adjust
//	R             - Restore starting values
//	T             - Toggle dark/light theme
//	?             - Show help overlay
//	Q             - Quit
package viz
