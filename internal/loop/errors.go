package loop

import (
	"errors"
	"fmt"

	"github.com/san-kum/xosa/internal/motion"
)

var (
	// ErrNotIdle is returned by Run on a loop that has already been started.
	ErrNotIdle = errors.New("loop: not idle")

	// ErrPeriod indicates a non-positive tick period.
	ErrPeriod = errors.New("loop: period must be positive")

	// ErrPlant indicates invalid mass or lever-arm constants.
	ErrPlant = errors.New("loop: mass and lever arm must be positive")

	// ErrWiring indicates a missing controller, input, history or publisher.
	ErrWiring = errors.New("loop: incomplete wiring")
)

// TickError wraps a publish failure with the tick it happened on.
type TickError struct {
	Tick   uint64
	Thrust motion.Thrust
	Err    error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d: publish thrust (%.4f, %.4f): %v", e.Tick, e.Thrust.Left, e.Thrust.Right, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}
