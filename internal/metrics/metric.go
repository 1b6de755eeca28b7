// Package metrics scores control performance from loop reports.
package metrics

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/xosa/internal/loop"
)

// Metric accumulates a scalar score over ticks. Every Metric is a loop.Observer.
type Metric interface {
	loop.Observer
	Name() string
	Value() float64
	Reset()
}

var ErrUnknownMetric = errors.New("metrics: unknown metric")

var registry = map[string]func(dt float64) Metric{
	"iae":            func(dt float64) Metric { return NewIAE(dt) },
	"control_effort": func(float64) Metric { return NewControlEffort() },
	"saturation":     func(float64) Metric { return NewSaturation() },
}

// New builds the named metric for a loop ticking every dt seconds.
func New(name string, dt float64) (Metric, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
	return f(dt), nil
}

// Names lists the registered metrics in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Values snapshots every metric by name.
func Values(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
