package scenario

import (
	"fmt"
	"sort"
	"time"
)

var builtins = map[string]Scenario{
	"step": {
		Name:        "step",
		Description: "Surge step from rest to 1 m/s",
		Duration:    20 * time.Second,
		Steps: []Step{
			{At: 0},
			{At: time.Second, Linear: 1},
		},
	},
	"turn": {
		Name:        "turn",
		Description: "Cruise, hold a constant yaw rate, then straighten",
		Duration:    15 * time.Second,
		Steps: []Step{
			{At: 0, Linear: 0.5},
			{At: 2 * time.Second, Linear: 0.5, Angular: 0.3},
			{At: 10 * time.Second, Linear: 0.5},
		},
	},
	"zigzag": {
		Name:        "zigzag",
		Description: "Alternating yaw-rate commands at cruise speed",
		Duration:    15 * time.Second,
		Steps: []Step{
			{At: 0, Linear: 0.8},
			{At: 3 * time.Second, Linear: 0.8, Angular: 0.4},
			{At: 6 * time.Second, Linear: 0.8, Angular: -0.4},
			{At: 9 * time.Second, Linear: 0.8, Angular: 0.4},
			{At: 12 * time.Second, Linear: 0.8},
		},
	},
}

// Builtin returns a copy of a named built-in scenario.
func Builtin(name string) (*Scenario, error) {
	s, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBuiltin, name)
	}
	s.Steps = append([]Step(nil), s.Steps...)
	return &s, nil
}

func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve treats name as a built-in first and a file path otherwise.
func Resolve(name string) (*Scenario, error) {
	if s, err := Builtin(name); err == nil {
		return s, nil
	}
	return Load(name)
}
