// Package scenario scripts commanded-velocity schedules.
//
// A scenario is a list of setpoint changes at offsets from its start:
//
//	name: turn
//	duration: 15s
//	steps:
//	  - {at: 0s, linear: 0.5}
//	  - {at: 2s, linear: 0.5, angular: 0.3}
//
// Each setpoint holds until the next step.
package scenario

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/xosa/internal/motion"
)

var (
	ErrInvalid        = errors.New("scenario: invalid")
	ErrUnknownBuiltin = errors.New("scenario: unknown built-in")
)

type Step struct {
	At      time.Duration `yaml:"at" json:"at"`
	Linear  float64       `yaml:"linear" json:"linear"`
	Angular float64       `yaml:"angular" json:"angular"`
}

func (s Step) Twist() motion.Twist {
	return motion.Twist{Linear: s.Linear, Angular: s.Angular}
}

type Scenario struct {
	Name        string        `yaml:"name" json:"name"`
	Description string        `yaml:"description" json:"description"`
	Duration    time.Duration `yaml:"duration" json:"duration"`
	Steps       []Step        `yaml:"steps" json:"steps"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Duration == 0 && len(s.Steps) > 0 {
		s.Duration = s.Steps[len(s.Steps)-1].At
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalid)
	}
	if !sort.SliceIsSorted(s.Steps, func(i, j int) bool { return s.Steps[i].At < s.Steps[j].At }) {
		return fmt.Errorf("%w: steps out of order", ErrInvalid)
	}
	for i, st := range s.Steps {
		if st.At < 0 {
			return fmt.Errorf("%w: step %d at negative offset %v", ErrInvalid, i, st.At)
		}
		if math.IsNaN(st.Linear) || math.IsInf(st.Linear, 0) || math.IsNaN(st.Angular) || math.IsInf(st.Angular, 0) {
			return fmt.Errorf("%w: step %d is not finite", ErrInvalid, i)
		}
	}
	if last := s.Steps[len(s.Steps)-1].At; s.Duration < last {
		return fmt.Errorf("%w: duration %v ends before last step at %v", ErrInvalid, s.Duration, last)
	}
	return nil
}

// At returns the setpoint in force at offset t. Before the first step it is zero.
func (s *Scenario) At(t time.Duration) motion.Twist {
	i := sort.Search(len(s.Steps), func(i int) bool { return s.Steps[i].At > t })
	if i == 0 {
		return motion.Twist{}
	}
	return s.Steps[i-1].Twist()
}

func (s *Scenario) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
