package config

import (
	"sort"

	"github.com/san-kum/xosa/internal/vessel"
)

// Preset bundles vessel constants with gains that suit them.
type Preset struct {
	Description string
	Loop        LoopConfig
	Gains       GainsConfig
	MotorGain   float64
	Vessel      vessel.Params
}

var Presets = map[string]Preset{
	"default": {
		Description: "1 kg test hull, thrusters 3 m apart",
		Loop:        LoopConfig{RateHz: DefaultRateHz, Mass: DefaultMass, LeverArm: DefaultLeverArm, CPU: -1},
		Gains:       GainsConfig{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd},
		MotorGain:   DefaultMotorGain,
		Vessel:      vessel.DefaultParams(),
	},
	"skiff": {
		Description: "light, responsive hull with narrow thruster spacing",
		Loop:        LoopConfig{RateHz: 50, Mass: 0.6, LeverArm: 0.8, CPU: -1},
		Gains:       GainsConfig{Kp: 2.0, Ki: 0.01, Kd: 0.8},
		MotorGain:   0.8,
		Vessel: vessel.Params{
			Mass: 0.6, Inertia: 0.2, LeverArm: 0.8,
			LinearDrag: 0.5, AngularDrag: 0.3,
		},
	},
	"barge": {
		Description: "heavy hull with wide thrusters and strong damping",
		Loop:        LoopConfig{RateHz: 10, Mass: 8, LeverArm: 4, CPU: -1},
		Gains:       GainsConfig{Kp: 6.0, Ki: 0.05, Kd: 3.0},
		MotorGain:   5,
		Vessel: vessel.Params{
			Mass: 8, Inertia: 20, LeverArm: 4,
			LinearDrag: 3, AngularDrag: 6, MaxThrust: 5,
		},
	},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply copies the preset's loop, gains and vessel into c.
func (p *Preset) Apply(c *Config) {
	c.Loop = p.Loop
	c.Gains = p.Gains
	c.MotorGain = p.MotorGain
	c.Vessel = p.Vessel
}
