package optim

import (
	"context"
	"fmt"

	"github.com/san-kum/xosa/internal/control"
	"github.com/san-kum/xosa/internal/history"
	"github.com/san-kum/xosa/internal/loop"
	"github.com/san-kum/xosa/internal/metrics"
	"github.com/san-kum/xosa/internal/motion"
	"github.com/san-kum/xosa/internal/scenario"
	"github.com/san-kum/xosa/internal/shared"
	"github.com/san-kum/xosa/internal/tuning"
	"github.com/san-kum/xosa/internal/vessel"
)

// Trial runs the control loop against the simulated vessel over a scenario.
// The loop and plant advance in lock step, one plant step per tick, without
// the wall clock, so a trial is deterministic.
type Trial struct {
	Scenario  *scenario.Scenario
	Vessel    vessel.Params
	Loop      loop.Config
	MaxOutput float64
	Limits    tuning.Limits
	Metric    string
}

// Run simulates the scenario with the given gains and returns every
// registered metric by name.
func (tr Trial) Run(ctx context.Context, gains tuning.Values) (map[string]float64, error) {
	panel, err := tuning.NewPanel(gains, tr.Limits)
	if err != nil {
		return nil, err
	}
	lin, err := control.NewPID(panel.Gains(), tr.MaxOutput)
	if err != nil {
		return nil, err
	}
	ang, err := control.NewPID(panel.Gains(), tr.MaxOutput)
	if err != nil {
		return nil, err
	}

	measW, measR := shared.New(motion.Twist{})
	spW, spR := shared.New(motion.Twist{})

	var last motion.Thrust
	pub := loop.PublisherFunc(func(_ context.Context, th motion.Thrust) error {
		last = th
		return nil
	})

	in := loop.Inputs{Measurement: measR, Setpoint: spR, MotorGain: panel.MotorGain()}
	l, err := loop.New(tr.Loop, in, lin, ang, history.NewPair(history.DefaultCapacity), pub)
	if err != nil {
		return nil, err
	}

	dt := tr.Loop.Period.Seconds()
	var ms []metrics.Metric
	for _, name := range metrics.Names() {
		m, _ := metrics.New(name, dt)
		ms = append(ms, m)
		l.AddObserver(m)
	}

	plant := vessel.NewPlant(tr.Vessel, nil)
	ticks := uint64(tr.Scenario.Duration / tr.Loop.Period)
	for k := uint64(0); k < ticks; k++ {
		if k%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		spW.Write(tr.Scenario.At(scenario.Elapsed(k, tr.Loop.Period)))
		l.Tick(ctx)
		measW.Write(plant.Step(last, dt))
	}
	return metrics.Values(ms), nil
}

// Objective adapts the trial to a grid search over kp, ki and kd. Missing
// parameters fall back to base.
func (tr Trial) Objective(base tuning.Values) Objective {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		g := base
		if v, ok := params[tuning.KP]; ok {
			g.KP = v
		}
		if v, ok := params[tuning.KI]; ok {
			g.KI = v
		}
		if v, ok := params[tuning.KD]; ok {
			g.KD = v
		}
		vals, err := tr.Run(ctx, g)
		if err != nil {
			return 0, err
		}
		score, ok := vals[tr.Metric]
		if !ok {
			return 0, fmt.Errorf("%w: %q", metrics.ErrUnknownMetric, tr.Metric)
		}
		return score, nil
	}
}
