package loop

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/san-kum/xosa/internal/affinity"
	"github.com/san-kum/xosa/internal/control"
	"github.com/san-kum/xosa/internal/history"
	"github.com/san-kum/xosa/internal/monitoring"
	"github.com/san-kum/xosa/internal/motion"
	"github.com/san-kum/xosa/internal/shared"
	"github.com/san-kum/xosa/internal/timeutil"
)

// Publisher emits one thrust command pair per tick.
type Publisher interface {
	Publish(ctx context.Context, th motion.Thrust) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, th motion.Thrust) error

func (f PublisherFunc) Publish(ctx context.Context, th motion.Thrust) error { return f(ctx, th) }

// Inputs are the read handles the loop samples once per tick.
type Inputs struct {
	Measurement shared.Reader[motion.Twist]
	Setpoint    shared.Reader[motion.Twist]
	MotorGain   shared.Reader[float64]
}

type Config struct {
	Period   time.Duration
	Mass     float64
	LeverArm float64
	// CPU pins the loop thread when non-negative.
	CPU int
}

// DefaultConfig runs at 20 Hz with a 1 kg hull and thrusters 3 m apart.
func DefaultConfig() Config {
	return Config{
		Period:   50 * time.Millisecond,
		Mass:     1.0,
		LeverArm: 3.0,
		CPU:      -1,
	}
}

// State is the loop lifecycle state.
type State int32

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

type Loop struct {
	cfg       Config
	in        Inputs
	linear    *control.PID
	angular   *control.PID
	history   *history.Pair
	pub       Publisher
	clock     timeutil.Clock
	observers []Observer

	report     *shared.Writer[Report]
	reportView shared.Reader[Report]

	state    atomic.Int32
	tick     uint64
	failures uint64
	overruns uint64
}

func New(cfg Config, in Inputs, linear, angular *control.PID, h *history.Pair, pub Publisher) (*Loop, error) {
	if cfg.Period <= 0 {
		return nil, ErrPeriod
	}
	if !(cfg.Mass > 0) || !(cfg.LeverArm > 0) {
		return nil, ErrPlant
	}
	if linear == nil || angular == nil || h == nil || pub == nil ||
		!in.Measurement.Valid() || !in.Setpoint.Valid() || !in.MotorGain.Valid() {
		return nil, ErrWiring
	}

	w, r := shared.New(Report{})
	return &Loop{
		cfg:        cfg,
		in:         in,
		linear:     linear,
		angular:    angular,
		history:    h,
		pub:        pub,
		clock:      timeutil.RealClock{},
		report:     w,
		reportView: r,
	}, nil
}

// SetClock replaces the clock used by Run. Call before Run.
func (l *Loop) SetClock(c timeutil.Clock) { l.clock = c }

// AddObserver registers o for every subsequent tick. Call before Run.
func (l *Loop) AddObserver(o Observer) { l.observers = append(l.observers, o) }

func (l *Loop) Config() Config { return l.cfg }

func (l *Loop) State() State { return State(l.state.Load()) }

// Report returns the latest tick report.
func (l *Loop) Report() Report { return l.reportView.Read() }

// Reports returns a read handle on the report cell for views.
func (l *Loop) Reports() shared.Reader[Report] { return l.reportView }

// History returns the error history the loop records into.
func (l *Loop) History() *history.Pair { return l.history }

// Tick runs one full compute-and-emit cycle and returns its report.
func (l *Loop) Tick(ctx context.Context) Report {
	meas := l.in.Measurement.Read()
	sp := l.in.Setpoint.Read()

	e := sp.Sub(meas)
	l.history.Record(e.Linear, e.Angular)

	dt := l.cfg.Period.Seconds()
	corr := motion.Twist{
		Linear:  l.linear.Step(e.Linear, dt),
		Angular: l.angular.Step(e.Angular, dt),
	}

	gain := l.in.MotorGain.Read()
	th := motion.Differential(corr.Linear, corr.Angular, l.cfg.Mass, l.cfg.LeverArm).Clamp(gain)

	l.tick++
	r := Report{
		Tick:        l.tick,
		Time:        l.clock.Now(),
		Setpoint:    sp,
		Measurement: meas,
		Error:       e,
		Correction:  corr,
		Thrust:      th,
		MotorGain:   gain,
		Linear:      l.linear.State(),
		Angular:     l.angular.State(),
	}

	if err := l.pub.Publish(ctx, th); err != nil {
		l.failures++
		terr := &TickError{Tick: l.tick, Thrust: th, Err: err}
		monitoring.Logf("loop: %v", terr)
		r.PublishErr = terr.Error()
	}
	r.PublishFailures = l.failures
	r.Overruns = l.overruns

	l.report.Write(r)
	for _, o := range l.observers {
		o.OnTick(r)
	}
	return r
}

// Run ticks at the configured period until ctx is done and returns ctx.Err().
// A loop runs once; calling Run again returns ErrNotIdle.
func (l *Loop) Run(ctx context.Context) error {
	if !l.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return ErrNotIdle
	}
	defer l.state.Store(int32(Stopped))

	if err := affinity.Pin(l.cfg.CPU); err != nil {
		monitoring.Logf("loop: %v", err)
	}
	defer affinity.Unpin()

	sched := newSchedule(l.clock.Now(), l.cfg.Period)
	var timer timeutil.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.Tick(ctx)

		wait := sched.next().Sub(l.clock.Now())
		if wait <= 0 {
			l.overruns++
			continue
		}
		if timer == nil {
			timer = l.clock.NewTimer(wait)
		} else {
			timer.Reset(wait)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C():
		}
	}
}
