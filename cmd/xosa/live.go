package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/xosa/internal/config"
	"github.com/san-kum/xosa/internal/control"
	"github.com/san-kum/xosa/internal/diag"
	"github.com/san-kum/xosa/internal/history"
	"github.com/san-kum/xosa/internal/loop"
	"github.com/san-kum/xosa/internal/metrics"
	"github.com/san-kum/xosa/internal/monitoring"
	"github.com/san-kum/xosa/internal/motion"
	"github.com/san-kum/xosa/internal/scenario"
	"github.com/san-kum/xosa/internal/shared"
	"github.com/san-kum/xosa/internal/storage"
	"github.com/san-kum/xosa/internal/transport"
	"github.com/san-kum/xosa/internal/tui"
	"github.com/san-kum/xosa/internal/tuning"
	"github.com/san-kum/xosa/internal/vessel"
	"github.com/san-kum/xosa/internal/viz"
)

// simPlantRate is how many plant steps the simulated vessel takes per second.
const simPlantRate = 100

// controller is one fully wired control loop.
type controller struct {
	cfg      *config.Config
	panel    *tuning.Panel
	loop     *loop.Loop
	ingress  *transport.Ingress
	metrics  []metrics.Metric
	recorder *storage.Recorder
}

func newController(cfg *config.Config, b transport.Broker, pub loop.Publisher) (*controller, error) {
	panel, err := tuning.NewPanel(cfg.TuningValues(), cfg.Limits)
	if err != nil {
		return nil, err
	}
	// Both axes read the same gain cells.
	lin, err := control.NewPID(panel.Gains(), cfg.MaxOutput.Linear)
	if err != nil {
		return nil, err
	}
	ang, err := control.NewPID(panel.Gains(), cfg.MaxOutput.Angular)
	if err != nil {
		return nil, err
	}

	measW, measR := shared.New(motion.Twist{})
	spW, spR := shared.New(motion.Twist{})
	ing := transport.NewIngress(cfg.Topics, measW, spW, cfg.Ingress.RejectNonFinite)
	if err := ing.Attach(b); err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	in := loop.Inputs{Measurement: measR, Setpoint: spR, MotorGain: panel.MotorGain()}
	l, err := loop.New(cfg.LoopConfig(), in, lin, ang, history.NewPair(history.DefaultCapacity), pub)
	if err != nil {
		return nil, err
	}

	c := &controller{cfg: cfg, panel: panel, loop: l, ingress: ing}
	dt := cfg.Period().Seconds()
	for _, name := range metrics.Names() {
		m, err := metrics.New(name, dt)
		if err != nil {
			return nil, err
		}
		c.metrics = append(c.metrics, m)
		l.AddObserver(m)
	}
	return c, nil
}

// startRecording attaches a session recorder when recording is enabled.
func (c *controller) startRecording(mode, scen string) error {
	if !c.cfg.Record.Enabled {
		return nil
	}
	st := storage.New(c.cfg.Record.Dir)
	if err := st.Init(); err != nil {
		return err
	}
	rec, err := st.Create(storage.SessionMetadata{
		Mode:     mode,
		Scenario: scen,
		Period:   c.cfg.Period().Seconds(),
		Mass:     c.cfg.Loop.Mass,
		LeverArm: c.cfg.Loop.LeverArm,
		Params:   c.panel.GetParams(),
	})
	if err != nil {
		return err
	}
	c.recorder = rec
	c.loop.AddObserver(rec)
	fmt.Printf("recording session %s\n", rec.ID())
	return nil
}

// serve runs the loop, the diagnostics server and the operator surface until
// ctx ends or the operator quits.
func (c *controller) serve(ctx context.Context, title string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var status *tui.LiveRenderer
	if noTUI {
		status = tui.NewLiveRenderer(os.Stdout, fps)
		c.loop.AddObserver(status)
	} else {
		// The console owns the terminal, so diagnostics go nowhere.
		orig := monitoring.SetLogger(nil)
		defer monitoring.SetLogger(orig)
	}

	loopDone := make(chan error, 1)
	go func() { loopDone <- c.loop.Run(ctx) }()

	diagDone := make(chan error, 1)
	if c.cfg.Diag.Listen != "" {
		srv := diag.NewServer(c.cfg.Diag.Listen, diag.Source{
			Panel:   c.panel,
			Reports: c.loop.Reports(),
			History: c.loop.History().Reader(),
			Ingress: c.ingress.Stats,
			Period:  c.cfg.Period(),
		})
		go func() { diagDone <- srv.Start(ctx) }()
	} else {
		close(diagDone)
	}

	var uiErr error
	if status != nil {
		<-ctx.Done()
	} else {
		uiErr = viz.Run(viz.Source{
			Title:   title,
			Panel:   c.panel,
			Reports: c.loop.Reports(),
			History: c.loop.History().Reader(),
		}, theme)
		cancel()
	}

	loopErr := <-loopDone
	if status != nil {
		status.Finish()
	}
	if err := <-diagDone; err != nil {
		monitoring.Logf("diag: %v", err)
	}
	c.finish()

	if uiErr != nil {
		return uiErr
	}
	if loopErr != nil && !errors.Is(loopErr, context.Canceled) && !errors.Is(loopErr, context.DeadlineExceeded) {
		return loopErr
	}
	return nil
}

func (c *controller) finish() {
	vals := metrics.Values(c.metrics)
	if c.recorder != nil {
		if err := c.recorder.Close(vals); err != nil {
			fmt.Fprintf(os.Stderr, "recording: %v\n", err)
		} else {
			fmt.Printf("session saved: %s\n", c.recorder.ID())
		}
	}

	rep := c.loop.Report()
	st := c.ingress.Stats()
	fmt.Printf("ticks: %d  overruns: %d  publish failures: %d\n", rep.Tick, rep.Overruns, rep.PublishFailures)
	fmt.Printf("ingress: accepted %d  rejected %d  malformed %d\n", st.Accepted, st.Rejected, st.Malformed)
	fmt.Println("metrics:")
	for _, m := range c.metrics {
		fmt.Printf("  %s: %.6f\n", m.Name(), m.Value())
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	mq, err := transport.DialMQTT(ctx, cfg.Transport.MQTT)
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.Transport.MQTT.Broker, err)
	}
	defer mq.Close()

	var pub loop.Publisher = transport.NewThrustPublisher(mq, cfg.Topics)
	if cfg.Transport.Kind == "serial" {
		esc, err := transport.OpenSerial(cfg.Transport.Serial)
		if err != nil {
			return fmt.Errorf("open %s: %w", cfg.Transport.Serial.Port, err)
		}
		defer esc.Close()
		pub = esc
	}

	c, err := newController(cfg, mq, pub)
	if err != nil {
		return err
	}
	if err := c.startRecording("live", ""); err != nil {
		return err
	}
	fmt.Printf("controlling via %s at %g Hz\n", cfg.Transport.Kind, cfg.Loop.RateHz)
	return c.serve(ctx, "xosa live")
}

func runSim(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scen, err := scenario.Resolve(scenName)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	if noTUI {
		// Headless runs end with the scenario.
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, scen.Duration)
		defer cancel()
	}

	bus := transport.NewBus()
	defer bus.Close()
	// Stop the plant and scenario before the bus closes under them.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	plant := vessel.NewPlant(cfg.Vessel, nil)
	runner := vessel.NewRunner(plant, bus, cfg.Topics, time.Second/simPlantRate)
	if err := runner.Attach(); err != nil {
		return err
	}

	c, err := newController(cfg, bus, transport.NewThrustPublisher(bus, cfg.Topics))
	if err != nil {
		return err
	}
	if err := c.startRecording("sim", scen.Name); err != nil {
		return err
	}

	go func() {
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			monitoring.Logf("vessel: %v", err)
		}
	}()
	go func() {
		if err := scenario.NewRunner(scen, bus, cfg.Topics.Command).Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			monitoring.Logf("scenario: %v", err)
		}
	}()

	fmt.Printf("simulating %s (%v) at %g Hz\n", scen.Name, scen.Duration, cfg.Loop.RateHz)
	return c.serve(ctx, "xosa sim: "+scen.Name)
}
