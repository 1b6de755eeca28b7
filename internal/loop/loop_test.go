package loop_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/xosa/internal/control"
	"github.com/san-kum/xosa/internal/history"
	"github.com/san-kum/xosa/internal/loop"
	"github.com/san-kum/xosa/internal/monitoring"
	"github.com/san-kum/xosa/internal/motion"
	"github.com/san-kum/xosa/internal/shared"
	"github.com/san-kum/xosa/internal/timeutil"
)

type recorder struct {
	mu     sync.Mutex
	sent   []motion.Thrust
	fail   func(n int) error
	onSend func(n int)
}

func (r *recorder) Publish(_ context.Context, th motion.Thrust) error {
	r.mu.Lock()
	r.sent = append(r.sent, th)
	n := len(r.sent)
	fail, onSend := r.fail, r.onSend
	r.mu.Unlock()
	if onSend != nil {
		onSend(n)
	}
	if fail != nil {
		return fail(n)
	}
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

type rig struct {
	meas     *shared.Writer[motion.Twist]
	setpoint *shared.Writer[motion.Twist]
	gain     *shared.Writer[float64]
	kp       *shared.Writer[float64]
	ki       *shared.Writer[float64]
	kd       *shared.Writer[float64]
	hist     *history.Pair
	pub      *recorder
	loop     *loop.Loop
}

func newRig(cfg loop.Config, kp, ki, kd, ceiling float64) *rig {
	r := &rig{pub: &recorder{}, hist: history.NewPair(history.DefaultCapacity)}
	var measR, spR shared.Reader[motion.Twist]
	var gainR, kpR, kiR, kdR shared.Reader[float64]
	r.meas, measR = shared.New(motion.Twist{})
	r.setpoint, spR = shared.New(motion.Twist{})
	r.gain, gainR = shared.New(ceiling)
	r.kp, kpR = shared.New(kp)
	r.ki, kiR = shared.New(ki)
	r.kd, kdR = shared.New(kd)

	gains := control.Gains{P: kpR, I: kiR, D: kdR}
	lin, err := control.NewPID(gains, 100)
	Expect(err).NotTo(HaveOccurred())
	ang, err := control.NewPID(gains, 100)
	Expect(err).NotTo(HaveOccurred())

	in := loop.Inputs{Measurement: measR, Setpoint: spR, MotorGain: gainR}
	r.loop, err = loop.New(cfg, in, lin, ang, r.hist, r.pub)
	Expect(err).NotTo(HaveOccurred())
	return r
}

func unitConfig() loop.Config {
	cfg := loop.DefaultConfig()
	cfg.LeverArm = 1
	return cfg
}

var _ = Describe("New", func() {
	It("rejects bad configuration", func() {
		w, r := shared.New(motion.Twist{})
		_ = w
		_, g := shared.New(1.0)
		in := loop.Inputs{Measurement: r, Setpoint: r, MotorGain: g}
		pid, _ := control.NewPID(control.Gains{P: g, I: g, D: g}, 1)
		h := history.NewPair(10)
		pub := loop.PublisherFunc(func(context.Context, motion.Thrust) error { return nil })

		cfg := loop.DefaultConfig()
		cfg.Period = 0
		_, err := loop.New(cfg, in, pid, pid, h, pub)
		Expect(err).To(MatchError(loop.ErrPeriod))

		cfg = loop.DefaultConfig()
		cfg.Mass = 0
		_, err = loop.New(cfg, in, pid, pid, h, pub)
		Expect(err).To(MatchError(loop.ErrPlant))

		_, err = loop.New(loop.DefaultConfig(), loop.Inputs{}, pid, pid, h, pub)
		Expect(err).To(MatchError(loop.ErrWiring))

		_, err = loop.New(loop.DefaultConfig(), in, pid, pid, h, nil)
		Expect(err).To(MatchError(loop.ErrWiring))
	})
})

var _ = Describe("Tick", func() {
	It("splits pure forward error evenly", func() {
		r := newRig(unitConfig(), 1, 0, 0, 10)
		r.setpoint.Write(motion.Twist{Linear: 1})

		rep := r.loop.Tick(context.Background())
		Expect(rep.Thrust.Left).To(BeNumerically("~", 0.5, 1e-12))
		Expect(rep.Thrust.Right).To(BeNumerically("~", 0.5, 1e-12))
		Expect(r.pub.count()).To(Equal(1))
	})

	It("turns with opposite thrust", func() {
		r := newRig(unitConfig(), 1, 0, 0, 10)
		r.setpoint.Write(motion.Twist{Angular: 1})

		rep := r.loop.Tick(context.Background())
		Expect(rep.Thrust.Left).To(BeNumerically("~", -0.5, 1e-12))
		Expect(rep.Thrust.Right).To(BeNumerically("~", 0.5, 1e-12))
	})

	It("applies the lever arm to torque", func() {
		r := newRig(loop.DefaultConfig(), 1, 0, 0, 10)
		r.setpoint.Write(motion.Twist{Angular: 1})

		rep := r.loop.Tick(context.Background())
		Expect(rep.Thrust.Left).To(BeNumerically("~", -1.5, 1e-12))
		Expect(rep.Thrust.Right).To(BeNumerically("~", 1.5, 1e-12))
	})

	It("clamps to the motor gain ceiling", func() {
		r := newRig(unitConfig(), 1, 0, 0, 1)
		r.setpoint.Write(motion.Twist{Linear: 10})

		rep := r.loop.Tick(context.Background())
		Expect(rep.Thrust).To(Equal(motion.Thrust{Left: 1, Right: 1}))
		Expect(rep.MotorGain).To(Equal(1.0))
	})

	It("never exceeds the ceiling on either side", func() {
		r := newRig(loop.DefaultConfig(), 5, 0.5, 2, 0.7)
		for i := 0; i < 200; i++ {
			r.setpoint.Write(motion.Twist{Linear: math.Sin(float64(i)) * 40, Angular: math.Cos(float64(i)*0.3) * 40})
			rep := r.loop.Tick(context.Background())
			Expect(math.Abs(rep.Thrust.Left)).To(BeNumerically("<=", 0.7))
			Expect(math.Abs(rep.Thrust.Right)).To(BeNumerically("<=", 0.7))
		}
	})

	It("picks up a new ceiling on the next tick", func() {
		r := newRig(unitConfig(), 1, 0, 0, 10)
		r.setpoint.Write(motion.Twist{Linear: 4})
		Expect(r.loop.Tick(context.Background()).Thrust.Left).To(BeNumerically("~", 2, 1e-12))

		r.gain.Write(0.25)
		Expect(r.loop.Tick(context.Background()).Thrust.Left).To(Equal(0.25))
	})

	It("records one error sample per axis per tick", func() {
		r := newRig(unitConfig(), 1, 0, 0, 10)
		r.setpoint.Write(motion.Twist{Linear: 2, Angular: 1})
		r.meas.Write(motion.Twist{Linear: 0.5, Angular: -1})

		for i := 0; i < 3; i++ {
			r.loop.Tick(context.Background())
		}
		snap := r.hist.Snapshot()
		Expect(snap.Len()).To(Equal(3))
		lin, ang := snap.Values()
		Expect(lin).To(Equal([]float64{1.5, 1.5, 1.5}))
		Expect(ang).To(Equal([]float64{2, 2, 2}))
	})

	It("reports errors, corrections and controller state", func() {
		r := newRig(unitConfig(), 2, 0, 0, 100)
		r.setpoint.Write(motion.Twist{Linear: 1, Angular: 0.5})

		rep := r.loop.Tick(context.Background())
		Expect(rep.Tick).To(Equal(uint64(1)))
		Expect(rep.Error).To(Equal(motion.Twist{Linear: 1, Angular: 0.5}))
		Expect(rep.Correction).To(Equal(motion.Twist{Linear: 2, Angular: 1}))
		Expect(rep.Linear.Output).To(Equal(2.0))
		Expect(rep.Saturated()).To(BeFalse())
		Expect(r.loop.Report()).To(Equal(rep))
	})

	It("logs and counts publish failures without stopping", func() {
		var logged []string
		var mu sync.Mutex
		monitoring.SetLogger(func(format string, v ...interface{}) {
			mu.Lock()
			logged = append(logged, fmt.Sprintf(format, v...))
			mu.Unlock()
		})
		DeferCleanup(func() { monitoring.SetLogger(nil) })

		boom := errors.New("broker down")
		r := newRig(unitConfig(), 1, 0, 0, 10)
		r.pub.fail = func(n int) error {
			if n == 2 {
				return boom
			}
			return nil
		}

		r.loop.Tick(context.Background())
		rep := r.loop.Tick(context.Background())
		Expect(rep.PublishErr).To(ContainSubstring("broker down"))
		Expect(rep.PublishFailures).To(Equal(uint64(1)))

		rep = r.loop.Tick(context.Background())
		Expect(rep.PublishErr).To(BeEmpty())
		Expect(rep.PublishFailures).To(Equal(uint64(1)))
		Expect(r.pub.count()).To(Equal(3))

		mu.Lock()
		defer mu.Unlock()
		Expect(logged).To(HaveLen(1))
		Expect(logged[0]).To(ContainSubstring("tick 2"))
	})

	It("wraps publish failures in TickError", func() {
		boom := errors.New("boom")
		terr := &loop.TickError{Tick: 7, Err: boom}
		Expect(errors.Is(terr, boom)).To(BeTrue())
		Expect(terr.Error()).To(ContainSubstring("tick 7"))
	})

	It("notifies observers in order", func() {
		r := newRig(unitConfig(), 1, 0, 0, 10)
		var seen []uint64
		r.loop.AddObserver(loop.ObserverFunc(func(rep loop.Report) { seen = append(seen, rep.Tick) }))
		for i := 0; i < 4; i++ {
			r.loop.Tick(context.Background())
		}
		Expect(seen).To(Equal([]uint64{1, 2, 3, 4}))
	})
})

var _ = Describe("Run", func() {
	var (
		clock  *timeutil.MockClock
		r      *rig
		ctx    context.Context
		cancel context.CancelFunc
		done   chan error
	)

	tick := func() uint64 { return r.loop.Report().Tick }

	BeforeEach(func() {
		clock = timeutil.NewMockClock(time.Unix(0, 0))
		r = newRig(unitConfig(), 1, 0, 0, 10)
		r.loop.SetClock(clock)
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
	})

	AfterEach(func() {
		cancel()
	})

	start := func() {
		go func() { done <- r.loop.Run(ctx) }()
	}

	It("ticks once per period", func() {
		start()
		Eventually(tick).Should(Equal(uint64(1)))
		Eventually(clock.Pending).Should(Equal(1))
		Expect(r.loop.State()).To(Equal(loop.Running))

		for k := uint64(2); k <= 5; k++ {
			clock.Advance(50 * time.Millisecond)
			Eventually(tick).Should(Equal(k))
			Eventually(clock.Pending).Should(Equal(1))
		}
		Expect(r.loop.Report().Overruns).To(BeZero())
	})

	It("waits the full period before the next tick", func() {
		start()
		Eventually(clock.Pending).Should(Equal(1))
		clock.Advance(49 * time.Millisecond)
		Consistently(tick, 50*time.Millisecond).Should(Equal(uint64(1)))
		clock.Advance(time.Millisecond)
		Eventually(tick).Should(Equal(uint64(2)))
	})

	It("catches up after an overrun without drifting", func() {
		r.pub.onSend = func(n int) {
			if n == 2 {
				clock.Advance(120 * time.Millisecond)
			}
		}
		start()
		Eventually(clock.Pending).Should(Equal(1))

		// Tick 2 ends at 170ms. Ticks 3 and 4 were due at 100ms and 150ms and
		// fire back to back; tick 5 stays anchored at 200ms.
		clock.Advance(50 * time.Millisecond)
		Eventually(tick).Should(Equal(uint64(4)))
		Eventually(clock.Pending).Should(Equal(1))

		clock.Advance(29 * time.Millisecond)
		Consistently(tick, 50*time.Millisecond).Should(Equal(uint64(4)))
		clock.Advance(time.Millisecond)
		Eventually(tick).Should(Equal(uint64(5)))
		Expect(r.loop.Report().Overruns).To(Equal(uint64(2)))
		Expect(r.pub.count()).To(Equal(5))
	})

	It("stops when the context is cancelled", func() {
		start()
		Eventually(clock.Pending).Should(Equal(1))
		cancel()
		Eventually(done).Should(Receive(MatchError(context.Canceled)))
		Expect(r.loop.State()).To(Equal(loop.Stopped))
	})

	It("runs only once", func() {
		start()
		Eventually(clock.Pending).Should(Equal(1))
		Expect(r.loop.Run(ctx)).To(MatchError(loop.ErrNotIdle))
		cancel()
		Eventually(done).Should(Receive())
		Expect(r.loop.Run(context.Background())).To(MatchError(loop.ErrNotIdle))
	})

	It("returns immediately on a cancelled context", func() {
		cancel()
		Expect(r.loop.Run(ctx)).To(MatchError(context.Canceled))
		Expect(r.pub.count()).To(BeZero())
	})
})
