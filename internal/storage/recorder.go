package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/san-kum/xosa/internal/loop"
	"github.com/san-kum/xosa/internal/monitoring"
)

var tickHeader = []string{
	"tick", "t",
	"setpoint_linear", "setpoint_angular",
	"measured_linear", "measured_angular",
	"error_linear", "error_angular",
	"correction_linear", "correction_angular",
	"left", "right", "motor_gain",
	"saturated", "publish_err",
}

// Recorder is a loop.Observer that appends every tick to a session.
type Recorder struct {
	store *Store
	meta  SessionMetadata
	file  *os.File
	w     *csv.Writer

	mu     sync.Mutex
	start  time.Time
	last   loop.Report
	err    error
	closed bool
}

// Create starts a new session. meta.ID and meta.Started are filled in.
func (s *Store) Create(meta SessionMetadata) (*Recorder, error) {
	now := time.Now()
	meta.ID = newSessionID(now)
	meta.Started = now

	if err := os.MkdirAll(filepath.Join(s.baseDir, meta.ID), 0755); err != nil {
		return nil, err
	}
	if err := s.writeMetadata(&meta); err != nil {
		return nil, err
	}

	f, err := os.Create(s.path(meta.ID, ticksFile))
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write(tickHeader); err != nil {
		f.Close()
		return nil, err
	}
	return &Recorder{store: s, meta: meta, file: f, w: w}, nil
}

func (r *Recorder) ID() string { return r.meta.ID }

func (r *Recorder) OnTick(rep loop.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.err != nil {
		return
	}
	if r.start.IsZero() {
		r.start = rep.Time
	}
	r.last = rep

	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	row := []string{
		strconv.FormatUint(rep.Tick, 10),
		f(rep.Time.Sub(r.start).Seconds()),
		f(rep.Setpoint.Linear), f(rep.Setpoint.Angular),
		f(rep.Measurement.Linear), f(rep.Measurement.Angular),
		f(rep.Error.Linear), f(rep.Error.Angular),
		f(rep.Correction.Linear), f(rep.Correction.Angular),
		f(rep.Thrust.Left), f(rep.Thrust.Right), f(rep.MotorGain),
		strconv.FormatBool(rep.Saturated()),
		rep.PublishErr,
	}
	if err := r.w.Write(row); err != nil {
		r.err = err
		monitoring.Logf("storage: session %s: %v", r.meta.ID, err)
	}
}

// Close flushes the ticks, stores the final metadata with metrics, and
// returns the first write error seen.
func (r *Recorder) Close(metrics map[string]float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return r.err
	}
	r.closed = true

	r.w.Flush()
	if err := r.w.Error(); err != nil && r.err == nil {
		r.err = err
	}
	if err := r.file.Close(); err != nil && r.err == nil {
		r.err = err
	}

	r.meta.Ended = time.Now()
	r.meta.Ticks = r.last.Tick
	r.meta.Overruns = r.last.Overruns
	r.meta.Failures = r.last.PublishFailures
	r.meta.Metrics = metrics
	if err := r.store.writeMetadata(&r.meta); err != nil && r.err == nil {
		r.err = err
	}
	return r.err
}
