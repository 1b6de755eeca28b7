package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/xosa/internal/control"
	"github.com/san-kum/xosa/internal/loop"
	"github.com/san-kum/xosa/internal/motion"
)

func record(t *testing.T, st *Store, n int) string {
	t.Helper()
	rec, err := st.Create(SessionMetadata{
		Mode:     "sim",
		Scenario: "step",
		Period:   0.05,
		Params:   map[string]float64{"kp": 3},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	start := time.Unix(100, 0)
	for i := 1; i <= n; i++ {
		rep := loop.Report{
			Tick:     uint64(i),
			Time:     start.Add(time.Duration(i-1) * 50 * time.Millisecond),
			Setpoint: motion.Twist{Linear: 1},
			Error:    motion.Twist{Linear: 1 / float64(i), Angular: -0.5},
			Thrust:   motion.Thrust{Left: 0.25, Right: 0.75},
			Linear:   control.State{Saturated: i == 2},
			Overruns: 1,
		}
		if i == 3 {
			rep.PublishErr = "tick 3: publish thrust: link, down"
			rep.PublishFailures = 1
		}
		rec.OnTick(rep)
	}
	if err := rec.Close(map[string]float64{"iae": 1.5}); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	return rec.ID()
}

func TestStoreRecordLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	id := record(t, st, 3)
	if id == "" {
		t.Fatal("expected non-empty session id")
	}

	meta, err := st.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Mode != "sim" || meta.Scenario != "step" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Ticks != 3 || meta.Failures != 1 || meta.Overruns != 1 {
		t.Errorf("counters = %d ticks, %d failures, %d overruns", meta.Ticks, meta.Failures, meta.Overruns)
	}
	if meta.Metrics["iae"] != 1.5 {
		t.Errorf("expected iae 1.5, got %f", meta.Metrics["iae"])
	}
	if meta.Ended.Before(meta.Started) {
		t.Error("ended before started")
	}

	rows, err := st.LoadTicks(id)
	if err != nil {
		t.Fatalf("load ticks failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].T != 0 || rows[2].T != 0.1 {
		t.Errorf("times = %v, %v", rows[0].T, rows[2].T)
	}
	if rows[1].ErrLinear != 0.5 || !rows[1].Saturated || rows[0].Saturated {
		t.Errorf("row 2 = %+v", rows[1])
	}
	if rows[2].PublishErr != "tick 3: publish thrust: link, down" {
		t.Errorf("publish err = %q", rows[2].PublishErr)
	}

	tt, lin, ang := ErrorSeries(rows)
	if len(tt) != 3 || lin[0] != 1 || ang[2] != -0.5 {
		t.Errorf("series = %v %v %v", tt, lin, ang)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	record(t, st, 1)
	record(t, st, 2)
	if err := os.MkdirAll(filepath.Join(st.Dir(), "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	sessions, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(sessions))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	sessions, err := st.List()
	if err != nil || len(sessions) != 0 {
		t.Errorf("List = %v, %v", sessions, err)
	}
}

func TestStoreNotFound(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load err = %v", err)
	}
	if _, err := st.LoadTicks("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadTicks err = %v", err)
	}
	if err := st.ExportCSV("nope", &bytes.Buffer{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("ExportCSV err = %v", err)
	}
}

func TestExportCSV(t *testing.T) {
	st := New(t.TempDir())
	id := record(t, st, 2)

	var buf bytes.Buffer
	if err := st.ExportCSV(id, &buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "tick,t,setpoint_linear") {
		t.Errorf("header = %q", lines[0])
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	id := record(t, st, 2)

	var buf bytes.Buffer
	if err := st.ExportJSON(id, &buf); err != nil {
		t.Fatal(err)
	}
	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Session.ID != id || data.Steps != 2 || len(data.Ticks) != 2 {
		t.Errorf("export = %+v", data)
	}
}

func TestRecorderCloseTwice(t *testing.T) {
	st := New(t.TempDir())
	rec, err := st.Create(SessionMetadata{Mode: "live"})
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.Close(nil); err != nil {
		t.Fatal(err)
	}
	rec.OnTick(loop.Report{Tick: 1})
	if err := rec.Close(nil); err != nil {
		t.Fatal(err)
	}
	rows, err := st.LoadTicks(rec.ID())
	if err != nil || len(rows) != 0 {
		t.Errorf("rows = %v, %v", rows, err)
	}
}

func TestPlotPNG(t *testing.T) {
	st := New(t.TempDir())
	id := record(t, st, 5)

	out := filepath.Join(t.TempDir(), "session.png")
	if err := st.PlotPNG(id, out); err != nil {
		t.Fatalf("plot failed: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("empty image")
	}
}

func TestPlotEmptySession(t *testing.T) {
	st := New(t.TempDir())
	id := record(t, st, 0)
	if err := st.PlotPNG(id, filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Error("expected error for empty session")
	}
}
