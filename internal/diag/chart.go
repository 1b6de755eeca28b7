package diag

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/san-kum/xosa/internal/history"
)

// handleHistoryChart renders the error history as an interactive line chart.
func (s *Server) handleHistoryChart(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := renderHistory(&buf, s.snapshot()); err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func renderHistory(buf *bytes.Buffer, snap history.Snapshot) error {
	x := make([]string, snap.Len())
	for i, smp := range snap.Linear {
		x[i] = strconv.Itoa(smp.Index)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "xosa error history", Theme: "dark", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Velocity error", Subtitle: fmt.Sprintf("samples=%d", snap.Len())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "sample", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "error", NameLocation: "middle", NameGap: 40}),
	)
	line.SetXAxis(x).
		AddSeries("linear", lineData(snap.Linear)).
		AddSeries("angular", lineData(snap.Angular))
	return line.Render(buf)
}

// lineData leaves non-finite samples as gaps.
func lineData(samples []history.Sample) []opts.LineData {
	out := make([]opts.LineData, len(samples))
	for i, smp := range samples {
		if math.IsNaN(smp.Value) || math.IsInf(smp.Value, 0) {
			continue
		}
		out[i] = opts.LineData{Value: smp.Value}
	}
	return out
}
