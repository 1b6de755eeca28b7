package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/xosa/internal/config"
	"github.com/san-kum/xosa/internal/metrics"
	"github.com/san-kum/xosa/internal/storage"
)

var pngOut string

func openStore(cmd *cobra.Command) *storage.Store {
	dir := config.DefaultConfig().Record.Dir
	if cfg, err := loadConfig(cmd); err == nil {
		dir = cfg.Record.Dir
	}
	return storage.New(dir)
}

func listSessions(cmd *cobra.Command, args []string) error {
	sessions, err := openStore(cmd).List()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("no sessions found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODE\tSCENARIO\tSTARTED\tTICKS\tRATE\tIAE")
	for _, s := range sessions {
		rate := 0.0
		if s.Period > 0 {
			rate = 1 / s.Period
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.0f Hz\t%.4f\n",
			s.ID, s.Mode, s.Scenario,
			s.Started.Format("2006-01-02 15:04:05"),
			s.Ticks, rate, s.Metrics["iae"])
	}
	return w.Flush()
}

func plotSession(cmd *cobra.Command, args []string) error {
	id := args[0]
	st := openStore(cmd)
	meta, err := st.Load(id)
	if err != nil {
		return err
	}

	if pngOut != "" {
		if err := st.PlotPNG(id, pngOut); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", pngOut)
		return nil
	}

	rows, err := st.LoadTicks(id)
	if err != nil {
		return err
	}
	if len(rows) < 2 {
		return fmt.Errorf("not enough data to plot")
	}
	_, lin, ang := storage.ErrorSeries(rows)

	fmt.Printf("session: %s (%s %s)\n\n", meta.ID, meta.Mode, meta.Scenario)
	fmt.Println(asciigraph.Plot(lin, asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption("linear error")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(ang, asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption("angular error")))
	return nil
}

func sessionStats(cmd *cobra.Command, args []string) error {
	id := args[0]
	st := openStore(cmd)
	meta, err := st.Load(id)
	if err != nil {
		return err
	}
	rows, err := st.LoadTicks(id)
	if err != nil {
		return err
	}
	_, lin, ang := storage.ErrorSeries(rows)

	fmt.Printf("session: %s\n", meta.ID)
	fmt.Printf("ticks: %d  overruns: %d  publish failures: %d\n\n", meta.Ticks, meta.Overruns, meta.Failures)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AXIS\tN\tMEAN\tSTDDEV\tRMS\tMAX|e|\tP95|e|")
	for _, axis := range []struct {
		name string
		s    metrics.Summary
	}{
		{"linear", metrics.Summarize(lin)},
		{"angular", metrics.Summarize(ang)},
	} {
		fmt.Fprintf(w, "%s\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			axis.name, axis.s.N, axis.s.Mean, axis.s.StdDev, axis.s.RMS, axis.s.MaxAbs, axis.s.P95Abs)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if meta.Period > 0 {
		lhz, _ := metrics.DominantFrequency(lin, meta.Period)
		ahz, _ := metrics.DominantFrequency(ang, meta.Period)
		fmt.Printf("\nringing: linear %.3f Hz  angular %.3f Hz\n", lhz, ahz)
	}

	if len(meta.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for _, name := range metrics.Names() {
			if v, ok := meta.Metrics[name]; ok {
				fmt.Printf("  %s: %.6f\n", name, v)
			}
		}
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return openStore(cmd).ExportCSV(args[0], os.Stdout)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return openStore(cmd).ExportJSON(args[0], os.Stdout)
}
