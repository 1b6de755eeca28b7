package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/xosa/internal/config"
	"github.com/san-kum/xosa/internal/metrics"
	"github.com/san-kum/xosa/internal/optim"
	"github.com/san-kum/xosa/internal/scenario"
	"github.com/san-kum/xosa/internal/tuning"
)

var (
	kpRange    string
	kiRange    string
	kdRange    string
	tuneMetric string
	saveTo     string
)

func addTuneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&scenName, "scenario", "step", "setpoint scenario: built-in name or yaml file")
	cmd.Flags().StringVar(&kpRange, "kp-range", "0.5:6:12", "kp grid as lo:hi:n")
	cmd.Flags().StringVar(&kiRange, "ki-range", "0:0.05:3", "ki grid as lo:hi:n")
	cmd.Flags().StringVar(&kdRange, "kd-range", "0:8:9", "kd grid as lo:hi:n")
	cmd.Flags().StringVar(&tuneMetric, "metric", "iae", "metric to minimise")
	cmd.Flags().StringVar(&saveTo, "save", "", "write the config with the best gains to this path")
}

// parseRange reads "lo:hi:n" or a single fixed value.
func parseRange(s string) ([]float64, error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("bad range %q: %w", s, err)
		}
		return []float64{v}, nil
	case 3:
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || n <= 0 || hi < lo {
			return nil, fmt.Errorf("bad range %q (want lo:hi:n with lo <= hi, n > 0)", s)
		}
		return optim.Linspace(lo, hi, n), nil
	}
	return nil, fmt.Errorf("bad range %q (want lo:hi:n)", s)
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scen, err := scenario.Resolve(scenName)
	if err != nil {
		return err
	}
	if _, err := metrics.New(tuneMetric, 1); err != nil {
		return fmt.Errorf("%w (available: %v)", err, metrics.Names())
	}

	var ranges [][]float64
	for _, r := range []string{kpRange, kiRange, kdRange} {
		vals, err := parseRange(r)
		if err != nil {
			return err
		}
		ranges = append(ranges, vals)
	}

	trial := optim.Trial{
		Scenario:  scen,
		Vessel:    cfg.Vessel,
		Loop:      cfg.LoopConfig(),
		MaxOutput: cfg.MaxOutput.Linear,
		Limits:    cfg.Limits,
		Metric:    tuneMetric,
	}
	grid := optim.NewGridSearch([]string{tuning.KP, tuning.KI, tuning.KD}, ranges)

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("searching %d gain sets on %s (%v) by %s...\n", grid.Size(), scen.Name, scen.Duration, tuneMetric)
	start := time.Now()
	res, err := grid.Search(ctx, trial.Objective(cfg.TuningValues()))
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v (%d evaluated, %d failed)\n", time.Since(start).Round(time.Millisecond), res.Evaluated, res.Failed)
	fmt.Printf("best %s: %.6f\n", tuneMetric, res.Score)
	fmt.Printf("  kp: %.4f\n  ki: %.4f\n  kd: %.4f\n", res.Params[tuning.KP], res.Params[tuning.KI], res.Params[tuning.KD])

	if saveTo != "" {
		cfg.Gains = config.GainsConfig{Kp: res.Params[tuning.KP], Ki: res.Params[tuning.KI], Kd: res.Params[tuning.KD]}
		if err := config.Save(saveTo, cfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", saveTo)
	}
	return nil
}
