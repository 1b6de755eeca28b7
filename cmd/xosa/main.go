package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/xosa/internal/config"
	"github.com/san-kum/xosa/internal/scenario"
)

var (
	configFile string
	preset     string
	dataDir    string

	kp        float64
	ki        float64
	kd        float64
	motorGain float64
	rateHz    float64
	cpu       int

	transportKind string
	broker        string
	serialPort    string
	baudRate      int
	listen        string
	record        bool

	noTUI    bool
	theme    string
	fps      int
	scenName string
)

// main registers the xosa commands and executes the root command, exiting
// with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "xosa",
		Short:        "closed-loop thruster controller",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a named vessel preset")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "session directory (default record.dir)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the controller against a live vessel",
		RunE:  runLive,
	}
	addControllerFlags(runCmd)
	runCmd.Flags().StringVar(&transportKind, "transport", "mqtt", "thrust egress: mqtt or serial")
	runCmd.Flags().StringVar(&broker, "broker", "tcp://localhost:1883", "mqtt broker url")
	runCmd.Flags().StringVar(&serialPort, "serial-port", "/dev/ttyUSB0", "serial ESC bridge port")
	runCmd.Flags().IntVar(&baudRate, "baud", 115200, "serial baud rate")

	simCmd := &cobra.Command{
		Use:   "sim",
		Short: "run the controller against the simulated vessel",
		RunE:  runSim,
	}
	addControllerFlags(simCmd)
	simCmd.Flags().StringVar(&scenName, "scenario", "step", "setpoint scenario: built-in name or yaml file")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search gains on the simulated vessel",
		RunE:  runTune,
	}
	addTuneFlags(tuneCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded sessions",
		RunE:  listSessions,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [session_id]",
		Short: "plot session tracking errors",
		Args:  cobra.ExactArgs(1),
		RunE:  plotSession,
	}
	plotCmd.Flags().StringVar(&pngOut, "png", "", "write an image (png, svg or pdf) instead of a terminal plot")

	statsCmd := &cobra.Command{
		Use:   "stats [session_id]",
		Short: "summary statistics of session errors",
		Args:  cobra.ExactArgs(1),
		RunE:  sessionStats,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [session_id]",
		Short: "export session ticks to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [session_id]",
		Short: "export session metadata and ticks to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list vessel presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-8s %s (kp=%g ki=%g kd=%g, %g Hz)\n",
					name, p.Description, p.Gains.Kp, p.Gains.Ki, p.Gains.Kd, p.Loop.RateHz)
			}
			return nil
		},
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list built-in scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range scenario.BuiltinNames() {
				s, err := scenario.Builtin(name)
				if err != nil {
					return err
				}
				fmt.Printf("  %-8s %-40s %v\n", name, s.Description, s.Duration)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage configuration files",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "xosa.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	})

	rootCmd.AddCommand(runCmd, simCmd, tuneCmd, listCmd, plotCmd, statsCmd,
		exportCSVCmd, exportJSONCmd, presetsCmd, scenariosCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addControllerFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "pid kp")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "pid ki")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "pid kd")
	cmd.Flags().Float64Var(&motorGain, "motor-gain", config.DefaultMotorGain, "thrust ceiling")
	cmd.Flags().Float64Var(&rateHz, "rate", config.DefaultRateHz, "loop rate (Hz)")
	cmd.Flags().IntVar(&cpu, "cpu", -1, "pin the loop to a CPU (-1 disables)")
	cmd.Flags().StringVar(&listen, "listen", ":8090", "diagnostics listen address (empty disables)")
	cmd.Flags().BoolVar(&record, "record", false, "record the session")
	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "print a status line instead of the tuning console")
	cmd.Flags().StringVar(&theme, "theme", "dark", "console theme: dark or light")
	cmd.Flags().IntVar(&fps, "fps", 4, "status line refresh rate with --no-tui")
}

// loadConfig builds the effective configuration: defaults, then the preset,
// then the config file, then any flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		if configFile == "" {
			p.Apply(cfg)
		} else {
			// The file wins over the preset for anything it sets, so only
			// the vessel model is taken from the preset.
			cfg.Vessel = p.Vessel
		}
	}

	flags := cmd.Flags()
	if flags.Changed("kp") {
		cfg.Gains.Kp = kp
	}
	if flags.Changed("ki") {
		cfg.Gains.Ki = ki
	}
	if flags.Changed("kd") {
		cfg.Gains.Kd = kd
	}
	if flags.Changed("motor-gain") {
		cfg.MotorGain = motorGain
	}
	if flags.Changed("rate") {
		cfg.Loop.RateHz = rateHz
	}
	if flags.Changed("cpu") {
		cfg.Loop.CPU = cpu
	}
	if flags.Changed("transport") {
		cfg.Transport.Kind = transportKind
	}
	if flags.Changed("broker") {
		cfg.Transport.MQTT.Broker = broker
	}
	if flags.Changed("serial-port") {
		cfg.Transport.Serial.Port = serialPort
	}
	if flags.Changed("baud") {
		cfg.Transport.Serial.BaudRate = baudRate
	}
	if flags.Changed("listen") {
		cfg.Diag.Listen = listen
	}
	if flags.Changed("record") {
		cfg.Record.Enabled = record
	}
	if dataDir != "" {
		cfg.Record.Dir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
