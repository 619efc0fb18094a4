package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/viz"
)

var (
	dataDir   string
	verbose   bool
	logFormat string

	configFile string
	preset     string
	runName    string
	integrator string
	units      string
	gConst     float64
	softening  float64
	tMax       float64
	minDt      float64
	dtOutput   float64
	maxDt      float64
	maxSteps   int
	accelNorm  string
	workers    int
	seed       int64
	numBodies  int
	progress   int
	saveConfig string
	noSave     bool

	outFile    string
	svgFile    string
	plotBody   int
	plotOrigin int
	plotWidth  int
	plotHeight int
	anBody     int
	anOrigin   int

	lyapDt      float64
	lyapPerturb float64
	renorm      int

	limit     int
	sweepName string
	sweepMin  float64
	sweepMax  float64
	sweepN    int
	trials    int
	mcPerturb float64
	mcSeed    int64
	tolerance float64
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gravsim",
		Short: "adaptive gravitational n-body simulator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunMenu()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text|json)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation and store its trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().IntVar(&progress, "progress", 0, "log progress every n steps (0 = off)")
	runCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the effective config to this yaml file")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot orbits of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotBody, "body", -1, "plot a single body (-1 = all)")
	plotCmd.Flags().IntVar(&plotOrigin, "origin", -1, "plot relative to this body")
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write an svg of all orbits")
	plotCmd.Flags().IntVar(&plotWidth, "width", 70, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 24, "plot height")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a trajectory as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "estimate orbital periods of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&anBody, "body", 1, "body to analyze")
	analyzeCmd.Flags().IntVar(&anOrigin, "origin", 0, "reference body (-1 = absolute)")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov [preset]",
		Short: "estimate the largest lyapunov exponent",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLyapunov,
	}
	addRunFlags(lyapunovCmd)
	lyapunovCmd.Flags().Float64Var(&lyapDt, "dt", 1e-3, "fixed step")
	lyapunovCmd.Flags().Float64Var(&lyapPerturb, "perturbation", 1e-8, "initial separation")
	lyapunovCmd.Flags().IntVar(&renorm, "renorm", 10, "steps between renormalizations")

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [integrator...]",
		Short: "compare integrators on the same system",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addRunFlags(compareCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "measure step throughput",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchPreset,
	}
	addRunFlags(benchCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in systems",
		RunE:  listPresets,
	}

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a yaml scenario of simulations concurrently",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().IntVar(&limit, "parallel", 4, "runs in flight")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "sweep one parameter and report energy drift",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepName, "param", "min_dt", "parameter to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "from", 1e-3, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "to", 1e-2, "last value")
	sweepCmd.Flags().IntVar(&sweepN, "n", 5, "grid points")
	sweepCmd.Flags().IntVar(&limit, "parallel", 4, "runs in flight")
	sweepCmd.Flags().StringVar(&integrator, "integrator", "", "integrator")

	mcCmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "kick velocities at random and count bound outcomes",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonteCarlo,
	}
	mcCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	mcCmd.Flags().Float64Var(&mcPerturb, "perturbation", 0.05, "relative velocity kick")
	mcCmd.Flags().Int64Var(&mcSeed, "seed", 1, "random seed")
	mcCmd.Flags().IntVar(&limit, "parallel", 4, "runs in flight")
	mcCmd.Flags().StringVar(&integrator, "integrator", "", "integrator")

	tuneCmd := &cobra.Command{
		Use:   "tune [preset]",
		Short: "find the largest min_dt within an energy drift tolerance",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneMinDt,
	}
	addRunFlags(tuneCmd)
	tuneCmd.Flags().Float64Var(&tolerance, "tolerance", 1e-4, "allowed relative energy drift")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, showCmd, plotCmd, exportCSVCmd, exportJSONCmd,
		analyzeCmd, lyapunovCmd, compareCmd, benchCmd, presetsCmd, batchCmd, sweepCmd, mcCmd, tuneCmd)
	return rootCmd
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&configFile, "config", "c", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "preset name (same as the positional argument)")
	f.StringVar(&runName, "name", "", "run name")
	f.StringVar(&integrator, "integrator", "leapfrog", "integrator")
	f.StringVar(&units, "units", "nbody", "unit system")
	f.Float64Var(&gConst, "g", 0, "gravitational constant (0 = from units)")
	f.Float64Var(&softening, "softening", 0, "softening length")
	f.Float64Var(&tMax, "t-max", config.DefaultTMax, "simulated time horizon")
	f.Float64Var(&minDt, "min-dt", config.DefaultMinDt, "step constant, dt = min_dt / max|a|")
	f.Float64Var(&dtOutput, "dt-output", config.DefaultDtOutput, "sampling interval")
	f.Float64Var(&maxDt, "max-dt", 0, "cap on the adaptive step (0 = none)")
	f.IntVar(&maxSteps, "max-steps", 0, "abort after this many steps (0 = no limit)")
	f.StringVar(&accelNorm, "accel-norm", "euclidean", "max|a| measure: euclidean or component")
	f.IntVar(&workers, "workers", 0, "force kernel goroutines (0 = all cpus)")
	f.Int64Var(&seed, "seed", 0, "random seed")
	f.IntVar(&numBodies, "bodies", config.DefaultBodies, "number of bodies (ring, random)")
}

// buildConfig starts from a config file or preset and applies every flag
// the user set explicitly.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	} else {
		name := preset
		if len(args) > 0 {
			name = args[0]
		}
		if name == "" {
			name = "binary"
		}
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", name, strings.Join(config.ListPresets(), ", "))
		}
	}

	f := cmd.Flags()
	if f.Changed("name") {
		cfg.Name = runName
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("units") {
		cfg.Units = units
	}
	if f.Changed("g") {
		cfg.G = gConst
	}
	if f.Changed("softening") {
		cfg.Softening = softening
	}
	if f.Changed("t-max") {
		cfg.TMax = tMax
	}
	if f.Changed("min-dt") {
		cfg.MinDt = minDt
	}
	if f.Changed("dt-output") {
		cfg.DtOutput = dtOutput
	}
	if f.Changed("max-dt") {
		cfg.MaxDt = maxDt
	}
	if f.Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}
	if f.Changed("accel-norm") {
		cfg.AccelNorm = accelNorm
	}
	if f.Changed("workers") {
		cfg.Workers = workers
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("bodies") {
		cfg.NumBodies = numBodies
	}
	return cfg, cfg.Validate()
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if logFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
