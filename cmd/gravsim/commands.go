package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/automation"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/optim"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
)

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return err
		}
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	if progress > 0 {
		debug := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		exp.Simulator().AddObserver(sim.NewProgressObserver(debug, cfg.TMax, progress))
	}

	slog.Info("running", "name", cfg.Name, "bodies", len(exp.Names()),
		"integrator", cfg.Integrator, "units", cfg.Units, "t_max", cfg.TMax)

	ctx, stop := interruptible()
	defer stop()

	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d  samples: %d  t: %.6g\n", result.StepsTaken, len(result.Snapshots), result.FinalTime)
	fmt.Printf("dt range: [%.3e, %.3e]\n", result.MinDt, result.MaxDt)
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	printMetrics(os.Stdout, result.Metrics)

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(exp.Metadata(), result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func printMetrics(w io.Writer, m map[string]float64) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "\nmetrics:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %.6e\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	return viz.Run(exp)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tBODIES\tT_MAX\tSTEPS\tINTEG\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4g\t%d\t%s\t%.2e\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Masses),
			run.TMax,
			run.Steps,
			run.Integrator,
			run.EnergyDrift,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}
	if len(result.Snapshots) == 0 {
		return fmt.Errorf("no data to plot")
	}
	n := result.Snapshots[0].NumBodies()

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(result.Snapshots))

	bodies := []int{plotBody}
	if plotBody < 0 {
		bodies = bodies[:0]
		for i := 0; i < n && i < 6; i++ {
			bodies = append(bodies, i)
		}
	}
	for _, b := range bodies {
		if b == plotOrigin {
			continue
		}
		var p *analysis.Portrait
		if plotOrigin >= 0 {
			p = analysis.RelativePortrait(result, b, plotOrigin)
		} else {
			p = analysis.OrbitPortrait(result, b)
		}
		if p == nil {
			return fmt.Errorf("body %d out of range (run has %d bodies)", b, n)
		}
		fmt.Printf("%s (x-y)\n%s\n", bodyName(meta, b), analysis.PortraitToASCII(p, plotWidth, plotHeight))
	}

	drift := energyDriftSeries(meta, result)
	fmt.Println(asciigraph.Plot(drift,
		asciigraph.Height(8),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("relative energy drift"),
	))

	if svgFile != "" {
		f, err := os.Create(svgFile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.WriteOrbitsSVG(f, result, meta.BodyNames, 800, 800); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", svgFile)
	}
	return nil
}

func bodyName(meta *storage.RunMetadata, i int) string {
	if i < len(meta.BodyNames) {
		return meta.BodyNames[i]
	}
	return fmt.Sprintf("body%d", i)
}

func energyDriftSeries(meta *storage.RunMetadata, result *dynamo.Result) []float64 {
	e := make([]float64, len(result.Snapshots))
	for i, s := range result.Snapshots {
		b := s.Bodies(meta.Masses)
		e[i] = physics.TotalEnergy(b, meta.G, meta.Softening)
	}
	e0 := e[0]
	for i := range e {
		if e0 != 0 {
			e[i] = (e[i] - e0) / math.Abs(e0)
		}
	}
	return e
}

func exportCSV(cmd *cobra.Command, args []string) error {
	snapshots, err := storage.New(dataDir).LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		return fmt.Errorf("no data to export")
	}
	if outFile == "" {
		return storage.WriteCSV(os.Stdout, snapshots)
	}
	return storage.ExportCSV(outFile, &dynamo.Result{Snapshots: snapshots})
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}
	if outFile == "" {
		return storage.ExportJSONStdout(*meta, result)
	}
	return storage.ExportJSON(outFile, *meta, result)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}

	var p *analysis.Portrait
	if anOrigin >= 0 {
		p = analysis.RelativePortrait(result, anBody, anOrigin)
	} else {
		p = analysis.OrbitPortrait(result, anBody)
	}
	if p == nil {
		return fmt.Errorf("body %d or origin %d out of range", anBody, anOrigin)
	}

	times := result.Times()
	xs := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		xs[i] = pt.X
	}

	fmt.Printf("period analysis: %s\n", meta.ID)
	fmt.Printf("body: %s", bodyName(meta, anBody))
	if anOrigin >= 0 {
		fmt.Printf(" relative to %s", bodyName(meta, anOrigin))
	}
	fmt.Print("\n\n")

	if uniform, _, err := analysis.Resample(times, xs, len(xs)); err == nil {
		ps := analysis.PowerSpectrum(uniform)
		fmt.Println(asciigraph.Plot(ps[:max(len(ps)/4, 2)],
			asciigraph.Height(12),
			asciigraph.Width(70),
			asciigraph.Caption("power spectrum (x)"),
		))
		fmt.Println()
	}

	if period, err := analysis.DominantPeriod(times, xs); err != nil {
		fmt.Printf("spectral period: %v\n", err)
	} else {
		fmt.Printf("spectral period: %.6g\n", period)
	}
	if period, err := analysis.CrossingPeriod(times, xs); err != nil {
		fmt.Printf("crossing period: %v\n", err)
	} else {
		fmt.Printf("crossing period: %.6g\n", period)
	}
	return nil
}

func runLyapunov(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()
	exp, err := experiment.NewWithRegistry(reg, cfg)
	if err != nil {
		return err
	}

	newIntegrator := func() dynamo.Integrator {
		integ, _ := reg.GetIntegrator(cfg.Integrator)
		return integ
	}
	start := time.Now()
	lambda, err := analysis.LyapunovExponent(exp.Gravity(), newIntegrator, exp.InitialBodies(),
		lyapDt, cfg.TMax, lyapPerturb, renorm)
	if err != nil {
		return err
	}
	fmt.Printf("%s: λ ≈ %.4g over t=%.4g (dt=%g, %v)\n", cfg.Name, lambda, cfg.TMax, lyapDt, time.Since(start).Round(time.Millisecond))
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	names := args[1:]
	reg := experiment.NewRegistry()
	if len(names) == 0 {
		names = reg.ListIntegrators()
	}

	cfg, err := buildConfig(cmd, args[:1])
	if err != nil {
		return err
	}

	members := make([]sim.Member, 0, len(names))
	for _, name := range names {
		c := cfg.Clone()
		c.Integrator = name
		c.Name = name
		exp, err := experiment.NewWithRegistry(reg, c)
		if err != nil {
			return err
		}
		members = append(members, exp.Member())
	}

	ctx, stop := interruptible()
	defer stop()

	start := time.Now()
	outcomes, err := sim.NewEnsemble(0).Run(ctx, members)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators on %s (min_dt=%g, t_max=%g)\n\n", args[0], cfg.MinDt, cfg.TMax)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tMIN_DT\tMAX_DT\tENERGY_DRIFT\tL_DRIFT")
	for _, out := range outcomes {
		if out.Err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", out.Name, out.Err)
			continue
		}
		r := out.Result
		fmt.Fprintf(w, "%s\t%d\t%.3e\t%.3e\t%.3e\t%.3e\n",
			out.Name, r.StepsTaken, r.MinDt, r.MaxDt, r.EnergyDrift, r.Metrics["angular_momentum_drift"])
	}
	fmt.Fprintf(w, "\nwall time %v\n", time.Since(start).Round(time.Millisecond))
	return w.Flush()
}

func benchPreset(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s with %s\n\n", cfg.Name, cfg.Integrator)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tMIN_DT\tSTEPS\tTIME\tSTEPS/SEC")

	workerCounts := []int{1, runtime.NumCPU()}
	if workerCounts[1] == 1 {
		workerCounts = workerCounts[:1]
	}
	for _, wk := range workerCounts {
		for _, scale := range []float64{4, 2, 1} {
			c := cfg.Clone()
			c.Workers = wk
			c.MinDt = cfg.MinDt * scale
			exp, err := experiment.New(c)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%.3g\t%d\t%v\t%.0f\n",
				wk, c.MinDt, result.StepsTaken, elapsed.Round(time.Microsecond),
				float64(result.StepsTaken)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tUNITS\tT_MAX\tMIN_DT\tDT_OUTPUT")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%.4g\t%g\t%.4g\n", name, p.Units, p.TMax, p.MinDt, p.DtOutput)
	}
	return w.Flush()
}

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	r := automation.NewRunner(limit, slog.Default())
	r.Store = storage.New(dataDir)
	if err := r.Store.Init(); err != nil {
		return err
	}

	ctx, stop := interruptible()
	defer stop()

	results, err := r.RunScenario(ctx, sc)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTEPS\tENERGY_DRIFT\tRUN_ID")
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(w, "%s\terror: %v\n", res.Name, res.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%.3e\t%s\n", res.Name, res.Result.StepsTaken, res.Result.EnergyDrift, res.RunID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed", failed, len(results))
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	sweep := &automation.ParameterSweep{
		Preset:     args[0],
		Integrator: integrator,
		ParamName:  sweepName,
		ParamMin:   sweepMin,
		ParamMax:   sweepMax,
		NumSteps:   sweepN,
	}

	ctx, stop := interruptible()
	defer stop()

	results, err := automation.NewRunner(limit, slog.Default()).RunSweep(ctx, sweep)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTEPS\tMIN_DT\tMAX_DT\tENERGY_DRIFT\n", sweepName)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%g\terror: %v\n", r.ParamValue, r.Err)
			continue
		}
		fmt.Fprintf(w, "%g\t%d\t%.3e\t%.3e\t%.3e\n", r.ParamValue, r.Steps, r.MinDt, r.MaxDt, r.EnergyDrift)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	mc := &automation.MonteCarloConfig{
		Preset:       args[0],
		Integrator:   integrator,
		Perturbation: mcPerturb,
		NumTrials:    trials,
		Seed:         mcSeed,
	}

	ctx, stop := interruptible()
	defer stop()

	results, err := automation.NewRunner(limit, slog.Default()).RunMonteCarlo(ctx, mc)
	if err != nil {
		return err
	}
	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("%s: %d bound, %d unbound of %d trials (kick %g)\n", args[0], stable, unstable, len(results), mcPerturb)
	return nil
}

func tuneMinDt(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	candidates := make([]float64, 0, 8)
	for k := 0; k < 8; k++ {
		candidates = append(candidates, cfg.MinDt*math.Pow(2, float64(2-k)))
	}

	ctx, stop := interruptible()
	defer stop()

	minDt, result, err := optim.TuneMinDt(ctx, cfg, candidates, tolerance)
	if err != nil {
		return err
	}
	fmt.Printf("%s: min_dt=%g keeps energy drift at %.3e (%d steps)\n",
		cfg.Name, minDt, math.Max(result.EnergyDrift, result.Metrics["energy_drift"]), result.StepsTaken)
	return nil
}
