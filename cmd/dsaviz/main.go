package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/dsaviz/internal/algorithms"
	"github.com/san-kum/dsaviz/internal/audio"
	"github.com/san-kum/dsaviz/internal/automation"
	"github.com/san-kum/dsaviz/internal/config"
	"github.com/san-kum/dsaviz/internal/ctxlog"
	"github.com/san-kum/dsaviz/internal/dataset"
	"github.com/san-kum/dsaviz/internal/engine"
	"github.com/san-kum/dsaviz/internal/export"
	"github.com/san-kum/dsaviz/internal/storage"
	"github.com/san-kum/dsaviz/internal/tui"
	"github.com/san-kum/dsaviz/internal/visualizer"
)

var (
	dataDir    string
	logLevel   string
	noColor    bool
	theme      string
	configFile string

	speed      int
	kind       string
	size       int
	seed       int64
	values     []int
	rows       int
	cols       int
	target     int
	value      int
	startID    int
	preset     string
	fast       bool
	scriptFast bool
	quiet      bool
	output     string
	atStep     int
	progress   bool
	noteMs     int
	volume     float64

	sweepMin   int
	sweepMax   int
	sweepSteps int
	sweepSeeds int
)

// main registers the commands and runs the terminal UI when no subcommand
// is given. It exits with status 1 when a command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:               "dsaviz",
		Short:             "step-by-step algorithm visualizer",
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
		RunE:              runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured log output")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", tui.ThemeTerminal.Name, "tui theme ("+strings.Join(tui.ThemeNames(), ", ")+")")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	runCmd := &cobra.Command{
		Use:   "run [algorithm]",
		Short: "run an algorithm and save the recording",
		Args:  cobra.ExactArgs(1),
		RunE:  runAlgorithm,
	}
	runCmd.Flags().IntVar(&speed, "speed", engine.DefaultSpeed, "speed 1-100")
	runCmd.Flags().StringVar(&kind, "kind", "", "data kind (random, unique, sorted, values, ordered, grid, tree)")
	runCmd.Flags().IntVar(&size, "size", 0, "collection size")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	runCmd.Flags().IntSliceVar(&values, "values", nil, "explicit values, e.g. 5,3,8,1")
	runCmd.Flags().IntVar(&rows, "rows", 0, "grid rows")
	runCmd.Flags().IntVar(&cols, "cols", 0, "grid columns")
	runCmd.Flags().IntVar(&target, "target", config.DefaultTarget, "search target")
	runCmd.Flags().IntVar(&value, "value", config.DefaultValue, "tree insert/search value")
	runCmd.Flags().IntVar(&startID, "start", 0, "graph start node")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().BoolVar(&fast, "fast", false, "skip pacing delays")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the result")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run progress",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run and frames to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a recorded frame or the progress curve as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&atStep, "step", -1, "frame step to draw (default last)")
	exportSVGCmd.Flags().BoolVar(&progress, "progress", false, "draw the progress curve instead of a frame")

	sonifyCmd := &cobra.Command{
		Use:   "sonify [run_id]",
		Short: "render a run as a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE:  sonifyRun,
	}
	sonifyCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <run_id>.wav)")
	sonifyCmd.Flags().IntVar(&noteMs, "note", int(audio.DefaultNote/time.Millisecond), "note length in milliseconds")
	sonifyCmd.Flags().Float64Var(&volume, "volume", 0, "volume offset (log2)")

	algorithmsCmd := &cobra.Command{
		Use:   "algorithms",
		Short: "list available algorithms",
		RunE:  listAlgorithms,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [algorithm]",
		Short: "list available presets for an algorithm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for algorithm: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "run a scenario file (yaml or hcl)",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}
	scriptCmd.Flags().BoolVar(&scriptFast, "fast", true, "skip pacing delays")

	sweepCmd := &cobra.Command{
		Use:   "sweep [algorithm]",
		Short: "compare step counts across collection sizes",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&kind, "kind", "", "data kind (default depends on the algorithm)")
	sweepCmd.Flags().IntVar(&sweepMin, "min", 5, "smallest size")
	sweepCmd.Flags().IntVar(&sweepMax, "max", 50, "largest size")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of sizes")
	sweepCmd.Flags().IntVar(&sweepSeeds, "seeds", 3, "runs per size")
	sweepCmd.Flags().IntVar(&target, "target", config.DefaultTarget, "search target")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive terminal visualizer",
		RunE:  runTUI,
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd,
		sonifyCmd, algorithmsCmd, presetsCmd, scriptCmd, sweepCmd, tuiCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := parseLevel(logLevel)
	if err != nil {
		return err
	}
	logger := newLogger(logOutput, level, noColor)
	cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
	return nil
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(algorithms.NewRegistry()); err != nil {
		return err
	}
	return tui.Run(cmd.Context(), tui.Options{Config: cfg, Theme: tui.GetTheme(theme)})
}

// resolveRun layers the configuration: preset, then config file, then any
// flag given on the command line.
func resolveRun(cmd *cobra.Command, algorithm string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(algorithm, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(algorithm))
		}
		cp := *p
		cfg = &cp
	}
	if configFile != "" {
		loaded, err := loadConfig()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.Algorithm = algorithm

	flags := cmd.Flags()
	if flags.Changed("speed") {
		cfg.Speed = speed
	}
	if flags.Changed("values") {
		cfg.Data.Values = values
		cfg.Data.Kind = ""
	}
	if flags.Changed("kind") {
		cfg.Data.Kind = dataset.Kind(kind)
	}
	if flags.Changed("size") {
		cfg.Data.Size = size
	}
	if flags.Changed("seed") || cfg.Data.Seed == 0 {
		cfg.Data.Seed = seed
	}
	if flags.Changed("rows") {
		cfg.Data.Rows = rows
	}
	if flags.Changed("cols") {
		cfg.Data.Cols = cols
	}
	if flags.Changed("target") {
		cfg.Params.Target = target
	}
	if flags.Changed("value") {
		cfg.Params.Value = value
	}
	if flags.Changed("start") {
		cfg.Params.Start = startID
	}
	if cfg.DataDir == "" || cmd.Flags().Changed("data") {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

func runAlgorithm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := ctxlog.FromContext(ctx)

	registry := algorithms.NewRegistry()
	cfg, err := resolveRun(cmd, args[0])
	if err != nil {
		return err
	}
	if err := cfg.Validate(registry); err != nil {
		return err
	}
	spec, err := registry.Get(cfg.Algorithm)
	if err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	opts := automation.Options{Registry: registry, Delays: cfg.Delays, Store: st}
	if fast {
		opts.Pacer = engine.InstantPacer{}
	} else {
		opts.Pacer = engine.TimerPacer{}
	}
	if !quiet {
		opts.Observer = engine.ObserverFunc(printFrame)
	}

	logger.Info("running", "algorithm", spec.Name, "speed", cfg.Speed, "seed", cfg.Data.Seed)
	start := time.Now()

	out, err := automation.Execute(ctx, automation.Request{
		Algorithm: spec.Name,
		Speed:     cfg.Speed,
		Data:      cfg.DataParams(spec),
		Params:    cfg.Params,
	}, opts)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s %s in %v\n", spec.Title, out.Result.Status, time.Since(start).Round(time.Millisecond))
	fmt.Printf("run id: %s\n", out.RunID)
	printResult(out.Result)
	return nil
}

func printFrame(f engine.Frame) {
	if f.Kind == engine.StepMark {
		return
	}
	rec := storage.NewFrameRecord(f)
	line := fmt.Sprintf("%4d  %-8s", f.Step, f.Kind)
	if rec.Focus >= 0 {
		line += fmt.Sprintf(" focus=%-4d", rec.Focus)
	}
	if len(f.Scene.Elements) > 0 {
		line += fmt.Sprintf(" %v", f.Scene.Values())
	}
	fmt.Println(line)
}

func printResult(res visualizer.Result) {
	fmt.Printf("steps: %d\n", res.StepsTaken)
	if res.Found != nil {
		if *res.Found && res.Index != nil {
			fmt.Printf("found at index %d\n", *res.Index)
		} else if *res.Found {
			fmt.Println("found")
		} else {
			fmt.Println("not found")
		}
	}
	if len(res.Order) > 0 {
		parts := make([]string, len(res.Order))
		for i, v := range res.Order {
			parts[i] = fmt.Sprint(v)
		}
		fmt.Printf("order: %s\n", strings.Join(parts, " "))
	}
	if len(res.Metrics) == 0 {
		return
	}
	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %g\n", name, res.Metrics[name])
	}
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
	fmt.Fprintln(w, "ID\tLABEL\tALGORITHM\tTIME\tSTATUS\tSTEPS\tSIZE\tSPEED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Label,
			run.Algorithm,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Status,
			run.StepsTaken,
			run.Data.Size,
			run.Speed,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("algorithm: %s\n", meta.Algorithm)
	fmt.Printf("frames: %d\n\n", len(frames))

	data := make([]float64, len(frames))
	for i, f := range frames {
		data[i] = f.Progress
	}
	caption := "touched vs step"
	if meta.Family == algorithms.FamilySort {
		caption = "inversions vs step"
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportCSV(os.Stdout, args[0])
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func exportSVG(cmd *cobra.Command, args []string) error {
	frames, err := storage.New(dataDir).LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("run %s has no frames", args[0])
	}

	var svg string
	if progress {
		svg = export.ProgressToSVG(frames, 800, 300, "#00ff00")
	} else {
		frame := frames[len(frames)-1]
		if atStep >= 0 {
			i := sort.Search(len(frames), func(i int) bool { return frames[i].Step >= atStep })
			if i == len(frames) || frames[i].Step != atStep {
				return fmt.Errorf("run %s has no step %d", args[0], atStep)
			}
			frame = frames[i]
		}
		svg = export.FrameToSVG(frame, 800, 300)
	}
	if svg == "" {
		return fmt.Errorf("nothing to draw for run %s", args[0])
	}

	if output == "" {
		_, err = fmt.Println(svg)
		return err
	}
	return os.WriteFile(output, []byte(svg), 0644)
}

func sonifyRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	frames, err := storage.New(dataDir).LoadFrames(runID)
	if err != nil {
		return err
	}

	path := output
	if path == "" {
		path = runID + ".wav"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	opts := audio.DefaultOptions()
	opts.Note = time.Duration(noteMs) * time.Millisecond
	if cmd.Flags().Changed("volume") {
		opts.Volume = volume
	}
	if err := audio.WriteWAV(f, frames, opts); err != nil {
		return err
	}
	ctxlog.FromContext(cmd.Context()).Info("wrote audio", "path", path, "frames", len(frames))
	return nil
}

func listAlgorithms(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFAMILY\tDATA\tTITLE")
	for _, s := range algorithms.NewRegistry().List() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, s.Family, s.Scene, s.Title)
	}
	return w.Flush()
}

func runScript(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	opts := automation.Options{}
	if !scriptFast {
		opts.Pacer = engine.TimerPacer{}
	}
	outcomes, err := automation.RunScenario(cmd.Context(), scenario, opts, dataDir)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tALGORITHM\tSTATUS\tSTEPS\tRUN")
	for _, out := range outcomes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			out.Request.Label,
			out.Request.Algorithm,
			out.Result.Status,
			out.Result.StepsTaken,
			out.RunID,
		)
	}
	if flushErr := w.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	sweep := &automation.SizeSweep{
		Algorithm: args[0],
		Kind:      dataset.Kind(kind),
		MinSize:   sweepMin,
		MaxSize:   sweepMax,
		NumSteps:  sweepSteps,
		Seeds:     sweepSeeds,
		Params:    algorithms.Params{Target: target},
	}
	results, err := automation.RunSweep(cmd.Context(), sweep, automation.Options{})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIZE\tRUNS\tAVG STEPS\tMAX STEPS")
	data := make([]float64, len(results))
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.1f\t%d\n", r.Size, r.Runs, r.AvgSteps, r.MaxSteps)
		data[i] = r.AvgSteps
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(data) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("avg steps vs size"),
		))
	}
	return nil
}
