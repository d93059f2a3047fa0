package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/san-kum/bondsim/internal/bondgraph"
	"github.com/san-kum/bondsim/internal/config"
	"github.com/san-kum/bondsim/internal/models"
	"github.com/san-kum/bondsim/internal/render"
	"github.com/san-kum/bondsim/internal/store"
	"github.com/san-kum/bondsim/internal/tui"
)

var (
	configFile string
	dataDir    string
	logLevel   string

	modelFile string
	removals  []string
	save      bool
	asJSON    bool
	deriveAll bool

	sweepSymbol string
	sweepState  string
	sweepFrom   float64
	sweepTo     float64
	sweepSet    []string

	cfg      *config.Config
	logger   hclog.Logger
	registry = models.NewRegistry()
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "bondsim",
		Short:         "bond-graph modelling and state equation derivation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(registry, cfg.Notation, "", logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (trace, debug, info, warn, error, off)")

	deriveCmd := &cobra.Command{
		Use:   "derive [model]",
		Short: "derive the state equations of a model",
		Args:  cobra.MaximumNArgs(1),
		RunE:  deriveModel,
	}
	deriveCmd.Flags().StringVarP(&modelFile, "file", "f", "", "model document (yaml)")
	deriveCmd.Flags().StringSliceVar(&removals, "remove", nil, "remove bonds before deriving, as junction:position")
	deriveCmd.Flags().BoolVar(&save, "save", false, "store the derivation as a run")
	deriveCmd.Flags().BoolVar(&asJSON, "json", false, "print the derivation as JSON")
	deriveCmd.Flags().BoolVar(&deriveAll, "all", false, "derive every built-in model")

	showCmd := &cobra.Command{
		Use:   "show [model]",
		Short: "list bonds and draw the graph",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showModel,
	}
	showCmd.Flags().StringVarP(&modelFile, "file", "f", "", "model document (yaml)")
	showCmd.Flags().StringSliceVar(&removals, "remove", nil, "remove bonds first, as junction:position")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list built-in models",
		RunE:  listModels,
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect [run_id]",
		Short: "print a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectRun,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "plot a state derivative against one symbol",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepModel,
	}
	sweepCmd.Flags().StringVarP(&modelFile, "file", "f", "", "model document (yaml)")
	sweepCmd.Flags().StringVar(&sweepSymbol, "symbol", "", "symbol to sweep (required)")
	sweepCmd.Flags().StringVar(&sweepState, "state", "", "state whose derivative is plotted (default: first)")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", -1, "range start")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1, "range end")
	sweepCmd.Flags().StringSliceVar(&sweepSet, "set", nil, "override a value, as name=value")
	_ = sweepCmd.MarkFlagRequired("symbol")

	tuiCmd := &cobra.Command{
		Use:   "tui [model]",
		Short: "browse and edit a model interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := ""
			if len(args) > 0 {
				start = args[0]
			}
			return tui.Run(registry, cfg.Notation, start, logger)
		},
	}

	rootCmd.AddCommand(deriveCmd, showCmd, modelsCmd, runsCmd, inspectCmd, sweepCmd, tuiCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads the config file, lets explicit flags override it and builds
// the logger.
func setup(cmd *cobra.Command) error {
	cfg = config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("data") || configFile == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") || configFile == "" {
		cfg.LogLevel = logLevel
	}

	logger = hclog.New(&hclog.LoggerOptions{
		Name:   "bondsim",
		Level:  hclog.LevelFromString(cfg.LogLevel),
		Output: os.Stderr,
	})
	logger.Debug("configured", "data", cfg.DataDir, "notation", cfg.Notation)
	return nil
}

// loadModel resolves --file, the positional name or the configured default,
// builds it and applies --remove.
func loadModel(args []string) (*models.Model, error) {
	var (
		spec *config.ModelSpec
		err  error
	)
	switch {
	case modelFile != "":
		spec, err = config.LoadModel(modelFile)
	case len(args) > 0:
		spec, err = registry.Get(args[0])
	default:
		spec, err = registry.Get(cfg.Model)
	}
	if err != nil {
		return nil, err
	}

	m, err := models.Build(spec, bondgraph.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := applyRemovals(m, removals); err != nil {
		return nil, err
	}
	return m, nil
}

// applyRemovals deletes bonds given as junction:position. Positions refer
// to the junction as it is when that removal runs.
func applyRemovals(m *models.Model, specs []string) error {
	for _, s := range specs {
		name, pos, ok := strings.Cut(s, ":")
		if !ok {
			return fmt.Errorf("remove %q: want junction:position", s)
		}
		j, ok := m.Junctions[name]
		if !ok {
			return fmt.Errorf("remove %q: no junction %q", s, name)
		}
		i, err := strconv.Atoi(pos)
		if err != nil {
			return fmt.Errorf("remove %q: %w", s, err)
		}
		if _, err := j.RemoveBond(i); err != nil {
			return fmt.Errorf("remove %q: %w", s, err)
		}
	}
	return nil
}

func deriveModel(cmd *cobra.Command, args []string) error {
	if deriveAll {
		return deriveEvery(cmd.Context())
	}
	m, err := loadModel(args)
	if err != nil {
		return err
	}
	d, err := m.Derive()
	if err != nil {
		return describeFailure(err)
	}

	run := store.Run{Model: m.Spec.Name, Root: m.Root.Label(), Removed: removals}
	if asJSON {
		if err := store.WriteJSON(os.Stdout, run, d); err != nil {
			return err
		}
	} else {
		fmt.Println(render.Summary(m.Spec.Name, d, cfg.Notation))
	}

	if save {
		st := store.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(run, d)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved run %s\n", runID)
	}
	return nil
}

func deriveEvery(ctx context.Context) error {
	failed := 0
	for _, o := range registry.DeriveAll(ctx, registry.List(), bondgraph.WithLogger(logger)) {
		if o.Err != nil {
			failed++
			fmt.Println(render.Bad.Render(o.Name + ": " + o.Err.Error()))
			continue
		}
		fmt.Println(render.Summary(o.Name, o.Derivation, cfg.Notation))
	}
	if failed > 0 {
		return fmt.Errorf("%d models failed", failed)
	}
	return nil
}

// describeFailure adds the unresolved equations of a derivation error.
func describeFailure(err error) error {
	var de *bondgraph.DerivationError
	if !errors.As(err, &de) {
		return err
	}
	for _, q := range de.Residual {
		fmt.Fprintln(os.Stderr, "  "+render.Equation(q, cfg.Notation))
	}
	return de.Wrapped
}

func showModel(cmd *cobra.Command, args []string) error {
	m, err := loadModel(args)
	if err != nil {
		return err
	}
	for _, j := range m.Graph.Junctions() {
		fmt.Println(render.Title.Render(j.Label()))
		fmt.Print(render.BondsIn(j, cfg.Notation))
		fmt.Println()
	}
	fmt.Print(render.Diagram(m.Root))
	return nil
}

func listModels(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tROOT\tDESCRIPTION")
	for _, name := range registry.List() {
		spec, err := registry.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, spec.Root, spec.Description)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tROOT\tTIME\tSTATES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			run.ID,
			run.Model,
			run.Root,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			strings.Join(run.States, ", "),
		)
	}

	return w.Flush()
}

func inspectRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(cfg.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	eqs, err := st.LoadEquations(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}
	for _, eq := range eqs {
		fmt.Println(render.Notate(eq.Derivative+" = "+eq.RHS, cfg.Notation))
	}
	return nil
}

func sweepModel(cmd *cobra.Command, args []string) error {
	m, err := loadModel(args)
	if err != nil {
		return err
	}
	d, err := m.Derive()
	if err != nil {
		return describeFailure(err)
	}
	if len(d.Equations) == 0 {
		return errors.New("model has no states")
	}

	idx := 0
	if sweepState != "" {
		idx = -1
		for i, s := range d.States {
			if s.Name() == sweepState {
				idx = i
			}
		}
		if idx < 0 {
			return fmt.Errorf("no state %q", sweepState)
		}
	}

	bind := m.Bindings()
	overrides, err := parseAssignments(sweepSet)
	if err != nil {
		return err
	}
	for name, v := range overrides {
		bind[m.Symbol(name)] = v
	}

	plot, err := render.Sweep(d.Equations[idx], m.Symbol(sweepSymbol), sweepFrom, sweepTo, bind,
		render.SweepOptions{Points: cfg.Sweep.Points, Height: cfg.Sweep.Height})
	if err != nil {
		return err
	}
	fmt.Println(plot)
	return nil
}

func parseAssignments(sets []string) (map[string]float64, error) {
	out := make(map[string]float64, len(sets))
	for _, s := range sets {
		name, val, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("set %q: want name=value", s)
		}
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("set %q: %w", s, err)
		}
		out[strings.TrimSpace(name)] = v
	}
	return out, nil
}
