package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mattn/go-runewidth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/brettbedarf/mvsfs"
	"github.com/brettbedarf/mvsfs/adapters"
	"github.com/brettbedarf/mvsfs/browser"
	"github.com/brettbedarf/mvsfs/config"
	"github.com/brettbedarf/mvsfs/internal/metrics"
	"github.com/brettbedarf/mvsfs/internal/util"
	"github.com/brettbedarf/mvsfs/listing"
)

var (
	sourcePath string
	configPath string
	filter     string
	pageSize   int
	verbose    int
	logLevel   string
	asDataset  bool
	showStats  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "mvsfs",
	Short:         "Browse MVS datasets as a virtual filesystem",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var lsCmd = &cobra.Command{
	Use:   "ls [PATH]",
	Short: "List the children of an MVS location",
	Long: `List the children of a high level qualifier, qualifier prefix or dataset.

PATH may be quoted or not: USERID, 'USERID.SRC' and userid.src. are all
accepted. Without PATH the root hint is shown. Use --dataset to list the
members of a partitioned dataset.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	lsCmd.Flags().StringVarP(&sourcePath, "source", "s", "", "Path to the source definition file (required)")
	lsCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML or JSON config file")
	lsCmd.Flags().StringVarP(&filter, "filter", "f", "", "Filter entries by name; a leading / makes it a regex")
	lsCmd.Flags().IntVar(&pageSize, "page-size", config.DefaultPageSize, "Entries per delivered page")
	lsCmd.Flags().BoolVarP(&asDataset, "dataset", "d", false, "Treat PATH as a dataset and list its members")
	lsCmd.Flags().BoolVar(&showStats, "stats", false, "Print listing metrics to stderr when done")
	_ = lsCmd.MarkFlagRequired("source")

	rootCmd.PersistentFlags().IntVarP(&verbose, "verbose", "v", config.InfoVerbose,
		"Log verbosity level between 1 (error) and 5 (trace)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level by name (trace, debug, info, warn, error); overrides --verbose")
	rootCmd.AddCommand(lsCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig merges the config file, environment and flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var fileOverride *config.ConfigOverride
	if configPath != "" {
		o, err := config.LoadConfigOverrideFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", configPath, err)
		}
		fileOverride = o
	}
	envOverride, err := config.LoadEnvOverride(config.EnvPrefix)
	if err != nil {
		return nil, err
	}

	flagOverride := &config.ConfigOverride{}
	flags := cmd.Flags()
	if flags.Changed("verbose") {
		flagOverride.LogLvl = util.Pointer(verbose)
	}
	if flags.Changed("page-size") {
		flagOverride.PageSize = util.Pointer(pageSize)
	}
	if flags.Changed("filter") {
		flagOverride.FilterPattern = util.Pointer(filter)
	}
	cfg := config.NewConfig(fileOverride, envOverride, flagOverride)
	if flags.Changed("log-level") {
		lvl, err := util.ParseLogLevel(logLevel)
		if err != nil {
			return nil, err
		}
		cfg.LogLvl = lvl
	}
	return cfg, nil
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	util.InitializeLogger(cfg.LogLvl)
	logger := util.GetLogger("main")

	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	logger.Debug().
		Str("source", sourcePath).
		Str("path", path).
		Int("pageSize", cfg.PageSize).
		Dur("pacing", cfg.PacingDelay).
		Str("filter", cfg.FilterPattern).
		Msg("mvsfs initializing")

	registry := adapters.NewRegistry()
	adapters.RegisterBuiltins(registry)
	client, err := registry.NewClientFromFile(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to create client from %s: %w", sourcePath, err)
	}
	if closer, ok := client.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close client")
			}
		}()
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	engine := listing.New(client, listing.WithMetrics(m), listing.WithPacing(cfg.PacingDelay))
	b := browser.NewBrowser(engine, cfg, browser.WithMetrics(m))
	defer b.Shutdown()

	b.OnStatus(func(msg string) { logger.Info().Msg(msg) })
	b.OnError(func(msg string) { logger.Error().Msg(msg) })

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		b.CancelLoading()
	}()

	if asDataset {
		err = b.NavigateDataset(path)
	} else {
		err = b.Navigate(path)
	}
	if err != nil {
		return err
	}
	b.Wait()

	if showStats {
		if err := printStats(cmd.ErrOrStderr(), reg); err != nil {
			logger.Warn().Err(err).Msg("Failed to print stats")
		}
	}
	switch st := b.LoadState(); st.Phase {
	case browser.PhaseFailed:
		return st.Err
	case browser.PhaseCancelled:
		return fmt.Errorf("listing %s interrupted after %d entries", st.Location.LogicalPath(), st.Count)
	}

	printTable(cmd.OutOrStdout(), b.ViewModel())
	return nil
}

// printTable writes one row per resource with columns padded to display
// width.
func printTable(w io.Writer, items []mvsfs.VirtualResource) {
	rows := [][]string{{"NAME", "KIND", "RECFM", "LRECL", "PATH"}}
	for _, it := range items {
		lrecl := ""
		if it.LogicalRecordLength > 0 {
			lrecl = strconv.Itoa(it.LogicalRecordLength)
		}
		rows = append(rows, []string{it.DisplayName(), it.Kind().String(), it.RecordFormat, lrecl, it.OpenPath()})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, col := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(col))
		}
	}
	for _, row := range rows {
		var line strings.Builder
		for i, col := range row {
			if i == len(row)-1 {
				line.WriteString(col)
				break
			}
			line.WriteString(runewidth.FillRight(col, widths[i]))
			line.WriteString("  ")
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}

// printStats writes the gathered metrics of reg in the Prometheus text format.
func printStats(w io.Writer, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather stats: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode stats: %w", err)
		}
	}
	return nil
}
