// Package cli implements the phdg command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/phdg/internal/application/diagram"
	"github.com/turtacn/phdg/internal/config"
	"github.com/turtacn/phdg/internal/domain/gibbs"
	"github.com/turtacn/phdg/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/phdg/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/phdg/internal/infrastructure/storage/minio"
	"github.com/turtacn/phdg/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	ConfigPath   string
	Logger       logging.Logger
	Collector    prom.MetricsCollector
	Metrics      *prom.PhaseMetrics
	Service      diagram.Service
	OutputFormat string
}

// NewRootCommand creates the root cobra command with all global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "phdg",
		Short: "phdg builds pressure-temperature phase diagrams from tabulated free energies",
		Long: "phdg reads Gibbs free-energy tables for a set of substances, enumerates the\n" +
			"combinations allowed by the configured manifests and classifies a P-T grid by\n" +
			"the combination of lowest free energy.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./phdg.yaml, ~/.phdg/config.yaml, /etc/phdg/config.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides log.level")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, table)")

	cmd.AddCommand(
		NewSubstancesCmd(),
		NewCombinationsCmd(),
		NewClassifyCmd(),
		NewPlotCmd(),
		NewWatchCmd(),
		NewVersionCmd(),
	)
	return cmd
}

// persistentPreRun loads config and builds the command dependencies,
// then fills the CLIContext seeded by Run.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	if cmd.Name() == "version" {
		return nil
	}
	switch strings.ToLower(opts.OutputFormat) {
	case "text", "json", "table":
	default:
		return errors.Newf(errors.ErrCodeBadRequest, "unknown output format %q", opts.OutputFormat)
	}

	cliCtx, err := initContext(opts)
	if err != nil {
		return err
	}

	if seeded, ok := cmd.Context().Value(cliContextKey{}).(*CLIContext); ok && seeded != nil {
		*seeded = *cliCtx
		return nil
	}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

func initContext(opts *RootOptions) (*CLIContext, error) {
	cfg, err := config.Load(config.WithConfigPath(opts.ConfigPath))
	if err != nil {
		return nil, err
	}

	logger, err := initLogger(cfg, opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "logger initialization failed")
	}
	logging.SetDefault(logger)

	collector, err := initCollector(cfg, logger)
	if err != nil {
		return nil, err
	}
	metrics := prom.NewPhaseMetrics(collector)

	svc, err := initService(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}

	return &CLIContext{
		Config:       cfg,
		ConfigPath:   config.Path(opts.ConfigPath),
		Logger:       logger,
		Collector:    collector,
		Metrics:      metrics,
		Service:      svc,
		OutputFormat: strings.ToLower(opts.OutputFormat),
	}, nil
}

// reload re-reads the config from c.ConfigPath and rebuilds the service,
// keeping the logger and metrics.
func (c *CLIContext) reload() (*CLIContext, error) {
	cfg, err := config.Load(config.WithConfigPath(c.ConfigPath))
	if err != nil {
		return nil, err
	}
	svc, err := initService(cfg, c.Logger, c.Metrics)
	if err != nil {
		return nil, err
	}
	next := *c
	next.Config = cfg
	next.Service = svc
	return &next, nil
}

func initService(cfg *config.Config, logger logging.Logger, metrics *prom.PhaseMetrics) (diagram.Service, error) {
	loader, err := initTableLoader(cfg, logger)
	if err != nil {
		return nil, err
	}
	return diagram.NewService(loader, logger.Named("diagram"),
		diagram.WithMetrics(metrics),
		diagram.WithWorkers(cfg.Classifier.Workers)), nil
}

// initLogger creates a logger configured for CLI usage (console on stderr
// unless configured otherwise).
func initLogger(cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	level := cfg.Log.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            logging.ParseLevel(level),
		Format:           cfg.Log.Format,
		OutputPaths:      []string{cfg.Log.Output},
		ErrorOutputPaths: []string{"stderr"},
	})
}

func initCollector(cfg *config.Config, logger logging.Logger) (prom.MetricsCollector, error) {
	if !cfg.Metrics.Enabled {
		return prom.NewNopCollector(), nil
	}
	return prom.NewMetricsCollector(prom.CollectorConfig{
		Namespace:       cfg.Metrics.Namespace,
		EnableGoMetrics: true,
	}, logger.Named("metrics"))
}

// initTableLoader routes plain paths to the filesystem and, when an endpoint
// is configured, minio:// sources to object storage.
func initTableLoader(cfg *config.Config, logger logging.Logger) (diagram.TableLoader, error) {
	router := diagram.NewRouter(gibbs.FileLoader{BaseDir: cfg.System.BaseDir})
	if mc := cfg.Storage.MinIO; mc.Endpoint != "" {
		client, err := minio.NewMinIOClient(minio.MinIOConfig{
			Endpoint:  mc.Endpoint,
			AccessKey: mc.AccessKey,
			SecretKey: mc.SecretKey,
			UseSSL:    mc.UseSSL,
			Region:    mc.Region,
		}, logger.Named("minio"))
		if err != nil {
			return nil, err
		}
		router.Handle(minio.Scheme, minio.NewTableLoader(client, 0, logger.Named("minio")))
	}
	return router, nil
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil || cliCtx.Config == nil {
		return nil, errors.Internal("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// Run executes the command tree with args, writing results to stdout and
// diagnostics to stderr.  The metrics textfile, when configured, is written
// after the command finishes whether or not it succeeded.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cliCtx := &CLIContext{}
	err := root.ExecuteContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	if werr := writeMetrics(cliCtx); werr != nil && err == nil {
		err = werr
	}
	if err != nil {
		PrintError(root, err)
	}
	return err
}

// Execute is the main entry point for the CLI application.
func Execute(ctx context.Context) error {
	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func writeMetrics(c *CLIContext) error {
	if c.Config == nil || !c.Config.Metrics.Enabled || c.Config.Metrics.Textfile == "" {
		return nil
	}
	if err := c.Collector.WriteTextfile(c.Config.Metrics.Textfile); err != nil {
		c.Logger.Error("failed to write metrics textfile", logging.String("path", c.Config.Metrics.Textfile), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write metrics textfile").WithDetail(c.Config.Metrics.Textfile)
	}
	c.Logger.Debug("metrics written", logging.String("path", c.Config.Metrics.Textfile))
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Output helpers
// ─────────────────────────────────────────────────────────────────────────────

// tableProvider is implemented by results that render as a table.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult outputs data in the format specified by CLIContext.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return printJSON(cmd, data)
	}

	switch cliCtx.OutputFormat {
	case "json":
		return printJSON(cmd, data)
	case "table":
		return printTable(cmd, data)
	default:
		return printText(cmd, data)
	}
}

// printJSON outputs data as indented JSON to stdout.
func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// printText outputs data as a simple string representation to stdout.
func printText(cmd *cobra.Command, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprint(cmd.OutOrStdout(), v.String())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}

// printTable outputs data as a table if it implements tableProvider,
// otherwise falls back to text.
func printTable(cmd *cobra.Command, data interface{}) error {
	if tp, ok := data.(tableProvider); ok {
		fmt.Fprint(cmd.OutOrStdout(), FormatTable(tp.TableHeaders(), tp.TableRows()))
		return nil
	}
	return printText(cmd, data)
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// FormatTable renders headers and rows as an aligned ASCII table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if len(row[i]) > colWidths[i] {
				colWidths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			sb.WriteString(padRight(val, colWidths[i]))
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sep := make([]string, len(headers))
	for i, w := range colWidths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

// padRight pads s with spaces to the given width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

//Personal.AI order the ending
