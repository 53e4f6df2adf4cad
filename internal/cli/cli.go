package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/artsindex/internal/config"
	"github.com/pfrederiksen/artsindex/internal/export"
	"github.com/pfrederiksen/artsindex/internal/logger"
	"github.com/pfrederiksen/artsindex/internal/pipeline"
	"github.com/pfrederiksen/artsindex/internal/record"
	"github.com/pfrederiksen/artsindex/internal/scraper"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg := config.Default()
	var allStates bool

	cmd := &cobra.Command{
		Use:   "artsindex",
		Short: "Export Arts Index county nonprofit revenue to a spreadsheet",
		Long: `A CLI tool that scrapes the Arts Index USA county pages for one or more states,
extracts the "Total nonprofit arts revenue per capita" rows and writes them to
a spreadsheet.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if allStates {
				cfg.States = append([]string(nil), record.AllStates...)
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&cfg.States, "state", "s", config.DefaultStates(), "State code(s) to scrape, repeatable or comma-separated (env: "+config.EnvStates+")")
	f.BoolVar(&allStates, "all-states", false, "Scrape every state and DC")
	f.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Site root (env: "+config.EnvBaseURL+")")
	f.StringVar(&cfg.Metric, "metric", cfg.Metric, "Label text identifying the rows to export")
	f.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output file, defaults to \"Nonprofit Revenue\" with the format's extension (env: "+config.EnvOutput+")")
	f.StringVar(&cfg.Sheet, "sheet", cfg.Sheet, "Sheet name for xlsx output")
	f.StringVar(&cfg.Format, "format", cfg.Format, "Output format: xlsx or json")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "Counties scraped concurrently")
	f.IntVar(&cfg.Retries, "retries", cfg.Retries, "Retries per request on network or server errors")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	f.StringVar(&cfg.Summary, "summary", cfg.Summary, "Summary format: text or json")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error (env: "+config.EnvLogLevel+")")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: json or console (env: "+config.EnvLogFormat+")")

	cmd.MarkFlagsMutuallyExclusive("state", "all-states")

	return cmd
}

// run is the main command logic
func run(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	if err := cfg.Load(); err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := logger.NewWithFormat(level, stderr, cfg.LogFormat)
	logger.SetDefault(log)
	metrics := logger.NewMetrics()

	sc := scraper.New(
		scraper.WithBaseURL(cfg.BaseURL),
		scraper.WithMetric(cfg.Metric),
		scraper.WithTimeout(cfg.Timeout),
		scraper.WithRetries(cfg.Retries),
		scraper.WithLogger(log),
	)
	p := pipeline.New(sc,
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithLogger(log),
		pipeline.WithMetrics(metrics),
	)

	ds, err := p.Run(ctx, cfg.States)
	if err != nil {
		return fmt.Errorf("scraping: %w", err)
	}

	logger.Info("writing data", logger.Fields{"path": cfg.Output, "records": ds.Len()})
	if err := export.Write(cfg.Output, export.Format(cfg.Format), cfg.Sheet, ds); err != nil {
		logger.Error("export failed", logger.Fields{"path": cfg.Output}, err)
		return fmt.Errorf("exporting: %w", err)
	}
	logger.Debug("metrics", logger.Fields{"metrics": metrics.Snapshot()})

	result := NewSummary(ds, cfg, metrics.Counter(pipeline.MetricRegions), time.Now().UTC())
	if err := WriteSummary(stdout, result, OutputFormat(cfg.Summary)); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}
