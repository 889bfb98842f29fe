package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mypromo/connect-sdk-test/internal/config"
	"github.com/mypromo/connect-sdk-test/internal/connect"
	"github.com/mypromo/connect-sdk-test/internal/report"
	"github.com/mypromo/connect-sdk-test/internal/scenario"
	"github.com/mypromo/connect-sdk-test/internal/suites"
)

var (
	runFormat  string
	runOnly    []string
	runVerbose bool
	runNoColor bool
)

func init() {
	f := rootCmd.Flags()
	f.StringVar(&runFormat, "format", "text", "Output format: text or json")
	f.StringSliceVar(&runOnly, "only", nil, "Run only the named scenarios (comma separated)")
	f.BoolVarP(&runVerbose, "verbose", "v", false, "Print successful steps too")
	f.BoolVar(&runNoColor, "no-color", false, "Disable colored output")
}

func runSuite(cmd *cobra.Command, _ []string) error {
	if runFormat != "text" && runFormat != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", runFormat)
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	if cfg.EnvFile != "" {
		logger.Debug("env file loaded", zap.String("path", cfg.EnvFile))
	}

	scenarios, err := buildSuite(cfg, runOnly)
	if err != nil {
		return err
	}

	client, err := connect.NewClient(cfg.EndpointURL,
		connect.WithTimeout(cfg.Timeout),
		connect.WithLogger(logger.Named("connect")),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	opts := []scenario.Option{scenario.WithLogger(logger.Named("runner"))}
	var reporter *report.Reporter
	if runFormat == "text" {
		ropts := []report.Option{report.WithCrop(cfg.CropResponses), report.WithVerbose(runVerbose)}
		if runNoColor {
			ropts = append(ropts, report.WithTheme(report.MonoTheme()))
		}
		reporter = report.New(out, ropts...)
		opts = append(opts, scenario.WithObserver(reporter))
	}

	rep := run(ctx, client, cfg.Sessions(), scenarios, opts...)

	if reporter != nil {
		reporter.Summary(rep)
	} else if err := report.WriteJSON(out, rep); err != nil {
		return err
	}

	if rep.Failed() {
		return errRunFailed
	}
	return nil
}

func run(ctx context.Context, p scenario.Provider[suites.Session], specs []scenario.SessionSpec, scs []suites.Scenario, opts ...scenario.Option) *scenario.Report {
	return scenario.NewRunner[suites.Session](p, opts...).Run(ctx, specs, scs)
}

// buildSuite assembles the scenarios for cfg, narrowed to only when set.
func buildSuite(cfg *config.Config, only []string) ([]suites.Scenario, error) {
	tables, err := suites.Tables(cfg.FieldTables, cfg.Vars())
	if err != nil {
		return nil, err
	}
	all, err := suites.Build(suites.Options{
		Fixtures:   cfg.Fixtures,
		PreviewDir: cfg.PreviewDir,
		Tables:     tables,
	})
	if err != nil {
		return nil, err
	}
	return suites.Select(all, only)
}
