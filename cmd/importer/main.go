// Command importer runs league import pipelines against the configured
// database.
//
// Usage:
//
//	leaguesync run chicago
//	leaguesync run chicago philly --json
//	leaguesync roster chicago
//	leaguesync results chicago
//	leaguesync validate chicago
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/paddlelab/leaguesync/internal/app"
	"github.com/paddlelab/leaguesync/internal/config"
	"github.com/paddlelab/leaguesync/internal/domain/run"
	"github.com/paddlelab/leaguesync/internal/observability"
	"github.com/paddlelab/leaguesync/internal/platform/logging"
	"github.com/paddlelab/leaguesync/internal/usecase"
)

var errRunNotClean = errors.New("run did not end clean")

func main() {
	var (
		envName    string
		jsonReport bool
	)

	root := &cobra.Command{
		Use:           "leaguesync",
		Short:         "League data reconciliation and import engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envName, "env", "", "environment name; loads .env.<name> before .env")
	root.PersistentFlags().BoolVar(&jsonReport, "json", false, "print run reports as JSON")

	root.AddCommand(runCmd(&envName, &jsonReport))
	root.AddCommand(scopedCmd("roster", "Import the player roster only", usecase.Scope{Roster: true}, &envName, &jsonReport))
	root.AddCommand(scopedCmd("schedule", "Import the match schedule only", usecase.Scope{Schedule: true}, &envName, &jsonReport))
	root.AddCommand(scopedCmd("results", "Import match results only", usecase.Scope{Results: true}, &envName, &jsonReport))
	root.AddCommand(scopedCmd("stats", "Import aggregated series stats only", usecase.Scope{Stats: true}, &envName, &jsonReport))
	root.AddCommand(scopedCmd("validate", "Validate and repair referential integrity", usecase.Scope{Validate: true}, &envName, &jsonReport))

	if err := root.Execute(); err != nil {
		if !errors.Is(err, errRunNotClean) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func runCmd(envName *string, jsonReport *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "run <league>...",
		Short: "Run the full pipeline for one or more leagues",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(*envName, func(ctx context.Context, engine *app.Engine) error {
				reports, err := engine.Runs.RunMany(ctx, args)
				if err != nil {
					return err
				}
				failed := false
				for _, report := range reports {
					if err := printReport(report, *jsonReport); err != nil {
						return err
					}
					if !terminalOK(report) {
						failed = true
					}
				}
				if failed {
					return errRunNotClean
				}
				return nil
			})
		},
	}
}

func scopedCmd(use, short string, scope usecase.Scope, envName *string, jsonReport *bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <league>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(*envName, func(ctx context.Context, engine *app.Engine) error {
				report, runErr := engine.Runs.RunScoped(ctx, args[0], scope)
				if err := printReport(report, *jsonReport); err != nil {
					return err
				}
				if runErr != nil {
					return runErr
				}
				if !terminalOK(report) {
					return errRunNotClean
				}
				return nil
			})
		},
	}
}

// withEngine handles env loading, config, observability bootstrap, database
// wiring and signal cancellation around one command.
func withEngine(envName string, fn func(ctx context.Context, engine *app.Engine) error) error {
	if envName != "" {
		_ = godotenv.Load(".env." + envName)
	}
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return fmt.Errorf("init pyroscope: %w", err)
	}
	defer func() { _ = stopProfiler() }()

	engine, err := app.NewEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	if err := engine.SyncOrphanMappings(ctx); err != nil {
		return err
	}

	return fn(ctx, engine)
}

func printReport(report run.Report, asJSON bool) error {
	if asJSON {
		out, err := usecase.RenderReportJSON(report)
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Print(usecase.RenderReportText(report))
	return nil
}

// terminalOK reports whether a run's terminal state counts as success for
// the process exit code. Unvalidated scoped runs end at written.
func terminalOK(report run.Report) bool {
	switch report.State {
	case run.StateClean, run.StateWritten:
		return !report.Partial
	default:
		return false
	}
}
