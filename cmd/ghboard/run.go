package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/ghboard/internal/config"
	"github.com/amishk599/ghboard/internal/scheduler"
)

var (
	flagDepartments []int
	flagMaxJobs     int
	flagDaysBack    int
	flagSkipDetails bool
)

var runCmd = &cobra.Command{
	Use:   "run [url...]",
	Short: "Process every board once and exit",
	Long:  "Fetches, filters and normalizes each board once. URLs given as arguments replace the config's urls.",
	Args:  cobra.ArbitraryArgs,
	RunE:  runRun,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

// addRunFlags registers the filter overrides. The root command gets them
// too, since it falls through to run.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntSliceVar(&flagDepartments, "departments", nil, "only read these department ids (comma separated)")
	cmd.Flags().IntVar(&flagMaxJobs, "max-jobs", 0, "stop after this many jobs per board (0 = unlimited)")
	cmd.Flags().IntVar(&flagDaysBack, "days-back", 0, "only keep jobs updated within this many days")
	cmd.Flags().BoolVar(&flagSkipDetails, "skip-details", false, "do not fetch job details")
}

// applyRunFlags copies the flags the user actually set onto the run-level
// defaults. Unset flags leave the config untouched.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config, args []string) {
	if len(args) > 0 {
		cfg.URLs = cfg.URLs[:0]
		for _, a := range args {
			cfg.URLs = append(cfg.URLs, config.BoardConfig{URL: a})
		}
	}
	if cmd.Flags().Changed("departments") {
		cfg.Defaults.Departments = flagDepartments
	}
	if cmd.Flags().Changed("max-jobs") {
		cfg.Defaults.MaxJobs = flagMaxJobs
	}
	if cmd.Flags().Changed("days-back") {
		cfg.Defaults.DaysBack = flagDaysBack
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, logFormat)

	cfg, err := loadConfig(cfgPath, len(args) > 0)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}
	applyRunFlags(cmd, cfg, args)
	if err := cfg.RequireURLs(); err != nil {
		logger.Error("nothing to do", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := buildClient(cfg, logger)
	if err != nil {
		logger.Error("failed to build client", "error", err)
		return err
	}
	out, err := buildSinks(ctx, cfg.Sinks, logger)
	if err != nil {
		logger.Error("failed to open sinks", "error", err)
		return err
	}
	defer out.Close()

	proc := buildProcessor(cfg, client, out, flagSkipDetails, logger)
	runner := scheduler.NewRunner(proc, cfg.Concurrency.Boards, logger)

	results, err := runner.RunOnce(ctx, cfg.URLs, cfg.Defaults)
	if err != nil {
		return err
	}
	out.LogSizes(ctx, logger)
	if scheduler.AllFailed(results) {
		return fmt.Errorf("all %d boards failed", len(results))
	}
	return nil
}
