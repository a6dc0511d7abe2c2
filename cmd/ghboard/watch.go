package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/amishk599/ghboard/internal/scheduler"
)

var lockFile string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process the configured boards on an interval",
	Long:  "Runs every board once per interval; blocks until SIGINT/SIGTERM. Only one watcher may hold the lock file.",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

// errAlreadyRunning is returned when another watcher holds the lock.
var errAlreadyRunning = errors.New("another watcher is already running")

func init() {
	watchCmd.Flags().StringVar(&lockFile, "lock-file", "ghboard.lock", "single-instance lock file")
	watchCmd.Flags().BoolVar(&flagSkipDetails, "skip-details", false, "do not fetch job details")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, logFormat)

	cfg, err := loadConfig(cfgPath, false)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}
	if err := cfg.RequireURLs(); err != nil {
		logger.Error("nothing to watch", "error", err)
		return err
	}

	lock := flock.New(lockFile)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", lockFile, err)
	}
	if !locked {
		logger.Error("lock held", "lock_file", lockFile)
		return errAlreadyRunning
	}
	defer lock.Unlock()

	logger.Info("config loaded",
		"interval", cfg.Interval.String(),
		"boards", len(cfg.URLs),
		"sinks", len(cfg.Sinks),
		"fetch_details", cfg.FetchDetails,
	)

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
	sched := scheduler.NewScheduler(runner, cfg.URLs, cfg.Defaults, cfg.Interval, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		return err
	}

	// ctx is already cancelled here.
	out.LogSizes(context.WithoutCancel(ctx), logger)
	logger.Info("goodbye")
	return nil
}
