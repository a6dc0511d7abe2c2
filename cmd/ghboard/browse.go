package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/ghboard/internal/browse"
	"github.com/amishk599/ghboard/internal/config"
	"github.com/amishk599/ghboard/internal/processor"
	"github.com/amishk599/ghboard/internal/scheduler"
	"github.com/amishk599/ghboard/internal/sink"
)

var browseCmd = &cobra.Command{
	Use:   "browse [url...]",
	Short: "Browse normalized records interactively (TUI)",
	Long:  "Shows the board picker, processes the chosen board, then launches the split-pane record view. Nothing is written to the configured sinks.",
	Args:  cobra.ArbitraryArgs,
	RunE:  runBrowseCmd,
}

func init() {
	addRunFlags(browseCmd)
	rootCmd.AddCommand(browseCmd)
}

func runBrowseCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath, len(args) > 0)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyRunFlags(cmd, cfg, args)
	if err := cfg.RequireURLs(); err != nil {
		return err
	}

	// Any log output while the alt-screen is up corrupts the display.
	logger := silentLogger()
	client, err := buildClient(cfg, logger)
	if err != nil {
		return err
	}

	now := time.Now()
	choices := make([]browse.BoardChoice, 0, len(cfg.URLs))
	plans := make([]scheduler.Plan, 0, len(cfg.URLs))
	for _, b := range cfg.URLs {
		plan, err := scheduler.PlanBoard(b, cfg.Defaults, now)
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", b.URL, err)
			continue
		}
		plans = append(plans, plan)
		choices = append(choices, browse.BoardChoice{Token: plan.BoardToken, URL: plan.URL})
	}
	if len(plans) == 0 {
		return config.ErrNoURLs
	}

	for {
		choice, err := browse.RunBoardPicker(choices)
		if err != nil {
			return fmt.Errorf("picker: %w", err)
		}
		if choice < 0 {
			return nil
		}
		plan := plans[choice]

		collector := sink.NewCollector()
		proc := buildProcessor(cfg, client, collector, flagSkipDetails, logger)
		report, err := browse.RunLoader(plan.BoardToken, cfg.HTTP.Timeout*5, func(ctx context.Context) (processor.Report, error) {
			return proc.Process(ctx, plan.BoardToken, plan.RunConfig)
		})
		if err != nil {
			fmt.Printf("Error processing %s: %v\n", plan.BoardToken, err)
			continue
		}

		wantQuit, err := browse.RunBrowseTUI(plan.BoardToken, collector.Records(), report)
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return nil
		}
		// else: back to the picker
	}
}
