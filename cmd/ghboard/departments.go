package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/amishk599/ghboard/internal/adapter"
)

var departmentsCmd = &cobra.Command{
	Use:   "departments <url>",
	Short: "List a board's departments",
	Long:  "Fetches the board listing and prints each department id, name and job count, for use in department filters.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDepartments,
}

func init() {
	rootCmd.AddCommand(departmentsCmd)
}

func runDepartments(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, logFormat)

	ref, err := adapter.ParseBoardURL(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cfgPath, true)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := buildClient(cfg, logger)
	if err != nil {
		return err
	}
	depts, err := client.ListDepartments(ctx, ref.Token)
	if err != nil {
		return fmt.Errorf("listing departments for %s: %w", ref.Token, err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "ID\tJOBS\t\tNAME")
	total := 0
	for _, d := range depts {
		total += len(d.Jobs)
		fmt.Fprintf(w, "%d\t%d\t\t%s\n", d.ID, len(d.Jobs), d.Name)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s: %d departments, %d jobs\n", ref.Token, len(depts), total)
	return nil
}
