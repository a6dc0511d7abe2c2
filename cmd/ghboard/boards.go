package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/ghboard/internal/filter"
	"github.com/amishk599/ghboard/internal/scheduler"
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List configured boards and their effective filters",
	Long:  "Reads the config and prints each URL, its board token, the merged filter options and any warnings. Makes no requests.",
	Args:  cobra.NoArgs,
	RunE:  runBoards,
}

func init() {
	rootCmd.AddCommand(boardsCmd)
}

func runBoards(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOKEN\tDEPARTMENTS\tMAX JOBS\tDAYS BACK\tURL")

	now := time.Now()
	ok, bad := 0, 0
	var notes []string
	for _, b := range cfg.URLs {
		plan, err := scheduler.PlanBoard(b, cfg.Defaults, now)
		if err != nil {
			bad++
			fmt.Fprintf(w, "%s\t-\t-\t-\t%s\n", "(invalid)", b.URL)
			notes = append(notes, fmt.Sprintf("%s: %v", b.URL, err))
			continue
		}
		ok++
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			plan.BoardToken,
			formatDepartments(plan.RunConfig),
			formatOption(plan.Options.MaxJobs, plan.RunConfig.MaxJobs() > 0),
			formatOption(plan.Options.DaysBack, hasCutoff(plan.RunConfig)),
			plan.URL,
		)
		for _, warn := range plan.Warnings {
			notes = append(notes, fmt.Sprintf("%s: %s", plan.BoardToken, warn))
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(notes) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, n := range notes {
			fmt.Fprintf(out, "  %s\n", n)
		}
	}
	fmt.Fprintf(out, "\nTotal: %d urls (%d valid, %d invalid)\n", len(cfg.URLs), ok, bad)
	return nil
}

func formatDepartments(rc filter.RunConfig) string {
	ids := rc.DepartmentIDs()
	if len(ids) == 0 {
		return "all"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ",")
}

// formatOption shows the raw value when it took effect, "-" otherwise.
func formatOption(raw any, active bool) string {
	if !active {
		return "-"
	}
	return fmt.Sprint(raw)
}

func hasCutoff(rc filter.RunConfig) bool {
	_, ok := rc.Cutoff()
	return ok
}
