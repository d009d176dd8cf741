package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/planward/planward/internal/history"
	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyPlanID string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past executions from the history index",
	Long: `History reads the SQLite execution index the planward server keeps.
Each row is one execution attempt: which plan, when it started and
ended, how it ended, and how many steps completed.

The index is an audit convenience; plan documents and checkpoint logs
remain the source of truth even when it is missing.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "Maximum rows to show (default 20)")
	historyCmd.Flags().StringVar(&historyPlanID, "plan", "", "Show only executions of one plan id")
}

func runHistory(cmd *cobra.Command, args []string) error {
	hist, err := history.Open(projectRoot())
	if err != nil {
		return fmt.Errorf("opening history index: %w", err)
	}
	defer hist.Close()

	var entries []history.Entry
	if historyPlanID != "" {
		entries, err = hist.ForPlan(historyPlanID)
	} else {
		entries, err = hist.Recent(historyLimit)
	}
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No executions recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLAN\tTITLE\tSTATUS\tSTARTED\tENDED\tSTEPS")
	for _, e := range entries {
		ended := e.EndedAt
		if ended == "" {
			ended = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d/%d\n",
			e.PlanID, e.Title, e.Status, e.StartedAt, ended, e.StepsCompleted, e.StepsTotal)
	}
	return w.Flush()
}
