package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/planward/planward/internal/plan"
	"github.com/spf13/cobra"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List plans in the project",
	Long: `List prints one line per plan: id, status, version, title, and the
last update time.

Use --status to filter, with commas for more than one:
  planctl list --status proposed
  planctl list --status executing,stalled`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (comma-separated)")
}

func runList(cmd *cobra.Command, args []string) error {
	statuses, err := plan.ParseStatuses(listStatus)
	if err != nil {
		return err
	}

	store := plan.NewFileStore(projectRoot())
	plans, err := store.List(statuses...)
	if err != nil {
		return fmt.Errorf("listing plans: %w", err)
	}

	if len(plans) == 0 {
		if listStatus != "" {
			fmt.Printf("No plans with status %s.\n", listStatus)
		} else {
			fmt.Println("No plans. Plans are proposed through the planward MCP server.")
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tVERSION\tTITLE\tUPDATED")
	for _, p := range plans {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", p.ID, p.Status, p.Version, p.Title, p.UpdatedAt)
	}
	return w.Flush()
}
