package main

import (
	"fmt"
	"os"

	"github.com/planward/planward/internal/plan"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a plan document",
	Long: `Show prints the canonical document form of one plan: the metadata
block, the step list, and any context or feedback trail. This is the
exact content of the PLAN-<id>.md file after normalization.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	store := plan.NewFileStore(projectRoot())
	p, err := store.Get(args[0])
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(plan.Marshal(p))
	if err != nil {
		return fmt.Errorf("writing plan: %w", err)
	}
	return nil
}
