package main

import (
	"fmt"
	"time"

	"github.com/planward/planward/internal/config"
	"github.com/planward/planward/internal/exec"
	"github.com/planward/planward/internal/plan"
	"github.com/spf13/cobra"
)

var (
	stalledTimeoutMinutes int
	stalledMark           bool
)

var stalledCmd = &cobra.Command{
	Use:   "stalled",
	Short: "Find executions that stopped reporting",
	Long: `Stalled lists executing plans whose execution started longer ago than
the timeout. Nothing watches executions in the background; a plan whose
session crashed stays 'executing' on disk until a scan like this one
notices.

By default the scan only reports. Pass --mark to transition the found
plans to status 'stalled' so they can be retried or cancelled:
  planctl stalled
  planctl stalled --timeout-minutes 10 --mark

The timeout defaults to executor_timeout_minutes from the project
settings.`,
	Args: cobra.NoArgs,
	RunE: runStalled,
}

func init() {
	rootCmd.AddCommand(stalledCmd)
	stalledCmd.Flags().IntVar(&stalledTimeoutMinutes, "timeout-minutes", 0,
		"Override the stalled timeout in minutes")
	stalledCmd.Flags().BoolVar(&stalledMark, "mark", false,
		"Mark the found plans as stalled instead of only reporting")
}

func runStalled(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	cfg := config.Load(root)

	timeout := time.Duration(cfg.ExecutorTimeoutMinutes) * time.Minute
	if stalledTimeoutMinutes > 0 {
		timeout = time.Duration(stalledTimeoutMinutes) * time.Minute
	}

	store := plan.NewFileStore(root)
	executing, err := store.List(plan.StatusExecuting)
	if err != nil {
		return fmt.Errorf("listing plans: %w", err)
	}

	stalled := exec.FindStalled(executing, timeout)
	if len(stalled) == 0 {
		fmt.Printf("No stalled executions (timeout: %s).\n", timeout)
		return nil
	}

	for _, p := range stalled {
		fmt.Printf("%s  %s (executing since %s)\n", p.ID, p.Title, p.ExecutionStartedAt)
		if !stalledMark {
			continue
		}
		if _, err := plan.MarkStalled(store, p.ID); err != nil {
			return fmt.Errorf("marking plan %s stalled: %w", p.ID, err)
		}
		fmt.Printf("%s  marked stalled\n", p.ID)
	}

	if !stalledMark {
		fmt.Println("\nRun again with --mark to transition these plans to 'stalled'.")
	}
	return nil
}
