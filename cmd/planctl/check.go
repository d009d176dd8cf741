package main

import (
	"fmt"
	"strings"

	"github.com/planward/planward/internal/config"
	"github.com/planward/planward/internal/safety"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <command>...",
	Short: "Classify a shell command against the safety rules",
	Long: `Check runs a command line through the same classification pipeline
the planward server applies: the dangerous floor first, then registered
patterns, then the built-in read-only list, then default deny.

The exit code is 0 when the command is allowed and 1 when it is
blocked, so check works in scripts and hooks:
  planctl check rm -rf build && run-it.sh`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	command := strings.Join(args, " ")

	cfg := config.Load(projectRoot())
	classifier := safety.NewClassifier(safety.NewRegistry(), cfg.GuardedTools)

	res := classifier.Check(command)
	if res.Allowed {
		fmt.Printf("allowed: %s\n", res.Reason)
		if res.Access != "" {
			fmt.Printf("access:  %s\n", res.Access)
		}
		return nil
	}

	return fmt.Errorf("blocked: %s", res.Reason)
}
