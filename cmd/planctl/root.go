package main

import (
	"os"
	"path/filepath"

	"github.com/planward/planward/internal/plan"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var projectFlag string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "planctl",
	Short: "Inspect and maintain a planward plan store",
	Long: `planctl works directly against the .pi/plans directory of a project.

Core Commands:
  list      List plans, optionally filtered by status
  show      Print a plan document
  check     Classify a shell command against the safety rules
  stalled   Find (and optionally mark) stalled executions
  history   Show past executions from the history index
  version   Show version information

The plan store is plain files: everything planctl prints, the planward
MCP server reads and writes through the same code.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "C", "",
		"Project root (default: walk up from the working directory)")
}

// projectRoot resolves the project directory: the --project flag when
// given, otherwise the nearest ancestor with a .pi/plans directory,
// otherwise the working directory.
func projectRoot() string {
	if projectFlag != "" {
		return projectFlag
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}

	current := cwd
	for {
		if info, err := os.Stat(plan.PlansPath(current)); err == nil && info.IsDir() {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return cwd
		}
		current = parent
	}
}
