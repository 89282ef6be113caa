package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagSession string
	flagProject string
)

var rootCmd = &cobra.Command{
	Use:   "snowhive",
	Short: "Multi-agent coordination for ServiceNow development",
	Long: `Snowhive turns a development objective into a typed requirement
graph, staffs a team of capacity-constrained specialists for it, and
coordinates their execution through a durable session store.

Core capabilities:
- Expands objectives into requirements across four analysis passes
- Resolves requirement dependencies and estimates scope
- Assembles scored specialist teams with fallback staffing
- Tracks agent status, handoffs, and escalations per session`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagSession, "session", "default", "Coordination session id")
	rootCmd.PersistentFlags().StringVar(&flagProject, "project", "", "Project root (defaults to the current directory)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)
}

// projectRoot resolves the --project flag, falling back to the current
// directory.
func projectRoot() (string, error) {
	if flagProject != "" {
		return flagProject, nil
	}
	return os.Getwd()
}
