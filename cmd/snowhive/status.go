package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/snowhive/snowhive/internal/config"
	"github.com/snowhive/snowhive/internal/coord"
	"github.com/snowhive/snowhive/internal/tui"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session coordination state",
	Long: `Display the coordination state of a session.

Shows:
  - Agents and their lifecycle state
  - Pending message count
  - Recent deployments

Use --watch for a live dashboard that refreshes until quit.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "Open the live dashboard")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	root, err := projectRoot()
	if err != nil {
		return err
	}

	dbPath := cfg.Store.Path
	if dbPath == "" {
		dbPath = coord.ProjectDBPath(root)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No coordination state. Run 'snowhive team <objective>' to start.")
		return nil
	}

	db, err := coord.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if statusWatch {
		return tui.Run(flagSession, snapshotFunc(db, flagSession), cfg.TUI.RefreshRate)
	}

	snap := snapshotFunc(db, flagSession)()
	if snap.Err != nil {
		return snap.Err
	}
	printStatus(snap)
	return nil
}

// snapshotFunc builds the polling closure shared by the one-shot view
// and the live dashboard.
func snapshotFunc(db *coord.DB, session string) tui.SnapshotFunc {
	return func() tui.Snapshot {
		agents, err := db.ListAgentStatuses(session)
		if err != nil {
			return tui.Snapshot{Err: err}
		}
		pending, err := db.PendingMessageCount(session)
		if err != nil {
			return tui.Snapshot{Err: err}
		}
		deployments, err := db.ListDeployments(session, 5)
		if err != nil {
			return tui.Snapshot{Err: err}
		}
		return tui.Snapshot{Agents: agents, Pending: pending, Deployments: deployments}
	}
}

func printStatus(snap tui.Snapshot) {
	bold := color.New(color.Bold)

	bold.Printf("Session: %s\n", flagSession)
	if len(snap.Agents) == 0 {
		fmt.Println("  Agents: none")
	} else {
		fmt.Printf("  Agents: %d\n", len(snap.Agents))
		for _, a := range snap.Agents {
			line := fmt.Sprintf("    %-12s %-9s %3d%%", a.Agent, a.State, a.Progress)
			if a.CurrentTool != "" {
				line += "  " + a.CurrentTool
			}
			fmt.Println(line)
			if a.ErrorState != "" {
				color.Red("                 %s", a.ErrorState)
			}
		}
	}
	fmt.Printf("  Pending messages: %d\n", snap.Pending)

	if len(snap.Deployments) > 0 {
		fmt.Println()
		bold.Println("Recent deployments:")
		for _, d := range snap.Deployments {
			mark := color.GreenString("ok")
			if !d.Success {
				mark = color.RedString("failed")
			}
			fmt.Printf("  %s %s %q by %s (%s)\n",
				mark, d.ArtifactType, d.ArtifactName, d.Agent,
				d.DeployedAt.Format(time.RFC3339))
		}
	}
}
