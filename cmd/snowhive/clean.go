package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/snowhive/snowhive/internal/config"
	"github.com/snowhive/snowhive/internal/coord"
)

var cleanPurgePerformance bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clear a session's coordination state",
	Long: `Remove a session's agent status, messages, context entries, and
performance rows. Artifact and deployment rows are retained as the
audit trail.

With --purge-performance, performance rows older than the configured
retention window are also deleted across all sessions.`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanPurgePerformance, "purge-performance", false, "Also purge performance rows past retention")
}

func runClean(cmd *cobra.Command, args []string) error {
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
		fmt.Println("No coordination state to clean.")
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

	if err := db.ClearSession(flagSession); err != nil {
		return err
	}
	fmt.Printf("Cleared session %s (artifacts and deployments retained).\n", flagSession)

	if cleanPurgePerformance && cfg.Store.PerformanceRetention > 0 {
		cutoff := time.Now().Add(-cfg.Store.PerformanceRetention)
		purged, err := db.PurgeOldPerformance(cutoff)
		if err != nil {
			return err
		}
		fmt.Printf("Purged %d performance rows older than %s.\n", purged, cfg.Store.PerformanceRetention)
	}
	return nil
}
