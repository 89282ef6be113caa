package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Team.MaxTeamSize != 5 {
		t.Errorf("max team size = %d, want 5", cfg.Team.MaxTeamSize)
	}
	if cfg.Team.PerformanceThreshold != 0.5 {
		t.Errorf("threshold = %v, want 0.5", cfg.Team.PerformanceThreshold)
	}
	if !cfg.Team.SkillOverlap || !cfg.Team.FallbackEnabled {
		t.Error("overlap and fallback should default on")
	}
	if cfg.Analysis.MaxRequirements != 200 {
		t.Errorf("max requirements = %d, want 200", cfg.Analysis.MaxRequirements)
	}
	if cfg.TUI.RefreshRate != time.Second {
		t.Errorf("refresh rate = %v, want 1s", cfg.TUI.RefreshRate)
	}
}

func TestLoadFromPath(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
team:
  max_team_size: 8
  performance_threshold: 0.7
store:
  performance_retention: 24h
analysis:
  max_requirements: 50
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Team.MaxTeamSize != 8 {
		t.Errorf("max team size = %d, want 8", cfg.Team.MaxTeamSize)
	}
	if cfg.Team.PerformanceThreshold != 0.7 {
		t.Errorf("threshold = %v, want 0.7", cfg.Team.PerformanceThreshold)
	}
	if cfg.Store.PerformanceRetention != 24*time.Hour {
		t.Errorf("retention = %v, want 24h", cfg.Store.PerformanceRetention)
	}
	if cfg.Analysis.MaxRequirements != 50 {
		t.Errorf("max requirements = %d, want 50", cfg.Analysis.MaxRequirements)
	}

	// Unset keys fall back to defaults.
	if !cfg.Team.SkillOverlap {
		t.Error("skill_overlap should keep its default")
	}
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("missing file should error")
	}
}
