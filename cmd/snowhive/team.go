package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/snowhive/snowhive/internal/analysis"
	"github.com/snowhive/snowhive/internal/config"
	"github.com/snowhive/snowhive/internal/logging"
	"github.com/snowhive/snowhive/internal/team"
	"github.com/snowhive/snowhive/pkg/models"
)

var teamKeep bool

var teamCmd = &cobra.Command{
	Use:   "team <objective>",
	Short: "Plan a specialist team for an objective",
	Long: `Analyze an objective, derive its skill demands, and assemble a
scored specialist team against the pool.

By default this is a dry run: allocations are released before the
command exits. Use --keep to hold the allocations (useful only inside a
long-running session process).`,
	Args: cobra.ExactArgs(1),
	RunE: runTeam,
}

func init() {
	teamCmd.Flags().BoolVar(&teamKeep, "keep", false, "Hold pool allocations instead of releasing them")
}

func runTeam(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	root, err := projectRoot()
	if err != nil {
		return err
	}
	logger := logging.NewDebugLoggerForProject(root)
	defer logger.Close()

	pool := team.NewSpecialistPool(logger)
	if cfg.Team.RosterFile != "" {
		roster, err := config.LoadRoster(cfg.Team.RosterFile)
		if err != nil {
			return err
		}
		for _, s := range roster {
			pool.Register(s)
		}
	}

	analyzer := analysis.NewAnalyzer(logger)
	if cfg.Analysis.MaxRequirements > 0 {
		analyzer.SetMaxRequirements(cfg.Analysis.MaxRequirements)
	}
	result := analyzer.Analyze(args[0])
	skills := analysis.DeriveSkillSets(result)

	assembler := team.NewAssembler(pool, logger)
	assembly := assembler.AssembleTeam(skills, models.TeamConfiguration{
		MaxTeamSize:          cfg.Team.MaxTeamSize,
		PerformanceThreshold: cfg.Team.PerformanceThreshold,
		SkillOverlap:         cfg.Team.SkillOverlap,
		FallbackEnabled:      cfg.Team.FallbackEnabled,
	})
	if !teamKeep {
		defer assembler.ReleaseTeam(assembly.Team)
	}

	printTeam(skills, assembly)
	return nil
}

func printTeam(skills []models.SkillSet, assembly *models.AssemblyResult) {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	bold.Printf("Team (%d skills requested):\n", len(skills))
	for _, skill := range skills {
		member, ok := assembly.Team[skill.Type]
		if !ok {
			color.Red("  %-18s unstaffed", skill.Type)
			continue
		}
		line := fmt.Sprintf("  %-18s %s [%s] score %.2f", skill.Type, member.Type, member.InstanceID, member.Score)
		if member.Fallback {
			color.Yellow("%s (fallback)", line)
		} else {
			fmt.Println(line)
		}
		if u, ok := assembly.Utilization[skill.Type]; ok {
			dim.Printf("                     utilization %.0f%%\n", u*100)
		}
	}

	for _, note := range assembly.FallbackNotes {
		dim.Printf("  note: %s\n", note)
	}
	for _, w := range assembly.Warnings {
		color.Yellow("  warning: %s", w)
	}
}
