package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/snowhive/snowhive/internal/analysis"
	"github.com/snowhive/snowhive/internal/config"
	"github.com/snowhive/snowhive/internal/logging"
	"github.com/snowhive/snowhive/pkg/models"
)

var analyzeShowSkills bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <objective>",
	Short: "Expand an objective into a requirement graph",
	Long: `Analyze a free-text development objective and expand it into a
typed requirement set across four passes: pattern matching, dependency
expansion, context implication, and gap filling.

Examples:
  snowhive analyze "Create approval workflow for catalog requests"
  snowhive analyze --skills "Build incident dashboard with reports"`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeShowSkills, "skills", false, "Also print the derived skill demands")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	analyzer := analysis.NewAnalyzer(logger)
	if cfg.Analysis.MaxRequirements > 0 {
		analyzer.SetMaxRequirements(cfg.Analysis.MaxRequirements)
	}

	result := analyzer.Analyze(args[0])
	printAnalysis(result)

	if analyzeShowSkills {
		fmt.Println()
		printSkills(analysis.DeriveSkillSets(result))
	}
	return nil
}

func printAnalysis(result *models.AnalysisResult) {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	bold.Printf("Objective: %s\n\n", result.Objective)

	for _, req := range result.Requirements {
		line := fmt.Sprintf("  %s  %-16s %s", req.ID, req.Type, req.Name)
		switch req.Priority {
		case models.PriorityCritical:
			color.Red("%s", line)
		case models.PriorityHigh:
			color.Yellow("%s", line)
		default:
			fmt.Println(line)
		}
		if len(req.Dependencies) > 0 {
			dim.Printf("           depends on %s\n", strings.Join(req.Dependencies, ", "))
		}
	}

	fmt.Println()
	bold.Println("Summary:")
	fmt.Printf("  Requirements: %d (%d covered, %d gaps)\n",
		result.TotalRequirements, result.CoveredCount, result.GapCount)
	fmt.Printf("  Completeness: %d%% (%s confidence)\n", result.Completeness, result.Confidence)
	fmt.Printf("  Match confidence: %.0f%%\n", result.MatchConfidence*100)
	fmt.Printf("  Complexity: %s, risk %s\n", result.Complexity, result.Risk)
	fmt.Printf("  Estimated duration: %s\n", result.EstimatedDuration)
	if len(result.CriticalPath) > 0 {
		fmt.Printf("  Critical path: %s\n", strings.Join(result.CriticalPath, " -> "))
	}

	for _, w := range result.Warnings {
		color.Yellow("  warning: %s", w)
	}
}

func printSkills(skills []models.SkillSet) {
	color.New(color.Bold).Println("Skill demands:")
	for _, s := range skills {
		fmt.Printf("  %-18s %-9s complexity %-6s ~%dh\n",
			s.Type, s.Importance, s.Complexity, s.EstimatedTime)
	}
}
