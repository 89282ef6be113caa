package models

import "time"

// SpecialistType identifies a capped-capacity capability provider.
type SpecialistType string

const (
	SpecialistData        SpecialistType = "data-specialist"
	SpecialistWorkflow    SpecialistType = "workflow-specialist"
	SpecialistUI          SpecialistType = "ui-specialist"
	SpecialistScript      SpecialistType = "script-specialist"
	SpecialistSecurity    SpecialistType = "security-specialist"
	SpecialistIntegration SpecialistType = "integration-specialist"
	SpecialistReporting   SpecialistType = "reporting-specialist"
	SpecialistQA          SpecialistType = "qa-specialist"
)

// SupervisorAgent is the reserved agent id that receives escalations.
const SupervisorAgent = "queen"

// Valid returns true if the specialist type is a known value.
func (t SpecialistType) Valid() bool {
	switch t {
	case SpecialistData, SpecialistWorkflow, SpecialistUI, SpecialistScript,
		SpecialistSecurity, SpecialistIntegration, SpecialistReporting, SpecialistQA:
		return true
	default:
		return false
	}
}

// Capacity tracks how many concurrent tasks a specialist type can absorb.
type Capacity struct {
	// MaxConcurrent is the hard ceiling on simultaneous allocations.
	MaxConcurrent int `json:"max_concurrent"`
	// CurrentLoad is the number of active allocations. Mutated only
	// through pool Allocate/Release.
	CurrentLoad int `json:"current_load"`
}

// Utilization returns CurrentLoad/MaxConcurrent clamped to [0,1].
func (c Capacity) Utilization() float64 {
	if c.MaxConcurrent <= 0 {
		return 1.0
	}
	u := float64(c.CurrentLoad) / float64(c.MaxConcurrent)
	if u < 0 {
		return 0
	}
	if u > 1 {
		return 1
	}
	return u
}

// Performance holds the rolling performance metrics for a specialist type.
type Performance struct {
	// SuccessRate is the fraction of completed tasks that succeeded (0-1).
	SuccessRate float64 `json:"success_rate"`
	// TasksCompleted is the lifetime completed-task count.
	TasksCompleted int `json:"tasks_completed"`
	// AvgExecutionTime is the mean task duration.
	AvgExecutionTime time.Duration `json:"avg_execution_time"`
	// ComplexityRating rates the hardest work handled well (1-5).
	ComplexityRating float64 `json:"complexity_rating"`
	// LastActivity is when the specialist last completed work.
	LastActivity time.Time `json:"last_activity"`
}

// Specialist describes one specialist type registered in the pool.
type Specialist struct {
	// Type is the specialist identity.
	Type SpecialistType `json:"type"`
	// Capacity is the concurrent-load bookkeeping.
	Capacity Capacity `json:"capacity"`
	// Performance is the rolling metric set used for scoring.
	Performance Performance `json:"performance"`
}

// TeamMember is one allocated specialist instance inside a team.
// Instances are process-owned by the assembler for the call's duration.
type TeamMember struct {
	// InstanceID is the unique id for this allocation.
	InstanceID string `json:"instance_id"`
	// Type is the specialist type backing this member.
	Type SpecialistType `json:"type"`
	// Skill is the skill this member was selected for.
	Skill SkillType `json:"skill"`
	// Score is the weighted selection score at allocation time.
	Score float64 `json:"score"`
	// Fallback is true when the member was chosen from the fallback list
	// or reused from the existing team rather than by exact skill match.
	Fallback bool `json:"fallback"`
}

// Team maps skill types to the specialist instances staffed for them.
type Team map[SkillType]*TeamMember

// TeamConfiguration controls team assembly.
type TeamConfiguration struct {
	// MaxTeamSize caps the number of members; primary skills are staffed
	// even past the cap.
	MaxTeamSize int `json:"max_team_size"`
	// PerformanceThreshold filters candidates below this weighted score.
	PerformanceThreshold float64 `json:"performance_threshold"`
	// SkillOverlap enables staffing optional skills.
	SkillOverlap bool `json:"skill_overlap"`
	// FallbackEnabled allows fallback specialist types for unstaffable
	// primary skills.
	FallbackEnabled bool `json:"fallback_enabled"`
}

// AssemblyResult is the structured outcome of a team assembly run.
// Allocation failures surface here as warnings, never as errors.
type AssemblyResult struct {
	// Team is the assembled skill-to-member mapping.
	Team Team `json:"team"`
	// Warnings holds soft failures (unstaffed skills, load imbalance).
	Warnings []string `json:"warnings,omitempty"`
	// FallbackNotes records each fallback or reuse decision.
	FallbackNotes []string `json:"fallback_notes,omitempty"`
	// Utilization is the post-assembly per-skill load ratio.
	Utilization map[SkillType]float64 `json:"utilization,omitempty"`
}
