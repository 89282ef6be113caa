package models

// SkillType is the coarse capability a requirement demands from a
// specialist. Skill types group related requirement types for matching.
type SkillType string

const (
	SkillDataModeling   SkillType = "data_modeling"
	SkillWorkflowDesign SkillType = "workflow_design"
	SkillUIDevelopment  SkillType = "ui_development"
	SkillScripting      SkillType = "scripting"
	SkillSecurity       SkillType = "security"
	SkillIntegration    SkillType = "integration"
	SkillReporting      SkillType = "reporting"
	SkillCommunication  SkillType = "communication"
	SkillTesting        SkillType = "testing"
	SkillDocumentation  SkillType = "documentation"
)

// AllSkillTypes lists every valid skill type.
var AllSkillTypes = []SkillType{
	SkillDataModeling, SkillWorkflowDesign, SkillUIDevelopment,
	SkillScripting, SkillSecurity, SkillIntegration, SkillReporting,
	SkillCommunication, SkillTesting, SkillDocumentation,
}

// Valid returns true if the skill type is a known value.
func (s SkillType) Valid() bool {
	for _, known := range AllSkillTypes {
		if s == known {
			return true
		}
	}
	return false
}

// SkillImportance ranks how essential a skill is for the objective.
type SkillImportance string

const (
	// ImportancePrimary skills are always staffed, with fallbacks if needed.
	ImportancePrimary SkillImportance = "primary"
	// ImportanceSecondary skills are staffed while team capacity remains.
	ImportanceSecondary SkillImportance = "secondary"
	// ImportanceOptional skills are staffed only when overlap is allowed.
	ImportanceOptional SkillImportance = "optional"
)

// SkillSet is a requirement expressed as a matchable capability demand.
// Skill sets are ephemeral: they are recomputed from the analysis result
// on every assembly run and never persisted.
type SkillSet struct {
	// Type is the capability demanded.
	Type SkillType `json:"type"`
	// Importance ranks the demand (primary, secondary, optional).
	Importance SkillImportance `json:"importance"`
	// Complexity is the effort bucket inherited from the requirement.
	Complexity Effort `json:"complexity"`
	// EstimatedTime is the expected working time in hours.
	EstimatedTime int `json:"estimated_time"`
}
