// Package models contains the shared data types for snowhive:
// requirements, skills, specialists, teams, and coordination records.
package models

import "time"

// RequirementType identifies the kind of platform artifact a requirement
// describes. The set is closed; the analyzer only ever emits these values.
type RequirementType string

const (
	RequirementFlow            RequirementType = "flow"
	RequirementSubflow         RequirementType = "subflow"
	RequirementWidget          RequirementType = "widget"
	RequirementPage            RequirementType = "page"
	RequirementPortal          RequirementType = "portal"
	RequirementTable           RequirementType = "table"
	RequirementField           RequirementType = "field"
	RequirementRelationship    RequirementType = "relationship"
	RequirementBusinessRule    RequirementType = "business_rule"
	RequirementClientScript    RequirementType = "client_script"
	RequirementScriptInclude   RequirementType = "script_include"
	RequirementUIPolicy        RequirementType = "ui_policy"
	RequirementUIAction        RequirementType = "ui_action"
	RequirementACL             RequirementType = "acl"
	RequirementUserRole        RequirementType = "user_role"
	RequirementGroup           RequirementType = "group"
	RequirementNotification    RequirementType = "notification"
	RequirementEmailTemplate   RequirementType = "email_template"
	RequirementReport          RequirementType = "report"
	RequirementDashboard       RequirementType = "dashboard"
	RequirementKPI             RequirementType = "kpi"
	RequirementScheduledJob    RequirementType = "scheduled_job"
	RequirementImportSet       RequirementType = "import_set"
	RequirementTransformMap    RequirementType = "transform_map"
	RequirementIntegration     RequirementType = "integration"
	RequirementRESTAPI         RequirementType = "rest_api"
	RequirementAPIEndpoint     RequirementType = "api_endpoint"
	RequirementWebhook         RequirementType = "webhook"
	RequirementApprovalRule    RequirementType = "approval_rule"
	RequirementEscalationRule  RequirementType = "escalation_rule"
	RequirementSLADefinition   RequirementType = "sla_definition"
	RequirementCatalogItem     RequirementType = "catalog_item"
	RequirementCatalogCategory RequirementType = "catalog_category"
	RequirementRecordProducer  RequirementType = "record_producer"
	RequirementKnowledgeBase   RequirementType = "knowledge_base"
	RequirementSurvey          RequirementType = "survey"
	RequirementPortalTheme     RequirementType = "portal_theme"
	RequirementAuditRule       RequirementType = "audit_rule"
	RequirementDataPolicy      RequirementType = "data_policy"
	RequirementSecurityPolicy  RequirementType = "security_policy"
	RequirementTestCase        RequirementType = "test_case"
	RequirementDocumentation   RequirementType = "documentation"
)

// AllRequirementTypes lists every valid requirement type.
// Used for startup validation of the static tables keyed by type.
var AllRequirementTypes = []RequirementType{
	RequirementFlow, RequirementSubflow, RequirementWidget, RequirementPage,
	RequirementPortal, RequirementTable, RequirementField, RequirementRelationship,
	RequirementBusinessRule, RequirementClientScript, RequirementScriptInclude,
	RequirementUIPolicy, RequirementUIAction, RequirementACL, RequirementUserRole,
	RequirementGroup, RequirementNotification, RequirementEmailTemplate,
	RequirementReport, RequirementDashboard, RequirementKPI, RequirementScheduledJob,
	RequirementImportSet, RequirementTransformMap, RequirementIntegration,
	RequirementRESTAPI, RequirementAPIEndpoint, RequirementWebhook,
	RequirementApprovalRule, RequirementEscalationRule, RequirementSLADefinition,
	RequirementCatalogItem, RequirementCatalogCategory, RequirementRecordProducer,
	RequirementKnowledgeBase, RequirementSurvey, RequirementPortalTheme,
	RequirementAuditRule, RequirementDataPolicy, RequirementSecurityPolicy,
	RequirementTestCase, RequirementDocumentation,
}

// Valid returns true if the type is a known value.
func (t RequirementType) Valid() bool {
	for _, known := range AllRequirementTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Priority represents how important a requirement is to the objective.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Effort is a coarse implementation-effort estimate.
type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

// Days returns the rough calendar-day estimate used for duration bucketing.
func (e Effort) Days() int {
	switch e {
	case EffortLow:
		return 1
	case EffortHigh:
		return 7
	default:
		return 3
	}
}

// Weight returns the numeric weight used for complexity bucketing.
func (e Effort) Weight() int {
	switch e {
	case EffortLow:
		return 1
	case EffortHigh:
		return 3
	default:
		return 2
	}
}

// RiskLevel is the implementation risk of a single requirement.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Requirement is a typed unit of implementation work inferred from an
// objective. Requirements are immutable after creation except for
// dependency back-references added during pass 2.
type Requirement struct {
	// ID is the unique identifier for this requirement within a run.
	ID string `json:"id"`
	// Type is the platform artifact kind.
	Type RequirementType `json:"type"`
	// Name is the short display name. (Type, Name) is the dedup key.
	Name string `json:"name"`
	// Description explains what needs to be built and why.
	Description string `json:"description"`
	// Priority ranks the requirement for critical-path reporting.
	Priority Priority `json:"priority"`
	// Dependencies lists IDs of requirements this one depends on.
	Dependencies []string `json:"dependencies,omitempty"`
	// EstimatedEffort is the coarse effort bucket.
	EstimatedEffort Effort `json:"estimated_effort"`
	// Automatable indicates the artifact can be generated without a human.
	Automatable bool `json:"automatable"`
	// Covered indicates built-in automation already exists for this type.
	Covered bool `json:"covered"`
	// Category records which analysis pass or context group produced it.
	Category string `json:"category"`
	// RiskLevel is the implementation risk bucket.
	RiskLevel RiskLevel `json:"risk_level"`
	// CreatedAt is when the analyzer created the requirement.
	CreatedAt time.Time `json:"created_at"`
}

// DedupKey returns the identity used to deduplicate requirements.
func (r *Requirement) DedupKey() string {
	return string(r.Type) + "|" + r.Name
}

// ConfidenceLevel buckets analysis confidence from the completeness score.
type ConfidenceLevel string

const (
	ConfidenceLow      ConfidenceLevel = "low"
	ConfidenceMedium   ConfidenceLevel = "medium"
	ConfidenceHigh     ConfidenceLevel = "high"
	ConfidenceVeryHigh ConfidenceLevel = "very_high"
)

// ComplexityBucket classifies the overall scope of an analysis result.
type ComplexityBucket string

const (
	ComplexityLow        ComplexityBucket = "low"
	ComplexityMedium     ComplexityBucket = "medium"
	ComplexityHigh       ComplexityBucket = "high"
	ComplexityEnterprise ComplexityBucket = "enterprise"
)

// AnalysisResult is the output of a full requirements analysis run.
type AnalysisResult struct {
	// Objective is the original free-text objective.
	Objective string `json:"objective"`
	// Requirements is the merged, deduplicated requirement set.
	Requirements []Requirement `json:"requirements"`
	// TotalRequirements is len(Requirements).
	TotalRequirements int `json:"total_requirements"`
	// CoveredCount is the number of requirements with built-in automation.
	CoveredCount int `json:"covered_count"`
	// GapCount is the number of requirements without built-in automation.
	GapCount int `json:"gap_count"`
	// Completeness is the 0-100 completeness score.
	Completeness int `json:"completeness"`
	// Confidence is the bucketed confidence derived from Completeness.
	Confidence ConfidenceLevel `json:"confidence"`
	// MatchConfidence is the pass-1 pattern-match confidence (0.0-1.0).
	MatchConfidence float64 `json:"match_confidence"`
	// Complexity classifies the weighted effort total.
	Complexity ComplexityBucket `json:"complexity"`
	// Risk classifies the high-risk requirement ratio.
	Risk RiskLevel `json:"risk"`
	// CriticalPath lists the names of the top-priority requirements.
	CriticalPath []string `json:"critical_path"`
	// EstimatedDuration is a human-readable duration bucket.
	EstimatedDuration string `json:"estimated_duration"`
	// Warnings holds non-fatal notes from individual passes.
	Warnings []string `json:"warnings,omitempty"`
}
