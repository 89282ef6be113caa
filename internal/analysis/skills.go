package analysis

import "github.com/snowhive/snowhive/pkg/models"

// skillForType maps each requirement type to the skill it demands.
var skillForType = map[models.RequirementType]models.SkillType{
	models.RequirementTable:           models.SkillDataModeling,
	models.RequirementField:           models.SkillDataModeling,
	models.RequirementRelationship:    models.SkillDataModeling,
	models.RequirementImportSet:       models.SkillDataModeling,
	models.RequirementTransformMap:    models.SkillDataModeling,
	models.RequirementFlow:            models.SkillWorkflowDesign,
	models.RequirementSubflow:         models.SkillWorkflowDesign,
	models.RequirementApprovalRule:    models.SkillWorkflowDesign,
	models.RequirementEscalationRule:  models.SkillWorkflowDesign,
	models.RequirementSLADefinition:   models.SkillWorkflowDesign,
	models.RequirementScheduledJob:    models.SkillWorkflowDesign,
	models.RequirementWidget:          models.SkillUIDevelopment,
	models.RequirementPage:            models.SkillUIDevelopment,
	models.RequirementPortal:          models.SkillUIDevelopment,
	models.RequirementPortalTheme:     models.SkillUIDevelopment,
	models.RequirementCatalogItem:     models.SkillUIDevelopment,
	models.RequirementCatalogCategory: models.SkillUIDevelopment,
	models.RequirementRecordProducer:  models.SkillUIDevelopment,
	models.RequirementBusinessRule:    models.SkillScripting,
	models.RequirementClientScript:    models.SkillScripting,
	models.RequirementScriptInclude:   models.SkillScripting,
	models.RequirementUIPolicy:        models.SkillScripting,
	models.RequirementUIAction:        models.SkillScripting,
	models.RequirementACL:             models.SkillSecurity,
	models.RequirementUserRole:        models.SkillSecurity,
	models.RequirementGroup:           models.SkillSecurity,
	models.RequirementAuditRule:       models.SkillSecurity,
	models.RequirementDataPolicy:      models.SkillSecurity,
	models.RequirementSecurityPolicy:  models.SkillSecurity,
	models.RequirementIntegration:     models.SkillIntegration,
	models.RequirementRESTAPI:         models.SkillIntegration,
	models.RequirementAPIEndpoint:     models.SkillIntegration,
	models.RequirementWebhook:         models.SkillIntegration,
	models.RequirementReport:          models.SkillReporting,
	models.RequirementDashboard:       models.SkillReporting,
	models.RequirementKPI:             models.SkillReporting,
	models.RequirementNotification:    models.SkillCommunication,
	models.RequirementEmailTemplate:   models.SkillCommunication,
	models.RequirementSurvey:          models.SkillCommunication,
	models.RequirementKnowledgeBase:   models.SkillCommunication,
	models.RequirementTestCase:        models.SkillTesting,
	models.RequirementDocumentation:   models.SkillDocumentation,
}

// importanceForPriority maps a requirement priority to skill importance.
func importanceForPriority(p models.Priority) models.SkillImportance {
	switch p {
	case models.PriorityCritical, models.PriorityHigh:
		return models.ImportancePrimary
	case models.PriorityMedium:
		return models.ImportanceSecondary
	default:
		return models.ImportanceOptional
	}
}

// DeriveSkillSets computes the skill demands for an analysis result.
// Requirements sharing a skill collapse into one SkillSet carrying the
// highest importance and complexity seen and the summed time estimate.
// The view is ephemeral and recomputed per run.
func DeriveSkillSets(result *models.AnalysisResult) []models.SkillSet {
	rank := map[models.SkillImportance]int{
		models.ImportancePrimary:   3,
		models.ImportanceSecondary: 2,
		models.ImportanceOptional:  1,
	}

	byType := make(map[models.SkillType]*models.SkillSet)
	var order []models.SkillType

	for _, req := range result.Requirements {
		skill, ok := skillForType[req.Type]
		if !ok {
			continue
		}

		importance := importanceForPriority(req.Priority)
		hours := req.EstimatedEffort.Weight() * 8

		existing, seen := byType[skill]
		if !seen {
			byType[skill] = &models.SkillSet{
				Type:          skill,
				Importance:    importance,
				Complexity:    req.EstimatedEffort,
				EstimatedTime: hours,
			}
			order = append(order, skill)
			continue
		}

		if rank[importance] > rank[existing.Importance] {
			existing.Importance = importance
		}
		if req.EstimatedEffort.Weight() > existing.Complexity.Weight() {
			existing.Complexity = req.EstimatedEffort
		}
		existing.EstimatedTime += hours
	}

	skills := make([]models.SkillSet, 0, len(order))
	for _, t := range order {
		skills = append(skills, *byType[t])
	}
	return skills
}
