package analysis

import (
	"fmt"

	"github.com/snowhive/snowhive/pkg/models"
)

// dependencyMatrix is the static pass-2 expansion table: when a
// requirement of the key type is present, the value types are added as
// supporting requirements. The matrix must be acyclic; ValidateMatrix
// enforces that at package init so an edit cannot introduce a loop.
var dependencyMatrix = map[models.RequirementType][]models.RequirementType{
	models.RequirementFlow: {
		models.RequirementNotification,
		models.RequirementEmailTemplate,
		models.RequirementEscalationRule,
		models.RequirementSLADefinition,
	},
	models.RequirementApprovalRule: {
		models.RequirementNotification,
		models.RequirementUserRole,
	},
	models.RequirementWidget: {
		models.RequirementPage,
	},
	models.RequirementPortal: {
		models.RequirementPage,
		models.RequirementPortalTheme,
	},
	models.RequirementTable: {
		models.RequirementField,
		models.RequirementACL,
	},
	models.RequirementCatalogItem: {
		models.RequirementCatalogCategory,
		models.RequirementFlow,
	},
	models.RequirementRecordProducer: {
		models.RequirementTable,
	},
	models.RequirementReport: {
		models.RequirementTable,
	},
	models.RequirementDashboard: {
		models.RequirementReport,
		models.RequirementKPI,
	},
	models.RequirementNotification: {
		models.RequirementEmailTemplate,
	},
	models.RequirementSurvey: {
		models.RequirementNotification,
	},
	models.RequirementIntegration: {
		models.RequirementRESTAPI,
		models.RequirementTransformMap,
	},
	models.RequirementImportSet: {
		models.RequirementTransformMap,
		models.RequirementTable,
	},
	models.RequirementRESTAPI: {
		models.RequirementACL,
	},
	models.RequirementSLADefinition: {
		models.RequirementEscalationRule,
	},
	models.RequirementUserRole: {
		models.RequirementGroup,
	},
	models.RequirementScheduledJob: {
		models.RequirementScriptInclude,
	},
	models.RequirementKnowledgeBase: {
		models.RequirementUserRole,
	},
}

func init() {
	if err := ValidateMatrix(dependencyMatrix); err != nil {
		panic(fmt.Sprintf("analysis: invalid dependency matrix: %v", err))
	}
}

// ValidateMatrix checks that every type in the matrix is a known
// requirement type and that the expansion graph contains no cycles.
func ValidateMatrix(matrix map[models.RequirementType][]models.RequirementType) error {
	for from, deps := range matrix {
		if !from.Valid() {
			return fmt.Errorf("unknown source type %q", from)
		}
		for _, to := range deps {
			if !to.Valid() {
				return fmt.Errorf("unknown target type %q (from %q)", to, from)
			}
		}
	}

	// DFS with three-color marking to detect cycles.
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[models.RequirementType]int, len(matrix))

	var visit func(t models.RequirementType, path []models.RequirementType) error
	visit = func(t models.RequirementType, path []models.RequirementType) error {
		switch color[t] {
		case gray:
			return fmt.Errorf("cycle through %q (path %v)", t, append(path, t))
		case black:
			return nil
		}
		color[t] = gray
		for _, next := range matrix[t] {
			if err := visit(next, append(path, t)); err != nil {
				return err
			}
		}
		color[t] = black
		return nil
	}

	for from := range matrix {
		if err := visit(from, nil); err != nil {
			return err
		}
	}
	return nil
}
