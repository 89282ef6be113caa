package analysis

import (
	"strings"
	"testing"

	"github.com/snowhive/snowhive/pkg/models"
)

func typesOf(result *models.AnalysisResult) map[models.RequirementType]bool {
	types := make(map[models.RequirementType]bool)
	for _, req := range result.Requirements {
		types[req.Type] = true
	}
	return types
}

func TestAnalyze_ApprovalWorkflowObjective(t *testing.T) {
	a := NewAnalyzer(nil)
	result := a.Analyze("Create approval workflow for catalog requests")

	types := typesOf(result)

	// Pass 1 must find the flow and the approval rule directly.
	for _, want := range []models.RequirementType{models.RequirementFlow, models.RequirementApprovalRule} {
		if !types[want] {
			t.Errorf("pass 1 should produce %s", want)
		}
	}

	// Pass 2 must expand the flow's supporting artifacts.
	derived := []models.RequirementType{
		models.RequirementNotification,
		models.RequirementEmailTemplate,
		models.RequirementEscalationRule,
		models.RequirementSLADefinition,
	}
	for _, want := range derived {
		if !types[want] {
			t.Errorf("pass 2 should derive %s from flow", want)
		}
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := NewAnalyzer(nil)
	objective := "Build a secure portal with integration and reports"

	first := a.Analyze(objective)
	second := a.Analyze(objective)

	if len(first.Requirements) != len(second.Requirements) {
		t.Fatalf("requirement counts differ: %d vs %d", len(first.Requirements), len(second.Requirements))
	}
	for i := range first.Requirements {
		if first.Requirements[i].DedupKey() != second.Requirements[i].DedupKey() {
			t.Errorf("requirement %d differs: %q vs %q",
				i, first.Requirements[i].DedupKey(), second.Requirements[i].DedupKey())
		}
		if first.Requirements[i].ID != second.Requirements[i].ID {
			t.Errorf("requirement %d id differs: %q vs %q",
				i, first.Requirements[i].ID, second.Requirements[i].ID)
		}
	}
}

func TestAnalyze_NoDuplicateDedupKeys(t *testing.T) {
	a := NewAnalyzer(nil)
	result := a.Analyze("Create approval workflow with table, reports, dashboard, integration, portal widget and notifications for security compliance")

	seen := make(map[string]bool)
	for _, req := range result.Requirements {
		key := req.DedupKey()
		if seen[key] {
			t.Errorf("duplicate dedup key %q", key)
		}
		seen[key] = true
	}
}

func TestAnalyze_DependencyClosure(t *testing.T) {
	a := NewAnalyzer(nil)
	result := a.Analyze("Create catalog item with approval workflow and reporting dashboard")

	ids := make(map[string]bool)
	for _, req := range result.Requirements {
		ids[req.ID] = true
	}

	for _, req := range result.Requirements {
		for _, dep := range req.Dependencies {
			if !ids[dep] {
				t.Errorf("requirement %s depends on %s which is not in the result", req.ID, dep)
			}
		}
	}
}

func TestAnalyze_EmptyObjective(t *testing.T) {
	a := NewAnalyzer(nil)

	for _, objective := range []string{"", "   ", "xyzzy plugh"} {
		result := a.Analyze(objective)
		if result == nil {
			t.Fatalf("Analyze(%q) returned nil", objective)
		}
		if result.TotalRequirements != 0 {
			t.Errorf("Analyze(%q) produced %d requirements, want 0", objective, result.TotalRequirements)
		}
		if result.Confidence != models.ConfidenceLow {
			t.Errorf("Analyze(%q) confidence = %s, want low", objective, result.Confidence)
		}
	}
}

func TestAnalyze_MatchConfidenceCapped(t *testing.T) {
	a := NewAnalyzer(nil)

	// Hit many keyword groups at once; confidence must cap at 0.9.
	result := a.Analyze("workflow approval widget portal table form business rule script include client script notification report dashboard integration rest api webhook catalog")
	if result.MatchConfidence > 0.9 {
		t.Errorf("match confidence %v exceeds cap 0.9", result.MatchConfidence)
	}

	sparse := a.Analyze("add a report")
	if sparse.MatchConfidence != 0.4 {
		t.Errorf("single match confidence = %v, want 0.4", sparse.MatchConfidence)
	}
}

func TestAnalyze_ContextImplication(t *testing.T) {
	a := NewAnalyzer(nil)
	result := a.Analyze("Store confidential employee records")

	types := typesOf(result)
	for _, want := range []models.RequirementType{
		models.RequirementACL,
		models.RequirementSecurityPolicy,
		models.RequirementUserRole,
	} {
		if !types[want] {
			t.Errorf("security context should imply %s", want)
		}
	}

	// Context-injected requirements carry the group tag.
	found := false
	for _, req := range result.Requirements {
		if req.Type == models.RequirementSecurityPolicy && req.Category == "context:security" {
			found = true
		}
	}
	if !found {
		t.Error("security policy should be tagged with its context group")
	}
}

func TestAnalyze_PassFailureIsContained(t *testing.T) {
	a := NewAnalyzer(nil)
	a.ContextHooks = append(a.ContextHooks, func(objective string, matched []string, add func(models.RequirementType, string) bool) {
		panic("hook exploded")
	})

	result := a.Analyze("Create approval workflow for catalog requests")

	if result.TotalRequirements == 0 {
		t.Error("other passes should still contribute requirements")
	}

	warned := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "context-implication pass failed") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("expected a pass-failure warning, got %v", result.Warnings)
	}
}

func TestAnalyze_RequirementCap(t *testing.T) {
	a := NewAnalyzer(nil)
	a.SetMaxRequirements(3)

	result := a.Analyze("Create approval workflow for catalog requests with reports and dashboards")

	if result.TotalRequirements > 3 {
		t.Errorf("cap 3 exceeded: %d requirements", result.TotalRequirements)
	}
	if len(result.Warnings) == 0 {
		t.Error("hitting the cap should produce a warning")
	}
}

func TestAnalyze_GapFill(t *testing.T) {
	a := NewAnalyzer(nil)
	result := a.Analyze("Create a table to store asset records")

	types := typesOf(result)
	if !types[models.RequirementACL] {
		t.Error("gap fill should add access control for tables")
	}
}

func TestAnalyze_CriticalPathLimited(t *testing.T) {
	a := NewAnalyzer(nil)
	result := a.Analyze("Create approval workflow with table, widget, integration, rest api, catalog and roles for security")

	if len(result.CriticalPath) > 5 {
		t.Errorf("critical path has %d entries, want at most 5", len(result.CriticalPath))
	}
	if len(result.CriticalPath) == 0 {
		t.Error("critical path should not be empty for a broad objective")
	}
}
