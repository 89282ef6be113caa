package team

import (
	"strings"
	"sync"
	"testing"

	"github.com/snowhive/snowhive/pkg/models"
)

func testConfig() models.TeamConfiguration {
	return models.TeamConfiguration{
		MaxTeamSize:          5,
		PerformanceThreshold: 0.5,
		SkillOverlap:         true,
		FallbackEnabled:      true,
	}
}

func primarySkill(t models.SkillType, complexity models.Effort) models.SkillSet {
	return models.SkillSet{Type: t, Importance: models.ImportancePrimary, Complexity: complexity}
}

func TestAssembleTeam_ExactMatch(t *testing.T) {
	pool := NewSpecialistPool(nil)
	a := NewAssembler(pool, nil)

	result := a.AssembleTeam([]models.SkillSet{
		primarySkill(models.SkillDataModeling, models.EffortHigh),
	}, testConfig())

	member, ok := result.Team[models.SkillDataModeling]
	if !ok {
		t.Fatal("data_modeling should be staffed")
	}
	if member.Type != models.SpecialistData {
		t.Errorf("staffed by %s, want data-specialist", member.Type)
	}
	if member.Fallback {
		t.Error("exact match should not be marked fallback")
	}
	if len(result.FallbackNotes) != 0 {
		t.Errorf("unexpected fallback notes: %v", result.FallbackNotes)
	}
}

func TestAssembleTeam_FallbackWhenExactAtCapacity(t *testing.T) {
	pool := NewSpecialistPool(nil)
	a := NewAssembler(pool, nil)

	// Saturate the data specialist.
	spec, _ := pool.Get(models.SpecialistData)
	for i := 0; i < spec.Capacity.MaxConcurrent; i++ {
		if err := pool.Allocate(models.SpecialistData); err != nil {
			t.Fatalf("saturating allocation %d failed: %v", i, err)
		}
	}

	cfg := testConfig()
	cfg.MaxTeamSize = 1

	result := a.AssembleTeam([]models.SkillSet{
		primarySkill(models.SkillDataModeling, models.EffortHigh),
	}, cfg)

	member, ok := result.Team[models.SkillDataModeling]
	if !ok {
		t.Fatal("data_modeling should be staffed via fallback")
	}
	if member.Type != models.SpecialistIntegration {
		t.Errorf("staffed by %s, want integration-specialist", member.Type)
	}
	if !member.Fallback {
		t.Error("fallback selection should be marked")
	}
	if len(result.FallbackNotes) != 1 {
		t.Errorf("got %d fallback notes, want 1: %v", len(result.FallbackNotes), result.FallbackNotes)
	}
}

func TestAssembleTeam_CapacityNeverExceeded(t *testing.T) {
	pool := NewSpecialistPool(nil)
	a := NewAssembler(pool, nil)

	skills := []models.SkillSet{
		primarySkill(models.SkillDataModeling, models.EffortHigh),
		primarySkill(models.SkillWorkflowDesign, models.EffortHigh),
		primarySkill(models.SkillSecurity, models.EffortMedium),
		primarySkill(models.SkillIntegration, models.EffortHigh),
		primarySkill(models.SkillScripting, models.EffortMedium),
		primarySkill(models.SkillReporting, models.EffortLow),
	}

	// Assemble repeatedly without releasing; capacity must hold.
	for i := 0; i < 4; i++ {
		a.AssembleTeam(skills, testConfig())
	}

	for _, s := range pool.Snapshot() {
		if s.Capacity.CurrentLoad > s.Capacity.MaxConcurrent {
			t.Errorf("%s load %d exceeds max %d", s.Type, s.Capacity.CurrentLoad, s.Capacity.MaxConcurrent)
		}
	}
}

func TestAssembleTeam_ConcurrentCallsDoNotOverAllocate(t *testing.T) {
	pool := NewSpecialistPool(nil)
	a := NewAssembler(pool, nil)

	skills := []models.SkillSet{
		primarySkill(models.SkillSecurity, models.EffortHigh),
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.AssembleTeam(skills, testConfig())
		}()
	}
	wg.Wait()

	for _, s := range pool.Snapshot() {
		if s.Capacity.CurrentLoad > s.Capacity.MaxConcurrent {
			t.Errorf("%s load %d exceeds max %d", s.Type, s.Capacity.CurrentLoad, s.Capacity.MaxConcurrent)
		}
	}
}

func TestAssembleTeam_SecondarySkippedAtCap(t *testing.T) {
	pool := NewSpecialistPool(nil)
	a := NewAssembler(pool, nil)

	cfg := testConfig()
	cfg.MaxTeamSize = 1

	result := a.AssembleTeam([]models.SkillSet{
		primarySkill(models.SkillDataModeling, models.EffortMedium),
		{Type: models.SkillReporting, Importance: models.ImportanceSecondary, Complexity: models.EffortLow},
	}, cfg)

	if _, ok := result.Team[models.SkillReporting]; ok {
		t.Error("secondary skill should be skipped at the size cap")
	}

	warned := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "team size cap") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("expected a size-cap warning, got %v", result.Warnings)
	}
}

func TestAssembleTeam_OptionalNeedsOverlap(t *testing.T) {
	pool := NewSpecialistPool(nil)
	a := NewAssembler(pool, nil)

	cfg := testConfig()
	cfg.SkillOverlap = false

	result := a.AssembleTeam([]models.SkillSet{
		primarySkill(models.SkillWorkflowDesign, models.EffortMedium),
		{Type: models.SkillDocumentation, Importance: models.ImportanceOptional, Complexity: models.EffortLow},
	}, cfg)

	if _, ok := result.Team[models.SkillDocumentation]; ok {
		t.Error("optional skill should be skipped when overlap is disabled")
	}
}

func TestAssembleTeam_PrimaryAlwaysAttempted(t *testing.T) {
	pool := NewSpecialistPool(nil)
	a := NewAssembler(pool, nil)

	cfg := testConfig()
	cfg.MaxTeamSize = 1

	result := a.AssembleTeam([]models.SkillSet{
		primarySkill(models.SkillDataModeling, models.EffortMedium),
		primarySkill(models.SkillWorkflowDesign, models.EffortMedium),
	}, cfg)

	if len(result.Team) != 2 {
		t.Errorf("both primary skills should be staffed past the cap, got %d", len(result.Team))
	}
}

func TestReleaseTeam_ReturnsCapacity(t *testing.T) {
	pool := NewSpecialistPool(nil)
	a := NewAssembler(pool, nil)

	result := a.AssembleTeam([]models.SkillSet{
		primarySkill(models.SkillSecurity, models.EffortMedium),
	}, testConfig())

	if pool.Utilization(models.SpecialistSecurity) == 0 {
		t.Fatal("allocation should raise utilization")
	}

	a.ReleaseTeam(result.Team)

	if got := pool.Utilization(models.SpecialistSecurity); got != 0 {
		t.Errorf("utilization after release = %v, want 0", got)
	}
}

func TestRelease_FloorsAtZero(t *testing.T) {
	pool := NewSpecialistPool(nil)

	pool.Release(models.SpecialistData)
	pool.Release(models.SpecialistData)

	s, _ := pool.Get(models.SpecialistData)
	if s.Capacity.CurrentLoad != 0 {
		t.Errorf("load = %d, want 0 after releasing an empty pool", s.Capacity.CurrentLoad)
	}
}

func TestScoring_SuccessRateMonotonic(t *testing.T) {
	base := models.Specialist{
		Type:     models.SpecialistData,
		Capacity: models.Capacity{MaxConcurrent: 3, CurrentLoad: 1},
		Performance: models.Performance{
			SuccessRate:      0.5,
			TasksCompleted:   50,
			ComplexityRating: 3.0,
		},
	}
	better := base
	better.Performance.SuccessRate = 0.9

	skill := primarySkill(models.SkillDataModeling, models.EffortHigh)
	team := make(models.Team)

	low := scoreCandidates([]models.Specialist{base}, skill, team, 0)
	high := scoreCandidates([]models.Specialist{better}, skill, team, 0)

	if len(low) != 1 || len(high) != 1 {
		t.Fatal("both candidates should survive a zero threshold")
	}
	if high[0].Total < low[0].Total {
		t.Errorf("raising success rate lowered score: %v -> %v", low[0].Total, high[0].Total)
	}
}

func TestScoring_MatchFactorTiers(t *testing.T) {
	if got := matchFactor(models.SkillDataModeling, models.SpecialistData); got != 1.0 {
		t.Errorf("exact match factor = %v, want 1.0", got)
	}
	if got := matchFactor(models.SkillDataModeling, models.SpecialistIntegration); got != 0.7 {
		t.Errorf("fallback match factor = %v, want 0.7", got)
	}
	if got := matchFactor(models.SkillDataModeling, models.SpecialistUI); got != 0.3 {
		t.Errorf("unrelated match factor = %v, want 0.3", got)
	}
}

func TestScoring_ThresholdFilters(t *testing.T) {
	pool := NewSpecialistPool(nil)
	skill := primarySkill(models.SkillDataModeling, models.EffortHigh)

	all := scoreCandidates(pool.Snapshot(), skill, make(models.Team), 0)
	strict := scoreCandidates(pool.Snapshot(), skill, make(models.Team), 0.99)

	if len(all) == 0 {
		t.Fatal("zero threshold should keep every candidate")
	}
	if len(strict) != 0 {
		t.Errorf("0.99 threshold should filter all candidates, kept %d", len(strict))
	}
}

func TestAssembleTeam_FallbackAndReuseArePrimaryOnly(t *testing.T) {
	pool := NewSpecialistPool(nil)
	a := NewAssembler(pool, nil)

	// A threshold above the maximum possible total filters every scored
	// candidate, forcing every skill past the scoring stage.
	cfg := testConfig()
	cfg.PerformanceThreshold = 0.99

	result := a.AssembleTeam([]models.SkillSet{
		primarySkill(models.SkillDataModeling, models.EffortMedium),
		{Type: models.SkillIntegration, Importance: models.ImportanceSecondary, Complexity: models.EffortLow},
	}, cfg)

	// The primary skill reaches the fallback list.
	member, ok := result.Team[models.SkillDataModeling]
	if !ok {
		t.Fatal("primary skill should be staffed via the fallback list")
	}
	if !member.Fallback || member.Type != models.SpecialistIntegration {
		t.Errorf("primary fallback member = %+v, want integration-specialist", member)
	}

	// The secondary skill goes unstaffed: its fallback list is not
	// consulted and the existing integration member is not reused, even
	// though it matches exactly.
	if _, ok := result.Team[models.SkillIntegration]; ok {
		t.Error("secondary skill must not be staffed by fallback or reuse")
	}
	warned := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "no specialist available for secondary skill integration") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("expected an unstaffed-secondary warning, got %v", result.Warnings)
	}
	if len(result.FallbackNotes) != 1 {
		t.Errorf("only the primary skill should produce a fallback note: %v", result.FallbackNotes)
	}
}

func TestCheckLoadBalance_WarnsOnWideSpread(t *testing.T) {
	pool := NewSpecialistPool(nil)
	a := NewAssembler(pool, nil)

	// Saturate the QA specialist and lightly load the data specialist so
	// the utilization spread exceeds 0.5.
	spec, _ := pool.Get(models.SpecialistQA)
	for i := 0; i < spec.Capacity.MaxConcurrent; i++ {
		if err := pool.Allocate(models.SpecialistQA); err != nil {
			t.Fatalf("saturating allocation %d failed: %v", i, err)
		}
	}
	if err := pool.Allocate(models.SpecialistData); err != nil {
		t.Fatalf("allocate data: %v", err)
	}

	result := &models.AssemblyResult{
		Team: models.Team{
			models.SkillTesting:      {InstanceID: "m1", Type: models.SpecialistQA, Skill: models.SkillTesting},
			models.SkillDataModeling: {InstanceID: "m2", Type: models.SpecialistData, Skill: models.SkillDataModeling},
		},
		Utilization: make(map[models.SkillType]float64),
	}

	a.checkLoadBalance(result)

	if result.Utilization[models.SkillTesting] != 1.0 {
		t.Errorf("qa utilization = %v, want 1.0", result.Utilization[models.SkillTesting])
	}
	warned := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "load imbalance") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("expected a load-imbalance warning, got %v", result.Warnings)
	}
}

func TestCheckLoadBalance_QuietOnNarrowSpread(t *testing.T) {
	pool := NewSpecialistPool(nil)
	a := NewAssembler(pool, nil)

	if err := pool.Allocate(models.SpecialistData); err != nil {
		t.Fatalf("allocate data: %v", err)
	}

	result := &models.AssemblyResult{
		Team: models.Team{
			models.SkillDataModeling: {InstanceID: "m1", Type: models.SpecialistData, Skill: models.SkillDataModeling},
		},
		Utilization: make(map[models.SkillType]float64),
	}

	a.checkLoadBalance(result)

	if len(result.Warnings) != 0 {
		t.Errorf("single member should not trigger a warning: %v", result.Warnings)
	}
}

func TestOrderForSelection_HighComplexityPrefersPerformance(t *testing.T) {
	skill := primarySkill(models.SkillDataModeling, models.EffortHigh)
	scored := []candidate{
		{Specialist: models.Specialist{Type: models.SpecialistData}, Performance: 0.5, Total: 0.90},
		{Specialist: models.Specialist{Type: models.SpecialistIntegration}, Performance: 0.9, Total: 0.80},
	}

	ordered := orderForSelection(skill, scored)

	if ordered[0].Specialist.Type != models.SpecialistIntegration {
		t.Errorf("high-complexity primary should promote the performer, got %s first", ordered[0].Specialist.Type)
	}
	if len(ordered) != 2 || ordered[1].Specialist.Type != models.SpecialistData {
		t.Errorf("demoted candidate should remain second: %+v", ordered)
	}
}

func TestOrderForSelection_SecondaryPrefersAvailability(t *testing.T) {
	skill := models.SkillSet{Type: models.SkillReporting, Importance: models.ImportanceSecondary, Complexity: models.EffortLow}
	scored := []candidate{
		{Specialist: models.Specialist{Type: models.SpecialistReporting}, Availability: 0.2, Total: 0.90},
		{Specialist: models.Specialist{Type: models.SpecialistData}, Availability: 0.9, Total: 0.85},
	}

	ordered := orderForSelection(skill, scored)

	if ordered[0].Specialist.Type != models.SpecialistData {
		t.Errorf("secondary should promote the available candidate, got %s first", ordered[0].Specialist.Type)
	}
}

func TestOrderForSelection_TopScoreLeadsOtherwise(t *testing.T) {
	skill := primarySkill(models.SkillDataModeling, models.EffortLow)
	scored := []candidate{
		{Specialist: models.Specialist{Type: models.SpecialistData}, Performance: 0.5, Total: 0.90},
		{Specialist: models.Specialist{Type: models.SpecialistIntegration}, Performance: 0.9, Total: 0.80},
	}

	ordered := orderForSelection(skill, scored)

	if ordered[0].Specialist.Type != models.SpecialistData {
		t.Errorf("low complexity should keep score order, got %s first", ordered[0].Specialist.Type)
	}
}

func TestAssembleTeam_UtilizationReported(t *testing.T) {
	pool := NewSpecialistPool(nil)
	a := NewAssembler(pool, nil)

	result := a.AssembleTeam([]models.SkillSet{
		primarySkill(models.SkillReporting, models.EffortLow),
	}, testConfig())

	u, ok := result.Utilization[models.SkillReporting]
	if !ok {
		t.Fatal("utilization should be reported per staffed skill")
	}
	if u <= 0 {
		t.Errorf("utilization = %v, want > 0 after allocation", u)
	}
}
