package team

import (
	"sort"

	"github.com/snowhive/snowhive/pkg/models"
)

// Scoring weights for candidate selection. They sum to 1.0.
const (
	weightSkillMatch   = 0.40
	weightPerformance  = 0.25
	weightAvailability = 0.20
	weightSynergy      = 0.10
	weightDiversity    = 0.05
)

// skillToSpecialist maps each skill to the specialist type that handles
// it exactly.
var skillToSpecialist = map[models.SkillType]models.SpecialistType{
	models.SkillDataModeling:   models.SpecialistData,
	models.SkillWorkflowDesign: models.SpecialistWorkflow,
	models.SkillUIDevelopment:  models.SpecialistUI,
	models.SkillScripting:      models.SpecialistScript,
	models.SkillSecurity:       models.SpecialistSecurity,
	models.SkillIntegration:    models.SpecialistIntegration,
	models.SkillReporting:      models.SpecialistReporting,
	models.SkillCommunication:  models.SpecialistWorkflow,
	models.SkillTesting:        models.SpecialistQA,
	models.SkillDocumentation:  models.SpecialistQA,
}

// fallbackSpecialists lists the ordered fallback types per skill, tried
// when the exact specialist cannot be staffed.
var fallbackSpecialists = map[models.SkillType][]models.SpecialistType{
	models.SkillDataModeling:   {models.SpecialistIntegration, models.SpecialistScript},
	models.SkillWorkflowDesign: {models.SpecialistScript},
	models.SkillUIDevelopment:  {models.SpecialistScript},
	models.SkillScripting:      {models.SpecialistWorkflow},
	models.SkillSecurity:       {models.SpecialistData},
	models.SkillIntegration:    {models.SpecialistData, models.SpecialistScript},
	models.SkillReporting:      {models.SpecialistData},
	models.SkillCommunication:  {models.SpecialistUI},
	models.SkillTesting:        {models.SpecialistScript},
	models.SkillDocumentation:  {models.SpecialistScript},
}

// complementaryTypes drives the synergy factor: teammates of a listed
// type make the candidate more attractive.
var complementaryTypes = map[models.SpecialistType][]models.SpecialistType{
	models.SpecialistData:        {models.SpecialistIntegration, models.SpecialistReporting},
	models.SpecialistWorkflow:    {models.SpecialistScript, models.SpecialistSecurity},
	models.SpecialistUI:          {models.SpecialistScript, models.SpecialistWorkflow},
	models.SpecialistScript:      {models.SpecialistWorkflow, models.SpecialistUI},
	models.SpecialistSecurity:    {models.SpecialistData, models.SpecialistIntegration},
	models.SpecialistIntegration: {models.SpecialistData, models.SpecialistScript},
	models.SpecialistReporting:   {models.SpecialistData},
	models.SpecialistQA:          {models.SpecialistScript, models.SpecialistWorkflow},
}

// candidate is one scored specialist for one skill.
type candidate struct {
	Specialist models.Specialist

	// Factor breakdown, each in [0,1].
	SkillMatch   float64
	Performance  float64
	Availability float64
	Synergy      float64
	Diversity    float64

	// Total is the weighted sum.
	Total float64
}

// matchFactor returns the skill-match tier for a specialist type:
// 1.0 for the exact mapping, 0.7 for a fallback-list hit, 0.3 otherwise.
func matchFactor(skill models.SkillType, t models.SpecialistType) float64 {
	if skillToSpecialist[skill] == t {
		return 1.0
	}
	for _, fb := range fallbackSpecialists[skill] {
		if fb == t {
			return 0.7
		}
	}
	return 0.3
}

// performanceFactor averages success rate, normalized complexity
// rating, and task-count maturity.
func performanceFactor(p models.Performance) float64 {
	maturity := float64(p.TasksCompleted) / 100
	if maturity > 1 {
		maturity = 1
	}
	return (p.SuccessRate + p.ComplexityRating/5 + maturity) / 3
}

// availabilityFactor is the free-capacity fraction, clamped to [0,1].
func availabilityFactor(c models.Capacity) float64 {
	if c.MaxConcurrent <= 0 {
		return 0
	}
	f := float64(c.MaxConcurrent-c.CurrentLoad) / float64(c.MaxConcurrent)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// synergyFactor starts at 0.5 and adds 0.2 per already-selected
// complementary teammate, capped at 1.0.
func synergyFactor(t models.SpecialistType, current models.Team) float64 {
	f := 0.5
	for _, member := range current {
		for _, comp := range complementaryTypes[t] {
			if member.Type == comp {
				f += 0.2
			}
		}
	}
	if f > 1 {
		f = 1
	}
	return f
}

// diversityFactor rewards types not yet on the team.
func diversityFactor(t models.SpecialistType, current models.Team) float64 {
	for _, member := range current {
		if member.Type == t {
			return 0
		}
	}
	return 1.0
}

// scoreCandidates scores every pooled specialist for a skill, filters
// by the configured threshold, and sorts by total score descending
// (type name breaks exact ties so ordering is deterministic).
func scoreCandidates(specialists []models.Specialist, skill models.SkillSet, current models.Team, threshold float64) []candidate {
	var scored []candidate
	for _, s := range specialists {
		c := candidate{
			Specialist:   s,
			SkillMatch:   matchFactor(skill.Type, s.Type),
			Performance:  performanceFactor(s.Performance),
			Availability: availabilityFactor(s.Capacity),
			Synergy:      synergyFactor(s.Type, current),
			Diversity:    diversityFactor(s.Type, current),
		}
		c.Total = weightSkillMatch*c.SkillMatch +
			weightPerformance*c.Performance +
			weightAvailability*c.Availability +
			weightSynergy*c.Synergy +
			weightDiversity*c.Diversity

		if c.Total < threshold {
			continue
		}
		scored = append(scored, c)
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Total != scored[j].Total {
			return scored[i].Total > scored[j].Total
		}
		return scored[i].Specialist.Type < scored[j].Specialist.Type
	})
	return scored
}

// orderForSelection applies the tie-break policy, returning candidates
// in the order allocation should be attempted:
//   - primary skills at high complexity prefer the first candidate with
//     a performance factor above 0.8;
//   - secondary skills prefer the first candidate with availability
//     above 0.7;
//   - otherwise the top score leads.
func orderForSelection(skill models.SkillSet, scored []candidate) []candidate {
	if len(scored) < 2 {
		return scored
	}

	promote := -1
	switch {
	case skill.Importance == models.ImportancePrimary && skill.Complexity == models.EffortHigh:
		for i, c := range scored {
			if c.Performance > 0.8 {
				promote = i
				break
			}
		}
	case skill.Importance == models.ImportanceSecondary:
		for i, c := range scored {
			if c.Availability > 0.7 {
				promote = i
				break
			}
		}
	}

	if promote <= 0 {
		return scored
	}

	reordered := make([]candidate, 0, len(scored))
	reordered = append(reordered, scored[promote])
	for i, c := range scored {
		if i != promote {
			reordered = append(reordered, c)
		}
	}
	return reordered
}
