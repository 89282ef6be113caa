package analysis

import (
	"github.com/snowhive/snowhive/pkg/models"
)

// Bonus caps for the pass-2/3/4 completeness contributions.
const (
	pass2BonusCap = 30
	pass3BonusCap = 20
	pass4BonusCap = 10
	bonusPerReq   = 5
)

// finalize merges the run into an AnalysisResult: counts, coverage,
// completeness, confidence, complexity, risk, critical path, duration.
func (a *Analyzer) finalize(r *run, pass1, pass2, pass3, pass4 int) *models.AnalysisResult {
	result := &models.AnalysisResult{
		Objective: r.objective,
		Warnings:  r.warnings,
	}

	result.Requirements = make([]models.Requirement, 0, len(r.order))
	for _, key := range r.order {
		result.Requirements = append(result.Requirements, *r.byKey[key])
	}
	result.TotalRequirements = len(result.Requirements)

	for _, req := range result.Requirements {
		if req.Covered {
			result.CoveredCount++
		} else {
			result.GapCount++
		}
	}

	// Pass-1 match confidence: more pattern hits, more confidence.
	result.MatchConfidence = 0.3 + 0.1*float64(pass1)
	if result.MatchConfidence > 0.9 {
		result.MatchConfidence = 0.9
	}

	result.Completeness = completeness(pass2, pass3, pass4)
	result.Confidence = confidenceBucket(result.Completeness)
	result.Complexity = complexityBucket(result.Requirements)
	result.Risk = riskBucket(result.Requirements)
	result.CriticalPath = criticalPath(result.Requirements)
	result.EstimatedDuration = durationBucket(result.Requirements)

	return result
}

// completeness scores how thoroughly the passes filled out the
// requirement set: a 40-point base plus capped linear bonuses for each
// expansion pass's new-requirement count.
func completeness(pass2, pass3, pass4 int) int {
	bonus := func(count, limit int) int {
		b := count * bonusPerReq
		if b > limit {
			return limit
		}
		return b
	}

	score := 40 + bonus(pass2, pass2BonusCap) + bonus(pass3, pass3BonusCap) + bonus(pass4, pass4BonusCap)
	if score > 100 {
		score = 100
	}
	return score
}

// confidenceBucket maps a completeness score to a confidence level.
func confidenceBucket(completeness int) models.ConfidenceLevel {
	switch {
	case completeness < 60:
		return models.ConfidenceLow
	case completeness < 75:
		return models.ConfidenceMedium
	case completeness < 90:
		return models.ConfidenceHigh
	default:
		return models.ConfidenceVeryHigh
	}
}

// complexityBucket classifies the weighted effort total.
func complexityBucket(reqs []models.Requirement) models.ComplexityBucket {
	total := 0
	for _, req := range reqs {
		total += req.EstimatedEffort.Weight()
	}

	switch {
	case total < 5:
		return models.ComplexityLow
	case total < 12:
		return models.ComplexityMedium
	case total < 25:
		return models.ComplexityHigh
	default:
		return models.ComplexityEnterprise
	}
}

// riskBucket classifies the high-risk requirement ratio.
func riskBucket(reqs []models.Requirement) models.RiskLevel {
	if len(reqs) == 0 {
		return models.RiskLow
	}

	high := 0
	for _, req := range reqs {
		if req.RiskLevel == models.RiskHigh {
			high++
		}
	}
	ratio := float64(high) / float64(len(reqs))

	switch {
	case ratio >= 0.5:
		return models.RiskHigh
	case ratio >= 0.25:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// criticalPathLimit caps the reported critical-path length.
const criticalPathLimit = 5

// criticalPath returns the names of the top-priority requirements,
// critical first, preserving requirement order within a priority.
func criticalPath(reqs []models.Requirement) []string {
	var names []string
	for _, p := range []models.Priority{models.PriorityCritical, models.PriorityHigh} {
		for _, req := range reqs {
			if req.Priority == p {
				names = append(names, req.Name)
				if len(names) >= criticalPathLimit {
					return names
				}
			}
		}
	}
	return names
}

// durationBucket estimates the calendar duration from total effort-days.
func durationBucket(reqs []models.Requirement) string {
	days := 0
	for _, req := range reqs {
		days += req.EstimatedEffort.Days()
	}

	switch {
	case days < 7:
		return "1 week"
	case days < 21:
		return "2-3 weeks"
	case days < 45:
		return "1-2 months"
	default:
		return "3+ months"
	}
}
