package team

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/snowhive/snowhive/internal/logging"
	"github.com/snowhive/snowhive/pkg/models"
)

// DefaultMaxTeamSize caps teams when the configuration does not.
const DefaultMaxTeamSize = 5

// reuseThreshold is the minimum capability-match score for staffing a
// skill with an already-selected team member.
const reuseThreshold = 0.3

// Assembler builds teams from skill demands against a specialist pool.
// All capacity mutation goes through the pool's lock, so concurrent
// AssembleTeam calls cannot over-allocate a specialist type.
type Assembler struct {
	pool   *SpecialistPool
	logger *logging.DebugLogger
}

// NewAssembler creates an Assembler. A nil logger disables logging.
func NewAssembler(pool *SpecialistPool, logger *logging.DebugLogger) *Assembler {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Assembler{pool: pool, logger: logger}
}

// AssembleTeam staffs the given skills and returns the structured
// result. Allocation failures become warnings on the result, never
// errors: execution continues with a reduced team.
func (a *Assembler) AssembleTeam(skills []models.SkillSet, cfg models.TeamConfiguration) *models.AssemblyResult {
	if cfg.MaxTeamSize <= 0 {
		cfg.MaxTeamSize = DefaultMaxTeamSize
	}

	result := &models.AssemblyResult{
		Team:        make(models.Team),
		Utilization: make(map[models.SkillType]float64),
	}

	// Partition by importance, preserving input order.
	var primary, secondary, optional []models.SkillSet
	for _, s := range skills {
		switch s.Importance {
		case models.ImportancePrimary:
			primary = append(primary, s)
		case models.ImportanceSecondary:
			secondary = append(secondary, s)
		default:
			optional = append(optional, s)
		}
	}

	// Primary skills are always attempted, even past the size cap.
	for _, skill := range primary {
		a.staffSkill(result, skill, cfg)
	}

	for _, skill := range secondary {
		if teamSize(result.Team) >= cfg.MaxTeamSize {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("team size cap %d reached, skipping secondary skill %s", cfg.MaxTeamSize, skill.Type))
			continue
		}
		a.staffSkill(result, skill, cfg)
	}

	if cfg.SkillOverlap {
		for _, skill := range optional {
			if teamSize(result.Team) >= cfg.MaxTeamSize {
				break
			}
			a.staffSkill(result, skill, cfg)
		}
	}

	a.checkLoadBalance(result)

	a.logger.Log("assembler: staffed %d/%d skills (%d warnings, %d fallbacks)",
		len(result.Team), len(skills), len(result.Warnings), len(result.FallbackNotes))
	return result
}

// staffSkill selects and allocates one specialist for a skill,
// following the selection order: scored candidates, configured
// fallback types, then reuse of an existing member.
func (a *Assembler) staffSkill(result *models.AssemblyResult, skill models.SkillSet, cfg models.TeamConfiguration) {
	if _, ok := result.Team[skill.Type]; ok {
		return
	}

	exact := skillToSpecialist[skill.Type]
	scored := scoreCandidates(a.pool.Snapshot(), skill, result.Team, cfg.PerformanceThreshold)

	// Allocation is attempted in tie-break preference order; a raced
	// capacity miss just moves on to the next candidate.
	for _, c := range orderForSelection(skill, scored) {
		if err := a.pool.Allocate(c.Specialist.Type); err != nil {
			continue
		}
		member := &models.TeamMember{
			InstanceID: uuid.New().String()[:8],
			Type:       c.Specialist.Type,
			Skill:      skill.Type,
			Score:      c.Total,
			Fallback:   c.Specialist.Type != exact,
		}
		result.Team[skill.Type] = member
		if member.Fallback {
			result.FallbackNotes = append(result.FallbackNotes,
				fmt.Sprintf("skill %s staffed by %s instead of %s (score %.2f)",
					skill.Type, c.Specialist.Type, exact, c.Total))
		}
		return
	}

	// No scored candidate could be allocated. The fallback list and
	// member reuse apply to primary skills only; secondary and optional
	// skills go unstaffed rather than diluting the team.
	if skill.Importance != models.ImportancePrimary {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("no specialist available for %s skill %s", skill.Importance, skill.Type))
		return
	}

	// Try the fallback list directly, ignoring the performance
	// threshold.
	if cfg.FallbackEnabled {
		for _, fb := range fallbackSpecialists[skill.Type] {
			if err := a.pool.Allocate(fb); err != nil {
				continue
			}
			member := &models.TeamMember{
				InstanceID: uuid.New().String()[:8],
				Type:       fb,
				Skill:      skill.Type,
				Score:      matchFactor(skill.Type, fb),
				Fallback:   true,
			}
			result.Team[skill.Type] = member
			result.FallbackNotes = append(result.FallbackNotes,
				fmt.Sprintf("skill %s staffed by fallback %s (threshold bypassed)", skill.Type, fb))
			return
		}
	}

	// Last resort: reuse an existing member whose type can plausibly
	// cover this skill. No new allocation is made.
	for _, member := range result.Team {
		if matchFactor(skill.Type, member.Type) > reuseThreshold {
			result.Team[skill.Type] = member
			result.FallbackNotes = append(result.FallbackNotes,
				fmt.Sprintf("skill %s covered by existing %s member %s", skill.Type, member.Type, member.InstanceID))
			return
		}
	}

	result.Warnings = append(result.Warnings,
		fmt.Sprintf("no specialist available for %s skill %s", skill.Importance, skill.Type))
}

// checkLoadBalance records per-skill utilization and warns when the
// spread between the most and least loaded specialists exceeds 0.5.
// Rebalancing is deliberately not attempted; allocations belong to the
// caller until released.
func (a *Assembler) checkLoadBalance(result *models.AssemblyResult) {
	if len(result.Team) == 0 {
		return
	}

	min, max := 1.0, 0.0
	for skill, member := range result.Team {
		u := a.pool.Utilization(member.Type)
		result.Utilization[skill] = u
		if u < min {
			min = u
		}
		if u > max {
			max = u
		}
	}

	if max-min > 0.5 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("load imbalance: utilization spread %.2f exceeds 0.5", max-min))
	}
}

// ReleaseTeam returns every allocation a team holds to the pool.
// Members reused across skills are released once.
func (a *Assembler) ReleaseTeam(team models.Team) {
	released := make(map[string]bool)
	for _, member := range team {
		if released[member.InstanceID] {
			continue
		}
		released[member.InstanceID] = true
		a.pool.Release(member.Type)
	}
}

// ReleaseMember returns a single member's allocation to the pool.
func (a *Assembler) ReleaseMember(member *models.TeamMember) {
	if member == nil {
		return
	}
	a.pool.Release(member.Type)
}

// Pool exposes the underlying specialist pool.
func (a *Assembler) Pool() *SpecialistPool {
	return a.pool
}

// teamSize counts distinct member instances on a team.
func teamSize(team models.Team) int {
	seen := make(map[string]bool)
	for _, member := range team {
		seen[member.InstanceID] = true
	}
	return len(seen)
}
