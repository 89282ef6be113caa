package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/snowhive/snowhive/internal/logging"
	"github.com/snowhive/snowhive/pkg/models"
)

// DefaultMaxRequirements caps how many requirements one run may produce.
const DefaultMaxRequirements = 200

// Analyzer expands objectives into requirement sets.
// Analyzers are stateless between runs; all mutable analysis state is
// run-scoped, so a single Analyzer is safe for concurrent use.
type Analyzer struct {
	logger *logging.DebugLogger

	// maxRequirements stops runaway expansion on pathological input.
	maxRequirements int

	// ContextHooks are optional extension points invoked after pass 3
	// for scope and compliance sub-checks. Hooks may add requirements
	// via the provided add function; a hook panic is contained like any
	// other pass failure.
	ContextHooks []ContextHook
}

// ContextHook is a pass-3 extension point. matched lists the context
// group names that fired; add injects a requirement of the given type
// unless the type is already present.
type ContextHook func(objective string, matched []string, add func(t models.RequirementType, category string) bool)

// NewAnalyzer creates an Analyzer. A nil logger disables logging.
func NewAnalyzer(logger *logging.DebugLogger) *Analyzer {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Analyzer{
		logger:          logger,
		maxRequirements: DefaultMaxRequirements,
	}
}

// SetMaxRequirements overrides the per-run requirement cap.
func (a *Analyzer) SetMaxRequirements(n int) {
	if n > 0 {
		a.maxRequirements = n
	}
}

// run holds all mutable state for one analysis run. Ids are assigned
// sequentially within the run, so identical objectives produce
// identical requirement sets.
type run struct {
	objective string
	lower     string
	now       time.Time

	seq      int
	byKey    map[string]*models.Requirement
	order    []string // dedup keys in insertion order
	warnings []string

	max int
}

// add creates and stores a requirement unless its (type, name) key is
// already present or the run cap is reached. Returns the stored
// requirement and whether it was newly added.
func (r *run) add(t models.RequirementType, name, desc, category string, priority models.Priority) (*models.Requirement, bool) {
	meta := metaFor(t)
	if name == "" {
		name = meta.Name
	}
	if priority == "" {
		priority = meta.Priority
	}

	key := string(t) + "|" + name
	if existing, ok := r.byKey[key]; ok {
		return existing, false
	}
	if len(r.order) >= r.max {
		r.warnings = append(r.warnings, fmt.Sprintf("requirement cap %d reached, dropping %s", r.max, key))
		return nil, false
	}

	r.seq++
	req := &models.Requirement{
		ID:              fmt.Sprintf("REQ-%03d", r.seq),
		Type:            t,
		Name:            name,
		Description:     desc,
		Priority:        priority,
		EstimatedEffort: meta.Effort,
		Automatable:     meta.Automatable,
		Covered:         meta.Covered,
		Category:        category,
		RiskLevel:       meta.Risk,
		CreatedAt:       r.now,
	}
	r.byKey[key] = req
	r.order = append(r.order, key)
	return req, true
}

// hasType reports whether any requirement of the given type exists.
func (r *run) hasType(t models.RequirementType) bool {
	for _, key := range r.order {
		if r.byKey[key].Type == t {
			return true
		}
	}
	return false
}

// Analyze runs all four passes over the objective and returns the
// merged result. It never returns an error: empty or malformed input
// degrades to a low-confidence, low-count result, and a failure inside
// any single pass contributes zero requirements from that pass.
func (a *Analyzer) Analyze(objective string) *models.AnalysisResult {
	r := &run{
		objective: objective,
		lower:     strings.ToLower(objective),
		now:       time.Now(),
		byKey:     make(map[string]*models.Requirement),
		max:       a.maxRequirements,
	}

	pass1 := a.runPass(r, "pattern-match", a.passPatternMatch)
	pass2 := a.runPass(r, "dependency-expansion", a.passDependencyExpansion)
	pass3 := a.runPass(r, "context-implication", a.passContextImplication)
	pass4 := a.runPass(r, "gap-fill", a.passGapFill)

	a.logger.Log("analysis: objective %q -> %d requirements (p1=%d p2=%d p3=%d p4=%d)",
		truncate(objective, 60), len(r.order), pass1, pass2, pass3, pass4)

	return a.finalize(r, pass1, pass2, pass3, pass4)
}

// runPass executes one pass, containing any panic so a single broken
// pass contributes zero requirements instead of aborting the pipeline.
func (a *Analyzer) runPass(r *run, name string, fn func(*run) int) (added int) {
	defer func() {
		if rec := recover(); rec != nil {
			added = 0
			warning := fmt.Sprintf("%s pass failed: %v", name, rec)
			r.warnings = append(r.warnings, warning)
			a.logger.Log("analysis: %s", warning)
		}
	}()
	return fn(r)
}

// passPatternMatch scans the objective against the ordered keyword
// table. Each matching group yields one requirement.
func (a *Analyzer) passPatternMatch(r *run) int {
	added := 0
	for _, group := range keywordTable {
		for _, kw := range group.Keywords {
			if strings.Contains(r.lower, kw) {
				if _, ok := r.add(group.Type, group.Name, group.Desc, "pattern", group.Priority); ok {
					added++
				}
				break
			}
		}
	}
	return added
}

// passDependencyExpansion walks the static dependency matrix from every
// requirement present after pass 1, adding missing supporting types.
// Each added requirement back-references the requirement that triggered
// it. Visited types are tracked per run: the matrix is validated
// acyclic at init, but the guard keeps a future edit from looping.
func (a *Analyzer) passDependencyExpansion(r *run) int {
	added := 0
	visited := make(map[models.RequirementType]bool)

	// Snapshot, then process as a worklist so expansions cascade.
	queue := make([]string, len(r.order))
	copy(queue, r.order)

	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]

		origin := r.byKey[key]
		if origin == nil || visited[origin.Type] {
			continue
		}
		visited[origin.Type] = true

		for _, depType := range dependencyMatrix[origin.Type] {
			if r.hasType(depType) {
				continue
			}
			meta := metaFor(depType)
			desc := fmt.Sprintf("%s (required by %s)", meta.Name, origin.Name)
			req, ok := r.add(depType, "", desc, "dependency", "")
			if !ok {
				continue
			}
			req.Dependencies = append(req.Dependencies, origin.ID)
			queue = append(queue, req.DedupKey())
			added++
		}
	}
	return added
}

// passContextImplication matches the fixed context trigger groups and
// injects each group's implication types, skipping types already
// present. Registered ContextHooks run after the built-in groups.
func (a *Analyzer) passContextImplication(r *run) int {
	added := 0
	var matched []string

	for _, group := range contextGroups {
		fired := false
		for _, kw := range group.Keywords {
			if strings.Contains(r.lower, kw) {
				fired = true
				break
			}
		}
		if !fired {
			continue
		}
		matched = append(matched, group.Name)

		for _, t := range group.Implies {
			if r.hasType(t) {
				continue
			}
			meta := metaFor(t)
			desc := fmt.Sprintf("%s (implied by %s context)", meta.Name, group.Name)
			if _, ok := r.add(t, "", desc, "context:"+group.Name, ""); ok {
				added++
			}
		}
	}

	for _, hook := range a.ContextHooks {
		hook(r.objective, matched, func(t models.RequirementType, category string) bool {
			if r.hasType(t) {
				return false
			}
			meta := metaFor(t)
			_, ok := r.add(t, "", meta.Name+" (context hook)", category, "")
			if ok {
				added++
			}
			return ok
		})
	}
	return added
}

// passGapFill runs the final gap-analysis heuristics, adding any
// remaining structurally-expected requirements.
func (a *Analyzer) passGapFill(r *run) int {
	added := 0

	gap := func(t models.RequirementType, reason string) {
		if r.hasType(t) {
			return
		}
		meta := metaFor(t)
		if _, ok := r.add(t, "", fmt.Sprintf("%s (%s)", meta.Name, reason), "gap", ""); ok {
			added++
		}
	}

	if r.hasType(models.RequirementTable) {
		gap(models.RequirementACL, "tables need access control")
	}
	if r.hasType(models.RequirementFlow) || r.hasType(models.RequirementBusinessRule) {
		gap(models.RequirementTestCase, "automated logic needs test coverage")
	}
	if len(r.order) >= 8 {
		gap(models.RequirementDocumentation, "larger scopes need documentation")
	}

	return added
}

// truncate shortens s for log lines.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
