// Package team provides the specialist pool and the scored team
// assembler that staffs inferred skills with capacity-constrained
// specialists.
package team

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/snowhive/snowhive/internal/logging"
	"github.com/snowhive/snowhive/pkg/models"
)

// Executor is the capability contract a concrete specialist
// implementation satisfies. Any implementation is substitutable; the
// assembler only ever consults the pool's descriptors, never executor
// internals.
type Executor interface {
	// CanHandle scores how well this specialist handles the skill at
	// the given complexity, in [0,1].
	CanHandle(skill models.SkillType, complexity models.Effort) float64
	// Execute performs the task and returns the produced artifact.
	Execute(ctx context.Context, task ExecutionTask) (*models.Artifact, error)
}

// ExecutionTask is the unit of work handed to a specialist executor.
type ExecutionTask struct {
	Session     string
	Agent       string
	Requirement models.Requirement
}

// SpecialistPool is the in-process registry of specialist descriptors.
// Capacity state is process-local: it is only consistent for callers
// inside the same process, which is an architectural boundary of the
// coordination layer, not shared state to be externalized.
type SpecialistPool struct {
	mu          sync.Mutex
	specialists map[models.SpecialistType]*models.Specialist
	logger      *logging.DebugLogger
}

// NewSpecialistPool creates a pool pre-populated with the default
// roster. A nil logger disables logging.
func NewSpecialistPool(logger *logging.DebugLogger) *SpecialistPool {
	if logger == nil {
		logger = logging.NopLogger()
	}
	p := &SpecialistPool{
		specialists: make(map[models.SpecialistType]*models.Specialist),
		logger:      logger,
	}
	for _, s := range DefaultRoster() {
		spec := s
		p.specialists[s.Type] = &spec
	}
	return p
}

// DefaultRoster returns the built-in specialist descriptors.
// Capacities and metrics can be overridden from a roster file; see the
// config package.
func DefaultRoster() []models.Specialist {
	now := time.Now()
	roster := []struct {
		typ        models.SpecialistType
		max        int
		success    float64
		tasks      int
		avg        time.Duration
		complexity float64
	}{
		{models.SpecialistData, 3, 0.92, 150, 8 * time.Minute, 4.2},
		{models.SpecialistWorkflow, 3, 0.90, 120, 12 * time.Minute, 4.0},
		{models.SpecialistUI, 2, 0.87, 95, 15 * time.Minute, 3.6},
		{models.SpecialistScript, 4, 0.82, 140, 6 * time.Minute, 3.0},
		{models.SpecialistSecurity, 2, 0.91, 70, 10 * time.Minute, 4.4},
		{models.SpecialistIntegration, 2, 0.88, 90, 18 * time.Minute, 3.8},
		{models.SpecialistReporting, 2, 0.93, 110, 7 * time.Minute, 3.2},
		{models.SpecialistQA, 2, 0.94, 130, 9 * time.Minute, 3.5},
	}

	specialists := make([]models.Specialist, 0, len(roster))
	for _, r := range roster {
		specialists = append(specialists, models.Specialist{
			Type:     r.typ,
			Capacity: models.Capacity{MaxConcurrent: r.max},
			Performance: models.Performance{
				SuccessRate:      r.success,
				TasksCompleted:   r.tasks,
				AvgExecutionTime: r.avg,
				ComplexityRating: r.complexity,
				LastActivity:     now,
			},
		})
	}
	return specialists
}

// Register adds or replaces a specialist descriptor.
func (p *SpecialistPool) Register(s models.Specialist) {
	p.mu.Lock()
	defer p.mu.Unlock()
	spec := s
	p.specialists[s.Type] = &spec
}

// Get returns a copy of the descriptor for the given type.
func (p *SpecialistPool) Get(t models.SpecialistType) (models.Specialist, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.specialists[t]
	if !ok {
		return models.Specialist{}, false
	}
	return *s, true
}

// Snapshot returns copies of all descriptors, sorted by type for
// deterministic iteration.
func (p *SpecialistPool) Snapshot() []models.Specialist {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]models.Specialist, 0, len(p.specialists))
	for _, s := range p.specialists {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Allocate increments the load for a specialist type. It fails when the
// type is unknown or already at MaxConcurrent, so a successful return
// can never exceed capacity even under concurrent assembly calls.
func (p *SpecialistPool) Allocate(t models.SpecialistType) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.specialists[t]
	if !ok {
		return fmt.Errorf("allocate %s: unknown specialist type", t)
	}
	if s.Capacity.CurrentLoad >= s.Capacity.MaxConcurrent {
		return fmt.Errorf("allocate %s: at capacity (%d/%d)", t, s.Capacity.CurrentLoad, s.Capacity.MaxConcurrent)
	}
	s.Capacity.CurrentLoad++
	p.logger.Log("pool: allocated %s (%d/%d)", t, s.Capacity.CurrentLoad, s.Capacity.MaxConcurrent)
	return nil
}

// Release decrements the load for a specialist type, flooring at zero.
func (p *SpecialistPool) Release(t models.SpecialistType) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.specialists[t]
	if !ok {
		return
	}
	if s.Capacity.CurrentLoad > 0 {
		s.Capacity.CurrentLoad--
	}
	p.logger.Log("pool: released %s (%d/%d)", t, s.Capacity.CurrentLoad, s.Capacity.MaxConcurrent)
}

// RecordCompletion folds one finished task into the rolling performance
// metrics for a specialist type.
func (p *SpecialistPool) RecordCompletion(t models.SpecialistType, success bool, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.specialists[t]
	if !ok {
		return
	}

	n := float64(s.Performance.TasksCompleted)
	outcome := 0.0
	if success {
		outcome = 1.0
	}
	s.Performance.SuccessRate = (s.Performance.SuccessRate*n + outcome) / (n + 1)
	s.Performance.AvgExecutionTime = time.Duration(
		(float64(s.Performance.AvgExecutionTime)*n + float64(duration)) / (n + 1))
	s.Performance.TasksCompleted++
	s.Performance.LastActivity = time.Now()
}

// Utilization returns CurrentLoad/MaxConcurrent for a type, or 1.0 for
// unknown types.
func (p *SpecialistPool) Utilization(t models.SpecialistType) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.specialists[t]
	if !ok {
		return 1.0
	}
	return s.Capacity.Utilization()
}
