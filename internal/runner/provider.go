// Package runner wraps specialist work with coordination bookkeeping:
// status transitions, performance rows, handoffs, and escalation to the
// supervisor.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/snowhive/snowhive/internal/coord"
	"github.com/snowhive/snowhive/internal/logging"
	"github.com/snowhive/snowhive/internal/team"
	"github.com/snowhive/snowhive/pkg/models"
)

// WorkFunc is one unit of specialist work. The returned string becomes
// the operation output on success.
type WorkFunc func(ctx context.Context) (string, error)

// ContextProvider executes work on behalf of team members, recording
// every transition in the coordination store. A nil pool skips capacity
// bookkeeping.
type ContextProvider struct {
	store   coord.Store
	pool    *team.SpecialistPool
	logger  *logging.DebugLogger
	session string
}

// NewContextProvider creates a provider bound to one session.
func NewContextProvider(store coord.Store, pool *team.SpecialistPool, logger *logging.DebugLogger, session string) *ContextProvider {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &ContextProvider{store: store, pool: pool, logger: logger, session: session}
}

// Session returns the session this provider is bound to.
func (p *ContextProvider) Session() string {
	return p.session
}

// Execute runs one operation for a team member. The agent is marked
// active with the operation as its current tool before the work starts;
// afterwards it is marked completed (progress 100) or blocked with the
// failure recorded. A failing operation is a result with Success=false,
// not an error: errors from Execute mean the bookkeeping itself failed.
func (p *ContextProvider) Execute(ctx context.Context, member *models.TeamMember, operation string, work WorkFunc) (*models.OperationResult, error) {
	agent := member.InstanceID

	err := p.store.UpsertAgentStatus(models.AgentStatusRecord{
		Session:      p.session,
		Agent:        agent,
		State:        models.AgentActive,
		CurrentTool:  operation,
		LastActivity: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	output, workErr := work(ctx)
	elapsed := time.Since(start)

	result := &models.OperationResult{
		Success:  workErr == nil,
		Output:   output,
		Duration: elapsed,
	}
	if workErr != nil {
		result.Error = workErr.Error()
	}

	perf := models.PerformanceRecord{
		Session:    p.session,
		Agent:      agent,
		Operation:  operation,
		Duration:   elapsed,
		Success:    result.Success,
		Error:      result.Error,
		RecordedAt: time.Now(),
	}
	if err := p.store.RecordPerformance(perf); err != nil {
		p.logger.Log("runner: record performance for %s failed: %v", agent, err)
	}

	if p.pool != nil {
		p.pool.RecordCompletion(member.Type, result.Success, elapsed)
	}

	status := models.AgentStatusRecord{
		Session:      p.session,
		Agent:        agent,
		LastActivity: time.Now(),
	}
	if result.Success {
		status.State = models.AgentCompleted
		status.Progress = 100
	} else {
		status.State = models.AgentBlocked
		status.ErrorState = result.Error
	}
	if err := p.store.UpsertAgentStatus(status); err != nil {
		return nil, err
	}

	// A completed member returns its capacity; a blocked one holds its
	// slot until the supervisor resolves the escalation.
	if result.Success && p.pool != nil {
		p.pool.Release(member.Type)
	}

	p.logger.Log("runner: %s %s %s in %s", agent, operation, stateWord(result.Success), elapsed)
	return result, nil
}

// ExecuteTask runs a requirement through a specialist executor with the
// same bookkeeping as Execute. The executor is consulted first: a
// CanHandle score of zero rejects the task before any status changes.
// An artifact returned on success is recorded for later handoff.
func (p *ContextProvider) ExecuteTask(ctx context.Context, member *models.TeamMember, exec team.Executor, req models.Requirement) (*models.OperationResult, error) {
	if exec.CanHandle(member.Skill, req.EstimatedEffort) <= 0 {
		return nil, fmt.Errorf("execute task: %s cannot handle %s at %s effort",
			member.InstanceID, member.Skill, req.EstimatedEffort)
	}

	var artifact *models.Artifact
	result, err := p.Execute(ctx, member, string(req.Type), func(ctx context.Context) (string, error) {
		a, execErr := exec.Execute(ctx, team.ExecutionTask{
			Session:     p.session,
			Agent:       member.InstanceID,
			Requirement: req,
		})
		if execErr != nil {
			return "", execErr
		}
		artifact = a
		if a == nil {
			return "", nil
		}
		return a.Name, nil
	})
	if err != nil {
		return nil, err
	}

	if result.Success && artifact != nil {
		artifact.Session = p.session
		if artifact.CreatedBy == "" {
			artifact.CreatedBy = member.InstanceID
		}
		if recErr := p.store.RecordArtifact(*artifact); recErr != nil {
			p.logger.Log("runner: record artifact %s for %s failed: %v", artifact.ID, member.InstanceID, recErr)
		}
	}
	return result, nil
}

// Spawn registers a team member's agent row ahead of its first
// operation.
func (p *ContextProvider) Spawn(member *models.TeamMember) error {
	return p.store.UpsertAgentStatus(models.AgentStatusRecord{
		Session:      p.session,
		Agent:        member.InstanceID,
		State:        models.AgentSpawned,
		LastActivity: time.Now(),
	})
}

func stateWord(success bool) string {
	if success {
		return "completed"
	}
	return "failed"
}
