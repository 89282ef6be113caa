package runner

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/snowhive/snowhive/pkg/models"
)

// Escalation is one pending supervisor intervention request.
type Escalation struct {
	Agent  string
	Issue  models.EscalationIssue
	SentAt time.Time
}

// RequestQueenIntervention escalates a stuck agent to the supervisor.
// The requester is marked blocked with the issue description, and the
// full issue is queued for the supervisor as JSON message content.
func (p *ContextProvider) RequestQueenIntervention(agent string, issue models.EscalationIssue) error {
	err := p.store.UpsertAgentStatus(models.AgentStatusRecord{
		Session:      p.session,
		Agent:        agent,
		State:        models.AgentBlocked,
		ErrorState:   issue.Description,
		LastActivity: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("request intervention: %w", err)
	}

	content, err := json.Marshal(issue)
	if err != nil {
		return fmt.Errorf("request intervention: %w", err)
	}

	_, err = p.store.SendMessage(models.Message{
		Session: p.session,
		From:    agent,
		To:      models.SupervisorAgent,
		Type:    models.MessageError,
		Content: string(content),
	})
	if err != nil {
		return fmt.Errorf("request intervention: %w", err)
	}

	p.logger.Log("runner: %s escalated %s/%s to %s: %s",
		agent, issue.Type, issue.Priority, models.SupervisorAgent, issue.Description)
	return nil
}

// PollInterventionRequests drains the supervisor's queue and returns
// the pending escalations. Message content that is not a serialized
// issue is preserved as a bare description.
func (p *ContextProvider) PollInterventionRequests() ([]Escalation, error) {
	msgs, err := p.store.PollMessages(p.session, models.SupervisorAgent)
	if err != nil {
		return nil, fmt.Errorf("poll interventions: %w", err)
	}

	var escalations []Escalation
	for _, msg := range msgs {
		if msg.Type != models.MessageError {
			continue
		}
		esc := Escalation{Agent: msg.From, SentAt: msg.SentAt}
		if err := json.Unmarshal([]byte(msg.Content), &esc.Issue); err != nil {
			esc.Issue = models.EscalationIssue{Description: msg.Content}
		}
		escalations = append(escalations, esc)
	}
	return escalations, nil
}

// ResolveEscalation unblocks an agent after supervisor intervention and
// notifies it of the resolution.
func (p *ContextProvider) ResolveEscalation(agent, resolution string) error {
	err := p.store.UpsertAgentStatus(models.AgentStatusRecord{
		Session:      p.session,
		Agent:        agent,
		State:        models.AgentActive,
		LastActivity: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("resolve escalation: %w", err)
	}

	_, err = p.store.SendMessage(models.Message{
		Session: p.session,
		From:    models.SupervisorAgent,
		To:      agent,
		Type:    models.MessageStatusUpdate,
		Content: resolution,
	})
	if err != nil {
		return fmt.Errorf("resolve escalation: %w", err)
	}
	return nil
}
