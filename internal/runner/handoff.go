package runner

import (
	"fmt"
	"time"

	"github.com/snowhive/snowhive/pkg/models"
)

// handoffContextTTL bounds how long a handoff marker stays readable in
// shared context. The message itself is the durable record.
const handoffContextTTL = time.Hour

// handoffKey is the shared-context key announcing an artifact kind is
// ready for a recipient.
func handoffKey(artifactType, toAgent string) string {
	return fmt.Sprintf("%s_ready_for_%s", artifactType, toAgent)
}

// NotifyHandoff records an artifact and announces it to the receiving
// agent, both as a queued message and as a shared-context marker the
// recipient can cheaply poll.
func (p *ContextProvider) NotifyHandoff(from, to string, artifact models.Artifact) error {
	artifact.Session = p.session
	if artifact.CreatedBy == "" {
		artifact.CreatedBy = from
	}
	if err := p.store.RecordArtifact(artifact); err != nil {
		return fmt.Errorf("notify handoff: %w", err)
	}

	_, err := p.store.SendMessage(models.Message{
		Session:     p.session,
		From:        from,
		To:          to,
		Type:        models.MessageHandoff,
		Content:     fmt.Sprintf("%s %q ready", artifact.Type, artifact.Name),
		ArtifactRef: artifact.ID,
	})
	if err != nil {
		return fmt.Errorf("notify handoff: %w", err)
	}

	if err := p.store.SetContext(p.session, handoffKey(artifact.Type, to), artifact.ID, from, handoffContextTTL); err != nil {
		return fmt.Errorf("notify handoff: %w", err)
	}
	return nil
}

// NotifyDependencyReady tells a downstream agent that one of its
// dependencies has been satisfied. The recipient sees the message on
// its next poll, including the second return of CheckForHandoffs.
func (p *ContextProvider) NotifyDependencyReady(from, to, requirementID string) error {
	_, err := p.store.SendMessage(models.Message{
		Session: p.session,
		From:    from,
		To:      to,
		Type:    models.MessageDependencyReady,
		Content: requirementID,
	})
	if err != nil {
		return fmt.Errorf("notify dependency ready: %w", err)
	}
	return nil
}

// CheckForHandoffs drains the agent's queue. The drain is destructive:
// every pending message is marked processed, so non-handoff messages
// (dependency_ready, status updates) come back in the second slice for
// the caller to act on.
func (p *ContextProvider) CheckForHandoffs(agent string) (handoffs, others []*models.Message, err error) {
	msgs, err := p.store.PollMessages(p.session, agent)
	if err != nil {
		return nil, nil, fmt.Errorf("check for handoffs: %w", err)
	}

	for _, msg := range msgs {
		if msg.Type == models.MessageHandoff {
			handoffs = append(handoffs, msg)
			continue
		}
		p.logger.Log("runner: %s received %s from %s: %s", agent, msg.Type, msg.From, msg.Content)
		others = append(others, msg)
	}
	return handoffs, others, nil
}
