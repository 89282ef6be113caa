package coord

import (
	"time"

	"github.com/snowhive/snowhive/pkg/models"
)

// StatusStore tracks per-agent lifecycle state within a session.
type StatusStore interface {
	UpsertAgentStatus(rec models.AgentStatusRecord) error
	GetAgentStatus(session, agent string) (*models.AgentStatusRecord, error)
	ListAgentStatuses(session string) ([]*models.AgentStatusRecord, error)
}

// MessageStore is the append-only inter-agent message queue.
type MessageStore interface {
	SendMessage(msg models.Message) (string, error)
	PollMessages(session, agent string) ([]*models.Message, error)
	PendingMessageCount(session string) (int, error)
}

// ContextStore is the shared key-value context with optional TTLs.
type ContextStore interface {
	SetContext(session, key, value, creator string, ttl time.Duration) error
	GetContext(session, key string) (*models.ContextEntry, error)
	ListContext(session string) ([]*models.ContextEntry, error)
}

// ArtifactStore records produced artifacts; rows survive ClearSession.
type ArtifactStore interface {
	RecordArtifact(a models.Artifact) error
	ListArtifacts(session string) ([]*models.Artifact, error)
}

// AuditStore holds the performance and deployment history.
type AuditStore interface {
	RecordPerformance(rec models.PerformanceRecord) error
	ListPerformance(session string) ([]*models.PerformanceRecord, error)
	PurgeOldPerformance(cutoff time.Time) (int64, error)
	RecordDeployment(rec models.DeploymentRecord) error
	ListDeployments(session string, limit int) ([]*models.DeploymentRecord, error)
}

// Store is the full coordination surface used by the runner and CLI.
type Store interface {
	StatusStore
	MessageStore
	ContextStore
	ArtifactStore
	AuditStore
	ClearSession(session string) error
	Close() error
}

var _ Store = (*DB)(nil)
