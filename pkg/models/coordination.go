package models

import "time"

// AgentState represents the lifecycle state of a coordinated agent.
type AgentState string

const (
	// AgentSpawned indicates the agent exists but has not started work.
	AgentSpawned AgentState = "spawned"
	// AgentActive indicates the agent is executing an operation.
	AgentActive AgentState = "active"
	// AgentBlocked indicates the agent failed or is waiting on escalation.
	AgentBlocked AgentState = "blocked"
	// AgentCompleted indicates the agent finished its work.
	AgentCompleted AgentState = "completed"
)

// Valid returns true if the state is a known value.
func (s AgentState) Valid() bool {
	switch s {
	case AgentSpawned, AgentActive, AgentBlocked, AgentCompleted:
		return true
	default:
		return false
	}
}

// AgentStatusRecord is the durable status row for one (session, agent).
type AgentStatusRecord struct {
	Session string `json:"session"`
	Agent   string `json:"agent"`
	// State is the lifecycle state.
	State AgentState `json:"state"`
	// Progress is percent complete (0-100).
	Progress int `json:"progress"`
	// CurrentTool names the operation in flight, empty when idle.
	CurrentTool string `json:"current_tool,omitempty"`
	// ErrorState carries the failure description for blocked agents.
	ErrorState string `json:"error_state,omitempty"`
	// LastActivity is monotonically non-decreasing across upserts.
	LastActivity time.Time `json:"last_activity"`
}

// MessageType classifies inter-agent messages.
type MessageType string

const (
	// MessageHandoff announces an artifact ready for a downstream agent.
	MessageHandoff MessageType = "handoff"
	// MessageDependencyReady announces a dependency has been satisfied.
	MessageDependencyReady MessageType = "dependency_ready"
	// MessageError reports a failure to another agent.
	MessageError MessageType = "error"
	// MessageStatusUpdate carries an informational status change.
	MessageStatusUpdate MessageType = "status_update"
)

// Valid returns true if the message type is a known value.
func (t MessageType) Valid() bool {
	switch t {
	case MessageHandoff, MessageDependencyReady, MessageError, MessageStatusUpdate:
		return true
	default:
		return false
	}
}

// Message is an append-only inter-agent message. Processed flips exactly
// once, when a poll returns the message to its recipient.
type Message struct {
	ID      string      `json:"id"`
	Session string      `json:"session"`
	From    string      `json:"from"`
	To      string      `json:"to"`
	Type    MessageType `json:"type"`
	Content string      `json:"content"`
	// ArtifactRef optionally points at an artifact row.
	ArtifactRef string    `json:"artifact_ref,omitempty"`
	Processed   bool      `json:"processed"`
	SentAt      time.Time `json:"sent_at"`
}

// Artifact is a produced work product handed between agents. Artifact
// rows survive session clears as a durable audit trail.
type Artifact struct {
	ID      string `json:"id"`
	Session string `json:"session"`
	// Type is the artifact kind (widget, table, script, ...).
	Type string `json:"type"`
	// Name is the display name.
	Name string `json:"name"`
	// CreatedBy is the producing agent.
	CreatedBy string `json:"created_by"`
	// Payload is the artifact body or a reference to it.
	Payload   string    `json:"payload,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContextEntry is a shared key-value row with optional expiry.
// Writes are last-writer-wins; reads skip expired entries.
type ContextEntry struct {
	Session string `json:"session"`
	Key     string `json:"key"`
	Value   string `json:"value"`
	Creator string `json:"creator"`
	// ExpiresAt is nil for entries that never expire.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Expired returns true if the entry has a TTL that has elapsed.
func (e *ContextEntry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && !now.Before(*e.ExpiresAt)
}

// EscalationIssue describes a hard failure handed to the supervisor.
type EscalationIssue struct {
	// Type classifies the failure (capacity, dependency, conflict, ...).
	Type string `json:"type"`
	// Priority ranks how urgently the supervisor should intervene.
	Priority Priority `json:"priority"`
	// Description explains what the agent was trying to do and how it failed.
	Description string `json:"description"`
	// AttemptedSolutions lists what the agent already tried.
	AttemptedSolutions []string `json:"attempted_solutions,omitempty"`
}

// PerformanceRecord is one append-only operation timing row.
type PerformanceRecord struct {
	Session    string        `json:"session"`
	Agent      string        `json:"agent"`
	Operation  string        `json:"operation"`
	Duration   time.Duration `json:"duration"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// DeploymentRecord is one append-only deployment audit row, retained
// independently of coordination state.
type DeploymentRecord struct {
	Session string `json:"session"`
	Agent   string `json:"agent"`
	// ArtifactType is the deployed artifact kind.
	ArtifactType string `json:"artifact_type"`
	// ArtifactName is the deployed artifact name.
	ArtifactName string    `json:"artifact_name"`
	Success      bool      `json:"success"`
	Detail       string    `json:"detail,omitempty"`
	DeployedAt   time.Time `json:"deployed_at"`
}

// OperationResult is the structured outcome of one wrapped unit of work.
// A failing operation produces Success=false rather than an error.
type OperationResult struct {
	Success  bool          `json:"success"`
	Output   string        `json:"output,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}
