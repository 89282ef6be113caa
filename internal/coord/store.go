package coord

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/snowhive/snowhive/pkg/models"
)

// UpsertAgentStatus creates or updates the status row for one
// (session, agent). LastActivity never moves backwards: a stale writer
// can update state fields but cannot rewind the activity clock.
func (db *DB) UpsertAgentStatus(rec models.AgentStatusRecord) error {
	if rec.Session == "" || rec.Agent == "" {
		return fmt.Errorf("upsert agent status: session and agent are required")
	}
	if !rec.State.Valid() {
		return fmt.Errorf("upsert agent status: invalid state %q", rec.State)
	}
	if rec.LastActivity.IsZero() {
		rec.LastActivity = time.Now()
	}

	_, err := db.Exec(`
		INSERT INTO agent_status (session, agent, state, progress, current_tool, error_state, last_activity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session, agent) DO UPDATE SET
			state = excluded.state,
			progress = excluded.progress,
			current_tool = excluded.current_tool,
			error_state = excluded.error_state,
			last_activity = MAX(agent_status.last_activity, excluded.last_activity)
	`, rec.Session, rec.Agent, string(rec.State), rec.Progress, rec.CurrentTool, rec.ErrorState, formatTime(rec.LastActivity))
	if err != nil {
		return fmt.Errorf("upsert agent status: %w", err)
	}
	return nil
}

// GetAgentStatus returns the status row for one agent, or nil if none
// exists.
func (db *DB) GetAgentStatus(session, agent string) (*models.AgentStatusRecord, error) {
	row := db.QueryRow(`
		SELECT session, agent, state, progress, current_tool, error_state, last_activity
		FROM agent_status WHERE session = ? AND agent = ?
	`, session, agent)

	rec, err := scanAgentStatus(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get agent status: %w", err)
	}
	return rec, nil
}

// ListAgentStatuses returns every status row in a session, ordered by
// agent name.
func (db *DB) ListAgentStatuses(session string) ([]*models.AgentStatusRecord, error) {
	rows, err := db.Query(`
		SELECT session, agent, state, progress, current_tool, error_state, last_activity
		FROM agent_status WHERE session = ? ORDER BY agent
	`, session)
	if err != nil {
		return nil, fmt.Errorf("list agent statuses: %w", err)
	}
	defer rows.Close()

	var records []*models.AgentStatusRecord
	for rows.Next() {
		rec, err := scanAgentStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agent status: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAgentStatus(s scanner) (*models.AgentStatusRecord, error) {
	var rec models.AgentStatusRecord
	var state, lastActivity string
	var tool, errState sql.NullString

	if err := s.Scan(&rec.Session, &rec.Agent, &state, &rec.Progress, &tool, &errState, &lastActivity); err != nil {
		return nil, err
	}

	rec.State = models.AgentState(state)
	rec.CurrentTool = tool.String
	rec.ErrorState = errState.String
	t, err := parseTime(lastActivity)
	if err != nil {
		return nil, fmt.Errorf("parse last_activity: %w", err)
	}
	rec.LastActivity = t
	return &rec, nil
}

// SendMessage appends a message to the session's queue. The ID is
// assigned here; callers never supply one.
func (db *DB) SendMessage(msg models.Message) (string, error) {
	if msg.Session == "" || msg.From == "" || msg.To == "" {
		return "", fmt.Errorf("send message: session, from, and to are required")
	}
	if !msg.Type.Valid() {
		return "", fmt.Errorf("send message: invalid type %q", msg.Type)
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}

	id := uuid.New().String()
	_, err := db.Exec(`
		INSERT INTO messages (id, session, from_agent, to_agent, type, content, artifact_ref, processed, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)
	`, id, msg.Session, msg.From, msg.To, string(msg.Type), msg.Content, msg.ArtifactRef, formatTime(msg.SentAt))
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return id, nil
}

// PollMessages returns the recipient's unprocessed messages in send
// order and marks them processed in the same transaction, so each
// message is delivered at most once even across concurrent pollers.
func (db *DB) PollMessages(session, agent string) ([]*models.Message, error) {
	var messages []*models.Message

	err := db.Transaction(func(tx *sql.Tx) error {
		rows, err := tx.Query(`
			SELECT id, session, from_agent, to_agent, type, content, artifact_ref, sent_at
			FROM messages
			WHERE session = ? AND to_agent = ? AND processed = 0
			ORDER BY sent_at, id
		`, session, agent)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var msg models.Message
			var typ, sentAt string
			var content, ref sql.NullString
			if err := rows.Scan(&msg.ID, &msg.Session, &msg.From, &msg.To, &typ, &content, &ref, &sentAt); err != nil {
				return err
			}
			msg.Type = models.MessageType(typ)
			msg.Content = content.String
			msg.ArtifactRef = ref.String
			t, err := parseTime(sentAt)
			if err != nil {
				return fmt.Errorf("parse sent_at: %w", err)
			}
			msg.SentAt = t
			msg.Processed = true
			messages = append(messages, &msg)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for _, msg := range messages {
			if _, err := tx.Exec("UPDATE messages SET processed = 1 WHERE id = ?", msg.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("poll messages: %w", err)
	}
	return messages, nil
}

// PendingMessageCount returns the number of undelivered messages in a
// session, across all recipients.
func (db *DB) PendingMessageCount(session string) (int, error) {
	var count int
	row := db.QueryRow("SELECT COUNT(*) FROM messages WHERE session = ? AND processed = 0", session)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending messages: %w", err)
	}
	return count, nil
}

// SetContext writes a shared context entry. Writes are last-writer-wins
// on (session, key). A ttl of zero means the entry never expires.
func (db *DB) SetContext(session, key, value, creator string, ttl time.Duration) error {
	if session == "" || key == "" {
		return fmt.Errorf("set context: session and key are required")
	}

	now := time.Now()
	var expires any
	if ttl > 0 {
		expires = formatTime(now.Add(ttl))
	}

	_, err := db.Exec(`
		INSERT INTO context_entries (session, key, value, creator, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session, key) DO UPDATE SET
			value = excluded.value,
			creator = excluded.creator,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, session, key, value, creator, expires, formatTime(now))
	if err != nil {
		return fmt.Errorf("set context: %w", err)
	}
	return nil
}

// GetContext returns a context entry, or nil when the key is absent or
// its TTL has elapsed. Expired rows are left for ClearSession to sweep.
func (db *DB) GetContext(session, key string) (*models.ContextEntry, error) {
	row := db.QueryRow(`
		SELECT session, key, value, creator, expires_at, updated_at
		FROM context_entries WHERE session = ? AND key = ?
	`, session, key)

	var entry models.ContextEntry
	var value, creator, expires sql.NullString
	var updated string
	err := row.Scan(&entry.Session, &entry.Key, &value, &creator, &expires, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get context: %w", err)
	}

	entry.Value = value.String
	entry.Creator = creator.String
	entry.ExpiresAt = parseNullableTime(expires)
	t, err := parseTime(updated)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	entry.UpdatedAt = t

	if entry.Expired(time.Now()) {
		return nil, nil
	}
	return &entry, nil
}

// ListContext returns all live (non-expired) context entries in a
// session, ordered by key.
func (db *DB) ListContext(session string) ([]*models.ContextEntry, error) {
	rows, err := db.Query(`
		SELECT session, key, value, creator, expires_at, updated_at
		FROM context_entries WHERE session = ? ORDER BY key
	`, session)
	if err != nil {
		return nil, fmt.Errorf("list context: %w", err)
	}
	defer rows.Close()

	now := time.Now()
	var entries []*models.ContextEntry
	for rows.Next() {
		var entry models.ContextEntry
		var value, creator, expires sql.NullString
		var updated string
		if err := rows.Scan(&entry.Session, &entry.Key, &value, &creator, &expires, &updated); err != nil {
			return nil, fmt.Errorf("scan context entry: %w", err)
		}
		entry.Value = value.String
		entry.Creator = creator.String
		entry.ExpiresAt = parseNullableTime(expires)
		t, err := parseTime(updated)
		if err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		entry.UpdatedAt = t

		if entry.Expired(now) {
			continue
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// RecordArtifact upserts an artifact row by ID. Re-recording an
// existing artifact updates its payload and timestamp.
func (db *DB) RecordArtifact(a models.Artifact) error {
	if a.ID == "" || a.Session == "" {
		return fmt.Errorf("record artifact: id and session are required")
	}
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	_, err := db.Exec(`
		INSERT INTO artifacts (id, session, type, name, created_by, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			name = excluded.name,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, a.ID, a.Session, a.Type, a.Name, a.CreatedBy, a.Payload, formatTime(a.CreatedAt), formatTime(a.UpdatedAt))
	if err != nil {
		return fmt.Errorf("record artifact: %w", err)
	}
	return nil
}

// ListArtifacts returns a session's artifacts, newest first.
func (db *DB) ListArtifacts(session string) ([]*models.Artifact, error) {
	rows, err := db.Query(`
		SELECT id, session, type, name, created_by, payload, created_at, updated_at
		FROM artifacts WHERE session = ? ORDER BY created_at DESC, id
	`, session)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*models.Artifact
	for rows.Next() {
		var a models.Artifact
		var createdBy, payload sql.NullString
		var created, updated string
		if err := rows.Scan(&a.ID, &a.Session, &a.Type, &a.Name, &createdBy, &payload, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		a.CreatedBy = createdBy.String
		a.Payload = payload.String
		ct, err := parseTime(created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		ut, err := parseTime(updated)
		if err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		a.CreatedAt, a.UpdatedAt = ct, ut
		artifacts = append(artifacts, &a)
	}
	return artifacts, rows.Err()
}

// RecordPerformance appends one operation timing row.
func (db *DB) RecordPerformance(rec models.PerformanceRecord) error {
	if rec.Session == "" || rec.Agent == "" || rec.Operation == "" {
		return fmt.Errorf("record performance: session, agent, and operation are required")
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}

	_, err := db.Exec(`
		INSERT INTO performance (session, agent, operation, duration_ms, success, error, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.Session, rec.Agent, rec.Operation, rec.Duration.Milliseconds(), boolToInt(rec.Success), rec.Error, formatTime(rec.RecordedAt))
	if err != nil {
		return fmt.Errorf("record performance: %w", err)
	}
	return nil
}

// ListPerformance returns a session's performance rows, newest first.
func (db *DB) ListPerformance(session string) ([]*models.PerformanceRecord, error) {
	rows, err := db.Query(`
		SELECT session, agent, operation, duration_ms, success, error, recorded_at
		FROM performance WHERE session = ? ORDER BY recorded_at DESC, id DESC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("list performance: %w", err)
	}
	defer rows.Close()

	var records []*models.PerformanceRecord
	for rows.Next() {
		var rec models.PerformanceRecord
		var durationMs int64
		var success int
		var errText sql.NullString
		var recorded string
		if err := rows.Scan(&rec.Session, &rec.Agent, &rec.Operation, &durationMs, &success, &errText, &recorded); err != nil {
			return nil, fmt.Errorf("scan performance record: %w", err)
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		rec.Success = success != 0
		rec.Error = errText.String
		t, err := parseTime(recorded)
		if err != nil {
			return nil, fmt.Errorf("parse recorded_at: %w", err)
		}
		rec.RecordedAt = t
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// PurgeOldPerformance deletes performance rows older than the cutoff,
// across all sessions, and returns the number removed.
func (db *DB) PurgeOldPerformance(cutoff time.Time) (int64, error) {
	res, err := db.Exec("DELETE FROM performance WHERE recorded_at < ?", formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("purge performance: %w", err)
	}
	return res.RowsAffected()
}

// RecordDeployment appends one deployment audit row.
func (db *DB) RecordDeployment(rec models.DeploymentRecord) error {
	if rec.Session == "" || rec.Agent == "" {
		return fmt.Errorf("record deployment: session and agent are required")
	}
	if rec.DeployedAt.IsZero() {
		rec.DeployedAt = time.Now()
	}

	_, err := db.Exec(`
		INSERT INTO deployments (session, agent, artifact_type, artifact_name, success, detail, deployed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.Session, rec.Agent, rec.ArtifactType, rec.ArtifactName, boolToInt(rec.Success), rec.Detail, formatTime(rec.DeployedAt))
	if err != nil {
		return fmt.Errorf("record deployment: %w", err)
	}
	return nil
}

// ListDeployments returns a session's deployment rows, newest first,
// capped at limit when limit > 0.
func (db *DB) ListDeployments(session string, limit int) ([]*models.DeploymentRecord, error) {
	query := `
		SELECT session, agent, artifact_type, artifact_name, success, detail, deployed_at
		FROM deployments WHERE session = ? ORDER BY deployed_at DESC, id DESC
	`
	args := []any{session}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list deployments: %w", err)
	}
	defer rows.Close()

	var records []*models.DeploymentRecord
	for rows.Next() {
		var rec models.DeploymentRecord
		var success int
		var detail sql.NullString
		var deployed string
		if err := rows.Scan(&rec.Session, &rec.Agent, &rec.ArtifactType, &rec.ArtifactName, &success, &detail, &deployed); err != nil {
			return nil, fmt.Errorf("scan deployment record: %w", err)
		}
		rec.Success = success != 0
		rec.Detail = detail.String
		t, err := parseTime(deployed)
		if err != nil {
			return nil, fmt.Errorf("parse deployed_at: %w", err)
		}
		rec.DeployedAt = t
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// ClearSession removes a session's coordination state: agent status,
// messages, context entries, and performance rows. Artifact and
// deployment rows are retained as the session's audit trail.
func (db *DB) ClearSession(session string) error {
	if session == "" {
		return fmt.Errorf("clear session: session is required")
	}

	err := db.Transaction(func(tx *sql.Tx) error {
		for _, table := range []string{"agent_status", "messages", "context_entries", "performance"} {
			if _, err := tx.Exec("DELETE FROM "+table+" WHERE session = ?", session); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
