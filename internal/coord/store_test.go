package coord

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/snowhive/snowhive/pkg/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "coordination.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := db.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestExec_NonTransientErrorFailsFast(t *testing.T) {
	db := openTestDB(t)

	start := time.Now()
	_, err := db.Exec("INSERT INTO agent_status (session) VALUES (?)", "s1")
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("constraint violation should fail")
	}
	// A non-transient error must not burn the retry backoff.
	if elapsed >= 100*time.Millisecond {
		t.Errorf("constraint violation took %s, should fail without retrying", elapsed)
	}
}

func TestUpsertAgentStatus_CreatesAndUpdates(t *testing.T) {
	db := openTestDB(t)

	rec := models.AgentStatusRecord{
		Session:  "s1",
		Agent:    "a1",
		State:    models.AgentSpawned,
		Progress: 0,
	}
	if err := db.UpsertAgentStatus(rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	rec.State = models.AgentActive
	rec.Progress = 40
	rec.CurrentTool = "deploy_widget"
	if err := db.UpsertAgentStatus(rec); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := db.GetAgentStatus("s1", "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("status should exist")
	}
	if got.State != models.AgentActive || got.Progress != 40 || got.CurrentTool != "deploy_widget" {
		t.Errorf("unexpected status: %+v", got)
	}
}

func TestUpsertAgentStatus_LastActivityMonotonic(t *testing.T) {
	db := openTestDB(t)

	now := time.Now()
	newer := models.AgentStatusRecord{
		Session: "s1", Agent: "a1",
		State:        models.AgentActive,
		LastActivity: now,
	}
	if err := db.UpsertAgentStatus(newer); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// A stale writer updates the state but must not rewind the clock.
	stale := newer
	stale.State = models.AgentBlocked
	stale.LastActivity = now.Add(-time.Hour)
	if err := db.UpsertAgentStatus(stale); err != nil {
		t.Fatalf("stale upsert: %v", err)
	}

	got, err := db.GetAgentStatus("s1", "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State != models.AgentBlocked {
		t.Errorf("state = %s, want blocked", got.State)
	}
	if got.LastActivity.Before(now.Add(-time.Second)) {
		t.Errorf("last activity rewound to %v", got.LastActivity)
	}
}

func TestUpsertAgentStatus_RejectsInvalidState(t *testing.T) {
	db := openTestDB(t)

	err := db.UpsertAgentStatus(models.AgentStatusRecord{
		Session: "s1", Agent: "a1", State: "sleeping",
	})
	if err == nil {
		t.Fatal("invalid state should be rejected")
	}
}

func TestGetAgentStatus_MissingReturnsNil(t *testing.T) {
	db := openTestDB(t)

	got, err := db.GetAgentStatus("s1", "ghost")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("missing agent should return nil, got %+v", got)
	}
}

func TestPollMessages_DeliversAtMostOnce(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 3; i++ {
		_, err := db.SendMessage(models.Message{
			Session: "s1",
			From:    "widget-agent",
			To:      "flow-agent",
			Type:    models.MessageHandoff,
			Content: fmt.Sprintf("artifact %d ready", i),
			SentAt:  time.Now().Add(time.Duration(i) * time.Millisecond),
		})
		if err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	first, err := db.PollMessages("s1", "flow-agent")
	if err != nil {
		t.Fatalf("first poll: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("first poll returned %d messages, want 3", len(first))
	}
	for i, msg := range first {
		want := fmt.Sprintf("artifact %d ready", i)
		if msg.Content != want {
			t.Errorf("message %d content = %q, want %q", i, msg.Content, want)
		}
	}

	second, err := db.PollMessages("s1", "flow-agent")
	if err != nil {
		t.Fatalf("second poll: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second poll returned %d messages, want 0", len(second))
	}
}

func TestPollMessages_OnlyForRecipient(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.SendMessage(models.Message{
		Session: "s1", From: "a", To: "b", Type: models.MessageStatusUpdate,
	}); err != nil {
		t.Fatalf("send: %v", err)
	}

	msgs, err := db.PollMessages("s1", "c")
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("wrong recipient got %d messages", len(msgs))
	}

	count, err := db.PendingMessageCount("s1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("pending count = %d, want 1", count)
	}
}

func TestSendMessage_RejectsInvalidType(t *testing.T) {
	db := openTestDB(t)

	_, err := db.SendMessage(models.Message{
		Session: "s1", From: "a", To: "b", Type: "telegram",
	})
	if err == nil {
		t.Fatal("invalid message type should be rejected")
	}
}

func TestContext_TTLExpires(t *testing.T) {
	db := openTestDB(t)

	if err := db.SetContext("s1", "token", "abc", "a1", time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	got, err := db.GetContext("s1", "token")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("expired entry should read as nil, got %+v", got)
	}
}

func TestContext_NoTTLNeverExpires(t *testing.T) {
	db := openTestDB(t)

	if err := db.SetContext("s1", "schema", "incident", "a1", 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := db.GetContext("s1", "schema")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("entry without TTL should be readable")
	}
	if got.Value != "incident" || got.Creator != "a1" {
		t.Errorf("unexpected entry: %+v", got)
	}
	if got.ExpiresAt != nil {
		t.Errorf("expires_at should be nil, got %v", got.ExpiresAt)
	}
}

func TestContext_LastWriterWins(t *testing.T) {
	db := openTestDB(t)

	if err := db.SetContext("s1", "k", "first", "a1", 0); err != nil {
		t.Fatalf("first set: %v", err)
	}
	if err := db.SetContext("s1", "k", "second", "a2", 0); err != nil {
		t.Fatalf("second set: %v", err)
	}

	got, err := db.GetContext("s1", "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Value != "second" || got.Creator != "a2" {
		t.Errorf("last write should win, got %+v", got)
	}
}

func TestListContext_SkipsExpired(t *testing.T) {
	db := openTestDB(t)

	if err := db.SetContext("s1", "live", "v", "a1", 0); err != nil {
		t.Fatalf("set live: %v", err)
	}
	if err := db.SetContext("s1", "dead", "v", "a1", time.Millisecond); err != nil {
		t.Fatalf("set dead: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	entries, err := db.ListContext("s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Key != "live" {
		t.Errorf("list should contain only the live entry, got %d entries", len(entries))
	}
}

func TestRecordArtifact_UpsertsByID(t *testing.T) {
	db := openTestDB(t)

	a := models.Artifact{
		ID: "art-1", Session: "s1",
		Type: "widget", Name: "approval-panel",
		CreatedBy: "ui-agent", Payload: "v1",
	}
	if err := db.RecordArtifact(a); err != nil {
		t.Fatalf("insert: %v", err)
	}

	a.Payload = "v2"
	if err := db.RecordArtifact(a); err != nil {
		t.Fatalf("update: %v", err)
	}

	artifacts, err := db.ListArtifacts("s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("got %d artifacts, want 1", len(artifacts))
	}
	if artifacts[0].Payload != "v2" {
		t.Errorf("payload = %q, want v2", artifacts[0].Payload)
	}
}

func TestClearSession_RetainsAuditTrail(t *testing.T) {
	db := openTestDB(t)

	if err := db.UpsertAgentStatus(models.AgentStatusRecord{
		Session: "s1", Agent: "a1", State: models.AgentCompleted,
	}); err != nil {
		t.Fatalf("status: %v", err)
	}
	if _, err := db.SendMessage(models.Message{
		Session: "s1", From: "a1", To: "a2", Type: models.MessageStatusUpdate,
	}); err != nil {
		t.Fatalf("message: %v", err)
	}
	if err := db.SetContext("s1", "k", "v", "a1", 0); err != nil {
		t.Fatalf("context: %v", err)
	}
	if err := db.RecordPerformance(models.PerformanceRecord{
		Session: "s1", Agent: "a1", Operation: "deploy", Success: true,
	}); err != nil {
		t.Fatalf("performance: %v", err)
	}
	if err := db.RecordArtifact(models.Artifact{
		ID: "art-1", Session: "s1", Type: "widget", Name: "panel",
	}); err != nil {
		t.Fatalf("artifact: %v", err)
	}
	if err := db.RecordDeployment(models.DeploymentRecord{
		Session: "s1", Agent: "a1", ArtifactType: "widget", ArtifactName: "panel", Success: true,
	}); err != nil {
		t.Fatalf("deployment: %v", err)
	}

	if err := db.ClearSession("s1"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	statuses, err := db.ListAgentStatuses("s1")
	if err != nil {
		t.Fatalf("list statuses: %v", err)
	}
	if len(statuses) != 0 {
		t.Errorf("statuses survived clear: %d", len(statuses))
	}

	count, err := db.PendingMessageCount("s1")
	if err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if count != 0 {
		t.Errorf("messages survived clear: %d", count)
	}

	entries, err := db.ListContext("s1")
	if err != nil {
		t.Fatalf("list context: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("context survived clear: %d", len(entries))
	}

	perf, err := db.ListPerformance("s1")
	if err != nil {
		t.Fatalf("list performance: %v", err)
	}
	if len(perf) != 0 {
		t.Errorf("performance survived clear: %d", len(perf))
	}

	artifacts, err := db.ListArtifacts("s1")
	if err != nil {
		t.Fatalf("list artifacts: %v", err)
	}
	if len(artifacts) != 1 {
		t.Errorf("artifacts should survive clear, got %d", len(artifacts))
	}

	deployments, err := db.ListDeployments("s1", 0)
	if err != nil {
		t.Fatalf("list deployments: %v", err)
	}
	if len(deployments) != 1 {
		t.Errorf("deployments should survive clear, got %d", len(deployments))
	}
}

func TestClearSession_ScopedToSession(t *testing.T) {
	db := openTestDB(t)

	for _, session := range []string{"s1", "s2"} {
		if err := db.UpsertAgentStatus(models.AgentStatusRecord{
			Session: session, Agent: "a1", State: models.AgentActive,
		}); err != nil {
			t.Fatalf("status %s: %v", session, err)
		}
	}

	if err := db.ClearSession("s1"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	statuses, err := db.ListAgentStatuses("s2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(statuses) != 1 {
		t.Errorf("other session should be untouched, got %d statuses", len(statuses))
	}
}

func TestPurgeOldPerformance(t *testing.T) {
	db := openTestDB(t)

	old := models.PerformanceRecord{
		Session: "s1", Agent: "a1", Operation: "deploy",
		RecordedAt: time.Now().Add(-48 * time.Hour),
	}
	recent := models.PerformanceRecord{
		Session: "s1", Agent: "a1", Operation: "deploy",
		RecordedAt: time.Now(),
	}
	if err := db.RecordPerformance(old); err != nil {
		t.Fatalf("record old: %v", err)
	}
	if err := db.RecordPerformance(recent); err != nil {
		t.Fatalf("record recent: %v", err)
	}

	purged, err := db.PurgeOldPerformance(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged %d rows, want 1", purged)
	}

	remaining, err := db.ListPerformance("s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("got %d remaining rows, want 1", len(remaining))
	}
}

func TestListDeployments_Limit(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 5; i++ {
		if err := db.RecordDeployment(models.DeploymentRecord{
			Session: "s1", Agent: "a1",
			ArtifactType: "widget", ArtifactName: fmt.Sprintf("w%d", i),
			Success:    true,
			DeployedAt: time.Now().Add(time.Duration(i) * time.Millisecond),
		}); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	deployments, err := db.ListDeployments("s1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(deployments) != 2 {
		t.Fatalf("got %d deployments, want 2", len(deployments))
	}
	if deployments[0].ArtifactName != "w4" {
		t.Errorf("newest first: got %s, want w4", deployments[0].ArtifactName)
	}
}
