package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/snowhive/snowhive/pkg/models"
)

func staticSnapshot(s Snapshot) SnapshotFunc {
	return func() Snapshot { return s }
}

func TestDashboard_ViewShowsAgents(t *testing.T) {
	d := NewDashboard("s1", staticSnapshot(Snapshot{
		Agents: []*models.AgentStatusRecord{
			{Agent: "data-agent", State: models.AgentActive, Progress: 40, CurrentTool: "create_table"},
			{Agent: "ui-agent", State: models.AgentBlocked, ErrorState: "schema conflict"},
		},
		Pending: 2,
	}), time.Second)
	d.Init()

	view := d.View()
	for _, want := range []string{"s1", "data-agent", "create_table", "ui-agent", "schema conflict", "2 pending"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestDashboard_ViewShowsDeployments(t *testing.T) {
	d := NewDashboard("s1", staticSnapshot(Snapshot{
		Deployments: []*models.DeploymentRecord{
			{Agent: "ui-agent", ArtifactType: "widget", ArtifactName: "approval-panel", Success: true, DeployedAt: time.Now()},
		},
	}), time.Second)
	d.Init()

	view := d.View()
	if !strings.Contains(view, "approval-panel") {
		t.Error("view should list the deployment")
	}
}

func TestDashboard_ViewShowsStoreError(t *testing.T) {
	d := NewDashboard("s1", staticSnapshot(Snapshot{
		Err: errors.New("database is locked"),
	}), time.Second)
	d.Init()

	if !strings.Contains(d.View(), "database is locked") {
		t.Error("view should surface store errors")
	}
}

func TestDashboard_QuitKeys(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c", "esc"} {
		d := NewDashboard("s1", staticSnapshot(Snapshot{}), time.Second)
		d.Init()

		var msg tea.KeyMsg
		switch key {
		case "q":
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		}

		_, cmd := d.Update(msg)
		if cmd == nil {
			t.Errorf("%s should quit", key)
		}
	}
}

func TestDashboard_TickRefreshesSnapshot(t *testing.T) {
	calls := 0
	d := NewDashboard("s1", func() Snapshot {
		calls++
		return Snapshot{Pending: calls}
	}, time.Second)
	d.Init()

	if calls != 1 {
		t.Fatalf("init should take one snapshot, got %d", calls)
	}

	_, cmd := d.Update(tickMsg(time.Now()))
	if calls != 2 {
		t.Errorf("tick should take a fresh snapshot, got %d calls", calls)
	}
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
}
