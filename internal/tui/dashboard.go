// Package tui provides the live coordination dashboard for snowhive.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/snowhive/snowhive/pkg/models"
)

// Snapshot is one polled view of a session's coordination state.
type Snapshot struct {
	Agents      []*models.AgentStatusRecord
	Pending     int
	Deployments []*models.DeploymentRecord
	Err         error
}

// SnapshotFunc produces the current snapshot; the dashboard calls it on
// every tick.
type SnapshotFunc func() Snapshot

type tickMsg time.Time

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	stateStyles = map[models.AgentState]lipgloss.Style{
		models.AgentSpawned:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		models.AgentActive:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC857")),
		models.AgentBlocked:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		models.AgentCompleted: lipgloss.NewStyle().Foreground(lipgloss.Color("#96E6A1")),
	}
)

// Dashboard is the bubbletea model for the session status screen.
type Dashboard struct {
	session  string
	snapshot SnapshotFunc
	refresh  time.Duration

	current  Snapshot
	width    int
	quitting bool
}

// NewDashboard creates a dashboard for one session. A non-positive
// refresh falls back to one second.
func NewDashboard(session string, snapshot SnapshotFunc, refresh time.Duration) *Dashboard {
	if refresh <= 0 {
		refresh = time.Second
	}
	return &Dashboard{
		session:  session,
		snapshot: snapshot,
		refresh:  refresh,
		width:    80,
	}
}

// Init implements tea.Model.
func (d *Dashboard) Init() tea.Cmd {
	d.current = d.snapshot()
	return d.tick()
}

func (d *Dashboard) tick() tea.Cmd {
	return tea.Tick(d.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			d.quitting = true
			return d, tea.Quit
		}

	case tea.WindowSizeMsg:
		d.width = msg.Width

	case tickMsg:
		d.current = d.snapshot()
		return d, d.tick()
	}

	return d, nil
}

// View implements tea.Model.
func (d *Dashboard) View() string {
	if d.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("snowhive session "+d.session) + "\n\n")

	if d.current.Err != nil {
		b.WriteString(errStyle.Render("store error: "+d.current.Err.Error()) + "\n")
		return b.String()
	}

	b.WriteString(d.viewAgents())
	b.WriteString("\n")
	b.WriteString(d.viewDeployments())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d pending messages | q to quit", d.current.Pending)))
	b.WriteString("\n")
	return b.String()
}

func (d *Dashboard) viewAgents() string {
	if len(d.current.Agents) == 0 {
		return dimStyle.Render("no agents") + "\n"
	}

	var b strings.Builder
	for _, a := range d.current.Agents {
		style, ok := stateStyles[a.State]
		if !ok {
			style = dimStyle
		}
		line := fmt.Sprintf("  %-12s %s %3d%%", a.Agent, style.Render(fmt.Sprintf("%-9s", a.State)), a.Progress)
		if a.CurrentTool != "" {
			line += "  " + a.CurrentTool
		}
		if a.ErrorState != "" {
			line += "  " + errStyle.Render(a.ErrorState)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (d *Dashboard) viewDeployments() string {
	if len(d.current.Deployments) == 0 {
		return dimStyle.Render("no deployments") + "\n"
	}

	var b strings.Builder
	b.WriteString(dimStyle.Render("recent deployments") + "\n")
	for _, dep := range d.current.Deployments {
		mark := "✓"
		if !dep.Success {
			mark = "✗"
		}
		b.WriteString(fmt.Sprintf("  %s %s %s (%s) %s\n",
			mark, dep.ArtifactType, dep.ArtifactName, dep.Agent,
			dimStyle.Render(dep.DeployedAt.Format("15:04:05"))))
	}
	return b.String()
}

// Run starts the dashboard and blocks until the user quits.
func Run(session string, snapshot SnapshotFunc, refresh time.Duration) error {
	p := tea.NewProgram(NewDashboard(session, snapshot, refresh), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
