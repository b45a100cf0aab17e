// Package tui is the interactive terminal front end.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pablasso/goalplan/internal/ai"
	"github.com/pablasso/goalplan/internal/session"
	"github.com/pablasso/goalplan/internal/tui/msgs"
	"github.com/pablasso/goalplan/internal/tui/styles"
	"github.com/pablasso/goalplan/internal/tui/views"
)

// Minimum terminal dimensions for the TUI to render properly.
const (
	MinTerminalWidth  = 60
	MinTerminalHeight = 15
)

// View represents the different screens in the TUI.
type View int

const (
	ViewGoal View = iota
	ViewPlan
	ViewSaved
)

// Options configures the TUI.
type Options struct {
	Session   *session.Session
	Provider  ai.Provider
	ExportDir string
}

// Model is the main Bubble Tea model that orchestrates all views.
type Model struct {
	currentView View
	width       int
	height      int

	opts Options

	goal  views.GoalModel
	plan  views.PlanModel
	saved views.SavedModel
}

// Run starts the TUI application.
func Run(opts Options) error {
	p := tea.NewProgram(
		NewModel(opts),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}

// NewModel creates the root model. It opens on the current plan when the
// session already holds one, otherwise on the goal input.
func NewModel(opts Options) Model {
	m := Model{
		currentView: ViewGoal,
		opts:        opts,
		goal:        views.NewGoalModel(opts.Session, opts.Provider),
	}
	if opts.Session.Current() != nil {
		m.currentView = ViewPlan
		m.plan = views.NewPlanModel(opts.Session, opts.ExportDir)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.goal.Init()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.goal.SetSize(msg.Width, msg.Height)
		m.plan.SetSize(msg.Width, msg.Height)
		m.saved.SetSize(msg.Width, msg.Height)
		var cmd tea.Cmd
		m.goal, cmd = m.goal.Update(msg)
		return m, cmd

	case msgs.GoToGoalMsg:
		m.currentView = ViewGoal
		return m, m.goal.Init()

	case msgs.GoToPlanMsg:
		return m.showPlan(), nil

	case msgs.GoToSavedMsg:
		m.saved = views.NewSavedModel(m.opts.Session)
		m.saved.SetSize(m.width, m.height)
		m.currentView = ViewSaved
		return m, nil

	case msgs.OpenPlanMsg:
		if _, err := m.opts.Session.Open(context.Background(), msg.PlanID); err != nil {
			m.saved.SetError(fmt.Sprintf("Failed to open plan: %v", err))
			return m, nil
		}
		return m.showPlan(), nil

	case msgs.PlanGeneratedMsg:
		var cmd tea.Cmd
		m.goal, cmd = m.goal.Update(msg)
		return m.showPlan(), cmd

	case msgs.GenerationFailedMsg:
		var cmd tea.Cmd
		m.goal, cmd = m.goal.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.currentView {
	case ViewGoal:
		m.goal, cmd = m.goal.Update(msg)
	case ViewPlan:
		m.plan, cmd = m.plan.Update(msg)
	case ViewSaved:
		m.saved, cmd = m.saved.Update(msg)
	}
	return m, cmd
}

func (m Model) showPlan() Model {
	m.plan = views.NewPlanModel(m.opts.Session, m.opts.ExportDir)
	m.plan.SetSize(m.width, m.height)
	m.currentView = ViewPlan
	return m
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width > 0 && m.height > 0 && (m.width < MinTerminalWidth || m.height < MinTerminalHeight) {
		return m.renderTerminalTooSmall()
	}

	switch m.currentView {
	case ViewPlan:
		return m.plan.View()
	case ViewSaved:
		return m.saved.View()
	default:
		return m.goal.View()
	}
}

// CurrentView returns the active screen.
func (m Model) CurrentView() View {
	return m.currentView
}

func (m Model) renderTerminalTooSmall() string {
	lines := []string{
		styles.ErrorStyle.Render("Terminal too small"),
		"",
		fmt.Sprintf("Minimum: %dx%d", MinTerminalWidth, MinTerminalHeight),
		fmt.Sprintf("Current: %dx%d", m.width, m.height),
	}
	content := strings.Join(lines, "\n")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
