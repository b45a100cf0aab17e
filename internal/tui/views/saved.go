package views

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pablasso/goalplan/internal/plan"
	"github.com/pablasso/goalplan/internal/session"
	"github.com/pablasso/goalplan/internal/tui/msgs"
	"github.com/pablasso/goalplan/internal/tui/styles"
)

// PlanSummary contains summary information about a saved plan for display.
type PlanSummary struct {
	ID        string
	Goal      string
	CreatedAt string
	Summary   plan.Summary
}

// SavedModel lists saved plans, most recent first.
type SavedModel struct {
	plans    []PlanSummary
	cursor   int
	errorMsg string
	width    int
	height   int
}

// NewSavedModel creates the saved plans view and loads plans from the
// session's store.
func NewSavedModel(sess *session.Session) SavedModel {
	m := SavedModel{}
	plans, err := sess.Saved(context.Background())
	if err != nil {
		m.errorMsg = "Failed to load saved plans: " + err.Error()
		return m
	}
	m.plans = Summaries(plans)
	return m
}

// Summaries converts saved plans into list rows.
func Summaries(plans []plan.Plan) []PlanSummary {
	out := make([]PlanSummary, len(plans))
	for i, p := range plans {
		out[i] = PlanSummary{
			ID:        p.ID,
			Goal:      p.Goal,
			CreatedAt: p.CreatedAt.Local().Format(plan.DisplayDateLayout),
			Summary:   plan.Summarize(p.Tasks),
		}
	}
	return out
}

// SetError shows an error line above the list.
func (m *SavedModel) SetError(msg string) {
	m.errorMsg = msg
}

// Init implements tea.Model.
func (m SavedModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m SavedModel) Update(msg tea.Msg) (SavedModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc", "n":
			return m, func() tea.Msg { return msgs.GoToGoalMsg{} }
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.plans)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(m.plans) {
				id := m.plans[m.cursor].ID
				return m, func() tea.Msg { return msgs.OpenPlanMsg{PlanID: id} }
			}
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m SavedModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	title := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.TitleStyle.Render("Saved Plans"))
	lines := []string{title, ""}

	if m.errorMsg != "" {
		lines = append(lines, lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.ErrorStyle.Render(m.errorMsg)), "")
	}

	if len(m.plans) == 0 {
		lines = append(lines,
			lipgloss.PlaceHorizontal(m.width, lipgloss.Center, "No saved plans yet."),
			"",
			lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.SubtleStyle.Render("Press 'n' to plan a new goal, or Esc to go back.")),
		)
		return layout(m.width, m.height, lines, []string{"n New goal", "Esc Back", "q Quit"}, 3)
	}

	visible := max(m.height-len(lines)-2, 1)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(m.plans))

	var rows []string
	for i := start; i < end; i++ {
		rows = append(rows, m.formatPlanLine(i, m.plans[i]))
	}
	lines = append(lines, lipgloss.PlaceHorizontal(m.width, lipgloss.Center, strings.Join(rows, "\n")))

	return layout(m.width, m.height, lines, []string{"↑↓ Navigate", "Enter Open", "Esc Back", "q Quit"}, 3)
}

// formatPlanLine formats a single plan line for display.
func (m SavedModel) formatPlanLine(index int, p PlanSummary) string {
	indicator := "○"
	if index == m.cursor {
		indicator = "●"
	}

	goalWidth := min(max(m.width-50, 20), 50)
	goal := truncate(p.Goal, goalWidth)
	line := fmt.Sprintf("%s %-*s %9s  %-15s %s", indicator, goalWidth, goal,
		p.Summary.TaskCountLabel(), p.Summary.CompletedLabel(), p.CreatedAt)

	if index == m.cursor {
		return styles.SelectedStyle.Render(line)
	}
	if p.Summary.Total > 0 && p.Summary.Completed == p.Summary.Total {
		return styles.SuccessStyle.Render(line)
	}
	return styles.SubtleStyle.Render(line)
}

// SetSize updates the model dimensions.
func (m *SavedModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Plans returns the list of plan summaries.
func (m SavedModel) Plans() []PlanSummary {
	return m.plans
}

// Cursor returns the current cursor position.
func (m SavedModel) Cursor() int {
	return m.cursor
}

// Error returns the current error message.
func (m SavedModel) Error() string {
	return m.errorMsg
}
