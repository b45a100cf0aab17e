package views

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pablasso/goalplan/internal/export"
	"github.com/pablasso/goalplan/internal/plan"
	"github.com/pablasso/goalplan/internal/session"
	"github.com/pablasso/goalplan/internal/tui/components"
	"github.com/pablasso/goalplan/internal/tui/msgs"
	"github.com/pablasso/goalplan/internal/tui/styles"
)

const (
	progressBarWidth = 20
	// header (goal, summary, progress, blank) and status bar
	planChromeHeight = 6
)

// PlanModel shows the session's current plan: tasks in dependency order,
// progress, and an optional deadline timeline.
type PlanModel struct {
	session   *session.Session
	exportDir string

	plan         *plan.Plan
	tasks        []plan.Task // display order
	cursor       int
	showTimeline bool
	dirty        bool
	cycle        []string

	notice   string
	errorMsg string

	pane   components.ScrollPane
	width  int
	height int
}

// NewPlanModel creates the plan view for the session's current plan.
// Exports are written to exportDir.
func NewPlanModel(sess *session.Session, exportDir string) PlanModel {
	m := PlanModel{
		session:   sess,
		exportDir: exportDir,
		pane:      components.NewScrollPane(80, 10),
	}
	m.refresh()
	return m
}

func (m *PlanModel) refresh() {
	m.plan = m.session.Current()
	tasks, err := m.session.View()
	if err != nil {
		m.tasks = nil
	} else {
		m.tasks = tasks
	}
	m.cycle = m.session.Cycle()
	if m.cursor >= len(m.tasks) {
		m.cursor = max(len(m.tasks)-1, 0)
	}
	m.updatePane()
}

// Init implements tea.Model.
func (m PlanModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PlanModel) Update(msg tea.Msg) (PlanModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case msgs.PlanSavedMsg:
		m.dirty = false
		m.errorMsg = ""
		m.notice = "Plan saved."
		m.refresh()
		return m, nil

	case msgs.PlanExportedMsg:
		m.errorMsg = ""
		m.notice = "Exported to " + msg.Path
		return m, nil

	case msgs.ErrorMsg:
		m.notice = ""
		m.errorMsg = msg.Err.Error()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m PlanModel) handleKey(msg tea.KeyMsg) (PlanModel, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.advanceSelected()
	case "t":
		m.showTimeline = !m.showTimeline
	case "s":
		return m, m.save()
	case "e":
		return m, m.export()
	case "n", "esc":
		return m, func() tea.Msg { return msgs.GoToGoalMsg{} }
	case "l":
		return m, func() tea.Msg { return msgs.GoToSavedMsg{} }
	default:
		return m, nil
	}
	m.updatePane()
	return m, nil
}

func (m *PlanModel) advanceSelected() {
	if len(m.tasks) == 0 {
		return
	}
	task := m.tasks[m.cursor]
	status, err := m.session.Advance(task.ID)
	if err != nil {
		m.errorMsg = err.Error()
		return
	}
	m.dirty = true
	m.errorMsg = ""
	m.notice = fmt.Sprintf("%q is now %s.", task.Title, status)
	m.refresh()
}

func (m PlanModel) save() tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		saved, err := sess.Save(context.Background())
		if err != nil {
			return msgs.ErrorMsg{Err: fmt.Errorf("failed to save plan: %w", err)}
		}
		return msgs.PlanSavedMsg{PlanID: saved.ID}
	}
}

func (m PlanModel) export() tea.Cmd {
	p := m.session.Current()
	dir := m.exportDir
	return func() tea.Msg {
		if p == nil {
			return msgs.ErrorMsg{Err: session.ErrNoPlan}
		}
		path, err := export.WriteFile(dir, p)
		if err != nil {
			return msgs.ErrorMsg{Err: err}
		}
		return msgs.PlanExportedMsg{Path: path}
	}
}

// View implements tea.Model.
func (m PlanModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.plan == nil {
		lines := []string{
			lipgloss.PlaceHorizontal(m.width, lipgloss.Center, "No plan to show."),
			lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.SubtleStyle.Render("Press n to enter a goal.")),
		}
		return layout(m.width, m.height, lines, []string{"n New goal", "q Quit"}, 3)
	}

	var b strings.Builder
	summary := plan.Summarize(m.plan.Tasks)

	b.WriteString(styles.TitleStyle.UnsetMarginBottom().Render(truncate(m.plan.Goal, m.width)))
	b.WriteString("\n")
	b.WriteString(styles.SubtleStyle.Render(m.savedLabel(summary)))
	b.WriteString("\n")
	b.WriteString(components.NewProgress(summary.Percent, progressBarWidth).View())
	b.WriteString("\n")
	b.WriteString(m.messageLine())
	b.WriteString("\n")

	b.WriteString(m.pane.View())
	b.WriteString("\n")

	statusItems := []string{"↑↓ Navigate", "Enter Advance", "t Timeline", "s Save", "e Export", "n New", "l Saved", "q Quit"}
	if m.showTimeline {
		statusItems[2] = "t Tasks"
	}
	b.WriteString(components.NewStatusBar().Render(m.width, statusItems))
	return b.String()
}

func (m PlanModel) savedLabel(summary plan.Summary) string {
	label := summary.TaskCountLabel() + " • " + summary.CompletedLabel()
	switch {
	case !m.plan.Saved():
		label += " • not saved"
	case m.dirty:
		label += " • unsaved changes"
	default:
		label += " • saved " + m.plan.CreatedAt.Local().Format(plan.DisplayDateLayout)
	}
	return label
}

func (m PlanModel) messageLine() string {
	switch {
	case m.errorMsg != "":
		return styles.ErrorStyle.Render(truncate(m.errorMsg, m.width))
	case len(m.cycle) > 0:
		return styles.WarningStyle.Render(truncate("Dependency cycle between tasks "+strings.Join(m.cycle, ", ")+"; order is approximate.", m.width))
	case m.notice != "":
		return styles.SuccessStyle.Render(truncate(m.notice, m.width))
	}
	return ""
}

// updatePane rebuilds the scrollable body and keeps the selection visible.
func (m *PlanModel) updatePane() {
	m.pane.SetSize(m.width, max(m.height-planChromeHeight, 1))
	if m.showTimeline {
		m.pane.SetLines(m.timelineLines())
		return
	}
	lines, first, last := m.taskLines()
	m.pane.SetLines(lines)
	m.pane.EnsureVisible(first, last)
}

// taskLines renders every task and returns the line range of the selected
// one, which is expanded with its details.
func (m PlanModel) taskLines() (lines []string, first, last int) {
	if len(m.tasks) == 0 {
		return []string{styles.SubtleStyle.Render("This plan has no tasks.")}, 0, 0
	}
	width := max(m.width-1, 20)
	for i, t := range m.tasks {
		selected := i == m.cursor
		if selected {
			first = len(lines)
		}

		indicator := "  "
		if selected {
			indicator = "› "
		}
		deadline := t.FormattedDeadline()
		head := fmt.Sprintf("%s%s %s", indicator, styles.StatusIcon(t.Status), t.Title)
		head = truncate(head, width-len(deadline)-2)
		gap := max(width-lipgloss.Width(head)-lipgloss.Width(deadline), 1)
		line := head + strings.Repeat(" ", gap) + deadline
		if selected {
			line = styles.SelectedStyle.Render(line)
		} else if t.Status == plan.StatusCompleted {
			line = styles.SubtleStyle.Render(line)
		}
		lines = append(lines, line)

		if selected {
			lines = append(lines, m.detailLines(t, width)...)
			last = len(lines) - 1
		}
	}
	return lines, first, last
}

func (m PlanModel) detailLines(t plan.Task, width int) []string {
	const indent = "     "
	var out []string
	status := t.Status.OrDefault()
	out = append(out, indent+"Status: "+styles.StatusStyle(status).Render(string(status)))
	if t.EstimatedDuration != "" {
		out = append(out, indent+styles.SubtleStyle.Render("Estimated: "+t.EstimatedDuration))
	}
	if deps := plan.DependencyTitles(m.plan.Tasks, t); len(deps) > 0 {
		out = append(out, indent+styles.SubtleStyle.Render(truncate("Depends on: "+strings.Join(deps, ", "), width-len(indent))))
	}
	if desc := strings.TrimSpace(t.Description); desc != "" {
		wrapped := lipgloss.NewStyle().Width(max(width-len(indent), 10)).Render(desc)
		for _, l := range strings.Split(wrapped, "\n") {
			out = append(out, indent+l)
		}
	}
	return out
}

func (m PlanModel) timelineLines() []string {
	entries := plan.Timeline(m.plan.Tasks)
	if len(entries) == 0 {
		return []string{styles.SubtleStyle.Render("Nothing scheduled.")}
	}
	lines := []string{styles.SectionStyle.Render("Timeline")}
	for _, e := range entries {
		date := e.Date
		if date == "" {
			date = "No deadline"
		}
		line := fmt.Sprintf("%-13s %s %s", date, styles.StatusIcon(e.Status), e.Title)
		lines = append(lines, styles.StatusStyle(e.Status).Render(truncate(line, max(m.width-1, 20))))
	}
	return lines
}

// SetSize updates the model dimensions.
func (m *PlanModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.updatePane()
}

// Cursor returns the current cursor position.
func (m PlanModel) Cursor() int {
	return m.cursor
}

// Tasks returns the tasks in display order.
func (m PlanModel) Tasks() []plan.Task {
	return m.tasks
}

// ShowingTimeline reports whether the timeline is displayed instead of tasks.
func (m PlanModel) ShowingTimeline() bool {
	return m.showTimeline
}

// Dirty reports whether statuses changed since the last save.
func (m PlanModel) Dirty() bool {
	return m.dirty
}

// Error returns the current error message.
func (m PlanModel) Error() string {
	return m.errorMsg
}

// Notice returns the current informational message.
func (m PlanModel) Notice() string {
	return m.notice
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
