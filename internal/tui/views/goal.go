package views

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pablasso/goalplan/internal/ai"
	"github.com/pablasso/goalplan/internal/session"
	"github.com/pablasso/goalplan/internal/tui/components"
	"github.com/pablasso/goalplan/internal/tui/msgs"
	"github.com/pablasso/goalplan/internal/tui/styles"
)

const goalCharLimit = 500

// GoalModel is the landing view: a single goal input that triggers plan
// generation.
type GoalModel struct {
	session  *session.Session
	provider ai.Provider

	input      textinput.Model
	spinner    spinner.Model
	generating bool
	cancel     context.CancelFunc
	errorMsg   string

	width  int
	height int
}

// NewGoalModel creates the goal input view.
func NewGoalModel(sess *session.Session, provider ai.Provider) GoalModel {
	ti := textinput.New()
	ti.Placeholder = "e.g. Launch a new product in 1 month"
	ti.CharLimit = goalCharLimit
	ti.Width = 60
	ti.Prompt = "› "
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	return GoalModel{
		session:  sess,
		provider: provider,
		input:    ti,
		spinner:  s,
	}
}

// Init implements tea.Model.
func (m GoalModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m GoalModel) Update(msg tea.Msg) (GoalModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = min(max(msg.Width-10, 20), 80)
		return m, nil

	case spinner.TickMsg:
		if !m.generating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case msgs.GenerationFailedMsg:
		m.generating = false
		m.cancel = nil
		m.errorMsg = DescribeGenerationError(msg.Err)
		m.input.Focus()
		return m, textinput.Blink

	case msgs.PlanGeneratedMsg:
		m.generating = false
		m.cancel = nil
		m.errorMsg = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.generating {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m GoalModel) handleKey(msg tea.KeyMsg) (GoalModel, tea.Cmd) {
	if m.generating {
		switch msg.String() {
		case "esc":
			if m.cancel != nil {
				m.cancel()
			}
		case "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		goal := strings.TrimSpace(m.input.Value())
		if goal == "" {
			m.errorMsg = "Please enter a goal."
			return m, nil
		}
		return m.startGeneration(goal)
	case "tab":
		return m, func() tea.Msg { return msgs.GoToSavedMsg{} }
	case "esc":
		if m.session.Current() != nil {
			return m, func() tea.Msg { return msgs.GoToPlanMsg{} }
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.errorMsg != "" && msg.Type == tea.KeyRunes {
		m.errorMsg = ""
	}
	return m, cmd
}

func (m GoalModel) startGeneration(goal string) (GoalModel, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.generating = true
	m.cancel = cancel
	m.errorMsg = ""
	m.input.Blur()

	sess := m.session
	generate := func() tea.Msg {
		defer cancel()
		p, err := sess.Generate(ctx, goal)
		if err != nil {
			return msgs.GenerationFailedMsg{Err: err}
		}
		return msgs.PlanGeneratedMsg{Goal: p.Goal, TaskCount: len(p.Tasks)}
	}
	return m, tea.Batch(m.spinner.Tick, generate)
}

// DescribeGenerationError turns a generation failure into a message for the
// user.
func DescribeGenerationError(err error) string {
	var parseErr *ai.ParseError
	switch {
	case errors.Is(err, context.Canceled):
		return "Generation canceled."
	case errors.Is(err, context.DeadlineExceeded):
		return "Generation timed out. Try again."
	case errors.Is(err, ai.ErrEmptyGoal):
		return "Please enter a goal."
	case errors.As(err, &parseErr):
		return "Failed to parse the generated task plan. Try again or rephrase the goal."
	default:
		return "Failed to generate task plan: " + err.Error()
	}
}

// View implements tea.Model.
func (m GoalModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var lines []string
	lines = append(lines,
		lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.TitleStyle.Render("G O A L P L A N")),
		lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.SubtleStyle.Render("Turn a goal into a dated, ordered task plan")),
		"",
		lipgloss.PlaceHorizontal(m.width, lipgloss.Center, "What do you want to achieve?"),
		"",
		lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.input.View()),
		"",
	)

	switch {
	case m.generating:
		status := m.spinner.View() + " Generating plan..."
		lines = append(lines, lipgloss.PlaceHorizontal(m.width, lipgloss.Center, status))
	case m.errorMsg != "":
		lines = append(lines, lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.ErrorStyle.Render(m.errorMsg)))
	case m.provider == ai.ProviderDemo:
		hint := "No API key configured: demo plans will be used."
		lines = append(lines, lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.SubtleStyle.Render(hint)))
	default:
		lines = append(lines, "")
	}

	statusItems := []string{"Enter Generate", "Tab Saved plans", "Ctrl+C Quit"}
	if m.generating {
		statusItems = []string{"Esc Cancel", "Ctrl+C Quit"}
	} else if m.session.Current() != nil {
		statusItems = []string{"Enter Generate", "Esc Back to plan", "Tab Saved plans", "Ctrl+C Quit"}
	}

	return layout(m.width, m.height, lines, statusItems, 2)
}

// SetSize updates the model dimensions.
func (m *GoalModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Generating reports whether a generation request is in flight.
func (m GoalModel) Generating() bool {
	return m.generating
}

// Error returns the current error message.
func (m GoalModel) Error() string {
	return m.errorMsg
}

// Value returns the current goal text.
func (m GoalModel) Value() string {
	return m.input.Value()
}

// layout centers content vertically above a status bar. divisor controls the
// vertical bias: 2 centers, 3 leans towards the top.
func layout(width, height int, lines []string, statusItems []string, divisor int) string {
	var b strings.Builder

	statusBarHeight := 1
	availableHeight := height - statusBarHeight
	topPadding := max((availableHeight-len(lines))/divisor, 0)

	b.WriteString(strings.Repeat("\n", topPadding))
	b.WriteString(strings.Join(lines, "\n"))

	bottomPadding := max(availableHeight-topPadding-len(lines), 0)
	b.WriteString(strings.Repeat("\n", bottomPadding))
	b.WriteString(components.NewStatusBar().Render(width, statusItems))
	return b.String()
}
