package views

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pablasso/goalplan/internal/ai"
	"github.com/pablasso/goalplan/internal/logging"
	"github.com/pablasso/goalplan/internal/plan"
	"github.com/pablasso/goalplan/internal/session"
	"github.com/pablasso/goalplan/internal/store"
	"github.com/pablasso/goalplan/internal/tui/msgs"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
}

func newTestSession(t *testing.T, gen ai.Generator) *session.Session {
	t.Helper()
	if gen == nil {
		gen = ai.NewDemoGeneratorAt(fixedNow)
	}
	st := store.New(store.NewFileSlot(filepath.Join(t.TempDir(), "plans.json")), store.WithLogger(logging.Discard()))
	return session.New(gen, st, session.WithLogger(logging.Discard()))
}

func typeText(m GoalModel, text string) GoalModel {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// runCmd executes cmd and returns the first non-batch message it yields.
func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			switch got := c().(type) {
			case msgs.PlanGeneratedMsg, msgs.GenerationFailedMsg:
				return got
			}
		}
		t.Fatal("batch produced no generation result")
	}
	return msg
}

func TestGoalModel_EmptyGoal(t *testing.T) {
	m := NewGoalModel(newTestSession(t, nil), ai.ProviderDemo)
	m.SetSize(80, 24)

	m = typeText(m, "   ")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Error("blank goal should not start generation")
	}
	if m.Generating() {
		t.Error("should not be generating")
	}
	if m.Error() != "Please enter a goal." {
		t.Errorf("unexpected error message: %q", m.Error())
	}
}

func TestGoalModel_Generate(t *testing.T) {
	sess := newTestSession(t, nil)
	m := NewGoalModel(sess, ai.ProviderDemo)
	m.SetSize(80, 24)

	m = typeText(m, "Launch a product")
	if m.Value() != "Launch a product" {
		t.Fatalf("input value = %q", m.Value())
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Generating() {
		t.Fatal("expected generating state after Enter")
	}
	if !strings.Contains(m.View(), "Generating plan") {
		t.Error("expected generating indicator in view")
	}

	msg := runCmd(t, cmd)
	generated, ok := msg.(msgs.PlanGeneratedMsg)
	if !ok {
		t.Fatalf("expected PlanGeneratedMsg, got %T", msg)
	}
	if generated.TaskCount != 5 || generated.Goal != "Launch a product" {
		t.Errorf("unexpected message: %+v", generated)
	}
	if sess.Current() == nil {
		t.Error("session should hold the generated plan")
	}

	m, _ = m.Update(generated)
	if m.Generating() {
		t.Error("generating should end after the result arrives")
	}
}

func TestGoalModel_GenerationFailure(t *testing.T) {
	gen := ai.GeneratorFunc(func(ctx context.Context, goal string) ([]plan.Task, error) {
		return nil, &ai.ParseError{Raw: "nope", Err: errors.New("no JSON object found")}
	})
	m := NewGoalModel(newTestSession(t, gen), ai.ProviderOpenAI)
	m.SetSize(80, 24)

	m = typeText(m, "Anything")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := runCmd(t, cmd)

	m, _ = m.Update(msg)
	if m.Generating() {
		t.Error("generating should end after failure")
	}
	if !strings.Contains(m.Error(), "Failed to parse the generated task plan") {
		t.Errorf("unexpected error: %q", m.Error())
	}
	if m.Value() != "Anything" {
		t.Error("goal text should be kept after a failure")
	}
}

func TestGoalModel_CancelWhileGenerating(t *testing.T) {
	gen := ai.GeneratorFunc(func(ctx context.Context, goal string) ([]plan.Task, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	m := NewGoalModel(newTestSession(t, gen), ai.ProviderOpenAI)
	m.SetSize(80, 24)
	m = typeText(m, "Slow goal")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	msg := runCmd(t, cmd)
	m, _ = m.Update(msg)

	if m.Error() != "Generation canceled." {
		t.Errorf("unexpected error: %q", m.Error())
	}
}

func TestGoalModel_Navigation(t *testing.T) {
	sess := newTestSession(t, nil)
	m := NewGoalModel(sess, ai.ProviderDemo)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if _, ok := cmd().(msgs.GoToSavedMsg); !ok {
		t.Error("Tab should go to saved plans")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd != nil {
		t.Error("Esc without a plan should do nothing")
	}

	if _, err := sess.Generate(context.Background(), "website"); err != nil {
		t.Fatal(err)
	}
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("Esc with a plan should return to it")
	}
	if _, ok := cmd().(msgs.GoToPlanMsg); !ok {
		t.Error("expected GoToPlanMsg")
	}
}

func TestGoalModel_DemoHint(t *testing.T) {
	m := NewGoalModel(newTestSession(t, nil), ai.ProviderDemo)
	m.SetSize(100, 24)
	if !strings.Contains(m.View(), "demo plans") {
		t.Error("demo provider should be mentioned")
	}
}

func TestDescribeGenerationError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{context.Canceled, "Generation canceled."},
		{context.DeadlineExceeded, "Generation timed out. Try again."},
		{ai.ErrEmptyGoal, "Please enter a goal."},
		{errors.New("boom"), "Failed to generate task plan: boom"},
	}
	for _, tt := range tests {
		if got := DescribeGenerationError(tt.err); got != tt.want {
			t.Errorf("DescribeGenerationError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func newPlanModel(t *testing.T, goal string) (PlanModel, *session.Session) {
	t.Helper()
	sess := newTestSession(t, nil)
	if _, err := sess.Generate(context.Background(), goal); err != nil {
		t.Fatal(err)
	}
	m := NewPlanModel(sess, t.TempDir())
	m.SetSize(100, 30)
	return m, sess
}

func TestPlanModel_DisplaysOrderedTasks(t *testing.T) {
	m, _ := newPlanModel(t, "Launch a product")

	tasks := m.Tasks()
	if len(tasks) != 5 {
		t.Fatalf("expected 5 tasks, got %d", len(tasks))
	}
	if tasks[0].Title != "Finalize product features" || tasks[4].Title != "Launch product" {
		t.Errorf("unexpected order: %s ... %s", tasks[0].Title, tasks[4].Title)
	}

	view := m.View()
	for _, want := range []string{"Launch a product", "5 tasks", "0/5 completed", "not saved", "0%", "Finalize product features", "Mar 3, 2024"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestPlanModel_NavigateAndAdvance(t *testing.T) {
	m, sess := newPlanModel(t, "Launch a product")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if m.Cursor() != 2 {
		t.Fatalf("cursor = %d, want 2", m.Cursor())
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.Cursor() != 1 {
		t.Fatalf("cursor = %d, want 1", m.Cursor())
	}

	id := m.Tasks()[1].ID
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})

	p := sess.Current()
	if got := p.Tasks[p.FindTask(id)].Status; got != plan.StatusCompleted {
		t.Errorf("status after two advances = %s, want Completed", got)
	}
	if !m.Dirty() {
		t.Error("advancing should mark the plan dirty")
	}
	if !strings.Contains(m.View(), "1/5 completed") {
		t.Error("summary should reflect the completed task")
	}
	if m.Cursor() != 1 {
		t.Error("cursor should stay on the advanced task")
	}

	for i := 0; i < 10; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.Cursor() != 4 {
		t.Errorf("cursor should stop at the last task, got %d", m.Cursor())
	}
}

func TestPlanModel_ToggleTimeline(t *testing.T) {
	m, _ := newPlanModel(t, "Build a website")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if !m.ShowingTimeline() {
		t.Fatal("expected timeline after 't'")
	}
	view := m.View()
	if !strings.Contains(view, "Timeline") || !strings.Contains(view, "Mar 15, 2024") {
		t.Errorf("timeline view missing entries:\n%s", view)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if m.ShowingTimeline() {
		t.Error("second 't' should return to tasks")
	}
}

func TestPlanModel_Save(t *testing.T) {
	m, sess := newPlanModel(t, "Launch a product")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	msg := cmd()
	savedMsg, ok := msg.(msgs.PlanSavedMsg)
	if !ok {
		t.Fatalf("expected PlanSavedMsg, got %T", msg)
	}

	m, _ = m.Update(savedMsg)
	if m.Dirty() {
		t.Error("save should clear the dirty flag")
	}
	if m.Notice() != "Plan saved." {
		t.Errorf("notice = %q", m.Notice())
	}
	if !strings.Contains(m.View(), "• saved ") {
		t.Error("view should show the saved date")
	}

	all, err := sess.Saved(context.Background())
	if err != nil || len(all) != 1 || all[0].ID != savedMsg.PlanID {
		t.Fatalf("expected one saved plan with id %s, got %v (%v)", savedMsg.PlanID, all, err)
	}
	if all[0].Tasks[0].Status != plan.StatusInProgress {
		t.Error("saved plan should carry the advanced status")
	}
}

func TestPlanModel_SaveError(t *testing.T) {
	m, _ := newPlanModel(t, "Launch a product")
	m, _ = m.Update(msgs.ErrorMsg{Err: errors.New("failed to save plan: disk full")})
	if m.Error() != "failed to save plan: disk full" {
		t.Errorf("error = %q", m.Error())
	}
	if !strings.Contains(m.View(), "disk full") {
		t.Error("error should be rendered")
	}
}

func TestPlanModel_Export(t *testing.T) {
	sess := newTestSession(t, nil)
	if _, err := sess.Generate(context.Background(), "Build a website"); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	m := NewPlanModel(sess, dir)
	m.SetSize(100, 30)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	msg := cmd()
	exported, ok := msg.(msgs.PlanExportedMsg)
	if !ok {
		t.Fatalf("expected PlanExportedMsg, got %T: %v", msg, msg)
	}
	if filepath.Dir(exported.Path) != dir {
		t.Errorf("exported to %s, want inside %s", exported.Path, dir)
	}
	data, err := os.ReadFile(exported.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "# Build a website") {
		t.Error("export should contain the goal heading")
	}

	m, _ = m.Update(exported)
	if !strings.Contains(m.Notice(), "Exported to") {
		t.Errorf("notice = %q", m.Notice())
	}
}

func TestPlanModel_CycleWarning(t *testing.T) {
	gen := ai.GeneratorFunc(func(ctx context.Context, goal string) ([]plan.Task, error) {
		return []plan.Task{
			{ID: "1", Title: "A", Dependencies: []string{"2"}},
			{ID: "2", Title: "B", Dependencies: []string{"1"}},
		}, nil
	})
	sess := newTestSession(t, gen)
	if _, err := sess.Generate(context.Background(), "loop"); err != nil {
		t.Fatal(err)
	}
	m := NewPlanModel(sess, t.TempDir())
	m.SetSize(100, 30)

	if !strings.Contains(m.View(), "Dependency cycle") {
		t.Error("expected a cycle warning")
	}
	if len(m.Tasks()) != 2 {
		t.Error("cyclic tasks should still be listed")
	}
}

func TestPlanModel_NavigationMessages(t *testing.T) {
	m, _ := newPlanModel(t, "goal")

	tests := []struct {
		key  tea.KeyMsg
		want tea.Msg
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}}, msgs.GoToGoalMsg{}},
		{tea.KeyMsg{Type: tea.KeyEsc}, msgs.GoToGoalMsg{}},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}}, msgs.GoToSavedMsg{}},
	}
	for _, tt := range tests {
		_, cmd := m.Update(tt.key)
		if cmd == nil || cmd() != tt.want {
			t.Errorf("key %q: expected %T", tt.key.String(), tt.want)
		}
	}
}

func TestSavedModel(t *testing.T) {
	sess := newTestSession(t, nil)
	ctx := context.Background()
	for _, goal := range []string{"first goal", "second goal"} {
		if _, err := sess.Generate(ctx, goal); err != nil {
			t.Fatal(err)
		}
		if _, err := sess.Save(ctx); err != nil {
			t.Fatal(err)
		}
	}

	m := NewSavedModel(sess)
	m.SetSize(120, 30)

	plans := m.Plans()
	if len(plans) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(plans))
	}
	if plans[0].Goal != "second goal" {
		t.Errorf("most recent plan should be first, got %q", plans[0].Goal)
	}

	view := m.View()
	if !strings.Contains(view, "Saved Plans") || !strings.Contains(view, "5 tasks") || !strings.Contains(view, "0/5 completed") {
		t.Errorf("unexpected view:\n%s", view)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", m.Cursor())
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	open, ok := cmd().(msgs.OpenPlanMsg)
	if !ok || open.PlanID != plans[1].ID {
		t.Errorf("expected OpenPlanMsg for %s, got %v", plans[1].ID, open)
	}
}

func TestSavedModel_Empty(t *testing.T) {
	m := NewSavedModel(newTestSession(t, nil))
	m.SetSize(80, 24)

	if !strings.Contains(m.View(), "No saved plans yet.") {
		t.Error("expected empty state")
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("Enter on an empty list should do nothing")
	}
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if _, ok := cmd().(msgs.GoToGoalMsg); !ok {
		t.Error("'n' should go to the goal input")
	}
}

func TestSummaries(t *testing.T) {
	got := Summaries([]plan.Plan{{
		ID:        "p1",
		Goal:      "g",
		CreatedAt: time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC),
		Tasks:     []plan.Task{{ID: "1", Status: plan.StatusCompleted}, {ID: "2"}},
	}})
	if len(got) != 1 || got[0].Summary.CompletedLabel() != "1/2 completed" {
		t.Errorf("unexpected summaries: %+v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello world", 8); got != "hello w…" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
}
