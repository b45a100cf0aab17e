// Package session holds the plan a user is currently looking at and routes
// every change to it through one place.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/pablasso/goalplan/internal/ai"
	"github.com/pablasso/goalplan/internal/plan"
	"github.com/pablasso/goalplan/internal/store"
)

// ErrNoPlan is returned when an operation needs a displayed plan and there is
// none yet.
var ErrNoPlan = errors.New("no plan to display")

// Session is the explicit "currently displayed plan" context. Front ends
// create one and pass it around instead of sharing global state.
type Session struct {
	mu       sync.Mutex
	gen      ai.Generator
	store    *store.Store
	activity *ActivityLog
	logger   *slog.Logger
	current  *plan.Plan
}

// Option configures a Session.
type Option func(*Session)

// WithActivityLog records generation, status and save events.
func WithActivityLog(a *ActivityLog) Option {
	return func(s *Session) { s.activity = a }
}

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a session generating with gen and persisting to st.
func New(gen ai.Generator, st *store.Store, opts ...Option) *Session {
	s := &Session{
		gen:    gen,
		store:  st,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate asks the generator for tasks and, on success, makes the result
// the displayed plan. On failure the previous plan stays displayed.
func (s *Session) Generate(ctx context.Context, goal string) (*plan.Plan, error) {
	goal = strings.TrimSpace(goal)
	tasks, err := s.gen.Generate(ctx, goal)
	if err != nil {
		s.record(s.activity.GenerationFailed(goal, err))
		return nil, err
	}

	p := plan.New(goal, tasks)
	s.mu.Lock()
	s.current = p
	s.mu.Unlock()

	s.logger.Info("plan generated", "tasks", len(p.Tasks))
	s.record(s.activity.PlanGenerated(goal, len(p.Tasks)))
	return p.Clone(), nil
}

// Current returns a copy of the displayed plan, or nil.
func (s *Session) Current() *plan.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return s.current.Clone()
}

// View returns the displayed plan's tasks in display order.
func (s *Session) View() ([]plan.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoPlan
	}
	return plan.SortForDisplay(s.current.Tasks), nil
}

// Advance moves the task with the given id to its next status. The change
// stays in memory until Save is called.
func (s *Session) Advance(id string) (plan.Status, error) {
	return s.advance(func(tasks []plan.Task) (int, error) {
		i := indexOf(tasks, func(t plan.Task) bool { return t.ID == id })
		if i < 0 {
			return -1, plan.ErrTaskNotFound
		}
		return i, nil
	})
}

// AdvanceByTitle advances the first task whose title matches exactly.
func (s *Session) AdvanceByTitle(title string) (plan.Status, error) {
	return s.advance(func(tasks []plan.Task) (int, error) {
		i := indexOf(tasks, func(t plan.Task) bool { return t.Title == title })
		if i < 0 {
			return -1, plan.ErrTaskNotFound
		}
		return i, nil
	})
}

func (s *Session) advance(find func([]plan.Task) (int, error)) (plan.Status, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return "", ErrNoPlan
	}
	i, err := find(s.current.Tasks)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	task := &s.current.Tasks[i]
	from := task.Status.OrDefault()
	to := task.Status.Next()
	task.Status = to
	planID := s.current.ID
	taskID := task.ID
	s.mu.Unlock()

	s.record(s.activity.TaskStatusChanged(planID, taskID, string(from), string(to)))
	return to, nil
}

// Completion returns the displayed plan's completion percentage.
func (s *Session) Completion() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return 0
	}
	return s.current.Completion()
}

// Cycle returns the ids forming a dependency cycle in the displayed plan, or
// nil when there is none.
func (s *Session) Cycle() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return plan.DepCycle(s.current.Tasks)
}

// Save persists the displayed plan as a new saved plan and adopts the
// assigned id and creation time.
func (s *Session) Save(ctx context.Context) (*plan.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoPlan
	}

	saved, err := s.store.Save(ctx, s.current.Goal, s.current.Tasks)
	if err != nil {
		return nil, err
	}
	s.current.ID = saved.ID
	s.current.CreatedAt = saved.CreatedAt

	s.logger.Info("plan saved", "plan_id", saved.ID)
	s.record(s.activity.PlanSaved(saved.ID, len(saved.Tasks), saved.Completion()))
	return saved.Clone(), nil
}

// Saved returns every saved plan, most recent first.
func (s *Session) Saved(ctx context.Context) ([]plan.Plan, error) {
	return s.store.LoadAll(ctx)
}

// Open makes a saved plan the displayed plan.
func (s *Session) Open(ctx context.Context, id string) (*plan.Plan, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = p.Clone()
	s.mu.Unlock()

	s.record(s.activity.PlanOpened(p.ID))
	return p.Clone(), nil
}

// Show makes p the displayed plan without touching the store.
func (s *Session) Show(p *plan.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		s.current = nil
		return
	}
	s.current = p.Clone()
}

func (s *Session) record(err error) {
	if err != nil {
		s.logger.Warn("failed to write activity log", "error", err)
	}
}

func indexOf(tasks []plan.Task, match func(plan.Task) bool) int {
	for i := range tasks {
		if match(tasks[i]) {
			return i
		}
	}
	return -1
}
