// Package store persists plans as one serialized collection in a single
// key-value slot.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pablasso/goalplan/internal/plan"
)

// SlotKey is the name of the slot holding the saved plans.
const SlotKey = "taskPlans"

// ErrPlanNotFound is returned by Get when no saved plan has the given id.
var ErrPlanNotFound = errors.New("plan not found")

// errCorrupt marks slot content that could not be decoded.
var errCorrupt = errors.New("corrupt plan data")

// Slot is a single named location holding raw bytes.
type Slot interface {
	// Read returns the slot content, or nil when the slot has never been
	// written.
	Read(ctx context.Context) ([]byte, error)
	// Write replaces the slot content atomically.
	Write(ctx context.Context, data []byte) error
	// Update replaces the slot content with fn's result. No other writer
	// can change the slot between the read passed to fn and the write. An
	// error from fn aborts the update and leaves the content untouched.
	Update(ctx context.Context, fn func(current []byte) ([]byte, error)) error
}

// Store saves and lists plans. Plans are kept most recent first and are
// never updated in place.
type Store struct {
	slot   Slot
	newID  func() string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithIDFunc overrides plan id generation.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithClock overrides the timestamp source.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

// WithLogger sets the logger used for corruption warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a Store backed by slot.
func New(slot Slot, opts ...Option) *Store {
	s := &Store{
		slot:   slot,
		newID:  uuid.NewString,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists a new plan for goal with a copy of tasks and returns it.
// The plan is inserted ahead of every previously saved plan. Save refuses to
// write over content it cannot decode, so existing plans are never dropped.
func (s *Store) Save(ctx context.Context, goal string, tasks []plan.Task) (*plan.Plan, error) {
	p := &plan.Plan{
		ID:        s.newID(),
		Goal:      goal,
		Tasks:     plan.Normalize(tasks),
		CreatedAt: s.now().UTC(),
	}

	var buildErr error
	err := s.slot.Update(ctx, func(current []byte) ([]byte, error) {
		plans, err := decode(current)
		if err != nil {
			buildErr = fmt.Errorf("store: saved plans are unreadable; refusing to overwrite: %w", err)
			return nil, buildErr
		}
		plans = append([]plan.Plan{*p.Clone()}, plans...)
		data, err := json.MarshalIndent(plans, "", "  ")
		if err != nil {
			buildErr = fmt.Errorf("store: marshal plans: %w", err)
			return nil, buildErr
		}
		return data, nil
	})
	if buildErr != nil {
		if errors.Is(buildErr, errCorrupt) {
			s.logger.Warn("plan not saved; saved plans are unreadable", "error", buildErr)
		}
		return nil, buildErr
	}
	if err != nil {
		return nil, fmt.Errorf("store: update slot: %w", err)
	}

	s.logger.Debug("plan saved", "id", p.ID, "tasks", len(p.Tasks))
	return p, nil
}

// LoadAll returns every saved plan, most recent first. An empty slot yields
// an empty list. Unreadable content is logged and also yields an empty list.
func (s *Store) LoadAll(ctx context.Context) ([]plan.Plan, error) {
	plans, err := s.read(ctx)
	if errors.Is(err, errCorrupt) {
		s.logger.Warn("saved plans are unreadable", "error", err)
		return []plan.Plan{}, nil
	}
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []plan.Plan{}
	}
	return plans, nil
}

// Get returns the saved plan with the given id.
func (s *Store) Get(ctx context.Context, id string) (*plan.Plan, error) {
	plans, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].ID == id {
			return &plans[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, id)
}

func (s *Store) read(ctx context.Context) ([]plan.Plan, error) {
	data, err := s.slot.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: read slot: %w", err)
	}
	return decode(data)
}

// decode parses slot content. Empty content is an empty collection.
func decode(data []byte) ([]plan.Plan, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var plans []plan.Plan
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	for i := range plans {
		plans[i].Tasks = plan.Normalize(plans[i].Tasks)
	}
	return plans, nil
}
