// Package ai turns a free-text goal into a list of tasks using a text
// generation service.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pablasso/goalplan/internal/plan"
)

// DefaultGenerationTimeout is applied when the caller's context has no deadline.
const DefaultGenerationTimeout = 2 * time.Minute

var (
	// ErrEmptyGoal is returned when the goal is blank.
	ErrEmptyGoal = errors.New("goal text is required")
	// ErrGeneration wraps failures reported by the generation service.
	ErrGeneration = errors.New("failed to generate task plan")
)

// ParseError is returned when the service answered but its output could not
// be turned into tasks. Raw holds the unmodified output.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse the generated task plan: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Generator produces a task list for a goal. Implementations return either a
// complete list or an error, never a partial list.
type Generator interface {
	Generate(ctx context.Context, goal string) ([]plan.Task, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, goal string) ([]plan.Task, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, goal string) ([]plan.Task, error) {
	return f(ctx, goal)
}

// cleanGoal trims goal and rejects blank input.
func cleanGoal(goal string) (string, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return "", ErrEmptyGoal
	}
	return goal, nil
}

// withDefaultTimeout bounds ctx by timeout unless it already has a deadline.
func withDefaultTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline || timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// callError converts a service failure into an ErrGeneration error, naming
// timeouts and cancellation explicitly.
func callError(ctx context.Context, provider string, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %s request timed out", ErrGeneration, provider)
	case errors.Is(ctx.Err(), context.Canceled):
		return fmt.Errorf("%w: %s request was cancelled: %w", ErrGeneration, provider, context.Canceled)
	default:
		return fmt.Errorf("%w: %s: %w", ErrGeneration, provider, err)
	}
}

// parseTasks extracts the task list from raw model output.
func parseTasks(raw string) ([]plan.Task, error) {
	data, err := extractJSON([]byte(raw))
	if err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	var result plan.GenerationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	if err := result.Validate(); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	return plan.Normalize(result.Tasks), nil
}
