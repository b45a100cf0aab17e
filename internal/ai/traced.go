package ai

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pablasso/goalplan/internal/plan"
	"github.com/pablasso/goalplan/internal/telemetry"
)

const tracerName = "github.com/pablasso/goalplan/ai"

// Traced wraps a Generator with a span per call.
type Traced struct {
	next     Generator
	provider Provider
	tracer   trace.Tracer
}

// NewTraced wraps next. A nil tracer uses the global provider.
func NewTraced(next Generator, provider Provider, tracer trace.Tracer) *Traced {
	if tracer == nil {
		tracer = telemetry.Tracer(tracerName)
	}
	return &Traced{next: next, provider: provider, tracer: tracer}
}

// Generate calls the wrapped generator inside a "goalplan.generate" span.
func (t *Traced) Generate(ctx context.Context, goal string) ([]plan.Task, error) {
	ctx, span := t.tracer.Start(ctx, "goalplan.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("goalplan.provider", string(t.provider)),
		attribute.Int("goalplan.goal_length", len(goal)),
	)

	tasks, err := t.next.Generate(ctx, goal)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("goalplan.tasks", len(tasks)))
	return tasks, nil
}
