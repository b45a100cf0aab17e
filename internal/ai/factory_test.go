package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/pablasso/goalplan/internal/plan"
)

func TestHasAPIKey(t *testing.T) {
	assert.False(t, HasAPIKey(""))
	assert.False(t, HasAPIKey("   "))
	assert.False(t, HasAPIKey(PlaceholderAPIKey))
	assert.True(t, HasAPIKey("sk-real"))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want Provider
	}{
		{"no keys", Options{}, ProviderDemo},
		{"placeholder key", Options{OpenAI: OpenAIConfig{APIKey: PlaceholderAPIKey}}, ProviderDemo},
		{"openai key", Options{OpenAI: OpenAIConfig{APIKey: "sk-1"}}, ProviderOpenAI},
		{"anthropic key", Options{Anthropic: AnthropicConfig{APIKey: "ak-1"}}, ProviderAnthropic},
		{"both keys prefer openai", Options{OpenAI: OpenAIConfig{APIKey: "sk-1"}, Anthropic: AnthropicConfig{APIKey: "ak-1"}}, ProviderOpenAI},
		{"explicit wins", Options{Provider: ProviderDemo, OpenAI: OpenAIConfig{APIKey: "sk-1"}}, ProviderDemo},
		{"auto", Options{Provider: ProviderAuto}, ProviderDemo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.opts))
		})
	}
}

func TestNew(t *testing.T) {
	gen, provider, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, ProviderDemo, provider)
	assert.IsType(t, &DemoGenerator{}, gen)

	gen, provider, err = New(Options{Anthropic: AnthropicConfig{APIKey: "ak-test"}})
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, provider)
	assert.IsType(t, &AnthropicGenerator{}, gen)

	gen, provider, err = New(Options{OpenAI: OpenAIConfig{APIKey: "sk-test", Model: "gpt-3.5-turbo"}})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, provider)
	assert.IsType(t, &OpenAIGenerator{}, gen)

	_, _, err = New(Options{Provider: ProviderOpenAI})
	assert.ErrorContains(t, err, "no API key")

	_, _, err = New(Options{Provider: "gemini"})
	assert.ErrorContains(t, err, "unknown provider")
}

func TestTraced(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	ok := GeneratorFunc(func(ctx context.Context, goal string) ([]plan.Task, error) {
		return []plan.Task{{ID: "1", Title: "A"}}, nil
	})
	tasks, err := NewTraced(ok, ProviderDemo, tracer).Generate(context.Background(), "goal")
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	failing := GeneratorFunc(func(ctx context.Context, goal string) ([]plan.Task, error) {
		return nil, errors.New("boom")
	})
	_, err = NewTraced(failing, ProviderOpenAI, tracer).Generate(context.Background(), "goal")
	require.EqualError(t, err, "boom")

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "goalplan.generate", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)

	attrs := map[string]string{}
	for _, kv := range spans[1].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "openai", attrs["goalplan.provider"])
}
