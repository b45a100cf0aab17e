package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	content  string
	err      error
	messages []llms.MessageContent
	options  llms.CallOptions
	deadline bool
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, opt := range options {
		opt(&f.options)
	}
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.content}}}, nil
}

func textOf(t *testing.T, m llms.MessageContent) string {
	t.Helper()
	require.Len(t, m.Parts, 1)
	part, ok := m.Parts[0].(llms.TextContent)
	require.True(t, ok, "expected text part, got %T", m.Parts[0])
	return part.Text
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	model := &fakeModel{content: `Sure! {"tasks":[{"id":"1","title":"Plan","deadline":"2024-01-05"},{"id":"2","title":"Do","dependencies":["1"]}]}`}
	gen := newOpenAIGenerator(model, OpenAIConfig{Temperature: 0.7, MaxTokens: 2000, Timeout: time.Minute})
	gen.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	tasks, err := gen.Generate(context.Background(), " Ship v1 ")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Plan", tasks[0].Title)
	assert.Equal(t, []string{"1"}, tasks[1].Dependencies)

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, SystemMessage, textOf(t, model.messages[0]))
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Contains(t, textOf(t, model.messages[1]), "Goal: Ship v1\n")
	assert.Contains(t, textOf(t, model.messages[1]), "2024-01-01")

	assert.InDelta(t, 0.7, model.options.Temperature, 1e-9)
	assert.Equal(t, 2000, model.options.MaxTokens)
	assert.True(t, model.deadline, "default timeout should be applied")
}

func TestOpenAIGenerator_Errors(t *testing.T) {
	t.Run("service error", func(t *testing.T) {
		gen := newOpenAIGenerator(&fakeModel{err: errors.New("401 unauthorized")}, OpenAIConfig{})
		_, err := gen.Generate(context.Background(), "goal")
		require.ErrorIs(t, err, ErrGeneration)
		assert.Contains(t, err.Error(), "401 unauthorized")
	})

	t.Run("parse failure keeps raw output", func(t *testing.T) {
		gen := newOpenAIGenerator(&fakeModel{content: "no json here"}, OpenAIConfig{})
		_, err := gen.Generate(context.Background(), "goal")
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "no json here", parseErr.Raw)
	})

	t.Run("empty goal never calls the model", func(t *testing.T) {
		model := &fakeModel{}
		_, err := newOpenAIGenerator(model, OpenAIConfig{}).Generate(context.Background(), "")
		require.ErrorIs(t, err, ErrEmptyGoal)
		assert.Nil(t, model.messages)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		gen := newOpenAIGenerator(&fakeModel{err: context.Canceled}, OpenAIConfig{})
		_, err := gen.Generate(ctx, "goal")
		require.ErrorIs(t, err, ErrGeneration)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
