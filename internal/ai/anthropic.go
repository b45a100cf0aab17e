package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pablasso/goalplan/internal/plan"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-haiku-4-5-20251001"

// messageCreator is the subset of anthropic.MessageService used here.
type messageCreator interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicConfig configures an AnthropicGenerator.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64
	Timeout   time.Duration
}

// AnthropicGenerator generates plans with the Anthropic Messages API.
type AnthropicGenerator struct {
	messages  messageCreator
	model     anthropic.Model
	maxTokens int64
	timeout   time.Duration
	now       func() time.Time
}

// NewAnthropicGenerator returns a generator backed by the Anthropic API.
func NewAnthropicGenerator(cfg AnthropicConfig) *AnthropicGenerator {
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return newAnthropicGenerator(&client.Messages, cfg)
}

func newAnthropicGenerator(messages messageCreator, cfg AnthropicConfig) *AnthropicGenerator {
	model := cfg.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	return &AnthropicGenerator{
		messages:  messages,
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
		timeout:   cfg.Timeout,
		now:       time.Now,
	}
}

// Generate sends the goal to the model and parses the returned task list.
func (g *AnthropicGenerator) Generate(ctx context.Context, goal string) ([]plan.Task, error) {
	goal, err := cleanGoal(goal)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withDefaultTimeout(ctx, g.timeout)
	defer cancel()

	message, err := g.messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: SystemMessage}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(goal, g.now().Format(plan.DateLayout)))),
		},
	})
	if err != nil {
		return nil, callError(ctx, "anthropic", err)
	}

	if len(message.Content) == 0 {
		return nil, callError(ctx, "anthropic", fmt.Errorf("unexpected response format: no content blocks"))
	}
	content := message.Content[0]
	if content.Type != "text" {
		return nil, callError(ctx, "anthropic", fmt.Errorf("unexpected response format: not a text block (type=%s)", content.Type))
	}
	return parseTasks(content.Text)
}
