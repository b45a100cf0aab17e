package ai

import (
	"context"
	"errors"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/pablasso/goalplan/internal/plan"
)

// contentGenerator is the subset of llms.Model used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// OpenAIConfig configures an OpenAIGenerator.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// OpenAIGenerator generates plans with an OpenAI chat model.
type OpenAIGenerator struct {
	model       contentGenerator
	temperature float64
	maxTokens   int
	timeout     time.Duration
	now         func() time.Time
}

// NewOpenAIGenerator returns a generator backed by the OpenAI API.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return newOpenAIGenerator(llm, cfg), nil
}

func newOpenAIGenerator(model contentGenerator, cfg OpenAIConfig) *OpenAIGenerator {
	return &OpenAIGenerator{
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		now:         time.Now,
	}
}

// Generate sends the goal to the model and parses the returned task list.
func (g *OpenAIGenerator) Generate(ctx context.Context, goal string) ([]plan.Task, error) {
	goal, err := cleanGoal(goal)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withDefaultTimeout(ctx, g.timeout)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, SystemMessage),
		llms.TextParts(llms.ChatMessageTypeHuman, buildPrompt(goal, g.now().Format(plan.DateLayout))),
	}
	var opts []llms.CallOption
	if g.temperature > 0 {
		opts = append(opts, llms.WithTemperature(g.temperature))
	}
	if g.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(g.maxTokens))
	}

	resp, err := g.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return nil, callError(ctx, "openai", err)
	}
	if len(resp.Choices) == 0 {
		return nil, callError(ctx, "openai", errors.New("empty response"))
	}
	return parseTasks(resp.Choices[0].Content)
}
