package ai

import (
	"fmt"
	"strings"
	"time"
)

// Provider names a generation backend.
type Provider string

const (
	ProviderAuto      Provider = "auto"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderClaudeCLI Provider = "claude-cli"
	ProviderDemo      Provider = "demo"
)

// PlaceholderAPIKey is the sample key shipped in example env files. It is
// treated as no key at all.
const PlaceholderAPIKey = "your_openai_api_key_here"

// HasAPIKey reports whether key looks like a real credential.
func HasAPIKey(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != PlaceholderAPIKey
}

// Options selects and configures a generator.
type Options struct {
	Provider  Provider
	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
	Timeout   time.Duration
}

// Resolve returns the provider New would build for opts. Auto prefers
// OpenAI, then Anthropic, and falls back to demo data when neither key is set.
func Resolve(opts Options) Provider {
	switch opts.Provider {
	case "", ProviderAuto:
		switch {
		case HasAPIKey(opts.OpenAI.APIKey):
			return ProviderOpenAI
		case HasAPIKey(opts.Anthropic.APIKey):
			return ProviderAnthropic
		default:
			return ProviderDemo
		}
	default:
		return opts.Provider
	}
}

// New builds the generator selected by opts and reports which provider it
// chose.
func New(opts Options) (Generator, Provider, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}

	provider := Resolve(opts)
	switch provider {
	case ProviderOpenAI:
		if !HasAPIKey(opts.OpenAI.APIKey) {
			return nil, provider, fmt.Errorf("openai provider selected but no API key is configured (set OPENAI_API_KEY)")
		}
		cfg := opts.OpenAI
		if cfg.Timeout <= 0 {
			cfg.Timeout = timeout
		}
		gen, err := NewOpenAIGenerator(cfg)
		if err != nil {
			return nil, provider, fmt.Errorf("failed to create openai client: %w", err)
		}
		return gen, provider, nil
	case ProviderAnthropic:
		if !HasAPIKey(opts.Anthropic.APIKey) {
			return nil, provider, fmt.Errorf("anthropic provider selected but no API key is configured (set ANTHROPIC_API_KEY)")
		}
		cfg := opts.Anthropic
		if cfg.Timeout <= 0 {
			cfg.Timeout = timeout
		}
		return NewAnthropicGenerator(cfg), provider, nil
	case ProviderClaudeCLI:
		if !IsClaudeAvailable() {
			return nil, provider, fmt.Errorf("Claude Code CLI not found. Install it: https://claude.ai/code")
		}
		return NewClaudeCLIGenerator(timeout), provider, nil
	case ProviderDemo:
		return NewDemoGenerator(), provider, nil
	default:
		return nil, provider, fmt.Errorf("unknown provider %q", provider)
	}
}
