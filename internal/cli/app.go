package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pablasso/goalplan/internal/ai"
	"github.com/pablasso/goalplan/internal/config"
	"github.com/pablasso/goalplan/internal/logging"
	"github.com/pablasso/goalplan/internal/session"
	"github.com/pablasso/goalplan/internal/store"
	"github.com/pablasso/goalplan/internal/telemetry"
	"github.com/pablasso/goalplan/internal/version"
)

// logFileName is used when no log file is configured and logs must stay off
// the terminal.
const logFileName = "goalplan.log"

// app holds the wired components shared by every command.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	gen      ai.Generator
	provider ai.Provider
	store    *store.Store
	session  *session.Session

	closers []func() error
}

type appOptions struct {
	configPath string
	// demo forces the demo generator regardless of configured keys.
	demo bool
	// stderr sends logs and spans to stderr instead of the log file when no
	// log file is configured.
	stderr bool
	// remote marks goals that come from network clients. The claude-cli
	// provider runs a local agent and is refused for them.
	remote bool
}

var errClaudeCLIRemote = errors.New("the claude-cli provider runs a local agent and cannot serve network clients; use openai, anthropic or demo")

// openApp loads configuration and builds the logger, tracer, generator,
// store and session.
func openApp(ctx context.Context, opts appOptions) (_ *app, err error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.demo {
		cfg.Provider = string(ai.ProviderDemo)
	}
	if opts.remote && ai.Resolve(aiOptions(cfg)) == ai.ProviderClaudeCLI {
		return nil, errClaudeCLIRemote
	}

	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			_ = a.Close(ctx)
		}
	}()

	out, err := a.logOutput(opts.stderr)
	if err != nil {
		return nil, err
	}
	a.logger, err = logging.New(cfg.Log.Level, cfg.Log.Format, out)
	if err != nil {
		return nil, err
	}

	if err := telemetry.Init(ctx, telemetry.Options{Enabled: cfg.Telemetry.Enabled, Writer: out}, "goalplan", version.Version); err != nil {
		return nil, err
	}

	gen, provider, err := ai.New(aiOptions(cfg))
	if err != nil {
		return nil, err
	}
	a.gen = ai.NewTraced(gen, provider, telemetry.Tracer(""))
	a.provider = provider

	slot, closeSlot, err := store.Open(ctx, cfg.Storage.Backend, cfg.Storage.Path, cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan storage: %w", err)
	}
	a.closers = append(a.closers, closeSlot)
	a.store = store.New(slot, store.WithLogger(a.logger))

	a.session = session.New(a.gen, a.store,
		session.WithActivityLog(session.NewActivityLog(config.DataDir())),
		session.WithLogger(a.logger),
	)

	a.logger.Debug("goalplan started", "provider", string(provider), "storage", cfg.Storage.Backend)
	return a, nil
}

func (a *app) logOutput(stderr bool) (io.Writer, error) {
	path := a.cfg.Log.File
	if path == "" {
		if stderr {
			return os.Stderr, nil
		}
		path = filepath.Join(config.DataDir(), logFileName)
	}
	f, err := logging.OpenFile(path)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, f.Close)
	return f, nil
}

// Close flushes spans and releases storage and log files.
func (a *app) Close(ctx context.Context) error {
	telemetry.Shutdown(ctx)

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func aiOptions(cfg *config.Config) ai.Options {
	return ai.Options{
		Provider: ai.Provider(cfg.Provider),
		OpenAI: ai.OpenAIConfig{
			APIKey:      cfg.OpenAI.APIKey,
			Model:       cfg.OpenAI.Model,
			BaseURL:     cfg.OpenAI.BaseURL,
			Temperature: cfg.OpenAI.Temperature,
			MaxTokens:   cfg.OpenAI.MaxTokens,
		},
		Anthropic: ai.AnthropicConfig{
			APIKey:    cfg.Anthropic.APIKey,
			Model:     cfg.Anthropic.Model,
			MaxTokens: cfg.Anthropic.MaxTokens,
		},
		Timeout: cfg.Generation.Timeout,
	}
}
