package cli

import (
	"context"
	"path/filepath"

	"github.com/pablasso/goalplan/internal/config"
	"github.com/pablasso/goalplan/internal/tui"
)

// TUIOptions configures the interactive planner launched without a command.
type TUIOptions struct {
	ConfigPath string
	Demo       bool
}

// RunTUI wires the planner components and runs the terminal UI until the
// user quits.
func RunTUI(opts TUIOptions) error {
	ctx := context.Background()
	a, err := openApp(ctx, appOptions{configPath: opts.ConfigPath, demo: opts.Demo})
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	return tui.Run(tui.Options{
		Session:   a.session,
		Provider:  a.provider,
		ExportDir: filepath.Join(config.DataDir(), "exports"),
	})
}
