package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pablasso/goalplan/internal/version"
)

type rootOptions struct {
	configPath string
}

// NewRootCmd builds the goalplan command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "goalplan",
		Short: "Turn a goal into a dated, ordered task plan",
		Long: `Goalplan breaks a free-text goal into tasks with deadlines, durations and
dependencies, lets you track their progress, and saves plans for later.

Run without arguments to open the interactive planner.`,
		Version:      version.Version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default ~/.goalplan/config.yaml)")

	rootCmd.AddCommand(
		newGenerateCmd(opts),
		newPlansCmd(opts),
		newServeCmd(opts),
		newConfigCmd(opts),
		newActivityCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command. Interrupts cancel the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}
