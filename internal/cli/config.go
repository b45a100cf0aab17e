package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pablasso/goalplan/internal/config"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage goalplan configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long:  "Creates a config file with the built-in defaults. API keys can stay empty and be supplied through OPENAI_API_KEY or ANTHROPIC_API_KEY.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := root.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if err := config.Write(path, config.Default(), force); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Wrote config to", path)
			fmt.Fprintln(out, "\nNext steps:")
			fmt.Fprintln(out, "  1. Set OPENAI_API_KEY or ANTHROPIC_API_KEY (or edit the file)")
			fmt.Fprintln(out, "  2. Run: goalplan generate \"<your goal>\"")
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			out, err := cfg.Redacted().YAML()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
