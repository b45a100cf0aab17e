package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

type generateOptions struct {
	save     bool
	json     bool
	demo     bool
	timeline bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <goal>",
		Short: "Generate a task plan for a goal",
		Long: `Generate a task plan for a goal and print it in display order.

The goal is every argument joined with spaces, so quoting is optional:

  goalplan generate Launch a new product in one month`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal := strings.TrimSpace(strings.Join(args, " "))
			if goal == "" {
				return fmt.Errorf("goal text is required")
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, appOptions{configPath: root.configPath, demo: opts.demo})
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			out := cmd.OutOrStdout()
			if !opts.json {
				fmt.Fprintf(out, "Generating plan with %s...\n\n", a.provider)
			}

			p, err := a.session.Generate(ctx, goal)
			if err != nil {
				return err
			}
			if opts.save {
				if p, err = a.session.Save(ctx); err != nil {
					return fmt.Errorf("failed to save plan: %w", err)
				}
			}

			if opts.json {
				return writeJSON(out, p)
			}
			printPlan(out, p, opts.timeline)
			if opts.save {
				fmt.Fprintf(out, "\nSaved plan %s\n", p.ID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.save, "save", false, "Save the generated plan")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the plan as JSON")
	cmd.Flags().BoolVar(&opts.demo, "demo", false, "Use built-in demo data instead of an AI provider")
	cmd.Flags().BoolVar(&opts.timeline, "timeline", false, "Also print the deadline timeline")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
