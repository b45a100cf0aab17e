package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pablasso/goalplan/internal/export"
	"github.com/pablasso/goalplan/internal/plan"
	"github.com/pablasso/goalplan/internal/store"
)

func newPlansCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Browse saved plans",
		Long:  `Commands for listing, showing and exporting saved plans.`,
	}
	cmd.AddCommand(
		newPlansListCmd(root),
		newPlansShowCmd(root),
		newPlansExportCmd(root),
	)
	return cmd
}

func newPlansListCmd(root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved plans, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, appOptions{configPath: root.configPath})
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			plans, err := a.session.Saved(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch plans: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, plans)
			}
			if len(plans) == 0 {
				fmt.Fprintln(out, "No saved plans yet.")
				return nil
			}

			// ID, tasks, progress and age columns plus padding take about 50 columns.
			goalWidth := max(terminalWidth()-50, 20)
			now := time.Now()

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tGOAL\tTASKS\tPROGRESS\tCREATED")
			for _, p := range plans {
				summary := plan.Summarize(p.Tasks)
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
					shortID(p.ID),
					truncate(p.Goal, goalWidth),
					summary.Total,
					fmt.Sprintf("%d/%d (%d%%)", summary.Completed, summary.Total, summary.Percent),
					formatAge(p.CreatedAt, now),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print plans as JSON")
	return cmd
}

func newPlansShowCmd(root *rootOptions) *cobra.Command {
	var (
		asJSON   bool
		timeline bool
	)

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved plan",
		Long:  `Show a saved plan. The id may be the full id or a unique prefix of it.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, appOptions{configPath: root.configPath})
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			p, err := openSaved(cmd, a, args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), p)
			}
			printPlan(cmd.OutOrStdout(), p, timeline)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the plan as JSON")
	cmd.Flags().BoolVar(&timeline, "timeline", false, "Also print the deadline timeline")
	return cmd
}

func newPlansExportCmd(root *rootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a saved plan as Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, appOptions{configPath: root.configPath})
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			p, err := openSaved(cmd, a, args[0])
			if err != nil {
				return err
			}

			path, err := export.WriteFile(dir, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported plan to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to write the Markdown file to")
	return cmd
}

// openSaved resolves id (or a unique prefix of it) and makes that plan the
// session's displayed plan.
func openSaved(cmd *cobra.Command, a *app, id string) (*plan.Plan, error) {
	ctx := cmd.Context()
	p, err := a.session.Open(ctx, id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrPlanNotFound) {
		return nil, err
	}

	plans, err := a.session.Saved(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch plans: %w", err)
	}
	var matches []string
	for _, candidate := range plans {
		if len(candidate.ID) > len(id) && candidate.ID[:len(id)] == id {
			matches = append(matches, candidate.ID)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("plan not found: %s", id)
	case 1:
		return a.session.Open(ctx, matches[0])
	default:
		return nil, fmt.Errorf("plan id %q is ambiguous (%d matches)", id, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
