package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pablasso/goalplan/internal/config"
	"github.com/pablasso/goalplan/internal/session"
)

func newActivityCmd(root *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent plan activity",
		Long:  `Show recent generations, status changes and saves from the activity log.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// A broken --config is still an error here.
			if _, err := config.Load(root.configPath); err != nil {
				return err
			}

			path := filepath.Join(config.DataDir(), session.ActivityFileName)
			events, err := session.ReadActivity(path, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No activity yet.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tEVENT\tDETAILS")
			for _, e := range events {
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					e.Timestamp.Local().Format("2006-01-02 15:04"),
					e.Event,
					formatData(e.Data),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of events to show (0 for all)")
	return cmd
}

// formatData renders event data as sorted key=value pairs.
func formatData(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, data[k])
	}
	return strings.Join(parts, " ")
}
