package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pablasso/goalplan/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr string
		demo bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plan API over HTTP",
		Long: `Serve the JSON API:

  GET  /api/health
  POST /api/generate-plan
  GET  /api/plans
  POST /api/plans
  GET  /api/plans/:id`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, appOptions{configPath: root.configPath, demo: demo, stderr: true, remote: true})
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s (provider: %s)\n", addr, a.provider)
			return server.New(a.gen, a.provider, a.store, a.logger).Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :3000)")
	cmd.Flags().BoolVar(&demo, "demo", false, "Use built-in demo data instead of an AI provider")
	return cmd
}
