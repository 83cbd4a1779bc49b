package main

import (
	"context"

	"github.com/pzlab/planetzero/internal/mcp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the engine over MCP (stdio) for dashboards and agents",
		Long: `serve starts an MCP server over stdio exposing the simulate, sweep, and
select_best tools. External consumers such as the interactive dashboard call
these tools on every parameter change; the server holds no state between
calls.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := mcp.NewServer(&mcp.Config{
				Name:    "planetzero",
				Version: version,
			})
			if err != nil {
				return err
			}
			return srv.Run(context.Background())
		},
	}
}
