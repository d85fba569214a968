package main

import (
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/rentdoc/internal/bootstrap"
	"github.com/bryanwahyu/rentdoc/internal/infra/mcptool"
	"github.com/bryanwahyu/rentdoc/internal/logger"
)

func newMCPCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the analysis tools over MCP on stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			app, err := bootstrap.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			server := mcptool.NewServer(&mcptool.Tools{Docs: app.Docs}, version)
			logger.Log.Info("mcp server ready on stdio")
			return mcptool.ServeStdio(cmd.Context(), server)
		},
	}
}
