package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/mini/codebase"
)

func newLSPCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if !opts.overridden() {
				cfg = nil
			}
			server := codebase.NewLSPServer(version, cfg)
			return server.RunStdio()
		},
	}
}
