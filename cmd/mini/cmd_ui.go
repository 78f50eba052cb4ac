package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/mini/codebase"
	"github.com/dhamidi/mini/ui"
)

func newUICmd(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "ui [dir]",
		Short: "Serve a web page for analyzing source and browsing a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			server, err := ui.NewServer(codebase.New(root, opts.cfg))
			if err != nil {
				return err
			}
			return ui.ListenAndServe(addr, server)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")

	return cmd
}
