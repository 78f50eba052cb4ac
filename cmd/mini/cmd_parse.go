package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/mini/format"
)

func newParseCmd(opts *globalOptions) *cobra.Command {
	var includePositions bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Check a source file against the grammar and dump its derivation tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.analyze(cmd, args[0])
			if err != nil {
				return err
			}

			switch {
			case opts.cfg.Format != "text":
				if err := opts.encode(cmd.OutOrStdout(), res, format.SectionTree, format.SectionErrors); err != nil {
					return err
				}
			case res.Tree == nil:
			case includePositions:
				fmt.Fprint(cmd.OutOrStdout(), res.Tree.StringWithPositions())
			default:
				if err := opts.encode(cmd.OutOrStdout(), res, format.SectionTree); err != nil {
					return err
				}
			}
			return res.Joined()
		},
	}

	cmd.Flags().BoolVar(&includePositions, "positions", false, "include source spans in the text tree")

	return cmd
}
