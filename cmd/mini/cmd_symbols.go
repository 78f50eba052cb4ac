package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/mini/format"
)

func newSymbolsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "symbols <file>",
		Short: "Print the symbol table of a source file",
		Long: `Print every distinct identifier and constant in order of first
appearance, as "ID: lexeme -> Category".

Use --numbering shared to draw IDs from one counter for both categories.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.analyze(cmd, args[0])
			if err != nil {
				return err
			}
			if err := opts.encode(cmd.OutOrStdout(), res, format.SectionSymbols); err != nil {
				return err
			}
			for _, e := range res.LexicalErrors {
				fmt.Fprintln(cmd.ErrOrStderr(), e)
			}
			return nil
		},
	}
}
