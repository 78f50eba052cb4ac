package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/mini/format"
)

func newTokensCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a source file",
		Long: `Print one (kind, lexeme) pair per token.

Illegal characters are reported on stderr and do not stop scanning.
Use - to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.analyze(cmd, args[0])
			if err != nil {
				return err
			}
			if err := opts.encode(cmd.OutOrStdout(), res, format.SectionTokens); err != nil {
				return err
			}
			for _, e := range res.LexicalErrors {
				fmt.Fprintln(cmd.ErrOrStderr(), e)
			}
			return nil
		},
	}
}
