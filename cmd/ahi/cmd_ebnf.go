package main

import (
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/spf13/cobra"
	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/mini/ebnf/parse"
	"github.com/dhamidi/mini/grammar"
)

func newEbnfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ebnf",
		Short:         "EBNF grammar tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newEbnfCheckCmd())
	cmd.AddCommand(newEbnfShowCmd())
	cmd.AddCommand(newEbnfRulesCmd())
	cmd.AddCommand(newEbnfParseCmd())

	return cmd
}

func newEbnfCheckCmd() *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Parse and verify an EBNF grammar file",
		Long: `Parse and verify an EBNF grammar file.

Without a file, verifies the embedded lexicon and syntax grammars.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				if _, err := grammar.Lexicon(); err != nil {
					fmt.Fprintln(out, err)
					return err
				}
				if _, err := grammar.Syntax(); err != nil {
					fmt.Fprintln(out, err)
					return err
				}
				fmt.Fprintln(out, "lexicon.ebnf: ok")
				fmt.Fprintln(out, "syntax.ebnf: ok")
				return nil
			}

			filename := args[0]

			f, err := os.Open(filename)
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer f.Close()

			g, err := ebnf.Parse(filename, f)
			if err != nil {
				printErrors(out, err)
				return err
			}

			if startProduction == "" {
				return nil
			}
			if err := ebnf.Verify(g, startProduction); err != nil {
				printErrors(out, err)
				return err
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production for verification (if empty, only checks syntax)")

	return cmd
}

func newEbnfShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "show lexicon|syntax",
		Short:     "Print an embedded grammar",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"lexicon", "syntax"},
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := grammar.Source(args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(src)
			return err
		},
	}
}

func newEbnfRulesCmd() *cobra.Command {
	var includeHelpers bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the syntax grammar as compiled for the Earley engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := parse.Default()
			if err != nil {
				return err
			}
			for _, r := range g.Rules() {
				if !includeHelpers && parse.IsHelper(r.LHS) {
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeHelpers, "helpers", true, "include rules introduced for groups, options and repetitions")

	return cmd
}

func newEbnfParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a source file with the Earley engine and dump the concrete syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src []byte
			var err error
			filename := args[0]
			if filename == "-" {
				src, err = io.ReadAll(cmd.InOrStdin())
				filename = ""
			} else {
				src, err = os.ReadFile(filename)
			}
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}

			tree, err := parse.ParseFile(src, filename)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), err)
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), tree.String())
			return nil
		},
	}
}

func printErrors(w io.Writer, err error) {
	v := reflect.ValueOf(err)
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			fmt.Fprintln(w, v.Index(i).Interface())
		}
	} else {
		fmt.Fprintln(w, err)
	}
}
