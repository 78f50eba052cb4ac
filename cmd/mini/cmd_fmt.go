package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/mini/format"
)

func newFmtCmd(opts *globalOptions) *cobra.Command {
	var fmtOverwrite bool

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Pretty-print a source file",
		Long: `Pretty-print a source file to stdout, one statement per line.

If no file is provided, or the file is -, reads source from stdin.
Files with lexical or syntax errors are left alone.

Use -w to overwrite the file in place (requires a file argument).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "-"
			if len(args) == 1 {
				name = args[0]
			}
			if fmtOverwrite && name == "-" {
				return fmt.Errorf("-w requires a file argument")
			}

			source, filename, err := readSource(cmd.InOrStdin(), name)
			if err != nil {
				return err
			}

			output, err := format.PrettyPrintFile(source, filename)
			if err != nil {
				return fmt.Errorf("format: %w", err)
			}

			if fmtOverwrite {
				return os.WriteFile(filename, output, 0644)
			}
			_, err = cmd.OutOrStdout().Write(output)
			return err
		},
	}

	cmd.Flags().BoolVarP(&fmtOverwrite, "write", "w", false, "overwrite the file in place")

	return cmd
}
