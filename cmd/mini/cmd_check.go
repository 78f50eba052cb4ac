package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dhamidi/mini/codebase"
	"github.com/dhamidi/mini/format"
	"github.com/dhamidi/mini/frontend"
)

func newCheckCmd(opts *globalOptions) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Report lexical and syntax errors",
		Long: `Analyze the given files, or every source file below the working
directory when none are given, and report their errors.

The exit status is non-zero when any file has an error.

With --watch, check takes at most one directory, reports errors as
files change and runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				if len(args) > 1 {
					return fmt.Errorf("--watch takes at most one directory")
				}
				root := "."
				if len(args) == 1 {
					root = args[0]
				}
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
				defer stop()
				return opts.watch(ctx, cmd.OutOrStdout(), root)
			}

			var results []*frontend.Result
			if len(args) == 0 {
				cb := codebase.New(".", opts.cfg)
				if err := cb.ScanAll(); err != nil {
					return fmt.Errorf("scan: %w", err)
				}
				for _, f := range cb.Files() {
					results = append(results, f.Result)
				}
			}
			for _, name := range args {
				res, err := opts.analyze(cmd, name)
				if err != nil {
					return err
				}
				results = append(results, res)
			}

			failed := 0
			for _, res := range results {
				if !res.OK() {
					failed++
				}
				if err := opts.report(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			}
			log.Infof("checked %d files, %d with errors", len(results), failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d files have errors", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep checking as files change")

	return cmd
}

// report writes the errors of res. The JSON format writes every result so
// that each file yields one document.
func (o *globalOptions) report(w io.Writer, res *frontend.Result) error {
	if o.cfg.Format == "json" {
		return o.encode(w, res)
	}
	if res.OK() {
		return nil
	}
	return o.encode(w, res, format.SectionErrors)
}

func (o *globalOptions) watch(ctx context.Context, w io.Writer, root string) error {
	cb := codebase.New(root, o.cfg)
	watcher := codebase.NewFileWatcher(cb, func(change codebase.Change) {
		for _, f := range change.Updated {
			if f.Result.OK() {
				fmt.Fprintf(w, "ok %s\n", f.Result.Filename)
				continue
			}
			if err := o.report(w, f.Result); err != nil {
				log.Errorf("%s: %s", f.Path, err)
			}
		}
		for _, path := range change.Removed {
			fmt.Fprintf(w, "removed %s\n", path)
		}
	})

	log.Infof("watching %s every %s", root, o.cfg.Watch.Interval)
	watcher.Start()
	<-ctx.Done()
	watcher.Stop()
	return nil
}
