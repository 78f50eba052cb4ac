package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/mini/config"
	"github.com/dhamidi/mini/format"
	"github.com/dhamidi/mini/frontend"
)

const version = "0.1.0"

var log = commonlog.GetLogger("mini.cli")

// globalOptions holds the persistent flags and the configuration they select.
type globalOptions struct {
	configPath string
	verbosity  int
	engine     string
	numbering  string
	format     string

	cfg *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:          "mini",
		Short:        "Lexer, symbol table and syntax checker for the mini language",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default: mini.toml or mini.yaml found from the working directory)")
	flags.CountVarP(&opts.verbosity, "verbose", "v", "log verbosity (repeat for more)")
	flags.StringVar(&opts.engine, "engine", "", "syntax engine (descent, earley)")
	flags.StringVar(&opts.numbering, "numbering", "", "symbol numbering (per-category, shared)")
	flags.StringVar(&opts.format, "format", "", "output format (text, json, line)")

	rootCmd.AddCommand(newTokensCmd(opts))
	rootCmd.AddCommand(newSymbolsCmd(opts))
	rootCmd.AddCommand(newParseCmd(opts))
	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newFmtCmd(opts))
	rootCmd.AddCommand(newLSPCmd(opts))
	rootCmd.AddCommand(newREPLCmd(opts))
	rootCmd.AddCommand(newUICmd(opts))

	return rootCmd
}

// load reads the configuration, applies flag overrides and sets up logging.
func (o *globalOptions) load() error {
	var cfg *config.Config
	var err error
	if o.configPath != "" {
		cfg, err = config.Load(o.configPath)
	} else {
		cfg, err = config.LoadDir(".")
	}
	if err != nil {
		return err
	}

	if o.engine != "" {
		cfg.Engine = o.engine
	}
	if o.numbering != "" {
		cfg.Numbering = o.numbering
	}
	if o.format != "" {
		cfg.Format = o.format
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg

	verbosity := cfg.Log.Verbosity
	if o.verbosity > 0 {
		verbosity = o.verbosity
	}
	if cfg.Log.File != "" {
		commonlog.Configure(verbosity, &cfg.Log.File)
	} else {
		commonlog.Configure(verbosity, nil)
	}
	log.Debugf("engine %s, numbering %s, format %s", cfg.Engine, cfg.Numbering, cfg.Format)
	return nil
}

// overridden reports whether the configuration differs from what a
// workspace would discover on its own.
func (o *globalOptions) overridden() bool {
	return o.configPath != "" || o.engine != "" || o.numbering != ""
}

// analyze reads the named file, or stdin for "-", and analyzes it.
func (o *globalOptions) analyze(cmd *cobra.Command, name string) (*frontend.Result, error) {
	source, filename, err := readSource(cmd.InOrStdin(), name)
	if err != nil {
		return nil, err
	}
	opts := append(o.cfg.AnalyzeOptions(), frontend.WithFilename(filename))
	return frontend.Analyze(source, opts...), nil
}

// encode writes res to w in the configured format.
func (o *globalOptions) encode(w io.Writer, res *frontend.Result, sections ...format.Section) error {
	enc, err := format.New(o.cfg.Format, w, sections...)
	if err != nil {
		return err
	}
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readSource(stdin io.Reader, name string) ([]byte, string, error) {
	if name == "-" {
		source, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return source, "", nil
	}
	source, err := os.ReadFile(name)
	if err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}
	return source, name, nil
}
