// Package frontend runs the lexer, the symbol table builder and the syntax
// analyzer over one source buffer.
package frontend

import (
	"errors"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/mini/ebnflex"
	"github.com/dhamidi/mini/symtab"
	"github.com/dhamidi/mini/syntax"
)

var log = commonlog.GetLogger("mini.frontend")

type Option func(*analyzer)

type analyzer struct {
	filename  string
	numbering symtab.Numbering
	engine    syntax.Engine
}

func WithFilename(name string) Option {
	return func(a *analyzer) {
		a.filename = name
	}
}

func WithNumbering(n symtab.Numbering) Option {
	return func(a *analyzer) {
		a.numbering = n
	}
}

func WithEngine(e syntax.Engine) Option {
	return func(a *analyzer) {
		a.engine = e
	}
}

// Result holds everything known about one source buffer. The symbol table
// and the tree are independent outputs of the same token stream.
type Result struct {
	Filename      string
	Source        []byte
	Tokens        []ebnflex.Token
	LexicalErrors []*ebnflex.LexicalError
	Symbols       *symtab.Table
	Tree          *syntax.Node        // nil when the syntax check failed
	SyntaxError   *syntax.SyntaxError // nil when Tree is set
	End           ebnflex.Position

	// Err is set when the analysis itself could not run.
	Err error
}

// OK reports whether the source has neither lexical nor syntax errors.
func (r *Result) OK() bool {
	return len(r.LexicalErrors) == 0 && r.SyntaxError == nil && r.Err == nil
}

// Errors returns the lexical errors in source order followed by the syntax
// error, if any.
func (r *Result) Errors() []error {
	var errs []error
	for _, e := range r.LexicalErrors {
		errs = append(errs, e)
	}
	if r.SyntaxError != nil {
		errs = append(errs, r.SyntaxError)
	}
	if r.Err != nil {
		errs = append(errs, r.Err)
	}
	return errs
}

// Joined joins all errors of the result, or returns nil.
func (r *Result) Joined() error {
	return errors.Join(r.Errors()...)
}

// Analyze tokenizes src and runs the symbol table builder and the syntax
// analyzer on the tokens.
func Analyze(src []byte, opts ...Option) *Result {
	a := &analyzer{}
	for _, opt := range opts {
		opt(a)
	}

	scanned := ebnflex.Scan(src, a.filename)
	res := &Result{
		Filename:      a.filename,
		Source:        src,
		Tokens:        scanned.Tokens,
		LexicalErrors: scanned.Errors,
		End:           scanned.End,
		Symbols:       symtab.Build(scanned.Tokens, symtab.WithNumbering(a.numbering)),
	}

	tree, err := syntax.Parse(scanned.Tokens, syntax.WithEnd(scanned.End), syntax.WithEngine(a.engine))
	var serr *syntax.SyntaxError
	switch {
	case err == nil:
		res.Tree = tree
	case errors.As(err, &serr):
		res.SyntaxError = serr
	default:
		res.Err = err
		log.Errorf("%s: %s", displayName(a.filename), err)
	}

	log.Debugf("%s: %d tokens, %d lexical errors, %d symbols, engine %s",
		displayName(a.filename), len(res.Tokens), len(res.LexicalErrors), res.Symbols.Len(), a.engine)
	return res
}

func displayName(filename string) string {
	if filename == "" {
		return "<input>"
	}
	return filename
}
