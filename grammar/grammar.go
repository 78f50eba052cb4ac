// Package grammar holds the EBNF grammars of the mini language.
//
// Two grammars are embedded. The lexicon (lexicon.ebnf) declares the token
// vocabulary with lowercase, lexical productions; the alternatives of its
// "token" production are the token patterns in priority order. The syntax
// (syntax.ebnf) declares statements and expressions with CamelCase
// productions. Lowercase names inside the syntax refer to lexicon productions
// and stand for a token of that kind; quoted strings stand for a token with
// exactly that literal.
//
// Both grammars use the notation of golang.org/x/exp/ebnf and are checked
// with ebnf.Verify before use.
package grammar

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"golang.org/x/exp/ebnf"
)

const (
	// LexiconStart is the start production of the lexicon.
	LexiconStart = "token"
	// SyntaxStart is the start production of the syntax.
	SyntaxStart = "Start"
)

//go:embed lexicon.ebnf
var lexiconSource []byte

//go:embed syntax.ebnf
var syntaxSource []byte

var (
	lexiconOnce = sync.OnceValues(func() (ebnf.Grammar, error) {
		g, err := Parse("lexicon.ebnf", lexiconSource)
		if err != nil {
			return nil, err
		}
		if err := Verify(g, LexiconStart); err != nil {
			return nil, fmt.Errorf("verify lexicon: %w", err)
		}
		return g, nil
	})

	syntaxOnce = sync.OnceValues(func() (ebnf.Grammar, error) {
		lexicon, err := Lexicon()
		if err != nil {
			return nil, err
		}
		g, err := Parse("syntax.ebnf", syntaxSource)
		if err != nil {
			return nil, err
		}
		merged, err := Merge(g, lexicon)
		if err != nil {
			return nil, err
		}
		merged = Reachable(merged, SyntaxStart)
		if err := Verify(merged, SyntaxStart); err != nil {
			return nil, fmt.Errorf("verify syntax: %w", err)
		}
		return merged, nil
	})
)

// Lexicon returns the verified token grammar. The result is shared and must
// not be modified.
func Lexicon() (ebnf.Grammar, error) {
	return lexiconOnce()
}

// Syntax returns the verified statement grammar together with the lexicon
// productions it references. The result is shared and must not be modified.
func Syntax() (ebnf.Grammar, error) {
	return syntaxOnce()
}

// Source returns the text of an embedded grammar: "lexicon" or "syntax".
func Source(name string) ([]byte, error) {
	switch name {
	case "lexicon":
		return lexiconSource, nil
	case "syntax":
		return syntaxSource, nil
	}
	return nil, fmt.Errorf("unknown grammar %q (want lexicon or syntax)", name)
}

// Parse parses EBNF source.
func Parse(name string, src []byte) (ebnf.Grammar, error) {
	g, err := ebnf.Parse(name, bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return g, nil
}

// Load loads an EBNF grammar from a file.
func Load(filename string) (ebnf.Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	g, err := ebnf.Parse(filename, f)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return g, nil
}

// Verify checks g starting at start.
func Verify(g ebnf.Grammar, start string) error {
	return ebnf.Verify(g, start)
}

// Merge returns a new grammar containing the productions of all given
// grammars. A production defined twice is an error.
func Merge(grammars ...ebnf.Grammar) (ebnf.Grammar, error) {
	merged := make(ebnf.Grammar)
	for _, g := range grammars {
		for name, prod := range g {
			if _, dup := merged[name]; dup {
				return nil, fmt.Errorf("production %s defined twice", name)
			}
			merged[name] = prod
		}
	}
	return merged, nil
}

// Reachable returns the productions of g that can be reached from start.
// Names without a production are ignored; Verify reports them.
func Reachable(g ebnf.Grammar, start string) ebnf.Grammar {
	out := make(ebnf.Grammar)
	var visit func(name string)
	var walk func(expr ebnf.Expression)

	visit = func(name string) {
		if _, seen := out[name]; seen {
			return
		}
		prod, ok := g[name]
		if !ok {
			return
		}
		out[name] = prod
		walk(prod.Expr)
	}

	walk = func(expr ebnf.Expression) {
		switch e := expr.(type) {
		case ebnf.Alternative:
			for _, x := range e {
				walk(x)
			}
		case ebnf.Sequence:
			for _, x := range e {
				walk(x)
			}
		case *ebnf.Group:
			walk(e.Body)
		case *ebnf.Option:
			walk(e.Body)
		case *ebnf.Repetition:
			walk(e.Body)
		case *ebnf.Name:
			visit(e.String)
		}
	}

	visit(start)
	return out
}

// Names returns the production names of g in sorted order.
func Names(g ebnf.Grammar) []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsLexical reports whether name follows the lexical naming convention
// (lowercase first letter).
func IsLexical(name string) bool {
	return name != "" && name[0] >= 'a' && name[0] <= 'z'
}
