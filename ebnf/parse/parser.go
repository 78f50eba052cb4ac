package parse

import (
	"sync"

	"github.com/dhamidi/mini/ebnflex"
	"github.com/dhamidi/mini/grammar"
)

var defaultGrammar = sync.OnceValues(func() (*Grammar, error) {
	g, err := grammar.Syntax()
	if err != nil {
		return nil, err
	}
	return Compile(g, grammar.SyntaxStart)
})

// Default returns the compiled statement grammar.
func Default() (*Grammar, error) {
	return defaultGrammar()
}

// ParseTokens is a convenience function to parse tokens with a grammar using
// Earley parsing. end is the position reported for errors at the end of input.
func ParseTokens(g *Grammar, tokens []ebnflex.Token, end ebnflex.Position) (*Node, error) {
	parser := NewEarleyParser(g, tokens)
	parser.SetEnd(end)
	return parser.Parse()
}

// ParseFile tokenizes input with the default lexicon and parses it with the
// default grammar.
func ParseFile(input []byte, filename string) (*Node, error) {
	g, err := Default()
	if err != nil {
		return nil, err
	}
	res := ebnflex.Scan(input, filename)
	if len(res.Errors) > 0 {
		return nil, res.Errors[0]
	}
	return ParseTokens(g, res.Tokens, res.End)
}
