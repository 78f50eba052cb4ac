package syntax

import (
	"errors"
	"fmt"

	"github.com/dhamidi/mini/ebnf/parse"
	"github.com/dhamidi/mini/ebnflex"
)

func parseEarley(tokens []ebnflex.Token, end ebnflex.Position) (*Node, error) {
	g, err := parse.Default()
	if err != nil {
		return nil, fmt.Errorf("load grammar: %w", err)
	}

	cst, err := parse.ParseTokens(g, tokens, end)
	if err != nil {
		var perr *parse.Error
		if errors.As(err, &perr) {
			return nil, newSyntaxError(perr.Pos, perr.Got, perr.Expected)
		}
		return nil, err
	}
	return fromCST(cst)
}

// fromCST converts a concrete syntax tree whose interior nodes are named
// after syntax.ebnf productions.
func fromCST(c *parse.Node) (*Node, error) {
	if c.Token != nil {
		return tokenNode(*c.Token), nil
	}

	kind, ok := productionKinds[c.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown production %q in parse tree", c.Kind)
	}
	n := &Node{
		Kind: kind,
		Span: Span{Start: c.Span.Start, End: c.Span.End},
	}
	for _, child := range c.Children {
		cn, err := fromCST(child)
		if err != nil {
			return nil, err
		}
		n.AddChild(cn)
	}
	return n, nil
}
