// Package parse provides Earley parsing of token streams against an EBNF
// grammar, producing concrete syntax trees.
package parse

import (
	"strings"

	"github.com/dhamidi/mini/ebnflex"
)

// Span represents a range in source code.
type Span struct {
	Start ebnflex.Position
	End   ebnflex.Position
}

// Node represents a node in the concrete syntax tree.
// Leaf nodes have a non-nil Token; interior nodes have Children.
type Node struct {
	Kind     string         // Production name, or token kind for leaves
	Children []*Node        // Child nodes (nil for terminals)
	Token    *ebnflex.Token // The token (non-nil for terminals)
	Span     Span           // Source span covering this node
}

// IsTerminal returns true if this is a leaf node (token).
func (n *Node) IsTerminal() bool {
	return n.Token != nil
}

// Text returns the token literal of a leaf, or "" for interior nodes.
func (n *Node) Text() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// AddChild appends a child node and updates the span.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	n.Children = append(n.Children, child)
	if len(n.Children) == 1 {
		n.Span.Start = child.Span.Start
	}
	n.Span.End = child.Span.End
}

// String renders the tree one node per line, children indented by two spaces.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b, 0)
	return b.String()
}

func (n *Node) write(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	if n.Token != nil {
		b.WriteString(n.Token.String())
	} else {
		b.WriteString(n.Kind)
	}
	b.WriteByte('\n')
	for _, c := range n.Children {
		c.write(b, depth+1)
	}
}

// NewTerminal creates a terminal node from a token.
func NewTerminal(tok ebnflex.Token) *Node {
	return &Node{
		Kind:  tok.Kind.String(),
		Token: &tok,
		Span: Span{
			Start: tok.Position,
			End:   tok.End(),
		},
	}
}

// NewNonTerminal creates a non-terminal node.
func NewNonTerminal(kind string) *Node {
	return &Node{
		Kind:     kind,
		Children: make([]*Node, 0),
	}
}
