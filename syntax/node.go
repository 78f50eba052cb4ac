package syntax

import (
	"fmt"
	"strings"

	"github.com/dhamidi/mini/ebnflex"
)

type NodeKind int

const (
	KindToken NodeKind = iota

	KindStart
	KindStatement

	// Statements
	KindConditional
	KindCondition
	KindIteration
	KindAssignment
	KindDeclaration
	KindPrint
	KindBlock

	// Expressions
	KindExpr
	KindTerm
	KindFactor
	KindList
)

var nodeKindNames = map[NodeKind]string{
	KindToken:       "token",
	KindStart:       "start",
	KindStatement:   "statement",
	KindConditional: "conditional",
	KindCondition:   "condition",
	KindIteration:   "iteration",
	KindAssignment:  "assignment",
	KindDeclaration: "declaration",
	KindPrint:       "print",
	KindBlock:       "block",
	KindExpr:        "expr",
	KindTerm:        "term",
	KindFactor:      "factor",
	KindList:        "list",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// productionKinds maps syntax.ebnf production names to node kinds.
var productionKinds = map[string]NodeKind{
	"Start":       KindStart,
	"Statement":   KindStatement,
	"Conditional": KindConditional,
	"Condition":   KindCondition,
	"Iteration":   KindIteration,
	"Assignment":  KindAssignment,
	"Declaration": KindDeclaration,
	"Print":       KindPrint,
	"Block":       KindBlock,
	"Expr":        KindExpr,
	"Term":        KindTerm,
	"Factor":      KindFactor,
	"List":        KindList,
}

// Span is the source range covered by a node.
type Span struct {
	Start ebnflex.Position
	End   ebnflex.Position
}

// Node is a node of the derivation tree. Leaves have Kind KindToken and a
// non-nil Token.
type Node struct {
	Kind     NodeKind
	Span     Span
	Children []*Node
	Token    *ebnflex.Token
}

func (n *Node) AddChild(child *Node) {
	if child != nil {
		n.Children = append(n.Children, child)
	}
}

func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			result = append(result, child)
		}
	}
	return result
}

func (n *Node) TokenLiteral() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// Statements returns the top-level statement nodes of a start node.
func (n *Node) Statements() []*Node {
	return n.ChildrenOfKind(KindStatement)
}

// Walk calls fn for n and its descendants in depth-first pre-order. If fn
// returns false the children of that node are skipped.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Tokens returns the leaves of the tree in source order.
func (n *Node) Tokens() []ebnflex.Token {
	var out []ebnflex.Token
	n.Walk(func(c *Node) bool {
		if c.Token != nil {
			out = append(out, *c.Token)
		}
		return true
	})
	return out
}

func (n *Node) String() string {
	var b strings.Builder
	n.write(&b, 0, false)
	return b.String()
}

func (n *Node) StringWithPositions() string {
	var b strings.Builder
	n.write(&b, 0, true)
	return b.String()
}

func (n *Node) write(b *strings.Builder, indent int, showPositions bool) {
	b.WriteString(strings.Repeat("  ", indent))
	if n.Token != nil {
		b.WriteString(n.Token.String())
	} else {
		b.WriteString(n.Kind.String())
	}
	if showPositions {
		fmt.Fprintf(b, " [%d:%d-%d:%d]", n.Span.Start.Line, n.Span.Start.Column, n.Span.End.Line, n.Span.End.Column)
	}
	b.WriteByte('\n')

	for _, child := range n.Children {
		child.write(b, indent+1, showPositions)
	}
}
