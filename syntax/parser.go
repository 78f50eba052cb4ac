// Package syntax checks a token stream against the statement grammar and
// builds its derivation tree.
//
// Two engines implement the same contract. The default is a recursive
// descent parser with one token of lookahead. The Earley engine runs the
// grammar in grammar/syntax.ebnf directly. Both stop at the first token no
// production accepts and report it as a *SyntaxError; no partial tree is
// returned.
package syntax

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dhamidi/mini/ebnflex"
)

// Engine selects the parsing algorithm.
type Engine int

const (
	EngineDescent Engine = iota
	EngineEarley
)

func (e Engine) String() string {
	if e == EngineEarley {
		return "earley"
	}
	return "descent"
}

// ParseEngine parses "descent" or "earley".
func ParseEngine(s string) (Engine, error) {
	switch s {
	case "", "descent":
		return EngineDescent, nil
	case "earley":
		return EngineEarley, nil
	}
	return 0, fmt.Errorf("unknown engine %q (want descent or earley)", s)
}

type Option func(*Parser)

// WithEnd sets the position reported for errors at the end of input. It
// defaults to the end of the last token.
func WithEnd(pos ebnflex.Position) Option {
	return func(p *Parser) {
		p.end = pos
		p.hasEnd = true
	}
}

func WithEngine(e Engine) Option {
	return func(p *Parser) {
		p.engine = e
	}
}

// SyntaxError reports the first token at which no production applies.
type SyntaxError struct {
	Message  string
	Filename string
	Line     int
	Column   int
	Got      *ebnflex.Token // nil at end of input
	Expected []string
}

func (e *SyntaxError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("%s:%d:%d: syntax error: %s", e.Filename, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%d:%d: syntax error: %s", e.Line, e.Column, e.Message)
}

func newSyntaxError(pos ebnflex.Position, got *ebnflex.Token, expected []string) *SyntaxError {
	what := "end of input"
	if got != nil {
		what = fmt.Sprintf("%q", got.Literal)
	}
	msg := "unexpected " + what
	if len(expected) > 0 {
		msg += ", expected " + strings.Join(expected, " or ")
	}
	return &SyntaxError{
		Message:  msg,
		Filename: pos.Filename,
		Line:     pos.Line,
		Column:   pos.Column,
		Got:      got,
		Expected: expected,
	}
}

type Parser struct {
	tokens []ebnflex.Token
	pos    int
	end    ebnflex.Position
	hasEnd bool
	engine Engine
}

// Parse builds the derivation tree of tokens. The error, if any, is a
// *SyntaxError.
func Parse(tokens []ebnflex.Token, opts ...Option) (*Node, error) {
	p := &Parser{tokens: tokens}
	for _, opt := range opts {
		opt(p)
	}
	if !p.hasEnd {
		p.end = ebnflex.Position{Line: 1, Column: 1}
		if n := len(tokens); n > 0 {
			p.end = tokens[n-1].End()
		}
	}

	if p.engine == EngineEarley {
		return parseEarley(tokens, p.end)
	}
	return p.parseStart()
}

func (p *Parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

func (p *Parser) peek() *ebnflex.Token {
	if p.atEnd() {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) advance() *Node {
	tok := p.tokens[p.pos]
	p.pos++
	return tokenNode(tok)
}

// check reports whether the next token has the given literal.
func (p *Parser) check(literal string) bool {
	tok := p.peek()
	return tok != nil && tok.Literal == literal
}

func (p *Parser) checkKind(kind ebnflex.Kind) bool {
	tok := p.peek()
	return tok != nil && tok.Kind == kind
}

func (p *Parser) expect(literal string) (*Node, error) {
	if p.check(literal) {
		return p.advance(), nil
	}
	return nil, p.errorf(fmt.Sprintf("%q", literal))
}

func (p *Parser) expectKind(kind ebnflex.Kind) (*Node, error) {
	if p.checkKind(kind) {
		return p.advance(), nil
	}
	return nil, p.errorf(kind.Production())
}

// errorf reports the next token as unexpected.
func (p *Parser) errorf(expected ...string) *SyntaxError {
	expected = append([]string(nil), expected...)
	sort.Strings(expected)
	tok := p.peek()
	if tok == nil {
		return newSyntaxError(p.end, nil, expected)
	}
	got := *tok
	return newSyntaxError(got.Position, &got, expected)
}

func (p *Parser) startNode(kind NodeKind) *Node {
	n := &Node{Kind: kind}
	if tok := p.peek(); tok != nil {
		n.Span.Start = tok.Position
	} else {
		n.Span.Start = p.end
	}
	return n
}

func (p *Parser) finishNode(n *Node) *Node {
	if p.pos > 0 {
		n.Span.End = p.tokens[p.pos-1].End()
	}
	return n
}

func tokenNode(tok ebnflex.Token) *Node {
	return &Node{
		Kind:  KindToken,
		Token: &tok,
		Span:  Span{Start: tok.Position, End: tok.End()},
	}
}

// Start = Statement { Statement } .
func (p *Parser) parseStart() (*Node, error) {
	node := p.startNode(KindStart)
	for {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		node.AddChild(stmt)
		if p.atEnd() {
			return p.finishNode(node), nil
		}
	}
}

var statementStarts = []string{`"for"`, `"if"`, `"int"`, `"print"`, `"{"`, "identifier"}

func (p *Parser) parseStatement() (*Node, error) {
	node := p.startNode(KindStatement)

	var (
		child *Node
		err   error
	)
	switch {
	case p.check("if"):
		child, err = p.parseConditional()
	case p.check("for"):
		child, err = p.parseIteration()
	case p.check("print"):
		child, err = p.parsePrint()
	case p.check("int"):
		child, err = p.parseDeclaration()
	case p.check("{"):
		child, err = p.parseBlock()
	case p.checkKind(ebnflex.KindIdentifier):
		child, err = p.parseAssignment()
	default:
		return nil, p.errorf(statementStarts...)
	}
	if err != nil {
		return nil, err
	}
	node.AddChild(child)
	return p.finishNode(node), nil
}

// parseSequence parses the remaining elements of a production in order. Each
// element is a literal, a token kind or a sub-parser.
func (p *Parser) parseSequence(node *Node, elems ...any) (*Node, error) {
	for _, elem := range elems {
		var (
			child *Node
			err   error
		)
		switch e := elem.(type) {
		case string:
			child, err = p.expect(e)
		case ebnflex.Kind:
			child, err = p.expectKind(e)
		case func() (*Node, error):
			child, err = e()
		default:
			panic(fmt.Sprintf("syntax: bad sequence element %T", elem))
		}
		if err != nil {
			return nil, err
		}
		node.AddChild(child)
	}
	return node, nil
}

// Conditional = "if" Condition "then" Statement [ "else" Statement ] .
func (p *Parser) parseConditional() (*Node, error) {
	node := p.startNode(KindConditional)
	if _, err := p.parseSequence(node, "if", p.parseCondition, "then", p.parseStatement); err != nil {
		return nil, err
	}
	// A trailing else belongs to the innermost conditional.
	if p.check("else") {
		if _, err := p.parseSequence(node, "else", p.parseStatement); err != nil {
			return nil, err
		}
	}
	return p.finishNode(node), nil
}

// Condition = Expr [ relational_op Expr ] .
func (p *Parser) parseCondition() (*Node, error) {
	node := p.startNode(KindCondition)
	if _, err := p.parseSequence(node, p.parseExpr); err != nil {
		return nil, err
	}
	if p.checkKind(ebnflex.KindRelational) {
		if _, err := p.parseSequence(node, ebnflex.KindRelational, p.parseExpr); err != nil {
			return nil, err
		}
	}
	return p.finishNode(node), nil
}

// Iteration = "for" identifier ":=" Expr ";" Statement .
func (p *Parser) parseIteration() (*Node, error) {
	node := p.startNode(KindIteration)
	if _, err := p.parseSequence(node, "for", ebnflex.KindIdentifier, ":=", p.parseExpr, ";", p.parseStatement); err != nil {
		return nil, err
	}
	return p.finishNode(node), nil
}

// Assignment = identifier ":=" Expr ";" .
func (p *Parser) parseAssignment() (*Node, error) {
	node := p.startNode(KindAssignment)
	if _, err := p.parseSequence(node, ebnflex.KindIdentifier, ":=", p.parseExpr, ";"); err != nil {
		return nil, err
	}
	return p.finishNode(node), nil
}

// Declaration = "int" identifier [ ":=" Expr ] ";" .
func (p *Parser) parseDeclaration() (*Node, error) {
	node := p.startNode(KindDeclaration)
	if _, err := p.parseSequence(node, "int", ebnflex.KindIdentifier); err != nil {
		return nil, err
	}
	if p.check(":=") {
		if _, err := p.parseSequence(node, ":=", p.parseExpr); err != nil {
			return nil, err
		}
	}
	if _, err := p.parseSequence(node, ";"); err != nil {
		return nil, err
	}
	return p.finishNode(node), nil
}

// Print = "print" "(" ( Expr | string ) ")" ";" .
func (p *Parser) parsePrint() (*Node, error) {
	node := p.startNode(KindPrint)
	if _, err := p.parseSequence(node, "print", "("); err != nil {
		return nil, err
	}
	if p.checkKind(ebnflex.KindString) {
		node.AddChild(p.advance())
	} else if p.startsFactor() {
		if _, err := p.parseSequence(node, p.parseExpr); err != nil {
			return nil, err
		}
	} else {
		return nil, p.errorf(append([]string{"string"}, factorStarts...)...)
	}
	if _, err := p.parseSequence(node, ")", ";"); err != nil {
		return nil, err
	}
	return p.finishNode(node), nil
}

// Block = "{" Statement { Statement } "}" .
func (p *Parser) parseBlock() (*Node, error) {
	node := p.startNode(KindBlock)
	if _, err := p.parseSequence(node, "{", p.parseStatement); err != nil {
		return nil, err
	}
	for !p.check("}") {
		if _, err := p.parseSequence(node, p.parseStatement); err != nil {
			return nil, err
		}
	}
	node.AddChild(p.advance())
	return p.finishNode(node), nil
}

// Expr = Term { ( "+" | "-" ) Term } .
func (p *Parser) parseExpr() (*Node, error) {
	node := p.startNode(KindExpr)
	if _, err := p.parseSequence(node, p.parseTerm); err != nil {
		return nil, err
	}
	for p.check("+") || p.check("-") {
		node.AddChild(p.advance())
		if _, err := p.parseSequence(node, p.parseTerm); err != nil {
			return nil, err
		}
	}
	return p.finishNode(node), nil
}

// Term = Factor { ( "*" | "/" ) Factor } .
func (p *Parser) parseTerm() (*Node, error) {
	node := p.startNode(KindTerm)
	if _, err := p.parseSequence(node, p.parseFactor); err != nil {
		return nil, err
	}
	for p.check("*") || p.check("/") {
		node.AddChild(p.advance())
		if _, err := p.parseSequence(node, p.parseFactor); err != nil {
			return nil, err
		}
	}
	return p.finishNode(node), nil
}

var factorStarts = []string{`"("`, `"["`, "constant", "identifier"}

func (p *Parser) startsFactor() bool {
	return p.checkKind(ebnflex.KindConstant) || p.checkKind(ebnflex.KindIdentifier) || p.check("(") || p.check("[")
}

// Factor = constant | identifier | "(" Expr ")" | List .
func (p *Parser) parseFactor() (*Node, error) {
	node := p.startNode(KindFactor)
	var err error
	switch {
	case p.checkKind(ebnflex.KindConstant), p.checkKind(ebnflex.KindIdentifier):
		node.AddChild(p.advance())
	case p.check("("):
		_, err = p.parseSequence(node, "(", p.parseExpr, ")")
	case p.check("["):
		_, err = p.parseSequence(node, p.parseList)
	default:
		return nil, p.errorf(factorStarts...)
	}
	if err != nil {
		return nil, err
	}
	return p.finishNode(node), nil
}

// List = "[" [ Expr { "," Expr } ] "]" .
func (p *Parser) parseList() (*Node, error) {
	node := p.startNode(KindList)
	if _, err := p.parseSequence(node, "["); err != nil {
		return nil, err
	}
	if !p.check("]") {
		if _, err := p.parseSequence(node, p.parseExpr); err != nil {
			return nil, err
		}
		for p.check(",") {
			if _, err := p.parseSequence(node, ",", p.parseExpr); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.parseSequence(node, "]"); err != nil {
		return nil, err
	}
	return p.finishNode(node), nil
}
