package ebnflex

import (
	"fmt"
	"unicode/utf8"
)

// Position represents a location in source code.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Kind is the closed set of token categories.
type Kind int

const (
	KindInvalid Kind = iota
	KindReserved
	KindIdentifier
	KindConstant
	KindArith
	KindAssign
	KindRelational
	KindSymbol
	KindString
)

// Kinds lists every valid kind in lexicon priority order.
var Kinds = []Kind{
	KindReserved,
	KindIdentifier,
	KindConstant,
	KindArith,
	KindAssign,
	KindRelational,
	KindSymbol,
	KindString,
}

var kindNames = map[Kind]string{
	KindInvalid:    "INVALID",
	KindReserved:   "RESERVED",
	KindIdentifier: "IDENTIFIER",
	KindConstant:   "CONSTANT",
	KindArith:      "ARITH",
	KindAssign:     "ASSIGN",
	KindRelational: "RELATIONAL",
	KindSymbol:     "SYMBOL",
	KindString:     "STRING",
}

var kindProductions = map[Kind]string{
	KindReserved:   "reserved_word",
	KindIdentifier: "identifier",
	KindConstant:   "constant",
	KindArith:      "arith_op",
	KindAssign:     "assign_op",
	KindRelational: "relational_op",
	KindSymbol:     "symbol",
	KindString:     "string",
}

var kindDescriptions = map[Kind]string{
	KindReserved:   "language keyword",
	KindIdentifier: "identifier of up to 15 letters and digits",
	KindConstant:   "integer constant between 0 and 100",
	KindArith:      "arithmetic operator",
	KindAssign:     "assignment operator",
	KindRelational: "relational operator",
	KindSymbol:     "special symbol",
	KindString:     "string of the characters b, f, h, j and k",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Production returns the lexicon production that defines k.
func (k Kind) Production() string {
	return kindProductions[k]
}

// Description returns a short human-readable explanation of k.
func (k Kind) Description() string {
	return kindDescriptions[k]
}

// KindOf classifies a lexicon production name.
func KindOf(production string) (Kind, bool) {
	switch production {
	case "reserved_word":
		return KindReserved, true
	case "identifier":
		return KindIdentifier, true
	case "constant":
		return KindConstant, true
	case "arith_op":
		return KindArith, true
	case "assign_op":
		return KindAssign, true
	case "relational_op":
		return KindRelational, true
	case "symbol":
		return KindSymbol, true
	case "string":
		return KindString, true
	}
	return KindInvalid, false
}

// Token represents a lexical token with its position.
type Token struct {
	Kind     Kind
	Literal  string
	Position Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s", t.Kind, t.Literal)
}

// End returns the position just past the token. Tokens never span lines.
func (t Token) End() Position {
	return Position{
		Filename: t.Position.Filename,
		Offset:   t.Position.Offset + len(t.Literal),
		Line:     t.Position.Line,
		Column:   t.Position.Column + utf8.RuneCountInString(t.Literal),
	}
}

// LexicalError records a character that starts no token.
type LexicalError struct {
	Char     rune
	Position Position
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("%s: illegal character %q", e.Position, e.Char)
}
