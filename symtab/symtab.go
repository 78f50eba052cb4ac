// Package symtab builds the symbol table of a token stream.
//
// Every distinct identifier and constant lexeme gets one entry, created the
// first time the lexeme is seen. IDs are sequential and never reused or
// renumbered. By default each category has its own counter starting at 1.
package symtab

import (
	"fmt"
	"strings"

	"github.com/dhamidi/mini/ebnflex"
)

// Category classifies a symbol table entry.
type Category int

const (
	Identifier Category = iota + 1
	Constant
)

func (c Category) String() string {
	switch c {
	case Identifier:
		return "Identifier"
	case Constant:
		return "Constant"
	}
	return "Unknown"
}

// CategoryOf returns the category a token kind is recorded under.
func CategoryOf(kind ebnflex.Kind) (Category, bool) {
	switch kind {
	case ebnflex.KindIdentifier:
		return Identifier, true
	case ebnflex.KindConstant:
		return Constant, true
	}
	return 0, false
}

// Numbering selects how IDs are assigned.
type Numbering int

const (
	// PerCategoryNumbering keeps one counter per category.
	PerCategoryNumbering Numbering = iota
	// SharedNumbering uses one counter for all categories.
	SharedNumbering
)

func (n Numbering) String() string {
	if n == SharedNumbering {
		return "shared"
	}
	return "per-category"
}

// ParseNumbering parses "per-category" or "shared".
func ParseNumbering(s string) (Numbering, error) {
	switch s {
	case "", "per-category":
		return PerCategoryNumbering, nil
	case "shared":
		return SharedNumbering, nil
	}
	return 0, fmt.Errorf("unknown numbering %q (want per-category or shared)", s)
}

// Entry is one row of the symbol table.
type Entry struct {
	ID       int
	Lexeme   string
	Category Category
	Position ebnflex.Position // first occurrence
}

func (e Entry) String() string {
	return fmt.Sprintf("%d: %s -> %s", e.ID, e.Lexeme, e.Category)
}

type key struct {
	category Category
	lexeme   string
}

type Option func(*Table)

// WithNumbering selects the ID numbering scheme.
func WithNumbering(n Numbering) Option {
	return func(t *Table) {
		t.numbering = n
	}
}

// Table maps identifier and constant lexemes to entries in first-seen order.
// A Table is not safe for concurrent use.
type Table struct {
	numbering Numbering
	entries   []*Entry
	index     map[key]*Entry
	next      map[Category]int
}

// New returns an empty table.
func New(opts ...Option) *Table {
	t := &Table{
		index: make(map[key]*Entry),
		next:  make(map[Category]int),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Build returns the symbol table of tokens.
func Build(tokens []ebnflex.Token, opts ...Option) *Table {
	t := New(opts...)
	for _, tok := range tokens {
		t.Add(tok)
	}
	return t
}

// Add records tok if it is an identifier or constant. It returns the entry
// for the lexeme and whether the entry was created by this call.
func (t *Table) Add(tok ebnflex.Token) (*Entry, bool) {
	cat, ok := CategoryOf(tok.Kind)
	if !ok {
		return nil, false
	}

	k := key{category: cat, lexeme: tok.Literal}
	if e, ok := t.index[k]; ok {
		return e, false
	}

	e := &Entry{
		ID:       t.nextID(cat),
		Lexeme:   tok.Literal,
		Category: cat,
		Position: tok.Position,
	}
	t.entries = append(t.entries, e)
	t.index[k] = e
	return e, true
}

func (t *Table) nextID(cat Category) int {
	counter := cat
	if t.numbering == SharedNumbering {
		counter = 0
	}
	t.next[counter]++
	return t.next[counter]
}

// Lookup finds the entry for lexeme in any category. Identifier and constant
// lexemes never collide, so at most one entry matches.
func (t *Table) Lookup(lexeme string) (Entry, bool) {
	for _, cat := range []Category{Identifier, Constant} {
		if e, ok := t.LookupIn(cat, lexeme); ok {
			return e, true
		}
	}
	return Entry{}, false
}

// LookupIn finds the entry for lexeme within one category.
func (t *Table) LookupIn(cat Category, lexeme string) (Entry, bool) {
	e, ok := t.index[key{category: cat, lexeme: lexeme}]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Entries returns all entries in first-seen order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = *e
	}
	return out
}

// InCategory returns the entries of one category in first-seen order.
func (t *Table) InCategory(cat Category) []Entry {
	var out []Entry
	for _, e := range t.entries {
		if e.Category == cat {
			out = append(out, *e)
		}
	}
	return out
}

// Map returns the table keyed by lexeme.
func (t *Table) Map() map[string]Entry {
	out := make(map[string]Entry, len(t.entries))
	for _, e := range t.entries {
		out[e.Lexeme] = *e
	}
	return out
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Numbering returns the numbering scheme of the table.
func (t *Table) Numbering() Numbering {
	return t.numbering
}

// String lists the entries one per line.
func (t *Table) String() string {
	var b strings.Builder
	for _, e := range t.entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}
