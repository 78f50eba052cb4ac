package parse

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/mini/ebnflex"
	"github.com/dhamidi/mini/grammar"
)

// symbol is one element on the right-hand side of a rule.
type symbol struct {
	name     string // production name; empty for literals
	literal  string // token literal to match
	terminal bool
}

func (s symbol) String() string {
	if s.name == "" {
		return fmt.Sprintf("%q", s.literal)
	}
	return s.name
}

// matches reports whether tok can stand for the terminal s. Lexical names
// match by token kind, quoted strings by literal.
func (s symbol) matches(tok ebnflex.Token) bool {
	if s.name != "" {
		return tok.Kind.Production() == s.name
	}
	return tok.Literal == s.literal
}

// Rule is a plain context-free rule. EBNF groups, options and repetitions
// are rewritten into helper rules whose names contain '#'.
type Rule struct {
	LHS string
	rhs []symbol
}

func (r *Rule) String() string {
	parts := make([]string, len(r.rhs))
	for i, s := range r.rhs {
		parts[i] = s.String()
	}
	if len(parts) == 0 {
		return r.LHS + " → ε"
	}
	return r.LHS + " → " + strings.Join(parts, " ")
}

// IsHelper reports whether name was introduced by rewriting EBNF operators.
func IsHelper(name string) bool {
	return strings.Contains(name, "#")
}

// Grammar is an EBNF grammar compiled into plain rules for Earley parsing.
// A Grammar is immutable and safe for concurrent use.
type Grammar struct {
	Start    string
	rules    []*Rule
	byLHS    map[string][]int
	nullable map[string]bool
}

// Rules returns the compiled rules in definition order.
func (g *Grammar) Rules() []*Rule {
	out := make([]*Rule, len(g.rules))
	copy(out, g.rules)
	return out
}

type compiler struct {
	source  ebnf.Grammar
	out     *Grammar
	helpers map[string]int
}

// Compile rewrites the syntactic productions of g reachable from start into
// plain rules. Lowercase production names are treated as token kinds.
func Compile(g ebnf.Grammar, start string) (*Grammar, error) {
	prod, ok := g[start]
	if !ok || prod.Expr == nil {
		return nil, fmt.Errorf("production %q not found in grammar", start)
	}
	if grammar.IsLexical(start) {
		return nil, fmt.Errorf("start production %q is lexical", start)
	}

	c := &compiler{
		source:  g,
		out:     &Grammar{Start: start, byLHS: make(map[string][]int)},
		helpers: make(map[string]int),
	}
	for _, name := range grammar.Names(grammar.Reachable(g, start)) {
		if grammar.IsLexical(name) {
			continue
		}
		p := g[name]
		if p.Expr == nil {
			return nil, fmt.Errorf("production %q is empty", name)
		}
		if err := c.define(name, name, p.Expr); err != nil {
			return nil, err
		}
	}
	c.out.computeNullable()
	return c.out, nil
}

func (c *compiler) add(lhs string, rhs []symbol) {
	c.out.byLHS[lhs] = append(c.out.byLHS[lhs], len(c.out.rules))
	c.out.rules = append(c.out.rules, &Rule{LHS: lhs, rhs: rhs})
}

// define adds one rule per alternative of expr.
func (c *compiler) define(owner, lhs string, expr ebnf.Expression) error {
	alts, ok := expr.(ebnf.Alternative)
	if !ok {
		alts = ebnf.Alternative{expr}
	}
	for _, alt := range alts {
		rhs, err := c.sequence(owner, alt)
		if err != nil {
			return err
		}
		c.add(lhs, rhs)
	}
	return nil
}

func (c *compiler) sequence(owner string, expr ebnf.Expression) ([]symbol, error) {
	seq, ok := expr.(ebnf.Sequence)
	if !ok {
		seq = ebnf.Sequence{expr}
	}
	rhs := make([]symbol, 0, len(seq))
	for _, item := range seq {
		sym, err := c.symbol(owner, item)
		if err != nil {
			return nil, err
		}
		rhs = append(rhs, sym)
	}
	return rhs, nil
}

func (c *compiler) helper(owner string) string {
	c.helpers[owner]++
	return fmt.Sprintf("%s#%d", owner, c.helpers[owner])
}

func (c *compiler) symbol(owner string, expr ebnf.Expression) (symbol, error) {
	switch e := expr.(type) {
	case *ebnf.Name:
		if grammar.IsLexical(e.String) {
			if _, ok := ebnflex.KindOf(e.String); !ok {
				return symbol{}, fmt.Errorf("%s: %q is not a token kind", owner, e.String)
			}
			return symbol{name: e.String, terminal: true}, nil
		}
		if p, ok := c.source[e.String]; !ok || p.Expr == nil {
			return symbol{}, fmt.Errorf("%s: undefined production %q", owner, e.String)
		}
		return symbol{name: e.String}, nil

	case *ebnf.Token:
		return symbol{literal: e.String, terminal: true}, nil

	case *ebnf.Group:
		h := c.helper(owner)
		return symbol{name: h}, c.define(owner, h, e.Body)

	case *ebnf.Option:
		h := c.helper(owner)
		if err := c.define(owner, h, e.Body); err != nil {
			return symbol{}, err
		}
		c.add(h, nil)
		return symbol{name: h}, nil

	case *ebnf.Repetition:
		// H → ε | body H
		h := c.helper(owner)
		c.add(h, nil)
		alts, ok := e.Body.(ebnf.Alternative)
		if !ok {
			alts = ebnf.Alternative{e.Body}
		}
		for _, alt := range alts {
			rhs, err := c.sequence(owner, alt)
			if err != nil {
				return symbol{}, err
			}
			c.add(h, append(rhs, symbol{name: h}))
		}
		return symbol{name: h}, nil

	case ebnf.Alternative, ebnf.Sequence:
		h := c.helper(owner)
		return symbol{name: h}, c.define(owner, h, e)

	case *ebnf.Range:
		return symbol{}, fmt.Errorf("%s: character ranges are only allowed in lexical productions", owner)
	}
	return symbol{}, fmt.Errorf("%s: unsupported expression %T", owner, expr)
}

func (g *Grammar) computeNullable() {
	g.nullable = make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for _, r := range g.rules {
			if g.nullable[r.LHS] {
				continue
			}
			empty := true
			for _, s := range r.rhs {
				if s.terminal || !g.nullable[s.name] {
					empty = false
					break
				}
			}
			if empty {
				g.nullable[r.LHS] = true
				changed = true
			}
		}
	}
}

// Item represents an Earley item: a rule with a dot position and origin.
type Item struct {
	Rule   int // index into the grammar's rules
	Dot    int // number of right-hand side symbols already recognized
	Origin int // chart position where this item started
}

// ItemSet is a set of Earley items at a particular chart position.
type ItemSet struct {
	items []Item
	seen  map[Item]bool
	done  map[doneKey]bool // completed (LHS, origin) pairs
}

type doneKey struct {
	lhs    string
	origin int
}

func newItemSet() *ItemSet {
	return &ItemSet{
		seen: make(map[Item]bool),
		done: make(map[doneKey]bool),
	}
}

// Items returns the items in the order they were added.
func (s *ItemSet) Items() []Item {
	return s.items
}

func (s *ItemSet) add(item Item) bool {
	if s.seen[item] {
		return false
	}
	s.seen[item] = true
	s.items = append(s.items, item)
	return true
}

// Error reports input that the grammar does not derive.
type Error struct {
	Pos      ebnflex.Position
	Got      *ebnflex.Token // nil at end of input
	Expected []string       // terminals that would have been accepted
}

func (e *Error) Error() string {
	got := "end of input"
	if e.Got != nil {
		got = fmt.Sprintf("%q", e.Got.Literal)
	}
	if len(e.Expected) == 0 {
		return fmt.Sprintf("%s: unexpected %s", e.Pos, got)
	}
	return fmt.Sprintf("%s: unexpected %s, expected %s", e.Pos, got, strings.Join(e.Expected, " or "))
}

// EarleyParser recognizes a token sequence with the Earley algorithm and
// extracts one derivation as a concrete syntax tree. Nullable nonterminals
// are handled by advancing over them during prediction.
type EarleyParser struct {
	grammar *Grammar
	tokens  []ebnflex.Token
	end     ebnflex.Position
	chart   []*ItemSet

	memo     map[span]*Node
	visiting map[span]bool
}

type span struct {
	lhs        string
	start, end int
}

// NewEarleyParser creates a new Earley parser.
func NewEarleyParser(g *Grammar, tokens []ebnflex.Token) *EarleyParser {
	p := &EarleyParser{grammar: g, tokens: tokens}
	if n := len(tokens); n > 0 {
		p.end = tokens[n-1].End()
	}
	return p
}

// SetEnd sets the position reported for errors at the end of input.
func (p *EarleyParser) SetEnd(pos ebnflex.Position) {
	p.end = pos
}

// Chart returns the item sets of the last parse.
func (p *EarleyParser) Chart() []*ItemSet {
	return p.chart
}

// Recognize fills the chart and reports whether the tokens derive from the
// start production.
func (p *EarleyParser) Recognize() error {
	g := p.grammar
	n := len(p.tokens)
	p.chart = make([]*ItemSet, n+1)
	for i := range p.chart {
		p.chart[i] = newItemSet()
	}

	for _, r := range g.byLHS[g.Start] {
		p.chart[0].add(Item{Rule: r})
	}

	for i := 0; i <= n; i++ {
		set := p.chart[i]
		// Items may be added during iteration.
		for j := 0; j < len(set.items); j++ {
			item := set.items[j]
			rule := g.rules[item.Rule]

			if item.Dot == len(rule.rhs) {
				p.complete(i, item)
				continue
			}

			next := rule.rhs[item.Dot]
			if next.terminal {
				if i < n && next.matches(p.tokens[i]) {
					p.chart[i+1].add(advance(item))
				}
				continue
			}

			for _, r := range g.byLHS[next.name] {
				set.add(Item{Rule: r, Origin: i})
			}
			if g.nullable[next.name] {
				set.add(advance(item))
			}
		}
	}

	if p.chart[n].done[doneKey{g.Start, 0}] {
		return nil
	}
	return p.failure()
}

func advance(item Item) Item {
	item.Dot++
	return item
}

func (p *EarleyParser) complete(pos int, completed Item) {
	lhs := p.grammar.rules[completed.Rule].LHS
	p.chart[pos].done[doneKey{lhs, completed.Origin}] = true

	origin := p.chart[completed.Origin]
	for j := 0; j < len(origin.items); j++ {
		item := origin.items[j]
		rule := p.grammar.rules[item.Rule]
		if item.Dot < len(rule.rhs) && !rule.rhs[item.Dot].terminal && rule.rhs[item.Dot].name == lhs {
			p.chart[pos].add(advance(item))
		}
	}
}

// failure builds the error for the furthest chart position that still
// holds items.
func (p *EarleyParser) failure() error {
	furthest := 0
	for i := len(p.chart) - 1; i >= 0; i-- {
		if len(p.chart[i].items) > 0 {
			furthest = i
			break
		}
	}

	err := &Error{Pos: p.end, Expected: p.expected(furthest)}
	if furthest < len(p.tokens) {
		tok := p.tokens[furthest]
		err.Got = &tok
		err.Pos = tok.Position
	}
	return err
}

func (p *EarleyParser) expected(pos int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range p.chart[pos].items {
		rule := p.grammar.rules[item.Rule]
		if item.Dot == len(rule.rhs) || !rule.rhs[item.Dot].terminal {
			continue
		}
		s := rule.rhs[item.Dot].String()
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// Parse recognizes the tokens and returns the concrete syntax tree of one
// derivation. Helper rules are flattened into their parents. When the
// grammar is ambiguous, later split points are preferred, so an optional
// tail attaches to the innermost construct that can take it.
func (p *EarleyParser) Parse() (*Node, error) {
	if err := p.Recognize(); err != nil {
		return nil, err
	}

	p.memo = make(map[span]*Node)
	p.visiting = make(map[span]bool)
	root := p.derive(p.grammar.Start, 0, len(p.tokens))
	if root == nil {
		return nil, fmt.Errorf("parse: no derivation of %s", p.grammar.Start)
	}
	return root, nil
}

func (p *EarleyParser) derive(lhs string, start, end int) *Node {
	key := span{lhs, start, end}
	if node, ok := p.memo[key]; ok {
		return node
	}
	if p.visiting[key] {
		return nil
	}
	p.visiting[key] = true
	defer delete(p.visiting, key)

	var result *Node
	for _, r := range p.grammar.byLHS[lhs] {
		rule := p.grammar.rules[r]
		if !p.chart[end].seen[Item{Rule: r, Dot: len(rule.rhs), Origin: start}] {
			continue
		}
		children, ok := p.split(r, len(rule.rhs), start, end)
		if !ok {
			continue
		}
		result = NewNonTerminal(lhs)
		for _, c := range children {
			result.AddChild(c)
		}
		if len(children) == 0 && start < len(p.tokens) {
			pos := p.tokens[start].Position
			result.Span = Span{Start: pos, End: pos}
		}
		break
	}
	p.memo[key] = result
	return result
}

// split derives the first k symbols of rule r over tokens[start:end],
// working from the last symbol backwards.
func (p *EarleyParser) split(r, k, start, end int) ([]*Node, bool) {
	if k == 0 {
		return nil, start == end
	}
	sym := p.grammar.rules[r].rhs[k-1]

	if sym.terminal {
		mid := end - 1
		if mid < start || !sym.matches(p.tokens[mid]) || !p.chart[mid].seen[Item{Rule: r, Dot: k - 1, Origin: start}] {
			return nil, false
		}
		prefix, ok := p.split(r, k-1, start, mid)
		if !ok {
			return nil, false
		}
		return append(prefix, NewTerminal(p.tokens[mid])), true
	}

	for mid := end; mid >= start; mid-- {
		if !p.chart[mid].seen[Item{Rule: r, Dot: k - 1, Origin: start}] {
			continue
		}
		if !p.chart[end].done[doneKey{sym.name, mid}] {
			continue
		}
		child := p.derive(sym.name, mid, end)
		if child == nil {
			continue
		}
		prefix, ok := p.split(r, k-1, start, mid)
		if !ok {
			continue
		}
		if IsHelper(sym.name) {
			return append(prefix, child.Children...), true
		}
		return append(prefix, child), true
	}
	return nil, false
}
