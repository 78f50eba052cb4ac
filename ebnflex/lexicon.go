package ebnflex

import (
	"fmt"
	"sync"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/mini/grammar"
)

// MaxIdentifierLength is the longest identifier the lexicon accepts.
const MaxIdentifierLength = 15

// Pattern is one entry of the token vocabulary.
type Pattern struct {
	Kind       Kind
	Production string
	Priority   int // declaration order, 0 first
	MaxLen     int // 0 means unbounded
}

// Lexicon is the ordered token vocabulary compiled from a lexical grammar.
// A Lexicon is immutable and safe for concurrent use.
type Lexicon struct {
	grammar  ebnf.Grammar
	patterns []Pattern
}

var defaultLexicon = sync.OnceValues(func() (*Lexicon, error) {
	g, err := grammar.Lexicon()
	if err != nil {
		return nil, err
	}
	return CompileLexicon(g)
})

// DefaultLexicon returns the lexicon compiled from the embedded grammar.
func DefaultLexicon() (*Lexicon, error) {
	return defaultLexicon()
}

// MustDefaultLexicon is like DefaultLexicon but panics if the embedded
// grammar is broken.
func MustDefaultLexicon() *Lexicon {
	lx, err := DefaultLexicon()
	if err != nil {
		panic(err)
	}
	return lx
}

// CompileLexicon builds a Lexicon from g. The alternatives of the "token"
// production give the patterns and their priority; each alternative must name
// a production that classifies as a Kind.
func CompileLexicon(g ebnf.Grammar) (*Lexicon, error) {
	start, ok := g[grammar.LexiconStart]
	if !ok || start.Expr == nil {
		return nil, fmt.Errorf("lexicon: production %q not found", grammar.LexiconStart)
	}

	var alts ebnf.Alternative
	switch e := start.Expr.(type) {
	case ebnf.Alternative:
		alts = e
	case *ebnf.Name:
		alts = ebnf.Alternative{e}
	default:
		return nil, fmt.Errorf("lexicon: %q must be a list of production names", grammar.LexiconStart)
	}

	lx := &Lexicon{grammar: g}
	seen := make(map[Kind]bool)
	for i, alt := range alts {
		name, ok := alt.(*ebnf.Name)
		if !ok {
			return nil, fmt.Errorf("lexicon: alternative %d of %q is not a production name", i, grammar.LexiconStart)
		}
		kind, ok := KindOf(name.String)
		if !ok {
			return nil, fmt.Errorf("lexicon: production %q is not a token kind", name.String)
		}
		if seen[kind] {
			return nil, fmt.Errorf("lexicon: token kind %s listed twice", kind)
		}
		if prod := g[name.String]; prod == nil || prod.Expr == nil {
			return nil, fmt.Errorf("lexicon: production %q not found", name.String)
		}
		seen[kind] = true

		p := Pattern{Kind: kind, Production: name.String, Priority: i}
		if kind == KindIdentifier {
			p.MaxLen = MaxIdentifierLength
		}
		lx.patterns = append(lx.patterns, p)
	}
	return lx, nil
}

// Patterns returns the patterns in priority order.
func (lx *Lexicon) Patterns() []Pattern {
	out := make([]Pattern, len(lx.patterns))
	copy(out, lx.patterns)
	return out
}

// memoKey is used for memoization of match results.
type memoKey struct {
	name   string
	offset int
}

const noMatch = -1

// Matcher resolves the winning pattern at a position of one input.
// A Matcher is not safe for concurrent use.
type Matcher struct {
	lexicon  *Lexicon
	input    []byte
	memo     map[memoKey]int  // memoization cache: key -> match length (noMatch = none)
	visiting map[memoKey]bool // cycle detection
}

// NewMatcher creates a matcher for input.
func (lx *Lexicon) NewMatcher(input []byte) *Matcher {
	return &Matcher{
		lexicon:  lx,
		input:    input,
		memo:     make(map[memoKey]int),
		visiting: make(map[memoKey]bool),
	}
}

// Match tries the patterns in priority order at offset. The first pattern
// that matches wins and its longest match is returned.
func (m *Matcher) Match(offset int) (Kind, int, bool) {
	if offset >= len(m.input) {
		return KindInvalid, 0, false
	}

	// Keep the cache bounded to one token.
	clear(m.memo)

	for _, p := range m.lexicon.patterns {
		if wordStart(p.Kind) && offset > 0 && isWordByte(m.input[offset-1]) {
			continue
		}

		clear(m.visiting)
		n := m.tryMatchName(p.Production, offset)
		if n <= 0 {
			continue
		}
		if p.MaxLen > 0 && n > p.MaxLen {
			// Every prefix of an identifier is an identifier.
			n = p.MaxLen
		}
		if wordEnd(p.Kind) && offset+n < len(m.input) && isWordByte(m.input[offset+n]) {
			continue
		}
		return p.Kind, n, true
	}
	return KindInvalid, 0, false
}

// wordStart reports whether tokens of kind k may not continue a word.
func wordStart(k Kind) bool {
	return k == KindReserved || k == KindIdentifier || k == KindConstant
}

// wordEnd reports whether tokens of kind k must end a word.
func wordEnd(k Kind) bool {
	return k == KindReserved
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// tryMatch attempts to match an expression at the given offset.
// Returns the length of the match, or noMatch.
func (m *Matcher) tryMatch(expr ebnf.Expression, offset int) int {
	switch e := expr.(type) {
	case *ebnf.Token:
		return m.tryMatchToken(e.String, offset)

	case *ebnf.Range:
		return m.tryMatchRange(e.Begin.String, e.End.String, offset)

	case ebnf.Sequence:
		total := 0
		for _, item := range e {
			n := m.tryMatch(item, offset+total)
			if n == noMatch {
				return noMatch
			}
			total += n
		}
		return total

	case ebnf.Alternative:
		best := noMatch
		for _, alt := range e {
			if n := m.tryMatch(alt, offset); n > best {
				best = n
			}
		}
		return best

	case *ebnf.Repetition:
		total := 0
		for {
			n := m.tryMatch(e.Body, offset+total)
			if n <= 0 {
				break
			}
			total += n
		}
		return total

	case *ebnf.Option:
		if n := m.tryMatch(e.Body, offset); n != noMatch {
			return n
		}
		return 0

	case *ebnf.Group:
		return m.tryMatch(e.Body, offset)

	case *ebnf.Name:
		return m.tryMatchName(e.String, offset)

	default:
		return noMatch
	}
}

// tryMatchName matches a named production with memoization and cycle detection.
func (m *Matcher) tryMatchName(name string, offset int) int {
	key := memoKey{name: name, offset: offset}

	if result, ok := m.memo[key]; ok {
		return result
	}

	// Left recursion at the same offset cannot make progress.
	if m.visiting[key] {
		return noMatch
	}

	prod, ok := m.lexicon.grammar[name]
	if !ok || prod.Expr == nil {
		m.memo[key] = noMatch
		return noMatch
	}

	m.visiting[key] = true
	result := m.tryMatch(prod.Expr, offset)
	delete(m.visiting, key)

	m.memo[key] = result
	return result
}

// tryMatchToken matches a literal string token. ebnf.Parse has already
// unquoted the token text.
func (m *Matcher) tryMatchToken(s string, offset int) int {
	if s == "" {
		return 0
	}
	if offset+len(s) > len(m.input) {
		return noMatch
	}
	if string(m.input[offset:offset+len(s)]) == s {
		return len(s)
	}
	return noMatch
}

// tryMatchRange matches a character range (e.g., "a"…"z").
func (m *Matcher) tryMatchRange(begin, end string, offset int) int {
	if offset >= len(m.input) {
		return noMatch
	}
	if len(begin) != 1 || len(end) != 1 {
		return noMatch
	}
	ch := m.input[offset]
	if ch >= begin[0] && ch <= end[0] {
		return 1
	}
	return noMatch
}
