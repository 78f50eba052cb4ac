// Package ebnflex provides lexical scanning based on an EBNF lexicon.
//
// The token vocabulary is the "token" production of the lexicon grammar: its
// alternatives are tried in order at each position and the first one that
// matches wins, consuming its longest match. Characters that start no token
// are reported as LexicalErrors and skipped one at a time; they never appear
// in the token stream.
package ebnflex

import (
	"errors"
	"io"
	"unicode/utf8"
)

// Lexer tokenizes input based on a Lexicon.
type Lexer struct {
	matcher  *Matcher
	input    []byte
	filename string
	pos      int
	line     int
	column   int
}

// NewLexer creates a lexer for the given lexicon and input.
func NewLexer(lexicon *Lexicon, input []byte, filename string) *Lexer {
	return &Lexer{
		matcher:  lexicon.NewMatcher(input),
		input:    input,
		filename: filename,
		pos:      0,
		line:     1,
		column:   1,
	}
}

// Position returns the current position in the input.
func (l *Lexer) Position() Position {
	return Position{
		Filename: l.filename,
		Offset:   l.pos,
		Line:     l.line,
		Column:   l.column,
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

// advance consumes one character and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.input) {
		return utf8.RuneError
	}
	ch, size := utf8.DecodeRune(l.input[l.pos:])
	l.pos += size
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.peek() {
		case ' ', '\t', '\r', '\n', '\f', '\v':
			l.advance()
		default:
			return
		}
	}
}

// Next returns the next token. At the end of input it returns io.EOF. A
// character that starts no token is consumed and reported as a
// *LexicalError; scanning may continue after it.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()
	if l.pos >= len(l.input) {
		return Token{}, io.EOF
	}

	startPos := l.Position()

	kind, n, ok := l.matcher.Match(l.pos)
	if !ok {
		ch := l.advance()
		return Token{}, &LexicalError{Char: ch, Position: startPos}
	}

	literal := string(l.input[l.pos : l.pos+n])
	for l.pos < startPos.Offset+n {
		l.advance()
	}

	return Token{
		Kind:     kind,
		Literal:  literal,
		Position: startPos,
	}, nil
}

// Result is the outcome of scanning one input.
type Result struct {
	Tokens []Token
	Errors []*LexicalError
	End    Position // just past the last character
}

// Tokenize reads all tokens from input, collecting lexical errors on the way.
func (l *Lexer) Tokenize() *Result {
	res := &Result{}
	for {
		tok, err := l.Next()
		if err == io.EOF {
			break
		}
		var lexErr *LexicalError
		if errors.As(err, &lexErr) {
			res.Errors = append(res.Errors, lexErr)
			continue
		}
		res.Tokens = append(res.Tokens, tok)
	}
	res.End = l.Position()
	return res
}

// Scan tokenizes src with the default lexicon.
func Scan(src []byte, filename string) *Result {
	return NewLexer(MustDefaultLexicon(), src, filename).Tokenize()
}

// Tokenize tokenizes source with the default lexicon and returns the tokens
// and lexical errors in source order.
func Tokenize(source []byte) ([]Token, []*LexicalError) {
	res := Scan(source, "")
	return res.Tokens, res.Errors
}
