package format

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/mini/frontend"
)

// LineEncoder writes one tab-separated record per token, symbol and error,
// for consumption by line-oriented tools.
type LineEncoder struct {
	w        io.Writer
	sections []Section
	res      *frontend.Result
}

func NewLineEncoder(w io.Writer, sections ...Section) *LineEncoder {
	if len(sections) == 0 {
		sections = AllSections
	}
	return &LineEncoder{w: w, sections: sections}
}

func (e *LineEncoder) Encode(res *frontend.Result) error {
	e.res = res
	return write(e.w, e)
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	if e.res == nil {
		return nil, errors.New("format: nothing to encode")
	}
	var sb strings.Builder
	res := e.res

	if has(e.sections, SectionTokens) {
		for _, tok := range res.Tokens {
			fmt.Fprintf(&sb, "token\t%s\t%s\t%d:%d\n",
				tok.Kind,
				tok.Literal,
				tok.Position.Line,
				tok.Position.Column,
			)
		}
	}

	if has(e.sections, SectionSymbols) {
		for _, entry := range res.Symbols.Entries() {
			fmt.Fprintf(&sb, "symbol\t%d\t%s\t%s\n",
				entry.ID,
				entry.Lexeme,
				entry.Category,
			)
		}
	}

	if has(e.sections, SectionTree) && res.Tree != nil {
		fmt.Fprintf(&sb, "tree\t%d\n", len(res.Tree.Statements()))
	}

	if has(e.sections, SectionErrors) {
		for _, err := range res.Errors() {
			p := describeProblem(err)
			fmt.Fprintf(&sb, "error\t%s\t%d:%d\t%s\n", p.Kind, p.Line, p.Column, p.Message)
		}
	}

	return []byte(sb.String()), nil
}
