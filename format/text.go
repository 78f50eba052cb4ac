package format

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/mini/frontend"
)

// TextEncoder writes the selected sections in a human-readable layout. Each
// section gets a "== name ==" heading when more than one is selected.
type TextEncoder struct {
	w        io.Writer
	sections []Section
	res      *frontend.Result
}

func NewTextEncoder(w io.Writer, sections ...Section) *TextEncoder {
	if len(sections) == 0 {
		sections = AllSections
	}
	return &TextEncoder{w: w, sections: sections}
}

func (e *TextEncoder) Encode(res *frontend.Result) error {
	e.res = res
	return write(e.w, e)
}

func (e *TextEncoder) MarshalText() ([]byte, error) {
	if e.res == nil {
		return nil, errors.New("format: nothing to encode")
	}
	var sb strings.Builder
	headings := len(e.sections) > 1

	for _, s := range AllSections {
		if !has(e.sections, s) {
			continue
		}
		body := e.section(s)
		if body == "" && s != SectionTokens && s != SectionSymbols {
			continue
		}
		if headings {
			fmt.Fprintf(&sb, "== %s ==\n", s)
		}
		sb.WriteString(body)
	}
	return []byte(sb.String()), nil
}

func (e *TextEncoder) section(s Section) string {
	res := e.res
	var sb strings.Builder
	switch s {
	case SectionTokens:
		for _, tok := range res.Tokens {
			sb.WriteString(tok.String())
			sb.WriteByte('\n')
		}
	case SectionSymbols:
		sb.WriteString(res.Symbols.String())
	case SectionTree:
		if res.Tree != nil {
			sb.WriteString(res.Tree.String())
		}
	case SectionErrors:
		for _, err := range res.Errors() {
			sb.WriteString(err.Error())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
