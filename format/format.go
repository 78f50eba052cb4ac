// Package format renders analysis results for people and programs.
package format

import (
	"encoding"
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/mini/frontend"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(res *frontend.Result) error
}

// Section is one part of a result.
type Section int

const (
	SectionTokens Section = iota
	SectionSymbols
	SectionTree
	SectionErrors
)

// AllSections lists every section in output order.
var AllSections = []Section{SectionTokens, SectionSymbols, SectionTree, SectionErrors}

var sectionNames = map[Section]string{
	SectionTokens:  "tokens",
	SectionSymbols: "symbols",
	SectionTree:    "tree",
	SectionErrors:  "errors",
}

func (s Section) String() string {
	if name, ok := sectionNames[s]; ok {
		return name
	}
	return "unknown"
}

// Formats lists the names accepted by New.
var Formats = []string{"text", "json", "line"}

// New returns the encoder called name. sections applies to the text and line
// encoders; the JSON encoder always writes every section.
func New(name string, w io.Writer, sections ...Section) (Encoder, error) {
	switch name {
	case "", "text":
		return NewTextEncoder(w, sections...), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "line":
		return NewLineEncoder(w, sections...), nil
	}
	return nil, fmt.Errorf("unknown format %q (want %s)", name, strings.Join(Formats, ", "))
}

func write(w io.Writer, m encoding.TextMarshaler) error {
	text, err := m.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}

func has(sections []Section, s Section) bool {
	for _, x := range sections {
		if x == s {
			return true
		}
	}
	return false
}
