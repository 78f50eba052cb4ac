package format

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/dhamidi/mini/ebnflex"
	"github.com/dhamidi/mini/frontend"
	"github.com/dhamidi/mini/syntax"
)

type JSONEncoder struct {
	w   io.Writer
	res *frontend.Result
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(res *frontend.Result) error {
	e.res = res
	if err := write(e.w, e); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, "\n")
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	if e.res == nil {
		return nil, errors.New("format: nothing to encode")
	}
	return json.MarshalIndent(e.buildResultData(), "", "  ")
}

type jsonResult struct {
	File    string        `json:"file,omitempty"`
	OK      bool          `json:"ok"`
	Tokens  []jsonToken   `json:"tokens"`
	Symbols []jsonSymbol  `json:"symbols"`
	Tree    *syntax.Node  `json:"tree,omitempty"`
	Errors  []jsonProblem `json:"errors,omitempty"`
}

type jsonToken struct {
	Kind    string `json:"kind"`
	Literal string `json:"literal"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

type jsonSymbol struct {
	ID       int    `json:"id"`
	Lexeme   string `json:"lexeme"`
	Category string `json:"category"`
}

type jsonProblem struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

func (e *JSONEncoder) buildResultData() jsonResult {
	res := e.res
	data := jsonResult{
		File:    res.Filename,
		OK:      res.OK(),
		Tokens:  make([]jsonToken, 0, len(res.Tokens)),
		Symbols: make([]jsonSymbol, 0, res.Symbols.Len()),
		Tree:    res.Tree,
	}

	for _, tok := range res.Tokens {
		data.Tokens = append(data.Tokens, jsonToken{
			Kind:    tok.Kind.String(),
			Literal: tok.Literal,
			Line:    tok.Position.Line,
			Column:  tok.Position.Column,
		})
	}

	for _, entry := range res.Symbols.Entries() {
		data.Symbols = append(data.Symbols, jsonSymbol{
			ID:       entry.ID,
			Lexeme:   entry.Lexeme,
			Category: entry.Category.String(),
		})
	}

	for _, err := range res.Errors() {
		data.Errors = append(data.Errors, describeProblem(err))
	}

	return data
}

func describeProblem(err error) jsonProblem {
	var (
		lexErr *ebnflex.LexicalError
		synErr *syntax.SyntaxError
	)
	switch {
	case errors.As(err, &lexErr):
		return jsonProblem{
			Kind:    "lexical",
			Message: lexErr.Error(),
			Line:    lexErr.Position.Line,
			Column:  lexErr.Position.Column,
		}
	case errors.As(err, &synErr):
		return jsonProblem{
			Kind:    "syntax",
			Message: synErr.Message,
			Line:    synErr.Line,
			Column:  synErr.Column,
		}
	}
	return jsonProblem{Kind: "internal", Message: err.Error()}
}
