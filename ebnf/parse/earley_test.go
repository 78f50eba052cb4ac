package parse

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dhamidi/mini/ebnflex"
	"github.com/dhamidi/mini/grammar"
)

const listGrammar = `
List = "[" [ Item { "," Item } ] "]" .
Item = identifier | constant .
`

func compile(t *testing.T, src, start string) *Grammar {
	t.Helper()
	g, err := grammar.Parse("test", []byte(src))
	if err != nil {
		t.Fatalf("parse grammar: %v", err)
	}
	cg, err := Compile(g, start)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return cg
}

func scan(t *testing.T, src string) *ebnflex.Result {
	t.Helper()
	res := ebnflex.Scan([]byte(src), "")
	if len(res.Errors) > 0 {
		t.Fatalf("lexical errors in %q: %v", src, res.Errors)
	}
	return res
}

func TestCompileRewritesOperators(t *testing.T) {
	g := compile(t, listGrammar, "List")

	var got []string
	for _, r := range g.Rules() {
		got = append(got, r.String())
	}
	want := []string{
		`Item → identifier`,
		`Item → constant`,
		`List#2 → ε`,
		`List#2 → "," Item List#2`,
		`List#1 → Item List#2`,
		`List#1 → ε`,
		`List → "[" List#1 "]"`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rules:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		start string
	}{
		{"missing start", `A = "a" .`, "B"},
		{"lexical start", `a = "a" .`, "a"},
		{"undefined production", `A = B .`, "A"},
		{"range in syntax", `A = "a" … "z" .`, "A"},
		{"unknown token kind", `A = digit .`, "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := grammar.Parse("test", []byte(tt.src))
			if err != nil {
				t.Fatalf("parse grammar: %v", err)
			}
			if _, err := Compile(g, tt.start); err == nil {
				t.Error("Compile succeeded, want error")
			}
		})
	}
}

func TestParseList(t *testing.T) {
	g := compile(t, listGrammar, "List")

	tests := []struct {
		input string
		want  string
	}{
		{"[]", "List\n  SYMBOL [\n  SYMBOL ]\n"},
		{"[a]", "List\n  SYMBOL [\n  Item\n    IDENTIFIER a\n  SYMBOL ]\n"},
		{"[a, 1, c]", "List\n  SYMBOL [\n  Item\n    IDENTIFIER a\n  SYMBOL ,\n  Item\n    CONSTANT 1\n  SYMBOL ,\n  Item\n    IDENTIFIER c\n  SYMBOL ]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res := scan(t, tt.input)
			node, err := ParseTokens(g, res.Tokens, res.End)
			if err != nil {
				t.Fatalf("ParseTokens(%q): %v", tt.input, err)
			}
			if got := node.String(); got != tt.want {
				t.Errorf("tree:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestParseSpan(t *testing.T) {
	g := compile(t, listGrammar, "List")
	res := scan(t, "  [a,\n c ]")
	node, err := ParseTokens(g, res.Tokens, res.End)
	if err != nil {
		t.Fatal(err)
	}
	if got := node.Span.Start.String(); got != "1:3" {
		t.Errorf("span start = %s, want 1:3", got)
	}
	if got := node.Span.End.String(); got != "2:5" {
		t.Errorf("span end = %s, want 2:5", got)
	}
}

func TestParseDefaultGrammar(t *testing.T) {
	node, err := ParseFile([]byte("x := 10; print(x + 5);"), "")
	if err != nil {
		t.Fatal(err)
	}
	want := `Start
  Statement
    Assignment
      IDENTIFIER x
      ASSIGN :=
      Expr
        Term
          Factor
            CONSTANT 10
      SYMBOL ;
  Statement
    Print
      RESERVED print
      SYMBOL (
      Expr
        Term
          Factor
            IDENTIFIER x
        ARITH +
        Term
          Factor
            CONSTANT 5
      SYMBOL )
      SYMBOL ;
`
	if got := node.String(); got != want {
		t.Errorf("tree:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseDanglingElseBindsInnermost(t *testing.T) {
	node, err := ParseFile([]byte("if a then if c then x := 1; else y := 2;"), "")
	if err != nil {
		t.Fatal(err)
	}
	outer := node.Children[0].Children[0]
	if outer.Kind != "Conditional" {
		t.Fatalf("outer kind = %s, want Conditional", outer.Kind)
	}
	if len(outer.Children) != 4 {
		t.Errorf("outer conditional has %d children, want 4 (no else)", len(outer.Children))
	}
	inner := outer.Children[3].Children[0]
	if inner.Kind != "Conditional" || len(inner.Children) != 6 {
		t.Errorf("inner = %s with %d children, want Conditional with 6", inner.Kind, len(inner.Children))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"x := ;", `1:6: unexpected ";", expected "(" or "[" or constant or identifier`},
		{"if x then", `1:10: unexpected end of input`},
		{"", `1:1: unexpected end of input`},
		{"x := 1; }", `1:9: unexpected "}"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseFile([]byte(tt.input), "")
			if err == nil {
				t.Fatalf("ParseFile(%q) succeeded, want error", tt.input)
			}
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("error %v is %T, want *Error", err, err)
			}
			if !strings.HasPrefix(err.Error(), tt.want) {
				t.Errorf("error = %q, want prefix %q", err, tt.want)
			}
		})
	}
}

func TestParseEndOfInputError(t *testing.T) {
	_, err := ParseFile([]byte("x := 1 + "), "prog.mini")
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("error %v is %T, want *Error", err, err)
	}
	if perr.Got != nil {
		t.Errorf("Got = %v, want end of input", perr.Got)
	}
	if perr.Pos.String() != "prog.mini:1:10" {
		t.Errorf("Pos = %s, want prog.mini:1:10", perr.Pos)
	}
}

func TestRecognizeChart(t *testing.T) {
	g := compile(t, listGrammar, "List")
	res := scan(t, "[a]")
	p := NewEarleyParser(g, res.Tokens)
	if err := p.Recognize(); err != nil {
		t.Fatal(err)
	}
	chart := p.Chart()
	if len(chart) != 4 {
		t.Fatalf("chart has %d sets, want 4", len(chart))
	}
	for i, set := range chart {
		if len(set.Items()) == 0 {
			t.Errorf("chart[%d] is empty", i)
		}
	}
}
