package syntax

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dhamidi/mini/ebnflex"
)

func parseSource(t *testing.T, src string, opts ...Option) (*Node, error) {
	t.Helper()
	res := ebnflex.Scan([]byte(src), "")
	if len(res.Errors) > 0 {
		t.Fatalf("lexical errors in %q: %v", src, res.Errors)
	}
	return Parse(res.Tokens, append([]Option{WithEnd(res.End)}, opts...)...)
}

var engines = []Engine{EngineDescent, EngineEarley}

var accepted = []string{
	"x := 10; print(x + 5);",
	"x := 1;",
	"if a then b1 := 2;",
	"if a then b1 := 2; else b1 := 3;",
	"if a >= 5 then print(a); else { a := a - 1; print(a); }",
	"if a then if c then x := 1; else y := 2;",
	"for i := 0; print(i * 2);",
	"for i := 0; { x := x + i; y := x / 2; }",
	"{ x := 1; { y := 2; } }",
	"print(\"bfh\");",
	"print(\"\");",
	"int x; int y := 10 * (x + 1);",
	"x := [1, 2, x];",
	"x := [];",
	"x := ((1));",
	"then := 5;",
	"x := 1 + 2 * 3 - 4 / 5;",
	"if x = 100 then print(x); if x <> 1 then print(x);",
}

var rejected = []struct {
	src  string
	line int
	col  int
}{
	{"x := ;", 1, 6},
	{"if x then", 1, 10},
	{"x := 1", 1, 7},
	{"print(x", 1, 8},
	{"{ }", 1, 3},
	{"x := 1; )", 1, 9},
	{"if x 5 then y := 1;", 1, 6},
	{"print(if);", 1, 7},
	{"for 1 := 2; x := 1;", 1, 5},
	{"x := [1, ];", 1, 10},
	{"", 1, 1},
	{"int x := ;", 1, 10},
	{"a := (1 + 2;", 1, 12},
	{"x := 1;\n  y = 2;", 2, 5},
	{"print(\"bf\" + 1);", 1, 12},
}

func TestParseExampleProgram(t *testing.T) {
	want := `start
  statement
    assignment
      IDENTIFIER x
      ASSIGN :=
      expr
        term
          factor
            CONSTANT 10
      SYMBOL ;
  statement
    print
      RESERVED print
      SYMBOL (
      expr
        term
          factor
            IDENTIFIER x
        ARITH +
        term
          factor
            CONSTANT 5
      SYMBOL )
      SYMBOL ;
`
	for _, engine := range engines {
		t.Run(engine.String(), func(t *testing.T) {
			node, err := parseSource(t, "x := 10; print(x + 5);", WithEngine(engine))
			if err != nil {
				t.Fatal(err)
			}
			if got := node.String(); got != want {
				t.Errorf("tree:\n%s\nwant:\n%s", got, want)
			}
			if n := len(node.Statements()); n != 2 {
				t.Errorf("got %d statements, want 2", n)
			}
		})
	}
}

func TestParseAccepted(t *testing.T) {
	for _, src := range accepted {
		t.Run(src, func(t *testing.T) {
			node, err := parseSource(t, src)
			if err != nil {
				t.Fatalf("Parse(%q): %v", src, err)
			}
			if node.Kind != KindStart {
				t.Errorf("root kind = %s, want start", node.Kind)
			}
		})
	}
}

func TestParseRejected(t *testing.T) {
	for _, tt := range rejected {
		t.Run(tt.src, func(t *testing.T) {
			node, err := parseSource(t, tt.src)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.src)
			}
			if node != nil {
				t.Error("got a partial tree with the error")
			}
			var serr *SyntaxError
			if !errors.As(err, &serr) {
				t.Fatalf("error %v is %T, want *SyntaxError", err, err)
			}
			if serr.Line != tt.line || serr.Column != tt.col {
				t.Errorf("error at %d:%d, want %d:%d (%v)", serr.Line, serr.Column, tt.line, tt.col, err)
			}
		})
	}
}

func TestEnginesAgree(t *testing.T) {
	for _, src := range accepted {
		t.Run(src, func(t *testing.T) {
			descent, err := parseSource(t, src, WithEngine(EngineDescent))
			if err != nil {
				t.Fatal(err)
			}
			earley, err := parseSource(t, src, WithEngine(EngineEarley))
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(descent, earley) {
				t.Errorf("trees differ\ndescent:\n%s\nearley:\n%s", descent.StringWithPositions(), earley.StringWithPositions())
			}
		})
	}

	for _, tt := range rejected {
		t.Run(tt.src, func(t *testing.T) {
			var positions []string
			for _, engine := range engines {
				_, err := parseSource(t, tt.src, WithEngine(engine))
				var serr *SyntaxError
				if !errors.As(err, &serr) {
					t.Fatalf("%s: error %v is %T, want *SyntaxError", engine, err, err)
				}
				positions = append(positions, strings.SplitN(serr.Error(), ": ", 2)[0])
			}
			if positions[0] != positions[1] {
				t.Errorf("descent error at %s, earley error at %s", positions[0], positions[1])
			}
		})
	}
}

func TestSyntaxErrorMessage(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"x := ;", `1:6: syntax error: unexpected ";", expected "(" or "[" or constant or identifier`},
		{"if x then", `1:10: syntax error: unexpected end of input, expected "for" or "if" or "int" or "print" or "{" or identifier`},
		{"if x 5", `1:6: syntax error: unexpected "5", expected "then"`},
		{"for i = 1;", `1:7: syntax error: unexpected "=", expected ":="`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := parseSource(t, tt.src)
			if err == nil {
				t.Fatal("want error")
			}
			if err.Error() != tt.want {
				t.Errorf("error = %q\nwant %q", err, tt.want)
			}
		})
	}
}

func TestSyntaxErrorFilename(t *testing.T) {
	res := ebnflex.Scan([]byte("x :="), "prog.mini")
	_, err := Parse(res.Tokens, WithEnd(res.End))
	if err == nil || !strings.HasPrefix(err.Error(), "prog.mini:1:5: syntax error:") {
		t.Errorf("error = %v", err)
	}
}

func TestParseDefaultEnd(t *testing.T) {
	tokens, _ := ebnflex.Tokenize([]byte("x := 1   "))
	_, err := Parse(tokens)
	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("error %v is %T", err, err)
	}
	if serr.Line != 1 || serr.Column != 7 || serr.Got != nil {
		t.Errorf("error at %d:%d got %v, want 1:7 end of input", serr.Line, serr.Column, serr.Got)
	}
}

func TestPrecedence(t *testing.T) {
	node, err := parseSource(t, "x := 1 + 2 * 3;")
	if err != nil {
		t.Fatal(err)
	}
	expr := node.Statements()[0].Children[0].FirstChildOfKind(KindExpr)
	if expr == nil || len(expr.Children) != 3 {
		t.Fatalf("expr = %v", expr)
	}
	if op := expr.Children[1].TokenLiteral(); op != "+" {
		t.Errorf("top operator = %q, want +", op)
	}
	right := expr.Children[2]
	if right.Kind != KindTerm || len(right.Children) != 3 || right.Children[1].TokenLiteral() != "*" {
		t.Errorf("right operand:\n%s", right)
	}
}

func TestDanglingElse(t *testing.T) {
	node, err := parseSource(t, "if a then if c then x := 1; else y := 2;")
	if err != nil {
		t.Fatal(err)
	}
	outer := node.Statements()[0].FirstChildOfKind(KindConditional)
	if len(outer.Children) != 4 {
		t.Errorf("outer conditional has %d children, want 4", len(outer.Children))
	}
	inner := outer.Children[3].FirstChildOfKind(KindConditional)
	if inner == nil || len(inner.Children) != 6 {
		t.Errorf("inner conditional:\n%s", inner)
	}
}

func TestStringWithPositions(t *testing.T) {
	node, err := parseSource(t, "x := 1;")
	if err != nil {
		t.Fatal(err)
	}
	want := `start [1:1-1:8]
  statement [1:1-1:8]
    assignment [1:1-1:8]
      IDENTIFIER x [1:1-1:2]
      ASSIGN := [1:3-1:5]
      expr [1:6-1:7]
        term [1:6-1:7]
          factor [1:6-1:7]
            CONSTANT 1 [1:6-1:7]
      SYMBOL ; [1:7-1:8]
`
	if got := node.StringWithPositions(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestWalk(t *testing.T) {
	node, err := parseSource(t, "x := (1 + y); print(x);")
	if err != nil {
		t.Fatal(err)
	}

	var factors int
	node.Walk(func(n *Node) bool {
		if n.Kind == KindFactor {
			factors++
		}
		return true
	})
	if factors != 4 {
		t.Errorf("found %d factors, want 4", factors)
	}

	var visited int
	node.Walk(func(n *Node) bool {
		visited++
		return n.Kind != KindStatement
	})
	if visited != 3 {
		t.Errorf("visited %d nodes when pruning statements, want 3", visited)
	}

	var literals []string
	for _, tok := range node.Tokens() {
		literals = append(literals, tok.Literal)
	}
	if got := strings.Join(literals, " "); got != "x := ( 1 + y ) ; print ( x ) ;" {
		t.Errorf("tokens = %q", got)
	}
}

func TestMarshalJSON(t *testing.T) {
	node, err := parseSource(t, "x := 1;")
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(node)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`{"kind":"start","span":{"start":{"line":1,"column":1},"end":{"line":1,"column":8}},"children":[`,
		`"token":{"kind":"IDENTIFIER","literal":"x"}`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON %s\nmissing %s", data, want)
		}
	}

	_, err = parseSource(t, "x := ;")
	data, err = json.Marshal(err)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"got":";"`) || !strings.Contains(string(data), `"column":6`) {
		t.Errorf("error JSON = %s", data)
	}
}

func TestParseEngine(t *testing.T) {
	tests := []struct {
		in   string
		want Engine
		ok   bool
	}{
		{"", EngineDescent, true},
		{"descent", EngineDescent, true},
		{"earley", EngineEarley, true},
		{"lalr", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseEngine(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseEngine(%q) = %v, %v", tt.in, got, err)
		}
	}
}
