package grammar

import (
	"strings"
	"testing"

	"golang.org/x/exp/ebnf"
)

func TestLexiconVerifies(t *testing.T) {
	g, err := Lexicon()
	if err != nil {
		t.Fatalf("Lexicon() error = %v", err)
	}

	for _, name := range []string{"token", "reserved_word", "identifier", "constant", "string", "digit"} {
		if g[name] == nil {
			t.Errorf("lexicon is missing production %s", name)
		}
	}
}

func TestLexiconTokenOrder(t *testing.T) {
	g, err := Lexicon()
	if err != nil {
		t.Fatalf("Lexicon() error = %v", err)
	}

	alt, ok := g[LexiconStart].Expr.(ebnf.Alternative)
	if !ok {
		t.Fatalf("token production is %T, want ebnf.Alternative", g[LexiconStart].Expr)
	}

	want := []string{"reserved_word", "identifier", "constant", "arith_op", "assign_op", "relational_op", "symbol", "string"}
	if len(alt) != len(want) {
		t.Fatalf("got %d alternatives, want %d", len(alt), len(want))
	}
	for i, x := range alt {
		name, ok := x.(*ebnf.Name)
		if !ok {
			t.Fatalf("alternative %d is %T, want *ebnf.Name", i, x)
		}
		if name.String != want[i] {
			t.Errorf("alternative %d = %s, want %s", i, name.String, want[i])
		}
	}
}

func TestSyntaxVerifies(t *testing.T) {
	g, err := Syntax()
	if err != nil {
		t.Fatalf("Syntax() error = %v", err)
	}

	for _, name := range []string{"Start", "Statement", "Conditional", "Expr", "Term", "Factor", "identifier", "constant"} {
		if g[name] == nil {
			t.Errorf("syntax is missing production %s", name)
		}
	}
	if g["arith_op"] != nil {
		t.Errorf("syntax should not carry unreferenced lexicon production arith_op")
	}
}

func TestReachable(t *testing.T) {
	g, err := Parse("test", []byte(`
		A = B [ c ] .
		B = "x" .
		c = "y" .
		D = "z" .
	`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	got := Names(Reachable(g, "A"))
	if strings.Join(got, ",") != "A,B,c" {
		t.Errorf("Reachable(A) = %v, want [A B c]", got)
	}
}

func TestMergeRejectsDuplicates(t *testing.T) {
	a, _ := Parse("a", []byte(`A = "x" .`))
	b, _ := Parse("b", []byte(`A = "y" .`))

	if _, err := Merge(a, b); err == nil {
		t.Error("Merge() of duplicate production should fail")
	}
}

func TestVerifyReportsMissingProduction(t *testing.T) {
	g, err := Parse("test", []byte(`A = B .`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := Verify(g, "A"); err == nil {
		t.Error("Verify() should report the missing production B")
	}
}

func TestSource(t *testing.T) {
	src, err := Source("syntax")
	if err != nil {
		t.Fatalf("Source(syntax) error = %v", err)
	}
	if !strings.HasPrefix(string(src), "Start") {
		t.Errorf("syntax source starts with %q", string(src[:10]))
	}
	if _, err := Source("nope"); err == nil {
		t.Error("Source(nope) should fail")
	}
}

func TestIsLexical(t *testing.T) {
	tests := map[string]bool{
		"identifier": true,
		"Start":      false,
		"":           false,
	}
	for name, want := range tests {
		if got := IsLexical(name); got != want {
			t.Errorf("IsLexical(%q) = %v, want %v", name, got, want)
		}
	}
}
