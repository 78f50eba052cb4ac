package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEbnfCheckEmbedded(t *testing.T) {
	out, err := run(t, "", "ebnf", "check")
	if err != nil {
		t.Fatal(err)
	}
	if out != "lexicon.ebnf: ok\nsyntax.ebnf: ok\n" {
		t.Errorf("got %q", out)
	}
}

func TestEbnfCheckFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.ebnf")
	if err := os.WriteFile(good, []byte("S = \"a\" { \"a\" } .\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	undefined := filepath.Join(dir, "undefined.ebnf")
	if err := os.WriteFile(undefined, []byte("S = T .\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "", "ebnf", "check", "--start", "S", good); err != nil {
		t.Errorf("check of a valid grammar failed: %v", err)
	}
	if _, err := run(t, "", "ebnf", "check", undefined); err != nil {
		t.Errorf("syntax-only check failed: %v", err)
	}
	out, err := run(t, "", "ebnf", "check", "--start", "S", undefined)
	if err == nil {
		t.Fatal("verification of an undefined production succeeded")
	}
	if !strings.Contains(out, "missing production T") {
		t.Errorf("output = %q", out)
	}
}

func TestEbnfShow(t *testing.T) {
	out, err := run(t, "", "ebnf", "show", "syntax")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "Start") {
		t.Errorf("syntax grammar starts with %q", out[:min(len(out), 20)])
	}
	if _, err := run(t, "", "ebnf", "show", "tokens"); err == nil {
		t.Error("show of an unknown grammar succeeded")
	}
}

func TestEbnfRules(t *testing.T) {
	out, err := run(t, "", "ebnf", "rules", "--helpers=false")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Assignment → identifier \":=\" Expr \";\"\n") {
		t.Errorf("rules:\n%s", out)
	}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		lhs, _, _ := strings.Cut(line, " ")
		if strings.Contains(lhs, "#") {
			t.Errorf("helper rule listed: %s", line)
		}
	}
}

func TestEbnfParse(t *testing.T) {
	out, err := run(t, "x := 1;", "ebnf", "parse", "-")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "Start\n  Statement\n    Assignment\n      IDENTIFIER x\n") {
		t.Errorf("tree:\n%s", out)
	}

	out, err = run(t, "x := ;", "ebnf", "parse", "-")
	if err == nil || !strings.HasPrefix(out, "1:6: unexpected \";\"") {
		t.Errorf("out = %q, err = %v", out, err)
	}
}
