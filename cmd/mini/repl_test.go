package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestUpdateQuitCommandReturnsQuit(t *testing.T) {
	m := newREPLModel(nil)
	m.textInput.SetValue(":quit")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm, ok := model.(replModel)
	if !ok {
		t.Fatalf("unexpected model type %T", model)
	}

	if !rm.quitting {
		t.Fatalf("quitting flag not set")
	}
	if rm.textInput.Value() != "" {
		t.Fatalf("input not cleared after quit command")
	}
	if cmd == nil {
		t.Fatalf("expected tea.Quit command")
	}
	if msg := cmd(); msg != nil {
		if _, ok := msg.(tea.QuitMsg); !ok {
			t.Fatalf("expected QuitMsg, got %T", msg)
		}
	}
}

func TestUpdateToggleCommands(t *testing.T) {
	m := newREPLModel(nil)
	for _, input := range []string{":help", ":symbols", ":tree"} {
		m.textInput.SetValue(input)
		model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if cmd != nil {
			t.Fatalf("%s returned a command", input)
		}
		m = model.(replModel)
	}
	if !m.showHelp || !m.showSymbols || !m.showTree {
		t.Errorf("toggles = help %v, symbols %v, tree %v", m.showHelp, m.showSymbols, m.showTree)
	}
	if m.quitting {
		t.Error("quitting should remain false")
	}
}

func TestEnterAnalyzesLine(t *testing.T) {
	m := newREPLModel(nil)
	m.textInput.SetValue("x := 10;")

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm := model.(replModel)

	if len(rm.history) != 1 || rm.history[0].isErr {
		t.Fatalf("history = %+v", rm.history)
	}
	if len(rm.program) != 1 || rm.program[0] != "x := 10;" {
		t.Errorf("program = %q", rm.program)
	}
	if len(rm.cmdHistory) != 1 {
		t.Errorf("line not recorded in command history")
	}
}

func TestEvaluateGrowsSymbolTable(t *testing.T) {
	m := newREPLModel(nil)

	output, isErr := m.evaluate("x := 10;")
	if isErr {
		t.Fatalf("unexpected error: %s", output)
	}
	if !strings.Contains(output, "1: x -> Identifier") {
		t.Errorf("output %q does not announce x", output)
	}

	output, isErr = m.evaluate("y := x + 10; print(y);")
	if isErr {
		t.Fatalf("unexpected error: %s", output)
	}
	if !strings.HasPrefix(output, "2 statements") {
		t.Errorf("output = %q", output)
	}

	want := "1: x -> Identifier\n1: 10 -> Constant\n2: y -> Identifier\n"
	if got := m.symbols.String(); got != want {
		t.Errorf("symbols:\n%s\nwant:\n%s", got, want)
	}
}

func TestEvaluateErrorKeepsSession(t *testing.T) {
	m := newREPLModel(nil)

	output, isErr := m.evaluate("x := ;")
	if !isErr {
		t.Fatalf("expected an error, got %q", output)
	}
	if !strings.Contains(output, `unexpected ";"`) {
		t.Errorf("output = %q", output)
	}
	if len(m.program) != 0 || m.symbols.Len() != 0 {
		t.Errorf("rejected line changed the session: %q, %d symbols", m.program, m.symbols.Len())
	}
}

func TestEngineCommand(t *testing.T) {
	m := newREPLModel(nil)

	m, _ = m.handleCommand(":engine earley")
	if m.cfg.Engine != "earley" {
		t.Fatalf("engine = %q", m.cfg.Engine)
	}
	if _, isErr := m.evaluate("if a then print(a); else print(1);"); isErr {
		t.Error("earley engine rejected a valid line")
	}

	m, _ = m.handleCommand(":engine lalr")
	last := m.history[len(m.history)-1]
	if !last.isErr || m.cfg.Engine != "earley" {
		t.Errorf("unknown engine accepted: %+v", last)
	}
}

func TestResetCommand(t *testing.T) {
	m := newREPLModel(nil)
	m.evaluate("x := 1;")

	m, _ = m.handleCommand(":reset")
	if len(m.program) != 0 || m.symbols.Len() != 0 {
		t.Errorf("reset kept %q and %d symbols", m.program, m.symbols.Len())
	}
}

func TestAutocomplete(t *testing.T) {
	m := newREPLModel(nil)
	m.evaluate("total := 1;")

	m.textInput.SetValue("print(tot")
	m = m.handleAutocomplete()
	if got := m.textInput.Value(); got != "print(tot" {
		t.Errorf("completed %q inside a word with punctuation", got)
	}

	m.textInput.SetValue("x := tot")
	m = m.handleAutocomplete()
	if got := m.textInput.Value(); got != "x := total" {
		t.Errorf("value = %q, want completion of total", got)
	}

	m.textInput.SetValue("pr")
	m = m.handleAutocomplete()
	if got := m.textInput.Value(); got != "print" {
		t.Errorf("value = %q, want print", got)
	}
}
