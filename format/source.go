package format

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/dhamidi/mini/ebnflex"
	"github.com/dhamidi/mini/frontend"
	"github.com/dhamidi/mini/syntax"
)

// SourcePrinter writes a derivation tree back out as mini source, one
// statement per line.
type SourcePrinter struct {
	w         io.Writer
	indentStr string
	res       *frontend.Result
}

func NewSourcePrinter(w io.Writer) *SourcePrinter {
	return &SourcePrinter{
		w:         w,
		indentStr: "    ",
	}
}

// Encode prints res. Results with errors are refused.
func (p *SourcePrinter) Encode(res *frontend.Result) error {
	p.res = res
	return write(p.w, p)
}

func (p *SourcePrinter) MarshalText() ([]byte, error) {
	if p.res == nil {
		return nil, errors.New("format: nothing to encode")
	}
	if !p.res.OK() {
		return nil, p.res.Joined()
	}
	var buf bytes.Buffer
	p.Print(&buf, p.res.Tree)
	return buf.Bytes(), nil
}

// Print writes node, a start node, to w.
func (p *SourcePrinter) Print(w io.Writer, node *syntax.Node) {
	pp := &sourceWriter{w: w, indentStr: p.indentStr}
	for _, stmt := range node.Statements() {
		pp.printStatement(stmt)
	}
}

// PrettyPrint reformats a mini program.
func PrettyPrint(source []byte) ([]byte, error) {
	return PrettyPrintFile(source, "")
}

func PrettyPrintFile(source []byte, filename string) ([]byte, error) {
	res := frontend.Analyze(source, frontend.WithFilename(filename))
	var buf bytes.Buffer
	if err := NewSourcePrinter(&buf).Encode(res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type sourceWriter struct {
	w         io.Writer
	indent    int
	indentStr string
}

func (p *sourceWriter) line(s string) {
	io.WriteString(p.w, strings.Repeat(p.indentStr, p.indent))
	io.WriteString(p.w, s)
	io.WriteString(p.w, "\n")
}

func (p *sourceWriter) printStatement(stmt *syntax.Node) {
	node := stmt.Children[0]
	switch node.Kind {
	case syntax.KindConditional:
		p.printBody("if "+inline(node.Children[1])+" then", node.Children[3])
		if len(node.Children) > 4 {
			p.printBody("else", node.Children[5])
		}
	case syntax.KindIteration:
		p.printBody(inline(node.Children[:5]...), node.Children[5])
	case syntax.KindBlock:
		p.line("{")
		p.printBlock(node)
		p.line("}")
	default:
		p.line(inline(node))
	}
}

// printBody writes a header line followed by the statement it controls.
// Blocks open on the header line.
func (p *sourceWriter) printBody(header string, stmt *syntax.Node) {
	if block := stmt.FirstChildOfKind(syntax.KindBlock); block != nil {
		p.line(header + " {")
		p.printBlock(block)
		p.line("}")
		return
	}
	p.line(header)
	p.indent++
	p.printStatement(stmt)
	p.indent--
}

func (p *sourceWriter) printBlock(block *syntax.Node) {
	p.indent++
	for _, stmt := range block.ChildrenOfKind(syntax.KindStatement) {
		p.printStatement(stmt)
	}
	p.indent--
}

// inline renders the tokens of nodes on one line.
func inline(nodes ...*syntax.Node) string {
	var toks []ebnflex.Token
	for _, n := range nodes {
		toks = append(toks, n.Tokens()...)
	}
	var sb strings.Builder
	for i, tok := range toks {
		if i > 0 && spaceBetween(toks[i-1], tok) {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok.Literal)
	}
	return sb.String()
}

func spaceBetween(prev, next ebnflex.Token) bool {
	switch next.Literal {
	case ")", "]", ",", ";":
		return false
	case "(":
		if prev.Literal == "print" {
			return false
		}
	}
	switch prev.Literal {
	case "(", "[":
		return false
	}
	return true
}
