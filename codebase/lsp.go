package codebase

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/mini/config"
	"github.com/dhamidi/mini/ebnflex"
	"github.com/dhamidi/mini/frontend"
	"github.com/dhamidi/mini/symtab"
)

const lsName = "mini"

var lspLog = commonlog.GetLogger("mini.lsp")

type LSPServer struct {
	codebase *Codebase
	cfg      *config.Config
	handler  protocol.Handler
	server   *server.Server
	version  string
}

// NewLSPServer creates a language server. A nil cfg makes the server load the
// configuration discovered from the workspace root on initialize.
func NewLSPServer(version string, cfg *config.Config) *LSPServer {
	ls := &LSPServer{
		cfg:     cfg,
		version: version,
	}

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdown,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.textDocumentDidOpen,
		TextDocumentDidChange:      ls.textDocumentDidChange,
		TextDocumentDidClose:       ls.textDocumentDidClose,
		TextDocumentDidSave:        ls.textDocumentDidSave,
		TextDocumentDocumentSymbol: ls.textDocumentDocumentSymbol,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	cfg := ls.cfg
	if cfg == nil {
		loaded, err := config.LoadDir(rootDir)
		if err != nil {
			lspLog.Warningf("using default configuration: %s", err)
			loaded = config.Default()
		}
		cfg = loaded
	}
	ls.codebase = New(rootDir, cfg)
	lspLog.Infof("workspace %s, engine %s", rootDir, cfg.Engine)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    intPtr(int(protocol.TextDocumentSyncKindFull)),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if err := ls.codebase.ScanAll(); err != nil {
		lspLog.Warningf("scan %s: %s", ls.codebase.RootDir(), err)
	}
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	file := ls.codebase.UpdateFile(path, []byte(params.TextDocument.Text))
	ls.publish(ctx, params.TextDocument.URI, file)
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			file := ls.codebase.UpdateFile(path, []byte(textChange.Text))
			ls.publish(ctx, params.TextDocument.URI, file)
		}
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	var file *FileInfo
	if params.Text != nil {
		file = ls.codebase.UpdateFile(path, []byte(*params.Text))
	} else if file, err = ls.codebase.ScanFile(path); err != nil {
		lspLog.Warningf("%s: %s", path, err)
		return nil
	}
	ls.publish(ctx, params.TextDocument.URI, file)
	return nil
}

func (ls *LSPServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	file := ls.codebase.GetFile(path)
	if file == nil {
		return nil, nil
	}
	return DocumentSymbols(file.Result), nil
}

func (ls *LSPServer) publish(ctx *glsp.Context, uri protocol.DocumentUri, file *FileInfo) {
	diagnostics := Diagnostics(file.Result)
	lspLog.Debugf("%s: %d diagnostics", file.Path, len(diagnostics))
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// Diagnostics converts the errors of res into LSP diagnostics: one per
// lexical error and one for the syntax error. The result is never nil, so
// that publishing it clears stale diagnostics.
func Diagnostics(res *frontend.Result) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	for _, e := range res.LexicalErrors {
		diagnostics = append(diagnostics, newDiagnostic(
			spanRange(e.Position, utf8.RuneLen(e.Char)),
			fmt.Sprintf("illegal character %q", e.Char),
		))
	}
	if serr := res.SyntaxError; serr != nil {
		pos := ebnflex.Position{Line: serr.Line, Column: serr.Column}
		width := 0
		if serr.Got != nil {
			width = utf8.RuneCountInString(serr.Got.Literal)
		}
		diagnostics = append(diagnostics, newDiagnostic(spanRange(pos, width), "syntax error: "+serr.Message))
	}
	if res.Err != nil {
		diagnostics = append(diagnostics, newDiagnostic(spanRange(res.End, 0), res.Err.Error()))
	}
	return diagnostics
}

func newDiagnostic(r protocol.Range, message string) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := lsName
	return protocol.Diagnostic{
		Range:    r,
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

// DocumentSymbols lists the symbol table of res, each entry located at its
// first occurrence.
func DocumentSymbols(res *frontend.Result) []protocol.DocumentSymbol {
	symbols := []protocol.DocumentSymbol{}
	for _, e := range res.Symbols.Entries() {
		kind := protocol.SymbolKindVariable
		if e.Category == symtab.Constant {
			kind = protocol.SymbolKindConstant
		}
		detail := fmt.Sprintf("%s %d", e.Category, e.ID)
		r := spanRange(e.Position, utf8.RuneCountInString(e.Lexeme))
		symbols = append(symbols, protocol.DocumentSymbol{
			Name:           e.Lexeme,
			Detail:         &detail,
			Kind:           kind,
			Range:          r,
			SelectionRange: r,
		})
	}
	return symbols
}

// spanRange converts a 1-based source position and a width in characters to
// a 0-based protocol range on one line.
func spanRange(pos ebnflex.Position, width int) protocol.Range {
	line := protocol.UInteger(max(pos.Line-1, 0))
	start := protocol.UInteger(max(pos.Column-1, 0))
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: start},
		End:   protocol.Position{Line: line, Character: start + protocol.UInteger(width)},
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *protocol.TextDocumentSyncKind {
	v := protocol.TextDocumentSyncKind(i)
	return &v
}
