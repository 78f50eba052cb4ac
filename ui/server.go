// Package ui serves a small web page for exploring how mini source is
// tokenized, tabulated and parsed.
package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/mini/codebase"
	"github.com/dhamidi/mini/format"
	"github.com/dhamidi/mini/frontend"
	"github.com/dhamidi/mini/syntax"
)

var log = commonlog.GetLogger("mini.ui")

const maxSourceSize = 1 << 20

type Server struct {
	codebase  *codebase.Codebase
	templates *template.Template
	mux       *http.ServeMux
}

// AnalyzeRequest is the JSON body accepted by POST /analyze.
type AnalyzeRequest struct {
	Source string `json:"source"`
	Engine string `json:"engine,omitempty"`
}

// NewServer creates a server over cb. Files of cb are listed and analyzed on
// request; pasted source is analyzed with the codebase configuration.
func NewServer(cb *codebase.Codebase) (*Server, error) {
	funcMap := template.FuncMap{
		"rel": func(path string) string {
			rel, err := filepath.Rel(cb.RootDir(), path)
			if err != nil {
				return path
			}
			return filepath.ToSlash(rel)
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).Parse(pageTemplates)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		codebase:  cb,
		templates: tmpl,
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /analyze", s.handleAnalyze)
	s.mux.HandleFunc("GET /files", s.handleFiles)
	s.mux.HandleFunc("GET /files/{path...}", s.handleFile)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest

	body := http.MaxBytesReader(w, r.Body, maxSourceSize)
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		r.Body = body
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form data: "+err.Error(), http.StatusBadRequest)
			return
		}
		req.Source = r.FormValue("source")
		req.Engine = r.FormValue("engine")
	}

	opts := s.codebase.Config().AnalyzeOptions()
	if req.Engine != "" {
		engine, err := syntax.ParseEngine(req.Engine)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts = append(opts, frontend.WithEngine(engine))
	}
	res := frontend.Analyze([]byte(req.Source), opts...)

	if r.Header.Get("Accept") == "application/json" {
		s.writeJSON(w, res)
		return
	}
	s.renderResult(w, res)
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	if err := s.codebase.ScanAll(); err != nil {
		log.Warningf("scan %s: %s", s.codebase.RootDir(), err)
	}
	s.render(w, "files.html", s.codebase.Files())
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	rel := filepath.FromSlash(r.PathValue("path"))
	if !filepath.IsLocal(rel) || !s.codebase.Config().IsSource(rel) {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	file, err := s.codebase.ScanFile(filepath.Join(s.codebase.RootDir(), rel))
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	if r.Header.Get("Accept") == "application/json" {
		s.writeJSON(w, file.Result)
		return
	}
	s.renderResult(w, file.Result)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", nil)
}

func (s *Server) writeJSON(w http.ResponseWriter, res *frontend.Result) {
	w.Header().Set("Content-Type", "application/json")
	if err := format.NewJSONEncoder(w).Encode(res); err != nil {
		log.Errorf("encode: %s", err)
	}
}

// resultView is what result.html shows.
type resultView struct {
	Result *frontend.Result
	Text   string
	Errors []string
}

func (s *Server) renderResult(w http.ResponseWriter, res *frontend.Result) {
	var text bytes.Buffer
	if err := format.NewTextEncoder(&text, format.SectionTokens, format.SectionSymbols, format.SectionTree).Encode(res); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	view := resultView{Result: res, Text: text.String()}
	for _, err := range res.Errors() {
		view.Errors = append(view.Errors, err.Error())
	}
	s.render(w, "result.html", view)
}

// ListenAndServe serves s on addr until the server fails.
func ListenAndServe(addr string, s *Server) error {
	log.Infof("listening on %s", addr)
	srv := &http.Server{Addr: addr, Handler: s}
	return srv.ListenAndServe()
}

const pageTemplates = `
{{define "header"}}<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>mini</title></head>
<body><nav><a href="/">analyze</a> · <a href="/files">files</a></nav>{{end}}

{{define "footer"}}</body></html>{{end}}

{{define "index.html"}}{{template "header"}}
<form method="post" action="/analyze">
<textarea name="source" rows="16" cols="80"></textarea><br>
<select name="engine"><option value="">configured engine</option><option>descent</option><option>earley</option></select>
<button type="submit">analyze</button>
</form>
{{template "footer"}}{{end}}

{{define "files.html"}}{{template "header"}}
<ul>{{range .}}<li><a href="/files/{{rel .Path}}">{{rel .Path}}</a>{{if not .Result.OK}} (errors){{end}}</li>{{else}}<li>no source files</li>{{end}}</ul>
{{template "footer"}}{{end}}

{{define "result.html"}}{{template "header"}}
{{with .Result.Filename}}<h1>{{.}}</h1>{{end}}
{{if .Errors}}<ul class="errors">{{range .Errors}}<li>{{.}}</li>{{end}}</ul>{{end}}
<pre>{{.Text}}</pre>
{{template "footer"}}{{end}}
`
