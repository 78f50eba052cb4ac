package codebase

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhamidi/mini/config"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScanAll(t *testing.T) {
	root := t.TempDir()
	good := writeSource(t, root, "good.mini", "x := 10; print(x + 5);")
	bad := writeSource(t, root, "sub/bad.mini", "x := ;")
	writeSource(t, root, "notes.txt", "x := ;")
	writeSource(t, root, ".cache/hidden.mini", "x := 1;")

	cb := New(root, nil)
	if err := cb.ScanAll(); err != nil {
		t.Fatal(err)
	}

	files := cb.Files()
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if files[0].Path != good || files[1].Path != bad {
		t.Errorf("paths = %s, %s", files[0].Path, files[1].Path)
	}

	failing := cb.Failing()
	if len(failing) != 1 || failing[0].Path != bad {
		t.Fatalf("failing = %v", failing)
	}
	serr := failing[0].Result.SyntaxError
	if serr == nil || serr.Filename != filepath.Join("sub", "bad.mini") {
		t.Errorf("syntax error = %v, want one naming sub/bad.mini", serr)
	}
}

func TestUpdateAndRemoveFile(t *testing.T) {
	cb := New(t.TempDir(), nil)
	path := "/elsewhere/a.mini"

	file := cb.UpdateFile(path, []byte("x := 1;"))
	if !file.Result.OK() {
		t.Fatal(file.Result.Joined())
	}
	if cb.GetFile(path) != file {
		t.Error("GetFile did not return the updated file")
	}
	if file.Result.Filename != path {
		t.Errorf("filename = %q, want the path outside the root unchanged", file.Result.Filename)
	}

	cb.UpdateFile(path, []byte("x := 1"))
	if cb.GetFile(path).Result.OK() {
		t.Error("update did not replace the analysis")
	}

	cb.RemoveFile(path)
	if cb.GetFile(path) != nil {
		t.Error("file still present after RemoveFile")
	}
}

func TestCodebaseUsesConfig(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "a.mn", "x := 10;")
	writeSource(t, root, "b.mini", "y := 1;")

	cfg := config.Default()
	cfg.Extensions = []string{".mn"}
	cfg.Numbering = "shared"

	cb := New(root, cfg)
	if err := cb.ScanAll(); err != nil {
		t.Fatal(err)
	}
	files := cb.Files()
	if len(files) != 1 || filepath.Base(files[0].Path) != "a.mn" {
		t.Fatalf("files = %v", files)
	}
	if e, _ := files[0].Result.Symbols.Lookup("10"); e.ID != 2 {
		t.Errorf("10 has ID %d, want 2", e.ID)
	}
}

func TestScanAllReportsUnreadableFiles(t *testing.T) {
	root := t.TempDir()
	good := writeSource(t, root, "good.mini", "x := 1;")
	dangling := filepath.Join(root, "gone.mini")
	if err := os.Symlink(filepath.Join(root, "missing"), dangling); err != nil {
		t.Skipf("symlink: %v", err)
	}

	cb := New(root, nil)
	err := cb.ScanAll()
	if err == nil {
		t.Fatal("ScanAll() = nil, want the read error of gone.mini")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ScanAll() = %v, want a not-exist error", err)
	}
	if !strings.Contains(err.Error(), "gone.mini") {
		t.Errorf("ScanAll() = %v, want the path in the message", err)
	}
	if cb.GetFile(good) == nil {
		t.Error("readable file was not analyzed")
	}
	if cb.GetFile(dangling) != nil {
		t.Error("unreadable file is known to the codebase")
	}
}
