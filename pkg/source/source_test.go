package source

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oarkflow/lumen/pkg/diagnostics"
)

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.lm")
	if err := os.WriteFile(path, []byte("int x = 1;\nx + 1;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path, 1024)
	if err != nil {
		t.Fatal(err)
	}
	if got != "int x = 1;\nx + 1;\n" {
		t.Fatalf("unexpected content %q", got)
	}

	if _, err := ReadFile(path, 5); !diagnostics.IsCode(err, diagnostics.ErrCodeInputTooLarge) {
		t.Fatalf("expected INPUT_TOO_LARGE, got %v", err)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "absent"), 1024); !diagnostics.IsCode(err, diagnostics.ErrCodeIO) {
		t.Fatalf("expected IO_ERROR, got %v", err)
	}
}

func TestReadExactLimit(t *testing.T) {
	got, err := Read(strings.NewReader("12345"), "input", 5)
	if err != nil || got != "12345" {
		t.Fatalf("input at the limit should be accepted: %q %v", got, err)
	}
}

func TestLineReader(t *testing.T) {
	lr := NewLineReader(strings.NewReader("2 + 3;\r\n"+strings.Repeat("1", 20)+"\nlast"), 10)

	line, err := lr.ReadLine()
	if err != nil || line != "2 + 3;" {
		t.Fatalf("line 1: %q %v", line, err)
	}
	if _, err := lr.ReadLine(); !diagnostics.IsCode(err, diagnostics.ErrCodeInputTooLarge) {
		t.Fatalf("line 2: expected INPUT_TOO_LARGE, got %v", err)
	}
	line, err = lr.ReadLine()
	if err != nil || line != "last" {
		t.Fatalf("line 3: %q %v", line, err)
	}
	if _, err := lr.ReadLine(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if lr.Line() != 3 {
		t.Fatalf("expected 3 lines read, got %d", lr.Line())
	}
}
