package lumen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oarkflow/lumen/pkg/ast"
	"github.com/oarkflow/lumen/pkg/config"
	"github.com/oarkflow/lumen/pkg/diagnostics"
	"github.com/oarkflow/lumen/pkg/lexer"
	"github.com/oarkflow/lumen/pkg/value"
)

func newSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s, err := NewSession(opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestExecReturnsLastValue(t *testing.T) {
	s := newSession(t)
	tests := map[string]int64{
		"2 + 3;":       5,
		"2 * 3 + 4;":   10,
		"(2 + 3) * 4;": 20,
	}
	for src, want := range tests {
		v, err := s.Exec(src)
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		if v.Kind != value.Int || v.Int != want {
			t.Errorf("%s: got %s, want %d", src, v, want)
		}
	}
}

func TestStatePersistsAcrossInputs(t *testing.T) {
	s := newSession(t)
	if _, err := s.Exec("int x = 4;"); err != nil {
		t.Fatal(err)
	}
	v, err := s.Exec("x + 1;")
	if err != nil {
		t.Fatal(err)
	}
	if v.Int != 5 {
		t.Fatalf("got %s, want 5", v)
	}
	if kind, ok := s.Declared("x"); !ok || kind != ast.ReturnInteger {
		t.Fatal("x should stay declared as an integer")
	}
	if names := s.Symbols().Names(); len(names) != 1 || names[0] != "x" {
		t.Fatalf("unexpected symbols %v", names)
	}
}

func TestDiagnosticsBlockEvaluation(t *testing.T) {
	s := newSession(t)
	_, err := s.Exec("boolean x = 5;")
	if !diagnostics.IsCode(err, diagnostics.ErrCodeDiagnostics) {
		t.Fatalf("expected diagnostics, got %v", err)
	}
	if len(s.Diagnostics()) == 0 {
		t.Fatal("session should expose the diagnostics")
	}
	if _, ok := s.Symbols().Get("x"); ok {
		t.Fatal("x must not be assigned")
	}
	if _, ok := s.Declared("x"); ok {
		t.Fatal("a rejected declaration must not be remembered")
	}

	// the next input starts with a clean sink
	if _, err := s.Exec("1;"); err != nil {
		t.Fatal(err)
	}
	if len(s.Diagnostics()) != 0 {
		t.Fatalf("stale diagnostics %v", s.Diagnostics())
	}
}

func TestRunReturnsValuesBeforeFailure(t *testing.T) {
	s := newSession(t)
	values, err := s.Run("1; 2 / 0; 3;")
	if !diagnostics.IsCode(err, diagnostics.ErrCodeDivisionByZero) {
		t.Fatalf("expected division by zero, got %v", err)
	}
	if len(values) != 1 || values[0].Int != 1 {
		t.Fatalf("unexpected values %v", values)
	}
}

func TestInputTooLarge(t *testing.T) {
	cfg := config.Default()
	cfg.MaxFileBytes = 4
	s := newSession(t, WithConfig(cfg))
	if _, err := s.Exec("1 + 2 + 3;"); !diagnostics.IsCode(err, diagnostics.ErrCodeInputTooLarge) {
		t.Fatalf("expected INPUT_TOO_LARGE, got %v", err)
	}
}

func TestDefaultConfigRunsLargeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.lm")
	src := "int total = 41;\n" + strings.Repeat("1 + 2;\n", 1000) + "total + 1;\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	s := newSession(t, WithConfig(config.Default()))
	v, err := s.ExecFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if v.Int != 42 {
		t.Fatalf("got %s, want 42", v)
	}
}

func TestInjectedNumbersMustFitInt32(t *testing.T) {
	if _, err := Exec("a + 1;", map[string]any{"a": 2.5}); !diagnostics.IsCode(err, diagnostics.ErrCodeTypeMismatch) {
		t.Fatalf("fractional number: expected type mismatch, got %v", err)
	}
	if _, err := Exec("a + 1;", map[string]any{"a": 5e9}); !diagnostics.IsCode(err, diagnostics.ErrCodeIntegerRange) {
		t.Fatalf("5e9: expected integer range, got %v", err)
	}
}

func TestSharedTokenCache(t *testing.T) {
	cache, err := lexer.NewCache(1024)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(cache.Close)
	s := newSession(t, WithTokenCache(cache))
	for i := 0; i < 3; i++ {
		v, err := s.Exec("6 * 7;")
		if err != nil {
			t.Fatal(err)
		}
		if v.Int != 42 {
			t.Fatalf("run %d: got %s", i, v)
		}
		cache.Wait()
	}
}

func TestPackageExecInjectsData(t *testing.T) {
	v, err := Exec("a * b + c;", map[string]any{"a": 6, "b": int64(7), "c": true})
	if err != nil {
		t.Fatal(err)
	}
	if v.Int != 43 {
		t.Fatalf("got %s, want 43", v)
	}
}

func TestExecFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.lm")
	src := strings.Join([]string{"int total = 10;", "// running sum", "total ** 2;"}, "\n")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	v, err := ExecFile(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if v.Int != 100 {
		t.Fatalf("got %s, want 100", v)
	}
}

func TestToValue(t *testing.T) {
	cases := []struct {
		in   any
		want value.Value
	}{
		{nil, value.NilValue},
		{3, value.FromInt(3)},
		{2.5, value.FromNumber(2.5)},
		{"hi", value.FromText("hi")},
		{false, value.FromBool(false)},
	}
	for _, c := range cases {
		if got := ToValue(c.in); got != c.want {
			t.Errorf("ToValue(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
