package main

import (
	"bytes"
	sterrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/urfave/cli/v2"

	"github.com/oarkflow/lumen"
	"github.com/oarkflow/lumen/pkg/config"
	"github.com/oarkflow/lumen/pkg/diagnostics"
)

func exitCode(err error) int {
	var coder cli.ExitCoder
	if sterrors.As(err, &coder) {
		return coder.ExitCode()
	}
	return -1
}

func TestReplPiped(t *testing.T) {
	cfg := config.Default()
	cfg.MaxLineBytes = 16
	sess, err := lumen.NewSession(lumen.WithConfig(cfg))
	if err != nil {
		t.Fatal(err)
	}
	defer sess.Close()

	input := strings.Join([]string{
		"int x = 4;",
		"x + 1;",
		strings.Repeat("1 + ", 10) + "1;",
		"1 / 0;",
		"x * 2;",
	}, "\n")
	var out, errOut bytes.Buffer
	err = replPiped(sess, strings.NewReader(input), &out, &errOut)
	if exitCode(err) != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}
	if out.String() != "5\n8\n" {
		t.Fatalf("stdout = %q", out.String())
	}
	for _, code := range []diagnostics.ErrorCode{diagnostics.ErrCodeInputTooLarge, diagnostics.ErrCodeDivisionByZero} {
		if !strings.Contains(errOut.String(), string(code)) {
			t.Errorf("stderr %q does not report %s", errOut.String(), code)
		}
	}
}

func TestReplPipedStopsOnReadError(t *testing.T) {
	sess, err := lumen.NewSession()
	if err != nil {
		t.Fatal(err)
	}
	defer sess.Close()
	var out, errOut bytes.Buffer
	err = replPiped(sess, iotest.ErrReader(sterrors.New("device gone")), &out, &errOut)
	if !diagnostics.IsCode(err, diagnostics.ErrCodeIO) {
		t.Fatalf("expected IO_ERROR, got %v", err)
	}
}

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	app := newApp()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"lumen"}, args...))
	return out.String(), errOut.String(), err
}

func TestRunCommand(t *testing.T) {
	out, _, err := runApp(t, "run", "--expr", "int x = 4; x * 2; 1 + 1;")
	if err != nil {
		t.Fatal(err)
	}
	if out != "8\n2\n" {
		t.Fatalf("stdout = %q", out)
	}

	dir := t.TempDir()
	good := filepath.Join(dir, "good.lm")
	bad := filepath.Join(dir, "bad.lm")
	if err := os.WriteFile(good, []byte("int n = 6;\nn * 7;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("1 / 0;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, errOut, err := runApp(t, "run", good, bad)
	if exitCode(err) != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}
	if out != "42\n" || !strings.Contains(errOut, string(diagnostics.ErrCodeDivisionByZero)) {
		t.Fatalf("stdout %q stderr %q", out, errOut)
	}

	if _, _, err := runApp(t, "run"); exitCode(err) != 2 {
		t.Fatalf("missing files: expected exit code 2, got %v", err)
	}
}

func TestHistoryPath(t *testing.T) {
	cfg := config.Default()
	cfg.HistoryFile = "/tmp/custom_history"
	if got, err := historyPath(cfg); err != nil || got != cfg.HistoryFile {
		t.Fatalf("configured path: %q, %v", got, err)
	}

	t.Setenv("HOME", "/home/lumen")
	got, err := historyPath(config.Default())
	if err != nil || got != filepath.Join("/home/lumen", historyFile) {
		t.Fatalf("home path: %q, %v", got, err)
	}

	t.Setenv("HOME", "")
	if _, err := historyPath(config.Default()); !diagnostics.IsCode(err, diagnostics.ErrCodeConfig) {
		t.Fatalf("expected config error without HOME, got %v", err)
	}
}
