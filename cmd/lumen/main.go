package main

import (
	sterrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/urfave/cli/v2"

	"github.com/oarkflow/lumen"
	"github.com/oarkflow/lumen/pkg/config"
	"github.com/oarkflow/lumen/pkg/diagnostics"
	"github.com/oarkflow/lumen/pkg/history"
	"github.com/oarkflow/lumen/pkg/lexer"
	"github.com/oarkflow/lumen/pkg/server"
	"github.com/oarkflow/lumen/pkg/source"
	"github.com/oarkflow/lumen/pkg/value"
)

const (
	historyFile = ".lumen_history"
	promptMain  = "lumen> "
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lumen",
		Usage: "Evaluate lumen expressions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the configuration file (JSON, YAML, or BCL)",
				EnvVars: []string{"LUMEN_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Evaluate one or more source files ('-' reads stdin)",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "expr",
						Aliases: []string{"e"},
						Usage:   "Evaluate the given source instead of files",
					},
				},
				Action: runFiles,
			},
			{
				Name:      "tokens",
				Usage:     "Print the token stream of a file ('-' reads stdin)",
				ArgsUsage: "FILE",
				Action:    dumpTokens,
			},
			{
				Name:   "repl",
				Usage:  "Start an interactive session",
				Action: repl,
			},
			{
				Name:  "serve",
				Usage: "Start the HTTP evaluation server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Address to listen on (overrides server.addr)",
					},
				},
				Action: serve,
			},
		},
		DefaultCommand: "repl",
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	path := c.String("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func newSession(c *cli.Context) (*lumen.Session, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return lumen.NewSession(lumen.WithConfig(cfg))
}

// report writes err, or each diagnostic it carries, to w.
func report(w io.Writer, err error) {
	var derr *diagnostics.Error
	if sterrors.As(err, &derr) && len(derr.Details) > 0 {
		for _, d := range derr.Details {
			fmt.Fprintln(w, d)
		}
		return
	}
	fmt.Fprintln(w, err)
}

func printValues(w io.Writer, values []value.Value) {
	for _, v := range values {
		if !v.IsNone() {
			fmt.Fprintln(w, v)
		}
	}
}

func runFiles(c *cli.Context) error {
	sess, err := newSession(c)
	if err != nil {
		return err
	}
	defer sess.Close()

	var inputs []string
	if expr := c.String("expr"); expr != "" {
		inputs = append(inputs, expr)
	} else {
		if c.NArg() == 0 {
			return cli.Exit("run: no input files", 2)
		}
		for _, path := range c.Args().Slice() {
			src, err := source.ReadFile(path, sess.Config().MaxFileBytes)
			if err != nil {
				return err
			}
			inputs = append(inputs, src)
		}
	}
	for _, src := range inputs {
		values, err := sess.Run(src)
		printValues(c.App.Writer, values)
		if err != nil {
			report(c.App.ErrWriter, err)
			return cli.Exit("", 1)
		}
	}
	return nil
}

func dumpTokens(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	path := c.Args().First()
	if path == "" {
		path = "-"
	}
	src, err := source.ReadFile(path, cfg.MaxFileBytes)
	if err != nil {
		return err
	}
	stream, err := lexer.Tokenize(src, cfg.LexerOptions()...)
	if err != nil {
		return err
	}
	for _, tok := range stream.Tokens() {
		fmt.Fprintf(c.App.Writer, "%d:%d\t%s\t%q\n", tok.Line, tok.Column, tok.Kind, tok.Literal)
	}
	return nil
}

func repl(c *cli.Context) error {
	sess, err := newSession(c)
	if err != nil {
		return err
	}
	defer sess.Close()
	cfg := sess.Config()

	if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		return replPiped(sess, os.Stdin, c.App.Writer, c.App.ErrWriter)
	}

	histPath, err := historyPath(cfg)
	if err != nil {
		return err
	}
	hist, err := history.Open(histPath, history.WithLimit(1000))
	if err != nil {
		return err
	}
	defer hist.Close()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	if r, err := hist.Reader(); err == nil {
		_, _ = ln.ReadHistory(r)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	fmt.Println("lumen session", sess.ID, "- type :quit to exit")
	for {
		line, err := ln.Prompt(promptMain)
		if sterrors.Is(err, io.EOF) || sterrors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}
		switch strings.TrimSpace(line) {
		case "":
			continue
		case ":quit", ":q":
			return nil
		case ":symbols":
			for _, name := range sess.Symbols().Names() {
				v, _ := sess.Symbols().Get(name)
				fmt.Printf("%s = %s\n", name, v)
			}
			continue
		}
		if len(line) > cfg.MaxLineBytes {
			report(os.Stderr, diagnostics.Errorf(diagnostics.ErrCodeInputTooLarge, "line exceeds %d bytes", cfg.MaxLineBytes))
			continue
		}
		ln.AppendHistory(line)
		if err := hist.Append(line); err != nil {
			report(os.Stderr, err)
		}
		values, err := sess.Run(line)
		printValues(os.Stdout, values)
		if err != nil {
			report(os.Stderr, err)
		}
	}
}

// historyPath falls back to ~/.lumen_history when history_file is unset.
func historyPath(cfg config.Config) (string, error) {
	if cfg.HistoryFile != "" {
		return cfg.HistoryFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", diagnostics.Wrap(diagnostics.ErrCodeConfig, err, "cannot locate history file, set history_file")
	}
	return filepath.Join(home, historyFile), nil
}

// replPiped evaluates r line by line when stdin is not a terminal.
func replPiped(sess *lumen.Session, r io.Reader, out, errOut io.Writer) error {
	lines := source.NewLineReader(r, sess.Config().MaxLineBytes)
	failed := false
	for {
		line, err := lines.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			if !diagnostics.IsCode(err, diagnostics.ErrCodeInputTooLarge) {
				return err
			}
			report(errOut, err)
			failed = true
			continue
		}
		values, err := sess.Run(line)
		printValues(out, values)
		if err != nil {
			report(errOut, err)
			failed = true
		}
	}
	if failed {
		return cli.Exit("", 1)
	}
	return nil
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if addr := c.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	srv, err := server.New(cfg)
	if err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(cfg.Server.Addr)
	}()

	select {
	case err := <-serverErr:
		return err
	case sig := <-sigChan:
		fmt.Printf("Received signal: %v. Initiating graceful shutdown...\n", sig)
		return srv.Shutdown()
	}
}
