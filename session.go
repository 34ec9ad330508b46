package lumen

import (
	"time"

	"github.com/oarkflow/log"
	"github.com/oarkflow/xid"

	"github.com/oarkflow/lumen/pkg/ast"
	"github.com/oarkflow/lumen/pkg/binder"
	"github.com/oarkflow/lumen/pkg/config"
	"github.com/oarkflow/lumen/pkg/diagnostics"
	"github.com/oarkflow/lumen/pkg/evaluator"
	"github.com/oarkflow/lumen/pkg/lexer"
	"github.com/oarkflow/lumen/pkg/parser"
	"github.com/oarkflow/lumen/pkg/source"
	"github.com/oarkflow/lumen/pkg/symbols"
	"github.com/oarkflow/lumen/pkg/token"
	"github.com/oarkflow/lumen/pkg/value"
)

// Session carries everything that outlives a single input: the symbol table,
// the kinds of declared identifiers and the diagnostics of the last parse.
// A Session is not safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	cfg       config.Config
	logger    *log.Logger
	table     *symbols.Map
	declared  *binder.Declarations
	sink      *diagnostics.Sink
	cache     *lexer.Cache
	ownsCache bool
}

func NewSession(opts ...Option) (*Session, error) {
	s := &Session{
		ID:        xid.New().String(),
		CreatedAt: time.Now(),
		cfg:       config.Default(),
		logger:    &log.DefaultLogger,
		table:     symbols.NewMap(),
		declared:  binder.NewDeclarations(nil),
		sink:      diagnostics.NewSink(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if s.cache == nil && s.cfg.TokenCacheSize > 0 {
		cache, err := lexer.NewCache(s.cfg.TokenCacheSize, s.cfg.LexerOptions()...)
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.ErrCodeConfig, err, "token cache")
		}
		s.cache = cache
		s.ownsCache = true
	}
	return s, nil
}

func (s *Session) Config() config.Config {
	return s.cfg
}

func (s *Session) Symbols() *symbols.Map {
	return s.table
}

// Diagnostics returns what the most recent parse reported.
func (s *Session) Diagnostics() []string {
	return s.sink.Entries()
}

// Declared reports the kind name was declared with in an earlier input.
func (s *Session) Declared(name string) (ast.ReturnKind, bool) {
	return s.declared.Declared(name)
}

func (s *Session) Tokenize(src string) (*token.Stream, error) {
	if int64(len(src)) > s.cfg.MaxFileBytes {
		return nil, diagnostics.Errorf(diagnostics.ErrCodeInputTooLarge,
			"input of %d bytes exceeds %d", len(src), s.cfg.MaxFileBytes)
	}
	if s.cache != nil {
		stream, _, err := s.cache.Tokenize(src)
		return stream, err
	}
	return lexer.Tokenize(src, s.cfg.LexerOptions()...)
}

// Parse builds the bound roots of every statement in stream. Declarations are
// remembered by the session only when the parse reports no diagnostics.
func (s *Session) Parse(stream *token.Stream) ([]*ast.Expr, error) {
	s.sink.Reset()
	p := parser.New(stream,
		parser.WithStackCapacity(s.cfg.StackCapacity),
		parser.WithScope(s.declared),
		parser.WithSink(s.sink),
	)
	roots, err := p.Parse()
	if err != nil {
		if diagnostics.IsCode(err, diagnostics.ErrCodeDiagnostics) {
			s.logger.Warn().Str("session", s.ID).Int("diagnostics", s.sink.Len()).Msg("input rejected")
		} else {
			s.logger.Error().Str("session", s.ID).Err(err).Msg("parse failed")
		}
		return nil, err
	}
	p.Declarations().CommitTo(s.declared)
	return roots, nil
}

func (s *Session) Evaluate(root *ast.Expr) (value.Value, error) {
	v, err := evaluator.Evaluate(root, s.table)
	if err != nil {
		s.logger.Error().Str("session", s.ID).Err(err).Msg("evaluation failed")
	}
	return v, err
}

// Run evaluates every statement of src in order and returns one value per
// statement. Evaluation stops at the first runtime error; the values of the
// statements before it are still returned.
func (s *Session) Run(src string) ([]value.Value, error) {
	stream, err := s.Tokenize(src)
	if err != nil {
		return nil, err
	}
	roots, err := s.Parse(stream)
	if err != nil {
		return nil, err
	}
	values := make([]value.Value, 0, len(roots))
	for _, root := range roots {
		v, err := s.Evaluate(root)
		if err != nil {
			return values, err
		}
		values = append(values, v)
	}
	return values, nil
}

// Exec runs src and returns the value of its last statement.
func (s *Session) Exec(src string) (value.Value, error) {
	values, err := s.Run(src)
	if err != nil || len(values) == 0 {
		return value.NoValue, err
	}
	return values[len(values)-1], nil
}

func (s *Session) ExecFile(path string) (value.Value, error) {
	src, err := source.ReadFile(path, s.cfg.MaxFileBytes)
	if err != nil {
		return value.NoValue, err
	}
	start := time.Now()
	v, err := s.Exec(src)
	if err == nil {
		s.logger.Info().Str("session", s.ID).Str("file", path).Dur("elapsed", time.Since(start)).Msg("file executed")
	}
	return v, err
}

// Close releases the token cache if the session created it.
func (s *Session) Close() error {
	if s.ownsCache && s.cache != nil {
		s.cache.Close()
		s.cache = nil
	}
	return nil
}
