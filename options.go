package lumen

import (
	"github.com/oarkflow/log"

	"github.com/oarkflow/lumen/pkg/config"
	"github.com/oarkflow/lumen/pkg/lexer"
	"github.com/oarkflow/lumen/pkg/symbols"
)

type Option func(*Session) error

func WithConfig(cfg config.Config) Option {
	return func(s *Session) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		s.cfg = cfg
		return nil
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Session) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// WithSymbolTable shares an existing table, for hosts that pre-populate it.
func WithSymbolTable(table *symbols.Map) Option {
	return func(s *Session) error {
		if table != nil {
			s.table = table
		}
		return nil
	}
}

// WithTokenCache shares a token cache between sessions. The session does not
// close a cache it was given.
func WithTokenCache(cache *lexer.Cache) Option {
	return func(s *Session) error {
		s.cache = cache
		return nil
	}
}
