package config

import (
	"os"
	"strings"

	"github.com/oarkflow/bcl"
	"github.com/oarkflow/json"
	"gopkg.in/yaml.v3"

	"github.com/oarkflow/lumen/pkg/diagnostics"
	"github.com/oarkflow/lumen/pkg/lexer"
	"github.com/oarkflow/lumen/pkg/parser"
)

const (
	DefaultMaxFileBytes = 1 << 20
	DefaultMaxLineBytes = 1024
)

type ServerConfig struct {
	Addr    string `json:"addr" yaml:"addr"`
	Version string `json:"version" yaml:"version"`
}

// Config bounds the interpreter's input and working storage. Zero capacities
// mean unbounded; a zero cache size disables token memoisation.
type Config struct {
	MaxFileBytes        int64        `json:"max_file_bytes" yaml:"max_file_bytes"`
	MaxLineBytes        int          `json:"max_line_bytes" yaml:"max_line_bytes"`
	TokenBufferCapacity int          `json:"token_buffer_capacity" yaml:"token_buffer_capacity"`
	StackCapacity       int          `json:"stack_capacity" yaml:"stack_capacity"`
	ReservedWords       string       `json:"reserved_words" yaml:"reserved_words"`
	TokenCacheSize      int          `json:"token_cache_size" yaml:"token_cache_size"`
	HistoryFile         string       `json:"history_file" yaml:"history_file"`
	Server              ServerConfig `json:"server" yaml:"server"`
}

func Default() Config {
	return Config{
		MaxFileBytes:        DefaultMaxFileBytes,
		MaxLineBytes:        DefaultMaxLineBytes,
		StackCapacity:       parser.DefaultStackCapacity,
		ReservedWords:       string(lexer.KeywordsTrie),
		Server: ServerConfig{
			Addr:    ":8080",
			Version: "dev",
		},
	}
}

// Detect reads content as JSON, then YAML, then BCL. Fields the content does
// not set keep their defaults.
func Detect(content string) (Config, error) {
	trimmed := []byte(strings.TrimSpace(content))
	cfg := Default()
	if json.Unmarshal(trimmed, &cfg) == nil {
		return cfg, cfg.Validate()
	}
	cfg = Default()
	if yaml.Unmarshal(trimmed, &cfg) == nil {
		return cfg, cfg.Validate()
	}
	cfg = Default()
	if _, err := bcl.Unmarshal(trimmed, &cfg); err == nil {
		return cfg, cfg.Validate()
	}
	return Default(), diagnostics.Errorf(diagnostics.ErrCodeConfig,
		"unable to detect config format, please provide valid JSON, YAML, or BCL")
}

// Load reads path, expanding environment variables before decoding.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), diagnostics.Wrap(diagnostics.ErrCodeConfig, err, "read config %s", path)
	}
	return Detect(os.ExpandEnv(string(data)))
}

func (c Config) Validate() error {
	switch {
	case c.MaxFileBytes <= 0:
		return diagnostics.Errorf(diagnostics.ErrCodeConfig, "max_file_bytes must be positive, got %d", c.MaxFileBytes)
	case c.MaxLineBytes <= 0:
		return diagnostics.Errorf(diagnostics.ErrCodeConfig, "max_line_bytes must be positive, got %d", c.MaxLineBytes)
	case c.TokenBufferCapacity < 0:
		return diagnostics.Errorf(diagnostics.ErrCodeConfig, "token_buffer_capacity must not be negative")
	case c.TokenBufferCapacity > 0 && int64(c.TokenBufferCapacity) <= c.MaxFileBytes:
		// one token per byte plus EOF
		return diagnostics.Errorf(diagnostics.ErrCodeConfig,
			"token_buffer_capacity %d cannot hold a %d byte input, use 0 or at least %d",
			c.TokenBufferCapacity, c.MaxFileBytes, c.MaxFileBytes+1)
	case c.StackCapacity < 0:
		return diagnostics.Errorf(diagnostics.ErrCodeConfig, "stack_capacity must not be negative")
	case c.TokenCacheSize < 0:
		return diagnostics.Errorf(diagnostics.ErrCodeConfig, "token_cache_size must not be negative")
	}
	switch lexer.KeywordMode(c.ReservedWords) {
	case lexer.KeywordsTrie, lexer.KeywordsHash:
	default:
		return diagnostics.Errorf(diagnostics.ErrCodeConfig, "reserved_words must be %q or %q, got %q",
			lexer.KeywordsTrie, lexer.KeywordsHash, c.ReservedWords)
	}
	return nil
}

// LexerOptions translates the lexer settings into options.
func (c Config) LexerOptions() []lexer.Option {
	return []lexer.Option{
		lexer.WithCapacity(c.TokenBufferCapacity),
		lexer.WithKeywordMode(lexer.KeywordMode(c.ReservedWords)),
	}
}
