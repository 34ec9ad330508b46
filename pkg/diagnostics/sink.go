package diagnostics

import (
	"fmt"
	"strings"
)

// Sink accumulates recoverable diagnostics in the order they were reported.
type Sink struct {
	entries []string
}

func NewSink() *Sink {
	return &Sink{entries: []string{}}
}

func (s *Sink) Add(msg string) {
	s.entries = append(s.entries, msg)
}

func (s *Sink) Addf(format string, args ...any) {
	s.entries = append(s.entries, fmt.Sprintf(format, args...))
}

// AddAt prefixes the message with its source position when one is known.
func (s *Sink) AddAt(line, column int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if line > 0 {
		msg = fmt.Sprintf("line %d:%d: %s", line, column, msg)
	}
	s.entries = append(s.entries, msg)
}

func (s *Sink) Empty() bool {
	return len(s.entries) == 0
}

func (s *Sink) Len() int {
	return len(s.entries)
}

// Entries returns a copy so callers cannot mutate the sink.
func (s *Sink) Entries() []string {
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Sink) Reset() {
	s.entries = s.entries[:0]
}

func (s *Sink) String() string {
	return strings.Join(s.entries, "\n")
}

// Err converts a non-empty sink into a PARSE_DIAGNOSTICS error.
func (s *Sink) Err() error {
	if s.Empty() {
		return nil
	}
	noun := "diagnostics"
	if s.Len() == 1 {
		noun = "diagnostic"
	}
	return &Error{
		Code:    ErrCodeDiagnostics,
		Message: fmt.Sprintf("%d %s reported", s.Len(), noun),
		Details: s.Entries(),
	}
}
