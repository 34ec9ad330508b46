package history

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"github.com/oarkflow/lumen/pkg/diagnostics"
)

// Option is a functional option for History.
type Option func(*History)

// WithLimit keeps only the newest n entries when reading back; 0 keeps all.
func WithLimit(n int) Option {
	return func(h *History) {
		h.limit = n
	}
}

// WithoutSync skips the fsync after each append.
func WithoutSync() Option {
	return func(h *History) {
		h.syncOnAppend = false
	}
}

// History appends REPL input to a file shared between processes. Writers
// take an advisory lock on path+".lock" for each append.
type History struct {
	path         string
	file         *os.File
	fileLock     *flock.Flock
	mu           sync.Mutex
	limit        int
	syncOnAppend bool
}

func Open(path string, opts ...Option) (*History, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, diagnostics.Wrap(diagnostics.ErrCodeIO, err, "open history %s", path)
	}
	h := &History{
		path:         path,
		file:         f,
		fileLock:     flock.New(path + ".lock"),
		syncOnAppend: true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *History) Path() string {
	return h.path
}

// Append records one entry. Blank entries are ignored and embedded newlines
// are flattened so that each entry stays on its own line.
func (h *History) Append(entry string) error {
	entry = strings.TrimSpace(strings.ReplaceAll(entry, "\n", " "))
	if entry == "" {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.fileLock.Lock(); err != nil {
		return diagnostics.Wrap(diagnostics.ErrCodeIO, err, "lock history %s", h.path)
	}
	defer func() {
		_ = h.fileLock.Unlock()
	}()
	if _, err := h.file.WriteString(entry + "\n"); err != nil {
		return diagnostics.Wrap(diagnostics.ErrCodeIO, err, "append history %s", h.path)
	}
	if h.syncOnAppend {
		return h.file.Sync()
	}
	return nil
}

// Entries reads the file back, oldest first.
func (h *History) Entries() ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.fileLock.RLock(); err != nil {
		return nil, diagnostics.Wrap(diagnostics.ErrCodeIO, err, "lock history %s", h.path)
	}
	defer func() {
		_ = h.fileLock.Unlock()
	}()
	if _, err := h.file.Seek(0, io.SeekStart); err != nil {
		return nil, diagnostics.Wrap(diagnostics.ErrCodeIO, err, "read history %s", h.path)
	}
	var entries []string
	scanner := bufio.NewScanner(h.file)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			entries = append(entries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, diagnostics.Wrap(diagnostics.ErrCodeIO, err, "read history %s", h.path)
	}
	if h.limit > 0 && len(entries) > h.limit {
		entries = entries[len(entries)-h.limit:]
	}
	return entries, nil
}

// Reader exposes the entries in the newline-separated form line editors load.
func (h *History) Reader() (io.Reader, error) {
	entries, err := h.Entries()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return strings.NewReader(""), nil
	}
	return strings.NewReader(strings.Join(entries, "\n") + "\n"), nil
}

func (h *History) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.file.Close()
}
