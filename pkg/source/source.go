package source

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/oarkflow/lumen/pkg/diagnostics"
)

// ReadFile returns the contents of path, or of stdin when path is "-". Input
// longer than max bytes is rejected without being returned.
func ReadFile(path string, max int64) (string, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", diagnostics.Wrap(diagnostics.ErrCodeIO, err, "open %s", path)
		}
		defer f.Close()
		r = f
	}
	return Read(r, path, max)
}

// Read drains r, failing once more than max bytes have been seen.
func Read(r io.Reader, name string, max int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return "", diagnostics.Wrap(diagnostics.ErrCodeIO, err, "read %s", name)
	}
	if int64(len(data)) > max {
		return "", diagnostics.Errorf(diagnostics.ErrCodeInputTooLarge,
			"%s exceeds %d bytes", name, max)
	}
	return string(data), nil
}

// LineReader yields one input line at a time for interactive use.
type LineReader struct {
	r    *bufio.Reader
	max  int
	line int
}

func NewLineReader(r io.Reader, max int) *LineReader {
	return &LineReader{r: bufio.NewReader(r), max: max}
}

// ReadLine returns the next line without its terminator, or io.EOF once the
// input is exhausted. A line longer than max bytes is consumed and reported
// as INPUT_TOO_LARGE so the caller can continue with the next one.
func (lr *LineReader) ReadLine() (string, error) {
	line, err := lr.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", diagnostics.Wrap(diagnostics.ErrCodeIO, err, "read line %d", lr.line+1)
	}
	if err == io.EOF && line == "" {
		return "", io.EOF
	}
	lr.line++
	line = strings.TrimRight(line, "\r\n")
	if len(line) > lr.max {
		return "", diagnostics.Errorf(diagnostics.ErrCodeInputTooLarge,
			"line %d exceeds %d bytes", lr.line, lr.max).At(lr.line, 0)
	}
	return line, nil
}

// Line is the number of lines read so far.
func (lr *LineReader) Line() int {
	return lr.line
}
