package dump

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// sink receives generated text for the duration of one dump.
type sink interface {
	WriteString(s string) (int, error)
	// Text returns everything written so far. File sinks return "".
	Text() string
	Close() error
}

func openSink(path string, appendMode bool) (sink, error) {
	if path == "" {
		return &memorySink{}, nil
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0644) //nolint:gosec // output path is chosen by the caller
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}
	return &fileSink{f: f, w: bufio.NewWriter(f)}, nil
}

type memorySink struct {
	b strings.Builder
}

func (m *memorySink) WriteString(s string) (int, error) { return m.b.WriteString(s) }
func (m *memorySink) Text() string                       { return m.b.String() }
func (m *memorySink) Close() error                       { return nil }

type fileSink struct {
	f *os.File
	w *bufio.Writer
}

func (s *fileSink) WriteString(str string) (int, error) { return s.w.WriteString(str) }
func (s *fileSink) Text() string                        { return "" }

func (s *fileSink) Close() error {
	flushErr := s.w.Flush()
	if flushErr != nil {
		flushErr = fmt.Errorf("failed to flush output file: %w", flushErr)
	}
	closeErr := s.f.Close()
	if closeErr != nil {
		closeErr = fmt.Errorf("failed to close output file: %w", closeErr)
	}
	return errors.Join(flushErr, closeErr)
}

// stickyWriter remembers the first write error so the assembler can check
// once per batch instead of after every fragment.
type stickyWriter struct {
	s   sink
	n   int64
	err error
}

func (w *stickyWriter) write(parts ...string) {
	for _, p := range parts {
		if w.err != nil {
			return
		}
		n, err := w.s.WriteString(p)
		w.n += int64(n)
		if err != nil {
			w.err = fmt.Errorf("failed to write output: %w", err)
		}
	}
}
