// Package sink implements the result sink (C7): a buffered writer over the
// output file that flushes after every accepted hit so a killed process
// leaves a consistent prefix, plus a timestamped echo to the log stream.
// Grounded in the teacher's outFile/bufio.Writer/writer.Flush() pattern
// (ogpourya-proxyra and original_source/http.py's GO_SOURCE_CODE writer
// loop over resultChan).
package sink

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"github.com/CXK-Computer/proxy-scan/internal/applog"
)

// Sink is a single-writer, append-only destination for validated endpoint
// URLs. It is safe for concurrent use by multiple worker goroutines.
type Sink struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	count  int
}

// Create opens path for writing, truncating any existing content (spec.md
// §4.8: "the final output file is truncated at driver start"). Returns an
// output-fatal error (spec.md §7) when the file cannot be created.
func Create(path string) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("sink: cannot create output file %q: %w", path, err)
	}
	return &Sink{file: f, writer: bufio.NewWriter(f)}, nil
}

// Accept writes one validated URL as a newline-terminated line and
// flushes immediately, then echoes it to the log stream with a local
// timestamp prefix (spec.md §4.7).
func (s *Sink) Accept(normalizedURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintln(s.writer, normalizedURL); err != nil {
		return err
	}
	if err := s.writer.Flush(); err != nil {
		return err
	}
	s.count++
	applog.Infof("accepted proxy: %s", normalizedURL)
	return nil
}

// Count returns the number of lines accepted so far.
func (s *Sink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Close flushes and closes the underlying file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writer.Flush(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
