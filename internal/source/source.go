// Package source produces a lazy sequence of candidate lines (endpoints or
// credentials) from a file path or an open byte stream, stripping blanks
// and comments. The scanning style mirrors the teacher's
// readProxiesFromFile/readProxiesFromStdin: a bufio.Scanner with an
// enlarged buffer, trimming each line and skipping anything empty or
// '#'-prefixed.
package source

import (
	"bufio"
	"io"
	"os"
	"strings"
)

const (
	initialBufBytes = 64 * 1024
	maxLineBytes    = 1024 * 1024
)

// Source is a pull-style iterator over trimmed, non-empty, non-comment
// lines. Next returns false once the underlying stream is exhausted or an
// error occurred; callers must check Err after the loop.
type Source struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    string
}

// Open returns a Source reading from path, or from r when path is empty.
func Open(path string, r io.Reader) (*Source, error) {
	var rc io.ReadCloser
	if path == "" {
		rc = io.NopCloser(r)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		rc = f
	}
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, initialBufBytes), maxLineBytes)
	return &Source{scanner: sc, closer: rc}, nil
}

// Next advances to the next qualifying line. Returns false at EOF or error.
func (s *Source) Next() bool {
	for s.scanner.Scan() {
		line := strings.TrimRight(s.scanner.Text(), "\r")
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}
		s.line = line
		return true
	}
	return false
}

// Line returns the line most recently yielded by Next.
func (s *Source) Line() string { return s.line }

// Err returns the first non-EOF error encountered, if any.
func (s *Source) Err() error { return s.scanner.Err() }

// Close releases the underlying file, if one was opened.
func (s *Source) Close() error { return s.closer.Close() }

// ReadAll drains the Source into a slice, for small finite inputs such as
// the credential list (§4.2: "K finite, loaded in full because it is small").
func ReadAll(s *Source) ([]string, error) {
	var out []string
	for s.Next() {
		out = append(out, s.Line())
	}
	return out, s.Err()
}

// ReadChunk pulls up to n lines from s for the batching driver (C8). It
// returns fewer than n lines (possibly zero) exactly at end of stream.
func ReadChunk(s *Source, n int) ([]string, error) {
	lines := make([]string, 0, n)
	for len(lines) < n && s.Next() {
		lines = append(lines, s.Line())
	}
	return lines, s.Err()
}
