package sink

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateTruncatesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(path, []byte("old\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(data), "old") {
		t.Fatal("Create should truncate an existing file")
	}
}

func TestAcceptAppendsAndFlushes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	s, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Close()

	if err := s.Accept("http://1.2.3.4:8080"); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if err := s.Accept("http://5.6.7.8:8080"); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if s.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", s.Count())
	}

	// Accept flushes synchronously, so the bytes must already be on disk
	// without closing the sink.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
}
