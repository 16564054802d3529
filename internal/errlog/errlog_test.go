package errlog

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestPrintfAppendsBracketedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "error_log.txt")
	log := New(path)

	log.Printf("first %s", "event")
	log.Printf("second event")

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), raw)
	}
	linePattern := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z\] `)
	for _, line := range lines {
		if !linePattern.MatchString(line) {
			t.Fatalf("line missing bracketed timestamp prefix: %q", line)
		}
	}
	if !strings.HasSuffix(lines[0], "first event") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
}

func TestNilLogIsSafe(t *testing.T) {
	var log *Log
	log.Printf("should not panic")
}
