package ident

import (
	"strings"
	"testing"
)

func TestNewHasPrefixAndHexSuffix(t *testing.T) {
	id := New("rec-")
	if !strings.HasPrefix(id, "rec-") {
		t.Fatalf("missing prefix: %q", id)
	}
	suffix := strings.TrimPrefix(id, "rec-")
	if len(suffix) != 10 {
		t.Fatalf("expected 10 hex chars, got %q", suffix)
	}
	for _, r := range suffix {
		if !strings.ContainsRune("0123456789abcdef", r) {
			t.Fatalf("non-hex character %q in %q", r, id)
		}
	}
}

func TestNewDoesNotCollideQuickly(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := New("x")
		if seen[id] {
			t.Fatalf("duplicate id %q after %d draws", id, i)
		}
		seen[id] = true
	}
}

func TestNewUUIDLooksLikeUUID(t *testing.T) {
	id := NewUUID()
	if len(id) != 36 || strings.Count(id, "-") != 4 {
		t.Fatalf("unexpected uuid %q", id)
	}
}
