package docstore

import (
	"errors"
	"os"
	"testing"
)

// Integration test; set BACKOFFICE_TEST_POSTGRES_DSN to run it against
// a real database.
func TestPostgresBackendRoundTrip(t *testing.T) {
	dsn := os.Getenv("BACKOFFICE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("BACKOFFICE_TEST_POSTGRES_DSN not set")
	}

	backend, err := NewPostgresBackend(dsn)
	if err != nil {
		t.Fatalf("NewPostgresBackend: %v", err)
	}
	defer backend.Close()

	name := "it_roundtrip.json"
	if _, err := backend.Load(name); err != nil && !errors.Is(err, ErrNotFound) {
		t.Fatalf("initial load: %v", err)
	}
	if err := backend.Save(name, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := backend.Load(name)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Fatalf("unexpected payload %q", data)
	}
}

func TestNewPostgresBackendRejectsEmptyDSN(t *testing.T) {
	if _, err := NewPostgresBackend("  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
