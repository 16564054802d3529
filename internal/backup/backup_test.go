package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestSnapshotCopiesJSONDocuments(t *testing.T) {
	dataDir := t.TempDir()
	writeDoc(t, dataDir, "portal_state.json", `{"ok": true}`)
	writeDoc(t, dataDir, "users.json", `[]`)
	writeDoc(t, dataDir, "notes.txt", "not a document")

	snap := NewSnapshotter(Options{
		DataDir: dataDir,
		Clock:   func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) },
	})
	dir, err := snap.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if filepath.Base(dir) != "20260301-093000" {
		t.Fatalf("unexpected snapshot directory %q", dir)
	}

	data, err := os.ReadFile(filepath.Join(dir, "portal_state.json"))
	if err != nil {
		t.Fatalf("copy missing: %v", err)
	}
	if string(data) != `{"ok": true}` {
		t.Fatalf("copy altered: %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); !os.IsNotExist(err) {
		t.Fatalf("non-JSON file should not be copied")
	}
}

func TestSnapshotReusesTodaysDirectory(t *testing.T) {
	dataDir := t.TempDir()
	writeDoc(t, dataDir, "portal_state.json", `{}`)

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	snap := NewSnapshotter(Options{
		DataDir: dataDir,
		Clock:   func() time.Time { return clock },
	})

	first, err := snap.Snapshot()
	if err != nil {
		t.Fatalf("first Snapshot: %v", err)
	}

	clock = clock.Add(3 * time.Hour)
	second, err := snap.Snapshot()
	if err != nil {
		t.Fatalf("second Snapshot: %v", err)
	}
	if first != second {
		t.Fatalf("same-day snapshot should be reused: %q vs %q", first, second)
	}
}

func TestSnapshotTakesNewDirectoryNextDay(t *testing.T) {
	dataDir := t.TempDir()
	writeDoc(t, dataDir, "portal_state.json", `{}`)

	clock := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	snap := NewSnapshotter(Options{
		DataDir: dataDir,
		Clock:   func() time.Time { return clock },
	})

	first, err := snap.Snapshot()
	if err != nil {
		t.Fatalf("first Snapshot: %v", err)
	}
	clock = clock.Add(2 * time.Hour)
	second, err := snap.Snapshot()
	if err != nil {
		t.Fatalf("second Snapshot: %v", err)
	}
	if first == second {
		t.Fatalf("next-day snapshot should get its own directory")
	}
}

func TestBackupDirDefaultsUnderDataDir(t *testing.T) {
	dataDir := t.TempDir()
	writeDoc(t, dataDir, "portal_state.json", `{}`)

	snap := NewSnapshotter(Options{DataDir: dataDir})
	dir, err := snap.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if filepath.Dir(dir) != filepath.Join(dataDir, "backups") {
		t.Fatalf("snapshot landed outside the default backup dir: %q", dir)
	}
}
