package backup

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/errlog"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/metrics"
)

const (
	dayFormat   = "20060102"
	stampFormat = "20060102-150405"
)

type Options struct {
	DataDir   string
	BackupDir string
	ErrorLog  *errlog.Log
	Metrics   *metrics.Set
	Clock     func() time.Time
}

// Snapshotter copies every data document into a timestamped directory
// once per calendar day. It is safe to call on every bootstrap; within
// the same day it reuses the existing snapshot instead of taking a new
// one.
type Snapshotter struct {
	dataDir   string
	backupDir string
	errlog    *errlog.Log
	metrics   *metrics.Set
	now       func() time.Time
}

func NewSnapshotter(opts Options) *Snapshotter {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	backupDir := strings.TrimSpace(opts.BackupDir)
	if backupDir == "" {
		backupDir = filepath.Join(opts.DataDir, "backups")
	}
	return &Snapshotter{
		dataDir:   opts.DataDir,
		backupDir: backupDir,
		errlog:    opts.ErrorLog,
		metrics:   opts.Metrics,
		now:       now,
	}
}

// Snapshot returns the path of today's backup directory, creating and
// filling it if today has none yet. Copies are best effort: a document
// that fails to copy is logged and skipped, never rolled back.
func (s *Snapshotter) Snapshot() (string, error) {
	if existing := s.todaysDir(); existing != "" {
		return existing, nil
	}

	dir := filepath.Join(s.backupDir, s.now().Format(stampFormat))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.errlog.Printf("backup: could not create %s: %v", dir, err)
		return "", err
	}

	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		s.errlog.Printf("backup: could not read data directory: %v", err)
		return dir, nil
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		src := filepath.Join(s.dataDir, entry.Name())
		data, readErr := os.ReadFile(src)
		if readErr != nil {
			s.errlog.Printf("backup: could not read %s: %v", entry.Name(), readErr)
			continue
		}
		if writeErr := os.WriteFile(filepath.Join(dir, entry.Name()), data, 0o644); writeErr != nil {
			s.errlog.Printf("backup: could not copy %s: %v", entry.Name(), writeErr)
		}
	}
	s.metrics.BackupTaken()
	return dir, nil
}

// todaysDir returns the lexicographically last backup directory whose
// name starts with today's date, or "" when today has none.
func (s *Snapshotter) todaysDir() string {
	day := s.now().Format(dayFormat)
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		return ""
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), day) {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return filepath.Join(s.backupDir, names[len(names)-1])
}
