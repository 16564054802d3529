package errlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Log is the append-only system error log: one line per event, each
// prefixed with a bracketed UTC timestamp so the health-check
// collaborator can parse it back out. Appends are best effort; a log
// that cannot be written must never take the calling operation down
// with it.
type Log struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func New(path string) *Log {
	return &Log{path: path, now: time.Now}
}

// Path returns the log's backing file path.
func (l *Log) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Printf appends one formatted line to the log.
func (l *Log) Printf(format string, args ...any) {
	if l == nil || l.path == "" {
		return
	}
	line := fmt.Sprintf("[%s] %s\n", l.now().UTC().Format(time.RFC3339), fmt.Sprintf(format, args...))

	l.mu.Lock()
	defer l.mu.Unlock()
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return
		}
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	_, _ = f.WriteString(line)
	_ = f.Close()
}
