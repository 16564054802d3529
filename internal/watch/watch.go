package watch

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/errlog"
)

// Watcher journals data-directory changes in the system error log.
// The store has no cross-process lock, so the journal is the audit
// trail for what touched the directory and when. It records every
// change, the store's own atomic replaces included; only the store's
// temp files and the log's own file are skipped, so the journal can
// never feed itself.
type Watcher struct {
	watcher *fsnotify.Watcher
	errlog  *errlog.Log
	skip    string
}

func New(dir string, log *errlog.Log) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	skip := ""
	if path := log.Path(); path != "" {
		skip = filepath.Base(path)
	}
	return &Watcher{watcher: fw, errlog: log, skip: skip}, nil
}

// Run consumes events until ctx is done or the watcher closes.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Base(event.Name)
			if strings.HasSuffix(name, ".tmp") {
				continue
			}
			if w.skip != "" && name == w.skip {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.errlog.Printf("watch: data document changed on disk: %s %s", event.Op, name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.errlog.Printf("watch: %v", err)
		}
	}
}

func (w *Watcher) Close() error {
	if w == nil || w.watcher == nil {
		return nil
	}
	return w.watcher.Close()
}
