package docstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend keeps each document in its own file under a single data
// directory. Reads hold a shared flock for the duration of the read;
// writes go to a sibling temp file followed by an atomic rename, so no
// write lock is needed beyond the filesystem's rename guarantee.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, ErrInvalidInput
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) Dir() string {
	if b == nil {
		return ""
	}
	return b.dir
}

func (b *FileBackend) Load(name string) ([]byte, error) {
	if b == nil || strings.TrimSpace(name) == "" {
		return nil, ErrInvalidInput
	}
	f, err := os.Open(filepath.Join(b.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer f.Close()
	if err := lockShared(f); err == nil {
		defer func() { _ = unlock(f) }()
	}
	return io.ReadAll(f)
}

func (b *FileBackend) Save(name string, data []byte) error {
	if b == nil || strings.TrimSpace(name) == "" {
		return ErrInvalidInput
	}
	target := filepath.Join(b.dir, name)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
