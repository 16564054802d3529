package docstore

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// BuildBackendFromDSN selects a document backend by DSN scheme:
// file:// (or a bare path), memory:, and postgres://. An empty DSN
// returns a nil backend so the caller can fall back to its default
// data directory.
func BuildBackendFromDSN(dsn string) (Backend, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, nil
	}
	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}
	scheme := strings.ToLower(strings.TrimSpace(parsed.Scheme))
	switch scheme {
	case "", "file":
		path, pathErr := dsnPath(parsed, dsn)
		if pathErr != nil {
			return nil, pathErr
		}
		return NewFileBackend(path)
	case "memory", "mem", "inmem":
		return NewMemoryBackend(), nil
	case "postgres", "postgresql":
		return NewPostgresBackend(dsn)
	default:
		return nil, fmt.Errorf("unsupported document backend scheme %q", scheme)
	}
}

func dsnPath(parsed *url.URL, raw string) (string, error) {
	if parsed.Opaque != "" {
		return parsed.Opaque, nil
	}
	path := parsed.Path
	if parsed.Host != "" {
		path = filepath.Join(parsed.Host, parsed.Path)
	}
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("document backend DSN %q is missing a path", raw)
	}
	return path, nil
}
