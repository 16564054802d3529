package docstore

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/errlog"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/metrics"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrCorruptDocument = errors.New("corrupt document")
	ErrInvalidInput    = errors.New("invalid input")
)

// Options configures a Store. When Backend is nil a FileBackend rooted
// at DataDir is built; a data directory that cannot be created fails
// construction outright, since nothing else can proceed without it.
type Options struct {
	Backend  Backend
	DataDir  string
	ErrorLog *errlog.Log
	Metrics  *metrics.Set
}

// Store reads and writes whole JSON documents, one per name. Loads are
// self-healing: absent documents are created from the caller's default,
// and documents that fail to parse or have the wrong top-level shape
// are replaced with the default. The replacement discards whatever was
// stored; callers get the repair reported in the system error log, not
// as an error.
type Store struct {
	backend Backend
	errlog  *errlog.Log
	metrics *metrics.Set
}

func New(opts Options) (*Store, error) {
	backend := opts.Backend
	if backend == nil {
		fb, err := NewFileBackend(opts.DataDir)
		if err != nil {
			return nil, err
		}
		backend = fb
	}
	return &Store{
		backend: backend,
		errlog:  opts.ErrorLog,
		metrics: opts.Metrics,
	}, nil
}

// Backend exposes the underlying backend, mainly so the caller can
// close it on shutdown.
func (s *Store) Backend() Backend {
	if s == nil {
		return nil
	}
	return s.backend
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	if closer, ok := s.backend.(backendCloser); ok && closer != nil {
		return closer.Close()
	}
	return nil
}

// Load returns the named document decoded as generic JSON. See
// LoadOrCreate for the self-healing contract.
func (s *Store) Load(name string, def any) (any, error) {
	doc, _, err := s.LoadOrCreate(name, def)
	return doc, err
}

// LoadOrCreate loads the named document, creating it from def when
// absent. The second result reports whether the document had to be
// created. Content that does not parse, or whose top-level type
// disagrees with def, is overwritten with def and def is returned.
func (s *Store) LoadOrCreate(name string, def any) (any, bool, error) {
	if strings.TrimSpace(name) == "" {
		return nil, false, ErrInvalidInput
	}
	data, err := s.backend.Load(name)
	if errors.Is(err, ErrNotFound) {
		if saveErr := s.Save(name, def); saveErr != nil {
			return def, false, saveErr
		}
		return def, true, nil
	}
	if err != nil {
		return def, false, err
	}

	var doc any
	if unmarshalErr := json.Unmarshal(data, &doc); unmarshalErr != nil {
		s.errlog.Printf("document %s did not parse, replaced with default: %v", name, unmarshalErr)
		s.metrics.CorruptRepair()
		if saveErr := s.Save(name, def); saveErr != nil {
			return def, false, saveErr
		}
		return def, false, nil
	}
	if !topLevelShapeMatches(doc, def) {
		s.errlog.Printf("document %s had the wrong top-level shape, replaced with default", name)
		s.metrics.CorruptRepair()
		if saveErr := s.Save(name, def); saveErr != nil {
			return def, false, saveErr
		}
		return def, false, nil
	}
	s.metrics.DocumentLoad()
	return doc, false, nil
}

// Bytes returns the raw stored payload without any healing. Used by
// the integrity checker, which applies its own repair rules.
func (s *Store) Bytes(name string) ([]byte, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidInput
	}
	return s.backend.Load(name)
}

// LoadInto decodes the named document into v, a pointer to a typed
// document. Absent documents are created from def; content v cannot
// decode is replaced with def, logged as a repair.
func (s *Store) LoadInto(name string, v any, def any) error {
	if strings.TrimSpace(name) == "" || v == nil {
		return ErrInvalidInput
	}
	data, err := s.backend.Load(name)
	if errors.Is(err, ErrNotFound) {
		if saveErr := s.Save(name, def); saveErr != nil {
			return saveErr
		}
		return assign(v, def)
	}
	if err != nil {
		return err
	}
	if unmarshalErr := json.Unmarshal(data, v); unmarshalErr != nil {
		s.errlog.Printf("document %s did not decode, replaced with default: %v", name, unmarshalErr)
		s.metrics.CorruptRepair()
		if saveErr := s.Save(name, def); saveErr != nil {
			return saveErr
		}
		return assign(v, def)
	}
	s.metrics.DocumentLoad()
	return nil
}

// Save serializes doc deterministically and writes it through the
// backend's atomic replace. On failure the previous document is
// untouched and the caller must not assume the mutation persisted.
func (s *Store) Save(name string, doc any) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidInput
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.errlog.Printf("document %s failed to serialize: %v", name, err)
		s.metrics.SaveFailure()
		return err
	}
	data = append(data, '\n')
	if err := s.backend.Save(name, data); err != nil {
		s.errlog.Printf("document %s failed to save: %v", name, err)
		s.metrics.SaveFailure()
		return err
	}
	s.metrics.DocumentSave()
	return nil
}

func topLevelShapeMatches(doc, def any) bool {
	switch def.(type) {
	case map[string]any:
		_, ok := doc.(map[string]any)
		return ok
	case []any:
		_, ok := doc.([]any)
		return ok
	default:
		return true
	}
}

func assign(v, def any) error {
	raw, err := json.Marshal(def)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
