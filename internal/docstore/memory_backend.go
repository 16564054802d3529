package docstore

import (
	"strings"
	"sync"
)

// MemoryBackend keeps documents in a map. Used by tests and by the
// memory: DSN scheme.
type MemoryBackend struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: map[string][]byte{}}
}

func (b *MemoryBackend) Load(name string) ([]byte, error) {
	if b == nil || strings.TrimSpace(name) == "" {
		return nil, ErrInvalidInput
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.docs[name]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (b *MemoryBackend) Save(name string, data []byte) error {
	if b == nil || strings.TrimSpace(name) == "" {
		return ErrInvalidInput
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	b.docs[name] = stored
	return nil
}
