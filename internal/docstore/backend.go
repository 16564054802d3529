package docstore

// Backend stores one opaque payload per named document. Implementations
// must make Save atomic: a concurrent Load never observes a partial
// write, and a failed Save leaves the previous payload untouched.
type Backend interface {
	// Load returns the current payload, or ErrNotFound when the
	// document has never been saved.
	Load(name string) ([]byte, error)
	Save(name string, data []byte) error
}

type backendCloser interface {
	Close() error
}
