// Package prefixed implements a store snapshot that namespaces all the
// keys with a constant prefix. Each contract gets its own prefix so that
// two contracts can never collide inside the shared ledger state.
package prefixed

import "github.com/gavelchain/gavel/core/store"

type readable struct {
	store.Readable
	prefix []byte
}

type writable struct {
	store.Writable
	prefix []byte
}

type snapshot struct {
	*writable
	*readable
}

// NewSnapshot creates a new prefixed snapshot.
func NewSnapshot(prefix string, snap store.Snapshot) store.Snapshot {
	p := []byte(prefix)
	return &snapshot{
		&writable{snap, p},
		&readable{snap, p},
	}
}

// NewReadable creates a new prefixed readable store.
func NewReadable(prefix string, r store.Readable) store.Readable {
	return &readable{r, []byte(prefix)}
}

// Get implements store.Readable. It reads the key inside the namespace.
func (s *readable) Get(key []byte) ([]byte, error) {
	return s.Readable.Get(Key(s.prefix, key))
}

// Set implements store.Writable. It writes the key inside the namespace.
func (s *writable) Set(key []byte, value []byte) error {
	return s.Writable.Set(Key(s.prefix, key), value)
}

// Delete implements store.Writable. It deletes the key inside the
// namespace.
func (s *writable) Delete(key []byte) error {
	return s.Writable.Delete(Key(s.prefix, key))
}

// Key returns the storage key for a base key inside the prefix
// namespace. Prefixes are expected to be of a fixed length per
// deployment, which keeps the mapping collision free.
func Key(prefix, key []byte) []byte {
	out := make([]byte, 0, len(prefix)+len(key))
	out = append(out, prefix...)
	out = append(out, key...)

	return out
}
