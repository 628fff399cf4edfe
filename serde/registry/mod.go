// Package registry defines the format registry of a message family.
//
// Each message family owns a registry where the format engines register
// themselves, usually from the init function of a format subpackage.
package registry

import (
	"github.com/gavelchain/gavel/serde"
	"golang.org/x/xerrors"
)

// Registry is the interface of a format registry.
type Registry interface {
	// Register stores the engine for the given format.
	Register(name serde.Format, engine serde.FormatEngine)

	// Get returns the engine of the format. It always returns an engine,
	// possibly one that only fails with a meaningful error when the
	// format is unknown.
	Get(name serde.Format) serde.FormatEngine
}

// SimpleRegistry is a default implementation of the Registry interface.
//
// - implements registry.Registry
type SimpleRegistry struct {
	store map[serde.Format]serde.FormatEngine
}

// NewSimpleRegistry returns a new empty registry.
func NewSimpleRegistry() *SimpleRegistry {
	return &SimpleRegistry{
		store: make(map[serde.Format]serde.FormatEngine),
	}
}

// Register implements registry.Registry. It registers the engine for the
// given format.
func (r *SimpleRegistry) Register(name serde.Format, engine serde.FormatEngine) {
	r.store[name] = engine
}

// Get implements registry.Registry. It returns the format engine
// associated with the format if it exists, otherwise an empty format
// that fails with a meaningful error.
func (r *SimpleRegistry) Get(name serde.Format) serde.FormatEngine {
	engine := r.store[name]
	if engine == nil {
		return emptyFormat{name: name}
	}

	return engine
}

// EmptyFormat is a format engine that always returns an error so that
// serialization can fail with a meaningful message without checking the
// format existence beforehand.
//
// - implements serde.FormatEngine
type emptyFormat struct {
	name serde.Format
}

// Encode implements serde.FormatEngine. It always returns an error.
func (f emptyFormat) Encode(serde.Context, serde.Message) ([]byte, error) {
	return nil, xerrors.Errorf("format '%s' is not implemented", f.name)
}

// Decode implements serde.FormatEngine. It always returns an error.
func (f emptyFormat) Decode(serde.Context, []byte) (serde.Message, error) {
	return nil, xerrors.Errorf("format '%s' is not implemented", f.name)
}
