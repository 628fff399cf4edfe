package registry

import (
	"testing"

	"github.com/gavelchain/gavel/serde"
	"github.com/stretchr/testify/require"
)

func TestSimpleRegistry(t *testing.T) {
	r := NewSimpleRegistry()

	engine := fakeEngine{}
	r.Register(serde.FormatJSON, engine)

	require.Equal(t, engine, r.Get(serde.FormatJSON))

	empty := r.Get("XML")

	_, err := empty.Encode(serde.Context{}, nil)
	require.EqualError(t, err, "format 'XML' is not implemented")

	_, err = empty.Decode(serde.Context{}, nil)
	require.EqualError(t, err, "format 'XML' is not implemented")
}

// fakeEngine is an empty format engine to register in the tests.
//
// - implements serde.FormatEngine
type fakeEngine struct{}

func (fakeEngine) Encode(serde.Context, serde.Message) ([]byte, error) {
	return nil, nil
}

func (fakeEngine) Decode(serde.Context, []byte) (serde.Message, error) {
	return nil, nil
}
