package prefixed

import (
	"testing"

	"github.com/gavelchain/gavel/internal/testing/fake"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	inner := fake.NewSnapshot()
	snap := NewSnapshot("AAAA", inner)

	require.NoError(t, snap.Set([]byte("key"), []byte("value")))

	value, err := snap.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), value)

	// The key is namespaced inside the underlying store.
	value, err = inner.Get([]byte("AAAAkey"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), value)

	value, err = inner.Get([]byte("key"))
	require.NoError(t, err)
	require.Nil(t, value)

	// Two prefixes never observe each other's keys.
	other := NewSnapshot("BBBB", inner)

	value, err = other.Get([]byte("key"))
	require.NoError(t, err)
	require.Nil(t, value)

	require.NoError(t, snap.Delete([]byte("key")))

	value, err = inner.Get([]byte("AAAAkey"))
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestReadable(t *testing.T) {
	inner := fake.NewSnapshot()
	require.NoError(t, inner.Set([]byte("AAAAkey"), []byte("value")))

	value, err := NewReadable("AAAA", inner).Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), value)
}

func TestKey(t *testing.T) {
	require.Equal(t, []byte("AAAAkey"), Key([]byte("AAAA"), []byte("key")))
	require.Equal(t, []byte("key"), Key(nil, []byte("key")))
}
