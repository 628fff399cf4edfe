package json

import (
	"testing"

	"github.com/gavelchain/gavel/serde"
	"github.com/stretchr/testify/require"
)

func TestContext(t *testing.T) {
	ctx := NewContext()

	require.Equal(t, serde.FormatJSON, ctx.GetFormat())

	data, err := ctx.Marshal(struct{ Value int }{Value: 42})
	require.NoError(t, err)
	require.Equal(t, `{"Value":42}`, string(data))

	decoded := struct{ Value int }{}
	require.NoError(t, ctx.Unmarshal(data, &decoded))
	require.Equal(t, 42, decoded.Value)

	require.Error(t, ctx.Unmarshal([]byte("garbage"), &decoded))
}
