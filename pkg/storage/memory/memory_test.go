package memory_test

import (
	"context"
	"linkexpander/pkg/storage"
	"linkexpander/pkg/storage/memory"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	v, err := s.Get(ctx, "linkHistory")
	require.NoError(t, err)
	require.Nil(t, v)

	blob := []byte("[]")
	require.NoError(t, s.Set(ctx, "linkHistory", blob))
	blob[0] = 'X' // caller mutations must not leak into the store

	v, err = s.Get(ctx, "linkHistory")
	require.NoError(t, err)
	require.Equal(t, "[]", string(v))

	require.NoError(t, s.Set(ctx, "empty", nil))
	v, err = s.Get(ctx, "empty")
	require.NoError(t, err)
	require.NotNil(t, v)
	require.Empty(t, v)

	require.NoError(t, s.Delete(ctx, "linkHistory"))
	v, err = s.Get(ctx, "linkHistory")
	require.NoError(t, err)
	require.Nil(t, v)

	_, err = s.Get(ctx, "")
	require.ErrorIs(t, err, storage.ErrEmptyKey)
	require.NoError(t, s.Close())
}
