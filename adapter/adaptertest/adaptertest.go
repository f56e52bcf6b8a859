// Package adaptertest checks that an adapter.Adapter honors the storage
// contract. Adapter packages call Run from their own tests.
package adaptertest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/vstore/adapter"
)

// Run exercises a fresh adapter from open for each subtest. open registers
// its own cleanup.
func Run(t *testing.T, open func(t *testing.T) adapter.Adapter) {
	t.Helper()
	ctx := context.Background()

	t.Run("MissReturnsFalse", func(t *testing.T) {
		a := open(t)
		b, ok, err := a.Read(ctx, "vstore:ns:missing")
		require.NoError(t, err)
		require.False(t, ok)
		require.Nil(t, b)
	})

	t.Run("ReadReturnsWrittenBytes", func(t *testing.T) {
		a := open(t)
		in := []byte{'V', 'S', 'T', 'R', 0, 0xff, '\n', 1}
		require.NoError(t, a.Write(ctx, "vstore:ns:k", in))

		got, ok, err := a.Read(ctx, "vstore:ns:k")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, in, got)
	})

	t.Run("WriteReplaces", func(t *testing.T) {
		a := open(t)
		require.NoError(t, a.Write(ctx, "vstore:ns:k", []byte(`{"value":1}`)))
		require.NoError(t, a.Write(ctx, "vstore:ns:k", []byte(`{"value":2}`)))

		got, ok, err := a.Read(ctx, "vstore:ns:k")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, `{"value":2}`, string(got))
	})

	t.Run("WriteDoesNotAliasInput", func(t *testing.T) {
		a := open(t)
		in := []byte("abc")
		require.NoError(t, a.Write(ctx, "vstore:ns:k", in))
		in[0] = 'X'

		got, _, err := a.Read(ctx, "vstore:ns:k")
		require.NoError(t, err)
		require.Equal(t, "abc", string(got))
	})

	t.Run("RemoveIsIdempotent", func(t *testing.T) {
		a := open(t)
		require.NoError(t, a.Write(ctx, "vstore:ns:k", []byte("v")))
		require.NoError(t, a.Remove(ctx, "vstore:ns:k"))
		require.NoError(t, a.Remove(ctx, "vstore:ns:k"))
		require.NoError(t, a.Remove(ctx, "vstore:ns:never"))

		_, ok, err := a.Read(ctx, "vstore:ns:k")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("KeysListsLiveEntries", func(t *testing.T) {
		a := open(t)
		for _, k := range []string{"vstore:a:1", "vstore:a:2", "vstore:b:1"} {
			require.NoError(t, a.Write(ctx, k, []byte("v")))
		}
		require.NoError(t, a.Remove(ctx, "vstore:a:2"))

		ks, err := a.Keys(ctx)
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"vstore:a:1", "vstore:b:1"}, ks)
	})

	t.Run("RemoveWhileIteratingKeys", func(t *testing.T) {
		a := open(t)
		for _, k := range []string{"vstore:a:1", "vstore:a:2", "vstore:a:3"} {
			require.NoError(t, a.Write(ctx, k, []byte("v")))
		}
		ks, err := a.Keys(ctx)
		require.NoError(t, err)
		for _, k := range ks {
			require.NoError(t, a.Remove(ctx, k))
		}
		ks, err = a.Keys(ctx)
		require.NoError(t, err)
		require.Empty(t, ks)
	})
}
