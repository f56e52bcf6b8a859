package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/vstore/adapter"
	"github.com/unkn0wn-root/vstore/adapter/adaptertest"
)

func open(t *testing.T) adapter.Adapter {
	t.Helper()
	a, err := Open(Config{Path: filepath.Join(t.TempDir(), "vstore.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func TestConformance(t *testing.T) {
	adaptertest.Run(t, open)
}

func TestPathRequired(t *testing.T) {
	_, err := Open(Config{})
	require.ErrorIs(t, err, ErrPathRequired)
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vstore.db")

	a, err := Open(Config{Path: path, Bucket: "records"})
	require.NoError(t, err)
	require.NoError(t, a.Write(ctx, "vstore:ns:k", []byte("v")))
	require.NoError(t, a.Close(ctx))

	b, err := Open(Config{Path: path, Bucket: "records"})
	require.NoError(t, err)
	defer b.Close(ctx)

	got, ok, err := b.Read(ctx, "vstore:ns:k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", string(got))
}
