package ristretto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/vstore/adapter"
	"github.com/unkn0wn-root/vstore/adapter/adaptertest"
)

func testConfig() Config {
	return Config{NumCounters: 1e4, MaxCost: 1 << 24, BufferItems: 64, Metrics: true}
}

func open(t *testing.T) adapter.Adapter {
	t.Helper()
	a, err := New(testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func TestConformance(t *testing.T) {
	adaptertest.Run(t, open)
}

func TestInvalidConfig(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestReadSelfHealsForeignValue(t *testing.T) {
	ctx := context.Background()
	a, err := New(testConfig())
	require.NoError(t, err)
	defer a.Close(ctx)

	a.c.Set("vstore:ns:k", "not bytes", 1)
	a.c.Wait()
	a.mu.Lock()
	a.index["vstore:ns:k"] = struct{}{}
	a.mu.Unlock()

	_, ok, err := a.Read(ctx, "vstore:ns:k")
	require.NoError(t, err)
	require.False(t, ok)

	ks, err := a.Keys(ctx)
	require.NoError(t, err)
	require.Empty(t, ks)
}

func TestMetricsEnabled(t *testing.T) {
	a, err := New(testConfig())
	require.NoError(t, err)
	defer a.Close(context.Background())
	require.NotNil(t, a.Metrics())
}
