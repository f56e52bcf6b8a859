package redis

import (
	"context"
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/vstore/adapter"
	"github.com/unkn0wn-root/vstore/adapter/adaptertest"
)

func TestNilClient(t *testing.T) {
	_, err := New(Config{})
	require.ErrorIs(t, err, ErrNilClient)
}

func TestFactoryScopesScanToPrefix(t *testing.T) {
	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()

	a, err := Factory("", Config{Client: rdb}).Open()
	require.NoError(t, err)
	require.Equal(t, adapter.DefaultPrefix+"*", a.(*Adapter).match)

	a, err = Factory("app:", Config{Client: rdb, Match: "custom*"}).Open()
	require.NoError(t, err)
	require.Equal(t, "custom*", a.(*Adapter).match)
	require.EqualValues(t, defaultScanCount, a.(*Adapter).scanCount)
}

// TestConformance needs a live server: VSTORE_REDIS_ADDR=127.0.0.1:6379.
func TestConformance(t *testing.T) {
	addr := os.Getenv("VSTORE_REDIS_ADDR")
	if addr == "" {
		t.Skip("VSTORE_REDIS_ADDR not set")
	}
	adaptertest.Run(t, func(t *testing.T) adapter.Adapter {
		rdb := goredis.NewClient(&goredis.Options{Addr: addr})
		require.NoError(t, rdb.FlushDB(context.Background()).Err())
		a, err := New(Config{Client: rdb, CloseClient: true, Match: "vstore:*"})
		require.NoError(t, err)
		t.Cleanup(func() { _ = a.Close(context.Background()) })
		return a
	})
}
