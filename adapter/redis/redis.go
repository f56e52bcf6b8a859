package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/vstore/adapter"
)

// Kind is the registry identity of the redis adapter.
const Kind = "redis"

var ErrNilClient = errors.New("redis adapter: nil client")

const defaultScanCount = 256

type Adapter struct {
	rdb         goredis.UniversalClient
	closeClient bool
	match       string
	scanCount   int64
}

var _ adapter.Adapter = (*Adapter)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this adapter exclusively owns the client
	// Match limits Keys to a SCAN pattern, e.g. "vstore:*". "" => "*".
	Match     string
	ScanCount int64 // SCAN COUNT hint; 0 => 256
}

func New(cfg Config) (*Adapter, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	a := &Adapter{
		rdb:         cfg.Client,
		closeClient: cfg.CloseClient,
		match:       cfg.Match,
		scanCount:   cfg.ScanCount,
	}
	if a.match == "" {
		a.match = "*"
	}
	if a.scanCount <= 0 {
		a.scanCount = defaultScanCount
	}
	return a, nil
}

// Factory returns a factory for redis adapters owning prefix. When cfg.Match is
// empty, SCAN is restricted to prefix*.
func Factory(prefix string, cfg Config) adapter.Factory {
	f := adapter.Factory{Kind: Kind, Prefix: prefix}
	if cfg.Match == "" {
		cfg.Match = f.KeyPrefix() + "*"
	}
	f.Open = func() (adapter.Adapter, error) { return New(cfg) }
	return f
}

func (a *Adapter) Read(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := a.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

// Write stores without a redis-side TTL; expiry is tracked in the record.
func (a *Adapter) Write(ctx context.Context, key string, value []byte) error {
	return a.rdb.Set(ctx, key, value, 0).Err()
}

func (a *Adapter) Remove(ctx context.Context, key string) error {
	return a.rdb.Del(ctx, key).Err()
}

// Keys iterates SCAN until the cursor wraps. On a cluster client only the node
// serving the scan is covered.
func (a *Adapter) Keys(ctx context.Context) ([]string, error) {
	var (
		out    []string
		cursor uint64
	)
	for {
		keys, next, err := a.rdb.Scan(ctx, cursor, a.match, a.scanCount).Result()
		if err != nil {
			return nil, err
		}
		out = append(out, keys...)
		if next == 0 {
			return out, nil
		}
		cursor = next
	}
}

// Close releases the underlying redis client only when this adapter owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (a *Adapter) Close(context.Context) error {
	if a.closeClient {
		if err := a.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
