package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/vstore/adapter"
)

// Kind is the registry identity of the bigcache adapter.
const Kind = "bigcache"

type Adapter struct {
	c *bc.BigCache
}

var _ adapter.Adapter = (*Adapter)(nil)

type Config struct {
	// LifeWindow is bigcache's global eviction window. Entry TTLs are enforced by
	// vstore, so keep this longer than the longest TTL in use. 0 => 24h.
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Adapter, error) {
	if cfg.LifeWindow <= 0 {
		cfg.LifeWindow = 24 * time.Hour
	}
	conf := bc.DefaultConfig(cfg.LifeWindow)
	conf.Verbose = false
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Adapter{c: c}, nil
}

// Factory returns a factory for bigcache adapters owning prefix.
func Factory(prefix string, cfg Config) adapter.Factory {
	return adapter.Factory{
		Kind:   Kind,
		Prefix: prefix,
		Open:   func() (adapter.Adapter, error) { return New(cfg) },
	}
}

func (a *Adapter) Read(_ context.Context, key string) ([]byte, bool, error) {
	b, err := a.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (a *Adapter) Write(_ context.Context, key string, value []byte) error {
	return a.c.Set(key, value)
}

func (a *Adapter) Remove(_ context.Context, key string) error {
	err := a.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil
	}
	return err
}

// Keys walks the shards with bigcache's iterator. Entries evicted by bigcache
// mid-walk are skipped.
func (a *Adapter) Keys(_ context.Context) ([]string, error) {
	out := make([]string, 0, a.c.Len())
	it := a.c.Iterator()
	for it.SetNext() {
		e, err := it.Value()
		if err != nil {
			if errors.Is(err, bc.ErrInvalidIteratorState) || errors.Is(err, bc.ErrCannotRetrieveEntry) {
				continue
			}
			return nil, err
		}
		out = append(out, e.Key())
	}
	return out, nil
}

func (a *Adapter) Close(_ context.Context) error {
	return a.c.Close()
}
