package ristretto

import (
	"context"
	"errors"
	"sort"
	"sync"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/vstore/adapter"
)

// Kind is the registry identity of the ristretto adapter.
const Kind = "ristretto"

// Adapter stores records in ristretto. Ristretto cannot enumerate its keys, so
// the adapter keeps a key index next to it; keys ristretto evicted on its own are
// pruned from the index when Keys or Read notices them.
type Adapter struct {
	c *rc.Cache

	mu    sync.Mutex
	index map[string]struct{}
}

var _ adapter.Adapter = (*Adapter)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Adapter, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Adapter{c: c, index: make(map[string]struct{})}, nil
}

// Factory returns a factory for ristretto adapters owning prefix.
func Factory(prefix string, cfg Config) adapter.Factory {
	return adapter.Factory{
		Kind:   Kind,
		Prefix: prefix,
		Open:   func() (adapter.Adapter, error) { return New(cfg) },
	}
}

func (a *Adapter) Read(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := a.c.Get(key)
	if !ok {
		a.unindex(key)
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		a.c.Del(key)
		a.unindex(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Write uses the value length as cost and waits for the buffered write to be
// applied so the next Read observes it.
func (a *Adapter) Write(_ context.Context, key string, value []byte) error {
	cp := append([]byte(nil), value...)
	if !a.c.Set(key, cp, int64(len(cp))+1) {
		return adapter.ErrRejected
	}
	a.c.Wait()
	a.mu.Lock()
	a.index[key] = struct{}{}
	a.mu.Unlock()
	return nil
}

func (a *Adapter) Remove(_ context.Context, key string) error {
	a.c.Del(key)
	a.c.Wait()
	a.unindex(key)
	return nil
}

func (a *Adapter) Keys(_ context.Context) ([]string, error) {
	a.mu.Lock()
	out := make([]string, 0, len(a.index))
	for k := range a.index {
		if _, ok := a.c.Get(k); !ok {
			delete(a.index, k)
			continue
		}
		out = append(out, k)
	}
	a.mu.Unlock()
	sort.Strings(out)
	return out, nil
}

func (a *Adapter) Close(_ context.Context) error {
	a.c.Wait()
	a.c.Close()
	return nil
}

// Metrics exposes ristretto metrics if enabled (not part of adapter.Adapter).
func (a *Adapter) Metrics() *rc.Metrics { return a.c.Metrics }

func (a *Adapter) unindex(key string) {
	a.mu.Lock()
	delete(a.index, key)
	a.mu.Unlock()
}
