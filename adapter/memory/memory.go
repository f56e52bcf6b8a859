// Package memory is the default in-process adapter.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/unkn0wn-root/vstore/adapter"
)

// Kind is the registry identity of the memory adapter.
const Kind = "memory"

type Memory struct {
	mu sync.RWMutex
	m  map[string][]byte
}

var _ adapter.Adapter = (*Memory)(nil)

func New() *Memory { return &Memory{m: make(map[string][]byte)} }

// Factory returns a factory for memory adapters owning prefix ("" => adapter.DefaultPrefix).
func Factory(prefix string) adapter.Factory {
	return adapter.Factory{
		Kind:   Kind,
		Prefix: prefix,
		Open:   func() (adapter.Adapter, error) { return New(), nil },
	}
}

func (a *Memory) Read(_ context.Context, key string) ([]byte, bool, error) {
	a.mu.RLock()
	v, ok := a.m[key]
	a.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (a *Memory) Write(_ context.Context, key string, value []byte) error {
	cp := append([]byte(nil), value...)
	a.mu.Lock()
	a.m[key] = cp
	a.mu.Unlock()
	return nil
}

func (a *Memory) Remove(_ context.Context, key string) error {
	a.mu.Lock()
	delete(a.m, key)
	a.mu.Unlock()
	return nil
}

// Keys returns a sorted snapshot.
func (a *Memory) Keys(_ context.Context) ([]string, error) {
	a.mu.RLock()
	out := make([]string, 0, len(a.m))
	for k := range a.m {
		out = append(out, k)
	}
	a.mu.RUnlock()
	sort.Strings(out)
	return out, nil
}

// Len returns the number of keys held.
func (a *Memory) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.m)
}

func (a *Memory) Close(_ context.Context) error { return nil }
