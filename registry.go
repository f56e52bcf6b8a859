package vstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/unkn0wn-root/vstore/adapter"
)

// Registry maps an adapter Kind to its single live backend. The first store to
// ask for a Kind opens the adapter and starts its sweep; later stores share both.
type Registry struct {
	mu       sync.Mutex
	backends map[string]*backend
}

// DefaultRegistry is the process-wide registry used when Options.Registry is nil.
var DefaultRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]*backend)}
}

// Len returns the number of open backends.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.backends)
}

// Adapter returns the live adapter of kind, if any.
func (r *Registry) Adapter(kind string) (adapter.Adapter, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.backends[kind]
	if !ok {
		return nil, false
	}
	return b.ad, true
}

type backendConfig struct {
	interval     time.Duration
	sweepOnStart bool
	now          func() time.Time
	log          Logger
	hooks        Hooks
}

// backend is one open adapter with its lock and sweep.
type backend struct {
	kind   string
	prefix string
	ad     adapter.Adapter

	// mu serializes every store operation and sweep pass on ad.
	mu     sync.Mutex
	closed bool // guarded by mu; set once ad is closed
	now    func() time.Time
	log    Logger
	hooks  Hooks

	refs    int // guarded by Registry.mu
	sweeper *sweeper
}

func (r *Registry) acquire(f adapter.Factory, cfg backendConfig) (*backend, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	if b, ok := r.backends[f.Kind]; ok {
		b.refs++
		r.mu.Unlock()
		return b, nil
	}

	ad, err := f.Open()
	if err != nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("vstore: open %s adapter: %w", f.Kind, err)
	}
	b := &backend{
		kind:   f.Kind,
		prefix: f.KeyPrefix(),
		ad:     ad,
		now:    cfg.now,
		log:    cfg.log,
		hooks:  cfg.hooks,
		refs:   1,
	}
	b.sweeper = newSweeper(b, cfg.interval)
	r.backends[f.Kind] = b
	r.mu.Unlock()
	b.log.Debug("adapter opened", Fields{"adapter": b.kind, "prefix": b.prefix, "sweep": cfg.interval})

	// outside r.mu: a long first pass must not stall other kinds
	if cfg.sweepOnStart {
		if _, err := b.sweep(context.Background()); err != nil {
			b.log.Warn("initial sweep failed", Fields{"adapter": b.kind, "err": err})
		}
	}
	return b, nil
}

// release drops one reference to b. The last one stops the sweep and closes the
// adapter while r.mu is held, so a store reopening the same Kind waits for the
// old adapter to let go of its medium (bolt file locks, for one).
func (r *Registry) release(ctx context.Context, b *backend) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.refs == 0 {
		return nil
	}
	b.refs--
	if b.refs > 0 {
		return nil
	}
	if r.backends[b.kind] == b {
		delete(r.backends, b.kind)
	}

	// the sweep takes b.mu, so stop it first
	b.sweeper.stop()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.log.Debug("adapter closed", Fields{"adapter": b.kind})
	return b.ad.Close(ctx)
}

// lock takes b.mu. Once the adapter is closed it fails with ErrClosed instead,
// leaving b.mu unlocked.
func (b *backend) lock() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	return nil
}
