package vstore

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/vstore/adapter/memory"
	c "github.com/unkn0wn-root/vstore/codec"
	"github.com/unkn0wn-root/vstore/internal/keys"
	"github.com/unkn0wn-root/vstore/internal/wire"
)

type store[V any] struct {
	ns     string
	ttl    time.Duration
	max    int
	codec  c.Codec[V]
	format wire.Format
	now    func() time.Time
	log    Logger
	hooks  Hooks

	reg    *Registry
	b      *backend
	closed atomic.Bool
}

func newStore[V any](opts Options[V]) (*store[V], error) {
	if opts.Namespace == "" {
		return nil, ErrNamespaceRequired
	}

	s := &store[V]{
		ns:  opts.Namespace,
		ttl: opts.TTL,
		max: opts.Max,
	}

	// defaults
	s.codec = opts.Codec
	if s.codec == nil {
		s.codec = c.JSON[V]{}
	}
	s.format = opts.Format
	if s.format == wire.FormatAuto {
		if c.IsJSON(s.codec) {
			s.format = wire.FormatJSON
		} else {
			s.format = wire.FormatBinary
		}
	}
	s.now = opts.Clock
	if s.now == nil {
		s.now = time.Now
	}
	s.log = coalesce[Logger](opts.Logger, NopLogger{})
	s.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	s.reg = opts.Registry
	if s.reg == nil {
		s.reg = DefaultRegistry
	}

	f := opts.Adapter
	if f.Kind == "" && f.Open == nil {
		f = memory.Factory(f.Prefix)
	}

	interval := opts.SweepInterval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	b, err := s.reg.acquire(f, backendConfig{
		interval:     interval,
		sweepOnStart: opts.SweepOnStart,
		now:          s.now,
		log:          s.log,
		hooks:        s.hooks,
	})
	if err != nil {
		return nil, err
	}
	s.b = b

	if want := f.KeyPrefix(); want != b.prefix {
		s.log.Warn("adapter already open with another prefix; using it", Fields{
			"adapter": b.kind, "prefix": b.prefix, "requested": want,
		})
	}
	if s.max > 0 {
		s.log.Debug("max is advisory and not enforced", Fields{"namespace": s.ns, "max": s.max})
	}
	return s, nil
}

func (s *store[V]) Namespace() string { return s.ns }
func (s *store[V]) Max() int          { return s.max }

func (s *store[V]) Close(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.reg.release(ctx, s.b)
}

func (s *store[V]) Get(ctx context.Context, key string) (V, bool, error) {
	return s.get(ctx, s.namespace(""), key)
}

func (s *store[V]) GetWith(ctx context.Context, o GetOptions[V]) (V, error) {
	v, ok, err := s.get(ctx, s.namespace(o.Namespace), o.Key)
	if err != nil || !ok {
		return o.Default, err
	}
	return v, nil
}

func (s *store[V]) get(ctx context.Context, ns, key string) (V, bool, error) {
	var zero V
	if s.closed.Load() {
		return zero, false, ErrClosed
	}
	k := keys.Build(s.b.prefix, ns, key)

	if err := s.b.lock(); err != nil {
		return zero, false, err
	}
	defer s.b.mu.Unlock()

	raw, ok, err := s.b.ad.Read(ctx, k)
	if err != nil {
		return zero, false, s.adapterErr("read", k, err)
	}
	if !ok {
		return zero, false, nil
	}
	rec, err := wire.Decode(raw)
	if err != nil {
		s.decodeFailed(k, err)
		return zero, false, nil
	}
	if rec.Expired(s.nowMillis()) {
		// lazy expiry
		if err := s.b.ad.Remove(ctx, k); err != nil {
			return zero, false, s.adapterErr("remove", k, err)
		}
		s.hooks.ExpiredOnRead(k)
		return zero, false, nil
	}
	if !rec.HasValue() {
		return zero, false, nil
	}
	v, err := s.codec.Decode(rec.Payload)
	if err != nil {
		s.decodeFailed(k, err)
		return zero, false, nil
	}
	if isNil(v) {
		return zero, false, nil
	}
	return v, true, nil
}

func (s *store[V]) Set(ctx context.Context, key string, value V) (V, error) {
	return s.SetWith(ctx, SetOptions[V]{Key: key, Value: value})
}

// SetWith replaces the entry; it never merges with what was stored before.
func (s *store[V]) SetWith(ctx context.Context, o SetOptions[V]) (V, error) {
	if s.closed.Load() {
		return o.Value, ErrClosed
	}
	k := keys.Build(s.b.prefix, s.namespace(o.Namespace), o.Key)

	var payload []byte
	if !isNil(o.Value) {
		p, err := s.codec.Encode(o.Value)
		if err != nil {
			return o.Value, fmt.Errorf("vstore: encode %q: %w", k, err)
		}
		if p == nil {
			p = []byte{}
		}
		payload = p
	}
	rec := wire.New(payload, s.resolveTTL(o.TTL), s.nowMillis())
	raw, err := wire.Encode(rec, s.format)
	if err != nil {
		return o.Value, fmt.Errorf("vstore: encode %q: %w", k, err)
	}

	if err := s.b.lock(); err != nil {
		return o.Value, err
	}
	err = s.b.ad.Write(ctx, k, raw)
	s.b.mu.Unlock()
	if err != nil {
		return o.Value, s.adapterErr("write", k, err)
	}
	return o.Value, nil
}

func (s *store[V]) Clear(ctx context.Context, namespace string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	ns := s.namespace(namespace)

	if err := s.b.lock(); err != nil {
		return err
	}
	defer s.b.mu.Unlock()

	ks, err := s.b.ad.Keys(ctx)
	if err != nil {
		return s.adapterErr("keys", "", err)
	}
	removed := 0
	for _, k := range ks {
		if !keys.Under(k, s.b.prefix, ns) {
			continue
		}
		if err := s.b.ad.Remove(ctx, k); err != nil {
			return s.adapterErr("remove", k, err)
		}
		removed++
	}
	s.log.Debug("namespace cleared", Fields{"namespace": ns, "removed": removed})
	return nil
}

func (s *store[V]) Refresh(ctx context.Context, namespace, key string, ttl time.Duration) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if ttl == 0 {
		ttl = DefaultRefreshTTL
	}
	k := keys.Build(s.b.prefix, s.namespace(namespace), key)

	if err := s.b.lock(); err != nil {
		return err
	}
	defer s.b.mu.Unlock()

	raw, ok, err := s.b.ad.Read(ctx, k)
	if err != nil {
		return s.adapterErr("read", k, err)
	}
	if !ok {
		return nil
	}
	rec, err := wire.Decode(raw)
	if err != nil {
		s.decodeFailed(k, err)
		return nil
	}
	rec = rec.Refreshed(millis(ttl), s.nowMillis())

	// keep the layout the record was written in
	out, err := wire.Encode(rec, wire.Detect(raw))
	if err != nil {
		return fmt.Errorf("vstore: encode %q: %w", k, err)
	}
	if err := s.b.ad.Write(ctx, k, out); err != nil {
		return s.adapterErr("write", k, err)
	}
	return nil
}

func (s *store[V]) Sweep(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	return s.b.sweep(ctx)
}

func (s *store[V]) namespace(override string) string {
	if override != "" {
		return override
	}
	return s.ns
}

// resolveTTL returns the lifetime in milliseconds; 0 means never expires.
func (s *store[V]) resolveTTL(ttl time.Duration) int64 {
	if ttl == 0 {
		ttl = s.ttl
	}
	return millis(ttl)
}

func (s *store[V]) nowMillis() int64 { return s.now().UnixMilli() }

func (s *store[V]) decodeFailed(storageKey string, err error) {
	s.hooks.DecodeFailed(storageKey, err)
	s.log.Debug("undecodable record treated as missing", Fields{"key": storageKey, "err": err})
}

func (s *store[V]) adapterErr(op, storageKey string, err error) error {
	s.hooks.AdapterError(op, storageKey, err)
	s.log.Error("adapter "+op+" failed", Fields{"key": storageKey, "err": err})
	return &OpError{Op: op, Key: storageKey, Err: err}
}
