package vstore

import (
	"context"
	"sync"
	"time"

	"github.com/unkn0wn-root/vstore/internal/keys"
	"github.com/unkn0wn-root/vstore/internal/wire"
)

// sweeper runs backend.sweep on a ticker until stopped.
type sweeper struct {
	b      *backend
	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

func newSweeper(b *backend, interval time.Duration) *sweeper {
	s := &sweeper{
		b:      b,
		ticker: time.NewTicker(interval),
		stopCh: make(chan struct{}),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.ticker.C:
				s.tick()
			case <-s.stopCh:
				return
			}
		}
	}()
	return s
}

func (s *sweeper) tick() {
	if _, err := s.b.sweep(context.Background()); err != nil {
		s.b.log.Warn("sweep failed", Fields{"adapter": s.b.kind, "err": err})
	}
}

func (s *sweeper) stop() {
	s.once.Do(func() {
		s.ticker.Stop() // stop ticker before waiting
		close(s.stopCh)
		s.wg.Wait()
	})
}

// sweep removes every expired record under the backend prefix. Records that do
// not decode are skipped, not removed. A failure on one key does not stop the
// pass; the first one is returned.
func (b *backend) sweep(ctx context.Context) (int, error) {
	if err := b.lock(); err != nil {
		return 0, err
	}
	defer b.mu.Unlock()

	ks, err := b.ad.Keys(ctx)
	if err != nil {
		b.hooks.AdapterError("keys", "", err)
		return 0, &OpError{Op: "keys", Err: err}
	}

	now := b.now().UnixMilli()
	var (
		scanned, evicted int
		firstErr         error
	)
	fail := func(op, k string, err error) {
		b.hooks.AdapterError(op, k, err)
		if firstErr == nil {
			firstErr = &OpError{Op: op, Key: k, Err: err}
		}
	}

	for _, k := range ks {
		if !keys.Owned(k, b.prefix) {
			continue
		}
		scanned++
		raw, ok, err := b.ad.Read(ctx, k)
		if err != nil {
			fail("read", k, err)
			continue
		}
		if !ok {
			continue // removed since the snapshot
		}
		rec, err := wire.Decode(raw)
		if err != nil {
			b.hooks.DecodeFailed(k, err)
			continue
		}
		if !rec.Expired(now) {
			continue
		}
		if err := b.ad.Remove(ctx, k); err != nil {
			fail("remove", k, err)
			continue
		}
		evicted++
		b.hooks.SweepEvicted(k)
	}

	b.hooks.SweepCompleted(b.prefix, scanned, evicted)
	if evicted > 0 {
		b.log.Debug("sweep evicted expired entries", Fields{"adapter": b.kind, "scanned": scanned, "evicted": evicted})
	}
	return evicted, firstErr
}
