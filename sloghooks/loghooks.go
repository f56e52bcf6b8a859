// Package sloghooks reports store events through log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/vstore"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	ExpiredEvery uint64
	EvictedEvery uint64
	// Sweep passes that evicted nothing are skipped unless set.
	LogIdleSweeps bool
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	expiredCtr atomic.Uint64
	evictedCtr atomic.Uint64
}

var _ vstore.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n <= 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) ExpiredOnRead(storageKey string) {
	if h.l == nil || !sample(h.opts.ExpiredEvery, &h.expiredCtr) {
		return
	}
	h.l.Debug("vstore.expired_on_read", "key", h.redact(storageKey))
}

func (h *Hooks) DecodeFailed(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("vstore.decode_failed",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) SweepEvicted(storageKey string) {
	if h.l == nil || !sample(h.opts.EvictedEvery, &h.evictedCtr) {
		return
	}
	h.l.Debug("vstore.sweep_evicted", "key", h.redact(storageKey))
}

func (h *Hooks) SweepCompleted(prefix string, scanned, evicted int) {
	if h.l == nil || (evicted == 0 && !h.opts.LogIdleSweeps) {
		return
	}
	h.l.Info("vstore.sweep_completed",
		"prefix", prefix,
		"scanned", scanned,
		"evicted", evicted)
}

func (h *Hooks) AdapterError(op, storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("vstore.adapter_error",
		"op", op,
		"key", h.redact(storageKey),
		"err", err)
}
