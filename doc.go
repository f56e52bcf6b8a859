// Package vstore implements a namespace-aware key/value cache with per-entry TTL
// over a pluggable synchronous storage adapter.
//
// Components:
//   - Adapter: string-keyed byte store (memory, BigCache, Ristretto, Redis, bbolt, SQLite).
//   - Codec[V]: (de)serializes V <-> []byte.
//   - Registry: one live adapter per adapter Kind, shared by every store that asks
//     for it, with a single background sweep.
//
// Keys:
//
//	<prefix><namespace>:<key>   e.g. vstore:user:42
//
// Records:
//
//	{"value":<json>,"ttl":<ms>,"expireAt":<epoch ms>}   JSON codecs
//	VSTR | ver | flags | ttl | expireAt | len | payload  other codecs
//
// An entry with expireAt 0 never expires. Expired entries are removed lazily by
// Get and eagerly by the sweep.
//
// Usage:
//
//	s, _ := vstore.New[User](vstore.Options[User]{Namespace: "user", TTL: time.Hour})
//	defer s.Close(ctx)
//	_, _ = s.Set(ctx, "42", u)
//	u, ok, err := s.Get(ctx, "42")
package vstore
