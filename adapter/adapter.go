// Package adapter defines the physical storage contract used by vstore.
//
// Implementations MUST be byte-for-byte transparent: Read must return exactly the
// same []byte that was previously passed to Write for a key. The keyspace
// "<prefix><namespace>:" is owned by the store bound to that prefix. Foreign writes
// under it are treated as undecodable records and skipped by the sweep.
package adapter

import (
	"context"
	"errors"
)

// ErrRejected is returned by adapters that may refuse a write under pressure.
var ErrRejected = errors.New("adapter: write rejected")

// Adapter is a synchronous string-keyed byte store.
// Must be safe for concurrent use. Every call completes before returning.
type Adapter interface {
	// Read returns (value, true, nil) on hit; (nil, false, nil) on miss.
	Read(ctx context.Context, key string) ([]byte, bool, error)

	// Write stores value under key, replacing any previous value.
	Write(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys returns a snapshot of every key in the medium. The caller may
	// remove keys while iterating the returned slice.
	Keys(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close(ctx context.Context) error
}

// DefaultPrefix marks keys owned by vstore in a shared medium.
const DefaultPrefix = "vstore:"

// Factory selects and constructs an Adapter.
//
// Kind identifies the adapter type: at most one live adapter exists per Kind in a
// registry, no matter how many stores ask for one.
type Factory struct {
	Kind   string
	Prefix string // "" => DefaultPrefix
	Open   func() (Adapter, error)
}

// Validate reports whether f can be opened.
func (f Factory) Validate() error {
	if f.Kind == "" {
		return errors.New("adapter: factory kind is required")
	}
	if f.Open == nil {
		return errors.New("adapter: factory open func is required")
	}
	return nil
}

// KeyPrefix returns the keyspace prefix owned by adapters of this factory.
func (f Factory) KeyPrefix() string {
	if f.Prefix == "" {
		return DefaultPrefix
	}
	return f.Prefix
}
