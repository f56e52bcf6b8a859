package vstore

import (
	"context"
	"time"

	"github.com/unkn0wn-root/vstore/adapter"
	c "github.com/unkn0wn-root/vstore/codec"
	"github.com/unkn0wn-root/vstore/internal/wire"
)

const (
	// NoExpiration as a TTL stores an entry that never expires.
	NoExpiration time.Duration = -1

	// DefaultRefreshTTL is used by Refresh when ttl is 0.
	DefaultRefreshTTL = 5 * time.Minute

	// DefaultSweepInterval is the period of the background expiry sweep.
	DefaultSweepInterval = time.Second
)

// Format selects the record layout on the medium.
type Format = wire.Format

const (
	FormatAuto   = wire.FormatAuto
	FormatJSON   = wire.FormatJSON
	FormatBinary = wire.FormatBinary
)

// Store is a namespaced key/value cache with per-entry TTL over a pluggable adapter.
// V is the caller's value type. Serialization is handled by a pluggable Codec[V].
type Store[V any] interface {
	// Namespace returns the default namespace.
	Namespace() string
	// Max returns the configured capacity bound. It is advisory and not enforced.
	Max() int

	// Get reads key from the default namespace. ok is false when the entry is
	// missing, expired, undecodable or holds no value.
	Get(ctx context.Context, key string) (v V, ok bool, err error)
	// GetWith resolves the namespace override and returns o.Default on a miss.
	GetWith(ctx context.Context, o GetOptions[V]) (V, error)

	// Set stores value under key in the default namespace with the default TTL
	// and returns value unchanged.
	Set(ctx context.Context, key string, value V) (V, error)
	// SetWith resolves namespace and TTL overrides and returns o.Value unchanged.
	SetWith(ctx context.Context, o SetOptions[V]) (V, error)

	// Clear removes every entry of namespace ("" => default namespace).
	Clear(ctx context.Context, namespace string) error
	// Refresh moves the deadline of an existing entry to now+ttl without touching
	// its value. ttl 0 => DefaultRefreshTTL; namespace "" => default namespace.
	// A missing or undecodable entry is left alone.
	Refresh(ctx context.Context, namespace, key string, ttl time.Duration) error

	// Sweep runs one expiry pass over the adapter now and returns how many
	// entries it removed. The same pass runs in the background every SweepInterval.
	Sweep(ctx context.Context) (int, error)

	// Close releases this store's hold on the adapter. The last store to close
	// stops the sweep and closes the adapter.
	Close(ctx context.Context) error
}

// GetOptions is the structured form of Get.
type GetOptions[V any] struct {
	Namespace string // "" => Options.Namespace
	Key       string
	Default   V // returned on a miss
}

// SetOptions is the structured form of Set.
type SetOptions[V any] struct {
	Namespace string // "" => Options.Namespace
	Key       string
	Value     V
	TTL       time.Duration // 0 => Options.TTL; NoExpiration => never expires
}

// Options configure a Store. Only Namespace is required; others have sensible defaults.
//
// Adapter, SweepInterval, SweepOnStart, Clock, Logger and Hooks also configure the
// shared backend of the adapter Kind. They only take effect for the first store
// that opens that Kind in a Registry.
type Options[V any] struct {
	// Required
	Namespace string // default keyspace segment, e.g. "user", "session"

	TTL           time.Duration    // default lifetime; 0 or NoExpiration => never expires
	Max           int              // advisory capacity bound; not enforced
	Adapter       adapter.Factory  // zero => in-process memory adapter
	Codec         c.Codec[V]       // nil => codec.JSON[V]
	Format        Format           // FormatAuto => JSON for JSON codecs, binary otherwise
	SweepInterval time.Duration    // 0 => DefaultSweepInterval
	SweepOnStart  bool             // New runs one sweep before returning; other kinds are not blocked
	Clock         func() time.Time // nil => time.Now
	Logger        Logger           // if nil, NopLogger is used
	Hooks         Hooks            // if nil, NopHooks is used
	Registry      *Registry        // nil => DefaultRegistry
}

func New[V any](opts Options[V]) (Store[V], error) {
	return newStore[V](opts)
}
