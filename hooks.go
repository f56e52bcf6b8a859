package vstore

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking: they run while the adapter
// lock is held.
type Hooks interface {
	// Get found an expired entry and removed it.
	ExpiredOnRead(storageKey string)

	// A stored record or value could not be decoded. The record is left in place.
	DecodeFailed(storageKey string, err error)

	// The sweep removed an expired entry.
	SweepEvicted(storageKey string)

	// A sweep pass finished. scanned counts keys under prefix.
	SweepCompleted(prefix string, scanned, evicted int)

	// The adapter failed. op ∈ {"read", "write", "remove", "keys"}.
	AdapterError(op, storageKey string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) ExpiredOnRead(string)               {}
func (NopHooks) DecodeFailed(string, error)         {}
func (NopHooks) SweepEvicted(string)                {}
func (NopHooks) SweepCompleted(string, int, int)    {}
func (NopHooks) AdapterError(string, string, error) {}
