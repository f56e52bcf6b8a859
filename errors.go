package vstore

import (
	"errors"
	"fmt"
)

var (
	ErrNamespaceRequired = errors.New("vstore: namespace is required")
	ErrClosed            = errors.New("vstore: store is closed")
)

// OpError reports an adapter failure. Err is the adapter's error, unchanged.
type OpError struct {
	Op  string // read, write, remove, keys
	Key string // storage key; "" for keys
	Err error
}

func (e *OpError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("vstore: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("vstore: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }
