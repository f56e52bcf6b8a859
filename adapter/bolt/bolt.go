// Package bolt persists records in a bbolt database file.
package bolt

import (
	"context"
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/unkn0wn-root/vstore/adapter"
)

// Kind is the registry identity of the bolt adapter.
const Kind = "bolt"

var ErrPathRequired = errors.New("bolt adapter: path is required")

type Adapter struct {
	db     *bolt.DB
	bucket []byte
}

var _ adapter.Adapter = (*Adapter)(nil)

type Config struct {
	// Path is the database file. Created if missing.
	Path string
	// Bucket is the name of the bolt bucket to use. "" => "vstore".
	Bucket string
	// Timeout bounds waiting for the file lock. 0 => 1s.
	Timeout time.Duration
}

// Open initializes or opens the database at cfg.Path.
func Open(cfg Config) (*Adapter, error) {
	if cfg.Path == "" {
		return nil, ErrPathRequired
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}
	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: cfg.Timeout})
	if err != nil {
		return nil, err
	}
	bucket := []byte("vstore")
	if cfg.Bucket != "" {
		bucket = []byte(cfg.Bucket)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Adapter{db: db, bucket: bucket}, nil
}

// Factory returns a factory for bolt adapters owning prefix.
func Factory(prefix string, cfg Config) adapter.Factory {
	return adapter.Factory{
		Kind:   Kind,
		Prefix: prefix,
		Open:   func() (adapter.Adapter, error) { return Open(cfg) },
	}
}

func (a *Adapter) Read(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := a.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(a.bucket).Get([]byte(key))
		if v != nil {
			// bolt memory is only valid inside the transaction
			out = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

func (a *Adapter) Write(_ context.Context, key string, value []byte) error {
	return a.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(a.bucket).Put([]byte(key), value)
	})
}

func (a *Adapter) Remove(_ context.Context, key string) error {
	return a.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(a.bucket).Delete([]byte(key))
	})
}

// Keys returns keys in bolt's byte order.
func (a *Adapter) Keys(_ context.Context) ([]string, error) {
	var out []string
	err := a.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(a.bucket).ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the underlying database.
func (a *Adapter) Close(_ context.Context) error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}
