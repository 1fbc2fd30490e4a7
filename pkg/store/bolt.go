package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// boltBucket is the single bucket holding all signal values.
var boltBucket = []byte("filament")

// Bolt persists keys in a bbolt database file. Suitable for durable
// single-process state without an external service.
type Bolt struct {
	db *bolt.DB

	mu     sync.Mutex
	closed bool
}

// NewBolt opens or creates the database at path. The open blocks up to a
// second waiting for the file lock held by another process.
func NewBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init bucket: %w", err)
	}
	return &Bolt{db: db}, nil
}

// Load returns the value under key.
func (b *Bolt) Load(_ context.Context, key string) (string, bool, error) {
	if b.isClosed() {
		return "", false, ErrClosed
	}
	var (
		value string
		ok    bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(boltBucket).Get([]byte(key)); v != nil {
			value = string(v)
			ok = true
		}
		return nil
	})
	return value, ok, err
}

// Save stores value under key.
func (b *Bolt) Save(_ context.Context, key, value string) error {
	if b.isClosed() {
		return ErrClosed
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), []byte(value))
	})
}

// Delete removes key.
func (b *Bolt) Delete(_ context.Context, key string) error {
	if b.isClosed() {
		return ErrClosed
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete([]byte(key))
	})
}

// Close closes the underlying database.
func (b *Bolt) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}

func (b *Bolt) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

var _ Store = (*Bolt)(nil)
