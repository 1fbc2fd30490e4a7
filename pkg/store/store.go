// Package store provides persistence backends for filament signals.
//
// Every backend satisfies filament.Store, the two-method interface the
// engine calls on restore and after each accepted write. The backends
// here add Delete and Close on top for operational tooling; the engine
// itself never deletes.
//
// Values arrive already encoded by the owning signal's codec, so a store
// only ever moves opaque strings.
package store

import (
	"context"
	"errors"

	"github.com/filament-go/filament/pkg/filament"
)

// Store is the full surface shared by the backends in this package.
type Store interface {
	filament.Store

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources. Operations after Close fail with
	// ErrClosed.
	Close() error
}

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")
