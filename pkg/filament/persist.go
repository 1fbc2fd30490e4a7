package filament

import "context"

// Store is the persistence collaborator consumed by persisted signals.
// Backends live in pkg/store; anything with these two methods can serve.
//
// Load runs once at construction; Save runs after every accepted write,
// inside the write pipeline. Save failures are logged and reported, never
// surfaced to the writer.
type Store interface {
	Load(ctx context.Context, key string) (value string, ok bool, err error)
	Save(ctx context.Context, key, value string) error
}
