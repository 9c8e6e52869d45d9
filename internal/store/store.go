// Package store persists the booking page's small amount of state: the last
// issued ticket number and the list of booked slot ids.
package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	// KeyLastTicketNumber holds the last issued ticket number as a decimal string.
	KeyLastTicketNumber = "lastTicketNumber"
	// KeyBookedTimeSlots holds a JSON array of booked slot ids.
	KeyBookedTimeSlots = "bookedTimeSlots"

	// SchemaVersion is bumped whenever the meaning of a stored value changes.
	SchemaVersion = 1
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Store is a synchronous key-value accessor with no expiry.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// Options selects and configures a backend.
type Options struct {
	Backend   string
	Path      string
	Redis     *redis.Client
	KeyPrefix string
}

// Open builds the backend named in opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return OpenFile(opts.Path)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("store: redis backend requires a client")
		}
		return OpenRedis(ctx, opts.Redis, opts.KeyPrefix)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", opts.Backend)
	}
}
