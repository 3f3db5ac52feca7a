package registry

import (
	"errors"
	"time"
)

// Errors
var (
	ErrRouteNotFound = errors.New("route not found")
	ErrUnavailable   = errors.New("route registry unavailable")
)

// Config configures the registry.
type Config struct {
	QueueSize      int           // Pending resolution requests before callers block
	ResolveTimeout time.Duration // Max wait for a reply (0 = caller's context only)
	MailboxSize    int           // Initial mailbox capacity of spawned handlers
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		QueueSize:      64,
		ResolveTimeout: 5 * time.Second,
		MailboxSize:    64,
	}
}

// Stats contains runtime statistics.
type Stats struct {
	Routes   int   // Cached routes
	Hits     int64 // Resolutions served from cache
	Misses   int64 // Resolutions that consulted the table
	NotFound int64 // Misses no matcher accepted
	Spawned  int64 // Handlers created
	Panics   int64 // Resolutions failed by a panicking matcher or factory
}
