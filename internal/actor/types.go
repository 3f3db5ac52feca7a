package actor

import (
	"context"
	"log/slog"
)

// Envelope is the unit of delivery. The concrete Message type is agreed on
// between sender and handler; Sender is optional and carries the reply path.
type Envelope struct {
	Message any
	Sender  Address
}

// Address is a shareable capability to deliver envelopes to one handler.
type Address interface {
	// Send enqueues env for asynchronous delivery.
	// Returns false if the message is nil or the target has stopped.
	Send(env Envelope) bool

	// Clone returns an Address for the same destination.
	// Clones compare equal with == to the original.
	Clone() Address
}

// Handler processes envelopes delivered to its mailbox.
type Handler interface {
	Handle(ctx context.Context, env Envelope)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, env Envelope)

// Handle calls f(ctx, env).
func (f HandlerFunc) Handle(ctx context.Context, env Envelope) {
	f(ctx, env)
}

// Starter is implemented by handlers that want their own address on startup.
// OnStart runs on the handler goroutine before the first envelope.
type Starter interface {
	OnStart(ctx context.Context, self Address)
}

// Stopper is implemented by handlers that need to release resources.
// OnStop runs on the handler goroutine after the mailbox is drained.
type Stopper interface {
	OnStop()
}

// Options configures a spawned actor.
type Options struct {
	Name            string       // Used in logs and stats
	InitialCapacity int          // Initial mailbox capacity (grows as needed)
	Logger          *slog.Logger // Default: slog.Default()
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		InitialCapacity: 64,
	}
}

// Stats contains runtime statistics for one actor.
type Stats struct {
	Name      string
	Queued    int
	Capacity  int
	Processed int64
	Panics    int64
	Resizes   int
}
