// Package actor provides the type-erased addressing layer used between the
// route registry, connection supervisors, and application handlers.
//
//   - A Handler processes Envelopes one at a time on its own goroutine.
//   - An Address enqueues Envelopes to one Handler without knowing its type.
//   - Spawn wraps a Handler in a mailbox goroutine and returns its Ref.
//
// Mailboxes are unbounded and strictly ordered: envelopes from one sender are
// handled in the order they were sent. No ordering holds across senders.
package actor
