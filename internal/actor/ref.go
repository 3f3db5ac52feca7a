package actor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Ref is the running form of a spawned Handler. It implements Address.
type Ref struct {
	name    string
	handler Handler
	logger  *slog.Logger
	box     *mailbox[Envelope]

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	processed atomic.Int64
	panics    atomic.Int64
}

// Spawn starts h on its own goroutine and returns its Ref.
//
// The actor runs until Stop is called or ctx is canceled. Envelopes already
// queued at that point are still delivered before OnStop.
func Spawn(ctx context.Context, h Handler, opts Options) *Ref {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.InitialCapacity < 1 {
		opts.InitialCapacity = DefaultOptions().InitialCapacity
	}

	r := &Ref{
		name:    opts.Name,
		handler: h,
		logger:  opts.Logger,
		box:     newMailbox[Envelope](opts.InitialCapacity),
		done:    make(chan struct{}),
	}
	r.ctx, r.cancel = context.WithCancel(ctx)

	go r.run()
	go func() {
		select {
		case <-r.ctx.Done():
			r.box.close()
		case <-r.done:
		}
	}()

	return r
}

// Send enqueues env. Returns false if env carries no message or the actor stopped.
func (r *Ref) Send(env Envelope) bool {
	if env.Message == nil {
		return false
	}
	return r.box.push(env)
}

// Tell is shorthand for Send(Envelope{Message: message, Sender: sender}).
func (r *Ref) Tell(message any, sender Address) bool {
	return r.Send(Envelope{Message: message, Sender: sender})
}

// Clone returns r itself; every holder shares one destination.
func (r *Ref) Clone() Address {
	return r
}

// Name returns the name given at spawn time.
func (r *Ref) Name() string {
	return r.name
}

// Stop requests shutdown. Safe to call more than once.
func (r *Ref) Stop() {
	r.once.Do(func() {
		r.box.close()
		r.cancel()
	})
}

// Done is closed once the handler goroutine has exited.
func (r *Ref) Done() <-chan struct{} {
	return r.done
}

// Stats returns current statistics.
func (r *Ref) Stats() Stats {
	queued, capacity, resizes := r.box.stats()
	return Stats{
		Name:      r.name,
		Queued:    queued,
		Capacity:  capacity,
		Processed: r.processed.Load(),
		Panics:    r.panics.Load(),
		Resizes:   resizes,
	}
}

func (r *Ref) run() {
	defer close(r.done)
	defer r.cancel()

	if s, ok := r.handler.(Starter); ok {
		r.safely("start", func() { s.OnStart(r.ctx, r) })
	}

	for {
		env, ok := r.box.pop()
		if !ok {
			break
		}
		r.safely("handle", func() { r.handler.Handle(r.ctx, env) })
		r.processed.Add(1)
	}

	if s, ok := r.handler.(Stopper); ok {
		r.safely("stop", s.OnStop)
	}
}

// safely runs fn, turning a handler panic into a log line.
func (r *Ref) safely(stage string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.panics.Add(1)
			r.logger.Error("actor handler panicked",
				"actor", r.name,
				"stage", stage,
				"panic", fmt.Sprint(p),
			)
		}
	}()
	fn()
}
