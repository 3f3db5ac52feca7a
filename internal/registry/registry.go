package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rickgao/terris/internal/actor"
	"github.com/rickgao/terris/internal/route"
)

// Registry resolves route paths to shared handler addresses.
type Registry interface {
	// Start launches the serving goroutine.
	Start(ctx context.Context) error

	// Stop shuts down the serving goroutine and every handler it created.
	Stop(ctx context.Context) error

	// Resolve returns the handler address for path, creating the handler on
	// first use. Returns ErrRouteNotFound or ErrUnavailable.
	Resolve(ctx context.Context, path string) (actor.Address, error)

	// Routes lists the paths that currently have a handler.
	Routes(ctx context.Context) ([]string, error)

	// Stats returns current statistics.
	Stats() Stats
}

type requestKind int

const (
	kindResolve requestKind = iota
	kindList
)

type request struct {
	kind  requestKind
	path  string
	reply chan response
}

type response struct {
	addr   actor.Address
	routes []string
	err    error
}

// registry implements the Registry interface.
type registry struct {
	cfg    Config
	table  route.Table
	logger *slog.Logger

	requests chan request

	// Lifecycle
	mu      sync.Mutex
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	// Owned by the serve goroutine.
	handlers map[string]*actor.Ref

	routeCount atomic.Int64
	hits       atomic.Int64
	misses     atomic.Int64
	notFound   atomic.Int64
	spawned    atomic.Int64
	panics     atomic.Int64
}

// New creates a registry over table. The table is cloned; later changes to
// the caller's copy have no effect.
func New(table route.Table, cfg Config, logger *slog.Logger) Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}

	return &registry{
		cfg:      cfg,
		table:    table.Clone(),
		logger:   logger,
		requests: make(chan request, cfg.QueueSize),
		done:     make(chan struct{}),
		handlers: make(map[string]*actor.Ref),
	}
}

// Start launches the serving goroutine.
func (r *registry) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return errors.New("registry already started")
	}
	r.started = true
	r.ctx, r.cancel = context.WithCancel(ctx)

	go r.serve()

	r.logger.Info("route registry started",
		"matchers", r.table.Len(),
		"routes", r.table.Names(),
	)
	return nil
}

// Stop shuts down the serving goroutine, then every handler it spawned.
func (r *registry) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return nil
	}
	r.cancel()
	r.mu.Unlock()

	select {
	case <-r.done:
	case <-ctx.Done():
		r.logger.Warn("route registry stop timed out")
		return ctx.Err()
	}

	// The serve goroutine has exited; handlers is no longer shared.
	for path, ref := range r.handlers {
		ref.Stop()
		select {
		case <-ref.Done():
		case <-ctx.Done():
			r.logger.Warn("handler stop timed out", "route", path)
			return ctx.Err()
		}
	}

	r.logger.Info("route registry stopped", "routes", len(r.handlers))
	return nil
}

// Resolve returns the handler address for path.
func (r *registry) Resolve(ctx context.Context, path string) (actor.Address, error) {
	resp, err := r.call(ctx, request{kind: kindResolve, path: path})
	if err != nil {
		return nil, err
	}
	return resp.addr, resp.err
}

// Routes lists cached route paths in sorted order.
func (r *registry) Routes(ctx context.Context) ([]string, error) {
	resp, err := r.call(ctx, request{kind: kindList})
	if err != nil {
		return nil, err
	}
	return resp.routes, nil
}

// Stats returns current statistics.
func (r *registry) Stats() Stats {
	return Stats{
		Routes:   int(r.routeCount.Load()),
		Hits:     r.hits.Load(),
		Misses:   r.misses.Load(),
		NotFound: r.notFound.Load(),
		Spawned:  r.spawned.Load(),
		Panics:   r.panics.Load(),
	}
}

// call hands req to the serve goroutine and waits for its reply.
func (r *registry) call(ctx context.Context, req request) (response, error) {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if !started {
		return response{}, fmt.Errorf("%w: not started", ErrUnavailable)
	}

	if r.cfg.ResolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.ResolveTimeout)
		defer cancel()
	}

	req.reply = make(chan response, 1)

	select {
	case r.requests <- req:
	case <-r.done:
		return response{}, fmt.Errorf("%w: stopped", ErrUnavailable)
	case <-ctx.Done():
		return response{}, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	}

	select {
	case resp := <-req.reply:
		return resp, nil
	case <-r.done:
		return response{}, fmt.Errorf("%w: stopped", ErrUnavailable)
	case <-ctx.Done():
		return response{}, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	}
}

// serve is the only goroutine that touches r.handlers while running.
func (r *registry) serve() {
	defer close(r.done)

	for {
		select {
		case <-r.ctx.Done():
			return
		case req := <-r.requests:
			switch req.kind {
			case kindList:
				req.reply <- response{routes: r.listRoutes()}
			default:
				req.reply <- r.resolve(req.path)
			}
		}
	}
}

func (r *registry) resolve(path string) response {
	if ref, ok := r.handlers[path]; ok {
		r.hits.Add(1)
		return response{addr: ref.Clone()}
	}
	r.misses.Add(1)

	h, matcher, err := r.match(path)
	if err != nil {
		if errors.Is(err, ErrRouteNotFound) {
			r.notFound.Add(1)
			r.logger.Debug("no matcher for route", "route", path)
		}
		return response{err: err}
	}

	ref := actor.Spawn(r.ctx, h, actor.Options{
		Name:            path,
		InitialCapacity: r.cfg.MailboxSize,
		Logger:          r.logger.With("route", path),
	})
	r.handlers[path] = ref
	r.routeCount.Store(int64(len(r.handlers)))
	r.spawned.Add(1)

	r.logger.Debug("created handler for route",
		"route", path,
		"matcher", matcher,
	)
	return response{addr: ref.Clone()}
}

// match walks the table. A matcher or factory that panics fails this
// resolution only; nothing is cached.
func (r *registry) match(path string) (h actor.Handler, matcher string, err error) {
	defer func() {
		if p := recover(); p != nil {
			r.panics.Add(1)
			r.logger.Error("route factory panicked",
				"route", path,
				"panic", fmt.Sprint(p),
			)
			h, matcher, err = nil, "", fmt.Errorf("%w: route %s: factory panicked", ErrUnavailable, path)
		}
	}()

	h, matcher, err = r.table.Resolve(path)
	if err != nil {
		return nil, "", ErrRouteNotFound
	}
	if h == nil {
		return nil, "", fmt.Errorf("%w: route %s: matcher %s built no handler", ErrUnavailable, path, matcher)
	}
	return h, matcher, nil
}

func (r *registry) listRoutes() []string {
	routes := make([]string, 0, len(r.handlers))
	for path := range r.handlers {
		routes = append(routes, path)
	}
	sort.Strings(routes)
	return routes
}
