package server

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rickgao/terris/internal/connection"
	"github.com/rickgao/terris/internal/registry"
	"github.com/rickgao/terris/internal/session"
)

// Response bodies for rejected connection requests.
const (
	msgUnauthorized  = "No UUID found in request"
	msgRouteNotFound = "Route not found."
	msgInternal      = "Internal Server Error in the actor system. (Mailbox Error)"
)

// GatewayConfig configures the WebSocket endpoint.
type GatewayConfig struct {
	WSPath          string   // Mount point; the remainder of the path is the route
	ReadBufferSize  int      // Upgrader read buffer
	WriteBufferSize int      // Upgrader write buffer
	AllowedOrigins  []string // Origin hosts allowed to connect (empty = any)
	Connection      connection.Config
}

// Gateway accepts WebSocket connections and binds each to a route handler.
type Gateway struct {
	cfg      GatewayConfig
	registry registry.Registry
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	live    map[*connection.Supervisor]struct{}
	closing bool
	wg      sync.WaitGroup
}

// NewGateway creates a gateway resolving routes through reg.
func NewGateway(cfg GatewayConfig, reg registry.Registry, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.WSPath == "" {
		cfg.WSPath = "/ws"
	}

	g := &Gateway{
		cfg:      cfg,
		registry: reg,
		logger:   logger,
		live:     make(map[*connection.Supervisor]struct{}),
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     g.checkOrigin,
	}
	return g
}

// ServeHTTP implements http.Handler.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.logger.Debug("connection request", "path", r.URL.Path, "query", r.URL.RawQuery)

	id, ok := session.FromRequest(r)
	if !ok {
		g.logger.Info("no uuid found in query string", "query", r.URL.RawQuery)
		http.Error(w, msgUnauthorized, http.StatusUnauthorized)
		return
	}

	path := g.RoutePath(r.URL.Path)
	addr, err := g.registry.Resolve(r.Context(), path)
	switch {
	case errors.Is(err, registry.ErrRouteNotFound):
		g.logger.Info("route not found", "route", path, "session", id.String())
		http.Error(w, msgRouteNotFound, http.StatusNotFound)
		return
	case err != nil:
		g.logger.Error("route resolution failed", "route", path, "error", err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an HTTP error response.
		g.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	sup := connection.New(conn, id, path, addr, g.cfg.Connection, g.logger)
	if !g.track(sup) {
		conn.Close()
		return
	}
	defer g.untrack(sup)

	sup.Run(r.Context())
}

// RoutePath maps a request path to the route key: the mount prefix is
// stripped and an empty remainder becomes "/".
func (g *Gateway) RoutePath(requestPath string) string {
	rest := strings.TrimPrefix(requestPath, strings.TrimSuffix(g.cfg.WSPath, "/"))
	if rest == "" || rest == "/" {
		return "/"
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return rest
}

// Connections returns the number of live supervisors.
func (g *Gateway) Connections() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.live)
}

// CloseAll closes every live connection and waits for their supervisors to stop.
// New connections are refused afterwards.
func (g *Gateway) CloseAll() {
	g.mu.Lock()
	g.closing = true
	sups := make([]*connection.Supervisor, 0, len(g.live))
	for sup := range g.live {
		sups = append(sups, sup)
	}
	g.mu.Unlock()

	for _, sup := range sups {
		sup.Close()
	}
	g.wg.Wait()

	g.logger.Info("all connections closed", "count", len(sups))
}

func (g *Gateway) track(sup *connection.Supervisor) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closing {
		return false
	}
	g.live[sup] = struct{}{}
	g.wg.Add(1)
	return true
}

func (g *Gateway) untrack(sup *connection.Supervisor) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.live[sup]; ok {
		delete(g.live, sup)
		g.wg.Done()
	}
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	if len(g.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, allowed := range g.cfg.AllowedOrigins {
		if strings.EqualFold(u.Host, allowed) {
			return true
		}
	}
	return false
}
