package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/rickgao/terris/internal/actor"
	"github.com/rickgao/terris/internal/session"
)

// Supervisor owns a single live WebSocket connection bound to a route handler.
type Supervisor struct {
	cfg     Config
	logger  *slog.Logger
	conn    *websocket.Conn
	session session.ID
	route   string
	handler actor.Address
	limiter *rate.Limiter

	outbox *actor.Ref

	// Write serialization (control frames use WriteControl, which is concurrency safe)
	writeMu sync.Mutex

	// State
	mu            sync.RWMutex
	state         State
	lastHeartbeat time.Time
	reason        StopReason

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
	done      chan struct{}

	received atomic.Int64
	relayed  atomic.Int64
	dropped  atomic.Int64
	sent     atomic.Int64
}

// New creates a supervisor for an already upgraded connection.
func New(conn *websocket.Conn, id session.ID, route string, handler actor.Address, cfg Config, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RelayMode == "" {
		cfg.RelayMode = RelayForward
	}

	s := &Supervisor{
		cfg:     cfg,
		logger:  logger.With("session", id.String(), "route", route),
		conn:    conn,
		session: id,
		route:   route,
		handler: handler,
		state:   StateStarting,
		done:    make(chan struct{}),
	}
	if cfg.FramesPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.FramesPerSecond), cfg.FramesPerSecond)
	}
	return s
}

// Run drives the connection until the peer leaves, the heartbeat times out,
// the connection is closed, or ctx is canceled. It blocks on the read loop.
func (s *Supervisor) Run(ctx context.Context) StopReason {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if s.cfg.MaxFrameSize > 0 {
		s.conn.SetReadLimit(s.cfg.MaxFrameSize)
	}
	s.conn.SetPingHandler(s.onPing)
	s.conn.SetPongHandler(s.onPong)

	s.outbox = actor.Spawn(s.ctx, actor.HandlerFunc(s.deliver), actor.Options{
		Name:            "outbox:" + s.session.String(),
		InitialCapacity: s.cfg.OutboxSize,
		Logger:          s.logger,
	})

	s.mu.Lock()
	if s.reason == "" {
		s.state = StateLive
	}
	s.lastHeartbeat = time.Now()
	s.mu.Unlock()

	if !s.handler.Send(actor.Envelope{
		Message: Joined{Session: s.session, Route: s.route, Outbox: s.outbox},
		Sender:  s.outbox,
	}) {
		s.logger.Warn("route handler unavailable, join not delivered")
	}

	s.wg.Add(1)
	go s.heartbeatLoop()

	// Stop the read loop when the caller's context ends.
	go func() {
		select {
		case <-s.ctx.Done():
			s.terminate(ReasonShutdown)
		case <-s.done:
		}
	}()

	s.logger.Info("connection live")

	reason := s.readLoop()
	s.stop(reason)
	return s.StopReason()
}

// Close stops the supervisor from outside. Safe to call more than once.
func (s *Supervisor) Close() {
	s.terminate(ReasonShutdown)
}

// Done is closed once the supervisor has stopped.
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}

// Outbox returns the address handlers use to write to this connection.
// Nil until Run has been called.
func (s *Supervisor) Outbox() actor.Address {
	if s.outbox == nil {
		return nil
	}
	return s.outbox
}

// Session returns the bound session.
func (s *Supervisor) Session() session.ID {
	return s.session
}

// Route returns the bound route path.
func (s *Supervisor) Route() string {
	return s.route
}

// State returns the current state.
func (s *Supervisor) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// StopReason returns why the supervisor stopped (empty while live).
func (s *Supervisor) StopReason() StopReason {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reason
}

// Stats returns current statistics.
func (s *Supervisor) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		State:          s.state,
		FramesReceived: s.received.Load(),
		FramesRelayed:  s.relayed.Load(),
		FramesDropped:  s.dropped.Load(),
		FramesSent:     s.sent.Load(),
		LastHeartbeat:  s.lastHeartbeat,
	}
}

// readLoop reads frames until the connection fails or is closed.
func (s *Supervisor) readLoop() StopReason {
	for {
		msgType, data, err := s.conn.ReadMessage()
		receivedAt := time.Now()
		if err != nil {
			return classify(err)
		}

		s.received.Add(1)
		s.handleFrame(msgType, data, receivedAt)
	}
}

func (s *Supervisor) handleFrame(msgType int, data []byte, receivedAt time.Time) {
	if s.limiter != nil && !s.limiter.Allow() {
		s.dropped.Add(1)
		s.logger.Debug("frame rate exceeded, dropping frame", "size", len(data))
		return
	}

	switch msgType {
	case websocket.TextMessage, websocket.BinaryMessage:
		s.relay(msgType, data, receivedAt)
	default:
		s.dropped.Add(1)
		s.logger.Debug("unsupported frame type, dropping", "type", msgType)
	}
}

func (s *Supervisor) relay(msgType int, data []byte, receivedAt time.Time) {
	if s.cfg.RelayMode == RelayEcho {
		if err := s.write(msgType, data); err != nil {
			s.logger.Debug("echo failed", "error", err)
		}
		return
	}

	frame := Frame{
		Session:    s.session,
		Route:      s.route,
		Type:       msgType,
		Data:       data,
		ReceivedAt: receivedAt,
	}
	if !s.handler.Send(actor.Envelope{Message: frame, Sender: s.outbox}) {
		s.dropped.Add(1)
		s.logger.Warn("route handler unavailable, dropping frame")
		return
	}
	s.relayed.Add(1)
}

// heartbeatLoop probes the peer and closes the connection once it goes quiet.
func (s *Supervisor) heartbeatLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.mu.RLock()
			last := s.lastHeartbeat
			s.mu.RUnlock()

			if time.Since(last) > s.cfg.ClientTimeout {
				s.logger.Warn("heartbeat failed, disconnecting",
					"last_heartbeat", last,
					"timeout", s.cfg.ClientTimeout,
				)
				s.terminate(ReasonHeartbeatTimeout)
				return
			}

			if err := s.writeControl(websocket.PingMessage, nil); err != nil {
				s.logger.Debug("failed to send ping", "error", err)
			}
		}
	}
}

func (s *Supervisor) onPing(data string) error {
	err := s.writeControl(websocket.PongMessage, []byte(data))
	if errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return nil
	}
	return err
}

func (s *Supervisor) onPong(string) error {
	s.mu.Lock()
	s.lastHeartbeat = time.Now()
	s.mu.Unlock()
	return nil
}

// deliver runs on the outbox goroutine and writes handler replies to the peer.
func (s *Supervisor) deliver(ctx context.Context, env actor.Envelope) {
	var (
		msgType int
		data    []byte
	)
	switch m := env.Message.(type) {
	case Outbound:
		msgType, data = m.Type, m.Data
		if msgType == 0 {
			msgType = websocket.TextMessage
		}
	case string:
		msgType, data = websocket.TextMessage, []byte(m)
	case []byte:
		msgType, data = websocket.BinaryMessage, m
	default:
		s.logger.Debug("unsupported outbound message, dropping", "type", fmt.Sprintf("%T", m))
		return
	}

	if err := s.write(msgType, data); err != nil {
		s.logger.Debug("outbound write failed", "error", err)
	}
}

func (s *Supervisor) write(msgType int, data []byte) error {
	if s.State() != StateLive {
		return ErrClosed
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.cfg.WriteTimeout > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	if err := s.conn.WriteMessage(msgType, data); err != nil {
		return err
	}
	s.sent.Add(1)
	return nil
}

func (s *Supervisor) writeControl(msgType int, data []byte) error {
	return s.conn.WriteControl(msgType, data, time.Now().Add(s.writeTimeout()))
}

func (s *Supervisor) writeTimeout() time.Duration {
	if s.cfg.WriteTimeout > 0 {
		return s.cfg.WriteTimeout
	}
	return time.Second
}

// terminate records reason (first caller wins) and closes the transport,
// which unblocks the read loop.
func (s *Supervisor) terminate(reason StopReason) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		if s.reason == "" {
			s.reason = reason
		}
		if s.state == StateLive {
			s.state = StateStopping
		}
		s.mu.Unlock()

		code := websocket.CloseNormalClosure
		if reason == ReasonHeartbeatTimeout {
			code = websocket.CloseGoingAway
		}
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(code, string(reason)),
			time.Now().Add(time.Second),
		)
		s.conn.Close()
	})
}

// stop releases everything the supervisor owns. The route handler is only
// notified, never stopped.
func (s *Supervisor) stop(reason StopReason) {
	s.terminate(reason)
	s.cancel()
	s.wg.Wait()
	s.outbox.Stop()

	final := s.StopReason()
	s.handler.Send(actor.Envelope{Message: Left{Session: s.session, Route: s.route, Outbox: s.outbox, Reason: final}})

	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()
	close(s.done)

	s.logger.Info("connection closed", "reason", final)
}

func classify(err error) StopReason {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ReasonPeerClosed
	}
	if errors.Is(err, websocket.ErrReadLimit) {
		return ReasonProtocolError
	}
	return ReasonTransportError
}
