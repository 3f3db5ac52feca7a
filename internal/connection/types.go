package connection

import (
	"errors"
	"fmt"
	"time"

	"github.com/rickgao/terris/internal/actor"
	"github.com/rickgao/terris/internal/session"
)

// Errors
var (
	ErrClosed        = errors.New("connection closed")
	ErrTimingInvalid = errors.New("client timeout must be at least twice the heartbeat interval")
)

// State is the supervisor lifecycle state.
type State int32

const (
	StateStarting State = iota
	StateLive
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateLive:
		return "live"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// StopReason records why a supervisor stopped.
type StopReason string

const (
	ReasonPeerClosed       StopReason = "peer_closed"
	ReasonHeartbeatTimeout StopReason = "heartbeat_timeout"
	ReasonProtocolError    StopReason = "protocol_error"
	ReasonTransportError   StopReason = "transport_error"
	ReasonShutdown         StopReason = "shutdown"
)

// RelayMode selects what happens to inbound text/binary frames.
type RelayMode string

const (
	RelayForward RelayMode = "forward" // Send to the bound handler
	RelayEcho    RelayMode = "echo"    // Write back to the peer
)

// Config configures a supervisor.
type Config struct {
	HeartbeatInterval time.Duration // How often pings are sent
	ClientTimeout     time.Duration // Max time without a pong before closing
	WriteTimeout      time.Duration // Write deadline for sends
	MaxFrameSize      int64         // Read limit per message (0 = unlimited)
	FramesPerSecond   int           // Inbound frame rate limit (0 = unlimited)
	RelayMode         RelayMode
	OutboxSize        int // Initial outbox capacity
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HeartbeatInterval: 5 * time.Second,
		ClientTimeout:     10 * time.Second,
		WriteTimeout:      5 * time.Second,
		MaxFrameSize:      64 * 1024,
		RelayMode:         RelayForward,
		OutboxSize:        64,
	}
}

// ValidateTiming checks that at least one probe round trip fits in the timeout.
func ValidateTiming(interval, timeout time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("heartbeat interval must be positive, got %s", interval)
	}
	if timeout < 2*interval {
		return fmt.Errorf("%w (interval %s, timeout %s)", ErrTimingInvalid, interval, timeout)
	}
	return nil
}

// Frame is an inbound text/binary frame delivered to the route handler.
// The envelope's Sender is the connection's outbox.
type Frame struct {
	Session    session.ID
	Route      string
	Type       int // websocket.TextMessage or websocket.BinaryMessage
	Data       []byte
	ReceivedAt time.Time
}

// Outbound is a frame a handler asks the supervisor to write to its peer.
// Plain string and []byte messages are also accepted by the outbox.
type Outbound struct {
	Type int // websocket.TextMessage or websocket.BinaryMessage
	Data []byte
}

// Joined is sent to the route handler when a connection goes live.
type Joined struct {
	Session session.ID
	Route   string
	Outbox  actor.Address
}

// Left is sent to the route handler when a connection stops.
type Left struct {
	Session session.ID
	Route   string
	Outbox  actor.Address // Same address as in the matching Joined
	Reason  StopReason
}

// Stats contains per-connection statistics.
type Stats struct {
	State          State
	FramesReceived int64
	FramesRelayed  int64
	FramesDropped  int64
	FramesSent     int64
	LastHeartbeat  time.Time
}
