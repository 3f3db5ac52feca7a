package config

import (
	"time"

	"github.com/google/uuid"
)

// Default values for optional configuration fields.
const (
	DefaultListenAddr        = ":8080"
	DefaultWSPath            = "/ws"
	DefaultHealthPath        = "/health"
	DefaultBufferSize        = 1024
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultHeartbeatInterval = 5 * time.Second
	DefaultClientTimeout     = 10 * time.Second
	DefaultWriteTimeout      = 5 * time.Second
	DefaultMaxFrameSize      = 64 * 1024
	DefaultRelayMode         = "forward"
	DefaultOutboxSize        = 64
	DefaultQueueSize         = 64
	DefaultResolveTimeout    = 5 * time.Second
	DefaultMailboxSize       = 64
	DefaultStorageDriver     = "none"
	DefaultSQLitePath        = "questions.db"
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 4
	DefaultMinConns          = 1
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
)

// ApplyDefaults fills every unset optional field.
func (c *GatewayConfig) ApplyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = uuid.NewString()
	}

	// Server defaults
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.WSPath == "" {
		c.Server.WSPath = DefaultWSPath
	}
	if c.Server.HealthPath == "" {
		c.Server.HealthPath = DefaultHealthPath
	}
	if c.Server.ReadBufferSize == 0 {
		c.Server.ReadBufferSize = DefaultBufferSize
	}
	if c.Server.WriteBufferSize == 0 {
		c.Server.WriteBufferSize = DefaultBufferSize
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Connections defaults
	if c.Connections.HeartbeatInterval == 0 {
		c.Connections.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.Connections.ClientTimeout == 0 {
		c.Connections.ClientTimeout = DefaultClientTimeout
	}
	if c.Connections.WriteTimeout == 0 {
		c.Connections.WriteTimeout = DefaultWriteTimeout
	}
	if c.Connections.MaxFrameSize == 0 {
		c.Connections.MaxFrameSize = DefaultMaxFrameSize
	}
	if c.Connections.RelayMode == "" {
		c.Connections.RelayMode = DefaultRelayMode
	}
	if c.Connections.OutboxSize == 0 {
		c.Connections.OutboxSize = DefaultOutboxSize
	}

	// Registry defaults
	if c.Registry.QueueSize == 0 {
		c.Registry.QueueSize = DefaultQueueSize
	}
	if c.Registry.ResolveTimeout == 0 {
		c.Registry.ResolveTimeout = DefaultResolveTimeout
	}
	if c.Registry.MailboxSize == 0 {
		c.Registry.MailboxSize = DefaultMailboxSize
	}

	// Storage defaults
	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultStorageDriver
	}
	if c.Storage.Driver == "sqlite" && c.Storage.Path == "" {
		c.Storage.Path = DefaultSQLitePath
	}
	if c.Storage.Driver == "postgres" {
		applyDBDefaults(&c.Storage.Postgres)
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
