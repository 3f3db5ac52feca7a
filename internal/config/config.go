package config

import "time"

// GatewayConfig is the root configuration for a gateway instance.
type GatewayConfig struct {
	Instance    InstanceConfig    `yaml:"instance"`
	Server      ServerConfig      `yaml:"server"`
	Connections ConnectionsConfig `yaml:"connections"`
	Registry    RegistryConfig    `yaml:"registry"`
	Storage     StorageConfig     `yaml:"storage"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// InstanceConfig identifies this gateway. An empty ID is replaced by a random UUID.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// ServerConfig holds HTTP and WebSocket upgrade settings.
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	WSPath          string        `yaml:"ws_path"`
	HealthPath      string        `yaml:"health_path"`
	ReadBufferSize  int           `yaml:"read_buffer_size"`
	WriteBufferSize int           `yaml:"write_buffer_size"`
	AllowedOrigins  []string      `yaml:"allowed_origins"` // Empty = allow all
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ConnectionsConfig holds per-connection supervisor settings.
type ConnectionsConfig struct {
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	ClientTimeout     time.Duration `yaml:"client_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	MaxFrameSize      int64         `yaml:"max_frame_size"`
	FramesPerSecond   int           `yaml:"frames_per_second"` // 0 = unlimited
	RelayMode         string        `yaml:"relay_mode"`        // "forward" or "echo"
	OutboxSize        int           `yaml:"outbox_size"`
}

// RegistryConfig holds route registry settings.
type RegistryConfig struct {
	QueueSize      int           `yaml:"queue_size"`
	ResolveTimeout time.Duration `yaml:"resolve_timeout"`
	MailboxSize    int           `yaml:"mailbox_size"`
}

// StorageConfig selects where startup question records come from.
type StorageConfig struct {
	Driver   string         `yaml:"driver"` // "none", "sqlite" or "postgres"
	Path     string         `yaml:"path"`   // sqlite only
	Seed     []SeedQuestion `yaml:"seed"`   // sqlite only; upserted on open
	Postgres DBConfig       `yaml:"postgres"`
}

// SeedQuestion is a question written to the sqlite store at startup.
type SeedQuestion struct {
	SortOrder int    `yaml:"sort_order"`
	Question  string `yaml:"question"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text" or "json"
}
