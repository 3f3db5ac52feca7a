package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *GatewayConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Server.ListenAddr == "" {
		return errors.New("server.listen_addr is required")
	}
	if !strings.HasPrefix(c.Server.WSPath, "/") {
		return fmt.Errorf("server.ws_path must start with /, got %q", c.Server.WSPath)
	}
	if c.Server.HealthPath == c.Server.WSPath {
		return errors.New("server.health_path cannot equal server.ws_path")
	}

	if c.Connections.HeartbeatInterval <= 0 {
		return errors.New("connections.heartbeat_interval must be > 0")
	}
	if c.Connections.ClientTimeout < 2*c.Connections.HeartbeatInterval {
		return fmt.Errorf("connections.client_timeout (%s) must be at least twice connections.heartbeat_interval (%s)",
			c.Connections.ClientTimeout, c.Connections.HeartbeatInterval)
	}
	if c.Connections.FramesPerSecond < 0 {
		return errors.New("connections.frames_per_second must be >= 0")
	}
	switch c.Connections.RelayMode {
	case "forward", "echo":
	default:
		return fmt.Errorf("connections.relay_mode must be forward or echo, got %q", c.Connections.RelayMode)
	}

	if c.Registry.QueueSize < 0 {
		return errors.New("registry.queue_size must be >= 0")
	}

	switch c.Storage.Driver {
	case "none":
	case "sqlite":
		if c.Storage.Path == "" {
			return errors.New("storage.path is required when storage.driver=sqlite")
		}
	case "postgres":
		if err := c.Storage.Postgres.validate("storage.postgres"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown storage.driver: %s", c.Storage.Driver)
	}
	if err := c.Storage.validateSeed(); err != nil {
		return err
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

func (s *StorageConfig) validateSeed() error {
	if len(s.Seed) == 0 {
		return nil
	}
	if s.Driver != "sqlite" {
		return fmt.Errorf("storage.seed requires storage.driver=sqlite, got %q", s.Driver)
	}
	seen := make(map[int]bool, len(s.Seed))
	for i, q := range s.Seed {
		if q.Question == "" {
			return fmt.Errorf("storage.seed[%d].question is required", i)
		}
		if seen[q.SortOrder] {
			return fmt.Errorf("storage.seed[%d].sort_order %d is duplicated", i, q.SortOrder)
		}
		seen[q.SortOrder] = true
	}
	return nil
}
