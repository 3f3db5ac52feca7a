package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/terris/internal/actor"
	"github.com/rickgao/terris/internal/config"
	"github.com/rickgao/terris/internal/connection"
	"github.com/rickgao/terris/internal/database"
	"github.com/rickgao/terris/internal/registry"
	"github.com/rickgao/terris/internal/route"
	"github.com/rickgao/terris/internal/server"
	"github.com/rickgao/terris/internal/shoegame"
	"github.com/rickgao/terris/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/gateway.yaml", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "config", *configPath)
		os.Exit(1)
	}

	// Set up structured logging
	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting gateway",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"instance_id", cfg.Instance.ID,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("gateway failed", "error", err)
		os.Exit(1)
	}
	logger.Info("gateway stopped")
}

func run(cfg *config.GatewayConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load questions
	store, err := database.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	questions, err := store.LoadQuestions(ctx)
	if err != nil {
		return err
	}
	for _, q := range questions {
		logger.Debug("question loaded", "sort_order", q.SortOrder, "question", q.Text)
	}
	logger.Info("questions loaded", "count", len(questions), "driver", cfg.Storage.Driver)

	// Route table
	table := route.NewTable(
		route.Exact("/", func(string) actor.Handler {
			return shoegame.New(questions, logger.With("component", "shoegame"))
		}),
	)

	reg := registry.New(table, registry.Config{
		QueueSize:      cfg.Registry.QueueSize,
		ResolveTimeout: cfg.Registry.ResolveTimeout,
		MailboxSize:    cfg.Registry.MailboxSize,
	}, logger.With("component", "registry"))
	if err := reg.Start(ctx); err != nil {
		return err
	}

	gw := server.NewGateway(server.GatewayConfig{
		WSPath:          cfg.Server.WSPath,
		ReadBufferSize:  cfg.Server.ReadBufferSize,
		WriteBufferSize: cfg.Server.WriteBufferSize,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		Connection: connection.Config{
			HeartbeatInterval: cfg.Connections.HeartbeatInterval,
			ClientTimeout:     cfg.Connections.ClientTimeout,
			WriteTimeout:      cfg.Connections.WriteTimeout,
			MaxFrameSize:      cfg.Connections.MaxFrameSize,
			FramesPerSecond:   cfg.Connections.FramesPerSecond,
			RelayMode:         connection.RelayMode(cfg.Connections.RelayMode),
			OutboxSize:        cfg.Connections.OutboxSize,
		},
	}, reg, logger.With("component", "gateway"))

	srv := &http.Server{
		Addr: cfg.Server.ListenAddr,
		Handler: server.NewMux(gw, reg, cfg.Server.HealthPath, server.HealthConfig{
			InstanceID: cfg.Instance.ID,
			Storage:    store,
		}, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening",
			"addr", cfg.Server.ListenAddr,
			"ws_path", cfg.Server.WSPath,
			"health_path", cfg.Server.HealthPath,
		)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Hijacked WebSocket connections are not closed by Shutdown.
		err := srv.Shutdown(shutdownCtx)
		gw.CloseAll()
		if stopErr := reg.Stop(shutdownCtx); err == nil {
			err = stopErr
		}
		return err
	})

	return g.Wait()
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
