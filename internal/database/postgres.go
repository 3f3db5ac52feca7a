package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/terris/internal/config"
	"github.com/rickgao/terris/internal/model"
)

// PostgresStore reads questions through a pgx pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates a pool and verifies it with a ping.
func OpenPostgres(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("postgres connected",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Name,
	)
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Connect creates a single connection pool.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// LoadQuestions returns every question in ascending sort order.
func (s *PostgresStore) LoadQuestions(ctx context.Context) ([]model.Question, error) {
	rows, err := s.pool.Query(ctx, selectQuestionsSQL)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}

	questions, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Question])
	if err != nil {
		return nil, fmt.Errorf("scan questions: %w", err)
	}
	return questions, nil
}

// Ping verifies the pool is healthy.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
