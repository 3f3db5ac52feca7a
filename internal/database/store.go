package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rickgao/terris/internal/config"
	"github.com/rickgao/terris/internal/model"
)

const selectQuestionsSQL = `SELECT sort_order, question FROM questions ORDER BY sort_order ASC`

// Store yields the startup records.
type Store interface {
	// LoadQuestions returns every question in ascending sort order.
	LoadQuestions(ctx context.Context) ([]model.Question, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend.
	Close() error
}

// Open connects the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case "", "none":
		return noneStore{}, nil
	case "sqlite":
		st, err := OpenSQLite(ctx, cfg.Path, logger)
		if err != nil {
			return nil, err
		}
		if len(cfg.Seed) > 0 {
			if err := st.SeedQuestions(ctx, seedQuestions(cfg.Seed)); err != nil {
				st.Close()
				return nil, err
			}
		}
		return st, nil
	case "postgres":
		return OpenPostgres(ctx, cfg.Postgres, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}

func seedQuestions(seed []config.SeedQuestion) []model.Question {
	qs := make([]model.Question, len(seed))
	for i, q := range seed {
		qs[i] = model.Question{SortOrder: q.SortOrder, Text: q.Question}
	}
	return qs
}

// noneStore is used when no storage is configured.
type noneStore struct{}

func (noneStore) LoadQuestions(context.Context) ([]model.Question, error) { return nil, nil }
func (noneStore) Ping(context.Context) error                             { return nil }
func (noneStore) Close() error                                           { return nil }
