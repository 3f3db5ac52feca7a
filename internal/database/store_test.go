package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rickgao/terris/internal/config"
	"github.com/rickgao/terris/internal/model"
)

func TestSQLiteStore_LoadQuestionsOrdered(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "questions.db")

	st, err := OpenSQLite(ctx, path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer st.Close()

	seed := []model.Question{
		{SortOrder: 3, Text: "Who is the better cook?"},
		{SortOrder: 1, Text: "Who empties the trash more often?"},
		{SortOrder: 2, Text: "Who said I love you first?"},
	}
	if err := st.SeedQuestions(ctx, seed); err != nil {
		t.Fatalf("SeedQuestions failed: %v", err)
	}

	got, err := st.LoadQuestions(ctx)
	if err != nil {
		t.Fatalf("LoadQuestions failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("loaded %d questions, want 3", len(got))
	}
	for i, q := range got {
		if q.SortOrder != i+1 {
			t.Errorf("question %d SortOrder = %d, want %d", i, q.SortOrder, i+1)
		}
	}
	if got[0].Text != "Who empties the trash more often?" {
		t.Errorf("first question = %q", got[0].Text)
	}

	if err := st.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestSQLiteStore_EmptyTable(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "questions.db"), nil)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer st.Close()

	got, err := st.LoadQuestions(ctx)
	if err != nil {
		t.Fatalf("LoadQuestions failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("loaded %d questions, want 0", len(got))
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		st, err := Open(ctx, config.StorageConfig{Driver: "none"}, nil)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		qs, err := st.LoadQuestions(ctx)
		if err != nil || qs != nil {
			t.Errorf("LoadQuestions = %v, %v; want nil, nil", qs, err)
		}
		if err := st.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		st, err := Open(ctx, config.StorageConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "q.db")}, nil)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		defer st.Close()
		if _, ok := st.(*SQLiteStore); !ok {
			t.Errorf("Open returned %T, want *SQLiteStore", st)
		}
	})

	t.Run("sqlite with seed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "q.db")
		cfg := config.StorageConfig{
			Driver: "sqlite",
			Path:   path,
			Seed: []config.SeedQuestion{
				{SortOrder: 2, Question: "Who said I love you first?"},
				{SortOrder: 1, Question: "Who is the better cook?"},
			},
		}

		// Opening twice upserts instead of failing on the primary key.
		for i := 0; i < 2; i++ {
			st, err := Open(ctx, cfg, nil)
			if err != nil {
				t.Fatalf("Open #%d failed: %v", i+1, err)
			}
			qs, err := st.LoadQuestions(ctx)
			st.Close()
			if err != nil {
				t.Fatalf("LoadQuestions failed: %v", err)
			}
			if len(qs) != 2 {
				t.Fatalf("loaded %d questions, want 2", len(qs))
			}
			if qs[0].SortOrder != 1 || qs[0].Text != "Who is the better cook?" {
				t.Errorf("first question = %+v", qs[0])
			}
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		if _, err := Open(ctx, config.StorageConfig{Driver: "mongo"}, nil); err == nil {
			t.Error("expected error for unknown driver")
		}
	})

	t.Run("sqlite without path", func(t *testing.T) {
		if _, err := Open(ctx, config.StorageConfig{Driver: "sqlite"}, nil); err == nil {
			t.Error("expected error for missing sqlite path")
		}
	})
}
