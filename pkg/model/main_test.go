package model

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/tkellerman/onoma/pkg/names"
)

// openTestDB creates a fresh on-disk SQLite database with the model
// schema applied, releasing it via t.Cleanup.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbFile)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}
	return db
}

// setupTestModel returns an order-2 model over the two-letter
// vocabulary {a: 1, b: 2, stop: 3}.
func setupTestModel(t *testing.T) (*Model, *names.Vocabulary) {
	t.Helper()
	db := openTestDB(t)

	vocab, err := names.NewVocabulary("ab")
	if err != nil {
		t.Fatalf("NewVocabulary() error = %v", err)
	}
	m, err := New(db, vocab, 2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(m.Close)
	return m, vocab
}

// setupTrainedModel also trains on the single name "ab".
func setupTrainedModel(t *testing.T) (context.Context, *Model, *names.Vocabulary) {
	t.Helper()
	m, vocab := setupTestModel(t)
	ctx := context.Background()
	if err := m.Train(ctx, []string{"ab"}); err != nil {
		t.Fatalf("setup: Train() failed: %v", err)
	}
	return ctx, m, vocab
}

// emptyWindow builds an all-padding window of the given shape.
func emptyWindow(rows, width int) [][]float64 {
	w := make([][]float64, rows)
	for i := range w {
		w[i] = make([]float64, width)
	}
	return w
}

// windowFor encodes a buffer of ids into a one-hot window for direct
// Predict calls.
func windowFor(t *testing.T, vocab *names.Vocabulary, ids []int) [][]float64 {
	t.Helper()
	w, err := names.NewEncoder(vocab, 5).Encode(ids)
	if err != nil {
		t.Fatalf("Encode(%v) error = %v", ids, err)
	}
	return w
}
