package model

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/tkellerman/onoma/pkg/names"
)

// transition is a buffered (context -> next id) observation, used for
// batching inserts during training.
type transition struct {
	key  string
	next int
}

// Train expands every corpus name into its training pairs and records
// the observed transitions. For each pair, contexts of every length
// from 0 up to the model order are counted, which is what lets Predict
// back off to shorter contexts at inference time. Inserts are batched
// and the whole operation runs in a single transaction.
func (m *Model) Train(ctx context.Context, corpus []string) error {
	const batchSize = 1000

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	stmtUpsert, err := tx.PrepareContext(ctx, `
		INSERT INTO ngram_transitions (prefix_text, next_id, frequency) VALUES (?, ?, 1)
		ON CONFLICT(prefix_text, next_id) DO UPDATE SET frequency = frequency + 1;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare transition upsert: %w", err)
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(stmtUpsert)

	batch := make([]transition, 0, batchSize)
	commitBatch := func() error {
		for _, tr := range batch {
			if _, err := stmtUpsert.ExecContext(ctx, tr.key, tr.next); err != nil {
				return fmt.Errorf("failed to record transition (%q -> %d): %w", tr.key, tr.next, err)
			}
		}
		batch = batch[:0]
		return nil
	}

	var recorded int64
	for _, name := range corpus {
		examples, err := names.Expand(m.vocab, name)
		if err != nil {
			return fmt.Errorf("training on %q: %w", name, err)
		}
		for _, ex := range examples {
			maxCtx := min(m.order, len(ex.Window))
			for k := 0; k <= maxCtx; k++ {
				batch = append(batch, transition{
					key:  prefixKey(ex.Window[len(ex.Window)-k:]),
					next: ex.Target,
				})
				recorded++
			}
			if len(batch) >= batchSize {
				if err := commitBatch(); err != nil {
					return err
				}
			}
		}
	}
	if err := commitBatch(); err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "training completed",
		slog.Int("names_processed", len(corpus)),
		slog.Int64("transitions_recorded", recorded),
		slog.Int("order", m.order),
	)

	return tx.Commit()
}
