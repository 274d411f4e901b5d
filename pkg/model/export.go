package model

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/natefinch/atomic"
)

// ExportedModel is the serializable representation of a trained model,
// used for JSON-based import and export.
type ExportedModel struct {
	Order       int                  `json:"order"`
	VocabSize   int                  `json:"vocab_size"`
	Transitions []ExportedTransition `json:"transitions"`
}

// ExportedTransition is one (context -> next id) frequency entry within
// an ExportedModel.
type ExportedTransition struct {
	Prefix    string `json:"prefix"`
	NextID    int    `json:"next_id"`
	Frequency int    `json:"frequency"`
}

// Export serializes the model's transition table as JSON to the
// provided io.Writer. Useful for backups or for moving a trained model
// between databases.
func (m *Model) Export(ctx context.Context, w io.Writer) error {
	rows, err := m.db.QueryContext(ctx,
		`SELECT prefix_text, next_id, frequency FROM ngram_transitions ORDER BY prefix_text, next_id;`)
	if err != nil {
		return fmt.Errorf("could not query transitions for export: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	exported := ExportedModel{
		Order:     m.order,
		VocabSize: m.vocab.Size(),
	}
	for rows.Next() {
		var tr ExportedTransition
		if err := rows.Scan(&tr.Prefix, &tr.NextID, &tr.Frequency); err != nil {
			return err
		}
		exported.Transitions = append(exported.Transitions, tr)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "model exported",
		slog.Int("order", exported.Order),
		slog.Int("transitions_exported", len(exported.Transitions)),
	)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exported)
}

// ExportFile writes the JSON export to path atomically, so a crash
// mid-write never leaves a truncated model file behind.
func (m *Model) ExportFile(ctx context.Context, path string) error {
	var buf bytes.Buffer
	if err := m.Export(ctx, &buf); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

// Import reads a JSON model export and merges it into this model's
// database: frequencies of transitions present on both sides are added
// together. The export must match this model's order and vocabulary
// width. The operation is transactional.
func (m *Model) Import(ctx context.Context, r io.Reader) error {
	var imported ExportedModel
	if err := json.NewDecoder(r).Decode(&imported); err != nil {
		return fmt.Errorf("failed to decode json model: %w", err)
	}
	if imported.Order != m.order {
		return fmt.Errorf("import has order %d, model has %d", imported.Order, m.order)
	}
	if imported.VocabSize != m.vocab.Size() {
		return fmt.Errorf("import has vocabulary width %d, model has %d", imported.VocabSize, m.vocab.Size())
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction for import: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	stmtMerge, err := tx.PrepareContext(ctx, `
		INSERT INTO ngram_transitions (prefix_text, next_id, frequency) VALUES (?, ?, ?)
		ON CONFLICT(prefix_text, next_id) DO UPDATE SET frequency = frequency + excluded.frequency;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare merge statement: %w", err)
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(stmtMerge)

	for _, tr := range imported.Transitions {
		if tr.NextID <= 0 || tr.NextID >= imported.VocabSize {
			return fmt.Errorf("import transition has out-of-range id %d", tr.NextID)
		}
		if _, err := stmtMerge.ExecContext(ctx, tr.Prefix, tr.NextID, tr.Frequency); err != nil {
			return fmt.Errorf("failed to merge transition (%q -> %d): %w", tr.Prefix, tr.NextID, err)
		}
	}

	m.logger.InfoContext(ctx, "model imported",
		slog.Int("transitions_merged", len(imported.Transitions)),
	)

	return tx.Commit()
}
