package model

import (
	"context"
	"fmt"
	"log/slog"
)

// Stats holds aggregated statistics for a model's transition table.
type Stats struct {
	Prefixes       int // distinct stored contexts
	Transitions    int // unique (context, next id) links
	TotalFrequency int // sum of all link frequencies
}

// Stats returns a snapshot of the model's table sizes.
func (m *Model) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	if err := m.stmtCountPrefixes.QueryRowContext(ctx).Scan(&s.Prefixes); err != nil {
		return Stats{}, err
	}
	if err := m.stmtCountTransitions.QueryRowContext(ctx).Scan(&s.Transitions); err != nil {
		return Stats{}, err
	}
	if err := m.stmtTotalFreq.QueryRowContext(ctx).Scan(&s.TotalFrequency); err != nil {
		return Stats{}, err
	}
	return s, nil
}

// Prune removes all transitions with a frequency at or below minFreq.
// Useful for shrinking a model trained on a noisy corpus; rare
// transitions contribute little beyond one-off spellings.
func (m *Model) Prune(ctx context.Context, minFreq int) error {
	res, err := m.stmtPrune.ExecContext(ctx, minFreq)
	if err != nil {
		return fmt.Errorf("could not prune model: %w", err)
	}
	removed, _ := res.RowsAffected()

	m.logger.InfoContext(ctx, "model pruned",
		slog.Int("min_frequency", minFreq),
		slog.Int64("transitions_removed", removed),
	)
	return nil
}
