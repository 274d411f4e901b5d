package model

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/tkellerman/onoma/pkg/names"
)

var _ names.Predictor = (*Model)(nil)

// Predict implements names.Predictor. The one-hot window is decoded
// back into its id sequence, then the longest stored context wins:
// starting from the last `order` ids, progressively shorter suffixes
// are looked up until one has recorded transitions, ending at the
// empty (unigram) context. The matching frequencies are normalized
// into a distribution over the full vocabulary width, with the pad
// slot left at zero. A completely untrained store falls back to a
// uniform distribution over the non-pad outcomes.
func (m *Model) Predict(ctx context.Context, window [][]float64) ([]float64, error) {
	v := m.vocab.Size()

	ids, err := decodeWindow(window, v)
	if err != nil {
		return nil, err
	}
	if len(ids) > m.order {
		ids = ids[len(ids)-m.order:]
	}

	for k := len(ids); k >= 0; k-- {
		counts, total, err := m.nextCounts(ctx, prefixKey(ids[len(ids)-k:]))
		if err != nil {
			return nil, fmt.Errorf("context lookup failed: %w", err)
		}
		if total == 0 {
			continue
		}
		dist := make([]float64, v)
		for id, freq := range counts {
			if id <= 0 || id >= v {
				return nil, fmt.Errorf("stored transition has out-of-range id %d", id)
			}
			dist[id] = float64(freq)
		}
		floats.Scale(1/floats.Sum(dist), dist)
		return dist, nil
	}

	// Untrained store: uniform over chars and stop.
	dist := make([]float64, v)
	for i := 1; i < v; i++ {
		dist[i] = 1 / float64(v-1)
	}
	return dist, nil
}

// decodeWindow recovers the id sequence from a left-padded one-hot
// window. All-zero rows are padding; each remaining row must be one-hot
// within the vocabulary width.
func decodeWindow(window [][]float64, v int) ([]int, error) {
	ids := make([]int, 0, len(window))
	for r, row := range window {
		if len(row) != v {
			return nil, fmt.Errorf("window row %d has width %d, vocabulary has %d", r, len(row), v)
		}
		if floats.Max(row) == 0 {
			continue // padding row
		}
		ids = append(ids, floats.MaxIdx(row))
	}
	return ids, nil
}
