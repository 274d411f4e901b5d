package names

import (
	"context"
	"math"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateManyEndToEnd(t *testing.T) {
	v := newTestVocab(t)
	g := NewGenerator(abPredictor(t, v), v, 5)
	ctx := context.Background()

	got, err := g.GenerateMany(ctx, 5, WithTemperature(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"Ab", "Ab", "Ab", "Ab", "Ab"}, got)

	// Every candidate duplicates a corpus entry, so nothing is new.
	corpus := []string{"ab"}
	fresh, err := g.GenerateManyNew(ctx, 5, corpus, WithTemperature(1))
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

func TestGenerateManyZeroRuns(t *testing.T) {
	v := newTestVocab(t)
	g := NewGenerator(abPredictor(t, v), v, 5)

	got, err := g.GenerateMany(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGenerateManySeededDeterminism(t *testing.T) {
	v := newTestVocab(t)
	mixed := predictFunc(func(_ context.Context, _ [][]float64) ([]float64, error) {
		return []float64{0, 0.4, 0.4, 0.2}, nil
	})
	g := NewGenerator(mixed, v, 5)
	ctx := context.Background()

	first, err := g.GenerateMany(ctx, 20, WithSeed(11), WithTemperature(0.9), WithMaxLength(6))
	require.NoError(t, err)
	second, err := g.GenerateMany(ctx, 20, WithSeed(11), WithTemperature(0.9), WithMaxLength(6))
	require.NoError(t, err)
	assert.Equal(t, first, second, "seeded batches must be reproducible across runs")
	assert.Len(t, first, 20)
}

func TestGenerateManyIsolatesDegenerateFailures(t *testing.T) {
	v := newTestVocab(t)

	// Sequential (shared-rand) mode makes the call order deterministic:
	// each run is a single predict call, and every second call returns a
	// broken distribution.
	var calls atomic.Int64
	flaky := predictFunc(func(_ context.Context, _ [][]float64) ([]float64, error) {
		if calls.Add(1)%2 == 0 {
			return []float64{0, math.NaN(), 0.5, 0.5}, nil
		}
		return oneHotDist(v.Size(), v.StopID()), nil
	})
	g := NewGenerator(flaky, v, 5)

	got, err := g.GenerateMany(context.Background(), 6, WithRand(newTestRand(1)))
	require.NoError(t, err, "degenerate attempts must not abort the batch")
	assert.Equal(t, []string{"", "", ""}, got, "the three odd calls succeed with an immediate stop")
}

func TestGenerateManyNewDedupesFiltersAndSorts(t *testing.T) {
	v := newTestVocab(t)
	mixed := predictFunc(func(_ context.Context, _ [][]float64) ([]float64, error) {
		return []float64{0, 0.45, 0.35, 0.2}, nil
	})
	g := NewGenerator(mixed, v, 5)
	ctx := context.Background()

	opts := []GenerateOption{WithSeed(17), WithMaxLength(4)}
	raw, err := g.GenerateMany(ctx, 60, opts...)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	// Use one generated value as a known corpus entry and confirm it is
	// filtered out case-insensitively.
	known := strings.ToLower(raw[0])
	got, err := g.GenerateManyNew(ctx, 60, []string{known}, opts...)
	require.NoError(t, err)

	assert.True(t, slices.IsSorted(got), "output must be sorted ascending")
	seen := make(map[string]struct{}, len(got))
	for _, name := range got {
		_, dup := seen[name]
		assert.False(t, dup, "duplicate %q in output", name)
		seen[name] = struct{}{}
		assert.NotEqual(t, known, strings.ToLower(name), "corpus entry leaked through the filter")
	}
}

func TestGenerateManyHighTemperatureNearUniform(t *testing.T) {
	v, err := NewVocabulary("abcd")
	require.NoError(t, err)

	// Mildly tilted over the four letters, no stop mass; at t=5 the
	// first-character distribution should be close to uniform.
	tilted := predictFunc(func(_ context.Context, _ [][]float64) ([]float64, error) {
		return []float64{0, 0.3, 0.3, 0.2, 0.2, 0}, nil
	})
	g := NewGenerator(tilted, v, 5)

	const n = 2000
	got, err := g.GenerateMany(context.Background(), n, WithTemperature(5), WithMaxLength(1), WithSeed(23))
	require.NoError(t, err)
	require.Len(t, got, n)

	counts := make(map[string]int)
	for _, name := range got {
		counts[name]++
	}
	for _, letter := range []string{"A", "B", "C", "D"} {
		assert.InDelta(t, 0.25, float64(counts[letter])/n, 0.05,
			"first-character frequency of %s", letter)
	}
}
