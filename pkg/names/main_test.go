package names

import (
	"context"
	"math/rand/v2"
	"testing"
)

// predictFunc adapts a plain function to the Predictor interface for
// use as a test double.
type predictFunc func(ctx context.Context, window [][]float64) ([]float64, error)

func (f predictFunc) Predict(ctx context.Context, window [][]float64) ([]float64, error) {
	return f(ctx, window)
}

// newTestVocab returns the two-letter vocabulary {a: 1, b: 2, stop: 3}.
func newTestVocab(t *testing.T) *Vocabulary {
	t.Helper()
	v, err := NewVocabulary("ab")
	if err != nil {
		t.Fatalf("NewVocabulary() error = %v", err)
	}
	return v
}

func newTestRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

// windowString decodes the non-padding rows of a one-hot window back
// into the buffer string, so mocks can branch on generation state.
func windowString(t *testing.T, v *Vocabulary, window [][]float64) string {
	t.Helper()
	var runes []rune
	for _, row := range window {
		hot := -1
		for i, p := range row {
			if p != 0 {
				hot = i
				break
			}
		}
		if hot < 0 {
			continue // padding row
		}
		outcome, err := v.Decode(hot)
		if err != nil {
			t.Fatalf("Decode(%d) error = %v", hot, err)
		}
		runes = append(runes, outcome.Char)
	}
	return string(runes)
}

// oneHotDist builds a length-size distribution with all mass on id.
func oneHotDist(size, id int) []float64 {
	dist := make([]float64, size)
	dist[id] = 1
	return dist
}

// abPredictor implements the reference end-to-end scenario: with an
// empty buffer all mass is on 'a', after "a" all mass is on 'b', and
// after "ab" all mass is on the stop sentinel.
func abPredictor(t *testing.T, v *Vocabulary) predictFunc {
	t.Helper()
	return func(_ context.Context, window [][]float64) ([]float64, error) {
		switch windowString(t, v, window) {
		case "":
			return oneHotDist(v.Size(), 1), nil // 'a'
		case "a":
			return oneHotDist(v.Size(), 2), nil // 'b'
		default:
			return oneHotDist(v.Size(), v.StopID()), nil
		}
	}
}
