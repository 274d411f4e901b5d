package names

import (
	"fmt"
	"math/rand/v2"
)

// Example is one training pair: the ids observed so far and the id the
// model should predict next. Examples are never mutated after creation.
type Example struct {
	Window []int
	Target int
}

// Expand converts one raw name into its ordered training pairs. The
// stop sentinel is appended to the encoded name, and for a name of k
// runes exactly k+1 pairs are produced: pair i targets the i-th symbol
// of the full sequence and carries the preceding prefix as its window
// (empty for the first pair).
func Expand(v *Vocabulary, name string) ([]Example, error) {
	ids, err := v.EncodeString(name)
	if err != nil {
		return nil, fmt.Errorf("expanding %q: %w", name, err)
	}
	full := append(ids, v.StopID())

	examples := make([]Example, len(full))
	for i, target := range full {
		examples[i] = Example{
			Window: full[:i:i],
			Target: target,
		}
	}
	return examples, nil
}

// ExpandAll expands a whole corpus into a single flat example set. When
// rng is non-nil the result is shuffled, which spreads each name's pairs
// across training batches; pair order carries no meaning either way.
func ExpandAll(v *Vocabulary, corpus []string, rng *rand.Rand) ([]Example, error) {
	var all []Example
	for _, name := range corpus {
		examples, err := Expand(v, name)
		if err != nil {
			return nil, err
		}
		all = append(all, examples...)
	}
	if rng != nil {
		rng.Shuffle(len(all), func(i, j int) {
			all[i], all[j] = all[j], all[i]
		})
	}
	return all, nil
}
