package names

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// ErrDegenerateDistribution is returned when a predicted distribution is
// unusable: non-finite or negative entries, a sum far from 1, or no
// probability mass left once the pad slot is excluded.
var ErrDegenerateDistribution = errors.New("names: degenerate distribution")

// distTolerance is the allowed deviation of a distribution's sum from 1.
const distTolerance = 1e-4

// Sampler draws ids from a predicted distribution with temperature
// scaling. The pad slot (index 0) is never an eligible outcome; its mass
// is dropped and the remainder renormalized before drawing.
//
// A temperature of 1 is a plain weighted draw. Higher temperatures
// flatten the distribution toward uniform over its support; lower ones
// sharpen it, and a temperature <= 0 selects the argmax
// deterministically.
type Sampler struct {
	temperature float64
	rng         *rand.Rand
}

// NewSampler creates a Sampler. A nil rng gets a freshly seeded PCG
// stream; tests that need reproducibility should inject their own.
func NewSampler(temperature float64, rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Sampler{temperature: temperature, rng: rng}
}

// Sample draws one id from dist. Entries with zero probability can
// never be selected at any temperature: log(0) = -Inf scales and
// exponentiates back to exactly zero weight rather than NaN.
func (s *Sampler) Sample(dist []float64) (int, error) {
	if err := validateDist(dist); err != nil {
		return 0, err
	}

	if s.temperature <= 0 {
		return argmaxNonPad(dist)
	}

	// Weights over the non-pad slots. At t == 1 the scaled softmax is
	// the identity, so the probabilities are used directly.
	weights := make([]float64, len(dist))
	if s.temperature == 1 {
		copy(weights[1:], dist[1:])
	} else {
		maxLog := math.Inf(-1)
		for i := 1; i < len(dist); i++ {
			lp := math.Log(dist[i]) / s.temperature
			weights[i] = lp
			if lp > maxLog {
				maxLog = lp
			}
		}
		if math.IsInf(maxLog, -1) {
			return 0, fmt.Errorf("%w: no support outside pad", ErrDegenerateDistribution)
		}
		for i := 1; i < len(dist); i++ {
			weights[i] = math.Exp(weights[i] - maxLog)
		}
	}

	total := floats.Sum(weights)
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, fmt.Errorf("%w: no support outside pad", ErrDegenerateDistribution)
	}

	draw := s.rng.Float64() * total
	for i := 1; i < len(weights); i++ {
		draw -= weights[i]
		if draw < 0 {
			return i, nil
		}
	}
	// Only reachable through floating-point underflow at the tail; the
	// last supported outcome is the correct answer then.
	for i := len(weights) - 1; i >= 1; i-- {
		if weights[i] > 0 {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: no support outside pad", ErrDegenerateDistribution)
}

func validateDist(dist []float64) error {
	if len(dist) < 2 {
		return fmt.Errorf("%w: %d outcomes", ErrDegenerateDistribution, len(dist))
	}
	for i, p := range dist {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return fmt.Errorf("%w: entry %d = %v", ErrDegenerateDistribution, i, p)
		}
	}
	if sum := floats.Sum(dist); math.Abs(sum-1) > distTolerance {
		return fmt.Errorf("%w: sum = %v", ErrDegenerateDistribution, sum)
	}
	return nil
}

func argmaxNonPad(dist []float64) (int, error) {
	best, bestP := 0, -1.0
	for i := 1; i < len(dist); i++ {
		if dist[i] > bestP {
			best, bestP = i, dist[i]
		}
	}
	if bestP <= 0 {
		return 0, fmt.Errorf("%w: no support outside pad", ErrDegenerateDistribution)
	}
	return best, nil
}
