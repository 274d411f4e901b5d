package names

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// GenerateMany runs n independent generation attempts and returns their
// names in run order. Runs share only the read-only model and
// vocabulary; unless WithRand forces a single shared stream, they
// execute in parallel, each on its own PCG stream derived from the base
// seed and the run index, so a seeded batch is reproducible regardless
// of scheduling.
//
// A run that fails with ErrDegenerateDistribution is abandoned and
// logged; the rest of the batch continues, so the result can be shorter
// than n. Any other error aborts the batch.
func (g *Generator) GenerateMany(ctx context.Context, n int, opts ...GenerateOption) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	options := newGenerateOptions(opts)

	results := make([]string, n)
	done := make([]bool, n)

	run := func(ctx context.Context, i int, rng *rand.Rand) error {
		res, err := g.generate(ctx, options, rng)
		if err != nil {
			if errors.Is(err, ErrDegenerateDistribution) {
				g.logger.WarnContext(ctx, "generation attempt abandoned",
					slog.Int("run", i),
					slog.String("error", err.Error()),
				)
				return nil
			}
			return err
		}
		results[i] = res.Name
		done[i] = true
		return nil
	}

	if options.rng != nil {
		for i := 0; i < n; i++ {
			if err := run(ctx, i, options.rng); err != nil {
				return nil, err
			}
		}
	} else {
		if !options.seeded {
			options.seed = rand.Uint64()
		}
		eg, ctx := errgroup.WithContext(ctx)
		eg.SetLimit(runtime.GOMAXPROCS(0))
		for i := 0; i < n; i++ {
			eg.Go(func() error {
				return run(ctx, i, rand.New(rand.NewPCG(options.seed, uint64(i))))
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if done[i] {
			out = append(out, results[i])
		}
	}
	return out, nil
}

// GenerateManyNew runs GenerateMany and keeps only genuinely new names:
// exact duplicates are dropped, anything matching a corpus entry
// case-insensitively (after title-casing both sides) is dropped, and
// the remainder is returned in ascending lexicographic order. The
// result may be empty.
func (g *Generator) GenerateManyNew(ctx context.Context, n int, corpus []string, opts ...GenerateOption) ([]string, error) {
	generated, err := g.GenerateMany(ctx, n, opts...)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(corpus))
	for _, name := range corpus {
		known[strings.ToLower(TitleCase(name))] = struct{}{}
	}

	seen := make(map[string]struct{}, len(generated))
	out := make([]string, 0, len(generated))
	for _, name := range generated {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, old := known[strings.ToLower(name)]; old {
			continue
		}
		out = append(out, name)
	}
	slices.Sort(out)
	return out, nil
}
