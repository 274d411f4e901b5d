package names

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"unicode"
)

// Predictor is the model boundary: given an L x V one-hot window it
// returns a probability distribution over the V vocabulary slots for
// the next id. Implementations must be deterministic for fixed weights
// and window, and safe for concurrent calls; training and persistence
// are their own concern.
type Predictor interface {
	Predict(ctx context.Context, window [][]float64) ([]float64, error)
}

// StopReason records why a generation run terminated.
type StopReason int

const (
	// StopReasonToken means the model drew the stop sentinel.
	StopReasonToken StopReason = iota
	// StopReasonLength means the buffer reached the maximum length.
	// This is a normal outcome, not a failure.
	StopReasonLength
)

func (r StopReason) String() string {
	switch r {
	case StopReasonToken:
		return "stop_token"
	case StopReasonLength:
		return "max_length"
	default:
		return "unknown"
	}
}

// DefaultMaxLength is the buffer cap that guarantees termination.
const DefaultMaxLength = 30

// Result is one finalized generation run.
type Result struct {
	Name   string
	Reason StopReason
}

// generateOptions is used by the generate functions to configure
// default options.
type generateOptions struct {
	temperature float64
	maxLength   int
	rng         *rand.Rand
	seed        uint64
	seeded      bool
}

// GenerateOption configures a generation run. Used as a variadic
// argument on Generate, GenerateMany and GenerateManyNew.
type GenerateOption func(*generateOptions)

// WithTemperature adjusts the randomness of character selection.
// A value of 1.0 samples the model's distribution as-is. Values > 1.0
// flatten it toward uniform, values < 1.0 sharpen it, and a value of
// 0 or less always picks the most probable character.
func WithTemperature(t float64) GenerateOption {
	return func(o *generateOptions) { o.temperature = t }
}

// WithMaxLength caps the number of characters in a generated name.
// Values <= 0 fall back to DefaultMaxLength.
func WithMaxLength(n int) GenerateOption {
	return func(o *generateOptions) {
		if n > 0 {
			o.maxLength = n
		}
	}
}

// WithRand injects an explicit random source. Batch runs sharing one
// source execute sequentially so the draw sequence stays well-defined.
func WithRand(rng *rand.Rand) GenerateOption {
	return func(o *generateOptions) { o.rng = rng }
}

// WithSeed makes runs reproducible without sharing a source: each run
// in a batch derives its own PCG stream from the seed and its run
// index, so results are stable regardless of scheduling.
func WithSeed(seed uint64) GenerateOption {
	return func(o *generateOptions) {
		o.seed = seed
		o.seeded = true
	}
}

func newGenerateOptions(opts []GenerateOption) *generateOptions {
	options := &generateOptions{
		temperature: 1.0,
		maxLength:   DefaultMaxLength,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Generator produces candidate names by repeatedly querying a Predictor
// over the encoded buffer and sampling the next character. It holds
// only read-only state and is safe for concurrent runs.
type Generator struct {
	model  Predictor
	vocab  *Vocabulary
	enc    *Encoder
	logger *slog.Logger
}

// NewGenerator creates a Generator over a model and vocabulary, using a
// shared Encoder with window length windowLen (<= 0 selects
// DefaultWindowLen).
func NewGenerator(model Predictor, vocab *Vocabulary, windowLen int) *Generator {
	return &Generator{
		model:  model,
		vocab:  vocab,
		enc:    NewEncoder(vocab, windowLen),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for the Generator. By default, all logs are
// discarded.
func (g *Generator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// Encoder returns the shared window encoder, for callers preparing
// training tensors with the exact encoding the generation loop uses.
func (g *Generator) Encoder() *Encoder {
	return g.enc
}

// Generate runs one autoregressive generation: encode the buffer,
// query the model, sample one character, and either append it or stop.
// The run ends when the stop sentinel is drawn or the buffer reaches
// the maximum length, whichever comes first, and the buffer is then
// finalized with TitleCase. The name may be empty if the stop sentinel
// is drawn immediately.
func (g *Generator) Generate(ctx context.Context, opts ...GenerateOption) (Result, error) {
	options := newGenerateOptions(opts)
	return g.generate(ctx, options, g.runRand(options, 0))
}

// runRand picks the random source for run index i under the given
// options.
func (g *Generator) runRand(options *generateOptions, i uint64) *rand.Rand {
	if options.rng != nil {
		return options.rng
	}
	if options.seeded {
		return rand.New(rand.NewPCG(options.seed, i))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func (g *Generator) generate(ctx context.Context, options *generateOptions, rng *rand.Rand) (Result, error) {
	sampler := NewSampler(options.temperature, rng)

	buf := make([]int, 0, options.maxLength)
	runes := make([]rune, 0, options.maxLength)
	reason := StopReasonLength

	for len(buf) < options.maxLength {
		window, err := g.enc.Encode(buf)
		if err != nil {
			return Result{}, err
		}

		dist, err := g.model.Predict(ctx, window)
		if err != nil {
			return Result{}, fmt.Errorf("predict failed at position %d: %w", len(buf), err)
		}
		if len(dist) != g.vocab.Size() {
			return Result{}, fmt.Errorf("%w: got %d outcomes, vocabulary has %d",
				ErrDegenerateDistribution, len(dist), g.vocab.Size())
		}

		id, err := sampler.Sample(dist)
		if err != nil {
			return Result{}, fmt.Errorf("sampling at position %d: %w", len(buf), err)
		}

		outcome, err := g.vocab.Decode(id)
		if err != nil {
			return Result{}, fmt.Errorf("%w: sampled undecodable id %d", ErrDegenerateDistribution, id)
		}
		if outcome.Kind == KindStop {
			reason = StopReasonToken
			break
		}

		buf = append(buf, id)
		runes = append(runes, outcome.Char)
	}

	name := TitleCase(string(runes))
	g.logger.DebugContext(ctx, "generation finished",
		slog.String("name", name),
		slog.Int("length", len(buf)),
		slog.String("reason", reason.String()),
	)
	return Result{Name: name, Reason: reason}, nil
}

// TitleCase normalizes a raw generated buffer into presentation form:
// the whole string is lowercased, then the first letter of every
// whitespace-delimited token is uppercased. Hyphenated parts count as
// one token.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	startOfToken := true
	for _, r := range strings.ToLower(s) {
		if startOfToken && !unicode.IsSpace(r) {
			r = unicode.ToUpper(r)
		}
		startOfToken = unicode.IsSpace(r)
		b.WriteRune(r)
	}
	return b.String()
}
