package names

import (
	"errors"
	"fmt"
)

// ErrUnknownSymbol is returned when a character is encoded or an id is
// decoded outside the fixed vocabulary. It indicates an upstream
// validation failure, not a recoverable runtime condition.
var ErrUnknownSymbol = errors.New("names: unknown symbol")

const (
	// PadID is the reserved id used to left-fill windows shorter than the
	// encoder's length. It never maps to a character and is never a valid
	// sampling outcome or training target.
	PadID = 0
)

// OutcomeKind tags the three possible meanings of a vocabulary id.
type OutcomeKind int

const (
	// KindPad marks the reserved padding slot (id 0).
	KindPad OutcomeKind = iota
	// KindChar marks an id that maps to a real character.
	KindChar
	// KindStop marks the end-of-name sentinel.
	KindStop
)

// Outcome is the tagged meaning of a single vocabulary id. Char is only
// set when Kind == KindChar.
type Outcome struct {
	Kind OutcomeKind
	Char rune
}

// defaultSymbols is the character inventory for western proper names:
// ASCII lowercase, the common diacritic letters, and the period, hyphen
// and space that occur inside multi-part names.
const defaultSymbols = "abcdefghijklmnopqrstuvwxyzàáâäçèéêëìíîïñòóôöùúûü.- "

// Vocabulary is a fixed bijection between characters and positive
// integer ids, plus the reserved pad slot (id 0) and the stop sentinel
// (the highest id). It is read-only after construction and safe for
// concurrent use.
type Vocabulary struct {
	ids      map[rune]int
	outcomes []Outcome // indexed by id: [0] pad, [1..n] chars, [n+1] stop
}

// NewVocabulary builds a Vocabulary from an ordered set of symbols.
// Ids are assigned in symbol order starting at 1; the stop sentinel
// takes the id after the last symbol. Duplicate symbols are an error.
func NewVocabulary(symbols string) (*Vocabulary, error) {
	runes := []rune(symbols)
	if len(runes) == 0 {
		return nil, errors.New("names: empty symbol set")
	}

	v := &Vocabulary{
		ids:      make(map[rune]int, len(runes)),
		outcomes: make([]Outcome, 0, len(runes)+2),
	}
	v.outcomes = append(v.outcomes, Outcome{Kind: KindPad})
	for _, r := range runes {
		if _, ok := v.ids[r]; ok {
			return nil, fmt.Errorf("names: duplicate symbol %q", r)
		}
		v.ids[r] = len(v.outcomes)
		v.outcomes = append(v.outcomes, Outcome{Kind: KindChar, Char: r})
	}
	v.outcomes = append(v.outcomes, Outcome{Kind: KindStop})
	return v, nil
}

// DefaultVocabulary returns the standard name vocabulary.
func DefaultVocabulary() *Vocabulary {
	v, err := NewVocabulary(defaultSymbols)
	if err != nil {
		panic(err) // defaultSymbols is a compile-time constant
	}
	return v
}

// Encode maps a character to its id. Characters outside the vocabulary
// fail with ErrUnknownSymbol.
func (v *Vocabulary) Encode(r rune) (int, error) {
	id, ok := v.ids[r]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSymbol, r)
	}
	return id, nil
}

// EncodeString encodes every rune of s, in order.
func (v *Vocabulary) EncodeString(s string) ([]int, error) {
	ids := make([]int, 0, len(s))
	for _, r := range s {
		id, err := v.Encode(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Decode maps an id back to its tagged Outcome. The pad id has no
// character mapping and decoding it fails, as does any id outside the
// table.
func (v *Vocabulary) Decode(id int) (Outcome, error) {
	if id <= PadID || id >= len(v.outcomes) {
		return Outcome{}, fmt.Errorf("%w: id %d", ErrUnknownSymbol, id)
	}
	return v.outcomes[id], nil
}

// StopID returns the id of the stop sentinel.
func (v *Vocabulary) StopID() int {
	return len(v.outcomes) - 1
}

// Size returns V, the width of one-hot rows and predicted
// distributions: the number of symbols plus the stop sentinel plus the
// pad slot.
func (v *Vocabulary) Size() int {
	return len(v.outcomes)
}

// Symbols returns the character symbols in id order, excluding pad and
// stop.
func (v *Vocabulary) Symbols() []rune {
	out := make([]rune, 0, len(v.outcomes)-2)
	for _, o := range v.outcomes {
		if o.Kind == KindChar {
			out = append(out, o.Char)
		}
	}
	return out
}
