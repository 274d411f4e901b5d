package names

import "fmt"

// DefaultWindowLen is the standard fixed window length L.
const DefaultWindowLen = 10

// Encoder turns id sequences into fixed-length, left-padded one-hot
// windows of shape L x V. The same encoder instance serves both
// training-tensor preparation and the generation loop, so the two can
// never drift apart. It is stateless and safe for concurrent use.
type Encoder struct {
	vocab  *Vocabulary
	window int
}

// NewEncoder creates an Encoder over the given vocabulary. A window
// length <= 0 selects DefaultWindowLen.
func NewEncoder(v *Vocabulary, window int) *Encoder {
	if window <= 0 {
		window = DefaultWindowLen
	}
	return &Encoder{vocab: v, window: window}
}

// WindowLen returns the fixed window length L.
func (e *Encoder) WindowLen() int {
	return e.window
}

// Encode builds the L x V one-hot window for a sequence of ids. Windows
// shorter than L are left-padded with all-zero rows; windows longer
// than L keep only the most recent L ids, preserving order. Ids outside
// the vocabulary table fail with ErrUnknownSymbol.
func (e *Encoder) Encode(ids []int) ([][]float64, error) {
	if len(ids) > e.window {
		ids = ids[len(ids)-e.window:]
	}

	v := e.vocab.Size()
	pad := e.window - len(ids)
	rows := make([][]float64, e.window)
	for i := range rows {
		row := make([]float64, v)
		if i >= pad {
			id := ids[i-pad]
			if id < 0 || id >= v {
				return nil, fmt.Errorf("%w: id %d in window", ErrUnknownSymbol, id)
			}
			row[id] = 1
		}
		rows[i] = row
	}
	return rows, nil
}

// EncodeExamples builds the training tensors for a set of examples: one
// encoded window per example plus the parallel slice of target ids.
func (e *Encoder) EncodeExamples(examples []Example) (windows [][][]float64, targets []int, err error) {
	windows = make([][][]float64, len(examples))
	targets = make([]int, len(examples))
	for i, ex := range examples {
		windows[i], err = e.Encode(ex.Window)
		if err != nil {
			return nil, nil, err
		}
		targets[i] = ex.Target
	}
	return windows, targets, nil
}
