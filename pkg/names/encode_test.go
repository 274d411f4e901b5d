package names

import (
	"errors"
	"testing"
)

// assertOneHot checks that row has a single 1 at want and 0 elsewhere.
func assertOneHot(t *testing.T, row []float64, want int) {
	t.Helper()
	for i, p := range row {
		switch {
		case i == want && p != 1:
			t.Errorf("row[%d] = %v, want 1", i, p)
		case i != want && p != 0:
			t.Errorf("row[%d] = %v, want 0", i, p)
		}
	}
}

func assertZeroRow(t *testing.T, row []float64) {
	t.Helper()
	for i, p := range row {
		if p != 0 {
			t.Errorf("padding row[%d] = %v, want 0", i, p)
		}
	}
}

func TestEncodePadding(t *testing.T) {
	v := newTestVocab(t)
	e := NewEncoder(v, 5)

	window, err := e.Encode([]int{1, 2})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(window) != 5 {
		t.Fatalf("window has %d rows, want 5", len(window))
	}
	for _, row := range window {
		if len(row) != v.Size() {
			t.Fatalf("row width = %d, want %d", len(row), v.Size())
		}
	}

	// First L-m rows all-zero, then the ids in order.
	assertZeroRow(t, window[0])
	assertZeroRow(t, window[1])
	assertZeroRow(t, window[2])
	assertOneHot(t, window[3], 1)
	assertOneHot(t, window[4], 2)
}

func TestEncodeEmptyWindow(t *testing.T) {
	v := newTestVocab(t)
	e := NewEncoder(v, 3)

	window, err := e.Encode(nil)
	if err != nil {
		t.Fatalf("Encode(nil) error = %v", err)
	}
	for _, row := range window {
		assertZeroRow(t, row)
	}
}

func TestEncodeTruncatesKeepingMostRecent(t *testing.T) {
	v := newTestVocab(t)
	e := NewEncoder(v, 3)

	// Oldest ids drop; order of the survivors is preserved.
	window, err := e.Encode([]int{1, 1, 2, 1, 2})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	assertOneHot(t, window[0], 2)
	assertOneHot(t, window[1], 1)
	assertOneHot(t, window[2], 2)
}

func TestEncodeRejectsOutOfRangeIDs(t *testing.T) {
	v := newTestVocab(t)
	e := NewEncoder(v, 3)

	for _, ids := range [][]int{{-1}, {v.Size()}, {1, 99}} {
		if _, err := e.Encode(ids); !errors.Is(err, ErrUnknownSymbol) {
			t.Errorf("Encode(%v) error = %v, want ErrUnknownSymbol", ids, err)
		}
	}
}

func TestEncoderDefaultWindowLen(t *testing.T) {
	e := NewEncoder(newTestVocab(t), 0)
	if e.WindowLen() != DefaultWindowLen {
		t.Errorf("WindowLen() = %d, want %d", e.WindowLen(), DefaultWindowLen)
	}
}

func TestEncodeExamples(t *testing.T) {
	v := newTestVocab(t)
	e := NewEncoder(v, 4)

	examples, err := Expand(v, "ab")
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	windows, targets, err := e.EncodeExamples(examples)
	if err != nil {
		t.Fatalf("EncodeExamples() error = %v", err)
	}
	if len(windows) != 3 || len(targets) != 3 {
		t.Fatalf("EncodeExamples() returned %d windows and %d targets, want 3 and 3", len(windows), len(targets))
	}

	// The training windows must match what the inference loop would
	// encode for the same prefixes.
	for i, ex := range examples {
		direct, err := e.Encode(ex.Window)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		for r := range direct {
			for c := range direct[r] {
				if windows[i][r][c] != direct[r][c] {
					t.Fatalf("training window %d differs from inference encoding at [%d][%d]", i, r, c)
				}
			}
		}
		if targets[i] != ex.Target {
			t.Errorf("target %d = %d, want %d", i, targets[i], ex.Target)
		}
	}
}
