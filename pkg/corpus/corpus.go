// Package corpus handles ingestion and cleaning of raw name lists
// before they reach the core pipeline: trimming, lowercasing, dropping
// entries that are too short or contain characters outside the
// vocabulary, and deduplicating. A loaded Corpus is immutable and
// serves both as training input and as the novelty filter for
// generated output.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tkellerman/onoma/pkg/names"
)

// minNameLen is the shortest entry worth training on; single characters
// carry no transition information beyond their own stop.
const minNameLen = 2

// Corpus is an ordered collection of distinct, validated names.
type Corpus struct {
	entries []string
	lookup  map[string]struct{} // case-folded
	skipped int
}

// Load reads newline-delimited names from r, cleaning each line: outer
// whitespace is trimmed and the name lowercased, then entries shorter
// than two runes or containing characters outside the vocabulary are
// dropped (counted in Skipped). Duplicates keep their first position.
func Load(r io.Reader, vocab *names.Vocabulary) (*Corpus, error) {
	c := &Corpus{lookup: make(map[string]struct{})}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		name := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if len([]rune(name)) < minNameLen {
			if name != "" {
				c.skipped++
			}
			continue
		}
		if _, err := vocab.EncodeString(name); err != nil {
			c.skipped++
			continue
		}
		if _, dup := c.lookup[name]; dup {
			continue
		}
		c.lookup[name] = struct{}{}
		c.entries = append(c.entries, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}
	return c, nil
}

// LoadFile is a convenience wrapper around Load for a file on disk.
func LoadFile(path string, vocab *names.Vocabulary) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)
	return Load(f, vocab)
}

// Names returns the cleaned entries in their original order. The
// returned slice must not be modified.
func (c *Corpus) Names() []string {
	return c.entries
}

// Len returns the number of distinct entries.
func (c *Corpus) Len() int {
	return len(c.entries)
}

// Skipped returns how many non-empty lines were dropped during loading
// for being too short or containing out-of-vocabulary characters.
func (c *Corpus) Skipped() int {
	return c.skipped
}

// Contains reports whether name matches a corpus entry, ignoring case.
func (c *Corpus) Contains(name string) bool {
	_, ok := c.lookup[strings.ToLower(name)]
	return ok
}
