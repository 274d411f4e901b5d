package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/tkellerman/onoma/pkg/names"
)

// orderKey is the meta table entry recording the model's n-gram order.
const orderKey = "order"

// SetupSchema initializes the tables for an n-gram model in the
// provided database. It is idempotent and safe to call on an
// already-initialized database.
func SetupSchema(db *sql.DB) error {
	const (
		schemaMeta = `
CREATE TABLE IF NOT EXISTS ngram_meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
		schemaTransitions = `
CREATE TABLE IF NOT EXISTS ngram_transitions (
    prefix_text TEXT NOT NULL,
    next_id INTEGER NOT NULL,
    frequency INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (prefix_text, next_id)
);
`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaMeta); err != nil {
		return fmt.Errorf("could not create meta schema: %w", err)
	}
	if _, err = tx.Exec(schemaTransitions); err != nil {
		return fmt.Errorf("could not create transitions schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// Model is a database-backed character n-gram predictor. It holds the
// database connection, the vocabulary, and prepared SQL statements for
// the hot paths. Reads are safe for concurrent use.
type Model struct {
	db                   *sql.DB
	vocab                *names.Vocabulary
	order                int
	stmtGetNext          *sql.Stmt
	stmtCountTransitions *sql.Stmt
	stmtCountPrefixes    *sql.Stmt
	stmtTotalFreq        *sql.Stmt
	stmtPrune            *sql.Stmt
	logger               *slog.Logger
}

// New creates a Model over an initialized database. The order (number
// of preceding character ids used as context) is persisted in the meta
// table on first use; reopening a database with a different order is an
// error.
func New(db *sql.DB, vocab *names.Vocabulary, order int) (*Model, error) {
	if order < 1 {
		return nil, fmt.Errorf("model order must be >= 1, got %d", order)
	}

	var stored string
	err := db.QueryRow(`SELECT value FROM ngram_meta WHERE key = ?;`, orderKey).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err = db.Exec(`INSERT INTO ngram_meta (key, value) VALUES (?, ?);`, orderKey, strconv.Itoa(order)); err != nil {
			return nil, fmt.Errorf("could not store model order: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("could not read model order: %w", err)
	default:
		storedOrder, convErr := strconv.Atoi(stored)
		if convErr != nil {
			return nil, fmt.Errorf("corrupt model order %q: %w", stored, convErr)
		}
		if storedOrder != order {
			return nil, fmt.Errorf("database was trained with order %d, requested %d", storedOrder, order)
		}
	}

	stmtGetNext, err := db.Prepare(`SELECT next_id, frequency FROM ngram_transitions WHERE prefix_text = ?;`)
	if err != nil {
		return nil, err
	}
	stmtCountTransitions, err := db.Prepare(`SELECT COUNT(*) FROM ngram_transitions;`)
	if err != nil {
		return nil, err
	}
	stmtCountPrefixes, err := db.Prepare(`SELECT COUNT(DISTINCT prefix_text) FROM ngram_transitions;`)
	if err != nil {
		return nil, err
	}
	stmtTotalFreq, err := db.Prepare(`SELECT coalesce(SUM(frequency), 0) FROM ngram_transitions;`)
	if err != nil {
		return nil, err
	}
	stmtPrune, err := db.Prepare(`DELETE FROM ngram_transitions WHERE frequency <= ?;`)
	if err != nil {
		return nil, err
	}

	return &Model{
		db:                   db,
		vocab:                vocab,
		order:                order,
		stmtGetNext:          stmtGetNext,
		stmtCountTransitions: stmtCountTransitions,
		stmtCountPrefixes:    stmtCountPrefixes,
		stmtTotalFreq:        stmtTotalFreq,
		stmtPrune:            stmtPrune,
		logger:               slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Order returns the n-gram order the model was created with.
func (m *Model) Order() int {
	return m.order
}

// Close releases the prepared SQL statements held by the Model. It does
// not close the underlying database.
func (m *Model) Close() {
	_ = m.stmtGetNext.Close()
	_ = m.stmtCountTransitions.Close()
	_ = m.stmtCountPrefixes.Close()
	_ = m.stmtTotalFreq.Close()
	_ = m.stmtPrune.Close()
}

// SetLogger sets the logger for the Model. By default, all logs are
// discarded.
func (m *Model) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// prefixKey renders a context id sequence as the stable text key used
// in the transitions table. The empty context is the empty string.
func prefixKey(ids []int) string {
	var buf []byte
	for i, id := range ids {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendInt(buf, int64(id), 10)
	}
	return string(buf)
}

// nextCounts loads the transition frequencies recorded for one prefix
// key. A missing prefix yields a nil slice and zero total.
func (m *Model) nextCounts(ctx context.Context, key string) (counts map[int]int, total int, err error) {
	rows, err := m.stmtGetNext.QueryContext(ctx, key)
	if err != nil {
		return nil, 0, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	counts = make(map[int]int)
	for rows.Next() {
		var id, freq int
		if err = rows.Scan(&id, &freq); err != nil {
			return nil, 0, err
		}
		counts[id] = freq
		total += freq
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}
	return counts, total, nil
}
