package pgjournal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive/pgjournal/internal/adapters"
)

var fixedOccurredAt = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

// fakeDB is an in-memory adapters.DBAdapter that records every statement.
// Query returns the configured rows, QueryPrimary returns the next sequence number.
type fakeDB struct {
	mu      sync.Mutex
	queries []string
	rows    [][]any
	err     error
	scanErr error
	nextSeq int64
}

func (db *fakeDB) Query(_ context.Context, query string) (adapters.DBRows, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.queries = append(db.queries, query)
	if db.err != nil {
		return nil, db.err
	}

	return &fakeRows{rows: db.rows, scanErr: db.scanErr}, nil
}

func (db *fakeDB) QueryPrimary(_ context.Context, query string) (adapters.DBRows, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.queries = append(db.queries, query)
	if db.err != nil {
		return nil, db.err
	}

	db.nextSeq++

	return &fakeRows{rows: [][]any{{db.nextSeq, fixedOccurredAt}}, scanErr: db.scanErr}, nil
}

func (db *fakeDB) Exec(_ context.Context, query string) (adapters.DBResult, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.queries = append(db.queries, query)

	return fakeResult(0), db.err
}

func (db *fakeDB) recordedQueries() []string {
	db.mu.Lock()
	defer db.mu.Unlock()

	queries := make([]string, len(db.queries))
	copy(queries, db.queries)

	return queries
}

type fakeRows struct {
	rows    [][]any
	current int
	scanErr error
	closed  bool
}

func (r *fakeRows) Next() bool {
	if r.current >= len(r.rows) {
		return false
	}

	r.current++

	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}

	row := r.rows[r.current-1]
	if len(dest) != len(row) {
		return errors.New("column count mismatch")
	}

	for i, d := range dest {
		switch target := d.(type) {
		case *int64:
			*target = row[i].(int64)
		case *time.Time:
			*target = row[i].(time.Time)
		case *[]byte:
			*target = row[i].([]byte)
		default:
			return errors.New("unsupported scan target")
		}
	}

	return nil
}

func (r *fakeRows) Err() error {
	return nil
}

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

type fakeResult int64

func (r fakeResult) RowsAffected() (int64, error) {
	return int64(r), nil
}
