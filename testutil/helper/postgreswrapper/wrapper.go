package postgreswrapper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive/pgjournal"
	"github.com/AntonStoeckl/reactive-streams-extras-go/testutil/config"
)

// Adapter type constants, selected with the ADAPTER_TYPE environment variable.
const (
	typePGXPool = "pgxpool"
	typeSQLDB   = "sqldb"
	typeSQLX    = "sqlx"
)

// TestTableName is the journal table used by integration tests.
const TestTableName = "stream_journal_test"

// Wrapper abstracts over the different database adapter types.
type Wrapper interface {
	GetJournal() *pgjournal.Journal
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing.
type PGXPoolWrapper struct {
	pool    *pgxpool.Pool
	journal *pgjournal.Journal
}

// GetJournal returns the Journal under test.
func (w *PGXPoolWrapper) GetJournal() *pgjournal.Journal {
	return w.journal
}

// Close closes the pool.
func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing.
type SQLDBWrapper struct {
	db      *sql.DB
	journal *pgjournal.Journal
}

// GetJournal returns the Journal under test.
func (w *SQLDBWrapper) GetJournal() *pgjournal.Journal {
	return w.journal
}

// Close closes the database handle.
func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing.
type SQLXWrapper struct {
	db      *sqlx.DB
	journal *pgjournal.Journal
}

// GetJournal returns the Journal under test.
func (w *SQLXWrapper) GetJournal() *pgjournal.Journal {
	return w.journal
}

// Close closes the database handle.
func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// CreateWrapperWithTestConfig creates the wrapper selected by ADAPTER_TYPE on a clean test table.
// The test is skipped when no test database is configured.
func CreateWrapperWithTestConfig(t testing.TB, options ...pgjournal.Option) Wrapper {
	t.Helper()

	ctx := context.Background()
	options = append([]pgjournal.Option{pgjournal.WithTableName(TestTableName)}, options...)

	var wrapper Wrapper

	switch adapterTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE")); adapterTypeFromEnv {
	case typePGXPool, "":
		poolConfig, err := config.PostgresPGXPoolConfig()
		skipWithoutDatabase(t, err)

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		require.NoError(t, err, "error connecting to DB pool in test setup")

		journal, err := pgjournal.NewJournalFromPGXPool(pool, options...)
		require.NoError(t, err)

		wrapper = &PGXPoolWrapper{pool: pool, journal: journal}

	case typeSQLDB:
		db, err := config.PostgresSQLDBConfig(ctx)
		skipWithoutDatabase(t, err)

		journal, err := pgjournal.NewJournalFromSQLDB(db, options...)
		require.NoError(t, err)

		wrapper = &SQLDBWrapper{db: db, journal: journal}

	case typeSQLX:
		db, err := config.PostgresSQLXConfig(ctx)
		skipWithoutDatabase(t, err)

		journal, err := pgjournal.NewJournalFromSQLX(db, options...)
		require.NoError(t, err)

		wrapper = &SQLXWrapper{db: db, journal: journal}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterTypeFromEnv))
	}

	require.NoError(t, wrapper.GetJournal().EnsureSchema(ctx), "error creating the journal table")
	CleanUp(t, wrapper)
	t.Cleanup(wrapper.Close)

	return wrapper
}

// CleanUp truncates the journal table of the given wrapper.
func CleanUp(t testing.TB, wrapper Wrapper) {
	t.Helper()

	query := "TRUNCATE TABLE " + wrapper.GetJournal().QuotedTableName() + " RESTART IDENTITY"

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err := w.pool.Exec(context.Background(), query)
		require.NoError(t, err, "error cleaning up the journal table")

	case *SQLDBWrapper:
		_, err := w.db.Exec(query)
		require.NoError(t, err, "error cleaning up the journal table")

	case *SQLXWrapper:
		_, err := w.db.Exec(query)
		require.NoError(t, err, "error cleaning up the journal table")

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}
}

// CountEntriesInDB returns the number of rows in the journal table of the given wrapper.
func CountEntriesInDB(t testing.TB, wrapper Wrapper) int {
	t.Helper()

	query := "SELECT count(*) FROM " + wrapper.GetJournal().QuotedTableName()

	var cnt int
	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		err = w.pool.QueryRow(context.Background(), query).Scan(&cnt)

	case *SQLDBWrapper:
		err = w.db.QueryRow(query).Scan(&cnt)

	case *SQLXWrapper:
		err = w.db.Get(&cnt, query)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	require.NoError(t, err, "error counting journal entries")

	return cnt
}

func skipWithoutDatabase(t testing.TB, err error) {
	t.Helper()

	if errors.Is(err, config.ErrNoPostgresDSN) {
		t.Skip(err.Error())
	}

	require.NoError(t, err, "error configuring the test database")
}
