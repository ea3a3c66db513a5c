package pgjournal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive"
	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive/pgjournal/internal/adapters"
)

const (
	defaultJournalTableName    = "stream_journal"
	dialectPostgres            = "postgres"
	colSequenceNumber          = "sequence_number"
	colStreamID                = "stream_id"
	colOccurredAt              = "occurred_at"
	colPayload                 = "payload"
	castJsonb                  = "?::jsonb"
	logMsgBuildQueryFailed     = "failed to build journal query"
	logMsgDBQueryFailed        = "journal query execution failed"
	logMsgDBExecFailed         = "journal statement execution failed"
	logMsgCloseRowsFailed      = "failed to close database rows"
	logMsgScanRowFailed        = "failed to scan database row"
	logMsgEntriesLoaded        = "entries loaded"
	logMsgEntryAppended        = "entry appended"
	logMsgSchemaEnsured        = "schema ensured"
	logMsgSQLExecuted          = "executed sql for: "
	logMsgOperation            = "journal operation: "
	logAttrError               = "error"
	logAttrQuery               = "query"
	logAttrStreamID            = "stream_id"
	logAttrSequenceNumber      = "sequence_number"
	logAttrEntryCount          = "entry_count"
	logAttrDurationMS          = "duration_ms"
	logAttrTable               = "table"
	logActionLoad              = "load"
	logActionAppend            = "append"
	logActionEnsureSchema      = "ensure schema"
	sqlCreateTableTemplate     = `CREATE TABLE IF NOT EXISTS %s (sequence_number BIGSERIAL PRIMARY KEY, stream_id UUID NOT NULL, occurred_at TIMESTAMPTZ NOT NULL, payload JSONB NOT NULL)`
	sqlCreateStreamIndexFormat = `CREATE INDEX IF NOT EXISTS %s ON %s (stream_id, sequence_number)`
)

// Entry is one persisted value of a stream.
type Entry struct {
	StreamID       uuid.UUID
	SequenceNumber int64
	OccurredAt     time.Time
	PayloadJSON    []byte
}

// NewStreamID returns a new time ordered stream ID.
func NewStreamID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// Journal appends and loads stream entries in a single PostgreSQL table.
// Sequence numbers are global to the table and strictly increasing per stream.
type Journal struct {
	db        adapters.DBAdapter
	tableName string
	logger    reactive.Logger
	clock     func() time.Time
}

// Option defines a functional option for configuring Journal.
type Option func(*Journal) error

// WithTableName sets the table name. Defaults to "stream_journal".
// A dotted name like "orders.journal" addresses a table in another schema.
func WithTableName(tableName string) Option {
	return func(j *Journal) error {
		if tableName == "" {
			return ErrEmptyJournalTableName
		}

		j.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the Journal.
//
// Debug level: SQL statements with execution timing
// Info level: entry counts and durations
// Warn level: cleanup failures
// Error level: failures that abort an operation.
func WithLogger(logger reactive.Logger) Option {
	return func(j *Journal) error {
		j.logger = logger
		return nil
	}
}

// WithClock sets the time source for OccurredAt. Defaults to time.Now.
func WithClock(clock func() time.Time) Option {
	return func(j *Journal) error {
		if clock != nil {
			j.clock = clock
		}

		return nil
	}
}

// NewJournalFromPGXPool creates a Journal on a pgx pool.
func NewJournalFromPGXPool(db *pgxpool.Pool, options ...Option) (*Journal, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewPGXAdapter(db), options...)
}

// NewJournalFromPGXPoolWithReplica creates a Journal that loads from replica and appends to db.
func NewJournalFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*Journal, error) {
	if db == nil || replica == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewJournalFromSQLDB creates a Journal on a sql.DB, e.g. opened with the lib/pq driver.
func NewJournalFromSQLDB(db *sql.DB, options ...Option) (*Journal, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewSQLAdapter(db), options...)
}

// NewJournalFromSQLX creates a Journal on a sqlx.DB.
func NewJournalFromSQLX(db *sqlx.DB, options ...Option) (*Journal, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewSQLXAdapter(db), options...)
}

func newJournal(db adapters.DBAdapter, options ...Option) (*Journal, error) {
	j := &Journal{
		db:        db,
		tableName: defaultJournalTableName,
		clock:     time.Now,
	}

	for _, option := range options {
		if err := option(j); err != nil {
			return nil, err
		}
	}

	return j, nil
}

// TableName returns the name of the journal table.
func (j *Journal) TableName() string {
	return j.tableName
}

// QuotedTableName returns the table name quoted for use in raw SQL, e.g. "orders"."journal".
func (j *Journal) QuotedTableName() string {
	return quoteQualifiedIdentifier(j.tableName)
}

// EnsureSchema creates the journal table and its stream index if they do not exist.
func (j *Journal) EnsureSchema(ctx context.Context) error {
	table := quoteQualifiedIdentifier(j.tableName)
	index := pq.QuoteIdentifier(unqualifiedName(j.tableName) + "_stream_idx")

	statements := []string{
		fmt.Sprintf(sqlCreateTableTemplate, table),
		fmt.Sprintf(sqlCreateStreamIndexFormat, index, table),
	}

	for _, statement := range statements {
		start := time.Now()
		_, execErr := j.db.Exec(ctx, statement)
		j.logQueryWithDuration(statement, logActionEnsureSchema, time.Since(start))

		if execErr != nil {
			j.logError(logMsgDBExecFailed, execErr, logAttrQuery, statement)
			return errors.Join(ErrEnsuringSchemaFailed, execErr)
		}
	}

	j.logOperation(logMsgSchemaEnsured, logAttrTable, j.tableName)

	return nil
}

// Append stores payloadJSON as the next entry of the stream and returns the stored Entry.
func (j *Journal) Append(ctx context.Context, streamID uuid.UUID, payloadJSON []byte) (Entry, error) {
	if !jsoniter.ConfigFastest.Valid(payloadJSON) {
		return Entry{}, ErrInvalidPayloadJSON
	}

	sqlQuery, buildErr := j.buildInsertQuery(streamID, j.clock(), payloadJSON)
	if buildErr != nil {
		j.logError(logMsgBuildQueryFailed, buildErr, logAttrStreamID, streamID.String())
		return Entry{}, buildErr
	}

	start := time.Now()
	rows, queryErr := j.db.QueryPrimary(ctx, sqlQuery)
	duration := time.Since(start)
	j.logQueryWithDuration(sqlQuery, logActionAppend, duration)

	if queryErr != nil {
		j.logError(logMsgDBExecFailed, queryErr, logAttrQuery, sqlQuery)
		return Entry{}, errors.Join(ErrAppendingEntryFailed, queryErr)
	}
	defer j.closeRows(rows)

	entry := Entry{StreamID: streamID, PayloadJSON: payloadJSON}

	if !rows.Next() {
		err := rows.Err()
		if err == nil {
			err = sql.ErrNoRows
		}

		j.logError(logMsgDBExecFailed, err, logAttrQuery, sqlQuery)

		return Entry{}, errors.Join(ErrAppendingEntryFailed, err)
	}

	if scanErr := rows.Scan(&entry.SequenceNumber, &entry.OccurredAt); scanErr != nil {
		j.logError(logMsgScanRowFailed, scanErr)
		return Entry{}, errors.Join(ErrScanningDBRowFailed, scanErr)
	}

	j.logOperation(
		logMsgEntryAppended,
		logAttrStreamID, streamID.String(),
		logAttrSequenceNumber, entry.SequenceNumber,
		logAttrDurationMS, toMilliseconds(duration),
	)

	return entry, nil
}

// Load returns the entries of the stream with a sequence number greater than after, in sequence order.
func (j *Journal) Load(ctx context.Context, streamID uuid.UUID, after int64) ([]Entry, error) {
	sqlQuery, buildErr := j.buildSelectQuery(streamID, after)
	if buildErr != nil {
		j.logError(logMsgBuildQueryFailed, buildErr, logAttrStreamID, streamID.String())
		return nil, buildErr
	}

	start := time.Now()
	rows, queryErr := j.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	j.logQueryWithDuration(sqlQuery, logActionLoad, duration)

	if queryErr != nil {
		j.logError(logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, errors.Join(ErrQueryingEntriesFailed, queryErr)
	}
	defer j.closeRows(rows)

	entries := make([]Entry, 0)

	for rows.Next() {
		entry := Entry{StreamID: streamID}
		if scanErr := rows.Scan(&entry.SequenceNumber, &entry.OccurredAt, &entry.PayloadJSON); scanErr != nil {
			j.logError(logMsgScanRowFailed, scanErr)
			return nil, errors.Join(ErrScanningDBRowFailed, scanErr)
		}

		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		j.logError(logMsgDBQueryFailed, rowsErr, logAttrQuery, sqlQuery)
		return nil, errors.Join(ErrQueryingEntriesFailed, rowsErr)
	}

	j.logOperation(
		logMsgEntriesLoaded,
		logAttrStreamID, streamID.String(),
		logAttrEntryCount, len(entries),
		logAttrDurationMS, toMilliseconds(duration),
	)

	return entries, nil
}

func (j *Journal) buildInsertQuery(streamID uuid.UUID, occurredAt time.Time, payloadJSON []byte) (string, error) {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(j.tableName).
		Cols(colStreamID, colOccurredAt, colPayload).
		Vals(goqu.Vals{streamID.String(), occurredAt, goqu.L(castJsonb, string(payloadJSON))}).
		Returning(colSequenceNumber, colOccurredAt)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (j *Journal) buildSelectQuery(streamID uuid.UUID, after int64) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(j.tableName).
		Select(colSequenceNumber, colOccurredAt, colPayload).
		Where(
			goqu.C(colStreamID).Eq(streamID.String()),
			goqu.C(colSequenceNumber).Gt(after),
		).
		Order(goqu.I(colSequenceNumber).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// quoteQualifiedIdentifier quotes every dot separated part of name, the same way goqu splits it.
func quoteQualifiedIdentifier(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = pq.QuoteIdentifier(part)
	}

	return strings.Join(parts, ".")
}

// unqualifiedName strips the schema from name. Indexes always live in the schema of their table.
func unqualifiedName(name string) string {
	return name[strings.LastIndex(name, ".")+1:]
}

func (j *Journal) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil && j.logger != nil {
		j.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// logQueryWithDuration logs SQL statements with execution time at debug level if the logger is configured.
func (j *Journal) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	if j.logger != nil {
		j.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if the logger is configured.
func (j *Journal) logOperation(action string, args ...any) {
	if j.logger != nil {
		j.logger.Info(logMsgOperation+action, args...)
	}
}

func (j *Journal) logError(message string, err error, args ...any) {
	if j.logger != nil {
		allArgs := []any{logAttrError, err.Error()}
		allArgs = append(allArgs, args...)
		j.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
