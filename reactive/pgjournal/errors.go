package pgjournal

import "errors"

// ErrEmptyJournalTableName is returned by WithTableName for an empty name.
var ErrEmptyJournalTableName = errors.New("journal table name must not be empty")

// ErrNilDatabaseConnection is returned by the constructors when the connection is nil.
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")

// ErrNilJournal is returned when a journal based component is created without a Journal.
var ErrNilJournal = errors.New("journal must not be nil")

// ErrInvalidPayloadJSON is returned by Append when the payload is not valid JSON.
var ErrInvalidPayloadJSON = errors.New("payload must be valid JSON")

// ErrBuildingQueryFailed is returned when a SQL statement could not be built.
var ErrBuildingQueryFailed = errors.New("building query failed")

// ErrQueryingEntriesFailed is returned when loading entries failed in the database.
var ErrQueryingEntriesFailed = errors.New("querying journal entries failed")

// ErrAppendingEntryFailed is returned when inserting an entry failed in the database.
var ErrAppendingEntryFailed = errors.New("appending journal entry failed")

// ErrScanningDBRowFailed is returned when a result row could not be scanned.
var ErrScanningDBRowFailed = errors.New("scanning db row failed")

// ErrEncodingValueFailed is returned when a value could not be encoded as JSON.
var ErrEncodingValueFailed = errors.New("encoding value failed")

// ErrDecodingValueFailed is returned when a payload could not be decoded into a value.
var ErrDecodingValueFailed = errors.New("decoding value failed")

// ErrEnsuringSchemaFailed is returned when the journal table could not be created.
var ErrEnsuringSchemaFailed = errors.New("ensuring journal schema failed")
