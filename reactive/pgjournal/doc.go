// Package pgjournal persists stream values in PostgreSQL and replays them as reactive publishers.
//
// A Journal appends JSON payloads per stream ID and loads them back in sequence order.
// It runs on pgxpool.Pool, sql.DB, or sqlx.DB:
//
//	journal, err := pgjournal.NewJournalFromPGXPool(pool, pgjournal.WithLogger(logger))
//	err = journal.EnsureSchema(ctx)
//
// JournalSubject records every value before passing it on to its subscribers,
// and Replay / ReplayValues turn the recorded history into cold publishers:
//
//	streamID := pgjournal.NewStreamID()
//	subject, err := pgjournal.NewJournalSubject[Order](ctx, journal, streamID)
//	subject.Send(order)
//
//	history := pgjournal.ReplayValues[Order](ctx, journal, streamID, 0)
package pgjournal
