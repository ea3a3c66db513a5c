package pgjournal

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive"
)

var jsonValues = jsoniter.ConfigCompatibleWithStandardLibrary

// JournalSubject is a Subject that appends every sent value to a Journal before multicasting it.
//
// A value that cannot be encoded or appended terminates the subject with that failure,
// so subscribers never observe a value that was not persisted.
// Sends after termination are ignored.
type JournalSubject[O any] struct {
	ctx      context.Context
	journal  *Journal
	streamID uuid.UUID
	subject  *reactive.PassthroughSubject[O]

	mu                 sync.Mutex
	terminated         bool
	lastSequenceNumber int64
}

// NewJournalSubject creates a JournalSubject that records into streamID.
// ctx bounds every database call made by Send.
func NewJournalSubject[O any](ctx context.Context, journal *Journal, streamID uuid.UUID) (*JournalSubject[O], error) {
	if journal == nil {
		return nil, ErrNilJournal
	}

	if ctx == nil {
		ctx = context.Background()
	}

	return &JournalSubject[O]{
		ctx:      ctx,
		journal:  journal,
		streamID: streamID,
		subject:  reactive.NewPassthroughSubject[O](),
	}, nil
}

// StreamID returns the ID of the stream the subject records into.
func (s *JournalSubject[O]) StreamID() uuid.UUID {
	return s.streamID
}

// LastSequenceNumber returns the sequence number of the last recorded value, or 0 if nothing was recorded.
func (s *JournalSubject[O]) LastSequenceNumber() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastSequenceNumber
}

// Receive implements reactive.Publisher.
func (s *JournalSubject[O]) Receive(subscriber reactive.Subscriber[O]) {
	s.subject.Receive(subscriber)
}

// Send records value and delivers it to all subscribers with outstanding demand.
func (s *JournalSubject[O]) Send(value O) {
	if err := s.record(value); err != nil {
		s.subject.SendCompletion(reactive.Failure(err))
		return
	}

	s.subject.Send(value)
}

// SendCompletion terminates the subject. Nothing is recorded for the completion.
func (s *JournalSubject[O]) SendCompletion(completion reactive.Completion) {
	s.mu.Lock()
	s.terminated = true
	s.mu.Unlock()

	s.subject.SendCompletion(completion)
}

// SendSubscription implements reactive.Subject.
func (s *JournalSubject[O]) SendSubscription(subscription reactive.Subscription) {
	s.subject.SendSubscription(subscription)
}

// errAlreadyTerminated is never surfaced to subscribers; the subject has completed already.
var errAlreadyTerminated = errors.New("journal subject terminated")

func (s *JournalSubject[O]) record(value O) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminated {
		return errAlreadyTerminated
	}

	payload, err := jsonValues.Marshal(value)
	if err != nil {
		s.terminated = true
		return errors.Join(ErrEncodingValueFailed, err)
	}

	entry, err := s.journal.Append(s.ctx, s.streamID, payload)
	if err != nil {
		s.terminated = true
		return err
	}

	s.lastSequenceNumber = entry.SequenceNumber

	return nil
}

// Ensure JournalSubject implements reactive.Subject.
var _ reactive.Subject[int] = (*JournalSubject[int])(nil)
