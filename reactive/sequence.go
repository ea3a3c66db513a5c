package reactive

import (
	"sync"
)

// SequencePublisher emits a fixed list of values on demand and then terminates with a fixed Completion.
// Every subscription replays the full list.
type SequencePublisher[O any] struct {
	values     []O
	completion Completion
}

// Sequence creates a publisher that emits values and then finishes.
func Sequence[O any](values ...O) *SequencePublisher[O] {
	return &SequencePublisher[O]{values: values, completion: Finished()}
}

// SequenceFailing creates a publisher that emits values and then fails with err.
func SequenceFailing[O any](err error, values ...O) *SequencePublisher[O] {
	return &SequencePublisher[O]{values: values, completion: Failure(err)}
}

// Empty creates a publisher that finishes without emitting a value.
func Empty[O any]() *SequencePublisher[O] {
	return Sequence[O]()
}

// Fail creates a publisher that fails with err without emitting a value.
func Fail[O any](err error) *SequencePublisher[O] {
	return SequenceFailing[O](err)
}

// Receive starts a new subscription that replays the sequence.
func (p *SequencePublisher[O]) Receive(subscriber Subscriber[O]) {
	subscription := &sequenceSubscription[O]{
		values:     p.values,
		completion: p.completion,
		downstream: subscriber,
	}

	subscriber.ReceiveSubscription(subscription)
	subscription.drain(DemandNone)
}

type sequenceSubscription[O any] struct {
	mu         sync.Mutex
	values     []O
	next       int
	completion Completion
	downstream Subscriber[O]
	demand     Demand
	emitting   bool
	done       bool
}

// Request adds n to the outstanding demand and emits as many values as it allows.
func (s *sequenceSubscription[O]) Request(n Demand) {
	s.drain(n)
}

// Cancel stops the emission; no further values or completion are delivered.
func (s *sequenceSubscription[O]) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.done = true
}

// drain emits values while there is demand. Reentrant calls from within ReceiveValue
// only add demand; the outer loop picks it up.
func (s *sequenceSubscription[O]) drain(n Demand) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}

	s.demand = s.demand.Add(n)
	if s.emitting {
		s.mu.Unlock()
		return
	}

	s.emitting = true

	for {
		if s.done {
			s.emitting = false
			s.mu.Unlock()

			return
		}

		if s.next >= len(s.values) {
			s.done = true
			s.emitting = false
			s.mu.Unlock()

			s.downstream.ReceiveCompletion(s.completion)

			return
		}

		if s.demand <= 0 {
			s.emitting = false
			s.mu.Unlock()

			return
		}

		value := s.values[s.next]
		s.next++
		s.demand = s.demand.decrement()
		s.mu.Unlock()

		additional := s.downstream.ReceiveValue(value)

		s.mu.Lock()
		s.demand = s.demand.Add(additional)
	}
}
