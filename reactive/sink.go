package reactive

import (
	"sync"
)

// SinkSubscriber requests unlimited demand and hands every event to callbacks.
type SinkSubscriber[O any] struct {
	mu                sync.Mutex
	subscription      Subscription
	cancelled         bool
	receiveValue      func(O)
	receiveCompletion func(Completion)
}

// Sink subscribes to upstream with unlimited demand.
// Either callback may be nil. The returned Cancellable stops the subscription.
func Sink[O any](upstream Publisher[O], receiveValue func(O), receiveCompletion func(Completion)) Cancellable {
	sink := &SinkSubscriber[O]{
		receiveValue:      receiveValue,
		receiveCompletion: receiveCompletion,
	}

	upstream.Receive(sink)

	return sink
}

// ReceiveSubscription implements Subscriber.
func (s *SinkSubscriber[O]) ReceiveSubscription(subscription Subscription) {
	s.mu.Lock()
	if s.cancelled || s.subscription != nil {
		s.mu.Unlock()
		subscription.Cancel()

		return
	}

	s.subscription = subscription
	s.mu.Unlock()

	subscription.Request(DemandUnlimited)
}

// ReceiveValue implements Subscriber.
func (s *SinkSubscriber[O]) ReceiveValue(value O) Demand {
	if s.receiveValue != nil {
		s.receiveValue(value)
	}

	return DemandNone
}

// ReceiveCompletion implements Subscriber.
func (s *SinkSubscriber[O]) ReceiveCompletion(completion Completion) {
	s.mu.Lock()
	s.subscription = nil
	s.mu.Unlock()

	if s.receiveCompletion != nil {
		s.receiveCompletion(completion)
	}
}

// Cancel implements Cancellable.
func (s *SinkSubscriber[O]) Cancel() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}

	s.cancelled = true
	subscription := s.subscription
	s.subscription = nil
	s.mu.Unlock()

	if subscription != nil {
		subscription.Cancel()
	}
}
