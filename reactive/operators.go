package reactive

// DeferredPublisher creates a fresh upstream Publisher for every subscription.
type DeferredPublisher[O any] struct {
	factory func() Publisher[O]
}

// Deferred returns a publisher that calls factory once per subscription.
func Deferred[O any](factory func() Publisher[O]) *DeferredPublisher[O] {
	return &DeferredPublisher[O]{factory: factory}
}

// Receive subscribes subscriber to a newly created upstream.
func (p *DeferredPublisher[O]) Receive(subscriber Subscriber[O]) {
	p.factory().Receive(subscriber)
}

// MapPublisher transforms every upstream value with a function.
type MapPublisher[I, O any] struct {
	upstream  Publisher[I]
	transform func(I) O
}

// Map returns a publisher that emits transform(value) for every upstream value.
func Map[I, O any](upstream Publisher[I], transform func(I) O) *MapPublisher[I, O] {
	return &MapPublisher[I, O]{upstream: upstream, transform: transform}
}

// Receive subscribes subscriber through the transformation.
func (p *MapPublisher[I, O]) Receive(subscriber Subscriber[O]) {
	p.upstream.Receive(&mapSubscriber[I, O]{downstream: subscriber, transform: p.transform})
}

type mapSubscriber[I, O any] struct {
	downstream Subscriber[O]
	transform  func(I) O
}

func (m *mapSubscriber[I, O]) ReceiveSubscription(subscription Subscription) {
	m.downstream.ReceiveSubscription(subscription)
}

func (m *mapSubscriber[I, O]) ReceiveValue(value I) Demand {
	return m.downstream.ReceiveValue(m.transform(value))
}

func (m *mapSubscriber[I, O]) ReceiveCompletion(completion Completion) {
	m.downstream.ReceiveCompletion(completion)
}

// SubscribeSubject attaches subject as a subscriber of upstream.
// The subject forwards every upstream value and the upstream Completion to its own subscribers.
func SubscribeSubject[O any](upstream Publisher[O], subject Subject[O]) {
	upstream.Receive(&subjectSubscriber[O]{subject: subject})
}

type subjectSubscriber[O any] struct {
	subject Subject[O]
}

func (s *subjectSubscriber[O]) ReceiveSubscription(subscription Subscription) {
	s.subject.SendSubscription(subscription)
}

func (s *subjectSubscriber[O]) ReceiveValue(value O) Demand {
	s.subject.Send(value)
	return DemandNone
}

func (s *subjectSubscriber[O]) ReceiveCompletion(completion Completion) {
	s.subject.SendCompletion(completion)
}
