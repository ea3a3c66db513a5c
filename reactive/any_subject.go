package reactive

// EraseToAnySubject wraps subject with a type eraser.
//
// Use it to expose a subject across API boundaries without exposing its concrete type,
// so the underlying implementation can change without affecting callers.
// Erasing an *AnySubject again does not add a layer of indirection:
// the returned handle shares the box of the given one.
func EraseToAnySubject[O any](subject Subject[O]) *AnySubject[O] {
	return NewAnySubject[O](subject)
}

// AnySubject is a type-erasing Subject.
//
// Behavior is identical to the wrapped subject for every operation:
// multicast fan-out, ordering and termination are those of the wrapped subject.
type AnySubject[O any] struct {
	box *subjectBox[O]
}

// NewAnySubject creates a type-erasing subject that wraps subject.
// The subject must not be nil. A nil *AnySubject is wrapped like any other subject.
func NewAnySubject[O any](subject Subject[O]) *AnySubject[O] {
	if erased, ok := subject.(*AnySubject[O]); ok && erased != nil {
		return &AnySubject[O]{box: erased.box}
	}

	return &AnySubject[O]{box: &subjectBox[O]{base: subject}}
}

// Receive attaches subscriber to the wrapped subject.
func (s *AnySubject[O]) Receive(subscriber Subscriber[O]) {
	s.box.Receive(subscriber)
}

// Send sends value through the wrapped subject.
func (s *AnySubject[O]) Send(value O) {
	s.box.Send(value)
}

// SendCompletion sends completion through the wrapped subject.
func (s *AnySubject[O]) SendCompletion(completion Completion) {
	s.box.SendCompletion(completion)
}

// SendSubscription hands an upstream subscription to the wrapped subject.
func (s *AnySubject[O]) SendSubscription(subscription Subscription) {
	s.box.SendSubscription(subscription)
}

// String implements fmt.Stringer.
func (s *AnySubject[O]) String() string {
	return "AnySubject"
}

// subjectBox exclusively owns one concrete subject and forwards every operation to it.
type subjectBox[O any] struct {
	base Subject[O]
}

func (b *subjectBox[O]) Receive(subscriber Subscriber[O]) {
	b.base.Receive(subscriber)
}

func (b *subjectBox[O]) Send(value O) {
	b.base.Send(value)
}

func (b *subjectBox[O]) SendCompletion(completion Completion) {
	b.base.SendCompletion(completion)
}

func (b *subjectBox[O]) SendSubscription(subscription Subscription) {
	b.base.SendSubscription(subscription)
}

// Ensure AnySubject implements Subject.
var _ Subject[int] = (*AnySubject[int])(nil)

// Ensure PassthroughSubject implements Subject.
var _ Subject[int] = (*PassthroughSubject[int])(nil)
