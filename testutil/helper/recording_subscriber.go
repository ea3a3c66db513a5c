package helper

import (
	"sync"

	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive"
)

// RecordingSubscriber is a reactive.Subscriber that records everything it receives.
// It requests its initial demand on subscription and the configured demand after each value.
type RecordingSubscriber[O any] struct {
	mu               sync.Mutex
	initialDemand    reactive.Demand
	demandPerValue   reactive.Demand
	subscription     reactive.Subscription
	values           []O
	completions      []reactive.Completion
	onValue          func(*RecordingSubscriber[O], O)
	subscriptionSeen int
}

// NewRecordingSubscriber creates a RecordingSubscriber with unlimited demand.
func NewRecordingSubscriber[O any]() *RecordingSubscriber[O] {
	return &RecordingSubscriber[O]{initialDemand: reactive.DemandUnlimited}
}

// NewRecordingSubscriberWithDemand creates a RecordingSubscriber that requests initial
// on subscription and perValue after every received value.
func NewRecordingSubscriberWithDemand[O any](initial, perValue reactive.Demand) *RecordingSubscriber[O] {
	return &RecordingSubscriber[O]{initialDemand: initial, demandPerValue: perValue}
}

// OnValue registers a callback invoked after a value was recorded, e.g. to cancel mid-stream.
func (r *RecordingSubscriber[O]) OnValue(callback func(*RecordingSubscriber[O], O)) *RecordingSubscriber[O] {
	r.onValue = callback
	return r
}

// ReceiveSubscription implements reactive.Subscriber.
func (r *RecordingSubscriber[O]) ReceiveSubscription(subscription reactive.Subscription) {
	r.mu.Lock()
	r.subscription = subscription
	r.subscriptionSeen++
	initial := r.initialDemand
	r.mu.Unlock()

	if initial > 0 {
		subscription.Request(initial)
	}
}

// ReceiveValue implements reactive.Subscriber.
func (r *RecordingSubscriber[O]) ReceiveValue(value O) reactive.Demand {
	r.mu.Lock()
	r.values = append(r.values, value)
	callback := r.onValue
	r.mu.Unlock()

	if callback != nil {
		callback(r, value)
	}

	return r.demandPerValue
}

// ReceiveCompletion implements reactive.Subscriber.
func (r *RecordingSubscriber[O]) ReceiveCompletion(completion reactive.Completion) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.completions = append(r.completions, completion)
}

// Request asks the upstream for n more values.
func (r *RecordingSubscriber[O]) Request(n reactive.Demand) {
	if subscription := r.currentSubscription(); subscription != nil {
		subscription.Request(n)
	}
}

// Cancel cancels the subscription.
func (r *RecordingSubscriber[O]) Cancel() {
	if subscription := r.currentSubscription(); subscription != nil {
		subscription.Cancel()
	}
}

// Values returns a copy of the received values.
func (r *RecordingSubscriber[O]) Values() []O {
	r.mu.Lock()
	defer r.mu.Unlock()

	values := make([]O, len(r.values))
	copy(values, r.values)

	return values
}

// Completions returns a copy of the received completions.
func (r *RecordingSubscriber[O]) Completions() []reactive.Completion {
	r.mu.Lock()
	defer r.mu.Unlock()

	completions := make([]reactive.Completion, len(r.completions))
	copy(completions, r.completions)

	return completions
}

// SubscriptionCount returns how often a subscription was received.
func (r *RecordingSubscriber[O]) SubscriptionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.subscriptionSeen
}

func (r *RecordingSubscriber[O]) currentSubscription() reactive.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.subscription
}

// Ensure RecordingSubscriber implements reactive.Subscriber.
var _ reactive.Subscriber[int] = (*RecordingSubscriber[int])(nil)
