package reactive

import (
	"sync"
)

// EventHooks holds optional callbacks for the lifecycle events of a subscription.
// Any hook may be nil.
type EventHooks[O any] struct {
	ReceiveSubscription func(subscription Subscription)
	ReceiveValue        func(value O)
	ReceiveCompletion   func(completion Completion)
	ReceiveCancel       func()
	ReceiveRequest      func(demand Demand)
}

// HandleEventsPublisher performs side effects on lifecycle events without altering the stream.
type HandleEventsPublisher[O any] struct {
	upstream Publisher[O]
	hooks    EventHooks[O]
}

// HandleEvents wraps upstream so that hooks are invoked on the lifecycle events of every subscription.
//
// Values, completions, demand and cancellation are forwarded unchanged and in order.
// ReceiveSubscription fires before the downstream receives its subscription.
// ReceiveCompletion and ReceiveCancel are mutually exclusive and fire at most once per subscription.
// The hooks are shared by all subscriptions and must be safe for concurrent use
// if the upstream is subscribed to concurrently.
func HandleEvents[O any](upstream Publisher[O], hooks EventHooks[O]) *HandleEventsPublisher[O] {
	return &HandleEventsPublisher[O]{upstream: upstream, hooks: hooks}
}

// Receive subscribes subscriber to the upstream through the hooks.
func (p *HandleEventsPublisher[O]) Receive(subscriber Subscriber[O]) {
	p.upstream.Receive(&handleEventsInner[O]{
		downstream: subscriber,
		hooks:      p.hooks,
	})
}

// handleEventsInner sits between the upstream and the downstream of one subscription.
type handleEventsInner[O any] struct {
	mu         sync.Mutex
	downstream Subscriber[O]
	hooks      EventHooks[O]
	upstream   Subscription
	terminated bool
}

func (h *handleEventsInner[O]) ReceiveSubscription(subscription Subscription) {
	h.mu.Lock()
	h.upstream = subscription
	h.mu.Unlock()

	if h.hooks.ReceiveSubscription != nil {
		h.hooks.ReceiveSubscription(subscription)
	}

	h.downstream.ReceiveSubscription(h)
}

func (h *handleEventsInner[O]) ReceiveValue(value O) Demand {
	if h.hooks.ReceiveValue != nil && !h.isTerminated() {
		h.hooks.ReceiveValue(value)
	}

	return h.downstream.ReceiveValue(value)
}

func (h *handleEventsInner[O]) ReceiveCompletion(completion Completion) {
	if h.markTerminated() && h.hooks.ReceiveCompletion != nil {
		h.hooks.ReceiveCompletion(completion)
	}

	h.downstream.ReceiveCompletion(completion)
}

// Request implements Subscription for the downstream.
func (h *handleEventsInner[O]) Request(n Demand) {
	if h.hooks.ReceiveRequest != nil {
		h.hooks.ReceiveRequest(n)
	}

	if upstream := h.upstreamSubscription(); upstream != nil {
		upstream.Request(n)
	}
}

// Cancel implements Subscription for the downstream.
func (h *handleEventsInner[O]) Cancel() {
	if h.markTerminated() && h.hooks.ReceiveCancel != nil {
		h.hooks.ReceiveCancel()
	}

	if upstream := h.upstreamSubscription(); upstream != nil {
		upstream.Cancel()
	}
}

// markTerminated reports whether this call moved the subscription into its terminal state.
func (h *handleEventsInner[O]) markTerminated() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.terminated {
		return false
	}

	h.terminated = true

	return true
}

func (h *handleEventsInner[O]) isTerminated() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.terminated
}

func (h *handleEventsInner[O]) upstreamSubscription() Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.upstream
}
