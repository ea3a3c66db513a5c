package reactive

import (
	"sync"
)

// PassthroughSubject is a multicast Subject that does not buffer values.
//
// Every subscriber observes the values sent after it attached, as long as it has outstanding Demand.
// Values sent while a subscriber has no Demand are dropped for that subscriber.
// The first Completion terminates all current subscribers; later subscribers receive it immediately.
//
// Concurrent Send calls are not serialized against each other.
type PassthroughSubject[O any] struct {
	mu         sync.Mutex
	conduits   []*passthroughConduit[O]
	completion *Completion
}

// NewPassthroughSubject creates a new PassthroughSubject.
func NewPassthroughSubject[O any]() *PassthroughSubject[O] {
	return &PassthroughSubject[O]{}
}

// Receive attaches subscriber to the subject.
func (s *PassthroughSubject[O]) Receive(subscriber Subscriber[O]) {
	s.mu.Lock()
	if s.completion != nil {
		completion := *s.completion
		s.mu.Unlock()

		subscriber.ReceiveSubscription(emptySubscription{})
		subscriber.ReceiveCompletion(completion)

		return
	}

	conduit := &passthroughConduit[O]{
		parent:     s,
		downstream: subscriber,
	}
	s.conduits = append(s.conduits, conduit)
	s.mu.Unlock()

	subscriber.ReceiveSubscription(conduit)
	conduit.markSubscribed()
}

// Send delivers value to every current subscriber with outstanding Demand.
func (s *PassthroughSubject[O]) Send(value O) {
	for _, conduit := range s.activeConduits() {
		conduit.offer(value)
	}
}

// SendCompletion terminates the subject and all of its subscribers.
// Only the first Completion has an effect.
func (s *PassthroughSubject[O]) SendCompletion(completion Completion) {
	s.mu.Lock()
	if s.completion != nil {
		s.mu.Unlock()
		return
	}

	s.completion = &completion
	conduits := s.conduits
	s.conduits = nil
	s.mu.Unlock()

	for _, conduit := range conduits {
		conduit.finish(completion)
	}
}

// SendSubscription lets the subject act as a subscriber of an upstream publisher.
// The subject requests unlimited Demand from the upstream.
func (s *PassthroughSubject[O]) SendSubscription(subscription Subscription) {
	s.mu.Lock()
	completed := s.completion != nil
	s.mu.Unlock()

	if completed {
		subscription.Cancel()
		return
	}

	subscription.Request(DemandUnlimited)
}

func (s *PassthroughSubject[O]) activeConduits() []*passthroughConduit[O] {
	s.mu.Lock()
	defer s.mu.Unlock()

	conduits := make([]*passthroughConduit[O], len(s.conduits))
	copy(conduits, s.conduits)

	return conduits
}

func (s *PassthroughSubject[O]) remove(conduit *passthroughConduit[O]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.conduits {
		if c == conduit {
			s.conduits = append(s.conduits[:i], s.conduits[i+1:]...)
			return
		}
	}
}

// passthroughConduit is the Subscription of one subscriber to a PassthroughSubject.
// A Completion that arrives before the subscriber got its Subscription is held back
// until ReceiveSubscription returned.
type passthroughConduit[O any] struct {
	mu         sync.Mutex
	parent     *PassthroughSubject[O]
	downstream Subscriber[O]
	demand     Demand
	terminated bool
	subscribed bool
	pending    *Completion
}

// Request adds n to the outstanding Demand of the subscriber.
func (c *passthroughConduit[O]) Request(n Demand) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.terminated {
		return
	}

	c.demand = c.demand.Add(n)
}

// Cancel detaches the subscriber from the subject.
func (c *passthroughConduit[O]) Cancel() {
	c.mu.Lock()
	if c.terminated {
		c.pending = nil
		c.mu.Unlock()

		return
	}

	c.terminated = true
	c.mu.Unlock()

	c.parent.remove(c)
}

// markSubscribed opens the conduit for completions and delivers one that arrived meanwhile.
func (c *passthroughConduit[O]) markSubscribed() {
	c.mu.Lock()
	c.subscribed = true
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	if pending != nil {
		c.downstream.ReceiveCompletion(*pending)
	}
}

func (c *passthroughConduit[O]) offer(value O) {
	c.mu.Lock()
	if c.terminated || c.demand <= 0 {
		c.mu.Unlock()
		return
	}

	c.demand = c.demand.decrement()
	c.mu.Unlock()

	additional := c.downstream.ReceiveValue(value)

	c.Request(additional)
}

func (c *passthroughConduit[O]) finish(completion Completion) {
	c.mu.Lock()
	if c.terminated {
		c.mu.Unlock()
		return
	}

	c.terminated = true
	if !c.subscribed {
		c.pending = &completion
		c.mu.Unlock()

		return
	}
	c.mu.Unlock()

	c.downstream.ReceiveCompletion(completion)
}
