package reactive

import (
	"math"
)

// Demand is the number of values a Subscriber is willing to receive.
// It saturates at DemandUnlimited and never becomes negative.
type Demand int64

const (
	// DemandNone requests no further values.
	DemandNone Demand = 0

	// DemandUnlimited requests all values a Publisher will ever produce.
	DemandUnlimited Demand = math.MaxInt64
)

// Add returns the saturated sum of both demands.
func (d Demand) Add(other Demand) Demand {
	if other <= 0 {
		return d
	}

	if d == DemandUnlimited || other == DemandUnlimited || d > DemandUnlimited-other {
		return DemandUnlimited
	}

	return d + other
}

// decrement consumes one unit of demand. Unlimited demand is never consumed.
func (d Demand) decrement() Demand {
	if d == DemandUnlimited || d <= 0 {
		return d
	}

	return d - 1
}

// Completion is the terminal event of a subscription: either finished or failed with an error.
type Completion struct {
	err error
}

// Finished returns a successful Completion.
func Finished() Completion {
	return Completion{}
}

// Failure returns a Completion that carries err.
// A nil err is treated as a successful completion.
func Failure(err error) Completion {
	return Completion{err: err}
}

// Err returns the failure of the Completion or nil if it finished successfully.
func (c Completion) Err() error {
	return c.err
}

// IsFinished reports whether the Completion is successful.
func (c Completion) IsFinished() bool {
	return c.err == nil
}

// String implements fmt.Stringer.
func (c Completion) String() string {
	if c.err == nil {
		return "finished"
	}

	return "failure: " + c.err.Error()
}

// Subscription connects a Subscriber to a Publisher.
type Subscription interface {
	Request(n Demand)
	Cancel()
}

// Cancellable is the handle returned to consumers that can stop a running subscription.
type Cancellable interface {
	Cancel()
}

// Subscriber consumes the values and the terminal Completion of a Publisher.
// ReceiveValue returns the additional Demand the Subscriber wants after handling the value.
type Subscriber[O any] interface {
	ReceiveSubscription(subscription Subscription)
	ReceiveValue(value O) Demand
	ReceiveCompletion(completion Completion)
}

// Publisher produces values for any number of independent subscriptions.
type Publisher[O any] interface {
	Receive(subscriber Subscriber[O])
}

// Subject is a Publisher that can also be written to from the outside.
type Subject[O any] interface {
	Publisher[O]
	Send(value O)
	SendCompletion(completion Completion)
	SendSubscription(subscription Subscription)
}

// emptySubscription is handed to subscribers of publishers that are already terminated.
type emptySubscription struct{}

func (emptySubscription) Request(Demand) {}

func (emptySubscription) Cancel() {}
