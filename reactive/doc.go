// Package reactive provides a small push-based stream runtime together with
// a type-erasing subject and lifecycle logging operators built on top of it.
//
// The runtime follows the reactive-streams contract:
//   - A Publisher delivers values to a Subscriber after it received a Subscription
//   - A Subscriber signals Demand through the Subscription and may cancel it
//   - Each subscription ends with at most one Completion (finished or failure)
//
// Key types:
//   - Publisher, Subscriber, Subscription, Subject: the stream contract
//   - PassthroughSubject: a multicast subject
//   - AnySubject: hides a concrete Subject behind a fixed type
//   - HandleEvents, Log, LogOutput: side-effect operators that never alter the stream
//
// Common usage pattern:
//
//	subject := reactive.NewPassthroughSubject[int]()
//	erased := reactive.EraseToAnySubject[int](subject)
//
//	logged := reactive.Log[int](erased, logger, "Counter", func(l reactive.Logger, v int) {
//		l.Info(fmt.Sprintf("Counter got %d new coin(s)", v))
//	})
//
//	cancellable := reactive.Sink[int](logged, func(v int) { /* use v */ }, nil)
//	defer cancellable.Cancel()
//
//	erased.Send(1)
//	erased.SendCompletion(reactive.Finished())
package reactive
