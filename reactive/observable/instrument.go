package observable

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive"
)

// Publisher decorates an upstream publisher with subscription observability.
type Publisher[O any] struct {
	streamName string
	collectors collectors
	deferred   *reactive.DeferredPublisher[O]
}

// Instrument wraps upstream so that every subscription is measured, traced, and logged.
//
// Per subscription it starts a span named "stream.subscription" and logs the start.
// Every value increments stream_values_total. The terminal event records
// stream_subscription_duration_seconds and stream_subscriptions_total with its status,
// finishes the span and logs the outcome.
func Instrument[O any](upstream reactive.Publisher[O], streamName string, opts ...Option) (*Publisher[O], error) {
	if streamName == "" {
		return nil, ErrEmptyStreamName
	}

	p := &Publisher[O]{
		streamName: streamName,
		collectors: collectors{ctx: context.Background()},
	}

	for _, opt := range opts {
		if err := opt(&p.collectors); err != nil {
			return nil, err
		}
	}

	p.deferred = reactive.Deferred(func() reactive.Publisher[O] {
		observer := &subscriptionObserver{streamName: p.streamName, collectors: p.collectors}

		return reactive.HandleEvents(upstream, reactive.EventHooks[O]{
			ReceiveSubscription: func(reactive.Subscription) { observer.started() },
			ReceiveValue:        func(O) { observer.valueReceived() },
			ReceiveCompletion:   observer.completed,
			ReceiveCancel:       observer.canceled,
		})
	})

	return p, nil
}

// Receive implements reactive.Publisher.
func (p *Publisher[O]) Receive(subscriber reactive.Subscriber[O]) {
	p.deferred.Receive(subscriber)
}

// subscriptionObserver carries the observability state of one subscription.
type subscriptionObserver struct {
	mu         sync.Mutex
	streamName string
	collectors collectors
	ctx        context.Context
	span       reactive.SpanContext
	start      time.Time
	values     int64
}

func (o *subscriptionObserver) started() {
	ctx := o.collectors.ctx
	var span reactive.SpanContext

	if o.collectors.tracingCollector != nil {
		ctx, span = o.collectors.tracingCollector.StartSpan(ctx, SpanNameSubscription, map[string]string{AttrStream: o.streamName})
	}

	o.mu.Lock()
	o.ctx = ctx
	o.span = span
	o.start = time.Now()
	o.mu.Unlock()

	logInfo(ctx, o.collectors.logger, o.collectors.contextualLogger, LogMsgSubscriptionStarted, AttrStream, o.streamName)
}

func (o *subscriptionObserver) valueReceived() {
	o.mu.Lock()
	o.values++
	ctx := o.ctx
	o.mu.Unlock()

	incrementCounter(ctx, o.collectors.metricsCollector, MetricValuesTotal, buildLabels(o.streamName, ""))
}

func (o *subscriptionObserver) completed(completion reactive.Completion) {
	err := completion.Err()
	if err == nil {
		o.finish(StatusSuccess, nil)
		return
	}

	o.finish(statusForFailure(err), err)
}

func (o *subscriptionObserver) canceled() {
	o.finish(StatusCanceled, nil)
}

func (o *subscriptionObserver) finish(status string, err error) {
	o.mu.Lock()
	ctx, span, values := o.ctx, o.span, o.values
	duration := time.Since(o.start)
	o.mu.Unlock()

	labels := buildLabels(o.streamName, status)
	recordDuration(ctx, o.collectors.metricsCollector, MetricSubscriptionDuration, duration, labels)
	incrementCounter(ctx, o.collectors.metricsCollector, MetricSubscriptionsTotal, labels)

	if o.collectors.tracingCollector != nil && span != nil {
		attrs := map[string]string{
			AttrStatus:     status,
			AttrDurationMS: formatDurationMS(duration),
			AttrValueCount: strconv.FormatInt(values, 10),
		}

		if err != nil {
			attrs[AttrError] = err.Error()
		}

		o.collectors.tracingCollector.FinishSpan(span, status, attrs)
	}

	args := []any{
		AttrStream, o.streamName,
		AttrStatus, status,
		AttrValueCount, values,
		AttrDurationMS, toMilliseconds(duration),
	}

	switch {
	case err != nil:
		logError(ctx, o.collectors.logger, o.collectors.contextualLogger, LogMsgSubscriptionFailed, append(args, AttrError, err.Error())...)
	case status == StatusCanceled:
		logInfo(ctx, o.collectors.logger, o.collectors.contextualLogger, LogMsgSubscriptionCanceled, args...)
	default:
		logInfo(ctx, o.collectors.logger, o.collectors.contextualLogger, LogMsgSubscriptionCompleted, args...)
	}
}
