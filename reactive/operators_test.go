package reactive_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive"
	. "github.com/AntonStoeckl/reactive-streams-extras-go/testutil/helper" //nolint:revive
)

func Test_HandleEvents_HooksFireInLifecycleOrder(t *testing.T) {
	// arrange
	var events []string
	hooks := reactive.EventHooks[int]{
		ReceiveSubscription: func(reactive.Subscription) { events = append(events, "subscription") },
		ReceiveRequest:      func(d reactive.Demand) { events = append(events, "request") },
		ReceiveValue:        func(v int) { events = append(events, "value "+strconv.Itoa(v)) },
		ReceiveCompletion:   func(c reactive.Completion) { events = append(events, c.String()) },
		ReceiveCancel:       func() { events = append(events, "cancel") },
	}
	subscriber := NewRecordingSubscriber[int]()

	// act
	reactive.HandleEvents[int](reactive.Sequence(1, 2), hooks).Receive(subscriber)
	subscriber.Cancel()

	// assert
	assert.Equal(t, []string{"subscription", "request", "value 1", "value 2", "finished"}, events,
		"cancel after completion must not fire")
	assert.Equal(t, []int{1, 2}, subscriber.Values())
}

func Test_HandleEvents_CancelTwice_FiresOnce(t *testing.T) {
	// arrange
	cancels := 0
	subject := reactive.NewPassthroughSubject[int]()
	subscriber := NewRecordingSubscriber[int]()
	reactive.HandleEvents[int](subject, reactive.EventHooks[int]{
		ReceiveCancel: func() { cancels++ },
	}).Receive(subscriber)

	// act
	subscriber.Cancel()
	subscriber.Cancel()

	// assert
	assert.Equal(t, 1, cancels)
}

func Test_Map_TransformsValues(t *testing.T) {
	// arrange
	subscriber := NewRecordingSubscriber[string]()

	// act
	reactive.Map[int, string](reactive.Sequence(1, 2), strconv.Itoa).Receive(subscriber)

	// assert
	assert.Equal(t, []string{"1", "2"}, subscriber.Values())
	assert.Len(t, subscriber.Completions(), 1)
}

func Test_Deferred_CallsFactoryPerSubscription(t *testing.T) {
	// arrange
	calls := 0
	deferred := reactive.Deferred[int](func() reactive.Publisher[int] {
		calls++
		return reactive.Sequence(calls)
	})
	first := NewRecordingSubscriber[int]()
	second := NewRecordingSubscriber[int]()

	// act
	deferred.Receive(first)
	deferred.Receive(second)

	// assert
	assert.Equal(t, 2, calls)
	assert.Equal(t, []int{1}, first.Values())
	assert.Equal(t, []int{2}, second.Values())
}

func Test_Sink_ReceivesValuesAndCompletion(t *testing.T) {
	// arrange
	var values []int
	var completions []reactive.Completion

	// act
	reactive.Sink[int](
		reactive.Sequence(1, 2, 3),
		func(v int) { values = append(values, v) },
		func(c reactive.Completion) { completions = append(completions, c) },
	)

	// assert
	assert.Equal(t, []int{1, 2, 3}, values)
	require.Len(t, completions, 1)
	assert.True(t, completions[0].IsFinished())
}

func Test_Sink_Cancel_StopsSubscription(t *testing.T) {
	// arrange
	var values []int
	subject := reactive.NewPassthroughSubject[int]()
	cancellable := reactive.Sink[int](subject, func(v int) { values = append(values, v) }, nil)

	// act
	subject.Send(1)
	cancellable.Cancel()
	subject.Send(2)

	// assert
	assert.Equal(t, []int{1}, values)
}
