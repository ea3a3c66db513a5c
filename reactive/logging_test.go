package reactive_test

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive"
	. "github.com/AntonStoeckl/reactive-streams-extras-go/testutil/helper" //nolint:revive
)

func logGot(prefix string) func(reactive.Logger, int) {
	return func(logger reactive.Logger, value int) {
		logger.Info(fmt.Sprintf("%s got %d", prefix, value))
	}
}

func Test_Log_NilLogger_IsTransparent(t *testing.T) {
	// arrange
	direct := NewRecordingSubscriber[int]()
	logged := NewRecordingSubscriber[int]()
	source := reactive.Sequence(1, 2, 3)

	// act
	source.Receive(direct)
	reactive.Log[int](source, nil, "X", logGot("X")).Receive(logged)

	// assert
	assert.Equal(t, []int{1, 2, 3}, logged.Values())
	assert.Equal(t, direct.Values(), logged.Values())
	require.Len(t, logged.Completions(), 1)
	assert.True(t, logged.Completions()[0].IsFinished())
}

func Test_Log_SuccessfulSequence_LogsLifecycleInOrder(t *testing.T) {
	// arrange
	spy := NewLogHandlerSpy(false)
	subscriber := NewRecordingSubscriber[int]()

	// act
	reactive.Log[int](reactive.Sequence(1, 2), slog.New(spy), "X", logGot("X")).Receive(subscriber)

	// assert
	assert.Equal(t, []string{"X started", "X got 1", "X got 2", "X finished"}, spy.GetMessages())
	assert.Equal(t, []int{1, 2}, subscriber.Values())
	assert.False(t, spy.HasErrorLog("X error: "), "no error record expected")
}

func Test_Log_FailingSequence_LogsErrorWithoutFinished(t *testing.T) {
	// arrange
	spy := NewLogHandlerSpy(false)
	subscriber := NewRecordingSubscriber[int]()
	failure := errors.New("boom")

	// act
	reactive.Log[int](reactive.SequenceFailing(failure, 1), slog.New(spy), "X", logGot("X")).Receive(subscriber)

	// assert
	assert.Equal(t, []string{"X started", "X got 1", "X error: boom"}, spy.GetMessages())
	assert.True(t, spy.HasErrorLog("X error: boom"), "failure must be logged at error level")
	assert.False(t, spy.HasInfoLog("X finished"))

	require.Len(t, subscriber.Completions(), 1)
	assert.ErrorIs(t, subscriber.Completions()[0].Err(), failure, "failure must reach the subscriber unchanged")
}

func Test_Log_SubscriberCancels_LogsCancelled(t *testing.T) {
	// arrange
	spy := NewLogHandlerSpy(false)
	subject := reactive.NewPassthroughSubject[int]()
	subscriber := NewRecordingSubscriber[int]().OnValue(func(s *RecordingSubscriber[int], _ int) {
		s.Cancel()
	})
	reactive.Log[int](subject, slog.New(spy), "X", logGot("X")).Receive(subscriber)

	// act
	subject.Send(1)
	subject.Send(2)
	subject.SendCompletion(reactive.Finished())

	// assert
	assert.Equal(t, []string{"X started", "X got 1", "X cancelled"}, spy.GetMessages())
	assert.Equal(t, []int{1}, subscriber.Values())
	assert.Empty(t, subscriber.Completions(), "cancellation must still propagate upstream")
}

func Test_Log_EverySubscription_HasItsOwnLifecycle(t *testing.T) {
	// arrange
	spy := NewLogHandlerSpy(false)
	logged := reactive.Log[int](reactive.Sequence(7), slog.New(spy), "X", logGot("X"))

	// act
	logged.Receive(NewRecordingSubscriber[int]())
	logged.Receive(NewRecordingSubscriber[int]())

	// assert
	assert.Equal(t,
		[]string{"X started", "X got 7", "X finished", "X started", "X got 7", "X finished"},
		spy.GetMessages(),
	)
}

func Test_Log_ConcurrentSubscriptions_LogEveryLifecycle(t *testing.T) {
	// arrange
	const subscriptions = 20
	spy := NewLogHandlerSpy(false)
	logged := reactive.Log[int](reactive.Sequence(1, 2, 3), slog.New(spy), "X", logGot("X"))

	var wg sync.WaitGroup

	// act
	for range subscriptions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logged.Receive(NewRecordingSubscriber[int]())
		}()
	}
	wg.Wait()

	// assert
	assert.Equal(t, subscriptions*5, spy.GetRecordCount())
}

func Test_Log_NothingSubscribed_LogsNothing(t *testing.T) {
	// arrange
	spy := NewLogHandlerSpy(false)

	// act
	_ = reactive.Log[int](reactive.Sequence(1), slog.New(spy), "X", logGot("X"))

	// assert
	assert.Zero(t, spy.GetRecordCount(), "lifecycle logging is lazy")
}

func Test_Log_PanickingSink_DoesNotDisturbStream(t *testing.T) {
	// arrange
	subscriber := NewRecordingSubscriber[int]()
	logger := slog.New(PanickingLogHandler{})

	// act
	assert.NotPanics(t, func() {
		reactive.Log[int](reactive.Sequence(1, 2), logger, "X", logGot("X")).Receive(subscriber)
	})

	// assert
	assert.Equal(t, []int{1, 2}, subscriber.Values())
	require.Len(t, subscriber.Completions(), 1)
	assert.True(t, subscriber.Completions()[0].IsFinished())
}

func Test_Log_LimitedDemand_IsForwardedUnchanged(t *testing.T) {
	// arrange
	spy := NewLogHandlerSpy(false)
	subscriber := NewRecordingSubscriberWithDemand[int](1, reactive.DemandNone)

	// act
	reactive.Log[int](reactive.Sequence(1, 2, 3), slog.New(spy), "X", logGot("X")).Receive(subscriber)

	// assert
	assert.Equal(t, []int{1}, subscriber.Values(), "only the requested value is delivered")
	assert.Equal(t, []string{"X started", "X got 1"}, spy.GetMessages())

	// act
	subscriber.Request(5)

	// assert
	assert.Equal(t, []int{1, 2, 3}, subscriber.Values())
	assert.Equal(t, []string{"X started", "X got 1", "X got 2", "X got 3", "X finished"}, spy.GetMessages())
}

func Test_LogOutput_LogsOnlyValues(t *testing.T) {
	// arrange
	spy := NewLogHandlerSpy(false)
	subscriber := NewRecordingSubscriber[int]()

	// act
	reactive.LogOutput[int](reactive.Sequence(1, 2), slog.New(spy), logGot("X")).Receive(subscriber)

	// assert
	assert.Equal(t, []string{"X got 1", "X got 2"}, spy.GetMessages())
	assert.Equal(t, []int{1, 2}, subscriber.Values())
	require.Len(t, subscriber.Completions(), 1)
	assert.True(t, subscriber.Completions()[0].IsFinished())
}

func Test_LogOutput_Failure_IsNotLogged(t *testing.T) {
	// arrange
	spy := NewLogHandlerSpy(false)
	subscriber := NewRecordingSubscriber[int]()

	// act
	reactive.LogOutput[int](reactive.SequenceFailing(errors.New("boom"), 1), slog.New(spy), logGot("X")).Receive(subscriber)

	// assert
	assert.Equal(t, []string{"X got 1"}, spy.GetMessages())
	require.Len(t, subscriber.Completions(), 1)
	assert.EqualError(t, subscriber.Completions()[0].Err(), "boom")
}

func Test_LogOutput_NilLogger_IsTransparent(t *testing.T) {
	// arrange
	subscriber := NewRecordingSubscriber[int]()
	called := false

	// act
	reactive.LogOutput[int](reactive.Sequence(1, 2), nil, func(reactive.Logger, int) { called = true }).Receive(subscriber)

	// assert
	assert.False(t, called)
	assert.Equal(t, []int{1, 2}, subscriber.Values())
}

func Test_LogAt_MapsLevelsToLoggerMethods(t *testing.T) {
	tests := []struct {
		level    slog.Level
		expected slog.Level
	}{
		{level: slog.LevelDebug, expected: slog.LevelDebug},
		{level: slog.LevelDebug - 4, expected: slog.LevelDebug},
		{level: slog.LevelInfo, expected: slog.LevelInfo},
		{level: slog.LevelInfo + 2, expected: slog.LevelInfo},
		{level: slog.LevelWarn, expected: slog.LevelWarn},
		{level: slog.LevelError, expected: slog.LevelError},
		{level: slog.LevelError + 4, expected: slog.LevelError},
	}

	for _, tc := range tests {
		t.Run(tc.level.String(), func(t *testing.T) {
			spy := NewLogHandlerSpy(false)

			reactive.LogAt(slog.New(spy), tc.level, "message")

			assert.Equal(t, []slog.Level{tc.expected}, spy.GetLevels())
		})
	}
}

func Test_LogAt_NilLogger_DoesNothing(t *testing.T) {
	assert.NotPanics(t, func() {
		reactive.LogAt(nil, slog.LevelInfo, "message")
	})
}

// blockingLogger blocks while logging blockOn until released.
type blockingLogger struct {
	*slog.Logger
	blockOn  string
	entered  chan struct{}
	released chan struct{}
}

func (l *blockingLogger) Info(msg string, args ...any) {
	if msg == l.blockOn {
		close(l.entered)
		<-l.released
	}

	l.Logger.Info(msg, args...)
}

func Test_Log_SubjectCompletesWhileStartedIsLogged_LogsStartedFirst(t *testing.T) {
	// arrange
	spy := NewLogHandlerSpy(false)
	logger := &blockingLogger{
		Logger:   slog.New(spy),
		blockOn:  "X started",
		entered:  make(chan struct{}),
		released: make(chan struct{}),
	}
	subject := reactive.NewPassthroughSubject[int]()
	subscriber := NewRecordingSubscriber[int]()
	subscribed := make(chan struct{})

	go func() {
		defer close(subscribed)
		reactive.Log[int](subject, logger, "X", logGot("X")).Receive(subscriber)
	}()
	<-logger.entered

	// act
	subject.SendCompletion(reactive.Finished())
	close(logger.released)
	<-subscribed

	// assert
	assert.Equal(t, []string{"X started", "X finished"}, spy.GetMessages())
	assert.Equal(t, []reactive.Completion{reactive.Finished()}, subscriber.Completions())
	assert.Equal(t, 1, subscriber.SubscriptionCount())
}
