package httptask_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive"
	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive/httptask"
	. "github.com/AntonStoeckl/reactive-streams-extras-go/testutil/helper" //nolint:revive
)

// newSampleServer routes a small JSON API and counts every request it serves.
func newSampleServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	router := mux.NewRouter()

	router.HandleFunc("/samples", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
	}).Methods(http.MethodPost)

	router.HandleFunc("/samples/{name}", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"` + mux.Vars(r)["name"] + `","age":22}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-r.Context().Done()
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server, &hits
}

// awaitCompletion blocks until subscriber received a completion or fails the test.
func awaitCompletion[O any](t *testing.T, subscriber *RecordingSubscriber[O]) reactive.Completion {
	t.Helper()

	require.Eventually(t, func() bool { return len(subscriber.Completions()) == 1 }, 5*time.Second, 5*time.Millisecond)

	return subscriber.Completions()[0]
}

func Test_DataTask_Get_EmitsResultAndFinishes(t *testing.T) {
	// arrange
	server, _ := newSampleServer(t)
	req, err := http.NewRequest(http.MethodGet, server.URL+"/samples/Sample1", nil)
	require.NoError(t, err)
	subscriber := NewRecordingSubscriber[httptask.Result]()

	// act
	httptask.DataTask(server.Client(), req).Receive(subscriber)

	// assert
	completion := awaitCompletion(t, subscriber)
	assert.True(t, completion.IsFinished())
	results := subscriber.Values()
	require.Len(t, results, 1)
	assert.Equal(t, http.StatusOK, results[0].Response.StatusCode)
	assert.JSONEq(t, `{"name":"Sample1","age":22}`, string(results[0].Data))
}

func Test_DataTask_EverySubscription_SendsTheRequestAgain(t *testing.T) {
	// arrange
	server, hits := newSampleServer(t)
	req, err := http.NewRequest(http.MethodPost, server.URL+"/samples", bytes.NewReader([]byte(`{"name":"Sample1"}`)))
	require.NoError(t, err)
	task := httptask.DataTask(server.Client(), req)
	first := NewRecordingSubscriber[httptask.Result]()
	second := NewRecordingSubscriber[httptask.Result]()

	// act
	task.Receive(first)
	awaitCompletion(t, first)
	task.Receive(second)
	awaitCompletion(t, second)

	// assert
	assert.Equal(t, int32(2), hits.Load())
	require.Len(t, second.Values(), 1)
	assert.Equal(t, http.StatusCreated, second.Values()[0].Response.StatusCode)
	assert.JSONEq(t, `{"name":"Sample1"}`, string(second.Values()[0].Data), "the body must be resent")
}

func Test_DataTask_WithoutDemand_DoesNotSendRequest(t *testing.T) {
	// arrange
	server, hits := newSampleServer(t)
	req, err := http.NewRequest(http.MethodGet, server.URL+"/samples/Sample1", nil)
	require.NoError(t, err)
	subscriber := NewRecordingSubscriberWithDemand[httptask.Result](reactive.DemandNone, reactive.DemandNone)

	// act
	httptask.DataTask(server.Client(), req).Receive(subscriber)

	// assert
	assert.Never(t, func() bool { return hits.Load() > 0 }, 100*time.Millisecond, 10*time.Millisecond)

	subscriber.Request(1)
	assert.True(t, awaitCompletion(t, subscriber).IsFinished())
	assert.Equal(t, int32(1), hits.Load())
}

func Test_DataTask_TransportError_FailsStream(t *testing.T) {
	// arrange
	server, _ := newSampleServer(t)
	req, err := http.NewRequest(http.MethodGet, server.URL+"/samples/Sample1", nil)
	require.NoError(t, err)
	server.Close()
	subscriber := NewRecordingSubscriber[httptask.Result]()

	// act
	httptask.DataTask(server.Client(), req).Receive(subscriber)

	// assert
	completion := awaitCompletion(t, subscriber)
	assert.Error(t, completion.Err())
	assert.Empty(t, subscriber.Values())
}

func Test_DataTask_Cancel_AbortsInFlightRequest(t *testing.T) {
	// arrange
	server, hits := newSampleServer(t)
	req, err := http.NewRequest(http.MethodGet, server.URL+"/slow", nil)
	require.NoError(t, err)
	subscriber := NewRecordingSubscriber[httptask.Result]()
	httptask.DataTask(server.Client(), req).Receive(subscriber)
	require.Eventually(t, func() bool { return hits.Load() == 1 }, 5*time.Second, 5*time.Millisecond)

	// act
	subscriber.Cancel()

	// assert
	assert.Never(t, func() bool { return len(subscriber.Completions()) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
	assert.Empty(t, subscriber.Values())
}

func Test_DataTask_NilRequest_Fails(t *testing.T) {
	// arrange
	subscriber := NewRecordingSubscriber[httptask.Result]()

	// act
	httptask.DataTask(nil, nil).Receive(subscriber)

	// assert
	require.Len(t, subscriber.Completions(), 1)
	assert.ErrorIs(t, subscriber.Completions()[0].Err(), httptask.ErrNilHTTPRequest)
}

// doneCountingContext counts how often something subscribes to its Done channel.
type doneCountingContext struct {
	context.Context
	doneCalls atomic.Int32
}

func (c *doneCountingContext) Done() <-chan struct{} {
	c.doneCalls.Add(1)
	return c.Context.Done()
}

func Test_DataTask_WithoutDemand_LeavesRequestContextAlone(t *testing.T) {
	// arrange
	server, _ := newSampleServer(t)
	parent, cancelParent := context.WithCancel(context.Background())
	t.Cleanup(cancelParent)
	ctx := &doneCountingContext{Context: parent}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/samples/Sample1", nil)
	require.NoError(t, err)
	subscriber := NewRecordingSubscriberWithDemand[httptask.Result](reactive.DemandNone, reactive.DemandNone)

	// act
	httptask.DataTask(server.Client(), req).Receive(subscriber)
	subscriber.Cancel()

	// assert
	assert.Zero(t, ctx.doneCalls.Load(), "no context is derived without demand")
	assert.Empty(t, subscriber.Completions())
}

func Test_DataTask_FirstDemand_DerivesRequestContext(t *testing.T) {
	// arrange
	server, _ := newSampleServer(t)
	parent, cancelParent := context.WithCancel(context.Background())
	t.Cleanup(cancelParent)
	ctx := &doneCountingContext{Context: parent}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/samples/Sample1", nil)
	require.NoError(t, err)
	subscriber := NewRecordingSubscriberWithDemand[httptask.Result](reactive.DemandNone, reactive.DemandNone)
	httptask.DataTask(server.Client(), req).Receive(subscriber)

	// act
	subscriber.Request(1)

	// assert
	assert.True(t, awaitCompletion(t, subscriber).IsFinished())
	assert.Positive(t, ctx.doneCalls.Load())
}
