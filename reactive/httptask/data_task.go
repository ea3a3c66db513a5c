package httptask

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive"
)

// ErrNilHTTPRequest is returned when a data task is created without a request.
var ErrNilHTTPRequest = errors.New("http request must not be nil")

// Result is the single value of a data task.
// The response body was fully read into Data and is already closed.
type Result struct {
	Response *http.Response
	Data     []byte
}

// DataTaskPublisher performs an HTTP request for every subscription.
type DataTaskPublisher struct {
	client  *http.Client
	request *http.Request
}

// DataTask creates a cold publisher for req. A nil client means http.DefaultClient.
//
// The request is sent on first demand, in its own goroutine, with a context derived from the request's context.
// The publisher emits one Result and finishes. Transport and body read errors fail the stream.
// Cancelling the subscription cancels the in-flight request.
func DataTask(client *http.Client, req *http.Request) reactive.Publisher[Result] {
	if req == nil {
		return reactive.Fail[Result](ErrNilHTTPRequest)
	}

	if client == nil {
		client = http.DefaultClient
	}

	return &DataTaskPublisher{client: client, request: req}
}

// Receive implements reactive.Publisher.
func (p *DataTaskPublisher) Receive(subscriber reactive.Subscriber[Result]) {
	subscriber.ReceiveSubscription(&dataTaskSubscription{
		client:     p.client,
		request:    p.request,
		downstream: subscriber,
	})
}

// dataTaskSubscription derives its request context only on first demand,
// so a subscription that never requests leaves the request's context untouched.
type dataTaskSubscription struct {
	mu         sync.Mutex
	client     *http.Client
	request    *http.Request
	downstream reactive.Subscriber[Result]
	cancel     context.CancelFunc
	started    bool
	done       bool
}

// Request starts the HTTP request on the first positive demand.
func (s *dataTaskSubscription) Request(n reactive.Demand) {
	if n <= 0 {
		return
	}

	s.mu.Lock()
	if s.started || s.done {
		s.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(s.request.Context())
	s.started = true
	s.cancel = cancel
	s.mu.Unlock()

	go s.perform(ctx, cancel)
}

// Cancel aborts the in-flight request. Nothing is delivered afterwards.
func (s *dataTaskSubscription) Cancel() {
	s.mu.Lock()
	s.done = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (s *dataTaskSubscription) perform(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()

	result, err := s.roundTrip(ctx)

	if !s.finish() {
		return
	}

	if err != nil {
		s.downstream.ReceiveCompletion(reactive.Failure(err))
		return
	}

	s.downstream.ReceiveValue(result)
	s.downstream.ReceiveCompletion(reactive.Finished())
}

func (s *dataTaskSubscription) roundTrip(ctx context.Context) (Result, error) {
	req := s.request.Clone(ctx)

	if s.request.GetBody != nil {
		body, err := s.request.GetBody()
		if err != nil {
			return Result{}, fmt.Errorf("rewinding request body: %w", err)
		}

		req.Body = body
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("reading response body: %w", err)
	}

	return Result{Response: resp, Data: data}, nil
}

// finish reports whether the subscription may still deliver its terminal signals.
func (s *dataTaskSubscription) finish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return false
	}

	s.done = true

	return true
}
