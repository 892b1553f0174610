package subscriber_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cointribute/internal/audit"
	"cointribute/internal/chain"
	"cointribute/internal/oracle/models"
	"cointribute/internal/oracle/queue"
	"cointribute/internal/oracle/subscriber"
)

// fakeStream hands out its current channel of registrations.
type fakeStream struct {
	mu     sync.Mutex
	events chan chain.Registration
	err    error
}

func (f *fakeStream) SubscribeRegistrations(_ context.Context) (<-chan chain.Registration, func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.events, func() {}, nil
}

func (f *fakeStream) swap(events chan chain.Registration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = events
}

type SubscriberSuite struct {
	suite.Suite
	stream *fakeStream
	queue  *queue.Queue
	sub    *subscriber.Subscriber
}

func TestSubscriberSuite(t *testing.T) {
	suite.Run(t, new(SubscriberSuite))
}

func (s *SubscriberSuite) SetupTest() {
	s.stream = &fakeStream{events: make(chan chain.Registration, 8)}
	s.queue = queue.New(16, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.sub = subscriber.New(s.stream, s.queue, audit.NopRecorder{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *SubscriberSuite) runUntilCancel() (context.CancelFunc, chan error) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.sub.Run(ctx) }()
	return cancel, done
}

func (s *SubscriberSuite) TestEnqueuesRegistrations() {
	cancel, done := s.runUntilCancel()
	defer func() { cancel(); <-done }()

	s.stream.events <- chain.Registration{CharityID: 5, Registrant: "0xabc", Name: "Relief Org"}
	s.stream.events <- chain.Registration{CharityID: 6, Registrant: "0xdef", Name: "Water Fund"}

	s.Require().Eventually(func() bool { return s.queue.Pending() == 2 }, 2*time.Second, 10*time.Millisecond)

	job, err := s.queue.Dequeue(context.Background())
	s.Require().NoError(err)
	s.Equal(uint64(5), job.CharityID)
	s.Equal(models.OriginEvent, job.Origin)
}

func (s *SubscriberSuite) TestDuplicateEventsMerge() {
	cancel, done := s.runUntilCancel()
	defer func() { cancel(); <-done }()

	for i := 0; i < 3; i++ {
		s.stream.events <- chain.Registration{CharityID: 7, Name: "Dup"}
	}

	s.Require().Eventually(func() bool { return s.queue.Pending() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	s.Equal(1, s.queue.Pending())
	s.Equal(1, s.queue.Active())
}

func (s *SubscriberSuite) TestStopsOnContextCancel() {
	cancel, done := s.runUntilCancel()

	cancel()
	select {
	case err := <-done:
		s.ErrorIs(err, context.Canceled)
	case <-time.After(2 * time.Second):
		s.Fail("subscriber did not stop")
	}
}

func (s *SubscriberSuite) TestResubscribesAfterStreamClose() {
	first := make(chan chain.Registration)
	s.stream.events = first

	cancel, done := s.runUntilCancel()
	defer func() { cancel(); <-done }()

	// Swap in a fresh channel before closing the first so the resubscribe
	// picks up the replacement stream.
	second := make(chan chain.Registration, 1)
	s.stream.swap(second)
	close(first)

	second <- chain.Registration{CharityID: 9, Name: "After Reconnect"}
	s.Require().Eventually(func() bool { return s.queue.Pending() == 1 }, 5*time.Second, 10*time.Millisecond)
}
