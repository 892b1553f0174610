package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cointribute/internal/oracle/models"
)

type QueueSuite struct {
	suite.Suite
	queue *Queue
}

func TestQueueSuite(t *testing.T) {
	suite.Run(t, new(QueueSuite))
}

func (s *QueueSuite) SetupTest() {
	s.queue = New(8, nil)
}

func (s *QueueSuite) TestEnqueueDedup() {
	s.True(s.queue.Enqueue(1, models.OriginEvent))
	s.False(s.queue.Enqueue(1, models.OriginBacklog), "duplicate must be merged")
	s.Equal(1, s.queue.Pending())

	job, err := s.queue.Dequeue(context.Background())
	s.Require().NoError(err)
	s.EqualValues(1, job.CharityID)
	s.Equal(models.OriginEvent, job.Origin)

	// Still in-flight until released.
	s.False(s.queue.Enqueue(1, models.OriginBacklog))

	s.queue.Release(1)
	s.True(s.queue.Enqueue(1, models.OriginBacklog), "released identifier is eligible again")
}

func (s *QueueSuite) TestDequeueBlocksUntilWork() {
	done := make(chan models.VerificationJob, 1)
	go func() {
		job, err := s.queue.Dequeue(context.Background())
		if err == nil {
			done <- job
		}
	}()

	select {
	case <-done:
		s.Fail("dequeue returned before any job was enqueued")
	case <-time.After(20 * time.Millisecond):
	}

	s.queue.Enqueue(7, models.OriginBacklog)
	select {
	case job := <-done:
		s.EqualValues(7, job.CharityID)
	case <-time.After(time.Second):
		s.Fail("dequeue did not wake up")
	}
}

func (s *QueueSuite) TestDequeueRespectsContext() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.queue.Dequeue(ctx)
	s.ErrorIs(err, context.DeadlineExceeded)
}

func (s *QueueSuite) TestFullQueueReleasesIdentifier() {
	q := New(1, nil)
	s.True(q.Enqueue(1, models.OriginEvent))
	s.False(q.Enqueue(2, models.OriginEvent), "second job exceeds capacity")
	s.Equal(1, q.Active(), "dropped job must not leak into the active set")
	s.True(q.Enqueue(2, models.OriginBacklog) == false, "still full")

	_, err := q.Dequeue(context.Background())
	s.Require().NoError(err)
	s.True(q.Enqueue(2, models.OriginBacklog))
}

func (s *QueueSuite) TestConcurrentEnqueueSingleJob() {
	var wg sync.WaitGroup
	accepted := make(chan bool, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			accepted <- s.queue.Enqueue(9, models.OriginEvent)
		}()
	}
	wg.Wait()
	close(accepted)

	count := 0
	for ok := range accepted {
		if ok {
			count++
		}
	}
	s.Equal(1, count, "exactly one enqueue may win")
	s.Equal(1, s.queue.Pending())
}
