package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/library-api/internal/domain/notification"
	"github.com/janhq/library-api/internal/domain/retry"
)

type mark struct {
	status   notification.Status
	attempts int
	next     time.Time
	lastErr  string
}

type fakeQueue struct {
	mu      sync.Mutex
	pending []*notification.Intent
	marks   map[string]mark
}

func newFakeQueue(intents ...*notification.Intent) *fakeQueue {
	return &fakeQueue{pending: intents, marks: map[string]mark{}}
}

func (q *fakeQueue) Claim(_ context.Context, _ time.Time, limit int) ([]*notification.Intent, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := min(limit, len(q.pending))
	claimed := q.pending[:n]
	q.pending = q.pending[n:]
	return claimed, nil
}

func (q *fakeQueue) MarkSent(_ context.Context, id string, attempts int, _ time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.marks[id] = mark{status: notification.StatusSent, attempts: attempts}
	return nil
}

func (q *fakeQueue) MarkRetry(_ context.Context, id string, attempts int, next time.Time, lastErr string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.marks[id] = mark{status: notification.StatusPending, attempts: attempts, next: next, lastErr: lastErr}
	return nil
}

func (q *fakeQueue) MarkFailed(_ context.Context, id string, attempts int, lastErr string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.marks[id] = mark{status: notification.StatusFailed, attempts: attempts, lastErr: lastErr}
	return nil
}

func (q *fakeQueue) Depth(context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.pending)), nil
}

type mockDeliverer struct {
	DispatchFunc func(ctx context.Context, intent *notification.Intent) error
}

func (m *mockDeliverer) Dispatch(ctx context.Context, intent *notification.Intent) error {
	return m.DispatchFunc(ctx, intent)
}

type countingObserver struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (o *countingObserver) ObserveDelivery(_ notification.Kind, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes[outcome]++
}

func (o *countingObserver) SetOutboxDepth(int64) {}

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func intent(id string, attempts int) *notification.Intent {
	i := notification.NewIntent(notification.KindLate, "loan_1", notification.Recipient{UserID: "usr_ada", Email: "ada@example.com"}, notification.MediaDescriptor{Title: "Dune"}, now)
	i.ID = id
	i.Attempts = attempts
	i.MaxAttempts = 3
	return i
}

func newTestWorker(q notification.Queue, d Deliverer, obs Observer) *Worker {
	policy := retry.Policy{MaxAttempts: 3, InitialDelay: time.Minute, MaxDelay: time.Hour, BackoffStrategy: retry.BackoffExponential}
	w := NewWorker(1, q, d, Config{BatchSize: 10, SendTimeout: time.Second, Policy: policy}, obs, zerolog.Nop())
	w.now = func() time.Time { return now }
	return w
}

func TestProcessBatchMarksSent(t *testing.T) {
	q := newFakeQueue(intent("ntf_1", 0), intent("ntf_2", 0))
	obs := &countingObserver{outcomes: map[string]int{}}
	var delivered []string
	w := newTestWorker(q, &mockDeliverer{DispatchFunc: func(_ context.Context, i *notification.Intent) error {
		delivered = append(delivered, i.ID)
		return nil
	}}, obs)

	assert.Equal(t, 2, w.processBatch(context.Background()))
	assert.Equal(t, []string{"ntf_1", "ntf_2"}, delivered)
	assert.Equal(t, mark{status: notification.StatusSent, attempts: 1}, q.marks["ntf_1"])
	assert.Equal(t, 2, obs.outcomes[OutcomeSent])
}

func TestProcessBatchReschedulesTransientFailure(t *testing.T) {
	q := newFakeQueue(intent("ntf_1", 1))
	w := newTestWorker(q, &mockDeliverer{DispatchFunc: func(context.Context, *notification.Intent) error {
		return errors.New("smtp: connection reset")
	}}, nil)

	w.processBatch(context.Background())

	m := q.marks["ntf_1"]
	assert.Equal(t, notification.StatusPending, m.status)
	assert.Equal(t, 2, m.attempts)
	assert.Equal(t, "smtp: connection reset", m.lastErr)
	assert.Equal(t, now.Add(2*time.Minute), m.next)
}

func TestProcessBatchFailsAfterMaxAttempts(t *testing.T) {
	q := newFakeQueue(intent("ntf_1", 2))
	obs := &countingObserver{outcomes: map[string]int{}}
	w := newTestWorker(q, &mockDeliverer{DispatchFunc: func(context.Context, *notification.Intent) error {
		return errors.New("mailbox unavailable")
	}}, obs)

	w.processBatch(context.Background())

	assert.Equal(t, notification.StatusFailed, q.marks["ntf_1"].status)
	assert.Equal(t, 3, q.marks["ntf_1"].attempts)
	assert.Equal(t, 1, obs.outcomes[OutcomeFailed])
}

func TestProcessBatchPermanentErrorSkipsRetry(t *testing.T) {
	q := newFakeQueue(intent("ntf_1", 0))
	w := newTestWorker(q, &mockDeliverer{DispatchFunc: func(context.Context, *notification.Intent) error {
		return retry.Permanent(errors.New("no recipient"))
	}}, nil)

	w.processBatch(context.Background())

	assert.Equal(t, notification.StatusFailed, q.marks["ntf_1"].status)
	assert.Equal(t, 1, q.marks["ntf_1"].attempts)
}

func TestProcessBatchAppliesSendTimeout(t *testing.T) {
	q := newFakeQueue(intent("ntf_1", 0))
	w := newTestWorker(q, &mockDeliverer{DispatchFunc: func(ctx context.Context, _ *notification.Intent) error {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
		return nil
	}}, nil)

	w.processBatch(context.Background())
	assert.Equal(t, notification.StatusSent, q.marks["ntf_1"].status)
}

func TestProcessBatchRespectsBatchSize(t *testing.T) {
	var intents []*notification.Intent
	for _, id := range []string{"a", "b", "c", "d"} {
		intents = append(intents, intent(id, 0))
	}
	q := newFakeQueue(intents...)
	w := newTestWorker(q, &mockDeliverer{DispatchFunc: func(context.Context, *notification.Intent) error { return nil }}, nil)
	w.cfg.BatchSize = 3

	assert.Equal(t, 3, w.processBatch(context.Background()))
	depth, err := q.Depth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), depth)
}

func TestPoolDrainsAndStops(t *testing.T) {
	q := newFakeQueue(intent("ntf_1", 0), intent("ntf_2", 0))
	pool := NewPool(q, &mockDeliverer{DispatchFunc: func(context.Context, *notification.Intent) error { return nil }},
		Config{WorkerCount: 2, PollInterval: 10 * time.Millisecond, StopTimeout: time.Second}, zerolog.Nop())

	require.NoError(t, pool.Start(context.Background()))
	assert.Eventually(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.marks) == 2
	}, time.Second, 10*time.Millisecond)

	pool.Stop()
	pool.Stop()

	depth, err := pool.QueueDepth(context.Background())
	require.NoError(t, err)
	assert.Zero(t, depth)
}
