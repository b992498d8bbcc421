package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/domain/notification"
	"github.com/janhq/library-api/internal/domain/retry"
)

const (
	OutcomeSent   = "sent"
	OutcomeRetry  = "retry"
	OutcomeFailed = "failed"
)

// Worker drains due intents from the outbox.
type Worker struct {
	id        int
	queue     notification.Queue
	deliverer Deliverer
	cfg       Config
	observer  Observer
	now       func() time.Time
	log       zerolog.Logger
	stopChan  chan struct{}
}

// NewWorker creates a new delivery worker.
func NewWorker(
	id int,
	queue notification.Queue,
	deliverer Deliverer,
	cfg Config,
	observer Observer,
	log zerolog.Logger,
) *Worker {
	return &Worker{
		id:        id,
		queue:     queue,
		deliverer: deliverer,
		cfg:       cfg.withDefaults(),
		observer:  observer,
		now:       time.Now,
		log:       log.With().Int("worker_id", id).Str("component", "worker").Logger(),
		stopChan:  make(chan struct{}),
	}
}

// Start polls the outbox until ctx is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info().Msg("worker started")

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("worker stopped by context")
			return
		case <-w.stopChan:
			w.log.Info().Msg("worker stopped")
			return
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	close(w.stopChan)
}

// processBatch claims due intents and delivers them one by one. It returns the
// number of intents claimed.
func (w *Worker) processBatch(ctx context.Context) int {
	intents, err := w.queue.Claim(ctx, w.now().UTC(), w.cfg.BatchSize)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to claim notifications")
		return 0
	}

	for _, intent := range intents {
		w.deliver(ctx, intent)
	}
	return len(intents)
}

func (w *Worker) deliver(ctx context.Context, intent *notification.Intent) {
	log := w.log.With().Str("notification_id", intent.ID).Str("kind", string(intent.Kind)).Str("loan_id", intent.LoanID).Logger()

	sendCtx, cancel := context.WithTimeout(ctx, w.cfg.SendTimeout)
	err := w.deliverer.Dispatch(sendCtx, intent)
	cancel()

	attempts := intent.Attempts + 1
	now := w.now().UTC()

	if err == nil {
		if markErr := w.queue.MarkSent(ctx, intent.ID, attempts, now); markErr != nil {
			log.Error().Err(markErr).Msg("failed to mark notification sent")
		}
		log.Info().Int("attempts", attempts).Msg("notification sent")
		w.observe(intent.Kind, OutcomeSent)
		return
	}

	maxAttempts := intent.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = w.cfg.Policy.MaxAttempts
	}

	if retry.IsPermanent(err) || attempts >= maxAttempts {
		if markErr := w.queue.MarkFailed(ctx, intent.ID, attempts, err.Error()); markErr != nil {
			log.Error().Err(markErr).Msg("failed to mark notification failed")
		}
		log.Error().Err(err).Int("attempts", attempts).Msg("notification delivery failed permanently")
		w.observe(intent.Kind, OutcomeFailed)
		return
	}

	next := w.cfg.Policy.NextAttemptAt(now, attempts)
	if markErr := w.queue.MarkRetry(ctx, intent.ID, attempts, next, err.Error()); markErr != nil {
		log.Error().Err(markErr).Msg("failed to reschedule notification")
	}
	log.Warn().Err(err).Int("attempts", attempts).Time("next_attempt_at", next).Msg("notification delivery failed, will retry")
	w.observe(intent.Kind, OutcomeRetry)
}

func (w *Worker) observe(kind notification.Kind, outcome string) {
	if w.observer != nil {
		w.observer.ObserveDelivery(kind, outcome)
	}
}
