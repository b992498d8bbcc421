package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/domain/notification"
	"github.com/janhq/library-api/internal/domain/retry"
)

// Deliverer sends a single notification intent.
type Deliverer interface {
	Dispatch(ctx context.Context, intent *notification.Intent) error
}

// Observer receives delivery outcomes. Outcome is "sent", "retry" or "failed".
type Observer interface {
	ObserveDelivery(kind notification.Kind, outcome string)
	SetOutboxDepth(depth int64)
}

// Pool manages the notification delivery workers.
type Pool struct {
	workers     []*Worker
	queue       notification.Queue
	deliverer   Deliverer
	cfg         Config
	observer    Observer
	log         zerolog.Logger
	wg          sync.WaitGroup
	stopOnce    sync.Once
	stopChan    chan struct{}
}

// Config contains worker pool configuration.
type Config struct {
	WorkerCount  int
	PollInterval time.Duration
	BatchSize    int
	SendTimeout  time.Duration
	StopTimeout  time.Duration
	Policy       retry.Policy
}

func (c Config) withDefaults() Config {
	if c.WorkerCount <= 0 {
		c.WorkerCount = 1
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 30 * time.Second
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = 30 * time.Second
	}
	if c.Policy.MaxAttempts <= 0 {
		c.Policy = retry.DefaultPolicy()
	}
	return c
}

// NewPool creates a new worker pool.
func NewPool(
	queue notification.Queue,
	deliverer Deliverer,
	cfg Config,
	log zerolog.Logger,
) *Pool {
	return &Pool{
		queue:     queue,
		deliverer: deliverer,
		cfg:       cfg.withDefaults(),
		log:       log.With().Str("component", "worker-pool").Logger(),
		stopChan:  make(chan struct{}),
	}
}

// WithObserver attaches a delivery observer, typically the metrics collector.
func (p *Pool) WithObserver(observer Observer) *Pool {
	p.observer = observer
	return p
}

// Start initializes and starts all workers.
func (p *Pool) Start(ctx context.Context) error {
	p.log.Info().Int("worker_count", p.cfg.WorkerCount).Dur("poll_interval", p.cfg.PollInterval).Msg("starting worker pool")

	p.workers = make([]*Worker, p.cfg.WorkerCount)
	for i := 0; i < p.cfg.WorkerCount; i++ {
		worker := NewWorker(i+1, p.queue, p.deliverer, p.cfg, p.observer, p.log)
		p.workers[i] = worker

		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Start(ctx)
		}(worker)
	}

	if p.observer != nil {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.reportDepth(ctx)
		}()
	}

	p.log.Info().Msg("worker pool started")
	return nil
}

func (p *Pool) reportDepth(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			depth, err := p.queue.Depth(ctx)
			if err != nil {
				p.log.Warn().Err(err).Msg("failed to read outbox depth")
				continue
			}
			p.observer.SetOutboxDepth(depth)
		}
	}
}

// Stop gracefully shuts down all workers. In-flight sends finish first.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.log.Info().Msg("stopping worker pool")

		close(p.stopChan)
		for _, worker := range p.workers {
			worker.Stop()
		}

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			p.log.Info().Msg("all workers stopped gracefully")
		case <-time.After(p.cfg.StopTimeout):
			p.log.Warn().Msg("worker pool shutdown timed out")
		}
	})
}

// QueueDepth returns the number of undelivered intents.
func (p *Pool) QueueDepth(ctx context.Context) (int64, error) {
	return p.queue.Depth(ctx)
}
