package crontab

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/domain/reminder"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

// DefaultJobTimeout bounds a single reminder run.
const DefaultJobTimeout = 10 * time.Minute

// ReminderRunner runs one reminder pass.
type ReminderRunner interface {
	Run(ctx context.Context, now time.Time) (*reminder.RunReport, error)
}

// Config selects the daily run time.
type Config struct {
	Location *time.Location
	Hour     int
	Minute   int
	Timeout  time.Duration
}

// Crontab triggers the reminder scheduler once a day at a fixed local time.
// The underlying cron ticks every minute in the process timezone, so the
// wall clock check happens in the configured location instead.
type Crontab struct {
	ctab    *crontab.Crontab
	runner  ReminderRunner
	cfg     Config
	now     func() time.Time
	running atomic.Bool
	log     zerolog.Logger
}

// NewCrontab creates the reminder trigger.
func NewCrontab(runner ReminderRunner, cfg Config, log zerolog.Logger) *Crontab {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultJobTimeout
	}
	return &Crontab{
		ctab:   crontab.New(),
		runner: runner,
		cfg:    cfg,
		now:    time.Now,
		log:    log.With().Str("component", "crontab").Logger(),
	}
}

// Run schedules the job and blocks until ctx is done.
func (c *Crontab) Run(ctx context.Context) error {
	if err := c.ctab.AddJob("* * * * *", func() { c.tick(ctx) }); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add reminder job")
	}
	c.log.Info().
		Str("timezone", c.cfg.Location.String()).
		Int("hour", c.cfg.Hour).
		Int("minute", c.cfg.Minute).
		Msg("reminder job scheduled")

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

// Due reports whether t falls on the configured minute in the configured location.
func (c *Crontab) Due(t time.Time) bool {
	local := t.In(c.cfg.Location)
	return local.Hour() == c.cfg.Hour && local.Minute() == c.cfg.Minute
}

// tick returns whether a run was started.
func (c *Crontab) tick(ctx context.Context) bool {
	now := c.now()
	if !c.Due(now) {
		return false
	}
	if !c.running.CompareAndSwap(false, true) {
		c.log.Warn().Msg("previous reminder run still in progress, skipping")
		return false
	}
	defer c.running.Store(false)

	jobCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	report, err := c.runner.Run(jobCtx, now)
	if err != nil {
		c.log.Error().Err(err).Msg("reminder run failed")
		return true
	}
	c.log.Info().
		Int("scanned", report.Scanned).
		Int("due_soon", report.DueSoon).
		Int("late", report.Late).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Bool("contended", report.Contended).
		Msg("reminder run finished")
	return true
}
