package reminder

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/janhq/library-api/internal/domain"
	"github.com/janhq/library-api/internal/domain/loan"
	"github.com/janhq/library-api/internal/domain/notification"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

var tracer = otel.Tracer("library-api/reminder")

// LockName identifies the reminder run across instances.
const LockName = "library-api:reminder-run"

// ErrLocked means another instance holds the run lock.
var ErrLocked = errors.New("reminder run already in progress")

// Ledger is the slice of loan persistence the scheduler needs.
type Ledger interface {
	ListActive(ctx context.Context) ([]*loan.View, error)
	ClaimDueSoonReminder(ctx context.Context, id string, at time.Time) (bool, error)
	ClaimLateReminder(ctx context.Context, id string, at, since time.Time) (bool, error)
}

// Unlock releases a lock obtained from a Locker.
type Unlock func(ctx context.Context) error

// Locker guards a run so only one instance scans at a time.
type Locker interface {
	// TryLock returns ErrLocked when the lock is held elsewhere.
	TryLock(ctx context.Context, name string, ttl time.Duration) (Unlock, error)
}

// Recorder observes finished runs.
type Recorder interface {
	ObserveReminderRun(report *RunReport)
}

// RunReport summarizes one scheduler run.
type RunReport struct {
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Scanned    int       `json:"scanned"`
	DueSoon    int       `json:"dueSoon"`
	Late       int       `json:"late"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	// Contended is set when another instance held the run lock.
	Contended bool `json:"contended"`
}

// Config holds scheduler settings.
type Config struct {
	Location *time.Location
	LockTTL  time.Duration
}

// Scheduler sends due-soon and late reminders for borrowed loans.
type Scheduler struct {
	ledger   Ledger
	outbox   notification.Outbox
	tx       domain.Transactor
	locker   Locker
	recorder Recorder
	cfg      Config
	log      zerolog.Logger
}

// NewScheduler creates a scheduler.
func NewScheduler(ledger Ledger, outbox notification.Outbox, tx domain.Transactor, cfg Config, log zerolog.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	return &Scheduler{
		ledger: ledger,
		outbox: outbox,
		tx:     tx,
		cfg:    cfg,
		log:    log.With().Str("component", "reminder-scheduler").Logger(),
	}
}

// WithLocker enables the cross-instance run lock.
func (s *Scheduler) WithLocker(locker Locker) *Scheduler {
	s.locker = locker
	return s
}

// WithRecorder attaches a run observer.
func (s *Scheduler) WithRecorder(recorder Recorder) *Scheduler {
	s.recorder = recorder
	return s
}

// Location returns the timezone calendar days are computed in.
func (s *Scheduler) Location() *time.Location {
	return s.cfg.Location
}

// Run scans every borrowed loan once. A failure to load loans aborts the run;
// failures on single loans are counted and the scan continues.
func (s *Scheduler) Run(ctx context.Context, now time.Time) (*RunReport, error) {
	ctx, span := tracer.Start(ctx, "reminder.run")
	defer span.End()

	report := &RunReport{StartedAt: now.UTC()}

	if s.locker != nil {
		unlock, err := s.locker.TryLock(ctx, LockName, s.cfg.LockTTL)
		if errors.Is(err, ErrLocked) {
			s.log.Info().Msg("reminder run skipped, lock held by another instance")
			report.Contended = true
			s.finish(report)
			return report, nil
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to acquire reminder lock")
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.log.Warn().Err(err).Msg("failed to release reminder lock")
			}
		}()
	}

	views, err := s.ledger.ListActive(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Error().Err(err).Msg("reminder run aborted, failed to load active loans")
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load active loans")
	}

	since := StartOfDay(now, s.cfg.Location).UTC()
	for _, v := range views {
		if err := ctx.Err(); err != nil {
			s.finish(report)
			return report, err
		}
		report.Scanned++

		bucket := Classify(now, v.DueAt, s.cfg.Location)
		if bucket == BucketNone {
			continue
		}

		sent, err := s.remind(ctx, v, bucket, now, since)
		switch {
		case err != nil:
			report.Failed++
			s.log.Error().Err(err).Str("loan_id", v.ID).Str("bucket", bucket.String()).Msg("failed to queue reminder")
		case !sent:
			report.Skipped++
		case bucket == BucketDueSoon:
			report.DueSoon++
		default:
			report.Late++
		}
	}

	s.finish(report)
	span.SetAttributes(
		attribute.Int("reminder.scanned", report.Scanned),
		attribute.Int("reminder.due_soon", report.DueSoon),
		attribute.Int("reminder.late", report.Late),
		attribute.Int("reminder.failed", report.Failed),
	)
	s.log.Info().
		Int("scanned", report.Scanned).
		Int("due_soon", report.DueSoon).
		Int("late", report.Late).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("reminder run finished")
	return report, nil
}

// remind claims the ledger slot and enqueues the reminder in one transaction.
// It reports false when the slot was already taken or the loan is no longer borrowed.
func (s *Scheduler) remind(ctx context.Context, v *loan.View, bucket Bucket, now, since time.Time) (bool, error) {
	kind := notification.KindDueSoon
	if bucket == BucketLate {
		kind = notification.KindLate
	}

	sent := false
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var (
			claimed bool
			err     error
		)
		if bucket == BucketDueSoon {
			claimed, err = s.ledger.ClaimDueSoonReminder(ctx, v.ID, now.UTC())
		} else {
			claimed, err = s.ledger.ClaimLateReminder(ctx, v.ID, now.UTC(), since)
		}
		if err != nil || !claimed {
			return err
		}
		intent := notification.NewIntent(kind, v.ID, loan.RecipientOf(v), loan.DescriptorOf(v, now), now)
		if err := s.outbox.Enqueue(ctx, intent); err != nil {
			return err
		}
		sent = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return sent, nil
}

func (s *Scheduler) finish(report *RunReport) {
	report.FinishedAt = time.Now().UTC()
	if s.recorder != nil {
		s.recorder.ObserveReminderRun(report)
	}
}
