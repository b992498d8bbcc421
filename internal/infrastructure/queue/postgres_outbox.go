package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/janhq/library-api/internal/domain/notification"
	"github.com/janhq/library-api/internal/infrastructure/database/dbschema"
	"github.com/janhq/library-api/internal/infrastructure/database/transaction"
)

// DefaultLease is how long a claimed intent stays processing before another
// worker may reclaim it.
const DefaultLease = 5 * time.Minute

// PostgresOutbox stores notification intents in the notification_outbox table.
type PostgresOutbox struct {
	db          *transaction.Database
	maxAttempts int
	lease       time.Duration
	log         zerolog.Logger
}

var (
	_ notification.Outbox = (*PostgresOutbox)(nil)
	_ notification.Queue  = (*PostgresOutbox)(nil)
)

// NewPostgresOutbox creates a new PostgreSQL-backed outbox.
func NewPostgresOutbox(db *transaction.Database, maxAttempts int, log zerolog.Logger) *PostgresOutbox {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &PostgresOutbox{
		db:          db,
		maxAttempts: maxAttempts,
		lease:       DefaultLease,
		log:         log.With().Str("component", "postgres-outbox").Logger(),
	}
}

// Enqueue inserts a pending intent inside the caller's transaction, if any.
func (q *PostgresOutbox) Enqueue(ctx context.Context, intent *notification.Intent) error {
	if intent.MaxAttempts <= 0 {
		intent.MaxAttempts = q.maxAttempts
	}
	if intent.Status == "" {
		intent.Status = notification.StatusPending
	}
	if err := q.db.GetTx(ctx).Create(dbschema.NotificationDtoE(intent)).Error; err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

// Claim locks due intents with FOR UPDATE SKIP LOCKED and marks them processing.
// Intents left processing longer than the lease are claimed again.
func (q *PostgresOutbox) Claim(ctx context.Context, now time.Time, limit int) ([]*notification.Intent, error) {
	var rows []dbschema.NotificationOutbox
	err := q.db.WithinTransaction(ctx, func(ctx context.Context) error {
		tx := q.db.GetTx(ctx)
		err := tx.Raw(`SELECT * FROM notification_outbox
			WHERE (status = ? AND next_attempt_at <= ?) OR (status = ? AND updated_at < ?)
			ORDER BY next_attempt_at ASC, id ASC
			LIMIT ?
			FOR UPDATE SKIP LOCKED`,
			string(notification.StatusPending), now,
			string(notification.StatusProcessing), now.Add(-q.lease),
			limit).
			Scan(&rows).Error
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		ids := make([]string, len(rows))
		for i := range rows {
			ids[i] = rows[i].ID
			rows[i].Status = string(notification.StatusProcessing)
			rows[i].UpdatedAt = now
		}
		return tx.Model(&dbschema.NotificationOutbox{}).
			Where("id IN ?", ids).
			Updates(map[string]any{"status": string(notification.StatusProcessing), "updated_at": now}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("claim notifications: %w", err)
	}

	intents := make([]*notification.Intent, len(rows))
	for i := range rows {
		intents[i] = rows[i].EtoD()
	}
	return intents, nil
}

func (q *PostgresOutbox) update(ctx context.Context, id string, values map[string]any) error {
	result := q.db.GetTx(ctx).Model(&dbschema.NotificationOutbox{}).
		Where("id = ? AND status = ?", id, string(notification.StatusProcessing)).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkSent records a successful delivery.
func (q *PostgresOutbox) MarkSent(ctx context.Context, id string, attempts int, at time.Time) error {
	err := q.update(ctx, id, map[string]any{
		"status":     string(notification.StatusSent),
		"attempts":   attempts,
		"sent_at":    at,
		"last_error": "",
		"updated_at": at,
	})
	if err != nil {
		return fmt.Errorf("mark sent %s: %w", id, err)
	}
	return nil
}

// MarkRetry reschedules the intent.
func (q *PostgresOutbox) MarkRetry(ctx context.Context, id string, attempts int, next time.Time, lastErr string) error {
	err := q.update(ctx, id, map[string]any{
		"status":          string(notification.StatusPending),
		"attempts":        attempts,
		"next_attempt_at": next,
		"last_error":      lastErr,
		"updated_at":      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("mark retry %s: %w", id, err)
	}
	return nil
}

// MarkFailed gives up on the intent.
func (q *PostgresOutbox) MarkFailed(ctx context.Context, id string, attempts int, lastErr string) error {
	err := q.update(ctx, id, map[string]any{
		"status":     string(notification.StatusFailed),
		"attempts":   attempts,
		"last_error": lastErr,
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("mark failed %s: %w", id, err)
	}
	return nil
}

// Depth returns the number of pending or processing intents.
func (q *PostgresOutbox) Depth(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.GetTx(ctx).
		Model(&dbschema.NotificationOutbox{}).
		Where("status IN ?", []string{string(notification.StatusPending), string(notification.StatusProcessing)}).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("get outbox depth: %w", err)
	}
	return count, nil
}
