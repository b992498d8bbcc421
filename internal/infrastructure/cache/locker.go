package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/domain/reminder"
)

// RedisLocker implements reminder.Locker with a redsync mutex so that only one
// replica runs the reminder job at a time.
type RedisLocker struct {
	rs  *redsync.Redsync
	log zerolog.Logger
}

var _ reminder.Locker = (*RedisLocker)(nil)

// NewRedisLocker creates a locker on the given client.
func NewRedisLocker(client redis.UniversalClient, log zerolog.Logger) *RedisLocker {
	return &RedisLocker{
		rs:  redsync.New(goredis.NewPool(client)),
		log: log.With().Str("component", "redis-locker").Logger(),
	}
}

// TryLock acquires name without waiting. It returns reminder.ErrLocked when
// another holder has it.
func (l *RedisLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (reminder.Unlock, error) {
	mutex := l.rs.NewMutex(keyPrefix+name, redsync.WithExpiry(ttl), redsync.WithTries(1))

	if err := mutex.TryLockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.As(err, &taken) || errors.Is(err, redsync.ErrFailed) {
			return nil, reminder.ErrLocked
		}
		return nil, err
	}

	return func(ctx context.Context) error {
		if _, err := mutex.UnlockContext(ctx); err != nil {
			l.log.Error().Err(err).Str("lock", name).Msg("failed to unlock mutex")
			return err
		}
		return nil
	}, nil
}
