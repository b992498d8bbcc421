package notification

import (
	"context"
	"time"
)

// Outbox accepts intents. Enqueue joins the transaction carried by ctx, if any.
type Outbox interface {
	Enqueue(ctx context.Context, intent *Intent) error
}

// Queue is the worker side of the outbox.
type Queue interface {
	// Claim locks up to limit due intents, marks them processing and returns them.
	Claim(ctx context.Context, now time.Time, limit int) ([]*Intent, error)

	// MarkSent records a successful delivery.
	MarkSent(ctx context.Context, id string, attempts int, at time.Time) error

	// MarkRetry puts the intent back to pending until next.
	MarkRetry(ctx context.Context, id string, attempts int, next time.Time, lastErr string) error

	// MarkFailed gives up on the intent.
	MarkFailed(ctx context.Context, id string, attempts int, lastErr string) error

	// Depth returns the number of intents not yet in a terminal state.
	Depth(ctx context.Context) (int64, error)
}
