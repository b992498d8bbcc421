package notification

import (
	"context"
	"fmt"

	"github.com/janhq/library-api/internal/domain/retry"
)

// Dispatcher routes an intent to the matching Notifier method.
type Dispatcher struct {
	notifier Notifier
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(notifier Notifier) *Dispatcher {
	return &Dispatcher{notifier: notifier}
}

// Dispatch delivers the intent. Malformed intents fail permanently.
func (d *Dispatcher) Dispatch(ctx context.Context, intent *Intent) error {
	if intent == nil {
		return retry.Permanent(fmt.Errorf("nil intent"))
	}
	if intent.Recipient.Email == "" {
		return retry.Permanent(fmt.Errorf("intent %s has no recipient email", intent.ID))
	}

	switch intent.Kind {
	case KindBorrowConfirmation:
		return d.notifier.SendBorrowConfirmation(ctx, intent.Recipient, intent.Media)
	case KindReturnConfirmation:
		return d.notifier.SendReturnConfirmation(ctx, intent.Recipient, intent.Media)
	case KindDueSoon:
		return d.notifier.SendDueSoonReminder(ctx, intent.Recipient, intent.Media)
	case KindLate:
		return d.notifier.SendLateReminder(ctx, intent.Recipient, intent.Media)
	default:
		return retry.Permanent(fmt.Errorf("unknown notification kind %q", intent.Kind))
	}
}
