package mailer

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/domain/notification"
)

// LogNotifier renders notifications and writes them to the log instead of
// sending them. It is used when no SMTP host is configured.
type LogNotifier struct {
	loc *time.Location
	log zerolog.Logger
}

var _ notification.Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(loc *time.Location, log zerolog.Logger) *LogNotifier {
	return &LogNotifier{loc: loc, log: log.With().Str("component", "log-notifier").Logger()}
}

func (n *LogNotifier) SendBorrowConfirmation(_ context.Context, to notification.Recipient, item notification.MediaDescriptor) error {
	return n.write(notification.KindBorrowConfirmation, to, item)
}

func (n *LogNotifier) SendReturnConfirmation(_ context.Context, to notification.Recipient, item notification.MediaDescriptor) error {
	return n.write(notification.KindReturnConfirmation, to, item)
}

func (n *LogNotifier) SendDueSoonReminder(_ context.Context, to notification.Recipient, item notification.MediaDescriptor) error {
	return n.write(notification.KindDueSoon, to, item)
}

func (n *LogNotifier) SendLateReminder(_ context.Context, to notification.Recipient, item notification.MediaDescriptor) error {
	return n.write(notification.KindLate, to, item)
}

func (n *LogNotifier) write(kind notification.Kind, to notification.Recipient, item notification.MediaDescriptor) error {
	msg, err := Render(kind, to, item, n.loc)
	if err != nil {
		return err
	}
	n.log.Info().
		Str("kind", string(kind)).
		Str("to", to.Email).
		Str("media_id", item.MediaID).
		Str("subject", msg.Subject).
		Msg("notification")
	return nil
}
