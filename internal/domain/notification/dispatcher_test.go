package notification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/library-api/internal/domain/notification"
	"github.com/janhq/library-api/internal/domain/retry"
)

type recordingNotifier struct {
	calls []notification.Kind
	err   error
}

func (n *recordingNotifier) SendBorrowConfirmation(context.Context, notification.Recipient, notification.MediaDescriptor) error {
	n.calls = append(n.calls, notification.KindBorrowConfirmation)
	return n.err
}

func (n *recordingNotifier) SendReturnConfirmation(context.Context, notification.Recipient, notification.MediaDescriptor) error {
	n.calls = append(n.calls, notification.KindReturnConfirmation)
	return n.err
}

func (n *recordingNotifier) SendDueSoonReminder(context.Context, notification.Recipient, notification.MediaDescriptor) error {
	n.calls = append(n.calls, notification.KindDueSoon)
	return n.err
}

func (n *recordingNotifier) SendLateReminder(context.Context, notification.Recipient, notification.MediaDescriptor) error {
	n.calls = append(n.calls, notification.KindLate)
	return n.err
}

func intentOf(kind notification.Kind) *notification.Intent {
	return notification.NewIntent(kind, "loan_1",
		notification.Recipient{UserID: "usr_1", Name: "Ada", Email: "ada@example.com"},
		notification.MediaDescriptor{MediaID: "med_1", Title: "Dune", Type: "book", DueAt: time.Now()},
		time.Now())
}

func TestDispatchRoutesByKind(t *testing.T) {
	n := &recordingNotifier{}
	d := notification.NewDispatcher(n)

	kinds := []notification.Kind{
		notification.KindBorrowConfirmation,
		notification.KindReturnConfirmation,
		notification.KindDueSoon,
		notification.KindLate,
	}
	for _, kind := range kinds {
		require.NoError(t, d.Dispatch(context.Background(), intentOf(kind)))
	}
	assert.Equal(t, kinds, n.calls)
}

func TestDispatchTransientErrorIsRetryable(t *testing.T) {
	n := &recordingNotifier{err: errors.New("smtp timeout")}
	d := notification.NewDispatcher(n)

	err := d.Dispatch(context.Background(), intentOf(notification.KindLate))
	require.Error(t, err)
	assert.False(t, retry.IsPermanent(err))
}

func TestDispatchMalformedIntentIsPermanent(t *testing.T) {
	d := notification.NewDispatcher(&recordingNotifier{})

	unknown := intentOf(notification.Kind("fax"))
	assert.True(t, retry.IsPermanent(d.Dispatch(context.Background(), unknown)))

	noEmail := intentOf(notification.KindLate)
	noEmail.Recipient.Email = ""
	assert.True(t, retry.IsPermanent(d.Dispatch(context.Background(), noEmail)))
}

func TestNewIntentDefaults(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.FixedZone("ICT", 7*3600))
	intent := notification.NewIntent(notification.KindDueSoon, "loan_1", notification.Recipient{Email: "a@b.co"}, notification.MediaDescriptor{}, now)

	assert.Equal(t, notification.StatusPending, intent.Status)
	assert.Equal(t, now.UTC(), intent.NextAttemptAt)
	assert.True(t, notification.StatusProcessing.CanTransitionTo(notification.StatusSent))
	assert.False(t, notification.StatusSent.CanTransitionTo(notification.StatusPending))
	assert.True(t, notification.StatusFailed.IsTerminal())
}
