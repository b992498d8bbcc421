package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/library-api/internal/domain/notification"
	"github.com/janhq/library-api/internal/domain/retry"
)

var (
	ada  = notification.Recipient{UserID: "usr_ada", Name: "Ada", Email: "ada@example.com"}
	dune = notification.MediaDescriptor{
		MediaID: "med_dune",
		Title:   "Dune",
		Type:    "book",
		Author:  "Frank Herbert",
		DueAt:   time.Date(2026, 3, 12, 23, 30, 0, 0, time.UTC),
	}
)

func TestRenderTemplates(t *testing.T) {
	tests := []struct {
		name        string
		kind        notification.Kind
		item        func() notification.MediaDescriptor
		subject     string
		bodyContain []string
	}{
		{
			name:        "borrow confirmation",
			kind:        notification.KindBorrowConfirmation,
			item:        func() notification.MediaDescriptor { return dune },
			subject:     `You borrowed "Dune"`,
			bodyContain: []string{"Hi Ada", "by Frank Herbert", "Thursday, March 12, 2026"},
		},
		{
			name:        "due soon",
			kind:        notification.KindDueSoon,
			item:        func() notification.MediaDescriptor { return dune },
			subject:     `"Dune" is due on Thursday, March 12, 2026`,
			bodyContain: []string{"friendly reminder"},
		},
		{
			name: "late",
			kind: notification.KindLate,
			item: func() notification.MediaDescriptor {
				d := dune
				d.DaysLate = 1
				return d
			},
			subject:     `"Dune" is overdue`,
			bodyContain: []string{"1 day late"},
		},
		{
			name: "late return",
			kind: notification.KindReturnConfirmation,
			item: func() notification.MediaDescriptor {
				d := dune
				returned := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
				d.ReturnedAt = &returned
				d.DaysLate = 3
				return d
			},
			subject:     `Thanks for returning "Dune"`,
			bodyContain: []string{"Sunday, March 15, 2026", "3 days late"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Render(tt.kind, ada, tt.item(), time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tt.subject, msg.Subject)
			for _, s := range tt.bodyContain {
				assert.Contains(t, msg.Body, s)
			}
		})
	}
}

func TestRenderUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	msg, err := Render(notification.KindDueSoon, ada, dune, loc)
	require.NoError(t, err)
	assert.Contains(t, msg.Subject, "Friday, March 13, 2026")
}

func TestRenderUnknownKind(t *testing.T) {
	_, err := Render(notification.Kind("birthday"), ada, dune, nil)
	require.Error(t, err)
}

func TestRenderOnTimeReturnOmitsLateLine(t *testing.T) {
	returned := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
	item := dune
	item.ReturnedAt = &returned

	msg, err := Render(notification.KindReturnConfirmation, notification.Recipient{Email: "x@example.com"}, item, nil)
	require.NoError(t, err)
	assert.Contains(t, msg.Body, "Hi there")
	assert.NotContains(t, msg.Body, "late")
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := buildMessage(SMTPConfig{From: "library@example.com", FromName: "Media Library"}, ada, &Message{Subject: "Hello", Body: "line one\nline two\n"})

	assert.Contains(t, msg, "From: \"Media Library\" <library@example.com>\r\n")
	assert.Contains(t, msg, "To: \"Ada\" <ada@example.com>\r\n")
	assert.Contains(t, msg, "Subject: Hello\r\n")
	assert.Contains(t, msg, "\r\n\r\nline one\r\nline two\r\n")
}

func TestSendRejectsInvalidRecipientPermanently(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "127.0.0.1", Port: 1}, zerolog.Nop())
	err := n.SendLateReminder(context.Background(), notification.Recipient{Email: "not-an-address"}, dune)
	require.Error(t, err)
	assert.True(t, retry.IsPermanent(err))
}

func TestIsPermanentSMTPError(t *testing.T) {
	assert.True(t, isPermanentSMTPError(fmt.Errorf("failed to set recipient: %w", errors.New("550 5.1.1 user unknown"))))
	assert.True(t, isPermanentSMTPError(errors.New("SMTP authentication failed: 535 bad credentials")))
	assert.False(t, isPermanentSMTPError(errors.New("failed to connect to SMTP server: connection refused")))
	assert.False(t, isPermanentSMTPError(errors.New("failed to set recipient: 451 try again later")))
}

func TestLogNotifierWritesSubject(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(time.UTC, zerolog.New(&buf))

	require.NoError(t, n.SendBorrowConfirmation(context.Background(), ada, dune))
	assert.Contains(t, buf.String(), `"subject":"You borrowed \"Dune\""`)
	assert.Contains(t, buf.String(), `"kind":"borrow_confirmation"`)
}
