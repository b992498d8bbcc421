// Package notification defines the outbound notifications sent to borrowers
// and the outbox that decouples them from loan state changes.
package notification

import (
	"context"
	"time"
)

// Recipient identifies who receives a notification.
type Recipient struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// MediaDescriptor describes the loaned item inside a notification.
type MediaDescriptor struct {
	MediaID    string     `json:"media_id"`
	Title      string     `json:"title"`
	Type       string     `json:"type"`
	Author     string     `json:"author,omitempty"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	DaysLate   int        `json:"days_late,omitempty"`
}

// Notifier delivers borrower notifications.
type Notifier interface {
	SendBorrowConfirmation(ctx context.Context, to Recipient, item MediaDescriptor) error
	SendReturnConfirmation(ctx context.Context, to Recipient, item MediaDescriptor) error
	SendDueSoonReminder(ctx context.Context, to Recipient, item MediaDescriptor) error
	SendLateReminder(ctx context.Context, to Recipient, item MediaDescriptor) error
}
