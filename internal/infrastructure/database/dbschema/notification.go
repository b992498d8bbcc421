package dbschema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/janhq/library-api/internal/domain/notification"
)

// NotificationOutbox represents the database schema for queued notifications
type NotificationOutbox struct {
	ID             string `gorm:"primaryKey;size:40"`
	Kind           string `gorm:"size:32;not null"`
	LoanID         string `gorm:"size:40;not null;index:idx_notification_outbox_loan"`
	RecipientID    string `gorm:"size:40;not null;default:''"`
	RecipientEmail string `gorm:"size:320;not null;default:''"`
	RecipientName  string `gorm:"size:255;not null;default:''"`
	Payload        datatypes.JSONType[notification.MediaDescriptor]
	Status         string    `gorm:"size:16;not null;default:pending"`
	Attempts       int       `gorm:"not null;default:0"`
	MaxAttempts    int       `gorm:"not null;default:5"`
	NextAttemptAt  time.Time `gorm:"not null"`
	LastError      string    `gorm:"type:text;not null;default:''"`
	SentAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (NotificationOutbox) TableName() string {
	return "notification_outbox"
}

// EtoD converts database schema to a domain intent (Entity to Domain)
func (n *NotificationOutbox) EtoD() *notification.Intent {
	return &notification.Intent{
		ID:     n.ID,
		Kind:   notification.Kind(n.Kind),
		LoanID: n.LoanID,
		Recipient: notification.Recipient{
			UserID: n.RecipientID,
			Name:   n.RecipientName,
			Email:  n.RecipientEmail,
		},
		Media:         n.Payload.Data(),
		Status:        notification.Status(n.Status),
		Attempts:      n.Attempts,
		MaxAttempts:   n.MaxAttempts,
		NextAttemptAt: n.NextAttemptAt,
		LastError:     n.LastError,
		SentAt:        n.SentAt,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
	}
}

// NotificationDtoE converts a domain intent to database schema (Domain to Entity)
func NotificationDtoE(i *notification.Intent) *NotificationOutbox {
	return &NotificationOutbox{
		ID:             i.ID,
		Kind:           string(i.Kind),
		LoanID:         i.LoanID,
		RecipientID:    i.Recipient.UserID,
		RecipientEmail: i.Recipient.Email,
		RecipientName:  i.Recipient.Name,
		Payload:        datatypes.NewJSONType(i.Media),
		Status:         string(i.Status),
		Attempts:       i.Attempts,
		MaxAttempts:    i.MaxAttempts,
		NextAttemptAt:  i.NextAttemptAt,
		LastError:      i.LastError,
		SentAt:         i.SentAt,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}
