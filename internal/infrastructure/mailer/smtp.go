// Package mailer delivers borrower notifications by email.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/domain/notification"
	"github.com/janhq/library-api/internal/domain/retry"
)

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	UseTLS   bool
	Location *time.Location
}

// SMTPNotifier implements notification.Notifier over SMTP.
type SMTPNotifier struct {
	cfg         SMTPConfig
	dialTimeout time.Duration
	log         zerolog.Logger
}

var _ notification.Notifier = (*SMTPNotifier)(nil)

// NewSMTPNotifier creates an SMTP notifier.
func NewSMTPNotifier(cfg SMTPConfig, log zerolog.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		cfg:         cfg,
		dialTimeout: 30 * time.Second,
		log:         log.With().Str("component", "smtp-notifier").Logger(),
	}
}

func (n *SMTPNotifier) SendBorrowConfirmation(ctx context.Context, to notification.Recipient, item notification.MediaDescriptor) error {
	return n.send(ctx, notification.KindBorrowConfirmation, to, item)
}

func (n *SMTPNotifier) SendReturnConfirmation(ctx context.Context, to notification.Recipient, item notification.MediaDescriptor) error {
	return n.send(ctx, notification.KindReturnConfirmation, to, item)
}

func (n *SMTPNotifier) SendDueSoonReminder(ctx context.Context, to notification.Recipient, item notification.MediaDescriptor) error {
	return n.send(ctx, notification.KindDueSoon, to, item)
}

func (n *SMTPNotifier) SendLateReminder(ctx context.Context, to notification.Recipient, item notification.MediaDescriptor) error {
	return n.send(ctx, notification.KindLate, to, item)
}

func (n *SMTPNotifier) send(ctx context.Context, kind notification.Kind, to notification.Recipient, item notification.MediaDescriptor) error {
	if _, err := mail.ParseAddress(to.Email); err != nil {
		return retry.Permanent(fmt.Errorf("invalid recipient %q: %w", to.Email, err))
	}

	msg, err := Render(kind, to, item, n.cfg.Location)
	if err != nil {
		return retry.Permanent(err)
	}

	if err := n.sendSMTP(ctx, to.Email, buildMessage(n.cfg, to, msg)); err != nil {
		if isPermanentSMTPError(err) {
			return retry.Permanent(err)
		}
		return err
	}

	n.log.Debug().Str("kind", string(kind)).Str("user_id", to.UserID).Msg("email sent")
	return nil
}

func buildMessage(cfg SMTPConfig, to notification.Recipient, msg *Message) string {
	from := (&mail.Address{Name: cfg.FromName, Address: cfg.From}).String()
	rcpt := (&mail.Address{Name: to.Name, Address: to.Email}).String()

	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", rcpt))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject)))
	b.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return b.String()
}

func (n *SMTPNotifier) sendSMTP(ctx context.Context, to, msg string) error {
	addr := net.JoinHostPort(n.cfg.Host, fmt.Sprintf("%d", n.cfg.Port))

	dialer := &net.Dialer{Timeout: n.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if n.cfg.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: n.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if n.cfg.User != "" && n.cfg.Password != "" {
		auth := smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := writer.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// The message is accepted once DATA closes.
	_ = client.Quit()
	return nil
}

// isPermanentSMTPError reports 5xx replies, which will not succeed on retry.
func isPermanentSMTPError(err error) bool {
	msg := err.Error()
	if strings.Contains(msg, "authentication failed") {
		return true
	}
	for _, code := range []string{"550", "551", "552", "553", "554"} {
		if strings.Contains(msg, ": "+code+" ") {
			return true
		}
	}
	return false
}
