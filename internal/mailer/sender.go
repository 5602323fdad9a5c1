// Package mailer sends campaign email through the Gmail API.
package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"
)

// Message is one outgoing email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a single message. The campaign runner and the single-send
// endpoint both go through this; tests inject a stub.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// ValidateEmail checks for injection characters and RFC 5322 compliance.
func ValidateEmail(email string) error {
	if strings.ContainsAny(email, "\r\n,;") {
		return fmt.Errorf("email contains invalid characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	return nil
}

// buildRaw assembles the RFC 2822 message and encodes it the way the Gmail
// API expects (base64url of the full message).
func buildRaw(msg Message) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "To: %s\r\n", msg.To)
	fmt.Fprintf(&sb, "Subject: %s\r\n", msg.Subject)
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(msg.Body)
	return base64.URLEncoding.EncodeToString([]byte(sb.String()))
}
