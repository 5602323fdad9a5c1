package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
	"github.com/mailpilot/mailpilot-backend/internal/mailer"
)

// Inbox is the read side of the Gmail account; GmailSender satisfies it.
type Inbox interface {
	Profile(ctx context.Context) (string, error)
	ListRecent(ctx context.Context, max int64) ([]mailer.InboxMessage, error)
}

var _ Inbox = (*mailer.GmailSender)(nil)

// EmailHandler serves single sends, inbox fetch, and the auth status check.
// Sender and Mailbox are nil until Gmail credentials are configured.
type EmailHandler struct {
	Sender  mailer.Sender
	Mailbox Inbox
}

func (h *EmailHandler) gmailConfigError() error {
	return appErrors.NewConfigError("Gmail", "add credentials.json and token.json from Google Cloud Console")
}

// AuthStatus handles GET /api/auth/status.
func (h *EmailHandler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	if h.Mailbox == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated":  false,
			"setup_required": true,
		})
		return
	}

	email, err := h.Mailbox.Profile(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": false,
			"error":         err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"email":         email,
	})
}

// Send handles POST /api/emails/send, a single immediate send outside any
// campaign.
func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	if h.Sender == nil {
		writeError(w, h.gmailConfigError())
		return
	}

	var body struct {
		To      string `json:"to"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidationError("invalid body"))
		return
	}
	if body.To == "" {
		writeError(w, appErrors.NewValidationError("to is required"))
		return
	}

	if err := h.Sender.Send(r.Context(), mailer.Message{
		To:      body.To,
		Subject: body.Subject,
		Body:    body.Body,
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "to": body.To})
}

// Fetch handles GET /api/emails/fetch?max=N.
func (h *EmailHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	if h.Mailbox == nil {
		writeError(w, h.gmailConfigError())
		return
	}

	max := int64(10)
	if s := r.URL.Query().Get("max"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 1 || n > 100 {
			writeError(w, appErrors.NewValidationError("max must be between 1 and 100"))
			return
		}
		max = n
	}

	messages, err := h.Mailbox.ListRecent(r.Context(), max)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages, "count": len(messages)})
}
