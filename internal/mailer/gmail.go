// internal/mailer/gmail.go
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
)

// GmailSender sends mail as the authenticated user ("me") via the Gmail API.
type GmailSender struct {
	svc *gmail.Service
}

// NewGmailSender builds a sender from the OAuth client secret and stored
// token files. Missing files are a ConfigError with setup instructions; the
// OAuth consent flow itself happens outside this service.
func NewGmailSender(ctx context.Context, credentialsPath, tokenPath string) (*GmailSender, error) {
	creds, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, appErrors.NewConfigError("Gmail credentials",
			fmt.Sprintf("place your OAuth client secret at %s (Google Cloud Console > APIs > Credentials)", credentialsPath))
	}

	conf, err := google.ConfigFromJSON(creds, gmail.GmailSendScope, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("mailer: parse credentials: %w", err)
	}

	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		return nil, appErrors.NewConfigError("Gmail token",
			fmt.Sprintf("no stored token at %s; run the OAuth consent flow to create one", tokenPath))
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(conf.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("mailer: create gmail service: %w", err)
	}
	return &GmailSender{svc: svc}, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

func (s *GmailSender) Name() string { return "gmail" }

// Send delivers one message. API failures and timeouts surface as
// UpstreamError so a single bad recipient never aborts the campaign.
func (s *GmailSender) Send(ctx context.Context, msg Message) error {
	if err := ValidateEmail(msg.To); err != nil {
		return appErrors.NewValidationError("invalid recipient: %v", err)
	}

	_, err := s.svc.Users.Messages.Send("me", &gmail.Message{Raw: buildRaw(msg)}).Context(ctx).Do()
	if err != nil {
		return appErrors.NewUpstreamError("gmail", err)
	}
	return nil
}

// Profile returns the authenticated address, used by the auth status check.
func (s *GmailSender) Profile(ctx context.Context) (string, error) {
	profile, err := s.svc.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return "", appErrors.NewUpstreamError("gmail", err)
	}
	return profile.EmailAddress, nil
}

// InboxMessage is one entry on the inbox page.
type InboxMessage struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	Subject  string `json:"subject"`
	From     string `json:"from"`
	Snippet  string `json:"snippet"`
	Date     string `json:"date"`
}

// ListRecent fetches the newest messages in the mailbox, headers only.
func (s *GmailSender) ListRecent(ctx context.Context, max int64) ([]InboxMessage, error) {
	list, err := s.svc.Users.Messages.List("me").MaxResults(max).Context(ctx).Do()
	if err != nil {
		return nil, appErrors.NewUpstreamError("gmail", err)
	}

	messages := make([]InboxMessage, 0, len(list.Messages))
	for _, m := range list.Messages {
		full, err := s.svc.Users.Messages.Get("me", m.Id).
			Format("metadata").MetadataHeaders("Subject", "From", "Date").
			Context(ctx).Do()
		if err != nil {
			return nil, appErrors.NewUpstreamError("gmail", err)
		}

		msg := InboxMessage{
			ID:       m.Id,
			ThreadID: full.ThreadId,
			Subject:  "(No Subject)",
			From:     "(No Sender)",
			Snippet:  full.Snippet,
		}
		if full.Payload != nil {
			for _, h := range full.Payload.Headers {
				switch h.Name {
				case "Subject":
					msg.Subject = h.Value
				case "From":
					msg.From = h.Value
				case "Date":
					msg.Date = h.Value
				}
			}
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
