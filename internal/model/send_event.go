// internal/model/send_event.go
package model

import "time"

// Send event statuses published by the campaign runner.
const (
	EventSent      = "sent"
	EventFailed    = "failed"
	EventCompleted = "completed"
	EventCancelled = "cancelled"
)

// SendEvent is one outcome on the send_events topic: one per recipient
// attempt, plus a terminal completed/cancelled marker per campaign.
type SendEvent struct {
	CampaignID string    `json:"campaign_id"`
	Email      string    `json:"email,omitempty"`
	Company    string    `json:"company,omitempty"`
	Status     string    `json:"status"`
	LastError  string    `json:"last_error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
