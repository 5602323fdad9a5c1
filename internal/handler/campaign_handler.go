package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/mailpilot/mailpilot-backend/internal/campaign"
	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
	"github.com/mailpilot/mailpilot-backend/internal/mailer"
	"github.com/mailpilot/mailpilot-backend/internal/model"
	"github.com/mailpilot/mailpilot-backend/internal/recipient"
	"github.com/mailpilot/mailpilot-backend/internal/repository"
)

// CampaignRunner is the slice of campaign.Runner the handlers use.
type CampaignRunner interface {
	Start(name string, drafts []campaign.Draft, interval time.Duration) (string, error)
	Pause() error
	Resume() error
	Cancel() error
	Snapshot() campaign.Snapshot
}

var _ CampaignRunner = (*campaign.Runner)(nil)

// CampaignHandler controls the one active campaign. The campaign record is
// persisted when a repository is wired; the runner is the source of truth
// for live status either way.
type CampaignHandler struct {
	Runner          CampaignRunner
	Campaigns       repository.CampaignRepositoryInterface // optional
	DefaultInterval time.Duration
}

type startEmail struct {
	To      string `json:"to"`
	Company string `json:"company"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Start handles POST /api/campaign/start.
func (h *CampaignHandler) Start(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name            string       `json:"name"`
		IntervalSeconds *int         `json:"interval_seconds"`
		Emails          []startEmail `json:"emails"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidationError("invalid body"))
		return
	}
	if len(body.Emails) == 0 {
		writeError(w, appErrors.NewValidationError("no emails provided"))
		return
	}

	interval := h.DefaultInterval
	if body.IntervalSeconds != nil {
		if *body.IntervalSeconds < 0 {
			writeError(w, appErrors.NewValidationError("interval cannot be negative"))
			return
		}
		interval = time.Duration(*body.IntervalSeconds) * time.Second
	}

	drafts := make([]campaign.Draft, 0, len(body.Emails))
	for _, e := range body.Emails {
		if err := mailer.ValidateEmail(e.To); err != nil {
			writeError(w, err)
			return
		}
		drafts = append(drafts, campaign.Draft{
			Recipient:   recipient.Recipient{Email: e.To, Company: e.Company},
			Subject:     e.Subject,
			Body:        e.Body,
			GeneratedAt: time.Now(),
		})
	}

	name := body.Name
	if name == "" {
		name = "Campaign " + time.Now().Format("2006-01-02 15:04")
	}

	id, err := h.Runner.Start(name, drafts, interval)
	if err != nil {
		writeError(w, err)
		return
	}

	if h.Campaigns != nil {
		record := &model.Campaign{
			ID:              id,
			Name:            name,
			Status:          string(campaign.StatusRunning),
			Total:           len(drafts),
			IntervalSeconds: int(interval / time.Second),
		}
		if err := h.Campaigns.Create(record); err != nil {
			log.Println("⚠️ Failed to persist campaign record:", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"campaign_id": id,
		"total":       len(drafts),
		"status":      campaign.StatusRunning,
	})
}

// Pause handles POST /api/campaign/pause.
func (h *CampaignHandler) Pause(w http.ResponseWriter, r *http.Request) {
	if err := h.Runner.Pause(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": campaign.StatusPaused})
}

// Resume handles POST /api/campaign/resume.
func (h *CampaignHandler) Resume(w http.ResponseWriter, r *http.Request) {
	if err := h.Runner.Resume(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": campaign.StatusRunning})
}

// Cancel handles POST /api/campaign/cancel.
func (h *CampaignHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.Runner.Cancel(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": campaign.StatusIdle})
}

// Status handles GET /api/campaign/status.
func (h *CampaignHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Runner.Snapshot())
}
