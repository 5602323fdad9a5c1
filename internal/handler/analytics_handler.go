package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
	"github.com/mailpilot/mailpilot-backend/internal/repository"
)

// AnalyticsHandler reads campaign history from Postgres.
type AnalyticsHandler struct {
	Campaigns repository.CampaignRepositoryInterface
	Events    repository.EventRepositoryInterface
}

func (h *AnalyticsHandler) available() error {
	if h.Campaigns == nil {
		return appErrors.NewConfigError("DB_HOST", "analytics needs a Postgres connection")
	}
	return nil
}

// Stats handles GET /api/analytics/stats.
func (h *AnalyticsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if err := h.available(); err != nil {
		writeError(w, err)
		return
	}
	stats, err := h.Campaigns.Stats()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ListCampaigns handles GET /api/analytics/campaigns?page=N&page_size=M.
func (h *AnalyticsHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	if err := h.available(); err != nil {
		writeError(w, err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	campaigns, total, err := h.Campaigns.List((page-1)*pageSize, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": campaigns,
		"pagination": map[string]int{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
			"total_pages": (total + pageSize - 1) / pageSize,
		},
	})
}

// CampaignDetails handles GET /api/analytics/campaigns/{id}: the campaign
// record plus its per-recipient send log.
func (h *AnalyticsHandler) CampaignDetails(w http.ResponseWriter, r *http.Request) {
	if err := h.available(); err != nil {
		writeError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	c, err := h.Campaigns.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}

	events, err := h.Events.ListByCampaign(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"campaign": c,
		"events":   events,
	})
}
