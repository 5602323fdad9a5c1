package repository

import (
	"database/sql"

	"github.com/mailpilot/mailpilot-backend/internal/model"
)

type EventRepositoryInterface interface {
	Insert(ev model.SendEvent) error
	ListByCampaign(campaignID string) ([]model.SendEvent, error)
}

type EventRepository struct {
	DB *sql.DB
}

func (r *EventRepository) Insert(ev model.SendEvent) error {
	query := `
        INSERT INTO send_events (campaign_id, email, company, status, last_error, occurred_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.DB.Exec(query, ev.CampaignID, ev.Email, ev.Company, ev.Status, ev.LastError, ev.OccurredAt)
	return err
}

func (r *EventRepository) ListByCampaign(campaignID string) ([]model.SendEvent, error) {
	query := `
        SELECT campaign_id, email, company, status, last_error, occurred_at
        FROM send_events WHERE campaign_id=$1 ORDER BY occurred_at
    `
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []model.SendEvent{}
	for rows.Next() {
		var ev model.SendEvent
		if err := rows.Scan(&ev.CampaignID, &ev.Email, &ev.Company, &ev.Status, &ev.LastError, &ev.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

var _ EventRepositoryInterface = (*EventRepository)(nil)
