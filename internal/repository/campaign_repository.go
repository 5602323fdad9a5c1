package repository

import (
	"database/sql"
	"time"

	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
	"github.com/mailpilot/mailpilot-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(c *model.Campaign) error
	GetByID(id string) (*model.Campaign, error)
	List(offset, limit int) ([]*model.Campaign, int, error)
	IncrementCounters(id string, sent, failed int) error
	MarkCompleted(id string, status string) error
	Stats() (map[string]int, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

func (r *CampaignRepository) Create(c *model.Campaign) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = "running"
	}
	query := `
        INSERT INTO campaigns (id, name, status, total, sent, failed, interval_seconds, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.DB.Exec(query, c.ID, c.Name, c.Status, c.Total, c.Sent, c.Failed, c.IntervalSeconds, c.CreatedAt)
	return err
}

func (r *CampaignRepository) GetByID(id string) (*model.Campaign, error) {
	query := `
        SELECT id, name, status, total, sent, failed, interval_seconds, created_at, completed_at
        FROM campaigns WHERE id=$1
    `
	var c model.Campaign
	err := r.DB.QueryRow(query, id).Scan(&c.ID, &c.Name, &c.Status, &c.Total, &c.Sent, &c.Failed, &c.IntervalSeconds, &c.CreatedAt, &c.CompletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewValidationError("campaign %s not found", id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) List(offset, limit int) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `
        SELECT id, name, status, total, sent, failed, interval_seconds, created_at, completed_at
        FROM campaigns ORDER BY created_at DESC LIMIT $1 OFFSET $2
    `
	rows, err := r.DB.Query(query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c := &model.Campaign{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Status, &c.Total, &c.Sent, &c.Failed, &c.IntervalSeconds, &c.CreatedAt, &c.CompletedAt); err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}

	var total int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM campaigns`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

// IncrementCounters adds the per-send deltas; the runner sends one event per
// recipient so the deltas are 0 or 1.
func (r *CampaignRepository) IncrementCounters(id string, sent, failed int) error {
	query := `UPDATE campaigns SET sent=sent+$1, failed=failed+$2 WHERE id=$3`
	_, err := r.DB.Exec(query, sent, failed, id)
	return err
}

func (r *CampaignRepository) MarkCompleted(id string, status string) error {
	query := `UPDATE campaigns SET status=$1, completed_at=NOW() WHERE id=$2`
	_, err := r.DB.Exec(query, status, id)
	return err
}

// Stats aggregates totals across all campaigns for the analytics view.
func (r *CampaignRepository) Stats() (map[string]int, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(total),0), COALESCE(SUM(sent),0), COALESCE(SUM(failed),0) FROM campaigns`
	var campaigns, total, sent, failed int
	if err := r.DB.QueryRow(query).Scan(&campaigns, &total, &sent, &failed); err != nil {
		return nil, err
	}
	return map[string]int{"campaigns": campaigns, "total": total, "sent": sent, "failed": failed}, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
