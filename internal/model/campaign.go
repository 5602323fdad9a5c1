// internal/model/campaign.go
package model

import "time"

type Campaign struct {
	ID              string     `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Status          string     `db:"status" json:"status"` // running, completed, cancelled
	Total           int        `db:"total" json:"total"`
	Sent            int        `db:"sent" json:"sent"`
	Failed          int        `db:"failed" json:"failed"`
	IntervalSeconds int        `db:"interval_seconds" json:"interval_seconds"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}
