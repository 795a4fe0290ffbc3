// internal/model/campaign.go
package model

import (
	"database/sql"
	"time"
)

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusPending   CampaignStatus = "pending"
	CampaignStatusPublished CampaignStatus = "published"

	// CampaignStatusInactive only appears on rows imported from older schemas.
	// It is never accepted on write.
	CampaignStatusInactive CampaignStatus = "inactive"
)

// Writable reports whether the status may be stored by create/update.
func (s CampaignStatus) Writable() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusPending, CampaignStatusPublished:
		return true
	}
	return false
}

type Campaign struct {
	ID        int64          `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	StartDate time.Time      `db:"start_date" json:"start_date"`
	EndDate   sql.NullTime   `db:"end_date" json:"end_date"`
	Status    CampaignStatus `db:"status" json:"status"`
	PostID    int64          `db:"post_id" json:"post_id"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`

	// ReviewCount is only filled when listing with IncludeReviewCount.
	ReviewCount int64 `db:"review_count" json:"review_count"`
}

// CampaignContext is the joined item + campaign record produced by reference validation.
type CampaignContext struct {
	Reference      string         `db:"reference"`
	ItemName       string         `db:"item_name"`
	ItemStatus     ItemStatus     `db:"item_status"`
	Count          int64          `db:"count"`
	CampaignID     int64          `db:"campaign_id"`
	CampaignName   string         `db:"campaign_name"`
	CampaignStatus CampaignStatus `db:"campaign_status"`
	StartDate      time.Time      `db:"start_date"`
	EndDate        sql.NullTime   `db:"end_date"`
	PostID         int64          `db:"post_id"`
}
