package model

import "time"

type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusInactive ItemStatus = "inactive"
)

// CampaignItem is a single shareable reference under a campaign.
type CampaignItem struct {
	Reference  string     `db:"reference" json:"reference"`
	Name       string     `db:"name" json:"name"`
	CampaignID int64      `db:"campaign_id" json:"campaign_id"`
	Count      int64      `db:"count" json:"count"`
	Status     ItemStatus `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// CreatedItem is returned after a campaign item has been persisted.
type CreatedItem struct {
	Reference  string `json:"reference"`
	ReviewURL  string `json:"review_url"`
	CampaignID int64  `json:"campaign_id"`
	PostID     int64  `json:"post_id"`
}
