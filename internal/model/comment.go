package model

import "time"

// ApprovalState mirrors the host CMS comment_approved column.
type ApprovalState string

const (
	ApprovalApproved ApprovalState = "1"
	ApprovalPending  ApprovalState = "0"
	ApprovalSpam     ApprovalState = "spam"
	ApprovalTrash    ApprovalState = "trash"
)

func (s ApprovalState) Approved() bool {
	return s == ApprovalApproved
}

// Known reports whether s is one of the host's comment_approved values.
func (s ApprovalState) Known() bool {
	switch s {
	case ApprovalApproved, ApprovalPending, ApprovalSpam, ApprovalTrash:
		return true
	}
	return false
}

// StatusApprove is the only status-change verb that counts as approval.
const StatusApprove = "approve"

// Comment is the slice of a host CMS comment this service reads.
type Comment struct {
	ID       int64         `db:"comment_id"`
	PostID   int64         `db:"comment_post_id"`
	Approved ApprovalState `db:"comment_approved"`
}

// Comment meta keys written when a reference is attached.
const (
	MetaReference          = "reference"
	MetaCampaignID         = "qr_campaign_id"
	MetaCampaignName       = "qr_campaign_name"
	MetaReferenceCreatedAt = "qr_reference_created_at"
)

// ReferenceData is the snapshot stored alongside a comment.
type ReferenceData struct {
	Reference    string    `json:"reference"`
	CampaignID   int64     `json:"campaign_id"`
	CampaignName string    `json:"campaign_name"`
	CreatedAt    time.Time `json:"created_at"`
}
