package model

import "time"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage bounds page numbers so offsets stay positive.
	MaxPage = 100000
)

// Page carries offset/limit pagination plus the requested ordering.
type Page struct {
	Offset  int
	Limit   int
	OrderBy string
	Desc    bool
}

// Normalize fills defaults and clamps the limit.
func (p Page) Normalize() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.OrderBy == "" {
		p.OrderBy = "created_at"
		p.Desc = true
	}
	return p
}

// PageFromNumber converts a 1-based page number into an offset page.
func PageFromNumber(page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	p := Page{Limit: pageSize}.Normalize()
	p.Offset = (page - 1) * p.Limit
	return p
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

func NewPagination(p Page, total int) Pagination {
	return Pagination{
		Page:       p.Offset/p.Limit + 1,
		PageSize:   p.Limit,
		TotalCount: total,
		TotalPages: (total + p.Limit - 1) / p.Limit,
	}
}

// CampaignFilter narrows campaign listings. Zero values mean "no filter".
type CampaignFilter struct {
	PostIDs     []int64
	Status      CampaignStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time

	IncludeReviewCount bool
}

// ItemFilter narrows item listings within one campaign.
type ItemFilter struct {
	Status      ItemStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time

	IncludeCount bool
}
