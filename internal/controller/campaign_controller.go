// internal/controller/campaign_controller.go
package controller

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/quickreview-backend/internal/model"
	"github.com/unclebandit/quickreview-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
	ItemService     *service.CampaignItemService
	Logger          *zap.Logger
}

// campaignResponse renders dates as YYYY-MM-DD.
type campaignResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	StartDate   string    `json:"start_date"`
	EndDate     *string   `json:"end_date"`
	Status      string    `json:"status"`
	PostID      int64     `json:"post_id"`
	CreatedAt   time.Time `json:"created_at"`
	ReviewCount *int64    `json:"review_count,omitempty"`
}

func toCampaignResponse(c *model.Campaign, withReviewCount bool) campaignResponse {
	out := campaignResponse{
		ID:        c.ID,
		Name:      c.Name,
		StartDate: c.StartDate.Format(service.DateLayout),
		Status:    string(c.Status),
		PostID:    c.PostID,
		CreatedAt: c.CreatedAt,
	}
	if c.EndDate.Valid {
		end := c.EndDate.Time.Format(service.DateLayout)
		out.EndDate = &end
	}
	if withReviewCount {
		n := c.ReviewCount
		out.ReviewCount = &n
	}
	return out
}

func (c *CampaignController) fail(w http.ResponseWriter, r *http.Request, err error) {
	Failure(c.Logger)(w, r, err)
}

// SaveCampaign creates a campaign, or updates it when the body carries an id.
func (c *CampaignController) SaveCampaign(w http.ResponseWriter, r *http.Request) {
	var body service.CampaignInput
	if err := decodeBody(r, &body); err != nil {
		c.fail(w, r, err)
		return
	}

	id, err := c.CampaignService.SaveCampaign(r.Context(), body)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"campaign_id": id,
		"message":     "Campaign saved successfully",
	})
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := pageFromQuery(q)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	f := model.CampaignFilter{
		Status:             model.CampaignStatus(strings.TrimSpace(q.Get("status"))),
		IncludeReviewCount: boolParam(q, "review_count"),
	}
	if f.PostIDs, err = int64ListParam(q, "post_id"); err != nil {
		c.fail(w, r, err)
		return
	}
	if f.CreatedFrom, err = dateParam(q, "created_from"); err != nil {
		c.fail(w, r, err)
		return
	}
	if f.CreatedTo, err = dateParam(q, "created_to"); err != nil {
		c.fail(w, r, err)
		return
	}

	list, err := c.CampaignService.ListCampaigns(r.Context(), f, page)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	campaigns := make([]campaignResponse, 0, len(list.Campaigns))
	for _, campaign := range list.Campaigns {
		campaigns = append(campaigns, toCampaignResponse(campaign, f.IncludeReviewCount))
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"campaigns":  campaigns,
		"pagination": list.Pagination,
	})
}

// Autofill returns the campaign plus the selected post's title for the edit form.
func (c *CampaignController) Autofill(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(chi.URLParam(r, "id"), "id")
	if err != nil {
		c.fail(w, r, err)
		return
	}

	out, err := c.CampaignService.Autofill(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"campaign":   toCampaignResponse(out.Campaign, false),
		"post_title": out.PostTitle,
	})
}

func (c *CampaignController) ListItems(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(chi.URLParam(r, "id"), "id")
	if err != nil {
		c.fail(w, r, err)
		return
	}
	if _, err := c.CampaignService.GetCampaign(r.Context(), id); err != nil {
		c.fail(w, r, err)
		return
	}

	q := r.URL.Query()
	page, err := pageFromQuery(q)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	f := model.ItemFilter{
		Status:       model.ItemStatus(strings.TrimSpace(q.Get("status"))),
		IncludeCount: boolParam(q, "include_count"),
	}
	if f.CreatedFrom, err = dateParam(q, "created_from"); err != nil {
		c.fail(w, r, err)
		return
	}
	if f.CreatedTo, err = dateParam(q, "created_to"); err != nil {
		c.fail(w, r, err)
		return
	}

	list, err := c.ItemService.ListItems(r.Context(), id, f, page)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	items := list.Items
	if items == nil {
		items = []*model.CampaignItem{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":      items,
		"pagination": list.Pagination,
	})
}
