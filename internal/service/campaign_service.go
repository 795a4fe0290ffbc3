// internal/service/campaign_service.go
package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/quickreview-backend/internal/errors"
	"github.com/unclebandit/quickreview-backend/internal/model"
	"github.com/unclebandit/quickreview-backend/internal/repository"
)

const DateLayout = "2006-01-02"

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	PostRepo     repository.PostRepositoryInterface
	Logger       *zap.Logger
}

// CampaignInput is the create-or-update payload. ID 0 creates.
type CampaignInput struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
	PostID    int64  `json:"post_id"`
}

// CampaignAutofill is what the edit form needs to prefill itself.
type CampaignAutofill struct {
	Campaign  *model.Campaign
	PostTitle string
}

type CampaignList struct {
	Campaigns  []*model.Campaign
	Pagination model.Pagination
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, appErrors.Validation(field, fmt.Sprintf("Invalid date format for %s, expected YYYY-MM-DD", field))
	}
	return t, nil
}

// toCampaign validates input and converts it. Missing required fields are
// reported in the order name, start_date, status, post_id.
func (in CampaignInput) toCampaign() (*model.Campaign, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, appErrors.MissingField("name")
	case strings.TrimSpace(in.StartDate) == "":
		return nil, appErrors.MissingField("start_date")
	case strings.TrimSpace(in.Status) == "":
		return nil, appErrors.MissingField("status")
	case in.PostID <= 0:
		return nil, appErrors.MissingField("post_id")
	}

	start, err := parseDate("start_date", in.StartDate)
	if err != nil {
		return nil, err
	}

	var end sql.NullTime
	if strings.TrimSpace(in.EndDate) != "" {
		t, err := parseDate("end_date", in.EndDate)
		if err != nil {
			return nil, err
		}
		if t.Before(start) {
			return nil, appErrors.Validation("end_date", "End date must be on or after start date")
		}
		end = sql.NullTime{Time: t, Valid: true}
	}

	status := model.CampaignStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if !status.Writable() {
		return nil, appErrors.Validation("status", fmt.Sprintf("Invalid status: %s", in.Status))
	}

	return &model.Campaign{
		ID:        in.ID,
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Status:    status,
		PostID:    in.PostID,
	}, nil
}

// SaveCampaign creates a campaign, or updates it when in.ID is set.
func (s *CampaignService) SaveCampaign(ctx context.Context, in CampaignInput) (int64, error) {
	c, err := in.toCampaign()
	if err != nil {
		return 0, err
	}

	if c.ID > 0 {
		ok, err := s.CampaignRepo.Update(ctx, c)
		if err != nil {
			return 0, appErrors.Internal("Failed to update campaign", err)
		}
		if !ok {
			return 0, appErrors.NewCampaignNotFound(c.ID)
		}
		s.Logger.Info("campaign updated", zap.Int64("campaign_id", c.ID))
		return c.ID, nil
	}

	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return 0, appErrors.Internal("Failed to create campaign", err)
	}
	s.Logger.Info("campaign created", zap.Int64("campaign_id", c.ID), zap.Int64("post_id", c.PostID))
	return c.ID, nil
}

// EnsureCampaign creates a campaign for programmatic callers. Status defaults
// to draft, and an identical existing campaign is returned instead of a copy.
func (s *CampaignService) EnsureCampaign(ctx context.Context, in CampaignInput) (int64, error) {
	in.ID = 0
	if strings.TrimSpace(in.Status) == "" {
		in.Status = string(model.CampaignStatusDraft)
	}
	c, err := in.toCampaign()
	if err != nil {
		return 0, err
	}

	existing, err := s.CampaignRepo.FindDuplicate(ctx, c)
	if err != nil {
		return 0, appErrors.Internal("Failed to look up campaign", err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return 0, appErrors.Internal("Failed to create campaign", err)
	}
	s.Logger.Info("campaign created", zap.Int64("campaign_id", c.ID), zap.Int64("post_id", c.PostID))
	return c.ID, nil
}

func (s *CampaignService) GetCampaign(ctx context.Context, id int64) (*model.Campaign, error) {
	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Internal("Failed to load campaign", err)
	}
	if c == nil {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return c, nil
}

// Autofill returns the campaign with the title of its post.
func (s *CampaignService) Autofill(ctx context.Context, id int64) (*CampaignAutofill, error) {
	c, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &CampaignAutofill{Campaign: c}

	post, err := s.PostRepo.Get(ctx, c.PostID)
	if err != nil {
		return nil, appErrors.Internal("Failed to load post", err)
	}
	if post != nil {
		out.PostTitle = post.Title
	}
	return out, nil
}

func (s *CampaignService) FindByPost(ctx context.Context, postID int64) ([]*model.Campaign, error) {
	campaigns, err := s.CampaignRepo.FindByPost(ctx, postID)
	if err != nil {
		return nil, appErrors.Internal("Failed to load campaigns", err)
	}
	return campaigns, nil
}

func (s *CampaignService) ListCampaigns(ctx context.Context, f model.CampaignFilter, p model.Page) (*CampaignList, error) {
	p = p.Normalize()
	campaigns, err := s.CampaignRepo.List(ctx, f, p)
	if err != nil {
		return nil, wrapRepoErr("Failed to list campaigns", err)
	}
	total, err := s.CountCampaigns(ctx, f)
	if err != nil {
		return nil, err
	}
	return &CampaignList{Campaigns: campaigns, Pagination: model.NewPagination(p, total)}, nil
}

func (s *CampaignService) CountCampaigns(ctx context.Context, f model.CampaignFilter) (int, error) {
	total, err := s.CampaignRepo.Count(ctx, f)
	if err != nil {
		return 0, wrapRepoErr("Failed to count campaigns", err)
	}
	return total, nil
}

// wrapRepoErr keeps tagged errors (bad order column) and tags everything else internal.
func wrapRepoErr(msg string, err error) error {
	if appErrors.KindOf(err) != appErrors.KindInternal {
		return err
	}
	return appErrors.Internal(msg, err)
}
