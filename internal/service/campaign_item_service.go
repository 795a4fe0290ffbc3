package service

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/quickreview-backend/internal/errors"
	"github.com/unclebandit/quickreview-backend/internal/model"
	"github.com/unclebandit/quickreview-backend/internal/repository"
	"github.com/unclebandit/quickreview-backend/internal/token"
)

// URLRewriter may replace the review link handed back for a new item.
type URLRewriter func(reviewURL, reference string, postID int64) string

type CampaignItemService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	ItemRepo     repository.CampaignItemRepositoryInterface
	PostRepo     repository.PostRepositoryInterface
	Tokens       *token.Generator
	SiteURL      string
	Logger       *zap.Logger

	RewriteURL       URLRewriter
	AfterItemCreated func(ctx context.Context, item model.CreatedItem)
}

type ItemInput struct {
	PostID     int64  `json:"post_id"`
	CampaignID int64  `json:"campaign_id"`
	Name       string `json:"name"`
}

type ItemList struct {
	Items      []*model.CampaignItem
	Pagination model.Pagination
}

// CreateItem issues a new reference for a campaign of the post. Without an
// explicit campaign the post's most recent non-inactive campaign is used.
func (s *CampaignItemService) CreateItem(ctx context.Context, in ItemInput) (*model.CreatedItem, error) {
	if in.PostID <= 0 {
		return nil, appErrors.MissingField("post_id")
	}

	post, err := s.PostRepo.Get(ctx, in.PostID)
	if err != nil {
		return nil, appErrors.Internal("Failed to load post", err)
	}
	if post == nil {
		return nil, appErrors.NotFound("Post not found")
	}

	campaign, err := s.resolveCampaign(ctx, in)
	if err != nil {
		return nil, err
	}

	permalink := Permalink(s.SiteURL, post)
	if permalink == "" {
		return nil, appErrors.Internal("Failed to get post permalink", nil)
	}

	name := strings.TrimSpace(in.Name)
	ref, err := s.Tokens.Reserve(ctx, func(ctx context.Context, ref string) error {
		return s.ItemRepo.Insert(ctx, &model.CampaignItem{
			Reference:  ref,
			Name:       name,
			CampaignID: campaign.ID,
			Status:     model.ItemStatusActive,
		})
	})
	if err != nil {
		if appErrors.KindOf(err) == appErrors.KindResourceExhausted {
			s.Logger.Error("reference generation exhausted", zap.Int64("campaign_id", campaign.ID))
			return nil, err
		}
		return nil, wrapRepoErr("Failed to create campaign item", err)
	}

	reviewURL := addQueryParam(permalink, "review", ref)
	if s.RewriteURL != nil {
		reviewURL = s.RewriteURL(reviewURL, ref, post.ID)
	}

	created := model.CreatedItem{
		Reference:  ref,
		ReviewURL:  reviewURL,
		CampaignID: campaign.ID,
		PostID:     post.ID,
	}
	s.Logger.Info("campaign item created",
		zap.String("reference", ref),
		zap.Int64("campaign_id", campaign.ID),
	)
	if s.AfterItemCreated != nil {
		s.AfterItemCreated(ctx, created)
	}
	return &created, nil
}

func (s *CampaignItemService) resolveCampaign(ctx context.Context, in ItemInput) (*model.Campaign, error) {
	if in.CampaignID <= 0 {
		c, err := s.CampaignRepo.FindLatestActiveByPost(ctx, in.PostID)
		if err != nil {
			return nil, appErrors.Internal("Failed to load campaign", err)
		}
		if c == nil {
			return nil, appErrors.NotFound("No active campaign found for this post")
		}
		return c, nil
	}

	c, err := s.CampaignRepo.GetByID(ctx, in.CampaignID)
	if err != nil {
		return nil, appErrors.Internal("Failed to load campaign", err)
	}
	if c == nil || c.PostID != in.PostID {
		return nil, appErrors.NotFound("Campaign not found or does not belong to this post")
	}
	if c.Status == model.CampaignStatusInactive {
		return nil, appErrors.Validation("campaign_id", "Campaign is inactive")
	}
	return c, nil
}

func addQueryParam(raw, key, value string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// DeleteItem hard-deletes an item by reference.
func (s *CampaignItemService) DeleteItem(ctx context.Context, reference string) error {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return appErrors.MissingField("reference")
	}
	n, err := s.ItemRepo.Delete(ctx, reference)
	if err != nil {
		return appErrors.Internal("Failed to delete campaign item", err)
	}
	if n == 0 {
		return appErrors.NotFound("No record found with this reference")
	}
	s.Logger.Info("campaign item deleted", zap.String("reference", reference))
	return nil
}

func (s *CampaignItemService) ListItems(ctx context.Context, campaignID int64, f model.ItemFilter, p model.Page) (*ItemList, error) {
	p = p.Normalize()
	items, err := s.ItemRepo.List(ctx, campaignID, f, p)
	if err != nil {
		return nil, wrapRepoErr("Failed to list campaign items", err)
	}
	total, err := s.CountItems(ctx, campaignID, f)
	if err != nil {
		return nil, err
	}
	return &ItemList{Items: items, Pagination: model.NewPagination(p, total)}, nil
}

func (s *CampaignItemService) CountItems(ctx context.Context, campaignID int64, f model.ItemFilter) (int, error) {
	total, err := s.ItemRepo.Count(ctx, campaignID, f)
	if err != nil {
		return 0, wrapRepoErr("Failed to count campaign items", err)
	}
	return total, nil
}
