package service

import (
	"context"
	"strings"

	appErrors "github.com/unclebandit/quickreview-backend/internal/errors"
	"github.com/unclebandit/quickreview-backend/internal/model"
	"github.com/unclebandit/quickreview-backend/internal/repository"
)

type PostService struct {
	PostRepo repository.PostRepositoryInterface
	Settings *SettingsService
	SiteURL  string
	PerPage  int
}

// Permalink renders <site_url>/<post_name>/, or "" for a post without a slug.
func Permalink(siteURL string, p *model.Post) string {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return ""
	}
	return strings.TrimRight(siteURL, "/") + "/" + p.Name + "/"
}

// Search finds published posts of the configured types matching term.
func (s *PostService) Search(ctx context.Context, term string) ([]*model.Post, error) {
	types, err := s.Settings.PostTypes(ctx)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, appErrors.Validation("post_types", "No post types configured.")
	}

	limit := s.PerPage
	if limit < 1 {
		limit = 10
	}
	posts, err := s.PostRepo.Search(ctx, term, types, limit)
	if err != nil {
		return nil, appErrors.Internal("Failed to search posts", err)
	}
	if len(posts) == 0 {
		return nil, appErrors.NotFound("No results found.")
	}
	for _, p := range posts {
		p.Permalink = Permalink(s.SiteURL, p)
	}
	return posts, nil
}
