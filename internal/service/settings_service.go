package service

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	appErrors "github.com/unclebandit/quickreview-backend/internal/errors"
	"github.com/unclebandit/quickreview-backend/internal/model"
	"github.com/unclebandit/quickreview-backend/internal/repository"
)

var postTypePattern = regexp.MustCompile(`^[a-z0-9_-]{1,20}$`)

type SettingsService struct {
	SettingsRepo repository.SettingsRepositoryInterface
}

// PostTypes returns the configured searchable post types, nil when unset.
func (s *SettingsService) PostTypes(ctx context.Context) ([]string, error) {
	setting, err := s.SettingsRepo.Get(ctx, model.SettingPostTypes)
	if err != nil {
		return nil, appErrors.Internal("Failed to load settings", err)
	}
	if setting == nil || setting.Value == "" {
		return nil, nil
	}
	var types []string
	if err := json.Unmarshal([]byte(setting.Value), &types); err != nil {
		return nil, appErrors.Internal("Stored post types are corrupt", err)
	}
	return types, nil
}

// SavePostTypes replaces the post type list after trimming and de-duplicating it.
func (s *SettingsService) SavePostTypes(ctx context.Context, types []string) ([]string, error) {
	clean := make([]string, 0, len(types))
	seen := map[string]bool{}
	for _, t := range types {
		// The admin form posts a single comma-separated value.
		for _, part := range strings.Split(t, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" || seen[part] {
				continue
			}
			if !postTypePattern.MatchString(part) {
				return nil, appErrors.Validation("post_types", "Invalid post type: "+part)
			}
			seen[part] = true
			clean = append(clean, part)
		}
	}
	if len(clean) == 0 {
		return nil, appErrors.MissingField("post_types")
	}

	raw, err := json.Marshal(clean)
	if err != nil {
		return nil, appErrors.Internal("Failed to encode post types", err)
	}
	if err := s.SettingsRepo.Put(ctx, &model.Setting{Name: model.SettingPostTypes, Value: string(raw)}); err != nil {
		return nil, appErrors.Internal("Failed to save settings", err)
	}
	return clean, nil
}
