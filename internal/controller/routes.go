package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/unclebandit/quickreview-backend/internal/auth"
	appErrors "github.com/unclebandit/quickreview-backend/internal/errors"
	"github.com/unclebandit/quickreview-backend/internal/middleware"
)

// Nonce actions for state-changing admin routes.
const (
	ActionSaveCampaign = "save_campaign"
	ActionCreateItem   = "create_campaign_item"
	ActionDeleteItem   = "delete_campaign_item"
	ActionSaveSettings = "save_settings"
)

var nonceActions = map[string]bool{
	ActionSaveCampaign: true,
	ActionCreateItem:   true,
	ActionDeleteItem:   true,
	ActionSaveSettings: true,
}

type NonceController struct {
	Nonces *auth.NonceManager
}

// Mint issues a nonce for the current admin and the requested action.
func (c *NonceController) Mint(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	if !nonceActions[action] {
		WriteError(w, appErrors.Validation("action", "Unknown action: "+action))
		return
	}
	p := auth.FromContext(r.Context())
	if p == nil {
		WriteError(w, appErrors.Permission("Authentication required"))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"action": action,
		"nonce":  c.Nonces.Create(action, p.UserID),
	})
}

// AdminRoutes wires the admin API. Every route needs manage_options; writes
// also need a nonce for their action.
type AdminRoutes struct {
	Auth    auth.Authenticator
	Nonces  *auth.NonceManager
	Limiter *rate.Limiter
	Logger  *zap.Logger

	Campaigns *CampaignController
	Items     *ItemController
	Posts     *PostController
	Settings  *SettingsController
}

func (a *AdminRoutes) Router() http.Handler {
	fail := Failure(a.Logger)
	withNonce := func(action string) func(http.Handler) http.Handler {
		return auth.RequireNonce(a.Nonces, action, fail)
	}
	nonces := &NonceController{Nonces: a.Nonces}

	r := chi.NewRouter()
	if a.Limiter != nil {
		r.Use(middleware.RateLimit(a.Limiter, fail))
	}
	r.Use(auth.Require(a.Auth, auth.CapabilityManageOptions, fail))

	r.Get("/nonces/{action}", nonces.Mint)

	r.Get("/campaigns", a.Campaigns.ListCampaigns)
	r.Get("/campaigns/{id}", a.Campaigns.Autofill)
	r.Get("/campaigns/{id}/items", a.Campaigns.ListItems)
	r.With(withNonce(ActionSaveCampaign)).Post("/campaigns", a.Campaigns.SaveCampaign)

	r.With(withNonce(ActionCreateItem)).Post("/items", a.Items.CreateItem)
	r.With(withNonce(ActionDeleteItem)).Delete("/items/{reference}", a.Items.DeleteItem)

	r.Get("/posts/search", a.Posts.Search)

	r.Get("/settings/post-types", a.Settings.GetPostTypes)
	r.With(withNonce(ActionSaveSettings)).Put("/settings/post-types", a.Settings.SavePostTypes)

	return r
}
