package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/quickreview-backend/internal/controller"
	appErrors "github.com/unclebandit/quickreview-backend/internal/errors"
	"github.com/unclebandit/quickreview-backend/internal/service"
)

// ReferenceHandler answers whether a review link is currently live.
type ReferenceHandler struct {
	Validator *service.ReferenceValidator
	Logger    *zap.Logger
}

func NewReferenceHandler(v *service.ReferenceValidator, logger *zap.Logger) *ReferenceHandler {
	return &ReferenceHandler{Validator: v, Logger: logger}
}

type referenceStatus struct {
	Valid        bool   `json:"valid"`
	Reason       string `json:"reason,omitempty"`
	CampaignID   int64  `json:"campaign_id,omitempty"`
	CampaignName string `json:"campaign_name,omitempty"`
}

func (h *ReferenceHandler) CheckHandler(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "reference")

	cc, err := h.Validator.Validate(r.Context(), ref, h.Validator.Today())
	if err != nil {
		if reason := service.ReasonOf(err); reason != "" {
			controller.WriteJSON(w, http.StatusOK, referenceStatus{Reason: string(reason)})
			return
		}
		controller.Failure(h.Logger)(w, r, err)
		return
	}

	controller.WriteJSON(w, http.StatusOK, referenceStatus{
		Valid:        true,
		CampaignID:   cc.CampaignID,
		CampaignName: cc.CampaignName,
	})
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return appErrors.Validation("body", "Invalid request body")
	}
	return nil
}
