package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/quickreview-backend/internal/service"
)

type ItemController struct {
	ItemService *service.CampaignItemService
	Logger      *zap.Logger
}

func (c *ItemController) CreateItem(w http.ResponseWriter, r *http.Request) {
	var body service.ItemInput
	if err := decodeBody(r, &body); err != nil {
		Failure(c.Logger)(w, r, err)
		return
	}

	created, err := c.ItemService.CreateItem(r.Context(), body)
	if err != nil {
		Failure(c.Logger)(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, created)
}

func (c *ItemController) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := c.ItemService.DeleteItem(r.Context(), chi.URLParam(r, "reference")); err != nil {
		Failure(c.Logger)(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Campaign item deleted successfully",
	})
}
