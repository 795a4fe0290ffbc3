package controller

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/unclebandit/quickreview-backend/internal/service"
)

// PostController serves the post picker used by the campaign form.
type PostController struct {
	PostService *service.PostService
	Logger      *zap.Logger
}

func (c *PostController) Search(w http.ResponseWriter, r *http.Request) {
	posts, err := c.PostService.Search(r.Context(), r.URL.Query().Get("term"))
	if err != nil {
		Failure(c.Logger)(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, posts)
}

type SettingsController struct {
	SettingsService *service.SettingsService
	Logger          *zap.Logger
}

type postTypesBody struct {
	PostTypes []string `json:"post_types"`
}

func (c *SettingsController) GetPostTypes(w http.ResponseWriter, r *http.Request) {
	types, err := c.SettingsService.PostTypes(r.Context())
	if err != nil {
		Failure(c.Logger)(w, r, err)
		return
	}
	if types == nil {
		types = []string{}
	}
	WriteJSON(w, http.StatusOK, postTypesBody{PostTypes: types})
}

func (c *SettingsController) SavePostTypes(w http.ResponseWriter, r *http.Request) {
	var body postTypesBody
	if err := decodeBody(r, &body); err != nil {
		Failure(c.Logger)(w, r, err)
		return
	}

	saved, err := c.SettingsService.SavePostTypes(r.Context(), body.PostTypes)
	if err != nil {
		Failure(c.Logger)(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, postTypesBody{PostTypes: saved})
}
