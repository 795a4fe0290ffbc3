// internal/handler/comment_handler.go
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/quickreview-backend/internal/auth"
	"github.com/unclebandit/quickreview-backend/internal/controller"
	"github.com/unclebandit/quickreview-backend/internal/queue"
)

// CommentHandler receives comment lifecycle webhooks from the host CMS and
// publishes them on the in-process queue.
type CommentHandler struct {
	Queue  queue.Queue
	Logger *zap.Logger
}

func NewCommentHandler(q queue.Queue, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{Queue: q, Logger: logger}
}

// Routes mounts the hooks behind the shared secret check.
func (h *CommentHandler) Routes(secret string) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.HookSecret(secret, controller.Failure(h.Logger)))
	r.Post("/status", h.StatusChangedHandler)
	r.Post("/deleted", h.DeletedHandler)
	r.Post("/reference", h.ReferenceCreatedHandler)
	return r
}

type commentPayload struct {
	CommentID      int64  `json:"comment_id"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status"`
	Reference      string `json:"reference"`
}

func (h *CommentHandler) StatusChangedHandler(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, queue.EventStatusChanged)
}

func (h *CommentHandler) DeletedHandler(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, queue.EventDeleted)
}

// ReferenceCreatedHandler reports validation failures back to the caller.
func (h *CommentHandler) ReferenceCreatedHandler(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, queue.EventReferenceCreated)
}

func (h *CommentHandler) handle(w http.ResponseWriter, r *http.Request, eventType string) {
	fail := controller.Failure(h.Logger)

	var payload commentPayload
	if err := decode(r, &payload); err != nil {
		fail(w, r, err)
		return
	}

	ev := queue.CommentEvent{
		Type:           eventType,
		CommentID:      payload.CommentID,
		Status:         payload.Status,
		PreviousStatus: payload.PreviousStatus,
		Reference:      payload.Reference,
	}
	if err := queue.Dispatch(r.Context(), h.Queue, ev); err != nil {
		fail(w, r, err)
		return
	}

	controller.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"type":       ev.Type,
		"comment_id": ev.CommentID,
	})
}
