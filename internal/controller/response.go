// internal/controller/response.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/quickreview-backend/internal/errors"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
}

// WriteJSON writes v inside a success envelope.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: v})
}

// WriteError renders err as a failure envelope, using the error kind for the
// status and code. Untagged errors never leak their text.
func WriteError(w http.ResponseWriter, err error) {
	body := errorBody{Message: "Internal server error"}
	kind := appErrors.KindOf(err)

	var appErr *appErrors.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		body.Message = appErr.Message
		body.Field = appErr.Field
	}
	body.Code = kind.String()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(kind.HTTPStatus())
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Data: body})
}

// Failure returns an error renderer that also logs server-side failures.
func Failure(logger *zap.Logger) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		if appErrors.KindOf(err).HTTPStatus() >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
		}
		WriteError(w, err)
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return appErrors.Validation("body", "Invalid request body")
	}
	return nil
}
