// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tags an error with the class of failure the caller should report.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindPermission
	KindResourceExhausted
	KindRateLimited
)

type kindInfo struct {
	name   string
	status int
}

// kinds is the single place where domain error kinds meet transport codes.
var kinds = map[Kind]kindInfo{
	KindInternal:          {name: "internal", status: http.StatusInternalServerError},
	KindValidation:        {name: "validation", status: http.StatusBadRequest},
	KindNotFound:          {name: "not_found", status: http.StatusNotFound},
	KindPermission:        {name: "permission", status: http.StatusForbidden},
	KindResourceExhausted: {name: "resource_exhausted", status: http.StatusInternalServerError},
	KindRateLimited:       {name: "rate_limited", status: http.StatusTooManyRequests},
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return kinds[KindInternal].name
}

// HTTPStatus maps the kind to the response status used by the admin API.
func (k Kind) HTTPStatus() int {
	if info, ok := kinds[k]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Error is the application error carried from services to controllers.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on kind alone, e.g. errors.Is(err, &Error{Kind: KindNotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Field == "" || t.Field == e.Field)
}

// KindOf reports the kind of err, KindInternal for anything untagged.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Validation(field, message string) error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func MissingField(field string) error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf("Missing required field: %s", field)}
}

func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Permission(message string) error {
	return &Error{Kind: KindPermission, Message: message}
}

func ResourceExhausted(message string, err error) error {
	return &Error{Kind: KindResourceExhausted, Message: message, Err: err}
}

func RateLimited(message string) error {
	return &Error{Kind: KindRateLimited, Message: message}
}

func Internal(message string, err error) error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// NewCampaignNotFound builds the not-found error for a campaign id.
func NewCampaignNotFound(id int64) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("campaign with ID %d not found", id)}
}

// Sentinels for errors.Is checks.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrPermission = &Error{Kind: KindPermission}
	ErrExhausted  = &Error{Kind: KindResourceExhausted}
)

// ErrDuplicate is returned by repositories when an insert hits a unique key.
var ErrDuplicate = errors.New("duplicate key")
