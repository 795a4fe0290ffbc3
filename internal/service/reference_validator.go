package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	appErrors "github.com/unclebandit/quickreview-backend/internal/errors"
	"github.com/unclebandit/quickreview-backend/internal/model"
	"github.com/unclebandit/quickreview-backend/internal/repository"
)

// Reason explains why a reference is not live.
type Reason string

const (
	ReasonNotFound             Reason = "not-found"
	ReasonItemInactive         Reason = "item-inactive"
	ReasonCampaignNotPublished Reason = "campaign-not-published"
	ReasonNotYetStarted        Reason = "not-yet-started"
	ReasonAlreadyEnded         Reason = "already-ended"
)

var reasonMessages = map[Reason]string{
	ReasonNotFound:             "Reference not found",
	ReasonItemInactive:         "Campaign item is inactive",
	ReasonCampaignNotPublished: "Campaign is not published",
	ReasonNotYetStarted:        "Campaign has not started yet",
	ReasonAlreadyEnded:         "Campaign has already ended",
}

// InvalidReferenceError is returned by Validate when the reference exists in
// no live campaign. It unwraps to a validation error.
type InvalidReferenceError struct {
	Reference string
	Reason    Reason
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("reference %s: %s", e.Reference, e.Reason)
}

func (e *InvalidReferenceError) Unwrap() error {
	return appErrors.Validation("reference", reasonMessages[e.Reason])
}

// ReasonOf extracts the failure reason, "" when err is not a validation failure.
func ReasonOf(err error) Reason {
	var invalid *InvalidReferenceError
	if errors.As(err, &invalid) {
		return invalid.Reason
	}
	return ""
}

type ReferenceValidator struct {
	ItemRepo repository.CampaignItemRepositoryInterface
	Location *time.Location
	Now      func() time.Time
}

func NewReferenceValidator(items repository.CampaignItemRepositoryInterface, loc *time.Location) *ReferenceValidator {
	if loc == nil {
		loc = time.UTC
	}
	return &ReferenceValidator{ItemRepo: items, Location: loc, Now: time.Now}
}

// Today is the current instant as seen by the validator's clock.
func (v *ReferenceValidator) Today() time.Time {
	return v.Now().In(v.Location)
}

// Validate checks that reference belongs to an active item of a published
// campaign whose date window contains today. Checks run in a fixed order and
// the first failing one is reported.
func (v *ReferenceValidator) Validate(ctx context.Context, reference string, today time.Time) (*model.CampaignContext, error) {
	cc, err := v.ItemRepo.FindContext(ctx, reference)
	if err != nil {
		return nil, appErrors.Internal("failed to load reference", err)
	}

	fail := func(r Reason) (*model.CampaignContext, error) {
		return nil, &InvalidReferenceError{Reference: reference, Reason: r}
	}

	switch {
	case cc == nil:
		return fail(ReasonNotFound)
	case cc.ItemStatus != model.ItemStatusActive:
		return fail(ReasonItemInactive)
	case cc.CampaignStatus != model.CampaignStatusPublished:
		return fail(ReasonCampaignNotPublished)
	}

	day := civilDate(today.In(v.Location))
	if day < civilDate(cc.StartDate) {
		return fail(ReasonNotYetStarted)
	}
	if cc.EndDate.Valid && day > civilDate(cc.EndDate.Time) {
		return fail(ReasonAlreadyEnded)
	}
	return cc, nil
}

// IsValid validates against the validator's own clock.
func (v *ReferenceValidator) IsValid(ctx context.Context, reference string) bool {
	_, err := v.Validate(ctx, reference, v.Today())
	return err == nil
}

// civilDate collapses a time to a comparable yyyymmdd integer using the
// calendar fields as stored, without zone conversion.
func civilDate(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
