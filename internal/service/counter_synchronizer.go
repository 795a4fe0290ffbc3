package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/quickreview-backend/internal/errors"
	"github.com/unclebandit/quickreview-backend/internal/metrics"
	"github.com/unclebandit/quickreview-backend/internal/model"
	"github.com/unclebandit/quickreview-backend/internal/repository"
)

// Outcome is what a synchronizer call did to the counter.
type Outcome string

const (
	OutcomeIncremented Outcome = "incremented"
	OutcomeDecremented Outcome = "decremented"
	OutcomeSkipped     Outcome = "skipped"
	OutcomeFailed      Outcome = "failed"
)

// StatusChange is one comment moderation event. Previous is the approval
// state before the change when the host knows it.
type StatusChange struct {
	CommentID int64
	NewStatus string
	Previous  *model.ApprovalState
}

// CounterSynchronizer keeps campaign item counters in step with the
// approval state of the comments that reference them.
type CounterSynchronizer struct {
	Comments  repository.CommentRepositoryInterface
	ItemRepo  repository.CampaignItemRepositoryInterface
	Validator *ReferenceValidator
	Logger    *zap.Logger

	AfterReferenceCreated   func(ctx context.Context, commentID int64, data model.ReferenceData)
	ReferenceCreationFailed func(ctx context.Context, commentID int64, reference string, err error)
}

func (s *CounterSynchronizer) record(event string, outcome Outcome) Outcome {
	metrics.RecordSyncOutcome(event, string(outcome))
	return outcome
}

// OnStatusChanged applies the approval transition table:
//
//	approved     -> approve : no-op
//	approved     -> other   : decrement
//	not approved -> approve : increment if the reference is still live
//	not approved -> other   : no-op
func (s *CounterSynchronizer) OnStatusChanged(ctx context.Context, ev StatusChange) Outcome {
	const event = "status_changed"
	log := s.Logger.With(zap.Int64("comment_id", ev.CommentID), zap.String("status", ev.NewStatus))

	ref, err := s.Comments.GetMeta(ctx, ev.CommentID, model.MetaReference)
	if err != nil {
		log.Warn("failed to read comment reference", zap.Error(err))
		return s.record(event, OutcomeFailed)
	}
	if ref == "" {
		return s.record(event, OutcomeSkipped)
	}
	log = log.With(zap.String("reference", ref))

	var previous model.ApprovalState
	if ev.Previous != nil && ev.Previous.Known() {
		previous = *ev.Previous
	} else {
		if ev.Previous != nil {
			log.Warn("unknown previous approval state, reading comment record", zap.String("previous", string(*ev.Previous)))
		}
		comment, err := s.Comments.Get(ctx, ev.CommentID)
		if err != nil {
			log.Warn("failed to read comment", zap.Error(err))
			return s.record(event, OutcomeFailed)
		}
		if comment == nil {
			log.Warn("comment not found")
			return s.record(event, OutcomeSkipped)
		}
		previous = comment.Approved
	}

	wasApproved := previous.Approved()
	nowApproved := ev.NewStatus == model.StatusApprove

	switch {
	case wasApproved && !nowApproved:
		return s.decrement(ctx, log, event, ref)
	case !wasApproved && nowApproved:
		if _, err := s.Validator.Validate(ctx, ref, s.Validator.Today()); err != nil {
			log.Info("reference not counted", zap.String("reason", string(ReasonOf(err))), zap.Error(err))
			return s.record(event, OutcomeSkipped)
		}
		return s.increment(ctx, log, event, ref)
	default:
		return s.record(event, OutcomeSkipped)
	}
}

// OnDeleted decrements when the comment was approved at deletion time.
func (s *CounterSynchronizer) OnDeleted(ctx context.Context, commentID int64) Outcome {
	const event = "deleted"
	log := s.Logger.With(zap.Int64("comment_id", commentID))

	comment, err := s.Comments.Get(ctx, commentID)
	if err != nil {
		log.Warn("failed to read comment", zap.Error(err))
		return s.record(event, OutcomeFailed)
	}
	if comment == nil || !comment.Approved.Approved() {
		return s.record(event, OutcomeSkipped)
	}

	ref, err := s.Comments.GetMeta(ctx, commentID, model.MetaReference)
	if err != nil {
		log.Warn("failed to read comment reference", zap.Error(err))
		return s.record(event, OutcomeFailed)
	}
	if ref == "" {
		return s.record(event, OutcomeSkipped)
	}
	return s.decrement(ctx, log.With(zap.String("reference", ref)), event, ref)
}

// AttachReference links a validated reference to a new comment and stores
// the campaign snapshot. Already approved comments are counted immediately.
func (s *CounterSynchronizer) AttachReference(ctx context.Context, commentID int64, reference string) (Outcome, error) {
	const event = "reference_created"
	log := s.Logger.With(zap.Int64("comment_id", commentID), zap.String("reference", reference))

	fail := func(err error) (Outcome, error) {
		log.Error("reference creation failed", zap.Error(err))
		if reason := ReasonOf(err); reason != "" {
			metrics.RecordReferenceFailure(string(reason))
		}
		if s.ReferenceCreationFailed != nil {
			s.ReferenceCreationFailed(ctx, commentID, reference, err)
		}
		return s.record(event, OutcomeFailed), err
	}

	if reference == "" {
		return fail(appErrors.MissingField("reference"))
	}

	comment, err := s.Comments.Get(ctx, commentID)
	if err != nil {
		return fail(appErrors.Internal("Failed to load comment", err))
	}
	if comment == nil {
		return fail(appErrors.NotFound("Comment not found"))
	}

	cc, err := s.Validator.Validate(ctx, reference, s.Validator.Today())
	if err != nil {
		return fail(err)
	}

	data := model.ReferenceData{
		Reference:    reference,
		CampaignID:   cc.CampaignID,
		CampaignName: cc.CampaignName,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if err := s.Comments.SaveMeta(ctx, commentID, map[string]string{
		model.MetaReference:          data.Reference,
		model.MetaCampaignID:         strconv.FormatInt(data.CampaignID, 10),
		model.MetaCampaignName:       data.CampaignName,
		model.MetaReferenceCreatedAt: data.CreatedAt.Format(time.RFC3339),
	}); err != nil {
		return fail(appErrors.Internal("Failed to save reference metadata", err))
	}

	outcome := OutcomeSkipped
	if comment.Approved.Approved() {
		outcome = s.increment(ctx, log, event, reference)
	} else {
		s.record(event, outcome)
	}

	log.Info("reference attached", zap.Int64("campaign_id", data.CampaignID), zap.String("outcome", string(outcome)))
	if s.AfterReferenceCreated != nil {
		s.AfterReferenceCreated(ctx, commentID, data)
	}
	return outcome, nil
}

// ReferenceData reads the snapshot stored by AttachReference, nil when absent.
func (s *CounterSynchronizer) ReferenceData(ctx context.Context, commentID int64) (*model.ReferenceData, error) {
	meta, err := s.Comments.GetMetaMap(ctx, commentID, []string{
		model.MetaReference, model.MetaCampaignID, model.MetaCampaignName, model.MetaReferenceCreatedAt,
	})
	if err != nil {
		return nil, appErrors.Internal("Failed to load reference metadata", err)
	}
	if meta[model.MetaReference] == "" {
		return nil, nil
	}

	data := &model.ReferenceData{
		Reference:    meta[model.MetaReference],
		CampaignName: meta[model.MetaCampaignName],
	}
	log := s.Logger.With(zap.Int64("comment_id", commentID), zap.String("reference", data.Reference))
	if raw := meta[model.MetaCampaignID]; raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Warn("corrupt campaign id in comment meta", zap.String("value", raw), zap.Error(err))
		}
		data.CampaignID = id
	}
	if raw := meta[model.MetaReferenceCreatedAt]; raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			log.Warn("corrupt reference timestamp in comment meta", zap.String("value", raw), zap.Error(err))
		}
		data.CreatedAt = at
	}
	return data, nil
}

func (s *CounterSynchronizer) increment(ctx context.Context, log *zap.Logger, event, ref string) Outcome {
	ok, err := s.ItemRepo.Increment(ctx, ref)
	if err != nil {
		log.Error("failed to increment counter", zap.Error(err))
		return s.record(event, OutcomeFailed)
	}
	if !ok {
		log.Warn("no campaign item for reference")
		return s.record(event, OutcomeSkipped)
	}
	log.Debug("counter incremented")
	return s.record(event, OutcomeIncremented)
}

func (s *CounterSynchronizer) decrement(ctx context.Context, log *zap.Logger, event, ref string) Outcome {
	ok, err := s.ItemRepo.Decrement(ctx, ref)
	if err != nil {
		log.Error("failed to decrement counter", zap.Error(err))
		return s.record(event, OutcomeFailed)
	}
	if !ok {
		log.Warn("no campaign item for reference")
		return s.record(event, OutcomeSkipped)
	}
	log.Debug("counter decremented")
	return s.record(event, OutcomeDecremented)
}
