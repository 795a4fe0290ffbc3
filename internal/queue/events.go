package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/quickreview-backend/internal/errors"
	"github.com/unclebandit/quickreview-backend/internal/model"
	"github.com/unclebandit/quickreview-backend/internal/service"
)

// Comment lifecycle topics.
const (
	TopicStatusChanged    = "comment.status_changed"
	TopicDeleted          = "comment.deleted"
	TopicReferenceCreated = "comment.reference_created"
)

// Event types as they appear on the wire.
const (
	EventStatusChanged    = "status_changed"
	EventDeleted          = "deleted"
	EventReferenceCreated = "reference_created"
)

var topics = map[string]string{
	EventStatusChanged:    TopicStatusChanged,
	EventDeleted:          TopicDeleted,
	EventReferenceCreated: TopicReferenceCreated,
}

// CommentEvent is the JSON envelope carried by webhooks and the AMQP queue.
type CommentEvent struct {
	Type           string `json:"type"`
	CommentID      int64  `json:"comment_id"`
	Status         string `json:"status,omitempty"`
	PreviousStatus string `json:"previous_status,omitempty"`
	Reference      string `json:"reference,omitempty"`
}

func (e CommentEvent) Validate() error {
	if _, ok := topics[e.Type]; !ok {
		return appErrors.Validation("type", fmt.Sprintf("Unknown event type: %q", e.Type))
	}
	if e.CommentID <= 0 {
		return appErrors.MissingField("comment_id")
	}
	switch e.Type {
	case EventStatusChanged:
		if e.Status == "" {
			return appErrors.MissingField("status")
		}
		if e.PreviousStatus != "" && !model.ApprovalState(e.PreviousStatus).Known() {
			return appErrors.Validation("previous_status",
				fmt.Sprintf("Unknown previous status %q, expected one of 1, 0, spam, trash", e.PreviousStatus))
		}
	case EventReferenceCreated:
		if e.Reference == "" {
			return appErrors.MissingField("reference")
		}
	}
	return nil
}

// DecodeCommentEvent parses and validates a raw event body.
func DecodeCommentEvent(body []byte) (CommentEvent, error) {
	var ev CommentEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, appErrors.Validation("body", "Invalid event payload")
	}
	return ev, ev.Validate()
}

// Dispatch publishes ev on the topic for its type.
func Dispatch(ctx context.Context, q Queue, ev CommentEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	return q.Publish(ctx, topics[ev.Type], ev)
}

// CommentEventHandler is implemented by service.CounterSynchronizer.
type CommentEventHandler interface {
	OnStatusChanged(ctx context.Context, ev service.StatusChange) service.Outcome
	OnDeleted(ctx context.Context, commentID int64) service.Outcome
	AttachReference(ctx context.Context, commentID int64, reference string) (service.Outcome, error)
}

// SubscribeCommentEvents wires h to the three comment topics. Call it once
// per queue at startup.
func SubscribeCommentEvents(q Queue, h CommentEventHandler, logger *zap.Logger) error {
	subs := map[string]Handler{
		TopicStatusChanged: func(ctx context.Context, payload any) error {
			ev, err := asEvent(payload)
			if err != nil {
				return err
			}
			change := service.StatusChange{CommentID: ev.CommentID, NewStatus: ev.Status}
			if ev.PreviousStatus != "" {
				prev := model.ApprovalState(ev.PreviousStatus)
				change.Previous = &prev
			}
			outcome := h.OnStatusChanged(ctx, change)
			logger.Debug("status change processed", zap.Int64("comment_id", ev.CommentID), zap.String("outcome", string(outcome)))
			return nil
		},
		TopicDeleted: func(ctx context.Context, payload any) error {
			ev, err := asEvent(payload)
			if err != nil {
				return err
			}
			outcome := h.OnDeleted(ctx, ev.CommentID)
			logger.Debug("deletion processed", zap.Int64("comment_id", ev.CommentID), zap.String("outcome", string(outcome)))
			return nil
		},
		TopicReferenceCreated: func(ctx context.Context, payload any) error {
			ev, err := asEvent(payload)
			if err != nil {
				return err
			}
			_, err = h.AttachReference(ctx, ev.CommentID, ev.Reference)
			return err
		},
	}

	for _, topic := range []string{TopicStatusChanged, TopicDeleted, TopicReferenceCreated} {
		if err := q.Subscribe(topic, subs[topic]); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}
	return nil
}

func asEvent(payload any) (CommentEvent, error) {
	switch ev := payload.(type) {
	case CommentEvent:
		return ev, nil
	case *CommentEvent:
		return *ev, nil
	}
	return CommentEvent{}, fmt.Errorf("unexpected payload type %T", payload)
}
