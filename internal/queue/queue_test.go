package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/quickreview-backend/internal/errors"
	"github.com/unclebandit/quickreview-backend/internal/model"
	"github.com/unclebandit/quickreview-backend/internal/service"
)

func TestPublishDeliversSynchronouslyInOrder(t *testing.T) {
	q := NewInMemoryQueue()
	var got []string
	require.NoError(t, q.Subscribe("t", func(ctx context.Context, p any) error {
		got = append(got, "a:"+p.(string))
		return nil
	}))
	require.NoError(t, q.Subscribe("t", func(ctx context.Context, p any) error {
		got = append(got, "b:"+p.(string))
		return nil
	}))

	require.NoError(t, q.Publish(context.Background(), "t", "x"))
	assert.Equal(t, []string{"a:x", "b:x"}, got)
}

func TestPublishErrors(t *testing.T) {
	q := NewInMemoryQueue()

	assert.ErrorIs(t, q.Publish(context.Background(), "nobody", 1), ErrNoSubscribers)
	assert.Error(t, q.Subscribe("t", nil))

	boom := errors.New("boom")
	calls := 0
	_ = q.Subscribe("t", func(ctx context.Context, p any) error { calls++; return boom })
	_ = q.Subscribe("t", func(ctx context.Context, p any) error { calls++; return nil })

	err := q.Publish(context.Background(), "t", 1)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

type fakeHandler struct {
	changes   []service.StatusChange
	deleted   []int64
	attached  []string
	attachErr error
}

func (f *fakeHandler) OnStatusChanged(ctx context.Context, ev service.StatusChange) service.Outcome {
	f.changes = append(f.changes, ev)
	return service.OutcomeSkipped
}

func (f *fakeHandler) OnDeleted(ctx context.Context, id int64) service.Outcome {
	f.deleted = append(f.deleted, id)
	return service.OutcomeSkipped
}

func (f *fakeHandler) AttachReference(ctx context.Context, id int64, ref string) (service.Outcome, error) {
	f.attached = append(f.attached, ref)
	if f.attachErr != nil {
		return service.OutcomeFailed, f.attachErr
	}
	return service.OutcomeSkipped, nil
}

func TestSubscribeCommentEvents(t *testing.T) {
	q := NewInMemoryQueue()
	h := &fakeHandler{}
	require.NoError(t, SubscribeCommentEvents(q, h, zap.NewNop()))
	ctx := context.Background()

	require.NoError(t, Dispatch(ctx, q, CommentEvent{Type: EventStatusChanged, CommentID: 1, Status: "approve"}))
	require.NoError(t, Dispatch(ctx, q, CommentEvent{Type: EventStatusChanged, CommentID: 2, Status: "hold", PreviousStatus: "1"}))
	require.NoError(t, Dispatch(ctx, q, CommentEvent{Type: EventDeleted, CommentID: 3}))
	require.NoError(t, Dispatch(ctx, q, CommentEvent{Type: EventReferenceCreated, CommentID: 4, Reference: "r"}))

	require.Len(t, h.changes, 2)
	assert.Nil(t, h.changes[0].Previous)
	require.NotNil(t, h.changes[1].Previous)
	assert.Equal(t, model.ApprovalApproved, *h.changes[1].Previous)
	assert.Equal(t, []int64{3}, h.deleted)
	assert.Equal(t, []string{"r"}, h.attached)

	h.attachErr = appErrors.NotFound("Comment not found")
	err := Dispatch(ctx, q, CommentEvent{Type: EventReferenceCreated, CommentID: 5, Reference: "r"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestDecodeCommentEvent(t *testing.T) {
	ev, err := DecodeCommentEvent([]byte(`{"type":"deleted","comment_id":9}`))
	require.NoError(t, err)
	assert.Equal(t, CommentEvent{Type: EventDeleted, CommentID: 9}, ev)

	bad := map[string]string{
		"not json":      `{`,
		"unknown type":  `{"type":"edited","comment_id":1}`,
		"no comment":    `{"type":"deleted"}`,
		"no status":     `{"type":"status_changed","comment_id":1}`,
		"no reference":  `{"type":"reference_created","comment_id":1}`,
		"word previous": `{"type":"status_changed","comment_id":1,"status":"approve","previous_status":"approved"}`,
		"bad previous":  `{"type":"status_changed","comment_id":1,"status":"hold","previous_status":"hold"}`,
	}
	for name, body := range bad {
		_, err := DecodeCommentEvent([]byte(body))
		assert.ErrorIs(t, err, appErrors.ErrValidation, name)
	}

	for _, prev := range []string{"1", "0", "spam", "trash"} {
		ev, err := DecodeCommentEvent([]byte(`{"type":"status_changed","comment_id":1,"status":"approve","previous_status":"` + prev + `"}`))
		require.NoError(t, err, prev)
		assert.Equal(t, prev, ev.PreviousStatus)
	}
}

func TestDispatchRejectsUnknownPreviousStatus(t *testing.T) {
	q := NewInMemoryQueue()
	h := &fakeHandler{}
	require.NoError(t, SubscribeCommentEvents(q, h, zap.NewNop()))

	err := Dispatch(context.Background(), q, CommentEvent{Type: EventStatusChanged, CommentID: 1, Status: "approve", PreviousStatus: "approved"})

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.KindValidation, appErr.Kind)
	assert.Equal(t, "previous_status", appErr.Field)
	assert.Empty(t, h.changes)
}
