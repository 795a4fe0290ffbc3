package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appErrors "github.com/unclebandit/quickreview-backend/internal/errors"
	"github.com/unclebandit/quickreview-backend/internal/model"
)

const testRef = "abc12345-0000-4000-8000-000000000001"

type syncFixture struct {
	campaigns *mockCampaignRepo
	items     *mockItemRepo
	comments  *mockCommentRepo
	sync      *CounterSynchronizer
	logs      *observer.ObservedLogs
}

func newSyncFixture(status model.CampaignStatus, approval model.ApprovalState) *syncFixture {
	f := &syncFixture{}
	f.campaigns = newMockCampaignRepo(&model.Campaign{
		ID:        1,
		Name:      "Annual",
		StartDate: day(2024, 1, 1),
		EndDate:   endDate(day(2024, 12, 31)),
		Status:    status,
		PostID:    10,
	})
	f.items = newMockItemRepo(f.campaigns,
		&model.CampaignItem{Reference: testRef, CampaignID: 1, Status: model.ItemStatusActive})
	f.comments = newMockCommentRepo(&model.Comment{ID: 100, PostID: 10, Approved: approval})

	core, logs := observer.New(zapcore.DebugLevel)
	f.logs = logs

	v := NewReferenceValidator(f.items, time.UTC)
	v.Now = func() time.Time { return time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC) }
	f.sync = &CounterSynchronizer{
		Comments:  f.comments,
		ItemRepo:  f.items,
		Validator: v,
		Logger:    zap.New(core),
	}
	return f
}

func (f *syncFixture) attachMeta() {
	f.comments.meta[100] = map[string]string{model.MetaReference: testRef}
}

// moderate delivers a status event, then applies it to the host record.
func (f *syncFixture) moderate(status string) Outcome {
	out := f.sync.OnStatusChanged(context.Background(), StatusChange{CommentID: 100, NewStatus: status})
	f.comments.setStatus(100, status)
	return out
}

func (f *syncFixture) count() int64 {
	return f.items.items[testRef].Count
}

func state(s model.ApprovalState) *model.ApprovalState { return &s }

func TestStatusTransitionTable(t *testing.T) {
	cases := []struct {
		name     string
		previous model.ApprovalState
		status   string
		start    int64
		want     Outcome
		count    int64
	}{
		{"approved to approve", model.ApprovalApproved, "approve", 3, OutcomeSkipped, 3},
		{"approved to hold", model.ApprovalApproved, "hold", 3, OutcomeDecremented, 2},
		{"approved to spam", model.ApprovalApproved, "spam", 3, OutcomeDecremented, 2},
		{"pending to approve", model.ApprovalPending, "approve", 3, OutcomeIncremented, 4},
		{"spam to approve", model.ApprovalSpam, "approve", 3, OutcomeIncremented, 4},
		{"pending to trash", model.ApprovalPending, "trash", 3, OutcomeSkipped, 3},
		{"spam to hold", model.ApprovalSpam, "hold", 3, OutcomeSkipped, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newSyncFixture(model.CampaignStatusPublished, model.ApprovalPending)
			f.attachMeta()
			f.items.items[testRef].Count = tc.start

			out := f.sync.OnStatusChanged(context.Background(), StatusChange{
				CommentID: 100,
				NewStatus: tc.status,
				Previous:  state(tc.previous),
			})

			assert.Equal(t, tc.want, out)
			assert.Equal(t, tc.count, f.count())
		})
	}
}

func TestStatusChangeWithoutReferenceIsNoop(t *testing.T) {
	f := newSyncFixture(model.CampaignStatusPublished, model.ApprovalPending)

	assert.Equal(t, OutcomeSkipped, f.moderate("approve"))
	assert.Zero(t, f.count())
}

func TestApproveUnapproveDeleteScenario(t *testing.T) {
	f := newSyncFixture(model.CampaignStatusPublished, model.ApprovalPending)
	f.attachMeta()

	assert.Equal(t, OutcomeIncremented, f.moderate("approve"))
	assert.Equal(t, int64(1), f.count())

	// A repeated approval is a no-op.
	assert.Equal(t, OutcomeSkipped, f.moderate("approve"))
	assert.Equal(t, int64(1), f.count())

	assert.Equal(t, OutcomeDecremented, f.moderate("unapprove"))
	assert.Zero(t, f.count())

	assert.Equal(t, OutcomeSkipped, f.sync.OnDeleted(context.Background(), 100))
	assert.Zero(t, f.count())
}

func TestDeleteApprovedComment(t *testing.T) {
	f := newSyncFixture(model.CampaignStatusPublished, model.ApprovalApproved)
	f.attachMeta()
	f.items.items[testRef].Count = 2

	assert.Equal(t, OutcomeDecremented, f.sync.OnDeleted(context.Background(), 100))
	assert.Equal(t, int64(1), f.count())

	assert.Equal(t, OutcomeSkipped, f.sync.OnDeleted(context.Background(), 999))
}

func TestDecrementClampsAtZero(t *testing.T) {
	f := newSyncFixture(model.CampaignStatusPublished, model.ApprovalApproved)
	f.attachMeta()

	for i := 0; i < 3; i++ {
		f.sync.OnStatusChanged(context.Background(), StatusChange{
			CommentID: 100, NewStatus: "hold", Previous: state(model.ApprovalApproved),
		})
	}
	assert.Zero(t, f.count())
}

func TestIncrementRequiresLiveReference(t *testing.T) {
	f := newSyncFixture(model.CampaignStatusDraft, model.ApprovalPending)
	f.attachMeta()

	assert.Equal(t, OutcomeSkipped, f.moderate("approve"))
	assert.Zero(t, f.count())
}

func TestDecrementSkipsRevalidation(t *testing.T) {
	f := newSyncFixture(model.CampaignStatusPublished, model.ApprovalApproved)
	f.attachMeta()
	f.items.items[testRef].Count = 1
	f.campaigns.campaigns[1].Status = model.CampaignStatusDraft
	f.sync.Validator.Now = func() time.Time { return day(2030, 1, 1) }

	assert.Equal(t, OutcomeDecremented, f.moderate("hold"))
	assert.Zero(t, f.count())
}

func TestSynchronizerSwallowsFailures(t *testing.T) {
	f := newSyncFixture(model.CampaignStatusPublished, model.ApprovalApproved)
	f.attachMeta()
	f.comments.getErr = errDB
	ctx := context.Background()

	assert.Equal(t, OutcomeFailed, f.sync.OnStatusChanged(ctx, StatusChange{CommentID: 100, NewStatus: "hold"}))
	assert.Equal(t, OutcomeFailed, f.sync.OnDeleted(ctx, 100))

	f.comments.getErr = nil
	f.items.err = errDB
	assert.Equal(t, OutcomeFailed, f.sync.OnDeleted(ctx, 100))
}

func TestAttachReferenceToDraftCampaignFails(t *testing.T) {
	f := newSyncFixture(model.CampaignStatusDraft, model.ApprovalApproved)

	var failedWith error
	f.sync.ReferenceCreationFailed = func(ctx context.Context, commentID int64, reference string, err error) {
		failedWith = err
	}
	f.sync.AfterReferenceCreated = func(ctx context.Context, commentID int64, data model.ReferenceData) {
		t.Fatal("AfterReferenceCreated must not fire")
	}

	out, err := f.sync.AttachReference(context.Background(), 100, testRef)

	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, out)
	assert.Equal(t, ReasonCampaignNotPublished, ReasonOf(err))
	assert.Equal(t, err, failedWith)
	assert.Empty(t, f.comments.meta[100])
	assert.Zero(t, f.count())
	assert.Equal(t, 1, f.logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestAttachReferenceToApprovedComment(t *testing.T) {
	f := newSyncFixture(model.CampaignStatusPublished, model.ApprovalApproved)

	var created []model.ReferenceData
	f.sync.AfterReferenceCreated = func(ctx context.Context, commentID int64, data model.ReferenceData) {
		created = append(created, data)
	}

	out, err := f.sync.AttachReference(context.Background(), 100, testRef)
	require.NoError(t, err)

	assert.Equal(t, OutcomeIncremented, out)
	assert.Equal(t, int64(1), f.count())
	meta := f.comments.meta[100]
	assert.Equal(t, testRef, meta[model.MetaReference])
	assert.Equal(t, strconv.Itoa(1), meta[model.MetaCampaignID])
	assert.Equal(t, "Annual", meta[model.MetaCampaignName])
	assert.NotEmpty(t, meta[model.MetaReferenceCreatedAt])
	require.Len(t, created, 1)

	data, err := f.sync.ReferenceData(context.Background(), 100)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, created[0].Reference, data.Reference)
	assert.Equal(t, created[0].CampaignID, data.CampaignID)
	assert.Equal(t, created[0].CampaignName, data.CampaignName)
	assert.True(t, created[0].CreatedAt.Equal(data.CreatedAt))
}

func TestAttachReferenceToPendingComment(t *testing.T) {
	f := newSyncFixture(model.CampaignStatusPublished, model.ApprovalPending)

	out, err := f.sync.AttachReference(context.Background(), 100, testRef)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, out)
	assert.Zero(t, f.count())

	// Approval later counts it once.
	assert.Equal(t, OutcomeIncremented, f.moderate("approve"))
	assert.Equal(t, int64(1), f.count())
}

func TestAttachReferenceErrors(t *testing.T) {
	f := newSyncFixture(model.CampaignStatusPublished, model.ApprovalPending)
	ctx := context.Background()

	_, err := f.sync.AttachReference(ctx, 555, testRef)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = f.sync.AttachReference(ctx, 100, "")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.sync.AttachReference(ctx, 100, "unknown")
	assert.Equal(t, ReasonNotFound, ReasonOf(err))

	f.comments.saveErr = errDB
	_, err = f.sync.AttachReference(ctx, 100, testRef)
	assert.Equal(t, appErrors.KindInternal, appErrors.KindOf(err))
}

func TestReferenceDataAbsent(t *testing.T) {
	f := newSyncFixture(model.CampaignStatusPublished, model.ApprovalPending)

	data, err := f.sync.ReferenceData(context.Background(), 100)

	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestUnknownPreviousStateReadsCommentRecord(t *testing.T) {
	f := newSyncFixture(model.CampaignStatusPublished, model.ApprovalApproved)
	f.attachMeta()
	f.items.items[testRef].Count = 1

	out := f.sync.OnStatusChanged(context.Background(), StatusChange{
		CommentID: 100,
		NewStatus: "approve",
		Previous:  state("approved"),
	})

	assert.Equal(t, OutcomeSkipped, out)
	assert.Equal(t, int64(1), f.count())
	assert.Equal(t, 1, f.logs.FilterMessage("unknown previous approval state, reading comment record").Len())
}

func TestReferenceDataCorruptMeta(t *testing.T) {
	f := newSyncFixture(model.CampaignStatusPublished, model.ApprovalPending)
	f.comments.meta[100] = map[string]string{
		model.MetaReference:          testRef,
		model.MetaCampaignID:         "one",
		model.MetaCampaignName:       "Annual",
		model.MetaReferenceCreatedAt: "yesterday",
	}

	data, err := f.sync.ReferenceData(context.Background(), 100)

	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, testRef, data.Reference)
	assert.Zero(t, data.CampaignID)
	assert.True(t, data.CreatedAt.IsZero())
	assert.Equal(t, 1, f.logs.FilterMessage("corrupt campaign id in comment meta").Len())
	assert.Equal(t, 1, f.logs.FilterMessage("corrupt reference timestamp in comment meta").Len())
}
