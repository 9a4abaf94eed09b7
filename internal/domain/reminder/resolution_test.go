package reminder

import (
	"testing"
	"time"

	"github.com/flexprice/dunning/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func record(id string, kind types.ReminderKind, status types.ReminderStatus, createdMinute int) *Record {
	created := time.Date(2024, 3, 1, 10, createdMinute, 0, 0, time.UTC)
	return &Record{
		ID:             id,
		InvoiceID:      "inv_1",
		Kind:           kind,
		ReminderStatus: status,
		BaseModel: types.BaseModel{
			CreatedAt: created,
			UpdatedAt: created,
		},
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		records    []*Record
		wantAction ResolutionAction
		wantID     string
	}{
		{
			name:       "no_records",
			wantAction: ResolutionCreateNew,
		},
		{
			name: "scheduled_wins_over_failed",
			records: []*Record{
				record("failed", types.ReminderKindPolite, types.ReminderStatusFailed, 5),
				record("scheduled", types.ReminderKindPolite, types.ReminderStatusScheduled, 1),
			},
			wantAction: ResolutionReuseScheduled,
			wantID:     "scheduled",
		},
		{
			name: "most_recent_failed",
			records: []*Record{
				record("old", types.ReminderKindPolite, types.ReminderStatusFailed, 1),
				record("new", types.ReminderKindPolite, types.ReminderStatusFailed, 9),
				record("mid", types.ReminderKindPolite, types.ReminderStatusFailed, 4),
			},
			wantAction: ResolutionReuseFailed,
			wantID:     "new",
		},
		{
			name: "other_kinds_ignored",
			records: []*Record{
				record("friendly", types.ReminderKindFriendly, types.ReminderStatusScheduled, 1),
				record("firm", types.ReminderKindFirm, types.ReminderStatusFailed, 2),
			},
			wantAction: ResolutionCreateNew,
		},
		{
			name: "cancelled_not_reused",
			records: []*Record{
				record("cancelled", types.ReminderKindPolite, types.ReminderStatusCancelled, 1),
			},
			wantAction: ResolutionCreateNew,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.records, types.ReminderKindPolite)
			assert.Equal(t, tt.wantAction, res.Action)
			if tt.wantID == "" {
				assert.Nil(t, res.Record)
				return
			}
			if assert.NotNil(t, res.Record) {
				assert.Equal(t, tt.wantID, res.Record.ID)
			}
		})
	}
}

func TestFindDelivered(t *testing.T) {
	sent := record("sent", types.ReminderKindFirm, types.ReminderStatusSent, 1)
	vetoed := record("vetoed", types.ReminderKindPolite, types.ReminderStatusCancelled, 2)
	vetoed.ExternalMessageID = lo.ToPtr("msg_1")
	cancelled := record("cancelled", types.ReminderKindUrgent, types.ReminderStatusCancelled, 3)

	records := []*Record{sent, vetoed, cancelled}

	assert.Equal(t, sent, FindDelivered(records, types.ReminderKindFirm))
	assert.Equal(t, vetoed, FindDelivered(records, types.ReminderKindPolite))
	assert.Nil(t, FindDelivered(records, types.ReminderKindUrgent))
	assert.Nil(t, FindDelivered(records, types.ReminderKindFriendly))
}

func TestRecord_Transitions(t *testing.T) {
	r := record("r", types.ReminderKindFriendly, types.ReminderStatusScheduled, 0)

	assert.NoError(t, r.MarkFailed(types.ReminderFailureTransport, "connection reset"))
	assert.Equal(t, types.ReminderFailureTransport, lo.FromPtr(r.FailureReason))

	assert.NoError(t, r.MarkFailed(types.ReminderFailureTimeout, ""))
	assert.Nil(t, r.FailureDetail)

	now := time.Now()
	assert.NoError(t, r.MarkSent("msg_1", now))
	assert.Nil(t, r.FailureReason)
	assert.Equal(t, "msg_1", lo.FromPtr(r.ExternalMessageID))

	assert.Error(t, r.MarkCancelled(types.ReminderCancelInvoicePaid, ""))
	assert.Error(t, r.MarkFailed(types.ReminderFailureTransport, ""))
	assert.Equal(t, types.ReminderStatusSent, r.ReminderStatus)
}

func TestRecord_MarkVetoed(t *testing.T) {
	r := record("r", types.ReminderKindFirm, types.ReminderStatusScheduled, 0)

	assert.NoError(t, r.MarkVetoed("msg_9", time.Now(), "per period limit reached"))
	assert.Equal(t, types.ReminderStatusCancelled, r.ReminderStatus)
	assert.Equal(t, types.ReminderCancelRaceVeto, lo.FromPtr(r.FailureReason))
	assert.Equal(t, "msg_9", lo.FromPtr(r.ExternalMessageID))
	assert.True(t, r.Delivered())
}

func TestRecord_RecordLateDelivery(t *testing.T) {
	r := record("r", types.ReminderKindFriendly, types.ReminderStatusScheduled, 0)
	assert.Error(t, r.RecordLateDelivery("msg_1", time.Now()))

	assert.NoError(t, r.MarkCancelled(types.ReminderCancelInvoicePaid, ""))
	assert.False(t, r.Delivered())

	assert.NoError(t, r.RecordLateDelivery("msg_1", time.Now()))
	assert.Equal(t, types.ReminderStatusCancelled, r.ReminderStatus)
	assert.Equal(t, types.ReminderCancelInvoicePaid, lo.FromPtr(r.FailureReason))
	assert.True(t, r.Delivered())
	assert.Same(t, r, FindDelivered([]*Record{r}, types.ReminderKindFriendly))
}
