package publisher_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/flexprice/dunning/internal/config"
	"github.com/flexprice/dunning/internal/domain/events"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/publisher"
	"github.com/flexprice/dunning/internal/testutil"
	"github.com/flexprice/dunning/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, *message.Message) error {
	return errors.New("broker unavailable")
}

func (failingPublisher) Close() error { return nil }

func TestEventPublisher_Publish(t *testing.T) {
	cfg := config.GetDefaultConfig()
	ps := testutil.NewRecordingPubSub()
	pub := publisher.NewEventPublisher(cfg, ps, logger.NewNoopLogger())

	ctx := types.SetRequestID(context.Background(), "req_123")
	at := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	event := events.NewEvent(ctx, types.AuditPaymentRecorded, "acct_1", "inv_1", at, map[string]interface{}{
		"payment_id": "pay_1",
		"amount":     "50",
	})

	require.NoError(t, pub.Publish(ctx, event))

	msgs := ps.Messages("dunning.audit")
	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.Equal(t, event.ID, msg.UUID)
	assert.Equal(t, "payment.recorded", msg.Metadata.Get("event_name"))
	assert.Equal(t, "acct_1", msg.Metadata.Get("account_id"))
	assert.Equal(t, "req_123", middleware.MessageCorrelationID(msg))

	decodedEvents, err := ps.Events("dunning.audit")
	require.NoError(t, err)
	decoded := decodedEvents[0]
	assert.Equal(t, types.AuditPaymentRecorded, decoded.EventName)
	assert.Equal(t, "inv_1", decoded.InvoiceID)
	assert.Equal(t, types.SystemUserID, decoded.UserID)
	assert.Equal(t, "pay_1", decoded.Properties["payment_id"])
	assert.True(t, at.Equal(decoded.Timestamp))
}

func TestEventPublisher_PublishFailure(t *testing.T) {
	pub := publisher.NewEventPublisher(config.GetDefaultConfig(), failingPublisher{}, logger.NewNoopLogger())

	event := events.NewEvent(context.Background(), types.AuditInvoicePaid, "acct_1", "inv_1", time.Now(), nil)
	err := pub.Publish(context.Background(), event)
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.ErrSystem))
}

func TestAuditLogHandler(t *testing.T) {
	handler := publisher.AuditLogHandler(logger.NewNoopLogger())

	event := events.NewEvent(context.Background(), types.AuditReminderSent, "acct_1", "inv_1", time.Now(), nil)
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	assert.NoError(t, handler(message.NewMessage(event.ID, payload)))

	err = handler(message.NewMessage("bad", []byte("{not json")))
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}
