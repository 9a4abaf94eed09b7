package publisher

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/flexprice/dunning/internal/domain/events"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/logger"
)

// AuditLogHandler returns a router handler that writes every audit event to the log.
// Undecodable payloads are rejected so the router moves them to the poison queue.
func AuditLogHandler(logger *logger.Logger) func(msg *message.Message) error {
	return func(msg *message.Message) error {
		var event events.Event
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			return ierr.WithError(err).
				WithHint("Audit message payload is not a valid event").
				WithReportableDetails(map[string]any{
					"message_uuid": msg.UUID,
				}).
				Mark(ierr.ErrValidation)
		}

		logger.Infow("audit event",
			"event_id", event.ID,
			"event_name", event.EventName,
			"account_id", event.AccountID,
			"invoice_id", event.InvoiceID,
			"user_id", event.UserID,
			"correlation_id", middleware.MessageCorrelationID(msg),
			"properties", event.Properties,
		)
		return nil
	}
}
