package publisher

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/flexprice/dunning/internal/config"
	"github.com/flexprice/dunning/internal/domain/events"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/pubsub"
	"github.com/flexprice/dunning/internal/types"
)

// EventPublisher publishes audit events
type EventPublisher interface {
	Publish(ctx context.Context, event *events.Event) error
}

type eventPublisher struct {
	pubsub pubsub.Publisher
	topic  string
	logger *logger.Logger
}

// NewEventPublisher creates a publisher writing JSON messages to the audit topic
func NewEventPublisher(cfg *config.Configuration, pubsub pubsub.Publisher, logger *logger.Logger) EventPublisher {
	return &eventPublisher{
		pubsub: pubsub,
		topic:  cfg.Events.Topic,
		logger: logger,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, event *events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to marshal audit event").
			Mark(ierr.ErrSystem)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_name", event.EventName.String())
	msg.Metadata.Set("account_id", event.AccountID)
	if requestID := types.GetRequestID(ctx); requestID != "" {
		middleware.SetCorrelationID(requestID, msg)
	}

	p.logger.Debugw("publishing audit event",
		"event_id", event.ID,
		"event_name", event.EventName,
		"invoice_id", event.InvoiceID,
	)

	if err := p.pubsub.Publish(ctx, p.topic, msg); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to publish audit event").
			Mark(ierr.ErrSystem)
	}
	return nil
}
