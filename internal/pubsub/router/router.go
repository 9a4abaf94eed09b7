package router

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/flexprice/dunning/internal/config"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/sentry"
)

// Router runs the audit event consumers. Messages that still fail after the
// configured retries are moved to a dead letter topic, logged and reported.
type Router struct {
	router   *message.Router
	logger   *logger.Logger
	sentry   *sentry.Service
	dlq      *gochannel.GoChannel
	dlqTopic string
}

func NewRouter(cfg *config.Configuration, log *logger.Logger, sentrySvc *sentry.Service) (*Router, error) {
	wmLogger := log.GetWatermillLogger()

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, err
	}

	dlq := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, wmLogger)
	dlqTopic := cfg.Events.Topic + "_dlq"

	poisonQueue, err := middleware.PoisonQueue(dlq, dlqTopic)
	if err != nil {
		return nil, err
	}

	router.AddMiddleware(
		poisonQueue,
		middleware.Recoverer,
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:          cfg.Events.MaxRetries,
			InitialInterval:     cfg.Events.InitialInterval,
			MaxInterval:         cfg.Events.MaxInterval,
			Multiplier:          cfg.Events.Multiplier,
			RandomizationFactor: 0.5,
			Logger:              wmLogger,
			OnRetryHook: func(retryNum int, delay time.Duration) {
				log.Infow("retrying audit message",
					"retry_number", retryNum,
					"max_retries", cfg.Events.MaxRetries,
					"delay", delay,
				)
			},
		}.Middleware,
	)

	r := &Router{
		router:   router,
		logger:   log,
		sentry:   sentrySvc,
		dlq:      dlq,
		dlqTopic: dlqTopic,
	}
	router.AddNoPublisherHandler("dead_letter", dlqTopic, dlq, r.handleDeadLetter)
	return r, nil
}

// AddNoPublishHandler registers a consumer of topic. Handler errors are
// reported before the retry middleware decides what happens to the message.
func (r *Router) AddNoPublishHandler(
	handlerName string,
	topicName string,
	subscriber message.Subscriber,
	handlerFunc func(msg *message.Message) error,
	middlewares ...message.HandlerMiddleware,
) {
	handler := r.router.AddNoPublisherHandler(
		handlerName,
		topicName,
		subscriber,
		func(msg *message.Message) error {
			err := handlerFunc(msg)
			if err != nil {
				r.logger.Errorw("audit handler failed",
					"handler", handlerName,
					"error", err,
					"correlation_id", middleware.MessageCorrelationID(msg),
					"message_uuid", msg.UUID,
				)
			}
			return err
		},
	)

	for _, m := range middlewares {
		handler.AddMiddleware(m)
	}
}

// handleDeadLetter never fails, a dead letter is acked once it is reported
func (r *Router) handleDeadLetter(msg *message.Message) error {
	reason := msg.Metadata.Get(middleware.ReasonForPoisonedKey)
	r.logger.Errorw("audit message dead lettered",
		"message_uuid", msg.UUID,
		"handler", msg.Metadata.Get(middleware.PoisonedHandlerKey),
		"reason", reason,
	)
	r.sentry.CaptureExceptionWithTags(
		ierr.NewError("audit message dead lettered").
			WithReportableDetails(map[string]any{
				"message_uuid": msg.UUID,
				"reason":       reason,
			}).
			Mark(ierr.ErrSystem),
		map[string]string{"topic": r.dlqTopic},
	)
	return nil
}

// Run blocks until ctx is cancelled or Close is called
func (r *Router) Run(ctx context.Context) error {
	r.logger.Info("starting audit router")
	return r.router.Run(ctx)
}

// Running is closed once all handlers are subscribed
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

func (r *Router) Close() error {
	r.logger.Info("closing audit router")
	if err := r.router.Close(); err != nil {
		return err
	}
	return r.dlq.Close()
}
