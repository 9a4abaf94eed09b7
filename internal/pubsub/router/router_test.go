package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/dunning/internal/config"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/pubsub/memory"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type RouterSuite struct {
	suite.Suite
	cfg    *config.Configuration
	log    *logger.Logger
	logs   *observer.ObservedLogs
	ps     *memory.PubSub
	router *Router
	cancel context.CancelFunc
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	core, logs := observer.New(zapcore.DebugLevel)
	s.logs = logs
	s.log = &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	s.cfg = config.GetDefaultConfig()
	s.cfg.Events.MaxRetries = 1
	s.cfg.Events.InitialInterval = time.Millisecond
	s.cfg.Events.MaxInterval = 5 * time.Millisecond

	s.ps = memory.NewPubSub(s.log)

	r, err := NewRouter(s.cfg, s.log, nil)
	s.Require().NoError(err)
	s.router = r
}

func (s *RouterSuite) TearDownTest() {
	if s.cancel != nil {
		s.cancel()
	}
	s.NoError(s.router.Close())
	s.NoError(s.ps.Close())
}

func (s *RouterSuite) start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		_ = s.router.Run(ctx)
	}()

	select {
	case <-s.router.Running():
	case <-time.After(5 * time.Second):
		s.FailNow("router did not start")
	}
}

func (s *RouterSuite) publish(payload string) {
	msg := message.NewMessage(watermill.NewUUID(), []byte(payload))
	s.Require().NoError(s.ps.Publish(context.Background(), s.cfg.Events.Topic, msg))
}

func (s *RouterSuite) TestHandlerReceivesMessages() {
	received := make(chan string, 1)
	s.router.AddNoPublishHandler("audit_test", s.cfg.Events.Topic, s.ps, func(msg *message.Message) error {
		received <- string(msg.Payload)
		return nil
	})
	s.start()

	s.publish(`{"event_name":"invoice.created"}`)

	select {
	case payload := <-received:
		s.JSONEq(`{"event_name":"invoice.created"}`, payload)
	case <-time.After(5 * time.Second):
		s.FailNow("message not delivered")
	}
}

func (s *RouterSuite) TestFailingMessageIsDeadLettered() {
	s.router.AddNoPublishHandler("audit_test", s.cfg.Events.Topic, s.ps, func(msg *message.Message) error {
		return errors.New("cannot decode")
	})
	s.start()

	s.publish(`not json`)

	s.Eventually(func() bool {
		return s.logs.FilterMessage("audit message dead lettered").Len() == 1
	}, 5*time.Second, 10*time.Millisecond)

	// initial attempt plus one retry
	s.Equal(2, s.logs.FilterMessage("audit handler failed").Len())
}
