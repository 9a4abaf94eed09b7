package memory

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/pubsub"
)

// PubSub carries audit events inside a single process over watermill's gochannel
type PubSub struct {
	pubsub *gochannel.GoChannel
}

func NewPubSub(log *logger.Logger) *PubSub {
	goChannel := gochannel.NewGoChannel(
		gochannel.Config{
			// Keep messages published before the first subscriber attaches
			Persistent:                     true,
			BlockPublishUntilSubscriberAck: false,
			OutputChannelBuffer:            100,
		},
		log.GetWatermillLogger(),
	)

	return &PubSub{pubsub: goChannel}
}

var _ pubsub.PubSub = (*PubSub)(nil)

// Publish attaches ctx to msg so handlers can read request scoped values
func (p *PubSub) Publish(ctx context.Context, topic string, msg *message.Message) error {
	msg.SetContext(ctx)
	return p.pubsub.Publish(topic, msg)
}

func (p *PubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return p.pubsub.Subscribe(ctx, topic)
}

func (p *PubSub) Close() error {
	return p.pubsub.Close()
}
