package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/dunning/internal/domain/events"
	"github.com/flexprice/dunning/internal/pubsub"
)

var _ pubsub.Publisher = (*RecordingPubSub)(nil)

// RecordingPubSub keeps every published message per topic for inspection
type RecordingPubSub struct {
	mu       sync.Mutex
	messages map[string][]*message.Message
}

func NewRecordingPubSub() *RecordingPubSub {
	return &RecordingPubSub{messages: make(map[string][]*message.Message)}
}

func (ps *RecordingPubSub) Publish(_ context.Context, topic string, msg *message.Message) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.messages[topic] = append(ps.messages[topic], msg)
	return nil
}

func (ps *RecordingPubSub) Close() error {
	return nil
}

// Messages returns a copy of the messages published to topic, oldest first
func (ps *RecordingPubSub) Messages(topic string) []*message.Message {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return append([]*message.Message(nil), ps.messages[topic]...)
}

// Events decodes the audit events published to topic
func (ps *RecordingPubSub) Events(topic string) ([]*events.Event, error) {
	msgs := ps.Messages(topic)
	out := make([]*events.Event, 0, len(msgs))
	for _, msg := range msgs {
		var e events.Event
		if err := json.Unmarshal(msg.Payload, &e); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, nil
}
