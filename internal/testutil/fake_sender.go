package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/flexprice/dunning/internal/notification"
)

// FakeSender records messages instead of delivering them. Errors queued with FailNext
// are returned in order, one per Send.
type FakeSender struct {
	mu       sync.Mutex
	sent     []notification.Message
	failures []error
	// OnSend runs before a message is accepted, outside the lock
	OnSend func(ctx context.Context, msg notification.Message)
	seq    int
}

var _ notification.Sender = (*FakeSender)(nil)

func NewFakeSender() *FakeSender {
	return &FakeSender{}
}

func (f *FakeSender) Send(ctx context.Context, msg notification.Message) (string, error) {
	if f.OnSend != nil {
		f.OnSend(ctx, msg)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", notification.NewSendError(notification.CategoryOf(err), err)
	}

	f.seq++
	f.sent = append(f.sent, msg)
	return fmt.Sprintf("msg_%d", f.seq), nil
}

// FailNext queues err for the next Send
func (f *FakeSender) FailNext(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, err)
}

// Sent returns the accepted messages in send order
func (f *FakeSender) Sent() []notification.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]notification.Message, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *FakeSender) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
	f.failures = nil
	f.OnSend = nil
	f.seq = 0
}
