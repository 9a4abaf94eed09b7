package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/dunning/internal/domain/events"
	"github.com/flexprice/dunning/internal/publisher"
	"github.com/flexprice/dunning/internal/types"
	"github.com/samber/lo"
)

// InMemoryPublisherService captures audit events for assertions
type InMemoryPublisherService struct {
	mu     sync.RWMutex
	events []*events.Event
	err    error
}

var _ publisher.EventPublisher = (*InMemoryPublisherService)(nil)

// NewInMemoryEventPublisher creates a new instance of InMemoryPublisherService
func NewInMemoryEventPublisher() *InMemoryPublisherService {
	return &InMemoryPublisherService{
		events: make([]*events.Event, 0),
	}
}

// Publish implements publisher.EventPublisher
func (p *InMemoryPublisherService) Publish(ctx context.Context, event *events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

// FailWith makes every following Publish return err
func (p *InMemoryPublisherService) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// GetEvents returns all published events
func (p *InMemoryPublisherService) GetEvents() []*events.Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	evs := make([]*events.Event, len(p.events))
	copy(evs, p.events)
	return evs
}

// EventsNamed returns the published events called name
func (p *InMemoryPublisherService) EventsNamed(name types.AuditEventName) []*events.Event {
	return lo.Filter(p.GetEvents(), func(e *events.Event, _ int) bool {
		return e.EventName == name
	})
}

// HasEvent checks if an event with the given name was published for the invoice
func (p *InMemoryPublisherService) HasEvent(name types.AuditEventName, invoiceID string) bool {
	return lo.ContainsBy(p.EventsNamed(name), func(e *events.Event) bool {
		return e.InvoiceID == invoiceID
	})
}

// Clear removes all published events
func (p *InMemoryPublisherService) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = make([]*events.Event, 0)
	p.err = nil
}
