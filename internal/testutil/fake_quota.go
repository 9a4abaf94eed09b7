package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/flexprice/dunning/internal/quota"
)

// FakeQuota is a programmable quota.Checker and quota.Recorder. Decisions queued with
// Queue are consumed one per check; otherwise it allows.
type FakeQuota struct {
	mu       sync.Mutex
	queued   []quota.Decision
	checks   int
	recorded map[string]int
}

var (
	_ quota.Checker  = (*FakeQuota)(nil)
	_ quota.Recorder = (*FakeQuota)(nil)
)

func NewFakeQuota() *FakeQuota {
	return &FakeQuota{recorded: make(map[string]int)}
}

func (q *FakeQuota) CanSendReminder(ctx context.Context, accountID, invoiceID string) (quota.Decision, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.checks++
	if len(q.queued) > 0 {
		d := q.queued[0]
		q.queued = q.queued[1:]
		return d, nil
	}
	return quota.Allow(), nil
}

func (q *FakeQuota) RecordReminderSent(ctx context.Context, accountID string, at time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.recorded[accountID]++
	return nil
}

// Queue sets the decisions of the next checks in order
func (q *FakeQuota) Queue(decisions ...quota.Decision) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queued = append(q.queued, decisions...)
}

// Checks returns how many times the quota was consulted
func (q *FakeQuota) Checks() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.checks
}

// Recorded returns the reminders counted for accountID
func (q *FakeQuota) Recorded(accountID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.recorded[accountID]
}

func (q *FakeQuota) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queued = nil
	q.checks = 0
	q.recorded = make(map[string]int)
}
