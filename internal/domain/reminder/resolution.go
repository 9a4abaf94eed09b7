package reminder

import (
	"github.com/flexprice/dunning/internal/types"
)

// ResolutionAction tells the dispatcher which record a send attempt should use
type ResolutionAction string

const (
	// ResolutionReuseScheduled reuses the live SCHEDULED record
	ResolutionReuseScheduled ResolutionAction = "reuse_scheduled"
	// ResolutionReuseFailed retries on the most recent FAILED record
	ResolutionReuseFailed ResolutionAction = "reuse_failed"
	// ResolutionCreateNew creates a new SCHEDULED record
	ResolutionCreateNew ResolutionAction = "create_new"
)

// Resolution is the outcome of Resolve. Record is nil for ResolutionCreateNew.
type Resolution struct {
	Action ResolutionAction
	Record *Record
}

// Resolve picks the record a send attempt for kind should update so that repeated
// attempts converge on one record per occasion: the most recent SCHEDULED record,
// else the most recent FAILED record, else a new one.
// records may be in any order and may contain other kinds.
func Resolve(records []*Record, kind types.ReminderKind) Resolution {
	if r := latest(records, kind, types.ReminderStatusScheduled); r != nil {
		return Resolution{Action: ResolutionReuseScheduled, Record: r}
	}
	if r := latest(records, kind, types.ReminderStatusFailed); r != nil {
		return Resolution{Action: ResolutionReuseFailed, Record: r}
	}
	return Resolution{Action: ResolutionCreateNew}
}

// FindDelivered returns the record proving a message for kind was already delivered, if any
func FindDelivered(records []*Record, kind types.ReminderKind) *Record {
	for _, r := range records {
		if r.Kind == kind && r.Delivered() {
			return r
		}
	}
	return nil
}

func latest(records []*Record, kind types.ReminderKind, status types.ReminderStatus) *Record {
	var found *Record
	for _, r := range records {
		if r.Kind != kind || r.ReminderStatus != status {
			continue
		}
		if found == nil || r.CreatedAt.After(found.CreatedAt) ||
			(r.CreatedAt.Equal(found.CreatedAt) && r.UpdatedAt.After(found.UpdatedAt)) {
			found = r
		}
	}
	return found
}
