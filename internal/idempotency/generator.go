package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
)

// Scope namespaces keys of one feature
type Scope string

const (
	// ScopeReminderSend keys provider sends of a reminder record
	ScopeReminderSend Scope = "reminder_send"
)

// keyBytes is the number of hash bytes kept in a key
const keyBytes = 12

// Key hashes scope and parts into a short stable key. Parts are order sensitive.
func Key(scope Scope, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(scope))
	for _, p := range parts {
		// separator so ("ab", "c") and ("a", "bc") differ
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return string(scope) + "-" + hex.EncodeToString(h.Sum(nil)[:keyBytes])
}

// ReminderSendKey is shared by every attempt of one record, so the provider
// drops a duplicate delivery after an ambiguous timeout.
func ReminderSendKey(recordID string) string {
	return Key(ScopeReminderSend, recordID)
}
