package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex inv_01HZX4W6Q2V0J8J5A9M3KQ4T7B
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	// Prefixes for all domains and entities

	UUID_PREFIX_ACCOUNT  = "acct"
	UUID_PREFIX_INVOICE  = "inv"
	UUID_PREFIX_PAYMENT  = "pay"
	UUID_PREFIX_REMINDER = "rmd"
	UUID_PREFIX_EVENT    = "evt"
)
