package latefee

import (
	"database/sql/driver"
	"encoding/json"

	ierr "github.com/flexprice/dunning/internal/errors"
)

// Value stores the policy as JSONB
func (p Policy) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan reads a policy stored as JSONB
func (p *Policy) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return ierr.NewError("unsupported late fee policy column type").
			Mark(ierr.ErrDatabase)
	}
	return json.Unmarshal(raw, p)
}
