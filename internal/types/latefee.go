package types

import (
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/samber/lo"
)

// LateFeeType determines how a late fee amount is interpreted
type LateFeeType string

const (
	// LateFeeTypePercentage charges a percentage of the remaining balance
	LateFeeTypePercentage LateFeeType = "PERCENTAGE"
	// LateFeeTypeFixed charges a single flat amount once the grace period ends
	LateFeeTypeFixed LateFeeType = "FIXED"
)

func (t LateFeeType) String() string {
	return string(t)
}

func (t LateFeeType) Validate() error {
	allowed := []LateFeeType{
		LateFeeTypePercentage,
		LateFeeTypeFixed,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid late fee type").
			WithHint("Late fee type must be PERCENTAGE or FIXED").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
