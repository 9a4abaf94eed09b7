package types

import (
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/samber/lo"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 1000

	OrderDesc = "desc"
	OrderAsc  = "asc"
)

// BaseFilter is satisfied by every list filter the repositories accept
type BaseFilter interface {
	GetLimit() int
	GetOffset() int
	IsUnlimited() bool
}

// QueryFilter carries pagination and ordering for list endpoints.
// A nil Limit means the caller wants every row, which only internal callers do.
type QueryFilter struct {
	Limit  *int    `json:"limit,omitempty" form:"limit" validate:"omitempty,min=1,max=1000"`
	Offset *int    `json:"offset,omitempty" form:"offset" validate:"omitempty,min=0"`
	Order  *string `json:"order,omitempty" form:"order" validate:"omitempty,oneof=asc desc"`
}

func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Limit:  lo.ToPtr(DefaultListLimit),
		Offset: lo.ToPtr(0),
		Order:  lo.ToPtr(OrderDesc),
	}
}

func NewNoLimitQueryFilter() *QueryFilter {
	return &QueryFilter{
		Offset: lo.ToPtr(0),
		Order:  lo.ToPtr(OrderDesc),
	}
}

func (f QueryFilter) IsUnlimited() bool {
	return f.Limit == nil
}

// GetLimit returns 0 for unlimited queries
func (f QueryFilter) GetLimit() int {
	return lo.FromPtr(f.Limit)
}

func (f QueryFilter) GetOffset() int {
	return lo.FromPtr(f.Offset)
}

func (f QueryFilter) GetOrder() string {
	return lo.FromPtrOr(f.Order, OrderDesc)
}

func (f QueryFilter) Validate() error {
	if f.Limit != nil && (*f.Limit < 1 || *f.Limit > MaxListLimit) {
		return ierr.NewError("limit out of range").
			WithHintf("Limit must be between 1 and %d", MaxListLimit).
			Mark(ierr.ErrValidation)
	}
	if f.Offset != nil && *f.Offset < 0 {
		return ierr.NewError("negative offset").
			WithHint("Offset must be zero or greater").
			Mark(ierr.ErrValidation)
	}
	if f.Order != nil && *f.Order != OrderAsc && *f.Order != OrderDesc {
		return ierr.NewError("invalid order").
			WithHint("Order must be either asc or desc").
			WithReportableDetails(map[string]any{"order": *f.Order}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// resolveQueryFilter falls back to the default page when a filter was built without one
func resolveQueryFilter(f *QueryFilter) *QueryFilter {
	if f == nil {
		return NewDefaultQueryFilter()
	}
	return f
}
