package types

import (
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/samber/lo"
)

// PaymentMethodType is informational only, the ledger treats every method alike
type PaymentMethodType string

const (
	PaymentMethodTypeCard         PaymentMethodType = "CARD"
	PaymentMethodTypeBankTransfer PaymentMethodType = "BANK_TRANSFER"
	PaymentMethodTypeCash         PaymentMethodType = "CASH"
	PaymentMethodTypeCheque       PaymentMethodType = "CHEQUE"
	PaymentMethodTypeOther        PaymentMethodType = "OTHER"
)

var paymentMethodTypes = []PaymentMethodType{
	PaymentMethodTypeCard,
	PaymentMethodTypeBankTransfer,
	PaymentMethodTypeCash,
	PaymentMethodTypeCheque,
	PaymentMethodTypeOther,
}

func (s PaymentMethodType) String() string {
	return string(s)
}

func (s PaymentMethodType) Validate() error {
	if !lo.Contains(paymentMethodTypes, s) {
		return ierr.NewError("invalid payment method type").
			WithHintf("Payment method type %q is not supported", s).
			WithReportableDetails(map[string]any{
				"allowed": paymentMethodTypes,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentFilter selects ledger entries of a single invoice
type PaymentFilter struct {
	*QueryFilter

	InvoiceID  string   `form:"invoice_id"`
	PaymentIDs []string `form:"payment_ids"`
}

// NewNoLimitPaymentFilter is used when the whole ledger of an invoice is summed
func NewNoLimitPaymentFilter() *PaymentFilter {
	return &PaymentFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *PaymentFilter) GetLimit() int     { return resolveQueryFilter(f.QueryFilter).GetLimit() }
func (f *PaymentFilter) GetOffset() int    { return resolveQueryFilter(f.QueryFilter).GetOffset() }
func (f *PaymentFilter) IsUnlimited() bool { return resolveQueryFilter(f.QueryFilter).IsUnlimited() }
