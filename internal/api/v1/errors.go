package v1

import (
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/gin-gonic/gin"
)

// invoiceIDParam reads the :id path parameter
func invoiceIDParam(c *gin.Context) (string, error) {
	id := c.Param("id")
	if id == "" {
		return "", ierr.NewError("id is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation)
	}
	return id, nil
}

// bindError wraps a request decoding failure
func bindError(err error) error {
	return ierr.WithError(err).
		WithHint("Invalid request format").
		Mark(ierr.ErrValidation)
}
