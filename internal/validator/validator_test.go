package validator

import (
	"testing"

	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email string `validate:"required,email"`
	Count int    `validate:"gte=0"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sample{Email: "a@example.com"}))

	err := ValidateRequest(sample{Email: "nope", Count: -1})
	assert.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}
