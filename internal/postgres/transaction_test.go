package postgres

import (
	"errors"
	"testing"

	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryableTxError(t *testing.T) {
	wrapped := ierr.WithError(&pq.Error{Code: pqDeadlockDetected}).
		WithHint("Failed to lock invoice").
		Mark(ierr.ErrDatabase)

	assert.True(t, isRetryableTxError(&pq.Error{Code: pqSerializationFailure}))
	assert.True(t, isRetryableTxError(wrapped))
	assert.False(t, isRetryableTxError(&pq.Error{Code: "23505"}))
	assert.False(t, isRetryableTxError(errors.New("connection refused")))
	assert.False(t, isRetryableTxError(ierr.NewError("invoice not found").Mark(ierr.ErrNotFound)))
}
