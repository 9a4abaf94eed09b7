package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flexprice/dunning/internal/email"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSender(t *testing.T, handler http.HandlerFunc) *EmailSender {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := email.NewEmailClient(email.Config{
		Enabled:     true,
		APIKey:      "re_test",
		FromAddress: "billing@example.com",
		HTTPClient:  srv.Client(),
		BaseURL:     srv.URL,
	})
	require.NoError(t, err)
	return NewEmailSender(client, logger.NewNoopLogger())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestEmailSender_Success(t *testing.T) {
	var got map[string]any
	var idemKey string
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		idemKey = r.Header.Get("Idempotency-Key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, map[string]string{"id": "msg_123"})
	})

	id, err := sender.Send(context.Background(), Message{
		To:             "customer@example.com",
		Subject:        "Reminder",
		Text:           "pay up",
		IdempotencyKey: "reminder_send-abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "msg_123", id)
	assert.Equal(t, "reminder_send-abc", idemKey)
	assert.Equal(t, "billing@example.com", got["from"])
	assert.Equal(t, []any{"customer@example.com"}, got["to"])
}

func TestEmailSender_ErrorCategories(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		message  string
		expected types.ReminderFailureReason
	}{
		{
			name:     "rate limited",
			status:   http.StatusTooManyRequests,
			message:  "Too many requests",
			expected: types.ReminderFailureRateLimited,
		},
		{
			name:     "invalid recipient",
			status:   http.StatusUnprocessableEntity,
			message:  "Invalid `to` field. The email address needs to follow the `email@example.com` format.",
			expected: types.ReminderFailureInvalidRecipient,
		},
		{
			name:     "unverified domain",
			status:   http.StatusForbidden,
			message:  "The example.com domain is not verified. Please, add and verify your domain.",
			expected: types.ReminderFailureDomainRestricted,
		},
		{
			name:     "provider rejected",
			status:   http.StatusUnprocessableEntity,
			message:  "Attachment too large",
			expected: types.ReminderFailureProviderRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, map[string]any{
					"statusCode": tt.status,
					"name":       "error",
					"message":    tt.message,
				})
			})

			_, err := sender.Send(context.Background(), Message{To: "customer@example.com", Subject: "s"})
			require.Error(t, err)
			assert.True(t, ierr.IsTransport(err))
			assert.Equal(t, tt.expected, CategoryOf(err))
		})
	}
}

func TestEmailSender_Timeout(t *testing.T) {
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": "late"})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := sender.Send(ctx, Message{To: "customer@example.com", Subject: "s"})
	require.Error(t, err)
	assert.Equal(t, types.ReminderFailureTimeout, CategoryOf(err))
}

func TestCategoryOf_ForeignError(t *testing.T) {
	assert.Equal(t, types.ReminderFailureTransport, CategoryOf(assert.AnError))
	assert.Equal(t, types.ReminderFailureTimeout, CategoryOf(context.DeadlineExceeded))
}

func TestNewSender_DisabledClientLogs(t *testing.T) {
	client, err := email.NewEmailClient(email.Config{Enabled: false})
	require.NoError(t, err)

	sender := NewSender(client, logger.NewNoopLogger())
	_, ok := sender.(*LogSender)
	require.True(t, ok)

	id, err := sender.Send(context.Background(), Message{To: "a@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
