package errors

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// detailsPrefix tags safe details that carry a JSON object of reportable fields
const detailsPrefix = "__json__:"

// ErrorBuilder wraps an error step by step. It is not an error itself,
// Mark must end the chain.
type ErrorBuilder struct {
	err error
}

func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.New(msg)}
}

func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// WithMessagef adds internal context that is logged but never shown to callers
func (b *ErrorBuilder) WithMessagef(format string, args ...any) *ErrorBuilder {
	b.err = errors.WithMessagef(b.err, format, args...)
	return b
}

// WithHint sets the message rendered to API callers
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err = errors.WithHint(b.err, hint)
	return b
}

func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	b.err = errors.WithHintf(b.err, format, args...)
	return b
}

// WithReportableDetails attaches fields that are safe to return in the error body
// and to forward to sentry. Values must be JSON encodable or they are dropped.
func (b *ErrorBuilder) WithReportableDetails(details map[string]any) *ErrorBuilder {
	marshaled, err := json.Marshal(details)
	if err != nil {
		return b
	}
	b.err = errors.WithSafeDetails(b.err, detailsPrefix+"%s", errors.Safe(string(marshaled)))
	return b
}

func (b *ErrorBuilder) Mark(reference error) error {
	b.err = errors.Mark(b.err, reference)
	return b.err
}

// ReportableDetails merges every details object attached along the chain.
// Outer wrappers override inner ones on key collisions.
func ReportableDetails(err error) map[string]any {
	details := make(map[string]any)
	for _, sdp := range errors.GetAllSafeDetails(err) {
		for _, payload := range sdp.SafeDetails {
			raw, ok := strings.CutPrefix(payload, detailsPrefix)
			if !ok {
				continue
			}
			var fields map[string]any
			if json.Unmarshal([]byte(raw), &fields) != nil {
				continue
			}
			for k, v := range fields {
				details[k] = v
			}
		}
	}
	return details
}

// DisplayMessage returns the most specific hint, or a generic message when none was set
func DisplayMessage(err error) string {
	// GetAllHints is a post-order traversal
	for _, hint := range errors.GetAllHints(err) {
		if hint = strings.TrimSpace(hint); hint != "" {
			return hint
		}
	}
	return "An unexpected error occurred"
}
