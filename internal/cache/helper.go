package cache

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
)

// GetOrLoad returns the cached value under key, or calls load and caches its result.
// Load errors are returned as is and nothing is cached.
func GetOrLoad[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	span := startCacheSpan(ctx, "get_or_load", key)
	defer finishSpan(span)

	if v, ok := c.Get(ctx, key); ok {
		if typed, ok := v.(T); ok {
			span.SetData("hit", true)
			return typed, nil
		}
	}

	value, err := load(ctx)
	if err != nil {
		setSpanError(span, err)
		return value, err
	}

	c.Set(ctx, key, value, ttl)
	return value, nil
}

// startCacheSpan creates a child span when sentry tracing is active. The returned
// span is never nil so callers can set data unconditionally.
func startCacheSpan(ctx context.Context, operation, key string) *sentry.Span {
	span := sentry.StartSpan(ctx, "cache."+operation)
	span.Op = "cache"
	span.Description = "cache." + operation
	span.SetData("key", key)
	return span
}

func finishSpan(span *sentry.Span) {
	if span != nil {
		span.Finish()
	}
}

func setSpanError(span *sentry.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.Status = sentry.SpanStatusInternalError
	span.SetData("error", err.Error())
}
