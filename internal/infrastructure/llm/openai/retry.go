package openai

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

const (
	retryMaxAttempts  = 3
	retryInitialDelay = 500 * time.Millisecond
	retryMaxDelay     = 8 * time.Second
	retryFactor       = 2
	retryJitter       = 0.2
)

// withRetry runs fn, retrying transient failures with exponential backoff and
// jitter. Context cancellation and non-transient errors surface immediately.
func withRetry(ctx context.Context, log zerolog.Logger, operation string, fn func() error) error {
	delay := retryInitialDelay
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if attempt >= retryMaxAttempts || !isRetryable(err) {
			return err
		}

		jittered := jitterDelay(delay)
		log.Warn().Err(err).
			Str("operation", operation).
			Int("attempt", attempt+1).
			Dur("delay", jittered).
			Msg("transient error; retrying OpenAI call")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(jittered):
		}
		delay *= retryFactor
		if delay > retryMaxDelay {
			delay = retryMaxDelay
		}
	}
}

// isRetryable classifies transient failures: rate limits, server errors,
// timeouts and network hiccups.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 408,
			apiErr.HTTPStatusCode == 409,
			apiErr.HTTPStatusCode == 429,
			apiErr.HTTPStatusCode >= 500 && apiErr.HTTPStatusCode <= 599:
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "timed out"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "network"):
		return true
	}
	return false
}

// jitterDelay spreads the delay by +/- retryJitter.
func jitterDelay(d time.Duration) time.Duration {
	spread := (rand.Float64()*2 - 1) * retryJitter
	out := time.Duration(float64(d) * (1 + spread))
	if out < 0 {
		return 0
	}
	return out
}
