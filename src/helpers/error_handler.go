package helpers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stock-forecaster/src/logger"
	"stock-forecaster/src/models"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type ForecasterError struct {
	Message string
	Cause   error
}

func (e *ForecasterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ForecasterError) Unwrap() error {
	return e.Cause
}

type ConfigurationError struct{ ForecasterError }
type ValidationError struct{ ForecasterError }
type ForecastError struct{ ForecasterError }

// NetworkError is returned by the network manager. Terminal errors (404, 400)
// are not retried.
type NetworkError struct {
	ForecasterError
	StatusCode int
	Terminal   bool
}

// DataUnavailableError means every configured source failed or returned too
// few records for a symbol.
type DataUnavailableError struct {
	ForecasterError
	Symbol   string
	Attempts []models.MFetchAttempt
}

// -----------------------------------------------------------------------------

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{ForecasterError{Message: fmt.Sprintf(format, args...)}}
}

func NewForecastError(cause error) error {
	return &ForecastError{ForecasterError{Message: "forecast failed", Cause: cause}}
}

func NewDataUnavailableError(symbol string, attempts []models.MFetchAttempt) error {
	reasons := make([]string, 0, len(attempts))
	for _, a := range attempts {
		reasons = append(reasons, fmt.Sprintf("%s: %s", a.Source, a.Reason))
	}
	return &DataUnavailableError{
		ForecasterError: ForecasterError{Message: fmt.Sprintf("no data available for %s (%s)", symbol, strings.Join(reasons, "; "))},
		Symbol:          symbol,
		Attempts:        attempts,
	}
}

// -----------------------------------------------------------------------------

// IsTerminal reports whether err should stop a retry loop.
func IsTerminal(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr *NetworkError
	return errors.As(err, &netErr) && netErr.Terminal
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff runs fn up to maxRetries+1 times, doubling baseDelay after
// each failure. Terminal errors and context cancellation stop immediately.
func RetryWithBackoff[T any](ctx context.Context, log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}

		lastErr = err
		if attempt == maxRetries || IsTerminal(err) {
			break
		}

		delay := baseDelay * (1 << attempt)
		if log != nil {
			log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries+1, operation, err, delay)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}
