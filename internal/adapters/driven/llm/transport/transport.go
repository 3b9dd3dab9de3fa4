// Package transport provides shared retry handling for completion
// provider adapters. Only transport-level failures (the request never
// produced a response) are retried; provider API errors surface
// immediately with their upstream message intact.
package transport

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries = 3

	// RetryBase is the initial backoff delay.
	RetryBase = 2 * time.Second

	// RetryCap bounds the backoff delay.
	RetryCap = 30 * time.Second
)

// Error marks a transport-level failure eligible for retry.
type Error struct {
	Err error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// IsTransport checks whether the error is a transport failure.
func IsTransport(err error) bool {
	var te *Error
	return errors.As(err, &te)
}

// Do runs fn, retrying transport failures with capped exponential
// backoff. Any other error stops immediately.
func Do(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(MaxRetries,
		retry.WithCappedDuration(RetryCap, retry.NewExponential(RetryBase)))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && IsTransport(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
