// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ErrTimeoutReached is an error returned when timeout is reached
type ErrTimeoutReached struct {
	Timeout time.Duration
}

func (e *ErrTimeoutReached) Error() string {
	return fmt.Sprintf("timeout reached after %s", e.Timeout)
}

// IsTimeout returns true if err is, or wraps, an ErrTimeoutReached.
func IsTimeout(err error) bool {
	var timeoutErr *ErrTimeoutReached
	return errors.As(err, &timeoutErr)
}

// UntilSuccess calls f until it succeeds or the given timeout is reached,
// waiting retryInterval between two attempts.
//
// f receives a context bounded by the timeout and is expected to honour it.
// If the timeout is reached before f ever failed, an ErrTimeoutReached is returned.
// Otherwise the error from the last attempt is returned.
// Cancellation of the parent context is returned as is.
func UntilSuccess(ctx context.Context, f func(context.Context) error, timeout, retryInterval time.Duration) error {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	errorToReturn := func() error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if lastErr == nil {
			return &ErrTimeoutReached{Timeout: timeout}
		}
		return lastErr
	}

	for {
		err := f(attemptCtx)
		if err == nil {
			return nil
		}
		// an attempt interrupted by the deadline says nothing about the polled condition
		if attemptCtx.Err() == nil || !errors.Is(err, attemptCtx.Err()) {
			lastErr = err
		}

		retryTimer := time.NewTimer(retryInterval)
		select {
		case <-attemptCtx.Done():
			retryTimer.Stop()
			return errorToReturn()
		case <-retryTimer.C:
			if attemptCtx.Err() != nil {
				return errorToReturn()
			}
		}
	}
}
