// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kiegroup/kie-cloud-tests/pkg/utils/retry"
)

// DefaultRetryDelay separates two attempts of Eventually.
const DefaultRetryDelay = 3 * time.Second

// Eventually runs the given function until success with the default timeout.
func Eventually(f func(ctx context.Context) error) func(*testing.T) {
	return UntilSuccess(f, Ctx().TestTimeout, DefaultRetryDelay)
}

// UntilSuccess executes f until it succeeds, or the timeout is reached.
func UntilSuccess(f func(ctx context.Context) error, timeout, retryDelay time.Duration) func(*testing.T) {
	return func(t *testing.T) {
		fmt.Printf("Retries (%s timeout): ", timeout)
		err := retry.UntilSuccess(context.Background(), func(ctx context.Context) error {
			fmt.Print(".")
			return f(ctx)
		}, timeout, retryDelay)
		fmt.Println()
		require.NoError(t, err)
	}
}
