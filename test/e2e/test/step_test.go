// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStepList_RunSequential(t *testing.T) {
	var ran []string
	step := func(name string) Step {
		return Step{Name: name, Test: func(*testing.T) { ran = append(ran, name) }}
	}
	skipped := step("skipped")
	skipped.Skip = func() bool { return true }

	StepList{}.
		WithStep(step("create")).
		WithSteps(StepList{skipped, step("check")}).
		WithStep(step("delete")).
		RunSequential(t)

	require.Equal(t, []string{"create", "check", "delete"}, ran)
}

func TestUntilSuccess(t *testing.T) {
	attempts := 0
	UntilSuccess(func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	}, time.Second, time.Millisecond)(t)
	require.Equal(t, 3, attempts)
}
