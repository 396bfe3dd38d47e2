// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package compare holds test assertions for Kubernetes resources and builder outputs.
package compare

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/api/equality"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Diff returns the difference between want and have, ignoring the TypeMeta and ResourceVersion
// set by the API server. It is empty if both are equal.
func Diff(want, have interface{}, opts ...cmp.Option) string {
	opts = append(opts,
		cmpopts.IgnoreTypes(metav1.TypeMeta{}),
		cmpopts.IgnoreFields(metav1.ObjectMeta{}, "ResourceVersion"),
		cmpopts.EquateEmpty(),
	)
	return cmp.Diff(want, have, opts...)
}

// Equal fails the test with the difference between want and have, if any.
func Equal(t *testing.T, want, have interface{}, opts ...cmp.Option) {
	t.Helper()
	if diff := Diff(want, have, opts...); diff != "" {
		t.Fatalf("unexpected difference (-want +have):\n%s", diff)
	}
}

// EqualsSemantically fails the test if a field set in want differs in have. Fields left empty in want are ignored.
func EqualsSemantically(t *testing.T, want, have interface{}) {
	t.Helper()
	if !equality.Semantic.DeepDerivative(want, have) {
		t.Fatalf("unexpected difference:\n%s", strings.Join(deep.Equal(want, have), "\n"))
	}
}

func JSONEqual(t *testing.T, want, have interface{}) {
	t.Helper()

	w, err := json.Marshal(want)
	require.NoError(t, err)

	h, err := json.Marshal(have)
	require.NoError(t, err)

	require.JSONEq(t, string(w), string(h))
}
