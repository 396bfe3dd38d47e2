// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package clustertest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

func TestSetPodPhase(t *testing.T) {
	ctx := context.Background()
	c := NewClient()
	pod := corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: "kie-test", Name: "runner"},
		Spec:       corev1.PodSpec{Containers: []corev1.Container{{Name: "main"}}},
	}
	require.NoError(t, c.Client.Create(ctx, &pod))

	for _, phase := range []corev1.PodPhase{corev1.PodSucceeded, corev1.PodFailed} {
		require.NoError(t, SetPodPhase(ctx, c, "kie-test", "runner", phase))
		var got corev1.Pod
		require.NoError(t, c.Client.Get(ctx, client.ObjectKey{Namespace: "kie-test", Name: "runner"}, &got))
		require.Equal(t, phase, got.Status.Phase)
	}

	require.Error(t, SetPodPhase(ctx, c, "kie-test", "missing", corev1.PodSucceeded))
}
