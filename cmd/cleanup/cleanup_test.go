// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package cleanup

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/cluster/clustertest"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func namespace(name string, age time.Duration, managed bool) *corev1.Namespace {
	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{
		Name:              name,
		CreationTimestamp: metav1.NewTime(now.Add(-age)),
	}}
	if managed {
		ns.Labels = map[string]string{cluster.ManagedByLabel: cluster.ManagedBy}
	}
	return ns
}

func TestRun(t *testing.T) {
	c := clustertest.New(clustertest.Options{},
		namespace("kie-old", 48*time.Hour, true),
		namespace("kie-recent", time.Hour, true),
		namespace("unmanaged-old", 48*time.Hour, false),
	)

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), c, 24*time.Hour, now, &out))
	require.Equal(t, "kie-old\n", out.String())

	remaining, err := c.Projects(context.Background())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, "kie-recent", remaining[0].Name)
}

func TestRun_NegativeAge(t *testing.T) {
	err := Run(context.Background(), clustertest.New(clustertest.Options{}), -time.Hour, now, &bytes.Buffer{})
	require.EqualError(t, err, "maximum age must not be negative, got -1h0m0s")
}

func TestCommand(t *testing.T) {
	cmd := Command()
	require.Equal(t, "cleanup", cmd.Use)
	require.Equal(t, defaultMaxAge.String(), cmd.Flags().Lookup("older-than").DefValue)
}
