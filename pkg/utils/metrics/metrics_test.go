// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveScenario(t *testing.T) {
	ObserveScenario("metrics-test", "deploy", nil, 2*time.Minute)
	ObserveScenario("metrics-test", "deploy", errors.New("boom"), time.Minute)

	require.Equal(t, 2, testutil.CollectAndCount(ScenarioDuration, "kie_cloud_tests_scenario_duration_seconds"))
}

func TestWriteToFile(t *testing.T) {
	ReadinessTimeouts.WithLabelValues("kie-server").Inc()
	require.Equal(t, float64(1), testutil.ToFloat64(ReadinessTimeouts.WithLabelValues("kie-server")))

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, WriteToFile(path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(content), `kie_cloud_tests_deployment_readiness_timeouts_total{kind="kie-server"} 1`))
}
