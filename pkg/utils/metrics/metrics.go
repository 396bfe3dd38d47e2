// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	crmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

const (
	namespace = "kie_cloud_tests"

	ScenarioLabel  = "scenario"
	OperationLabel = "operation"
	OutcomeLabel   = "outcome"
	KindLabel      = "kind"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// ScenarioDuration measures how long scenario deployments and undeployments take.
	ScenarioDuration = registerHistogram(prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "scenario",
		Name:      "duration_seconds",
		Help:      "Duration of scenario lifecycle operations",
		Buckets:   []float64{30, 60, 120, 300, 600, 900, 1200, 1800, 3600},
	}, []string{ScenarioLabel, OperationLabel, OutcomeLabel}))

	// ReadinessTimeouts counts deployments that did not reach their desired scale in time.
	ReadinessTimeouts = registerCounter(prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "deployment",
		Name:      "readiness_timeouts_total",
		Help:      "Number of deployments that did not reach their desired scale in time",
	}, []string{KindLabel}))
)

// ObserveScenario records the duration and outcome of a lifecycle operation.
func ObserveScenario(scenario, operation string, err error, duration time.Duration) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	ScenarioDuration.WithLabelValues(scenario, operation, outcome).Observe(duration.Seconds())
}

// WriteToFile dumps every registered metric to path in the Prometheus text format.
func WriteToFile(path string) error {
	return prometheus.WriteToTextfile(path, crmetrics.Registry)
}

func registerHistogram(h *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := crmetrics.Registry.Register(h); err != nil {
		if existsErr, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return existsErr.ExistingCollector.(*prometheus.HistogramVec)
		}
		panic(fmt.Errorf("failed to register histogram: %w", err))
	}
	return h
}

func registerCounter(c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := crmetrics.Registry.Register(c); err != nil {
		if existsErr, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return existsErr.ExistingCollector.(*prometheus.CounterVec)
		}
		panic(fmt.Errorf("failed to register counter: %w", err))
	}
	return c
}
