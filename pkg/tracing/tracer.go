// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package tracing

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"go.elastic.co/apm/v2"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

var log = logf.Log.WithName("tracing")

// NewTracer returns a new APM tracer, configured through the ELASTIC_APM_* environment variables.
// A nil tracer is returned if it cannot be created: tracing is never a reason to fail.
func NewTracer(serviceName, version string) *apm.Tracer {
	tracer, err := apm.NewTracer(serviceName, version)
	if err != nil {
		log.Error(err, "failed to create tracer", "service", serviceName)
		return nil
	}
	tracer.SetLogger(NewLogAdapter(log))
	return tracer
}

// NewLogAdapter returns an implementation of the log interface expected by the APM agent.
func NewLogAdapter(log logr.Logger) apm.Logger {
	return &logAdapter{
		log: log,
	}
}

type logAdapter struct {
	log logr.Logger
}

func (l *logAdapter) Errorf(format string, args ...interface{}) {
	l.log.Error(errors.Errorf(format, args...), "")
}

func (l *logAdapter) Warningf(format string, args ...interface{}) {
	l.log.Info(fmt.Sprintf(format, args...))
}

func (l *logAdapter) Debugf(format string, args ...interface{}) {
	l.log.V(1).Info(fmt.Sprintf(format, args...))
}

var _ apm.Logger = &logAdapter{}
