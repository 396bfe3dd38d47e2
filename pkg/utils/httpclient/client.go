// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package httpclient

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-retryablehttp"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kiegroup/kie-cloud-tests/pkg/tracing"
)

const (
	DefaultRetryMax = 3
	DefaultTimeout  = 30 * time.Second
)

// New returns an HTTP client retrying connection errors and 5xx responses, traced through APM
// and logging through a logger with the given name.
// Test clusters serve self-signed certificates, so TLS verification is disabled.
func New(name string) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = DefaultRetryMax
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 5 * time.Second
	c.Logger = LeveledLogger{Log: logf.Log.WithName(name)}
	c.HTTPClient.Timeout = DefaultTimeout
	if transport, ok := c.HTTPClient.Transport.(*http.Transport); ok {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	c.HTTPClient = tracing.WrapHTTPClient(c.HTTPClient)
	return c
}

// LeveledLogger adapts a logr.Logger to retryablehttp.
type LeveledLogger struct {
	Log logr.Logger
}

var _ retryablehttp.LeveledLogger = LeveledLogger{}

func (l LeveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.Log.Error(nil, msg, keysAndValues...)
}

func (l LeveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.Log.V(1).Info(msg, keysAndValues...)
}

func (l LeveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.Log.V(2).Info(msg, keysAndValues...)
}

func (l LeveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.Log.Info(msg, keysAndValues...)
}
