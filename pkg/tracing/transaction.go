// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package tracing

import (
	"context"
	"runtime"
	"strings"

	"go.elastic.co/apm/v2"
)

const (
	SpanTypeApp string = "app"

	TxTypeDeploy   = "deploy"
	TxTypeUndeploy = "undeploy"
)

// NewTransaction starts a new transaction and returns a context carrying it.
// With a nil tracer the context is returned unchanged.
func NewTransaction(ctx context.Context, t *apm.Tracer, name, txType string) (*apm.Transaction, context.Context) {
	if t == nil {
		return nil, ctx
	}
	tx := t.StartTransaction(name, txType)
	return tx, apm.ContextWithTransaction(ctx, tx)
}

// EndTransaction nil safe version of APM agents tx.End()
func EndTransaction(tx *apm.Transaction) {
	if tx != nil {
		tx.End()
	}
}

// Span starts an apm span named after callers function name. Returns a function that, when run, closes the span.
// To create a span for the entire func use `defer tracing.Span(&ctx)()` as the first call.
func Span(ctx *context.Context) func() {
	if apm.TransactionFromContext(*ctx) == nil {
		return func() {}
	}
	pc, _, _, ok := runtime.Caller(1)
	name := "unknown_function"
	if ok {
		name = runtime.FuncForPC(pc).Name()
		// keep the function name only
		if lastDot := strings.LastIndex(name, "."); 0 <= lastDot && lastDot < len(name)-1 {
			name = name[lastDot+1:]
		}
	}
	return NamedSpan(ctx, name)
}

// NamedSpan starts an apm span with the given name. Returns a function that, when run, closes the span.
func NamedSpan(ctx *context.Context, name string) func() {
	if apm.TransactionFromContext(*ctx) == nil {
		return func() {}
	}
	span, newCtx := apm.StartSpan(*ctx, name, SpanTypeApp)
	*ctx = newCtx
	return func() {
		span.End()
	}
}

// CaptureError wraps APM agent func of the same name and auto-sends, returning the original error.
func CaptureError(ctx context.Context, err error) error {
	if ctx != nil && err != nil {
		if capturedErr := apm.CaptureError(ctx, err); capturedErr != nil {
			capturedErr.Send()
		}
	}
	return err
}
