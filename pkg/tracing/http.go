// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package tracing

import (
	"net/http"

	"go.elastic.co/apm/module/apmhttp/v2"
)

// WrapHTTPClient instruments the given client so that outgoing requests become spans of the current transaction.
func WrapHTTPClient(c *http.Client) *http.Client {
	return apmhttp.WrapClient(c)
}
