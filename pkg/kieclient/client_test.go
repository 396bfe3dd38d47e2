// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package kieclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kiegroup/kie-cloud-tests/pkg/utils/httpclient"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	httpClient := httpclient.New("test")
	httpClient.RetryMax = 0
	return New(httpClient, server.URL+"/", "admin", "admin1!")
}

func basicAuth(t *testing.T, next http.HandlerFunc) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		user, pwd, ok := r.BasicAuth()
		if !ok || user != "admin" || pwd != "admin1!" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func TestClient_ServerInfo(t *testing.T) {
	c := newTestClient(t, basicAuth(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/services/rest/server", r.URL.Path)
		_, _ = w.Write([]byte(`{"type":"SUCCESS","msg":"Kie Server info","result":{"kie-server-info":{"id":"myapp-kieserver","version":"7.67.0","capabilities":["KieServer","BRM","BPM"]}}}`))
	}))

	info, err := c.ServerInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, ServerInfo{ID: "myapp-kieserver", Version: "7.67.0", Capabilities: []string{"KieServer", "BRM", "BPM"}}, info)
}

func TestClient_ServerInfoFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"type":"FAILURE","msg":"starting"}`))
	})
	_, err := c.ServerInfo(context.Background())
	require.EqualError(t, err, "kie-server answered FAILURE: starting")
}

func TestClient_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := c.ServerTemplates(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestClient_RegisteredInstances(t *testing.T) {
	c := newTestClient(t, basicAuth(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/controller/management/servers", r.URL.Path)
		_, _ = w.Write([]byte(`{"server-template":[
			{"server-id":"kieserver-1","server-instances":[{"server-instance-id":"a","server-url":"http://a"}]},
			{"server-id":"kieserver-2","server-instances":[{"server-instance-id":"b"},{"server-instance-id":"c"}]},
			{"server-id":"empty"}
		]}`))
	}))

	count, err := c.RegisteredInstances(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestClient_RegisteredServers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/mgmt/list", r.URL.Path)
		_, _ = w.Write([]byte(`{"servers":{"kieserver-1":["http://a"],"kieserver-2":["http://b"]},"containers":{"hello":["http://a"]}}`))
	})

	count, err := c.RegisteredServers(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
