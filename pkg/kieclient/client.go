// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package kieclient polls the REST APIs of the deployed product components.
// It only covers what is needed to check that components are up and registered with each other.
package kieclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

const (
	kieServerInfoPath     = "/services/rest/server"
	controllerServersPath = "/rest/controller/management/servers"
	routerListPath        = "/mgmt/list"
)

// APIError is returned when a component answers with an unexpected status code.
type APIError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: unexpected status code %d: %s", e.URL, e.StatusCode, e.Body)
}

// Client is a basic-auth JSON client for a single component.
type Client struct {
	http     *retryablehttp.Client
	baseURL  string
	username string
	password string
}

func New(httpClient *retryablehttp.Client, baseURL, username, password string) *Client {
	return &Client{
		http:     httpClient,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		password: password,
	}
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	url := c.baseURL + path
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, URL: url, Body: string(body)}
	}
	return errors.Wrapf(json.Unmarshal(body, out), "while decoding response of %s", url)
}
