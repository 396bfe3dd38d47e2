// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package kieclient

import (
	"context"

	"github.com/pkg/errors"
)

// ServerInfo describes a running kie-server.
type ServerInfo struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Location     string   `json:"location"`
	Capabilities []string `json:"capabilities"`
}

type serviceResponse struct {
	Type   string `json:"type"`
	Msg    string `json:"msg"`
	Result struct {
		Info ServerInfo `json:"kie-server-info"`
	} `json:"result"`
}

// ServerInfo returns the kie-server information document.
func (c *Client) ServerInfo(ctx context.Context) (ServerInfo, error) {
	var resp serviceResponse
	if err := c.get(ctx, kieServerInfoPath, &resp); err != nil {
		return ServerInfo{}, err
	}
	if resp.Type != "SUCCESS" {
		return ServerInfo{}, errors.Errorf("kie-server answered %s: %s", resp.Type, resp.Msg)
	}
	return resp.Result.Info, nil
}
