// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package kieclient

import "context"

// RouterConfig is the routing table exposed by the smart router.
type RouterConfig struct {
	// Servers maps a kie-server id to the URLs of its instances.
	Servers map[string][]string `json:"servers"`
	// Containers maps a container id to the URLs serving it.
	Containers map[string][]string `json:"containers"`
}

// RouterConfig returns the smart router routing table.
func (c *Client) RouterConfig(ctx context.Context) (RouterConfig, error) {
	var cfg RouterConfig
	err := c.get(ctx, routerListPath, &cfg)
	return cfg, err
}

// RegisteredServers counts the kie-servers known by the smart router.
func (c *Client) RegisteredServers(ctx context.Context) (int, error) {
	cfg, err := c.RouterConfig(ctx)
	if err != nil {
		return 0, err
	}
	return len(cfg.Servers), nil
}
