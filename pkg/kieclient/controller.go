// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package kieclient

import "context"

type ServerInstance struct {
	ID  string `json:"server-instance-id"`
	URL string `json:"server-url"`
}

type ServerTemplate struct {
	ID        string           `json:"server-id"`
	Name      string           `json:"server-name"`
	Instances []ServerInstance `json:"server-instances"`
}

type serverTemplateList struct {
	Templates []ServerTemplate `json:"server-template"`
}

// ServerTemplates lists the server templates known by a controller (workbench or standalone controller).
func (c *Client) ServerTemplates(ctx context.Context) ([]ServerTemplate, error) {
	var list serverTemplateList
	if err := c.get(ctx, controllerServersPath, &list); err != nil {
		return nil, err
	}
	return list.Templates, nil
}

// RegisteredInstances counts the server instances registered across all server templates.
func (c *Client) RegisteredInstances(ctx context.Context) (int, error) {
	templates, err := c.ServerTemplates(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, t := range templates {
		count += len(t.Instances)
	}
	return count, nil
}
