// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package deployment

import (
	"context"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/kieclient"
)

// Registrar is a component kie-servers register with: the workbench, a standalone controller or the smart router.
type Registrar interface {
	Deployment
	RegisteredServers(ctx context.Context) (int, error)
}

// ForKind returns the deployment handle matching the kind of spec.
func ForKind(p *cluster.Project, spec Spec, timeouts config.Timeouts) Deployment {
	w := New(p, spec, timeouts)
	switch spec.Kind {
	case KindKieServer:
		return &KieServer{Workload: w}
	case KindWorkbench, KindWorkbenchMonitoring, KindController:
		return &Controller{Workload: w}
	case KindSmartRouter:
		return &SmartRouter{Workload: w}
	default:
		return w
	}
}

func (w *Workload) restClient(ctx context.Context) (*kieclient.Client, error) {
	url, err := w.URL(ctx)
	if err != nil {
		return nil, err
	}
	creds := w.Credentials()
	return kieclient.New(w.project.Cluster().HTTP, url, creds.Username, creds.Password), nil
}

// KieServer is a kie-server execution node.
type KieServer struct {
	*Workload
}

func (k *KieServer) ServerInfo(ctx context.Context) (kieclient.ServerInfo, error) {
	c, err := k.restClient(ctx)
	if err != nil {
		return kieclient.ServerInfo{}, err
	}
	return c.ServerInfo(ctx)
}

// Controller manages kie-servers through server templates. The workbench embeds one.
type Controller struct {
	*Workload
}

var _ Registrar = &Controller{}

func (c *Controller) RegisteredServers(ctx context.Context) (int, error) {
	rest, err := c.restClient(ctx)
	if err != nil {
		return 0, err
	}
	return rest.RegisteredInstances(ctx)
}

// SmartRouter routes requests to the kie-servers registered with it.
type SmartRouter struct {
	*Workload
}

var _ Registrar = &SmartRouter{}

func (s *SmartRouter) RegisteredServers(ctx context.Context) (int, error) {
	rest, err := s.restClient(ctx)
	if err != nil {
		return 0, err
	}
	return rest.RegisteredServers(ctx)
}
