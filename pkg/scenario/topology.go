// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package scenario

import (
	"context"

	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
)

// GitSettings points builds at a Git repository.
type GitSettings struct {
	// RepositoryName is the name of the repository created on the Git server deployed with the scenario.
	RepositoryName string
	// SourceDir is a local directory pushed to that repository.
	SourceDir string
	// URL of an existing repository, used when no Git server is deployed.
	URL        string
	Ref        string
	ContextDir string
}

// Request holds the optional features of a scenario. It is read-only once the scenario is built.
type Request struct {
	DeploySso                    bool
	DeployPrometheus             bool
	DeployProcessMigration       bool
	DeploySecretAdminCredentials bool
	EnableEdgeTermination        bool
	Upgrade                      bool
	Git                          *GitSettings
}

// Component is a logical service of a topology, backed by one workload.
type Component struct {
	// Name identifies the component within the topology.
	Name string
	Kind deployment.Kind
	// Workload is the name of the workload, it may reference environment variables such as ${APPLICATION_NAME}.
	Workload string
	// Service defaults to the workload name.
	Service string
	// GVK defaults to apps/v1 Deployment.
	GVK schema.GroupVersionKind
	// UserKey and PasswordKey are the environment variables holding the component credentials.
	UserKey     string
	PasswordKey string
	// SSOClient is the SSO client of the component, if it authenticates through SSO.
	SSOClient *envvars.SSOClientKeys
}

// Registration is a component expecting a number of kie-servers to register with it.
type Registration struct {
	Component string
	Expected  int
}

// Dependency is a side service deployed before the main topology, such as SSO or a Maven repository.
// It returns the environment variables describing how to reach it.
type Dependency interface {
	Name() string
	Deploy(ctx context.Context, p *cluster.Project, env envvars.Context) (deployment.Deployment, envvars.Context, error)
}

// Topology is the fixed set of components a scenario deploys.
type Topology struct {
	Components []Component
	// WaitOrder lists component names in the order they are waited for. Defaults to the components order.
	WaitOrder     []string
	Registrations []Registration
	Dependencies  []Dependency
}

// Validate checks that every name referenced by the topology is declared.
func (t Topology) Validate() error {
	names := make(map[string]bool, len(t.Components))
	for _, c := range t.Components {
		if c.Name == "" || c.Workload == "" {
			return errors.Errorf("component %q must have a name and a workload", c.Name)
		}
		if names[c.Name] {
			return errors.Errorf("duplicate component %s", c.Name)
		}
		names[c.Name] = true
	}
	seen := make(map[string]bool, len(t.WaitOrder))
	for _, name := range t.WaitOrder {
		if !names[name] {
			return errors.Errorf("wait order references unknown component %s", name)
		}
		if seen[name] {
			return errors.Errorf("component %s is waited for twice", name)
		}
		seen[name] = true
	}
	if len(t.WaitOrder) > 0 && len(t.WaitOrder) != len(t.Components) {
		return errors.Errorf("wait order lists %d components out of %d", len(t.WaitOrder), len(t.Components))
	}
	for _, r := range t.Registrations {
		if !names[r.Component] {
			return errors.Errorf("registration references unknown component %s", r.Component)
		}
	}
	return nil
}

// SSOClients returns the SSO clients of the components, in declaration order.
func (t Topology) SSOClients() []envvars.SSOClientKeys {
	var clients []envvars.SSOClientKeys
	for _, c := range t.Components {
		if c.SSOClient != nil {
			clients = append(clients, *c.SSOClient)
		}
	}
	return clients
}

// Component returns the component with the given name.
func (t Topology) Component(name string) (Component, bool) {
	for _, c := range t.Components {
		if c.Name == name {
			return c, true
		}
	}
	return Component{}, false
}

// Strategy submits a topology to the cluster in a given flavour: templates, an Ansible Playbook Bundle or the operator.
type Strategy interface {
	Flavor() string
	// Prepare creates the resources the submission relies on. It returns environment additions.
	Prepare(ctx context.Context, p *cluster.Project, env envvars.Context) (envvars.Context, error)
	// Submit creates the topology. It returns environment additions.
	Submit(ctx context.Context, p *cluster.Project, env envvars.Context) (envvars.Context, error)
	// AwaitReady waits for the deployments, in order.
	AwaitReady(ctx context.Context, deployments []deployment.Deployment) error
	// Teardown removes what Submit created outside of the workloads, before the project is deleted.
	Teardown(ctx context.Context, p *cluster.Project) error
}
