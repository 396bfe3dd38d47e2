// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package builder

import (
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployer"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario"
)

// dependencies are the side services requested through a builder.
type dependencies struct {
	maven      bool
	registry   bool
	ldap       bool
	amq        bool
	sso        bool
	prometheus bool
	// git is set when a Git server hosts the build sources.
	git *scenario.GitSettings
}

// build returns the deployers in the order they run.
// Prometheus reads the kie-server credentials, so it is always last.
func (d dependencies) build(cfg config.Config, topology scenario.Topology) []scenario.Dependency {
	var deps []scenario.Dependency
	if d.maven {
		deps = append(deps, deployer.NewMavenRepository(cfg))
	}
	if d.registry {
		deps = append(deps, deployer.NewDockerRegistry(cfg))
	}
	if d.ldap {
		deps = append(deps, deployer.NewLDAP(cfg))
	}
	if d.git != nil {
		deps = append(deps, deployer.NewGogs(cfg, d.git))
	}
	if d.amq {
		deps = append(deps, deployer.NewAMQ(cfg))
	}
	if d.sso {
		deps = append(deps, deployer.NewSSO(cfg, topology.SSOClients()))
	}
	if d.prometheus {
		deps = append(deps, deployer.NewPrometheus(cfg, kieServerServices(topology)))
	}
	return deps
}

func kieServerServices(topology scenario.Topology) []string {
	var services []string
	for _, c := range topology.Components {
		if c.Kind != deployment.KindKieServer {
			continue
		}
		if c.Service != "" {
			services = append(services, c.Service)
		} else {
			services = append(services, c.Workload)
		}
	}
	return services
}
