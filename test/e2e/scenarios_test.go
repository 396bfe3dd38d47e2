// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

//go:build e2e

package e2e

import (
	"testing"

	"github.com/kiegroup/kie-cloud-tests/pkg/builder"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario/template"
	"github.com/kiegroup/kie-cloud-tests/test/e2e/test"
)

// TestCatalog deploys every catalog scenario with every flavor able to deploy it.
func TestCatalog(t *testing.T) {
	for _, entry := range builder.Catalog() {
		for _, flavor := range builder.Flavors() {
			b := test.NewScenarioBuilder(entry.ID, flavor)
			t.Run(b.Name(), func(t *testing.T) {
				test.RunScenario(t, b)
			})
		}
	}
}

// TestTwoKieServersWithSSO secures the two kie-servers scenario with an SSO server.
func TestTwoKieServersWithSSO(t *testing.T) {
	for _, flavor := range builder.Flavors() {
		b := test.NewScenarioBuilder(builder.WorkbenchRuntimeSmartRouterTwoKieServers, flavor).
			WithFeatures(builder.Features{SSO: true})
		t.Run(b.Name(), func(t *testing.T) {
			test.RunScenario(t, b)
		})
	}
}

// TestWorkbenchKieServerWithLDAP authenticates the workbench users against an LDAP server.
func TestWorkbenchKieServerWithLDAP(t *testing.T) {
	b := test.NewScenarioBuilder(builder.WorkbenchKieServer, template.Flavor).
		WithFeatures(builder.Features{LDAP: true, MavenRepository: true})
	test.RunScenario(t, b)
}
