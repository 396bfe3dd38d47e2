// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kiegroup/kie-cloud-tests/pkg/builder"
	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario"
)

// UndeployStepName names the step run even after a failure.
const UndeployStepName = "Undeploying the scenario should succeed"

// ScenarioBuilder describes a catalog scenario under test.
type ScenarioBuilder struct {
	ID       string
	Flavor   string
	Features builder.Features

	scenario *scenario.Scenario
}

// NewScenarioBuilder returns the builder of the catalog scenario id with the given flavor.
func NewScenarioBuilder(id, flavor string) *ScenarioBuilder {
	return &ScenarioBuilder{ID: id, Flavor: flavor}
}

func (b *ScenarioBuilder) WithFeatures(f builder.Features) *ScenarioBuilder {
	b.Features = f
	return b
}

// Name identifies the scenario and flavor in test names.
func (b *ScenarioBuilder) Name() string {
	return fmt.Sprintf("%s/%s", b.ID, b.Flavor)
}

// SkipTest returns true if the flavor is not part of this run, or cannot deploy the scenario with the configured profile.
func (b *ScenarioBuilder) SkipTest() bool {
	entry, ok := builder.Lookup(b.ID)
	if !ok {
		return false
	}
	return !Ctx().HasFlavor(b.Flavor) || !entry.SupportsFlavor(b.Flavor) || !entry.SupportsProfile(Ctx().Config.Profile)
}

// CreationTestSteps builds then deploys the scenario.
func (b *ScenarioBuilder) CreationTestSteps(c *cluster.Client) StepList {
	return StepList{
		{
			Name: "Building the scenario should succeed",
			Test: func(t *testing.T) {
				sb, err := builder.ForScenario(Ctx().Config, b.ID, b.Flavor, b.Features)
				require.NoError(t, err)
				b.scenario, err = sb.Build(c)
				require.NoError(t, err)
			},
		},
		{
			Name: "Deploying the scenario should succeed",
			Test: func(t *testing.T) {
				require.NoError(t, b.scenario.Deploy(context.Background()))
				log.Info("Scenario deployed", "scenario", b.Name(), "namespace", b.scenario.Namespace())
			},
		},
	}
}

// CheckTestSteps verifies the deployed scenario.
func (b *ScenarioBuilder) CheckTestSteps() StepList {
	return StepList{
		{
			Name: "Every deployment should be ready",
			Test: Eventually(func(ctx context.Context) error {
				for _, d := range b.scenario.Deployments() {
					ready, err := d.IsReady(ctx)
					if err != nil {
						return err
					}
					if !ready {
						return fmt.Errorf("deployment %s is not ready", d.Name())
					}
				}
				return nil
			}),
		},
		{
			Name: "Kie-servers should answer",
			Test: Eventually(func(ctx context.Context) error {
				for _, d := range b.scenario.DeploymentsOfKind(deployment.KindKieServer) {
					ks, ok := d.(*deployment.KieServer)
					if !ok {
						return fmt.Errorf("deployment %s is not a kie-server", d.Name())
					}
					if _, err := ks.ServerInfo(ctx); err != nil {
						return err
					}
				}
				return nil
			}),
		},
		{
			Name: "SSO should be configured",
			Skip: func() bool { return !b.Features.SSO },
			Test: func(t *testing.T) {
				require.Len(t, b.scenario.DeploymentsOfKind(deployment.KindSso), 1)
				env := b.scenario.Environment()
				require.True(t, env.Has(envvars.SSOURL))
				require.True(t, env.Has(envvars.SSORealm))
			},
		},
	}
}

// DeletionTestSteps undeploys the scenario, if it was built.
func (b *ScenarioBuilder) DeletionTestSteps() StepList {
	return StepList{
		{
			Name: UndeployStepName,
			Skip: func() bool { return b.scenario == nil },
			Test: func(t *testing.T) {
				require.NoError(t, b.scenario.Undeploy(context.Background()))
				require.Equal(t, scenario.StateUndeployed, b.scenario.State())
			},
		},
	}
}

// Sequence returns the steps creating, checking then deleting the scenario.
func Sequence(c *cluster.Client, b *ScenarioBuilder) StepList {
	return StepList{}.
		WithSteps(b.CreationTestSteps(c)).
		WithSteps(b.CheckTestSteps()).
		WithSteps(b.DeletionTestSteps())
}

// RunScenario runs the sequence of b, skipping the test when b cannot be tested.
func RunScenario(t *testing.T, b *ScenarioBuilder) {
	t.Helper()
	if b.SkipTest() {
		t.Skipf("%s is not tested with profile %s", b.Name(), Ctx().Config.Profile)
	}
	Sequence(NewClusterOrFatal(t), b).RunSequential(t, UndeployStepName)
}
