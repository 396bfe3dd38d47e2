// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package builder

import (
	"testing"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/utils/ptr"

	kieappv2 "github.com/kiegroup/kie-cloud-tests/pkg/apis/kieapp/v2"
	"github.com/kiegroup/kie-cloud-tests/pkg/cluster/clustertest"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario/operator"
	"github.com/kiegroup/kie-cloud-tests/pkg/utils/compare"
)

func TestOperatorBuilder_Servers(t *testing.T) {
	base := NewOperatorBuilder(testConfig(t), lookup(t, WorkbenchRuntimeSmartRouterTwoKieServers))
	require.NoError(t, base.Err())

	b := base.
		WithDatabase(1, kieappv2.DatabasePostgreSQL).
		WithReplicas(0, 2).
		WithServerEnv(1, "JAVA_OPTS", "-Xmx1g").
		WithServerEnv(1, "JAVA_OPTS", "-Xmx2g").
		WithServerRouteHostname(0, "server-1.example.com")
	require.NoError(t, b.Err())

	servers := b.KieApp().Spec.Objects.Servers
	require.Len(t, servers, 2)
	require.Equal(t, kieappv2.DatabaseMySQL, servers[0].Database.Type)
	require.Equal(t, kieappv2.DatabasePostgreSQL, servers[1].Database.Type)
	require.Equal(t, ptr.To[int32](2), servers[0].Replicas)
	require.Nil(t, servers[1].Replicas)
	require.Equal(t, []corev1.EnvVar{{Name: "JAVA_OPTS", Value: "-Xmx2g"}}, servers[1].Env)
	require.Equal(t, "server-1.example.com", servers[0].RouteHostname)

	// the parent builder shares nothing with the derived one
	parent := base.KieApp().Spec.Objects.Servers
	require.Equal(t, kieappv2.DatabaseMySQL, parent[1].Database.Type)
	require.Nil(t, parent[0].Replicas)
	require.Empty(t, parent[1].Env)
	compare.EqualsSemantically(t, base.KieApp().Spec.Objects.Console, b.KieApp().Spec.Objects.Console)

	// KieApp returns a copy
	b.KieApp().Spec.Objects.Servers[0].Name = "changed"
	require.Empty(t, b.KieApp().Spec.Objects.Servers[0].Name)
}

func TestOperatorBuilder_InvalidServerIndex(t *testing.T) {
	b := NewOperatorBuilder(testConfig(t), lookup(t, WorkbenchKieServer))
	for _, after := range []OperatorBuilder{
		b.WithReplicas(1, 2),
		b.WithServerEnv(-1, "KEY", "value"),
		b.WithServerRouteHostname(3, "server.example.com"),
	} {
		require.ErrorContains(t, after.Err(), "scenario workbench-kieserver has no kie-server")
		compare.Equal(t, b.KieApp(), after.KieApp())
	}
}

func TestOperatorBuilder_DuplicateHostname(t *testing.T) {
	b := NewOperatorBuilder(testConfig(t), lookup(t, WorkbenchKieServer)).
		WithServerRouteHostname(0, "a.example.com").
		WithServerRouteHostname(0, "b.example.com")
	require.ErrorIs(t, b.Err(), ErrDuplicateSetting)
	require.Equal(t, "a.example.com", b.KieApp().Spec.Objects.Servers[0].RouteHostname)
}

func TestOperatorBuilder_UnsupportedCallKeepsState(t *testing.T) {
	b := NewOperatorBuilder(testConfig(t), lookup(t, WorkbenchKieServer)).WithSSO().WithUpgrade()
	require.NoError(t, b.Err())

	for _, call := range []func(OperatorBuilder) OperatorBuilder{
		OperatorBuilder.WithPrometheus,
		OperatorBuilder.WithEdgeTermination,
		OperatorBuilder.WithDockerRegistry,
		// no database in this scenario
		func(b OperatorBuilder) OperatorBuilder { return b.WithDatabase(0, kieappv2.DatabaseMySQL) },
		OperatorBuilder.WithProcessMigration,
	} {
		after := call(b)
		require.ErrorIs(t, after.Err(), ErrUnsupported)
		require.Contains(t, after.Err().Error(), NotSupportedYet)
		compare.Equal(t, b.KieApp(), after.KieApp())
		require.Equal(t, b.Request(), after.Request())
		require.Equal(t, b.deps, after.deps)
		require.NoError(t, b.Err())
	}
}

func TestOperatorBuilder_Features(t *testing.T) {
	b := NewOperatorBuilder(testConfig(t), lookup(t, WorkbenchKieServerDatabase)).
		WithProcessMigrationDatabase(kieappv2.DatabaseMySQL).
		WithMinorUpgrade().
		WithGitSource(scenario.GitSettings{URL: "https://example.com/repo.git", Ref: "main", ContextDir: "hello"}).
		WithKieServerContainerDeployment("hello=org.kie:hello:1.0").
		WithExternalMavenRepository("https://maven.example.com", "maven", "secret")
	require.NoError(t, b.Err())

	kieApp := b.KieApp()
	require.Equal(t, kieappv2.DatabaseMySQL, kieApp.Spec.Objects.ProcessMigration.Database.Type)
	require.Equal(t, kieappv2.KieAppUpgrades{Enabled: true, Minor: true}, kieApp.Spec.Upgrades)
	require.Equal(t, &kieappv2.KieAppBuildObject{
		KieServerContainerDeployment: "hello=org.kie:hello:1.0",
		GitSource:                    kieappv2.GitSource{URI: "https://example.com/repo.git", Reference: "main", ContextDir: "hello"},
	}, kieApp.Spec.Objects.Servers[0].Build)
	require.True(t, b.Request().DeployProcessMigration)
	require.True(t, b.Request().Upgrade)
	require.Equal(t, "https://maven.example.com", b.Env().Get(envvars.MavenRepoURL))

	s, err := b.Build(clustertest.NewClient())
	require.NoError(t, err)
	require.Equal(t, operator.Flavor, s.Flavor())
}

func TestOperatorBuilder_ContainerDeploymentWithoutBuild(t *testing.T) {
	b := NewOperatorBuilder(testConfig(t), lookup(t, WorkbenchKieServer)).
		WithServerEnv(0, envvars.KieServerContainerDeployment, "old").
		WithKieServerContainerDeployment("hello=org.kie:hello:1.0")
	require.NoError(t, b.Err())
	server := b.KieApp().Spec.Objects.Servers[0]
	require.Nil(t, server.Build)
	require.Equal(t, []corev1.EnvVar{{Name: envvars.KieServerContainerDeployment, Value: "hello=org.kie:hello:1.0"}}, server.Env)
}

func TestOperatorTopology(t *testing.T) {
	entry := lookup(t, WorkbenchRuntimeSmartRouterTwoKieServers)
	kieApp := NewOperatorBuilder(testConfig(t), entry).WithProcessMigration().KieApp()
	topology := operatorTopology(kieApp, entry.consoleKind)
	require.NoError(t, topology.Validate())

	type component struct {
		name     string
		kind     deployment.Kind
		workload string
	}
	var got []component
	for _, c := range topology.Components {
		got = append(got, component{name: c.Name, kind: c.Kind, workload: c.Workload})
	}
	require.Equal(t, []component{
		{name: "workbench", kind: deployment.KindWorkbenchMonitoring, workload: "${APPLICATION_NAME}-rhpamcentrmon"},
		{name: "smart-router", kind: deployment.KindSmartRouter, workload: "${APPLICATION_NAME}-smartrouter"},
		{name: "database-1", kind: deployment.KindDatabase, workload: "${APPLICATION_NAME}-kieserver-mysql"},
		{name: "kie-server-1", kind: deployment.KindKieServer, workload: "${APPLICATION_NAME}-kieserver"},
		{name: "database-2", kind: deployment.KindDatabase, workload: "${APPLICATION_NAME}-kieserver-2-mysql"},
		{name: "kie-server-2", kind: deployment.KindKieServer, workload: "${APPLICATION_NAME}-kieserver-2"},
		{name: "process-migration", kind: deployment.KindProcessMigration, workload: "${APPLICATION_NAME}-process-migration"},
	}, got)
	require.Equal(t, []scenario.Registration{
		{Component: ComponentWorkbench, Expected: 2},
		{Component: ComponentSmartRouter, Expected: 2},
	}, topology.Registrations)
	require.Equal(t, []envvars.SSOClientKeys{
		envvars.WorkbenchSSOClientKeys,
		envvars.SmartRouterSSOClientKeys,
		envvars.KieServerSSOClientKeys(1),
		envvars.KieServerSSOClientKeys(2),
	}, topology.SSOClients())

	// the application name is only resolved at deploy time
	require.Empty(t, kieApp.Spec.CommonConfig.ApplicationName)
}

func TestOperatorTopology_DecisionManager(t *testing.T) {
	cfg := testConfig(t)
	cfg.Profile = config.ProfileDrools
	entry := lookup(t, WorkbenchKieServer)
	topology := operatorTopology(NewOperatorBuilder(cfg, entry).KieApp(), entry.consoleKind)
	require.Equal(t, "${APPLICATION_NAME}-rhdmcentr", topology.Components[0].Workload)
	require.Equal(t, "${APPLICATION_NAME}-kieserver", topology.Components[1].Workload)
	require.Equal(t, envvars.SingleKieServerSSOClientKeys, *topology.Components[1].SSOClient)
}
