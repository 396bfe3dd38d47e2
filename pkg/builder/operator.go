// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package builder

import (
	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/utils/ptr"

	kieappv2 "github.com/kiegroup/kie-cloud-tests/pkg/apis/kieapp/v2"
	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario/operator"
)

// OperatorBuilder configures scenarios submitted as a KieApp resource.
//
// Every call works on a deep copy of the KieApp so that builders derived from a common
// parent never share state. Unsupported calls behave as with EnvBuilder.
type OperatorBuilder struct {
	cfg          config.Config
	entry        Entry
	capabilities CapabilitySet
	kieApp       *kieappv2.KieApp
	env          envvars.Context
	request      scenario.Request
	deps         dependencies
	err          error
}

// NewOperatorBuilder returns a builder of the catalog scenario entry for the operator flavor.
func NewOperatorBuilder(cfg config.Config, entry Entry) OperatorBuilder {
	b := OperatorBuilder{
		cfg:          cfg,
		entry:        entry,
		capabilities: entry.CapabilitiesFor(operator.Flavor),
		env:          defaultEnvironment(cfg),
		deps:         dependencies{amq: entry.AMQ},
	}
	if !entry.SupportsFlavor(operator.Flavor) {
		b.err = errors.Wrapf(ErrUnsupported, "scenario %s with %s flavor", entry.ID, operator.Flavor)
		return b
	}
	b.kieApp = entry.kieApp(cfg.Profile)
	return b
}

func (b OperatorBuilder) with(c Capability, mutate func(*OperatorBuilder)) OperatorBuilder {
	if b.err != nil {
		return b
	}
	if !b.capabilities.Has(c) {
		b.err = &UnsupportedError{Flavor: operator.Flavor, Scenario: b.entry.ID, Capability: c}
		return b
	}
	b.kieApp = b.kieApp.DeepCopy()
	mutate(&b)
	return b
}

// withServer mutates the i-th kie-server of the KieApp.
func (b OperatorBuilder) withServer(c Capability, i int, mutate func(*kieappv2.KieServerSet)) OperatorBuilder {
	if b.err == nil {
		if err := b.checkServer(i); err != nil {
			b.err = err
			return b
		}
	}
	return b.with(c, func(b *OperatorBuilder) {
		mutate(&b.kieApp.Spec.Objects.Servers[i])
	})
}

func (b OperatorBuilder) checkServer(i int) error {
	if servers := len(b.kieApp.Spec.Objects.Servers); i < 0 || i >= servers {
		return errors.Errorf("scenario %s has no kie-server %d, it has %d", b.entry.ID, i, servers)
	}
	return nil
}

func (b OperatorBuilder) Supports(c Capability) bool {
	return b.capabilities.Has(c)
}

func (b OperatorBuilder) Capabilities() CapabilitySet {
	return NewCapabilitySet(b.capabilities.List()...)
}

func (b OperatorBuilder) Err() error {
	return b.err
}

// KieApp returns a copy of the resource built so far.
func (b OperatorBuilder) KieApp() *kieappv2.KieApp {
	return b.kieApp.DeepCopy()
}

func (b OperatorBuilder) Env() envvars.Context {
	return b.env
}

func (b OperatorBuilder) Request() scenario.Request {
	return b.request
}

// WithSSO deploys an SSO server. Its URL, realm and clients are set in the KieApp when it is submitted.
func (b OperatorBuilder) WithSSO() OperatorBuilder {
	return b.with(CapabilitySSO, func(b *OperatorBuilder) {
		b.request.DeploySso = true
		b.deps.sso = true
	})
}

// WithLDAP deploys an LDAP server and authenticates the components against it.
func (b OperatorBuilder) WithLDAP() OperatorBuilder {
	return b.with(CapabilityLDAP, func(b *OperatorBuilder) {
		b.deps.ldap = true
	})
}

// WithPrometheus is not implemented by the operator.
func (b OperatorBuilder) WithPrometheus() OperatorBuilder {
	return b.with(CapabilityPrometheus, func(b *OperatorBuilder) {
		b.request.DeployPrometheus = true
		b.deps.prometheus = true
	})
}

// WithEdgeTermination is not implemented by the operator.
func (b OperatorBuilder) WithEdgeTermination() OperatorBuilder {
	return b.with(CapabilityEdgeTermination, func(b *OperatorBuilder) {
		b.request.EnableEdgeTermination = true
	})
}

// WithDockerRegistry is not implemented by the operator.
func (b OperatorBuilder) WithDockerRegistry() OperatorBuilder {
	return b.with(CapabilityDockerRegistry, func(b *OperatorBuilder) {
		b.deps.registry = true
	})
}

// WithProcessMigration adds the process instance migration service.
func (b OperatorBuilder) WithProcessMigration() OperatorBuilder {
	return b.with(CapabilityProcessMigration, func(b *OperatorBuilder) {
		b.request.DeployProcessMigration = true
		b.kieApp.Spec.Objects.ProcessMigration = &kieappv2.ProcessMigrationObject{}
	})
}

// WithProcessMigrationDatabase adds the process instance migration service backed by the given database.
func (b OperatorBuilder) WithProcessMigrationDatabase(db kieappv2.DatabaseType) OperatorBuilder {
	return b.WithProcessMigration().with(CapabilityProcessMigration, func(b *OperatorBuilder) {
		b.kieApp.Spec.Objects.ProcessMigration.Database.Type = db
	})
}

// WithSecretAdminCredentials passes the admin credentials through a secret.
func (b OperatorBuilder) WithSecretAdminCredentials() OperatorBuilder {
	return b.with(CapabilitySecretAdminCredentials, func(b *OperatorBuilder) {
		b.request.DeploySecretAdminCredentials = true
	})
}

// WithUpgrade lets the operator upgrade the deployment to the latest micro version.
func (b OperatorBuilder) WithUpgrade() OperatorBuilder {
	return b.with(CapabilityUpgrade, func(b *OperatorBuilder) {
		b.request.Upgrade = true
		b.kieApp.Spec.Upgrades = kieappv2.KieAppUpgrades{Enabled: true}
	})
}

// WithMinorUpgrade lets the operator upgrade the deployment across minor versions.
func (b OperatorBuilder) WithMinorUpgrade() OperatorBuilder {
	return b.WithUpgrade().with(CapabilityUpgrade, func(b *OperatorBuilder) {
		b.kieApp.Spec.Upgrades.Minor = true
	})
}

// WithGitSource builds every kie-server from a Git repository, see EnvBuilder.WithGitSource.
func (b OperatorBuilder) WithGitSource(git scenario.GitSettings) OperatorBuilder {
	if b.err == nil && git.RepositoryName == "" && git.URL == "" {
		b.err = errors.New("git source needs a repository name or a URL")
		return b
	}
	return b.with(CapabilityGitSource, func(b *OperatorBuilder) {
		b.request.Git = &git
		if git.RepositoryName != "" {
			b.deps.git = &git
		}
		for i := range b.kieApp.Spec.Objects.Servers {
			server := &b.kieApp.Spec.Objects.Servers[i]
			if server.Build == nil {
				server.Build = &kieappv2.KieAppBuildObject{}
			}
			server.Build.GitSource = kieappv2.GitSource{URI: git.URL, Reference: git.Ref, ContextDir: git.ContextDir}
		}
	})
}

// WithMavenRepository deploys a Maven repository the kie-servers fetch artifacts from.
func (b OperatorBuilder) WithMavenRepository() OperatorBuilder {
	return b.with(CapabilityMavenRepository, func(b *OperatorBuilder) {
		b.deps.maven = true
	})
}

// WithExternalMavenRepository points the kie-servers at an existing Maven repository.
func (b OperatorBuilder) WithExternalMavenRepository(url, username, password string) OperatorBuilder {
	return b.with(CapabilityMavenRepository, func(b *OperatorBuilder) {
		b.env = b.env.WithAll(map[string]string{
			envvars.MavenRepoURL:      url,
			envvars.MavenRepoUsername: username,
			envvars.MavenRepoPassword: password,
		})
	})
}

// WithDatabase sets the database of the i-th kie-server.
func (b OperatorBuilder) WithDatabase(i int, db kieappv2.DatabaseType) OperatorBuilder {
	return b.withServer(CapabilityDatabase, i, func(server *kieappv2.KieServerSet) {
		server.Database = &kieappv2.DatabaseObject{Type: db}
	})
}

// WithReplicas sets the replicas of the i-th kie-server.
func (b OperatorBuilder) WithReplicas(i int, replicas int32) OperatorBuilder {
	return b.withServer(CapabilityReplicas, i, func(server *kieappv2.KieServerSet) {
		server.Replicas = ptr.To(replicas)
	})
}

// WithServerRouteHostname sets the route hostname of the i-th kie-server. It can only be set once.
func (b OperatorBuilder) WithServerRouteHostname(i int, hostname string) OperatorBuilder {
	if b.err == nil && b.checkServer(i) == nil && b.capabilities.Has(CapabilityHostnames) &&
		b.kieApp.Spec.Objects.Servers[i].RouteHostname != "" {
		b.err = errors.Wrapf(ErrDuplicateSetting, "route hostname of kie-server %d", i)
		return b
	}
	return b.withServer(CapabilityHostnames, i, func(server *kieappv2.KieServerSet) {
		server.RouteHostname = hostname
	})
}

// WithServerEnv sets a variable in the i-th kie-server, replacing any previous value.
func (b OperatorBuilder) WithServerEnv(i int, name, value string) OperatorBuilder {
	if b.err != nil {
		return b
	}
	if err := b.checkServer(i); err != nil {
		b.err = err
		return b
	}
	b.kieApp = b.kieApp.DeepCopy()
	server := &b.kieApp.Spec.Objects.Servers[i]
	server.Env = setEnvVar(server.Env, name, value)
	return b
}

// WithKieServerContainerDeployment deploys the given containers when the kie-servers start,
// from their build when they have one.
func (b OperatorBuilder) WithKieServerContainerDeployment(containers string) OperatorBuilder {
	if b.err != nil {
		return b
	}
	b.kieApp = b.kieApp.DeepCopy()
	for i := range b.kieApp.Spec.Objects.Servers {
		server := &b.kieApp.Spec.Objects.Servers[i]
		if server.Build != nil {
			server.Build.KieServerContainerDeployment = containers
			continue
		}
		server.Env = setEnvVar(server.Env, envvars.KieServerContainerDeployment, containers)
	}
	return b
}

func setEnvVar(vars []corev1.EnvVar, name, value string) []corev1.EnvVar {
	for i := range vars {
		if vars[i].Name == name {
			vars[i].Value = value
			return vars
		}
	}
	return append(vars, corev1.EnvVar{Name: name, Value: value})
}

// Build returns the scenario, see EnvBuilder.Build.
func (b OperatorBuilder) Build(c *cluster.Client, opts ...scenario.Option) (*scenario.Scenario, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := checkProfile(b.cfg, b.entry); err != nil {
		return nil, err
	}
	topology := operatorTopology(b.kieApp, b.entry.consoleKind)
	topology.Dependencies = b.deps.build(b.cfg, topology)
	strategy := operator.New(b.kieApp.DeepCopy(), b.cfg.Timeouts)
	return scenario.New(b.entry.ID, c, b.cfg, b.request, topology, strategy, b.env, opts...)
}

// operatorTopology returns the workloads the operator creates for kieApp.
// Workload names reference the application name, resolved when the scenario is deployed.
func operatorTopology(kieApp *kieappv2.KieApp, consoleKind deployment.Kind) scenario.Topology {
	naming := kieApp.DeepCopy()
	naming.Spec.CommonConfig.ApplicationName = applicationNameRef
	objects := naming.Spec.Objects

	var t scenario.Topology
	if objects.Console != nil {
		c := scenario.Component{
			Name:        ComponentWorkbench,
			Kind:        consoleKind,
			Workload:    naming.ConsoleDeploymentName(),
			GVK:         cluster.DeploymentConfigGVK,
			UserKey:     envvars.KieAdminUser,
			PasswordKey: envvars.KieAdminPwd,
			SSOClient:   ptr.To(envvars.WorkbenchSSOClientKeys),
		}
		if consoleKind == deployment.KindWorkbenchMonitoring {
			c.Workload += "mon"
		}
		t.Components = append(t.Components, c)
		t.Registrations = append(t.Registrations, scenario.Registration{Component: ComponentWorkbench, Expected: len(objects.Servers)})
	}
	if objects.SmartRouter != nil {
		r := smartRouter()
		r.Workload = naming.SmartRouterDeploymentName()
		t.Components = append(t.Components, r)
		t.Registrations = append(t.Registrations, scenario.Registration{Component: ComponentSmartRouter, Expected: len(objects.Servers)})
	}
	for i, server := range objects.Servers {
		name, dbName, keys := ComponentKieServer, ComponentDatabase, envvars.SingleKieServerSSOClientKeys
		if len(objects.Servers) > 1 {
			name, dbName, keys = indexed(ComponentKieServer, i+1), indexed(ComponentDatabase, i+1), envvars.KieServerSSOClientKeys(i+1)
		}
		workload := naming.ServerDeploymentName(i)
		if server.Database != nil && (server.Database.Type == kieappv2.DatabaseMySQL || server.Database.Type == kieappv2.DatabasePostgreSQL) {
			db := database(dbName, "")
			db.Workload = workload + "-" + string(server.Database.Type)
			t.Components = append(t.Components, db)
		}
		s := kieServer(name, "", keys)
		s.Workload = workload
		t.Components = append(t.Components, s)
	}
	if objects.ProcessMigration != nil {
		t.Components = append(t.Components, scenario.Component{
			Name:     ComponentMigration,
			Kind:     deployment.KindProcessMigration,
			Workload: naming.ProcessMigrationDeploymentName(),
			GVK:      cluster.DeploymentConfigGVK,
		})
	}
	return t
}
