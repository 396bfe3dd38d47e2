// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package builder

import (
	"github.com/pkg/errors"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario/apb"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario/template"
)

// EnvBuilder configures scenarios submitted as templates or as an Ansible Playbook Bundle.
// Both flavors are driven by environment variables only.
//
// Methods return a modified copy and never change the receiver. A method requesting a capability
// the flavor lacks returns the builder unchanged but for the recorded *UnsupportedError,
// and the following calls are ignored.
type EnvBuilder struct {
	cfg          config.Config
	entry        Entry
	flavor       string
	capabilities CapabilitySet
	env          envvars.Context
	request      scenario.Request
	deps         dependencies
	err          error
}

// NewEnvBuilder returns a builder of the catalog scenario entry for the template or APB flavor.
func NewEnvBuilder(cfg config.Config, entry Entry, flavor string) EnvBuilder {
	b := EnvBuilder{
		cfg:          cfg,
		entry:        entry,
		flavor:       flavor,
		capabilities: entry.CapabilitiesFor(flavor),
		env:          defaultEnvironment(cfg),
		deps:         dependencies{amq: entry.AMQ},
	}
	if flavor != template.Flavor && flavor != apb.Flavor {
		b.err = errors.Errorf("flavor %s is not driven by environment variables", flavor)
		return b
	}
	if !entry.SupportsFlavor(flavor) {
		b.err = errors.Wrapf(ErrUnsupported, "scenario %s with %s flavor", entry.ID, flavor)
		return b
	}
	if entry.AMQ {
		b.env = b.env.With(envvars.KieServerJMSEnable, "true")
	}
	return b
}

func (b EnvBuilder) with(c Capability, mutate func(*EnvBuilder)) EnvBuilder {
	if b.err != nil {
		return b
	}
	if !b.capabilities.Has(c) {
		b.err = &UnsupportedError{Flavor: b.flavor, Scenario: b.entry.ID, Capability: c}
		return b
	}
	mutate(&b)
	return b
}

func (b EnvBuilder) Supports(c Capability) bool {
	return b.capabilities.Has(c)
}

func (b EnvBuilder) Capabilities() CapabilitySet {
	return NewCapabilitySet(b.capabilities.List()...)
}

func (b EnvBuilder) Err() error {
	return b.err
}

// Env returns the environment built so far.
func (b EnvBuilder) Env() envvars.Context {
	return b.env
}

func (b EnvBuilder) Request() scenario.Request {
	return b.request
}

// WithSSO deploys an SSO server and registers one client per component with it.
func (b EnvBuilder) WithSSO() EnvBuilder {
	return b.with(CapabilitySSO, func(b *EnvBuilder) {
		b.request.DeploySso = true
		b.deps.sso = true
	})
}

// WithLDAP deploys an LDAP server holding the product users.
func (b EnvBuilder) WithLDAP() EnvBuilder {
	return b.with(CapabilityLDAP, func(b *EnvBuilder) {
		b.deps.ldap = true
	})
}

// WithPrometheus deploys Prometheus scraping the kie-servers.
func (b EnvBuilder) WithPrometheus() EnvBuilder {
	return b.with(CapabilityPrometheus, func(b *EnvBuilder) {
		b.request.DeployPrometheus = true
		b.deps.prometheus = true
	})
}

// WithSecretAdminCredentials passes the admin credentials through a secret.
func (b EnvBuilder) WithSecretAdminCredentials() EnvBuilder {
	return b.with(CapabilitySecretAdminCredentials, func(b *EnvBuilder) {
		b.request.DeploySecretAdminCredentials = true
	})
}

// WithEdgeTermination processes the edge terminated variant of the templates.
func (b EnvBuilder) WithEdgeTermination() EnvBuilder {
	return b.with(CapabilityEdgeTermination, func(b *EnvBuilder) {
		b.request.EnableEdgeTermination = true
	})
}

// WithProcessMigration is only implemented by the operator.
func (b EnvBuilder) WithProcessMigration() EnvBuilder {
	return b.with(CapabilityProcessMigration, func(b *EnvBuilder) {
		b.request.DeployProcessMigration = true
	})
}

// WithUpgrade is only implemented by the operator.
func (b EnvBuilder) WithUpgrade() EnvBuilder {
	return b.with(CapabilityUpgrade, func(b *EnvBuilder) {
		b.request.Upgrade = true
	})
}

// WithGitSource builds the kie-servers from a Git repository. When git names a repository,
// a Git server is deployed and the sources pushed to it, otherwise git.URL is used as is.
func (b EnvBuilder) WithGitSource(git scenario.GitSettings) EnvBuilder {
	if b.err == nil && git.RepositoryName == "" && git.URL == "" {
		b.err = errors.New("git source needs a repository name or a URL")
		return b
	}
	return b.with(CapabilityGitSource, func(b *EnvBuilder) {
		b.request.Git = &git
		if git.RepositoryName != "" {
			b.deps.git = &git
			return
		}
		b.env = b.env.WithAll(gitSourceEnv(git))
	})
}

// WithMavenRepository deploys a Maven repository the kie-servers fetch artifacts from.
func (b EnvBuilder) WithMavenRepository() EnvBuilder {
	return b.with(CapabilityMavenRepository, func(b *EnvBuilder) {
		b.deps.maven = true
	})
}

// WithExternalMavenRepository points the kie-servers at an existing Maven repository.
func (b EnvBuilder) WithExternalMavenRepository(url, username, password string) EnvBuilder {
	return b.with(CapabilityMavenRepository, func(b *EnvBuilder) {
		b.env = b.env.WithAll(map[string]string{
			envvars.MavenRepoURL:      url,
			envvars.MavenRepoUsername: username,
			envvars.MavenRepoPassword: password,
		})
	})
}

// WithDockerRegistry deploys a Docker registry for images built by the tests.
func (b EnvBuilder) WithDockerRegistry() EnvBuilder {
	return b.with(CapabilityDockerRegistry, func(b *EnvBuilder) {
		b.deps.registry = true
	})
}

// WithHostname sets the route hostname held by key, such as BUSINESS_CENTRAL_HOSTNAME_HTTP.
// A hostname can only be set once.
func (b EnvBuilder) WithHostname(key, hostname string) EnvBuilder {
	if b.err == nil && b.capabilities.Has(CapabilityHostnames) && b.env.Has(key) {
		b.err = errors.Wrapf(ErrDuplicateSetting, "hostname %s", key)
		return b
	}
	return b.with(CapabilityHostnames, func(b *EnvBuilder) {
		b.env = b.env.With(key, hostname)
	})
}

// WithKieServerContainerDeployment deploys the given containers when the kie-servers start,
// as a list of <alias>=<groupId>:<artifactId>:<version> separated by |.
func (b EnvBuilder) WithKieServerContainerDeployment(containers string) EnvBuilder {
	return b.WithEnv(envvars.KieServerContainerDeployment, containers)
}

// WithEnv sets a variable passed to every template or to the bundle.
func (b EnvBuilder) WithEnv(key, value string) EnvBuilder {
	if b.err != nil {
		return b
	}
	b.env = b.env.With(key, value)
	return b
}

// Build returns the scenario. It fails without touching the cluster when a call was not supported
// or when the configured profile does not match the scenario.
func (b EnvBuilder) Build(c *cluster.Client, opts ...scenario.Option) (*scenario.Scenario, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := checkProfile(b.cfg, b.entry); err != nil {
		return nil, err
	}
	strategy, err := b.strategy()
	if err != nil {
		return nil, err
	}
	topology := b.entry.topology(b.cfg.Profile)
	topology.Dependencies = b.deps.build(b.cfg, topology)
	return scenario.New(b.entry.ID, c, b.cfg, b.request, topology, strategy, b.env, opts...)
}

func (b EnvBuilder) strategy() (scenario.Strategy, error) {
	if b.flavor == apb.Flavor {
		return apb.New(b.cfg.APBImage, b.entry.APBPlan, b.cfg.Timeouts), nil
	}
	settings := make([]template.Settings, 0, len(b.entry.Templates))
	for _, key := range b.entry.Templates {
		if b.request.EnableEdgeTermination {
			key += edgeTemplateSuffix
		}
		src, err := b.cfg.Template(key)
		if err != nil {
			return nil, err
		}
		settings = append(settings, template.Settings{Source: src})
	}
	return template.New(b.cfg.Templates[config.TemplateImageStreams], settings...), nil
}

func gitSourceEnv(git scenario.GitSettings) map[string]string {
	vars := map[string]string{envvars.SourceRepositoryURL: git.URL}
	if git.Ref != "" {
		vars[envvars.SourceRepositoryRef] = git.Ref
	}
	if git.ContextDir != "" {
		vars[envvars.ContextDir] = git.ContextDir
	}
	return vars
}
