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
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario/operator"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario/template"
)

// DefaultApplicationName prefixes the product workloads.
const DefaultApplicationName = "myapp"

// Builder is what the flavors have in common once configured.
type Builder interface {
	// Supports returns true if the capability can be requested from the builder.
	Supports(c Capability) bool
	Capabilities() CapabilitySet
	// Err returns the first error recorded while configuring the builder.
	Err() error
	// Build checks the configuration and returns the scenario. Nothing is created in the cluster.
	Build(c *cluster.Client, opts ...scenario.Option) (*scenario.Scenario, error)
}

var (
	_ Builder = EnvBuilder{}
	_ Builder = OperatorBuilder{}
)

// Features are optional features requested for a catalog scenario.
type Features struct {
	SSO                    bool
	LDAP                   bool
	Prometheus             bool
	SecretAdminCredentials bool
	EdgeTermination        bool
	MavenRepository        bool
	DockerRegistry         bool
	ProcessMigration       bool
	Upgrade                bool
	Git                    *scenario.GitSettings
}

// ForScenario returns the builder of the catalog scenario id for the given flavor, with features applied.
// The returned error is the one recorded by the builder, if any.
func ForScenario(cfg config.Config, id, flavor string, f Features) (Builder, error) {
	entry, ok := Lookup(id)
	if !ok {
		return nil, errors.Errorf("unknown scenario %s", id)
	}
	switch flavor {
	case template.Flavor, apb.Flavor:
		b := NewEnvBuilder(cfg, entry, flavor)
		b = when(f.SSO, b, EnvBuilder.WithSSO)
		b = when(f.LDAP, b, EnvBuilder.WithLDAP)
		b = when(f.Prometheus, b, EnvBuilder.WithPrometheus)
		b = when(f.SecretAdminCredentials, b, EnvBuilder.WithSecretAdminCredentials)
		b = when(f.EdgeTermination, b, EnvBuilder.WithEdgeTermination)
		b = when(f.MavenRepository, b, EnvBuilder.WithMavenRepository)
		b = when(f.DockerRegistry, b, EnvBuilder.WithDockerRegistry)
		b = when(f.ProcessMigration, b, EnvBuilder.WithProcessMigration)
		b = when(f.Upgrade, b, EnvBuilder.WithUpgrade)
		if f.Git != nil {
			b = b.WithGitSource(*f.Git)
		}
		return b, b.Err()
	case operator.Flavor:
		b := NewOperatorBuilder(cfg, entry)
		b = when(f.SSO, b, OperatorBuilder.WithSSO)
		b = when(f.LDAP, b, OperatorBuilder.WithLDAP)
		b = when(f.Prometheus, b, OperatorBuilder.WithPrometheus)
		b = when(f.SecretAdminCredentials, b, OperatorBuilder.WithSecretAdminCredentials)
		b = when(f.EdgeTermination, b, OperatorBuilder.WithEdgeTermination)
		b = when(f.MavenRepository, b, OperatorBuilder.WithMavenRepository)
		b = when(f.DockerRegistry, b, OperatorBuilder.WithDockerRegistry)
		b = when(f.ProcessMigration, b, OperatorBuilder.WithProcessMigration)
		b = when(f.Upgrade, b, OperatorBuilder.WithUpgrade)
		if f.Git != nil {
			b = b.WithGitSource(*f.Git)
		}
		return b, b.Err()
	default:
		return nil, errors.Errorf("unknown flavor %s, expected one of %v", flavor, Flavors())
	}
}

func when[B any](enabled bool, b B, with func(B) B) B {
	if !enabled {
		return b
	}
	return with(b)
}

// defaultEnvironment holds the credentials of every product component.
func defaultEnvironment(cfg config.Config) envvars.Context {
	creds := cfg.Credentials
	return envvars.New(map[string]string{
		envvars.ApplicationName:              DefaultApplicationName,
		envvars.KieAdminUser:                 creds.AdminUser,
		envvars.KieAdminPwd:                  creds.AdminPassword,
		envvars.KieServerUser:                creds.KieServerUser,
		envvars.KieServerPwd:                 creds.KieServerPassword,
		envvars.KieServerControllerUser:      creds.ControllerUser,
		envvars.KieServerControllerPwd:       creds.ControllerPassword,
		envvars.KieMavenUser:                 creds.MavenUser,
		envvars.KieMavenPwd:                  creds.MavenPassword,
		envvars.BusinessCentralMavenUsername: creds.MavenUser,
		envvars.BusinessCentralMavenPassword: creds.MavenPassword,
	})
}

// checkProfile fails before any cluster mutation when the configured profile is not supported by the scenario.
func checkProfile(cfg config.Config, entry Entry) error {
	if entry.SupportsProfile(cfg.Profile) {
		return nil
	}
	return errors.Wrapf(ErrProfileMismatch, "scenario %s supports %v, not %s", entry.ID, entry.Profiles, cfg.Profile)
}
