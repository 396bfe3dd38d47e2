// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package operator submits scenarios as a single KieApp custom resource handled by the product operator.
package operator

import (
	"context"
	"strconv"

	"dario.cat/mergo"
	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	kieappv2 "github.com/kiegroup/kie-cloud-tests/pkg/apis/kieapp/v2"
	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario"
)

const Flavor = "operator"

var log = logf.Log.WithName("operator-strategy")

// Strategy creates the KieApp built for the scenario.
// Values only known at deploy time, such as the SSO URL, are merged from the environment
// without overriding what the builder set explicitly.
type Strategy struct {
	kieApp   *kieappv2.KieApp
	timeouts config.Timeouts
	// submitted is the resource as created in the project, set by Submit.
	submitted *kieappv2.KieApp
}

var _ scenario.Strategy = &Strategy{}

func New(kieApp *kieappv2.KieApp, timeouts config.Timeouts) *Strategy {
	return &Strategy{kieApp: kieApp, timeouts: timeouts}
}

func (s *Strategy) Flavor() string {
	return Flavor
}

// KieApp returns the submitted resource, or nil before Submit.
func (s *Strategy) KieApp() *kieappv2.KieApp {
	return s.submitted
}

func (s *Strategy) Prepare(context.Context, *cluster.Project, envvars.Context) (envvars.Context, error) {
	return envvars.Context{}, nil
}

// Submit creates a copy of the KieApp in the project and returns its application name.
func (s *Strategy) Submit(ctx context.Context, p *cluster.Project, env envvars.Context) (envvars.Context, error) {
	kieApp := s.kieApp.DeepCopy()
	kieApp.Namespace = p.Name()
	if err := applyEnvironment(kieApp, env); err != nil {
		return envvars.Context{}, errors.Wrapf(err, "while merging environment into KieApp %s", kieApp.Name)
	}
	if err := p.Create(ctx, kieApp); err != nil {
		return envvars.Context{}, err
	}
	s.submitted = kieApp
	log.Info("Created KieApp", "namespace", p.Name(), "name", kieApp.Name, "environment", kieApp.Spec.Environment)
	return envvars.New(map[string]string{envvars.ApplicationName: kieApp.ApplicationName()}), nil
}

// applyEnvironment merges the deploy-time values of env into kieApp. Fields already set are kept.
func applyEnvironment(kieApp *kieappv2.KieApp, env envvars.Context) error {
	overlay := kieappv2.KieAppSpec{
		CommonConfig: kieappv2.CommonConfig{
			ApplicationName:        env.Get(envvars.ApplicationName),
			AdminUser:              env.Get(envvars.KieAdminUser),
			AdminPassword:          env.Get(envvars.KieAdminPwd),
			AdminCredentialsSecret: env.Get(envvars.CredentialsSecret),
		},
	}
	if env.Has(envvars.SSOURL) {
		disableSSLValidation, _ := strconv.ParseBool(env.Get(envvars.SSODisableSSLCertValidation))
		overlay.Auth = &kieappv2.KieAppAuthObject{SSO: &kieappv2.SSOAuthConfig{
			URL:                      env.Get(envvars.SSOURL),
			Realm:                    env.Get(envvars.SSORealm),
			AdminUser:                env.Get(envvars.SSOUsername),
			AdminPassword:            env.Get(envvars.SSOPassword),
			DisableSSLCertValidation: disableSSLValidation,
			PrincipalAttribute:       env.Get(envvars.SSOPrincipalAttribute),
		}}
	}
	if env.Has(envvars.AuthLDAPURL) {
		if overlay.Auth == nil {
			overlay.Auth = &kieappv2.KieAppAuthObject{}
		}
		overlay.Auth.LDAP = &kieappv2.LDAPAuthConfig{
			URL:             env.Get(envvars.AuthLDAPURL),
			BindDN:          env.Get(envvars.AuthLDAPBindDN),
			BindCredential:  env.Get(envvars.AuthLDAPBindCredential),
			BaseCtxDN:       env.Get(envvars.AuthLDAPBaseCtxDN),
			BaseFilter:      env.Get(envvars.AuthLDAPBaseFilter),
			RolesCtxDN:      env.Get(envvars.AuthLDAPRolesCtxDN),
			RoleFilter:      env.Get(envvars.AuthLDAPRoleFilter),
			RoleAttributeID: env.Get(envvars.AuthLDAPRoleAttributeID),
		}
	}
	if err := mergo.Merge(&kieApp.Spec, overlay); err != nil {
		return err
	}
	if kieApp.Spec.Auth != nil && kieApp.Spec.Auth.SSO != nil {
		if err := mergeSSOClients(kieApp, env); err != nil {
			return err
		}
	}
	mavenEnv := mavenRepositoryEnv(env)
	for i := range kieApp.Spec.Objects.Servers {
		server := &kieApp.Spec.Objects.Servers[i]
		server.Env = mergeEnvVars(server.Env, mavenEnv)
		if err := mergeServerDependencies(server, env); err != nil {
			return err
		}
	}
	return nil
}

// mergeServerDependencies fills the Git source and the broker connection of a kie-server
// from the side services deployed with the scenario.
func mergeServerDependencies(server *kieappv2.KieServerSet, env envvars.Context) error {
	if server.Build != nil {
		err := mergo.Merge(&server.Build.GitSource, kieappv2.GitSource{
			URI:        env.Get(envvars.SourceRepositoryURL),
			Reference:  env.Get(envvars.SourceRepositoryRef),
			ContextDir: env.Get(envvars.ContextDir),
		})
		if err != nil {
			return err
		}
	}
	if server.Jms != nil && server.Jms.EnableIntegration {
		return mergo.Merge(server.Jms, kieappv2.KieAppJmsObject{
			Username:          env.Get(envvars.AMQUsername),
			Password:          env.Get(envvars.AMQPassword),
			AMQSecretName:     env.Get(envvars.AMQSecret),
			AMQTruststoreName: env.Get(envvars.AMQTruststore),
			AMQKeystoreName:   env.Get(envvars.AMQKeystore),
		})
	}
	return nil
}

// mergeSSOClients fills the SSO client of every component from the client keys written by the SSO deployer.
func mergeSSOClients(kieApp *kieappv2.KieApp, env envvars.Context) error {
	servers := kieApp.Spec.Objects.Servers
	for i := range servers {
		keys := envvars.SingleKieServerSSOClientKeys
		if len(servers) > 1 {
			keys = envvars.KieServerSSOClientKeys(i + 1)
		}
		if err := mergeSSOClient(&servers[i].SSOClient, keys, env); err != nil {
			return err
		}
	}
	if console := kieApp.Spec.Objects.Console; console != nil {
		if err := mergeSSOClient(&console.SSOClient, envvars.WorkbenchSSOClientKeys, env); err != nil {
			return err
		}
	}
	if router := kieApp.Spec.Objects.SmartRouter; router != nil {
		if err := mergeSSOClient(&router.SSOClient, envvars.SmartRouterSSOClientKeys, env); err != nil {
			return err
		}
	}
	return nil
}

func mergeSSOClient(dst **kieappv2.SSOAuthClient, keys envvars.SSOClientKeys, env envvars.Context) error {
	if !env.Has(keys.ClientKey) {
		return nil
	}
	if *dst == nil {
		*dst = &kieappv2.SSOAuthClient{}
	}
	return mergo.Merge(*dst, kieappv2.SSOAuthClient{
		Name:   env.Get(keys.ClientKey),
		Secret: env.Get(keys.SecretKey),
	})
}

func mavenRepositoryEnv(env envvars.Context) []corev1.EnvVar {
	var vars []corev1.EnvVar
	for _, key := range []string{envvars.MavenRepoURL, envvars.MavenRepoID, envvars.MavenRepoUsername, envvars.MavenRepoPassword} {
		if value, ok := env.Lookup(key); ok {
			vars = append(vars, corev1.EnvVar{Name: key, Value: value})
		}
	}
	return vars
}

// mergeEnvVars appends the variables of extra not already defined in vars.
func mergeEnvVars(vars []corev1.EnvVar, extra []corev1.EnvVar) []corev1.EnvVar {
	defined := make(map[string]bool, len(vars))
	for _, v := range vars {
		defined[v.Name] = true
	}
	for _, v := range extra {
		if !defined[v.Name] {
			vars = append(vars, v)
		}
	}
	return vars
}

// AwaitReady waits for the operator to create each workload, then for it to be ready, one after the other.
func (s *Strategy) AwaitReady(ctx context.Context, deployments []deployment.Deployment) error {
	for _, d := range deployments {
		if err := deployment.WaitForExistence(ctx, d, s.timeouts); err != nil {
			return err
		}
		if err := d.WaitForScale(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Teardown deletes the KieApp so that the operator stops reconciling before the project goes away.
func (s *Strategy) Teardown(ctx context.Context, p *cluster.Project) error {
	if s.submitted == nil {
		return nil
	}
	err := p.Cluster().Client.Delete(ctx, s.submitted)
	if err != nil && !apierrors.IsNotFound(err) {
		return errors.Wrapf(err, "while deleting KieApp %s", s.submitted.Name)
	}
	return nil
}
