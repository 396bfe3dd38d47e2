// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package deployer

import (
	"context"

	"github.com/google/uuid"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
	"github.com/kiegroup/kie-cloud-tests/pkg/utils/retry"
)

const (
	SSOName               = "sso"
	DefaultSSORealm       = "kie-realm"
	ssoPrincipalAttribute = "preferred_username"
)

// Realm roles granted to the product users.
var (
	ssoRoles          = []string{"admin", "analyst", "kie-server", "kiemgmt", "rest-all", "user"}
	ssoAdminRoles     = []string{"admin", "kie-server", "rest-all"}
	ssoKieServerRoles = []string{"kie-server", "rest-all"}
)

// SSO deploys a single sign-on server, creates a realm with the product users and
// registers one confidential client per component authenticating through it.
type SSO struct {
	image       string
	realm       string
	credentials config.Credentials
	timeouts    config.Timeouts
	clients     []envvars.SSOClientKeys
	// newSecret generates client secrets.
	newSecret func() string
}

func NewSSO(cfg config.Config, clients []envvars.SSOClientKeys) *SSO {
	return &SSO{
		image:       cfg.Image(config.ImageSSO),
		realm:       DefaultSSORealm,
		credentials: cfg.Credentials,
		timeouts:    cfg.Timeouts,
		clients:     clients,
		newSecret:   uuid.NewString,
	}
}

func (s *SSO) Name() string {
	return SSOName
}

// Deploy returns SSO_URL, SSO_REALM and the id and secret of every client.
func (s *SSO) Deploy(ctx context.Context, p *cluster.Project, env envvars.Context) (deployment.Deployment, envvars.Context, error) {
	w, err := deployManifest(ctx, p, "sso.yaml", manifestParams{
		Name:  SSOName,
		Image: s.image,
		Values: map[string]string{
			"adminUser":     s.credentials.SSOAdminUser,
			"adminPassword": s.credentials.SSOAdminPassword,
		},
	}, deployment.KindSso, s.timeouts)
	if err != nil {
		return nil, envvars.Context{}, err
	}
	baseURL, err := w.SecureURL(ctx)
	if err != nil {
		return nil, envvars.Context{}, err
	}
	authURL := baseURL + "/auth"

	kc := newKeycloak(p.Cluster().HTTP, authURL, s.credentials.SSOAdminUser, s.credentials.SSOAdminPassword)
	// the admin API is served some time after the readiness probe succeeds
	if err := retry.UntilSuccess(ctx, kc.login, s.timeouts.SSOAdmin, s.timeouts.PollInterval); err != nil {
		return nil, envvars.Context{}, err
	}
	additions, err := s.configureRealm(ctx, kc, env)
	if err != nil {
		return nil, envvars.Context{}, err
	}
	log.Info("SSO configured", "namespace", p.Name(), "url", authURL, "realm", s.realm, "clients", len(s.clients))
	return w, additions.WithAll(map[string]string{
		envvars.SSOURL:                      authURL,
		envvars.SSORealm:                    s.realm,
		envvars.SSODisableSSLCertValidation: "true",
		envvars.SSOPrincipalAttribute:       ssoPrincipalAttribute,
	}), nil
}

func (s *SSO) configureRealm(ctx context.Context, kc *keycloak, env envvars.Context) (envvars.Context, error) {
	if err := kc.createRealm(ctx, s.realm); err != nil {
		return envvars.Context{}, err
	}
	for _, role := range ssoRoles {
		if err := kc.createRole(ctx, s.realm, role); err != nil {
			return envvars.Context{}, err
		}
	}

	adminUser, adminPassword := valueOr(env, envvars.KieAdminUser, s.credentials.AdminUser), valueOr(env, envvars.KieAdminPwd, s.credentials.AdminPassword)
	users := []struct {
		name, password string
		roles          []string
	}{
		{adminUser, adminPassword, ssoAdminRoles},
		{valueOr(env, envvars.KieServerUser, s.credentials.KieServerUser), valueOr(env, envvars.KieServerPwd, s.credentials.KieServerPassword), ssoKieServerRoles},
		{valueOr(env, envvars.KieServerControllerUser, s.credentials.ControllerUser), valueOr(env, envvars.KieServerControllerPwd, s.credentials.ControllerPassword), ssoKieServerRoles},
	}
	for _, u := range users {
		if err := kc.createUser(ctx, s.realm, u.name, u.password, u.roles); err != nil {
			return envvars.Context{}, err
		}
	}

	additions := envvars.New(map[string]string{
		envvars.SSOUsername: adminUser,
		envvars.SSOPassword: adminPassword,
	})
	for _, client := range s.clients {
		secret := s.newSecret()
		if err := kc.createClient(ctx, s.realm, client.ClientName, secret); err != nil {
			return envvars.Context{}, err
		}
		additions = additions.With(client.ClientKey, client.ClientName).With(client.SecretKey, secret)
	}
	return additions, nil
}

// valueOr returns the value of key in env, or def when unset.
func valueOr(env envvars.Context, key, def string) string {
	if value, ok := env.Lookup(key); ok {
		return value
	}
	return def
}
