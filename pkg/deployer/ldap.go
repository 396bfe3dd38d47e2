// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package deployer

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
)

const (
	LDAPName         = "ldap"
	LDAPDomain       = "example.com"
	ldapOrganisation = "KIE"
	ldapPort         = 389
)

var ldifTemplate = template.Must(template.New("users.ldif").Parse(`dn: ou=people,{{ .BaseDN }}
objectClass: organizationalUnit
ou: people

dn: ou=roles,{{ .BaseDN }}
objectClass: organizationalUnit
ou: roles
{{ range .Users }}
dn: uid={{ .Name }},ou=people,{{ $.BaseDN }}
objectClass: inetOrgPerson
uid: {{ .Name }}
cn: {{ .Name }}
sn: {{ .Name }}
userPassword: {{ .Password }}
{{ end }}{{ range $role, $members := .Roles }}
dn: cn={{ $role }},ou=roles,{{ $.BaseDN }}
objectClass: groupOfNames
cn: {{ $role }}
{{- range $members }}
member: uid={{ . }},ou=people,{{ $.BaseDN }}
{{- end }}
{{ end }}`))

type ldapUser struct {
	Name     string
	Password string
	Roles    []string
}

// LDAP deploys an OpenLDAP server seeded with the product users, one group per role.
type LDAP struct {
	image         string
	adminPassword string
	credentials   config.Credentials
	timeouts      config.Timeouts
}

func NewLDAP(cfg config.Config) *LDAP {
	return &LDAP{
		image:         cfg.Image(config.ImageLDAP),
		adminPassword: cfg.Credentials.AdminPassword,
		credentials:   cfg.Credentials,
		timeouts:      cfg.Timeouts,
	}
}

func (l *LDAP) Name() string {
	return LDAPName
}

// baseDN returns the base DN of a domain: dc=example,dc=com for example.com.
func baseDN(domain string) string {
	parts := strings.Split(domain, ".")
	for i, part := range parts {
		parts[i] = "dc=" + part
	}
	return strings.Join(parts, ",")
}

func (l *LDAP) users(env envvars.Context) []ldapUser {
	return []ldapUser{
		{valueOr(env, envvars.KieAdminUser, l.credentials.AdminUser), valueOr(env, envvars.KieAdminPwd, l.credentials.AdminPassword), ssoAdminRoles},
		{valueOr(env, envvars.KieServerUser, l.credentials.KieServerUser), valueOr(env, envvars.KieServerPwd, l.credentials.KieServerPassword), ssoKieServerRoles},
		{valueOr(env, envvars.KieServerControllerUser, l.credentials.ControllerUser), valueOr(env, envvars.KieServerControllerPwd, l.credentials.ControllerPassword), ssoKieServerRoles},
	}
}

// seed renders the LDIF creating the users and their role groups.
func seed(dn string, users []ldapUser) (string, error) {
	roles := map[string][]string{}
	for _, u := range users {
		for _, role := range u.Roles {
			roles[role] = append(roles[role], u.Name)
		}
	}
	for _, members := range roles {
		sort.Strings(members)
	}
	var buf bytes.Buffer
	err := ldifTemplate.Execute(&buf, map[string]interface{}{"BaseDN": dn, "Users": users, "Roles": roles})
	return buf.String(), err
}

// Deploy returns the AUTH_LDAP_* variables.
func (l *LDAP) Deploy(ctx context.Context, p *cluster.Project, env envvars.Context) (deployment.Deployment, envvars.Context, error) {
	dn := baseDN(LDAPDomain)
	ldif, err := seed(dn, l.users(env))
	if err != nil {
		return nil, envvars.Context{}, err
	}
	w, err := deployManifest(ctx, p, "ldap.yaml", manifestParams{
		Name:  LDAPName,
		Image: l.image,
		Values: map[string]string{
			"organisation":  ldapOrganisation,
			"domain":        LDAPDomain,
			"adminPassword": l.adminPassword,
			"ldif":          ldif,
		},
	}, deployment.KindLdap, l.timeouts)
	if err != nil {
		return nil, envvars.Context{}, err
	}
	return w, envvars.New(map[string]string{
		envvars.AuthLDAPURL:             fmt.Sprintf("ldap://%s.%s.svc:%d", LDAPName, p.Name(), ldapPort),
		envvars.AuthLDAPBindDN:          "cn=admin," + dn,
		envvars.AuthLDAPBindCredential:  l.adminPassword,
		envvars.AuthLDAPBaseCtxDN:       "ou=people," + dn,
		envvars.AuthLDAPBaseFilter:      "uid",
		envvars.AuthLDAPRolesCtxDN:      "ou=roles," + dn,
		envvars.AuthLDAPRoleFilter:      "(member={1})",
		envvars.AuthLDAPRoleAttributeID: "cn",
	}), nil
}
