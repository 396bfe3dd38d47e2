// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package deployer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"

	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
)

func TestBaseDN(t *testing.T) {
	require.Equal(t, "dc=example,dc=com", baseDN("example.com"))
	require.Equal(t, "dc=local", baseDN("local"))
}

func TestSeed(t *testing.T) {
	ldif, err := seed("dc=example,dc=com", []ldapUser{
		{Name: "alice", Password: "a", Roles: []string{"admin", "rest-all"}},
		{Name: "bob", Password: "b", Roles: []string{"rest-all"}},
	})
	require.NoError(t, err)
	require.Contains(t, ldif, "dn: uid=alice,ou=people,dc=example,dc=com\nobjectClass: inetOrgPerson\nuid: alice\ncn: alice\nsn: alice\nuserPassword: a\n")
	require.Contains(t, ldif, "dn: cn=admin,ou=roles,dc=example,dc=com\nobjectClass: groupOfNames\ncn: admin\nmember: uid=alice,ou=people,dc=example,dc=com\n")
	require.Contains(t, ldif, "cn: rest-all\nmember: uid=alice,ou=people,dc=example,dc=com\nmember: uid=bob,ou=people,dc=example,dc=com\n")
}

func TestLDAP_Deploy(t *testing.T) {
	c, p := newTestProject(t, nil)
	env := envvars.New(map[string]string{envvars.KieAdminUser: "scenarioAdmin"})

	d, added, err := NewLDAP(testConfig()).Deploy(context.Background(), p, env)
	require.NoError(t, err)
	require.Equal(t, LDAPName, d.Name())
	require.Equal(t, "ldap://ldap.kie-deps.svc:389", added.Get(envvars.AuthLDAPURL))
	require.Equal(t, "cn=admin,dc=example,dc=com", added.Get(envvars.AuthLDAPBindDN))
	require.Equal(t, "ou=roles,dc=example,dc=com", added.Get(envvars.AuthLDAPRolesCtxDN))
	require.Equal(t, 8, added.Len())

	var seedConfig corev1.ConfigMap
	require.NoError(t, c.Client.Get(context.Background(), types.NamespacedName{Namespace: "kie-deps", Name: "ldap-seed"}, &seedConfig))
	require.Contains(t, seedConfig.Data["users.ldif"], "uid: scenarioAdmin\n")
	require.Contains(t, seedConfig.Data["users.ldif"], "uid: executionUser\n")
	require.Equal(t, "example.com", containerEnv(getDeployment(t, c, LDAPName))["LDAP_DOMAIN"])
}
