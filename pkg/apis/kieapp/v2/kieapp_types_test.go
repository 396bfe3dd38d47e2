// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package v2

import (
	"testing"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"
)

func TestKieApp_DeploymentNames(t *testing.T) {
	app := KieApp{
		ObjectMeta: metav1.ObjectMeta{Name: "myapp"},
		Spec: KieAppSpec{
			Environment: RhpamProduction,
			Objects: KieAppObjects{
				Servers: []KieServerSet{{}, {Name: "custom"}, {}},
			},
		},
	}
	require.Equal(t, "myapp-rhpamcentr", app.ConsoleDeploymentName())
	require.Equal(t, "myapp-kieserver", app.ServerDeploymentName(0))
	require.Equal(t, "custom", app.ServerDeploymentName(1))
	require.Equal(t, "myapp-kieserver-3", app.ServerDeploymentName(2))
	require.Equal(t, "myapp-smartrouter", app.SmartRouterDeploymentName())

	app.Spec.Environment = RhdmTrial
	app.Spec.CommonConfig.ApplicationName = "rules"
	require.Equal(t, "rules-rhdmcentr", app.ConsoleDeploymentName())
	require.Equal(t, "rules-kieserver", app.ServerDeploymentName(0))
}

func TestKieApp_DeepCopyIsIndependent(t *testing.T) {
	app := &KieApp{
		Spec: KieAppSpec{
			Objects: KieAppObjects{
				Console: &ConsoleObject{KieAppObject: KieAppObject{Env: []corev1.EnvVar{{Name: "A", Value: "1"}}}},
				Servers: []KieServerSet{{
					KieAppObject: KieAppObject{Replicas: ptr.To[int32](1), SSOClient: &SSOAuthClient{Name: "kie-server-1"}},
					Database:     &DatabaseObject{Type: DatabaseMySQL},
				}},
			},
			Auth: &KieAppAuthObject{SSO: &SSOAuthConfig{URL: "https://sso", Realm: "demo"}},
		},
	}
	cp := app.DeepCopy()
	require.Equal(t, app, cp)

	cp.Spec.Objects.Console.Env[0].Value = "2"
	*cp.Spec.Objects.Servers[0].Replicas = 3
	cp.Spec.Objects.Servers[0].SSOClient.Name = "other"
	cp.Spec.Objects.Servers[0].Database.Type = DatabasePostgreSQL
	cp.Spec.Auth.SSO.Realm = "other"

	require.Equal(t, "1", app.Spec.Objects.Console.Env[0].Value)
	require.Equal(t, int32(1), *app.Spec.Objects.Servers[0].Replicas)
	require.Equal(t, "kie-server-1", app.Spec.Objects.Servers[0].SSOClient.Name)
	require.Equal(t, DatabaseMySQL, app.Spec.Objects.Servers[0].Database.Type)
	require.Equal(t, "demo", app.Spec.Auth.SSO.Realm)
}
