// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package operator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/ptr"

	kieappv2 "github.com/kiegroup/kie-cloud-tests/pkg/apis/kieapp/v2"
	"github.com/kiegroup/kie-cloud-tests/pkg/cluster/clustertest"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
)

var testTimeouts = config.Timeouts{
	DeploymentReady: 2 * time.Second,
	PollInterval:    5 * time.Millisecond,
}

func twoServersKieApp() *kieappv2.KieApp {
	return &kieappv2.KieApp{
		ObjectMeta: metav1.ObjectMeta{Name: "myapp"},
		Spec: kieappv2.KieAppSpec{
			Environment: kieappv2.RhpamProduction,
			Objects: kieappv2.KieAppObjects{
				Console: &kieappv2.ConsoleObject{},
				Servers: []kieappv2.KieServerSet{
					{Deployments: ptr.To(1)},
					{
						Deployments: ptr.To(1),
						KieAppObject: kieappv2.KieAppObject{
							SSOClient: &kieappv2.SSOAuthClient{Name: "custom-client"},
							Env:       []corev1.EnvVar{{Name: envvars.MavenRepoURL, Value: "http://custom"}},
						},
					},
				},
			},
			CommonConfig: kieappv2.CommonConfig{AdminUser: "builder-admin"},
		},
	}
}

func ssoEnvironment() envvars.Context {
	first, second := envvars.KieServerSSOClientKeys(1), envvars.KieServerSSOClientKeys(2)
	return envvars.New(map[string]string{
		envvars.KieAdminUser:                     "env-admin",
		envvars.KieAdminPwd:                      "secret",
		envvars.SSOURL:                           "https://sso.kie.svc:8443/auth",
		envvars.SSORealm:                         "kie-realm",
		envvars.SSODisableSSLCertValidation:      "true",
		first.ClientKey:                          "kie-server-1-client",
		first.SecretKey:                          "s1",
		second.ClientKey:                         "kie-server-2-client",
		second.SecretKey:                         "s2",
		envvars.WorkbenchSSOClientKeys.ClientKey: "business-central-client",
		envvars.WorkbenchSSOClientKeys.SecretKey: "wb",
		envvars.MavenRepoURL:                     "http://nexus.kie.svc:8081/repository/maven",
		envvars.MavenRepoUsername:                "nexus",
	})
}

func TestApplyEnvironment(t *testing.T) {
	kieApp := twoServersKieApp()
	require.NoError(t, applyEnvironment(kieApp, ssoEnvironment()))

	// explicit builder values win over the environment
	require.Equal(t, "builder-admin", kieApp.Spec.CommonConfig.AdminUser)
	require.Equal(t, "secret", kieApp.Spec.CommonConfig.AdminPassword)

	require.Equal(t, &kieappv2.SSOAuthConfig{
		URL:                      "https://sso.kie.svc:8443/auth",
		Realm:                    "kie-realm",
		DisableSSLCertValidation: true,
	}, kieApp.Spec.Auth.SSO)

	servers := kieApp.Spec.Objects.Servers
	require.Equal(t, &kieappv2.SSOAuthClient{Name: "kie-server-1-client", Secret: "s1"}, servers[0].SSOClient)
	require.Equal(t, &kieappv2.SSOAuthClient{Name: "custom-client", Secret: "s2"}, servers[1].SSOClient)
	require.Equal(t, &kieappv2.SSOAuthClient{Name: "business-central-client", Secret: "wb"}, kieApp.Spec.Objects.Console.SSOClient)
	require.Nil(t, kieApp.Spec.Objects.SmartRouter)

	require.Equal(t, []corev1.EnvVar{
		{Name: envvars.MavenRepoURL, Value: "http://nexus.kie.svc:8081/repository/maven"},
		{Name: envvars.MavenRepoUsername, Value: "nexus"},
	}, servers[0].Env)
	require.Equal(t, []corev1.EnvVar{
		{Name: envvars.MavenRepoURL, Value: "http://custom"},
		{Name: envvars.MavenRepoUsername, Value: "nexus"},
	}, servers[1].Env)
}

func TestApplyEnvironment_WithoutSSO(t *testing.T) {
	kieApp := twoServersKieApp()
	require.NoError(t, applyEnvironment(kieApp, envvars.New(map[string]string{envvars.ApplicationName: "renamed"})))
	require.Nil(t, kieApp.Spec.Auth)
	require.Nil(t, kieApp.Spec.Objects.Servers[0].SSOClient)
	require.Equal(t, "renamed", kieApp.ApplicationName())
}

func TestStrategy_Lifecycle(t *testing.T) {
	ctx := context.Background()
	c := clustertest.NewClient()
	p, err := c.CreateProject(ctx, "kie-operator", nil)
	require.NoError(t, err)

	original := twoServersKieApp()
	s := New(original, testTimeouts)
	require.Equal(t, Flavor, s.Flavor())
	require.Nil(t, s.KieApp())

	added, err := s.Submit(ctx, p, ssoEnvironment())
	require.NoError(t, err)
	require.Equal(t, "myapp", added.Get(envvars.ApplicationName))
	// the builder output is left untouched
	require.Nil(t, original.Spec.Auth)
	require.Empty(t, original.Namespace)

	var created kieappv2.KieApp
	require.NoError(t, c.Client.Get(ctx, types.NamespacedName{Namespace: "kie-operator", Name: "myapp"}, &created))
	require.Equal(t, "kie-realm", created.Spec.Auth.SSO.Realm)

	// the operator creates the workload some time after the KieApp
	name := created.ServerDeploymentName(0)
	go func() {
		time.Sleep(50 * time.Millisecond)
		labels := map[string]string{"deployment": name}
		_ = c.Client.Create(ctx, &appsv1.Deployment{
			ObjectMeta: metav1.ObjectMeta{Namespace: "kie-operator", Name: name},
			Spec: appsv1.DeploymentSpec{
				Replicas: ptr.To(int32(1)),
				Selector: &metav1.LabelSelector{MatchLabels: labels},
				Template: corev1.PodTemplateSpec{
					ObjectMeta: metav1.ObjectMeta{Labels: labels},
					Spec:       corev1.PodSpec{Containers: []corev1.Container{{Name: "kieserver"}}},
				},
			},
		})
	}()
	d := deployment.New(p, deployment.Spec{Name: name, Kind: deployment.KindKieServer}, testTimeouts)
	require.NoError(t, s.AwaitReady(ctx, []deployment.Deployment{d}))

	require.NoError(t, s.Teardown(ctx, p))
	err = c.Client.Get(ctx, types.NamespacedName{Namespace: "kie-operator", Name: "myapp"}, &kieappv2.KieApp{})
	require.True(t, apierrors.IsNotFound(err))
	// deleting twice is fine
	require.NoError(t, s.Teardown(ctx, p))
}

func TestApplyEnvironment_ServerDependencies(t *testing.T) {
	kieApp := &kieappv2.KieApp{
		ObjectMeta: metav1.ObjectMeta{Name: "immutable"},
		Spec: kieappv2.KieAppSpec{
			Environment: kieappv2.RhpamProductionImmutable,
			Objects: kieappv2.KieAppObjects{Servers: []kieappv2.KieServerSet{{
				Build: &kieappv2.KieAppBuildObject{GitSource: kieappv2.GitSource{ContextDir: "explicit"}},
				Jms:   &kieappv2.KieAppJmsObject{EnableIntegration: true},
			}}},
		},
	}
	env := envvars.New(map[string]string{
		envvars.SourceRepositoryURL: "http://gogs/adminUser/kjar.git",
		envvars.SourceRepositoryRef: "master",
		envvars.ContextDir:          "from-env",
		envvars.AMQUsername:         "amqUser",
		envvars.AMQPassword:         "amqUser1!",
		envvars.AuthLDAPURL:         "ldap://ldap.kie.svc:389",
		envvars.AuthLDAPBaseFilter:  "uid",
	})
	require.NoError(t, applyEnvironment(kieApp, env))

	server := kieApp.Spec.Objects.Servers[0]
	require.Equal(t, kieappv2.GitSource{URI: "http://gogs/adminUser/kjar.git", Reference: "master", ContextDir: "explicit"}, server.Build.GitSource)
	require.Equal(t, "amqUser", server.Jms.Username)
	require.Equal(t, "amqUser1!", server.Jms.Password)
	require.Nil(t, kieApp.Spec.Auth.SSO)
	require.Equal(t, "ldap://ldap.kie.svc:389", kieApp.Spec.Auth.LDAP.URL)
	require.Equal(t, "uid", kieApp.Spec.Auth.LDAP.BaseFilter)
}
