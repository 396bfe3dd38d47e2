// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package deploy

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"

	"github.com/kiegroup/kie-cloud-tests/pkg/builder"
	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/cluster/clustertest"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario/operator"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario/template"
)

const immutableTemplate = `kind: Template
apiVersion: template.openshift.io/v1
metadata:
  name: immutable-kieserver
parameters:
- name: APPLICATION_NAME
  required: true
objects:
- apiVersion: apps.openshift.io/v1
  kind: DeploymentConfig
  metadata:
    name: ${APPLICATION_NAME}-kieserver
  spec:
    replicas: 1
    selector:
      deploymentconfig: ${APPLICATION_NAME}-kieserver
    template:
      metadata:
        labels:
          deploymentconfig: ${APPLICATION_NAME}-kieserver
`

func testConfig(t *testing.T) config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "immutable-kieserver.yaml")
	require.NoError(t, os.WriteFile(path, []byte(immutableTemplate), 0o600))

	cfg := config.Default()
	cfg.LogsDir = t.TempDir()
	cfg.Timeouts = config.Timeouts{
		DeploymentReady:    time.Second,
		ScaleDown:          time.Second,
		PollInterval:       5 * time.Millisecond,
		ServerRegistration: time.Second,
		SSOAdmin:           time.Second,
		APBCompletion:      time.Second,
		ProjectDeletion:    time.Second,
	}
	cfg.Templates = map[string]string{builder.ImmutableKieServer: path}
	return cfg
}

func newCluster() *cluster.Client {
	c := clustertest.New(clustertest.Options{URLs: cluster.StaticURLResolver{"myapp-kieserver": "http://kieserver.test"}})
	c.HTTP.RetryMax = 0
	return c
}

func fixedName(string) string { return "kie-cli" }

func projects(t *testing.T, c *cluster.Client) []corev1.Namespace {
	t.Helper()
	list, err := c.Projects(context.Background())
	require.NoError(t, err)
	return list
}

func TestCommand(t *testing.T) {
	cmd := Command()
	assert.Equal(t, "deploy", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	flags := cmd.Flags()
	for _, name := range []string{"scenario", "flavor", "keep", "sso", "ldap", "git-url", "git-repository-name"} {
		assert.NotNil(t, flags.Lookup(name), name)
	}
	assert.Equal(t, template.Flavor, flags.Lookup("flavor").DefValue)
}

func TestOptions_Features(t *testing.T) {
	require.Nil(t, Options{SSO: true}.Features().Git)
	require.Equal(t, builder.Features{SSO: true, LDAP: true}, Options{SSO: true, LDAP: true, Keep: true}.Features())

	f := Options{GitURL: "https://example.com/repo.git", GitRef: "main", GitContextDir: "hello"}.Features()
	require.Equal(t, &scenario.GitSettings{URL: "https://example.com/repo.git", Ref: "main", ContextDir: "hello"}, f.Git)
}

func TestRun_DeployThenUndeploy(t *testing.T) {
	c := newCluster()
	var out bytes.Buffer
	err := Run(context.Background(), testConfig(t), c, Options{
		Scenario: builder.ImmutableKieServer,
		Flavor:   template.Flavor,
	}, &out, scenario.WithNamer(fixedName))
	require.NoError(t, err)

	require.Contains(t, out.String(), "Scenario immutable-kieserver deployed in project kie-cli")
	require.Contains(t, out.String(), "myapp-kieserver")
	require.Empty(t, projects(t, c))
}

func TestRun_Keep(t *testing.T) {
	c := newCluster()
	err := Run(context.Background(), testConfig(t), c, Options{
		Scenario: builder.ImmutableKieServer,
		Flavor:   template.Flavor,
		Keep:     true,
	}, &bytes.Buffer{}, scenario.WithNamer(fixedName))
	require.NoError(t, err)

	list := projects(t, c)
	require.Len(t, list, 1)
	require.Equal(t, "kie-cli", list[0].Name)
}

func TestRun_InvalidRequests(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{
			name:    "unknown scenario",
			opts:    Options{Scenario: "clustered-workbench", Flavor: template.Flavor},
			wantErr: "unknown scenario clustered-workbench",
		},
		{
			name:    "unknown flavor",
			opts:    Options{Scenario: builder.ImmutableKieServer, Flavor: "helm"},
			wantErr: "unknown flavor helm, expected one of [template apb operator]",
		},
		{
			name:    "unsupported capability",
			opts:    Options{Scenario: builder.ImmutableKieServer, Flavor: operator.Flavor, Prometheus: true},
			wantErr: "prometheus of scenario immutable-kieserver with operator flavor: " + builder.NotSupportedYet,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCluster()
			err := Run(context.Background(), testConfig(t), c, tt.opts, &bytes.Buffer{})
			require.EqualError(t, err, tt.wantErr)
			require.Empty(t, projects(t, c))
		})
	}
}
