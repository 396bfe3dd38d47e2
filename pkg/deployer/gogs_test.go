// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package deployer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
	"github.com/kiegroup/kie-cloud-tests/pkg/process"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario"
)

func TestGogs_Deploy(t *testing.T) {
	var repositories []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/user/repos", r.URL.Path)
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		repositories = append(repositories, body["name"].(string))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()
	_, p := newTestProject(t, cluster.StaticURLResolver{GogsName: srv.URL})

	g := NewGogs(testConfig(), &scenario.GitSettings{RepositoryName: "rhpam-kjar", SourceDir: "/src/kjar", ContextDir: "kjar"})
	var createdUser string
	g.createUser = func(ctx context.Context, d deployment.Deployment, user, _ string) error {
		instances, err := d.Instances(ctx)
		require.NoError(t, err)
		require.Len(t, instances, 1)
		createdUser = user
		return nil
	}
	var pushedDir, pushedRemote, pushedBranch string
	g.pushSources = func(_ context.Context, dir, remote, branch string) error {
		pushedDir, pushedRemote, pushedBranch = dir, remote, branch
		return nil
	}

	_, env, err := g.Deploy(context.Background(), p, envvars.Context{})
	require.NoError(t, err)
	require.Equal(t, "adminUser", createdUser)
	require.Equal(t, []string{"rhpam-kjar"}, repositories)
	require.Equal(t, "/src/kjar", pushedDir)
	require.Equal(t, "master", pushedBranch)
	host := strings.TrimPrefix(srv.URL, "http://")
	require.Equal(t, "http://adminUser:adminUser1%21@"+host+"/adminUser/rhpam-kjar.git", pushedRemote)
	require.Equal(t, map[string]string{
		envvars.GitServerURL:        srv.URL,
		envvars.GitUser:             "adminUser",
		envvars.GitPassword:         "adminUser1!",
		envvars.SourceRepositoryURL: srv.URL + "/adminUser/rhpam-kjar.git",
		envvars.SourceRepositoryRef: "master",
		envvars.ContextDir:          "kjar",
	}, env.AsMap())
}

func TestGogs_DeployWithoutRepository(t *testing.T) {
	_, p := newTestProject(t, cluster.StaticURLResolver{GogsName: "http://gogs.example.com"})
	g := NewGogs(testConfig(), nil)
	g.createUser = func(context.Context, deployment.Deployment, string, string) error { return nil }

	_, env, err := g.Deploy(context.Background(), p, envvars.Context{})
	require.NoError(t, err)
	require.Equal(t, 3, env.Len())
	require.False(t, env.Has(envvars.SourceRepositoryURL))
}

func TestPushSources(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed")
	}
	ctx := context.Background()
	remote := filepath.Join(t.TempDir(), "remote.git")
	_, err := process.New("git", "init", "--quiet", "--bare", remote).Build().Execute(ctx)
	require.NoError(t, err)
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "pom.xml"), []byte("<project/>"), 0o600))

	require.NoError(t, PushSources(ctx, src, remote, "main"))

	// the sources directory is left untouched
	entries, err := os.ReadDir(src)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	res, err := process.New("git", "--git-dir", remote, "ls-tree", "--name-only", "main").Build().Execute(ctx)
	require.NoError(t, err)
	require.Equal(t, "pom.xml", strings.TrimSpace(res.Stdout))
}
