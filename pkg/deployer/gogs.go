// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package deployer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
	"github.com/kiegroup/kie-cloud-tests/pkg/kieclient"
	"github.com/kiegroup/kie-cloud-tests/pkg/process"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario"
)

const (
	GogsName         = "gogs"
	gogsPort         = 3000
	gogsBinary       = "/app/gogs/gogs"
	gogsConfig       = "/etc/gogs/conf/app.ini"
	defaultGitBranch = "master"
)

// Gogs deploys a Git server. When the scenario builds from sources, a repository is created
// and the local sources are pushed to it, so that builds in the cluster can clone them.
type Gogs struct {
	image    string
	user     string
	password string
	timeouts config.Timeouts
	git      *scenario.GitSettings

	// replaced in unit tests
	createUser  func(ctx context.Context, d deployment.Deployment, user, password string) error
	pushSources func(ctx context.Context, dir, remote, branch string) error
}

func NewGogs(cfg config.Config, git *scenario.GitSettings) *Gogs {
	return &Gogs{
		image:       cfg.Image(config.ImageGogs),
		user:        cfg.Credentials.AdminUser,
		password:    cfg.Credentials.AdminPassword,
		timeouts:    cfg.Timeouts,
		git:         git,
		createUser:  createGogsUser,
		pushSources: PushSources,
	}
}

func (g *Gogs) Name() string {
	return GogsName
}

// Deploy returns GIT_SERVER_URL and the Git credentials, plus the source repository variables
// when a repository is requested.
func (g *Gogs) Deploy(ctx context.Context, p *cluster.Project, _ envvars.Context) (deployment.Deployment, envvars.Context, error) {
	w, err := deployManifest(ctx, p, "gogs.yaml", manifestParams{
		Name:   GogsName,
		Image:  g.image,
		Values: map[string]string{"rootURL": fmt.Sprintf("http://%s.%s.svc:%d/", GogsName, p.Name(), gogsPort)},
	}, deployment.KindGit, g.timeouts)
	if err != nil {
		return nil, envvars.Context{}, err
	}
	serverURL, err := w.URL(ctx)
	if err != nil {
		return nil, envvars.Context{}, err
	}
	if err := g.createUser(ctx, w, g.user, g.password); err != nil {
		return nil, envvars.Context{}, errors.Wrapf(err, "while creating Git user %s", g.user)
	}
	env := envvars.New(map[string]string{
		envvars.GitServerURL: serverURL,
		envvars.GitUser:      g.user,
		envvars.GitPassword:  g.password,
	})
	if g.git == nil || g.git.RepositoryName == "" {
		return w, env, nil
	}

	if err := g.createRepository(ctx, p.Cluster().HTTP, serverURL); err != nil {
		return nil, envvars.Context{}, err
	}
	repoURL := fmt.Sprintf("%s/%s/%s.git", serverURL, g.user, g.git.RepositoryName)
	branch := g.git.Ref
	if branch == "" {
		branch = defaultGitBranch
	}
	if g.git.SourceDir != "" {
		remote, err := url.Parse(repoURL)
		if err != nil {
			return nil, envvars.Context{}, err
		}
		remote.User = url.UserPassword(g.user, g.password)
		if err := g.pushSources(ctx, g.git.SourceDir, remote.String(), branch); err != nil {
			return nil, envvars.Context{}, err
		}
	}
	env = env.WithAll(map[string]string{
		envvars.SourceRepositoryURL: repoURL,
		envvars.SourceRepositoryRef: branch,
	})
	if g.git.ContextDir != "" {
		env = env.With(envvars.ContextDir, g.git.ContextDir)
	}
	return w, env, nil
}

// createGogsUser creates an administrator with the Gogs command line, in the server pod.
func createGogsUser(ctx context.Context, d deployment.Deployment, user, password string) error {
	instances, err := d.Instances(ctx)
	if err != nil {
		return err
	}
	if len(instances) == 0 {
		return errors.Errorf("%s has no instance", d.Name())
	}
	createUser := fmt.Sprintf("%s admin create-user --config %s --name %s --password %s --email %s@example.com --admin",
		gogsBinary, gogsConfig, user, password, user)
	_, err = instances[0].RunCommand(ctx, "su", "git", "-c", createUser)
	return err
}

func (g *Gogs) createRepository(ctx context.Context, httpClient *retryablehttp.Client, serverURL string) error {
	body, err := json.Marshal(map[string]interface{}{"name": g.git.RepositoryName, "private": false})
	if err != nil {
		return err
	}
	reposURL := serverURL + "/api/v1/user/repos"
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, reposURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.user, g.password)
	resp, err := httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "while creating repository %s", g.git.RepositoryName)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	switch resp.StatusCode {
	case http.StatusCreated, http.StatusConflict, http.StatusUnprocessableEntity:
		return nil
	default:
		return &kieclient.APIError{StatusCode: resp.StatusCode, URL: reposURL, Body: string(respBody)}
	}
}

// PushSources commits the content of dir and force pushes it to branch of remote.
// The Git metadata is kept in a temporary directory so that dir is left untouched.
func PushSources(ctx context.Context, dir, remote, branch string) error {
	gitDir, err := os.MkdirTemp("", "kie-sources-*.git")
	if err != nil {
		return err
	}
	defer os.RemoveAll(gitDir)

	git := func(args ...string) error {
		args = append([]string{"--git-dir", gitDir, "--work-tree", dir}, args...)
		_, err := process.New("git", args...).
			WithWorkDir(dir).
			WithEnv("GIT_TERMINAL_PROMPT=0").
			Build().
			Execute(ctx)
		return err
	}
	steps := []struct {
		name string
		args []string
	}{
		{"init", []string{"init", "--quiet"}},
		{"add", []string{"add", "--all"}},
		{"commit", []string{"-c", "user.name=kie-cloud-tests", "-c", "user.email=kie-cloud-tests@example.com", "commit", "--quiet", "--message", "Import sources"}},
		{"push", []string{"push", "--quiet", "--force", remote, "HEAD:refs/heads/" + branch}},
	}
	for _, step := range steps {
		if err := git(step.args...); err != nil {
			// not wrapped: the error message holds the remote URL and its credentials
			return errors.Errorf("while pushing sources of %s: git %s failed", dir, step.name)
		}
	}
	return nil
}
