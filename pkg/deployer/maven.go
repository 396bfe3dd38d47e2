// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package deployer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
	"github.com/kiegroup/kie-cloud-tests/pkg/kieclient"
	"github.com/kiegroup/kie-cloud-tests/pkg/utils/retry"
)

const (
	MavenRepositoryName = "maven-repository"
	MavenRepositoryID   = "maven-repository"
	// mavenReleasesPath is the hosted repository artifacts are deployed to.
	mavenReleasesPath = "/repository/maven-releases/"

	nexusDefaultAdmin    = "admin"
	nexusDefaultPassword = "admin123"
	nexusUsersPath       = "/service/rest/v1/security/users"
)

// MavenRepository deploys a Nexus repository manager and creates the user deploying artifacts to it.
type MavenRepository struct {
	image    string
	user     string
	password string
	timeouts config.Timeouts
}

func NewMavenRepository(cfg config.Config) *MavenRepository {
	return &MavenRepository{
		image:    cfg.Image(config.ImageMaven),
		user:     cfg.Credentials.MavenUser,
		password: cfg.Credentials.MavenPassword,
		timeouts: cfg.Timeouts,
	}
}

func (m *MavenRepository) Name() string {
	return MavenRepositoryName
}

// Deploy returns MAVEN_REPO_URL, MAVEN_REPO_ID and the credentials of the deployment user.
func (m *MavenRepository) Deploy(ctx context.Context, p *cluster.Project, _ envvars.Context) (deployment.Deployment, envvars.Context, error) {
	w, err := deployManifest(ctx, p, "maven.yaml", manifestParams{Name: MavenRepositoryName, Image: m.image}, deployment.KindMavenRepository, m.timeouts)
	if err != nil {
		return nil, envvars.Context{}, err
	}
	baseURL, err := w.URL(ctx)
	if err != nil {
		return nil, envvars.Context{}, err
	}
	err = retry.UntilSuccess(ctx, func(ctx context.Context) error {
		return m.createUser(ctx, p.Cluster().HTTP, baseURL)
	}, m.timeouts.DeploymentReady, m.timeouts.PollInterval)
	if err != nil {
		return nil, envvars.Context{}, errors.Wrapf(err, "while creating Maven user %s", m.user)
	}
	return w, envvars.New(map[string]string{
		envvars.MavenRepoURL:      baseURL + mavenReleasesPath,
		envvars.MavenRepoID:       MavenRepositoryID,
		envvars.MavenRepoUsername: m.user,
		envvars.MavenRepoPassword: m.password,
	}), nil
}

// createUser creates the deployment user with the default administrator. An existing user is kept.
func (m *MavenRepository) createUser(ctx context.Context, httpClient *retryablehttp.Client, baseURL string) error {
	body, err := json.Marshal(map[string]interface{}{
		"userId":       m.user,
		"firstName":    m.user,
		"lastName":     m.user,
		"emailAddress": m.user + "@example.com",
		"password":     m.password,
		"status":       "active",
		"roles":        []string{"nx-admin"},
	})
	if err != nil {
		return err
	}
	url := baseURL + nexusUsersPath
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(nexusDefaultAdmin, nexusDefaultPassword)
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusNoContent:
		log.V(1).Info("Maven user created", "url", baseURL, "user", m.user)
		return nil
	case resp.StatusCode == http.StatusBadRequest && bytes.Contains(respBody, []byte("already")):
		return nil
	default:
		return &kieclient.APIError{StatusCode: resp.StatusCode, URL: url, Body: string(respBody)}
	}
}
