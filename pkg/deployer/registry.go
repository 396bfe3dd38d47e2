// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package deployer

import (
	"context"
	"net/url"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/crane"
	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/pkg/errors"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
	"github.com/kiegroup/kie-cloud-tests/pkg/utils/cryptutil"
)

const DockerRegistryName = "docker-registry"

// DockerRegistry deploys a private image registry protected by htpasswd authentication.
// Test code pushes images to it once deployed.
type DockerRegistry struct {
	image    string
	user     string
	password string
	timeouts config.Timeouts
	hasher   cryptutil.PasswordHasher
	// host is the registry address, set by Deploy.
	host string
}

func NewDockerRegistry(cfg config.Config) *DockerRegistry {
	// the bcrypt hasher without cache never fails to build
	hasher, _ := cryptutil.NewPasswordHasher(0)
	return &DockerRegistry{
		image:    cfg.Image(config.ImageDockerRegistry),
		user:     cfg.Credentials.AdminUser,
		password: cfg.Credentials.AdminPassword,
		timeouts: cfg.Timeouts,
		hasher:   hasher,
	}
}

func (r *DockerRegistry) Name() string {
	return DockerRegistryName
}

// Deploy returns DOCKER_REGISTRY_URL, the registry host without scheme.
func (r *DockerRegistry) Deploy(ctx context.Context, p *cluster.Project, _ envvars.Context) (deployment.Deployment, envvars.Context, error) {
	htpasswd := cryptutil.NewHtpasswd(r.hasher)
	if err := htpasswd.Set(r.user, r.password); err != nil {
		return nil, envvars.Context{}, err
	}
	w, err := deployManifest(ctx, p, "registry.yaml", manifestParams{
		Name:   DockerRegistryName,
		Image:  r.image,
		Values: map[string]string{"htpasswd": string(htpasswd.Bytes())},
	}, deployment.KindDockerRegistry, r.timeouts)
	if err != nil {
		return nil, envvars.Context{}, err
	}
	registryURL, err := w.SecureURL(ctx)
	if err != nil {
		return nil, envvars.Context{}, err
	}
	u, err := url.Parse(registryURL)
	if err != nil {
		return nil, envvars.Context{}, errors.Wrapf(err, "invalid registry URL %s", registryURL)
	}
	r.host = u.Host
	return w, envvars.New(map[string]string{envvars.DockerRegistryURL: r.host}), nil
}

func (r *DockerRegistry) options(ctx context.Context) []crane.Option {
	return []crane.Option{
		crane.WithContext(ctx),
		crane.WithAuth(&authn.Basic{Username: r.user, Password: r.password}),
		// the route certificate is self-signed
		crane.Insecure,
	}
}

func (r *DockerRegistry) reference(repository string) (string, error) {
	if r.host == "" {
		return "", errors.New("docker registry is not deployed")
	}
	return r.host + "/" + repository, nil
}

// PushImage pushes img to repository, a "name:tag" reference relative to the registry.
// It returns the pushed reference pinned by digest.
func (r *DockerRegistry) PushImage(ctx context.Context, img v1.Image, repository string) (string, error) {
	ref, err := r.reference(repository)
	if err != nil {
		return "", err
	}
	if err := crane.Push(img, ref, r.options(ctx)...); err != nil {
		return "", errors.Wrapf(err, "while pushing %s", ref)
	}
	digest, err := img.Digest()
	if err != nil {
		return "", err
	}
	return pinnedReference(ref, digest.String())
}

// CopyImage copies the image at src to repository.
func (r *DockerRegistry) CopyImage(ctx context.Context, src, repository string) (string, error) {
	ref, err := r.reference(repository)
	if err != nil {
		return "", err
	}
	opts := r.options(ctx)
	if err := crane.Copy(src, ref, opts...); err != nil {
		return "", errors.Wrapf(err, "while copying %s to %s", src, ref)
	}
	digest, err := crane.Digest(ref, opts...)
	if err != nil {
		return "", err
	}
	return pinnedReference(ref, digest)
}

func pinnedReference(ref, digest string) (string, error) {
	parsed, err := name.ParseReference(ref, name.Insecure)
	if err != nil {
		return "", err
	}
	return parsed.Context().Digest(digest).String(), nil
}
