// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package deployer deploys the side services a scenario depends on, such as SSO or a Maven repository.
// Each deployer waits for its service to be ready and returns the environment variables
// telling the product how to reach it.
package deployer

import (
	"bytes"
	"context"
	"embed"
	"text/template"

	sprig "github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario"
)

var log = logf.Log.WithName("deployer")

//go:embed manifests/*.yaml
var manifests embed.FS

// Deployer deploys one side service in a scenario project.
type Deployer = scenario.Dependency

var (
	_ Deployer = &SSO{}
	_ Deployer = &AMQ{}
	_ Deployer = &MavenRepository{}
	_ Deployer = &DockerRegistry{}
	_ Deployer = &LDAP{}
	_ Deployer = &Gogs{}
	_ Deployer = &Prometheus{}
)

// manifestParams are the values shared by all manifests.
type manifestParams struct {
	Name      string
	Namespace string
	Image     string
	// Values holds the parameters specific to a manifest.
	Values map[string]string
}

// render executes the named manifest template.
func render(manifest string, params manifestParams) ([]byte, error) {
	tmpl, err := template.New(manifest).Funcs(sprig.TxtFuncMap()).ParseFS(manifests, "manifests/"+manifest)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse manifest %s", manifest)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return nil, errors.Wrapf(err, "failed to render manifest %s", manifest)
	}
	return buf.Bytes(), nil
}

// deployManifest creates the objects of the manifest in the project, then waits for the workload
// with the same name to be ready.
func deployManifest(
	ctx context.Context,
	p *cluster.Project,
	manifest string,
	params manifestParams,
	kind deployment.Kind,
	timeouts config.Timeouts,
) (*deployment.Workload, error) {
	params.Namespace = p.Name()
	image, err := p.Cluster().Images.ResolveReference(ctx, params.Image)
	if err != nil {
		return nil, err
	}
	params.Image = image
	data, err := render(manifest, params)
	if err != nil {
		return nil, err
	}
	if err := p.ApplyManifests(ctx, data); err != nil {
		return nil, err
	}
	log.Info("Waiting for dependency", "namespace", p.Name(), "name", params.Name, "image", params.Image)
	w := deployment.New(p, deployment.Spec{Name: params.Name, Kind: kind}, timeouts)
	if err := w.WaitForScale(ctx); err != nil {
		return nil, err
	}
	return w, nil
}
