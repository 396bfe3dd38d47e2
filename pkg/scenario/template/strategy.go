// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package template submits scenarios by processing OpenShift templates.
package template

import (
	"context"

	"github.com/pkg/errors"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario"
)

const Flavor = "template"

var log = logf.Log.WithName("template-strategy")

// Settings is a template and the parameters specific to it.
type Settings struct {
	// Source is the URL or local path of the template.
	Source string
	Env    map[string]string
}

// Strategy processes its templates in order. Each template receives the whole scenario environment,
// overridden by its own settings.
type Strategy struct {
	settings []Settings
	// imageStreams is the source of the image streams created in the project, if any.
	imageStreams string
}

var _ scenario.Strategy = &Strategy{}

func New(imageStreams string, settings ...Settings) *Strategy {
	return &Strategy{settings: settings, imageStreams: imageStreams}
}

func (s *Strategy) Flavor() string {
	return Flavor
}

// Prepare creates the product image streams in the project when a source is configured.
func (s *Strategy) Prepare(ctx context.Context, p *cluster.Project, _ envvars.Context) (envvars.Context, error) {
	if s.imageStreams == "" {
		return envvars.Context{}, nil
	}
	if err := p.CreateImageStreams(ctx, s.imageStreams); err != nil {
		return envvars.Context{}, errors.Wrap(err, "while creating image streams")
	}
	return envvars.New(map[string]string{envvars.ImageStreamNamespace: p.Name()}), nil
}

func (s *Strategy) Submit(ctx context.Context, p *cluster.Project, env envvars.Context) (envvars.Context, error) {
	for _, settings := range s.settings {
		params := env.WithAll(settings.Env)
		log.Info("Processing template", "namespace", p.Name(), "source", settings.Source, "parameters", params.Len())
		if _, err := p.ProcessTemplate(ctx, settings.Source, params.AsMap()); err != nil {
			return envvars.Context{}, errors.Wrapf(err, "while processing template %s", settings.Source)
		}
	}
	return envvars.Context{}, nil
}

func (s *Strategy) AwaitReady(ctx context.Context, deployments []deployment.Deployment) error {
	return deployment.WaitSequentially(ctx, deployments)
}

// Teardown has nothing to do: everything the templates created lives in the project.
func (s *Strategy) Teardown(context.Context, *cluster.Project) error {
	return nil
}
