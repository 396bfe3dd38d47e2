// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package deployer

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
)

const (
	PrometheusName       = "prometheus"
	kieServerMetricsPath = "/services/rest/metrics"
	kieServerPort        = 8080
	scrapeInterval       = "10s"
)

type scrapeConfig struct {
	JobName       string         `yaml:"job_name"`
	MetricsPath   string         `yaml:"metrics_path"`
	BasicAuth     *basicAuth     `yaml:"basic_auth,omitempty"`
	StaticConfigs []staticConfig `yaml:"static_configs"`
}

type basicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type staticConfig struct {
	Targets []string `yaml:"targets"`
}

type prometheusConfig struct {
	Global struct {
		ScrapeInterval string `yaml:"scrape_interval"`
	} `yaml:"global"`
	ScrapeConfigs []scrapeConfig `yaml:"scrape_configs"`
}

// Prometheus deploys a Prometheus server scraping the kie-servers of the scenario with a static configuration.
type Prometheus struct {
	image    string
	timeouts config.Timeouts
	// services are the kie-server services, they may reference environment variables.
	services []string
}

func NewPrometheus(cfg config.Config, kieServerServices []string) *Prometheus {
	return &Prometheus{
		image:    cfg.Image(config.ImagePrometheus),
		timeouts: cfg.Timeouts,
		services: kieServerServices,
	}
}

func (p *Prometheus) Name() string {
	return PrometheusName
}

// scrapeConfiguration returns the Prometheus configuration file scraping the kie-servers in namespace.
func (p *Prometheus) scrapeConfiguration(namespace string, env envvars.Context) ([]byte, error) {
	targets := make([]string, 0, len(p.services))
	for _, service := range p.services {
		targets = append(targets, fmt.Sprintf("%s.%s.svc:%d", env.Expand(service), namespace, kieServerPort))
	}
	var cfg prometheusConfig
	cfg.Global.ScrapeInterval = scrapeInterval
	cfg.ScrapeConfigs = []scrapeConfig{{
		JobName:       "kie-server",
		MetricsPath:   kieServerMetricsPath,
		StaticConfigs: []staticConfig{{Targets: targets}},
	}}
	if user, ok := env.Lookup(envvars.KieServerUser); ok {
		cfg.ScrapeConfigs[0].BasicAuth = &basicAuth{Username: user, Password: env.Get(envvars.KieServerPwd)}
	}
	return yaml.Marshal(cfg)
}

// Deploy returns PROMETHEUS_URL and enables the kie-server metrics extension.
func (p *Prometheus) Deploy(ctx context.Context, project *cluster.Project, env envvars.Context) (deployment.Deployment, envvars.Context, error) {
	scrape, err := p.scrapeConfiguration(project.Name(), env)
	if err != nil {
		return nil, envvars.Context{}, err
	}
	w, err := deployManifest(ctx, project, "prometheus.yaml", manifestParams{
		Name:   PrometheusName,
		Image:  p.image,
		Values: map[string]string{"config": string(scrape)},
	}, deployment.KindPrometheus, p.timeouts)
	if err != nil {
		return nil, envvars.Context{}, err
	}
	url, err := w.URL(ctx)
	if err != nil {
		return nil, envvars.Context{}, err
	}
	return w, envvars.New(map[string]string{
		envvars.PrometheusURL:               url,
		envvars.PrometheusServerExtDisabled: "false",
	}), nil
}
