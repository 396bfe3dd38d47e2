// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package harness wires the configuration, logging, tracing and cluster access shared by every command.
package harness

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.elastic.co/apm/v2"
	ctrlconfig "sigs.k8s.io/controller-runtime/pkg/client/config"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/tracing"
	"github.com/kiegroup/kie-cloud-tests/pkg/utils/log"
	"github.com/kiegroup/kie-cloud-tests/pkg/utils/metrics"
	"github.com/kiegroup/kie-cloud-tests/pkg/utils/vault"
)

// ServiceName identifies the harness in logs and traces.
const ServiceName = "kie-cloud-tests"

// Version is set at build time.
var Version = "dev"

// Harness is the environment a command runs in.
type Harness struct {
	Config  config.Config
	Tracer  *apm.Tracer
	Cluster *cluster.Client
}

// LoadConfig reads the configuration from flags, KIE_* environment variables,
// the properties file and Vault, in increasing order of precedence.
func LoadConfig(fs *pflag.FlagSet, newVault func() (vault.Client, error)) (config.Config, error) {
	v, err := config.NewViper(fs)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, err
	}
	path := v.GetString(config.VaultPathFlag)
	if path == "" {
		return cfg, nil
	}
	client, err := newVault()
	if err != nil {
		return config.Config{}, errors.Wrap(err, "while creating the vault client")
	}
	if err := cfg.ApplyVaultCredentials(client, path); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// New loads the configuration, then sets up logging, tracing and the cluster client.
func New(fs *pflag.FlagSet) (*Harness, error) {
	cfg, err := LoadConfig(fs, vault.NewClient)
	if err != nil {
		return nil, err
	}

	var tracer *apm.Tracer
	if cfg.EnableTracing {
		tracer = tracing.NewTracer(ServiceName, Version)
	}
	log.InitLogger(log.WithVersion(Version), log.WithTracer(tracer))

	restCfg, err := ctrlconfig.GetConfig()
	if err != nil {
		return nil, errors.Wrap(err, "while loading the kubeconfig")
	}
	c, err := cluster.NewClient(restCfg, cfg.PinImageDigests)
	if err != nil {
		return nil, err
	}
	return &Harness{Config: cfg, Tracer: tracer, Cluster: c}, nil
}

// Close flushes traces and writes the metrics file when one is configured.
func (h *Harness) Close() {
	if h.Tracer != nil {
		h.Tracer.Flush(nil)
		h.Tracer.Close()
	}
	if h.Config.MetricsFile == "" {
		return
	}
	if err := metrics.WriteToFile(h.Config.MetricsFile); err != nil {
		logf.Log.WithName("harness").Error(err, "Failed to write metrics", "path", h.Config.MetricsFile)
	}
}
