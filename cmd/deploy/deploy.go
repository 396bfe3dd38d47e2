// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package deploy provides the subcommand deploying a catalog scenario.
package deploy

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"

	"github.com/kiegroup/kie-cloud-tests/pkg/builder"
	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/harness"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario/template"
)

var log = logf.Log.WithName("deploy")

// Options are the flags of the deploy command.
type Options struct {
	Scenario string
	Flavor   string
	// Keep leaves the scenario running instead of undeploying it.
	Keep bool

	SSO                    bool
	LDAP                   bool
	Prometheus             bool
	SecretAdminCredentials bool
	EdgeTermination        bool
	MavenRepository        bool
	DockerRegistry         bool
	ProcessMigration       bool
	Upgrade                bool

	GitRepositoryName string
	GitSourceDir      string
	GitURL            string
	GitRef            string
	GitContextDir     string
}

// Features converts the flags to builder features.
func (o Options) Features() builder.Features {
	f := builder.Features{
		SSO:                    o.SSO,
		LDAP:                   o.LDAP,
		Prometheus:             o.Prometheus,
		SecretAdminCredentials: o.SecretAdminCredentials,
		EdgeTermination:        o.EdgeTermination,
		MavenRepository:        o.MavenRepository,
		DockerRegistry:         o.DockerRegistry,
		ProcessMigration:       o.ProcessMigration,
		Upgrade:                o.Upgrade,
	}
	if o.GitRepositoryName != "" || o.GitURL != "" {
		f.Git = &scenario.GitSettings{
			RepositoryName: o.GitRepositoryName,
			SourceDir:      o.GitSourceDir,
			URL:            o.GitURL,
			Ref:            o.GitRef,
			ContextDir:     o.GitContextDir,
		}
	}
	return f
}

// Command returns the deploy cobra command.
func Command() *cobra.Command {
	var opts Options

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy a catalog scenario",
		Long: `Deploy a catalog scenario in a new project, wait for it to be ready,
then undeploy it unless --keep is set.

Instance logs and the scenario environment are written to the logs directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := harness.New(cmd.Flags())
			if err != nil {
				return err
			}
			defer h.Close()
			return Run(signals.SetupSignalHandler(), h.Config, h.Cluster, opts, cmd.OutOrStdout(), scenario.WithTracer(h.Tracer))
		},
	}

	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "Catalog scenario to deploy, see the list command")
	cmd.Flags().StringVar(&opts.Flavor, "flavor", template.Flavor, fmt.Sprintf("Provisioning flavor, one of %v", builder.Flavors()))
	cmd.Flags().BoolVar(&opts.Keep, "keep", false, "Leave the scenario running")
	cmd.Flags().BoolVar(&opts.SSO, "sso", false, "Secure the scenario with an SSO server")
	cmd.Flags().BoolVar(&opts.LDAP, "ldap", false, "Authenticate users against an LDAP server")
	cmd.Flags().BoolVar(&opts.Prometheus, "prometheus", false, "Scrape the kie-servers with Prometheus")
	cmd.Flags().BoolVar(&opts.SecretAdminCredentials, "secret-admin-credentials", false, "Read the admin credentials from a secret")
	cmd.Flags().BoolVar(&opts.EdgeTermination, "edge-termination", false, "Expose routes with edge TLS termination")
	cmd.Flags().BoolVar(&opts.MavenRepository, "maven-repository", false, "Deploy a Maven repository")
	cmd.Flags().BoolVar(&opts.DockerRegistry, "docker-registry", false, "Deploy a Docker registry")
	cmd.Flags().BoolVar(&opts.ProcessMigration, "process-migration", false, "Deploy the process instance migration service")
	cmd.Flags().BoolVar(&opts.Upgrade, "upgrade", false, "Let the operator upgrade the product")
	cmd.Flags().StringVar(&opts.GitRepositoryName, "git-repository-name", "", "Repository created on a Git server deployed with the scenario")
	cmd.Flags().StringVar(&opts.GitSourceDir, "git-source-dir", "", "Local directory pushed to the created repository")
	cmd.Flags().StringVar(&opts.GitURL, "git-url", "", "Existing repository the kie-servers are built from")
	cmd.Flags().StringVar(&opts.GitRef, "git-ref", "", "Git reference to build")
	cmd.Flags().StringVar(&opts.GitContextDir, "git-context-dir", "", "Directory of the project within the repository")

	_ = cmd.MarkFlagRequired("scenario")

	return cmd
}

// Run builds the scenario, deploys it and undeploys it unless opts.Keep is set.
// A failed deployment is undeployed too, so that instance logs are collected.
func Run(ctx context.Context, cfg config.Config, c *cluster.Client, opts Options, out io.Writer, scenarioOpts ...scenario.Option) error {
	b, err := builder.ForScenario(cfg, opts.Scenario, opts.Flavor, opts.Features())
	if err != nil {
		return err
	}
	s, err := b.Build(c, scenarioOpts...)
	if err != nil {
		return err
	}

	deployErr := s.Deploy(ctx)
	if deployErr == nil {
		fmt.Fprintf(out, "Scenario %s deployed in project %s\n", s.Name(), s.Namespace())
		for _, d := range s.Deployments() {
			url, err := d.URL(ctx)
			if err != nil {
				url = "-"
			}
			fmt.Fprintf(out, "  %s\t%s\t%s\n", d.Name(), d.Kind(), url)
		}
	}
	if opts.Keep && deployErr == nil {
		return nil
	}

	// the parent context may be cancelled already, undeploying must still happen
	if err := s.Undeploy(context.WithoutCancel(ctx)); err != nil {
		log.Error(err, "Failed to undeploy scenario", "scenario", s.Name(), "namespace", s.Namespace())
		if deployErr == nil {
			return err
		}
	}
	return deployErr
}
