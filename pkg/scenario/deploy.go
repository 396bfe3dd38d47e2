// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package scenario

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
	"github.com/kiegroup/kie-cloud-tests/pkg/tracing"
	"github.com/kiegroup/kie-cloud-tests/pkg/utils/metrics"
)

const environmentFile = "environment.yaml"

type step struct {
	name string
	run  func(ctx context.Context) error
}

func runSteps(ctx context.Context, steps []step) error {
	for _, st := range steps {
		if err := runStep(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func runStep(ctx context.Context, st step) error {
	defer tracing.NamedSpan(&ctx, st.name)()
	log.V(1).Info("Running step", "step", st.name)
	return st.run(ctx)
}

// Deploy creates a new project and deploys the scenario in it.
// Components are waited for sequentially in the order of the topology.
// A failure leaves the created resources in place, Undeploy removes them.
func (s *Scenario) Deploy(ctx context.Context) (err error) {
	if s.state != StateUndeployed {
		return errors.Wrapf(ErrInvalidState, "cannot deploy scenario %s in state %s", s.name, s.state)
	}
	if s.torndown {
		return errors.Wrapf(ErrInvalidState, "cannot deploy scenario %s again, project %s was deleted", s.name, s.project.Name())
	}
	tx, ctx := tracing.NewTransaction(ctx, s.tracer, s.name, tracing.TxTypeDeploy)
	defer tracing.EndTransaction(tx)

	start := time.Now()
	s.state = StateDeploying
	log.Info("Deploying scenario", "scenario", s.name, "flavor", s.strategy.Flavor(), "run_id", s.runID)
	defer func() {
		metrics.ObserveScenario(s.name, tracing.TxTypeDeploy, err, time.Since(start))
		s.dumpEnvironment()
		if err != nil {
			s.state = StateFailed
			log.Error(err, "Scenario deployment failed", "scenario", s.name, "namespace", s.Namespace())
			err = tracing.CaptureError(ctx, errors.Wrapf(err, "while deploying scenario %s", s.name))
			return
		}
		s.state = StateDeployed
		log.Info("Scenario deployed", "scenario", s.name, "namespace", s.Namespace(), "duration", time.Since(start))
	}()

	return runSteps(ctx, []step{
		{name: "create-project", run: s.createProject},
		{name: "prepare", run: s.prepare},
		{name: "deploy-dependencies", run: s.deployDependencies},
		{name: "submit", run: s.submit},
		{name: "build-deployments", run: s.buildDeployments},
		{name: "await-ready", run: s.awaitReady},
		{name: "await-registrations", run: s.awaitRegistrations},
	})
}

func (s *Scenario) createProject(ctx context.Context) error {
	p, err := s.cluster.CreateProject(ctx, s.namer(s.cfg.ProjectPrefix), map[string]string{
		cluster.RunIDLabel:    s.runID,
		cluster.ScenarioLabel: s.name,
	})
	if err != nil {
		return err
	}
	s.project = p
	return nil
}

func (s *Scenario) prepare(ctx context.Context) error {
	if !s.env.Has(envvars.ImageStreamNamespace) {
		namespace := s.cfg.ImageStreamNamespace
		if namespace == "" {
			namespace = s.project.Name()
		}
		s.env = s.env.With(envvars.ImageStreamNamespace, namespace)
	}
	if s.request.DeploySecretAdminCredentials {
		if err := s.project.CreateSecret(ctx, CredentialsSecretName, map[string]string{
			envvars.KieAdminUser: s.env.Get(envvars.KieAdminUser),
			envvars.KieAdminPwd:  s.env.Get(envvars.KieAdminPwd),
		}); err != nil {
			return err
		}
		s.env = s.env.With(envvars.CredentialsSecret, CredentialsSecretName)
	}
	additions, err := s.strategy.Prepare(ctx, s.project, s.env)
	if err != nil {
		return errors.Wrapf(err, "while preparing %s submission", s.strategy.Flavor())
	}
	s.env = s.env.Merge(additions)
	return nil
}

func (s *Scenario) deployDependencies(ctx context.Context) error {
	for _, dep := range s.topology.Dependencies {
		log.Info("Deploying dependency", "namespace", s.Namespace(), "dependency", dep.Name())
		d, additions, err := dep.Deploy(ctx, s.project, s.env)
		if err != nil {
			return errors.Wrapf(err, "while deploying %s", dep.Name())
		}
		s.env = s.env.Merge(additions)
		if d != nil {
			s.addDeployment(dep.Name(), d)
		}
	}
	return nil
}

func (s *Scenario) submit(ctx context.Context) error {
	additions, err := s.strategy.Submit(ctx, s.project, s.env)
	if err != nil {
		return errors.Wrapf(err, "while submitting scenario with %s", s.strategy.Flavor())
	}
	s.env = s.env.Merge(additions)
	return nil
}

func (s *Scenario) buildDeployments(_ context.Context) error {
	for _, c := range s.topology.Components {
		spec := deployment.Spec{
			Name:    s.env.Expand(c.Workload),
			Kind:    c.Kind,
			Service: s.env.Expand(c.Service),
			GVK:     c.GVK,
			Credentials: deployment.Credentials{
				Username: s.env.Get(c.UserKey),
				Password: s.env.Get(c.PasswordKey),
			},
		}
		s.addDeployment(c.Name, deployment.ForKind(s.project, spec, s.cfg.Timeouts))
	}
	return nil
}

func (s *Scenario) addDeployment(name string, d deployment.Deployment) {
	s.deployments = append(s.deployments, d)
	s.byName[name] = d
}

// waitOrder returns the component deployments in the order they must be waited for.
func (s *Scenario) waitOrder() []deployment.Deployment {
	names := s.topology.WaitOrder
	if len(names) == 0 {
		for _, c := range s.topology.Components {
			names = append(names, c.Name)
		}
	}
	ordered := make([]deployment.Deployment, 0, len(names))
	for _, name := range names {
		ordered = append(ordered, s.byName[name])
	}
	return ordered
}

func (s *Scenario) awaitReady(ctx context.Context) error {
	return s.strategy.AwaitReady(ctx, s.waitOrder())
}

func (s *Scenario) awaitRegistrations(ctx context.Context) error {
	for _, r := range s.topology.Registrations {
		registrar, ok := s.byName[r.Component].(deployment.Registrar)
		if !ok {
			return errors.Errorf("component %s does not accept server registrations", r.Component)
		}
		if err := deployment.WaitForServerRegistration(ctx, registrar, r.Expected, s.cfg.Timeouts); err != nil {
			return err
		}
	}
	return nil
}

// dumpEnvironment writes the environment, secrets masked, next to the collected logs.
func (s *Scenario) dumpEnvironment() {
	if s.project == nil || s.cfg.LogsDir == "" {
		return
	}
	dir := filepath.Join(s.cfg.LogsDir, s.project.Name())
	data, err := yaml.Marshal(s.env.Masked())
	if err == nil {
		err = os.MkdirAll(dir, 0o755)
	}
	if err == nil {
		err = os.WriteFile(filepath.Join(dir, environmentFile), data, 0o600)
	}
	if err != nil {
		log.Error(err, "Failed to write scenario environment", "dir", dir)
	}
}
