// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package scenario

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.elastic.co/apm/v2"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
)

var log = logf.Log.WithName("scenario")

// State is the lifecycle state of a scenario.
type State string

const (
	// StateUndeployed is the initial state. It is terminal once Undeploy deleted the project:
	// a new Scenario must then be built for another run.
	StateUndeployed  State = "UNDEPLOYED"
	StateDeploying   State = "DEPLOYING"
	StateDeployed    State = "DEPLOYED"
	StateUndeploying State = "UNDEPLOYING"
	// StateFailed is entered when Deploy or Undeploy fails. Undeploy can be called again from it.
	StateFailed State = "FAILED"
)

// ErrInvalidState is returned when a lifecycle operation is not allowed in the current state.
var ErrInvalidState = errors.New("invalid scenario state")

// CredentialsSecretName is the secret holding the admin credentials when they are not passed in clear.
const CredentialsSecretName = "kie-admin-credentials"

// Scenario deploys a topology of product components into a dedicated project and tears it down.
type Scenario struct {
	name     string
	cluster  *cluster.Client
	cfg      config.Config
	request  Request
	topology Topology
	strategy Strategy
	namer    func(prefix string) string
	tracer   *apm.Tracer
	runID    string

	state   State
	env     envvars.Context
	project *cluster.Project
	// torndown is set once the project is deleted. UNDEPLOYED is then terminal.
	torndown bool
	// deployments holds dependencies first, then components in declaration order
	deployments []deployment.Deployment
	byName      map[string]deployment.Deployment
}

// Option customizes a Scenario.
type Option func(*Scenario)

// WithNamer overrides the generation of the project name.
func WithNamer(namer func(prefix string) string) Option {
	return func(s *Scenario) {
		s.namer = namer
	}
}

// WithTracer traces Deploy and Undeploy as APM transactions.
func WithTracer(tracer *apm.Tracer) Option {
	return func(s *Scenario) {
		s.tracer = tracer
	}
}

// WithRunID sets the identifier labelling the project, to find the projects of a test run.
func WithRunID(runID string) Option {
	return func(s *Scenario) {
		s.runID = runID
	}
}

// New creates a scenario. Nothing is created in the cluster until Deploy is called.
func New(
	name string,
	c *cluster.Client,
	cfg config.Config,
	request Request,
	topology Topology,
	strategy Strategy,
	env envvars.Context,
	opts ...Option,
) (*Scenario, error) {
	if err := topology.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid topology for scenario %s", name)
	}
	s := &Scenario{
		name:     name,
		cluster:  c,
		cfg:      cfg,
		request:  request,
		topology: topology,
		strategy: strategy,
		env:      env,
		namer:    cluster.RandomProjectName,
		runID:    uuid.NewString(),
		state:    StateUndeployed,
		byName:   map[string]deployment.Deployment{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Scenario) Name() string {
	return s.name
}

func (s *Scenario) State() State {
	return s.state
}

func (s *Scenario) RunID() string {
	return s.runID
}

func (s *Scenario) Request() Request {
	return s.request
}

func (s *Scenario) Flavor() string {
	return s.strategy.Flavor()
}

// Environment returns the environment as built so far.
func (s *Scenario) Environment() envvars.Context {
	return s.env
}

// Project returns the project of the scenario, nil before Deploy created it.
func (s *Scenario) Project() *cluster.Project {
	return s.project
}

// Namespace returns the namespace of the scenario, empty before Deploy created it.
func (s *Scenario) Namespace() string {
	if s.project == nil {
		return ""
	}
	return s.project.Name()
}

// Deployments returns the deployments of the scenario: side dependencies first, then the topology components.
func (s *Scenario) Deployments() []deployment.Deployment {
	return append([]deployment.Deployment(nil), s.deployments...)
}

// Deployment returns the deployment of a component or dependency by name.
func (s *Scenario) Deployment(name string) (deployment.Deployment, bool) {
	d, ok := s.byName[name]
	return d, ok
}

// DeploymentsOfKind returns the deployments of the given kind, in order.
func (s *Scenario) DeploymentsOfKind(kind deployment.Kind) []deployment.Deployment {
	var result []deployment.Deployment
	for _, d := range s.deployments {
		if d.Kind() == kind {
			result = append(result, d)
		}
	}
	return result
}
