// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package scenario

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/cluster/clustertest"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.LogsDir = t.TempDir()
	cfg.Timeouts = config.Timeouts{
		DeploymentReady:    time.Second,
		ScaleDown:          time.Second,
		PollInterval:       5 * time.Millisecond,
		ServerRegistration: time.Second,
		ProjectDeletion:    time.Second,
	}
	return cfg
}

func fixedName(name string) Option {
	return WithNamer(func(string) string { return name })
}

func workload(namespace, name string, replicas int32) *appsv1.Deployment {
	labels := map[string]string{"deployment": name}
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name},
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.To(replicas),
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{ObjectMeta: metav1.ObjectMeta{Labels: labels}},
		},
	}
}

// recordingStrategy creates one single-replica workload per name and records what it was given.
type recordingStrategy struct {
	workloads  []string
	submitErr  error
	submitted  envvars.Context
	waitOrder  []string
	tornDown   bool
	prepareEnv map[string]string
	// replicas of each workload when Teardown ran
	teardownReplicas map[string]int32
}

func (r *recordingStrategy) Flavor() string {
	return "recording"
}

func (r *recordingStrategy) Prepare(_ context.Context, _ *cluster.Project, _ envvars.Context) (envvars.Context, error) {
	return envvars.New(r.prepareEnv), nil
}

func (r *recordingStrategy) Submit(ctx context.Context, p *cluster.Project, env envvars.Context) (envvars.Context, error) {
	r.submitted = env
	if r.submitErr != nil {
		return envvars.Context{}, r.submitErr
	}
	for _, name := range r.workloads {
		if err := p.Cluster().Client.Create(ctx, workload(p.Name(), env.Expand(name), 1)); err != nil {
			return envvars.Context{}, err
		}
	}
	return envvars.New(map[string]string{"SUBMITTED": "true"}), nil
}

func (r *recordingStrategy) AwaitReady(ctx context.Context, deployments []deployment.Deployment) error {
	for _, d := range deployments {
		r.waitOrder = append(r.waitOrder, d.Name())
	}
	return deployment.WaitSequentially(ctx, deployments)
}

func (r *recordingStrategy) Teardown(ctx context.Context, p *cluster.Project) error {
	r.tornDown = true
	var list appsv1.DeploymentList
	if err := p.Cluster().Client.List(ctx, &list, client.InNamespace(p.Name())); err != nil {
		return err
	}
	r.teardownReplicas = map[string]int32{}
	for _, d := range list.Items {
		r.teardownReplicas[d.Name] = ptr.Deref(d.Spec.Replicas, 0)
	}
	return nil
}

// ssoDependency deploys a fake SSO and publishes its URL and one client per key pair.
type ssoDependency struct {
	clients []envvars.SSOClientKeys
	cfg     config.Config
}

func (s ssoDependency) Name() string {
	return "sso"
}

func (s ssoDependency) Deploy(ctx context.Context, p *cluster.Project, _ envvars.Context) (deployment.Deployment, envvars.Context, error) {
	if err := p.Cluster().Client.Create(ctx, workload(p.Name(), "sso", 1)); err != nil {
		return nil, envvars.Context{}, err
	}
	d := deployment.New(p, deployment.Spec{Name: "sso", Kind: deployment.KindSso}, s.cfg.Timeouts)
	if err := d.WaitForScale(ctx); err != nil {
		return nil, envvars.Context{}, err
	}
	env := envvars.New(map[string]string{
		envvars.SSOURL:   "https://sso." + p.Name() + ".svc:8443/auth",
		envvars.SSORealm: "demo",
	})
	for _, c := range s.clients {
		env = env.With(c.ClientKey, c.ClientName).With(c.SecretKey, c.ClientName+"-secret")
	}
	return d, env, nil
}

func workbenchKieServerTopology() Topology {
	return Topology{
		Components: []Component{
			{Name: "workbench", Kind: deployment.KindWorkbench, Workload: "${APPLICATION_NAME}-rhpamcentr", UserKey: envvars.KieAdminUser, PasswordKey: envvars.KieAdminPwd},
			{Name: "kie-server", Kind: deployment.KindKieServer, Workload: "${APPLICATION_NAME}-kieserver", UserKey: envvars.KieServerUser, PasswordKey: envvars.KieServerPwd},
		},
		WaitOrder: []string{"kie-server", "workbench"},
	}
}

func baseEnv() envvars.Context {
	return envvars.New(map[string]string{
		envvars.ApplicationName: "myapp",
		envvars.KieAdminUser:    "adminUser",
		envvars.KieAdminPwd:     "adminUser1!",
		envvars.KieServerUser:   "executionUser",
		envvars.KieServerPwd:    "executionUser1!",
	})
}

func TestScenario_DeployUndeploy(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	c := clustertest.NewClient()
	strategy := &recordingStrategy{workloads: []string{"${APPLICATION_NAME}-rhpamcentr", "${APPLICATION_NAME}-kieserver"}}

	s, err := New("workbench-kieserver", c, cfg, Request{}, workbenchKieServerTopology(), strategy, baseEnv(), fixedName("kie-test"), WithRunID("run-1"))
	require.NoError(t, err)
	require.Equal(t, StateUndeployed, s.State())
	require.Empty(t, s.Namespace())

	require.NoError(t, s.Deploy(ctx))
	require.Equal(t, StateDeployed, s.State())
	require.Equal(t, "kie-test", s.Namespace())

	// exactly the two declared components, both ready
	deployments := s.Deployments()
	require.Len(t, deployments, 2)
	require.Equal(t, "myapp-rhpamcentr", deployments[0].Name())
	require.Equal(t, "myapp-kieserver", deployments[1].Name())
	for _, d := range deployments {
		ready, err := d.IsReady(ctx)
		require.NoError(t, err)
		require.True(t, ready)
	}
	require.Empty(t, s.DeploymentsOfKind(deployment.KindSso))
	kieServer, ok := s.Deployment("kie-server")
	require.True(t, ok)
	require.Equal(t, deployment.Credentials{Username: "executionUser", Password: "executionUser1!"}, kieServer.Credentials())
	require.Equal(t, []string{"myapp-kieserver", "myapp-rhpamcentr"}, strategy.waitOrder)

	var ns corev1.Namespace
	require.NoError(t, c.Client.Get(ctx, types.NamespacedName{Name: "kie-test"}, &ns))
	require.Equal(t, "run-1", ns.Labels[cluster.RunIDLabel])
	require.Equal(t, "workbench-kieserver", ns.Labels[cluster.ScenarioLabel])

	// the environment is dumped with secrets masked
	data, err := os.ReadFile(filepath.Join(cfg.LogsDir, "kie-test", "environment.yaml"))
	require.NoError(t, err)
	var dumped map[string]string
	require.NoError(t, yaml.Unmarshal(data, &dumped))
	require.Equal(t, "myapp", dumped[envvars.ApplicationName])
	require.Equal(t, "kie-test", dumped[envvars.ImageStreamNamespace])
	require.NotEqual(t, "adminUser1!", dumped[envvars.KieAdminPwd])

	require.NoError(t, s.Undeploy(ctx))
	require.Equal(t, StateUndeployed, s.State())
	require.True(t, strategy.tornDown)
	// custom resources go away before the workloads they own are scaled down
	require.Equal(t, map[string]int32{"myapp-rhpamcentr": 1, "myapp-kieserver": 1}, strategy.teardownReplicas)
	for _, d := range deployments {
		instances, err := d.Instances(ctx)
		require.NoError(t, err)
		require.Empty(t, instances)
	}
	err = c.Client.Get(ctx, types.NamespacedName{Name: "kie-test"}, &ns)
	require.True(t, apierrors.IsNotFound(err))

	logFiles, err := filepath.Glob(filepath.Join(cfg.LogsDir, "kie-test", "*", "*.log"))
	require.NoError(t, err)
	require.Len(t, logFiles, 2)
}

func TestScenario_EnvironmentIsAdditive(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	topology := workbenchKieServerTopology()
	topology.Components[0].SSOClient = &envvars.WorkbenchSSOClientKeys
	topology.Components[1].SSOClient = &envvars.SingleKieServerSSOClientKeys
	topology.Dependencies = []Dependency{ssoDependency{clients: topology.SSOClients(), cfg: cfg}}
	strategy := &recordingStrategy{
		workloads:  []string{"myapp-rhpamcentr", "myapp-kieserver"},
		prepareEnv: map[string]string{envvars.ImageStreamNamespace: "openshift"},
	}

	s, err := New("sso", clustertest.NewClient(), cfg, Request{DeploySso: true, DeploySecretAdminCredentials: true}, topology, strategy, baseEnv(), fixedName("kie-sso"))
	require.NoError(t, err)
	require.NoError(t, s.Deploy(ctx))

	// every key set by an earlier step reaches the submission
	for _, key := range baseEnv().Keys() {
		require.Equal(t, baseEnv().Get(key), strategy.submitted.Get(key), key)
	}
	require.Equal(t, "https://sso.kie-sso.svc:8443/auth", strategy.submitted.Get(envvars.SSOURL))
	require.Equal(t, "openshift", strategy.submitted.Get(envvars.ImageStreamNamespace))
	require.Equal(t, CredentialsSecretName, strategy.submitted.Get(envvars.CredentialsSecret))
	require.Equal(t, "kie-server-client", strategy.submitted.Get(envvars.KieServerSSOClient))
	require.Equal(t, "business-central-client-secret", strategy.submitted.Get(envvars.BusinessCentralSSOSecret))

	env := s.Environment()
	require.Equal(t, "true", env.Get("SUBMITTED"))
	require.Equal(t, "demo", env.Get(envvars.SSORealm))

	sso := s.DeploymentsOfKind(deployment.KindSso)
	require.Len(t, sso, 1)
	require.Len(t, s.Deployments(), 3)

	var secret corev1.Secret
	require.NoError(t, s.Project().Cluster().Client.Get(ctx, types.NamespacedName{Namespace: "kie-sso", Name: CredentialsSecretName}, &secret))
	require.Equal(t, "adminUser", secret.StringData[envvars.KieAdminUser])

	require.NoError(t, s.Undeploy(ctx))
}

func TestScenario_DeployFailure(t *testing.T) {
	ctx := context.Background()
	strategy := &recordingStrategy{submitErr: errors.New("template not found")}
	s, err := New("broken", clustertest.NewClient(), testConfig(t), Request{}, workbenchKieServerTopology(), strategy, baseEnv(), fixedName("kie-broken"))
	require.NoError(t, err)

	err = s.Deploy(ctx)
	require.EqualError(t, err, "while deploying scenario broken: while submitting scenario with recording: template not found")
	require.Equal(t, StateFailed, s.State())
	require.Empty(t, s.Deployments())
	require.ErrorIs(t, s.Deploy(ctx), ErrInvalidState)

	// the partially deployed scenario can still be cleaned up
	require.NoError(t, s.Undeploy(ctx))
	require.Equal(t, StateUndeployed, s.State())
	require.ErrorIs(t, s.Deploy(ctx), ErrInvalidState)
}

func TestScenario_ReadinessTimeout(t *testing.T) {
	ctx := context.Background()
	c := clustertest.New(clustertest.Options{UnreadyPods: true})
	strategy := &recordingStrategy{workloads: []string{"myapp-rhpamcentr", "myapp-kieserver"}}
	s, err := New("unready", c, testConfig(t), Request{}, workbenchKieServerTopology(), strategy, baseEnv(), fixedName("kie-unready"))
	require.NoError(t, err)

	err = s.Deploy(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "KieServer kie-unready/myapp-kieserver has 0 ready instances out of 1, expected 1")
	require.Equal(t, []string{"myapp-kieserver", "myapp-rhpamcentr"}, strategy.waitOrder)
	require.Equal(t, StateFailed, s.State())

	// nothing is ready, so nothing is scaled down, but the project goes away
	require.NoError(t, s.Undeploy(ctx))
}

func TestScenario_UndeployFailure(t *testing.T) {
	ctx := context.Background()
	c := clustertest.New(clustertest.Options{NamespaceDeleteError: errors.New("forbidden")})
	strategy := &recordingStrategy{workloads: []string{"myapp-rhpamcentr", "myapp-kieserver"}}
	s, err := New("stuck", c, testConfig(t), Request{}, workbenchKieServerTopology(), strategy, baseEnv(), fixedName("kie-stuck"))
	require.NoError(t, err)
	require.NoError(t, s.Deploy(ctx))

	err = s.Undeploy(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "while undeploying scenario stuck")
	assert.Contains(t, err.Error(), "while deleting project kie-stuck: forbidden")
	require.Equal(t, StateFailed, s.State())
	// scale down still happened
	for _, d := range s.Deployments() {
		instances, err := d.Instances(ctx)
		require.NoError(t, err)
		require.Empty(t, instances)
	}
}

func TestScenario_InvalidState(t *testing.T) {
	s, err := New("idle", clustertest.NewClient(), testConfig(t), Request{}, workbenchKieServerTopology(), &recordingStrategy{}, baseEnv())
	require.NoError(t, err)
	require.ErrorIs(t, s.Undeploy(context.Background()), ErrInvalidState)

	// an undeployed scenario cannot be deployed again into a deleted project
	ctx := context.Background()
	strategy := &recordingStrategy{workloads: []string{"myapp-rhpamcentr", "myapp-kieserver"}}
	s, err = New("once", clustertest.NewClient(), testConfig(t), Request{}, workbenchKieServerTopology(), strategy, baseEnv(), fixedName("kie-once"))
	require.NoError(t, err)
	require.NoError(t, s.Deploy(ctx))
	require.NoError(t, s.Undeploy(ctx))
	require.Equal(t, StateUndeployed, s.State())

	err = s.Deploy(ctx)
	require.ErrorIs(t, err, ErrInvalidState)
	require.Contains(t, err.Error(), "project kie-once was deleted")
	require.Equal(t, StateUndeployed, s.State())
	require.Equal(t, "kie-once", s.Namespace())
	require.Len(t, s.Deployments(), 2)
	require.ErrorIs(t, s.Undeploy(ctx), ErrInvalidState)
}

func TestScenario_Registrations(t *testing.T) {
	ctx := context.Background()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"server-template":[{"server-id":"a","server-instances":[{"server-instance-id":"a-1"}]},{"server-id":"b","server-instances":[{"server-instance-id":"b-1"}]}]}`))
	}))
	defer server.Close()

	c := clustertest.New(clustertest.Options{URLs: cluster.StaticURLResolver{"myapp-rhpamcentr": server.URL}})
	c.HTTP.RetryMax = 0
	topology := workbenchKieServerTopology()

	topology.Registrations = []Registration{{Component: "workbench", Expected: 2}}
	strategy := &recordingStrategy{workloads: []string{"myapp-rhpamcentr", "myapp-kieserver"}}
	s, err := New("registered", c, testConfig(t), Request{}, topology, strategy, baseEnv(), fixedName("kie-reg"))
	require.NoError(t, err)
	require.NoError(t, s.Deploy(ctx))

	topology.Registrations = []Registration{{Component: "workbench", Expected: 3}}
	strategy = &recordingStrategy{workloads: []string{"myapp-rhpamcentr", "myapp-kieserver"}}
	s, err = New("unregistered", c, testConfig(t), Request{}, topology, strategy, baseEnv(), fixedName("kie-unreg"))
	require.NoError(t, err)
	err = s.Deploy(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "myapp-rhpamcentr has 2 registered servers, expected 3")

	topology.Registrations = []Registration{{Component: "kie-server", Expected: 1}}
	strategy = &recordingStrategy{workloads: []string{"myapp-rhpamcentr", "myapp-kieserver"}}
	s, err = New("not-a-registrar", c, testConfig(t), Request{}, topology, strategy, baseEnv(), fixedName("kie-nreg"))
	require.NoError(t, err)
	require.EqualError(t, s.Deploy(ctx), "while deploying scenario not-a-registrar: component kie-server does not accept server registrations")
}

func TestTopology_Validate(t *testing.T) {
	valid := workbenchKieServerTopology()
	tests := []struct {
		name    string
		mutate  func(*Topology)
		wantErr string
	}{
		{name: "valid", mutate: func(*Topology) {}},
		{name: "unknown wait", mutate: func(t *Topology) { t.WaitOrder = []string{"kie-server", "database"} }, wantErr: "wait order references unknown component database"},
		{name: "incomplete wait", mutate: func(t *Topology) { t.WaitOrder = []string{"kie-server"} }, wantErr: "wait order lists 1 components out of 2"},
		{name: "twice", mutate: func(t *Topology) { t.WaitOrder = []string{"kie-server", "kie-server"} }, wantErr: "component kie-server is waited for twice"},
		{name: "duplicate", mutate: func(t *Topology) { t.Components = append(t.Components, t.Components[0]) }, wantErr: "duplicate component workbench"},
		{name: "unknown registration", mutate: func(t *Topology) { t.Registrations = []Registration{{Component: "router"}} }, wantErr: "registration references unknown component router"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topology := valid
			topology.Components = append([]Component(nil), valid.Components...)
			tt.mutate(&topology)
			err := topology.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tt.wantErr)
		})
	}
}
