// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package apb submits scenarios by running an Ansible Playbook Bundle in the project.
package apb

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/rand"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario"
	"github.com/kiegroup/kie-cloud-tests/pkg/utils/retry"
)

const (
	Flavor = "apb"

	// Reserved extra vars, always set by the runner.
	NamespaceKey = "namespace"
	ClusterKey   = "cluster"
	PlanIDKey    = "_apb_plan_id"

	ClusterOpenShift = "openshift"

	ServiceAccountName = "apb"
	RoleBindingName    = "apb-admin"
	RunnerLabel        = "kie-cloud-tests/apb-runner"
	containerName      = "apb"
)

var log = logf.Log.WithName("apb-strategy")

// Strategy provisions the topology with the given bundle plan.
// The scenario environment is passed to the bundle as extra vars.
type Strategy struct {
	image    string
	planID   string
	timeouts config.Timeouts
}

var _ scenario.Strategy = &Strategy{}

func New(image, planID string, timeouts config.Timeouts) *Strategy {
	return &Strategy{image: image, planID: planID, timeouts: timeouts}
}

func (s *Strategy) Flavor() string {
	return Flavor
}

// Prepare creates the service account the bundle runs as, with admin rights on the project.
func (s *Strategy) Prepare(ctx context.Context, p *cluster.Project, _ envvars.Context) (envvars.Context, error) {
	if err := p.Create(ctx, &corev1.ServiceAccount{ObjectMeta: metav1.ObjectMeta{Name: ServiceAccountName}}); err != nil {
		return envvars.Context{}, err
	}
	err := p.Create(ctx, &rbacv1.RoleBinding{
		ObjectMeta: metav1.ObjectMeta{Name: RoleBindingName},
		RoleRef:    rbacv1.RoleRef{APIGroup: rbacv1.GroupName, Kind: "ClusterRole", Name: "admin"},
		Subjects:   []rbacv1.Subject{{Kind: rbacv1.ServiceAccountKind, Name: ServiceAccountName, Namespace: p.Name()}},
	})
	return envvars.Context{}, err
}

// ExtraVars returns the variables passed to the bundle: the environment plus the reserved keys.
func (s *Strategy) ExtraVars(p *cluster.Project, env envvars.Context) map[string]string {
	return env.WithAll(map[string]string{
		NamespaceKey: p.Name(),
		ClusterKey:   ClusterOpenShift,
		PlanIDKey:    s.planID,
	}).AsMap()
}

// Submit runs the bundle to completion. A failed run returns the runner logs.
func (s *Strategy) Submit(ctx context.Context, p *cluster.Project, env envvars.Context) (envvars.Context, error) {
	extraVars, err := json.Marshal(s.ExtraVars(p, env))
	if err != nil {
		return envvars.Context{}, err
	}
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:   "apb-" + rand.String(5),
			Labels: map[string]string{RunnerLabel: s.planID},
		},
		Spec: corev1.PodSpec{
			ServiceAccountName: ServiceAccountName,
			RestartPolicy:      corev1.RestartPolicyNever,
			Containers: []corev1.Container{{
				Name:  containerName,
				Image: s.image,
				Args:  []string{"provision", "--extra-vars", string(extraVars)},
			}},
		},
	}
	if err := p.Create(ctx, pod); err != nil {
		return envvars.Context{}, err
	}
	log.Info("Running APB", "namespace", p.Name(), "pod", pod.Name, "plan", s.planID, "image", s.image)
	return envvars.Context{}, s.waitForCompletion(ctx, p, pod.Name)
}

func (s *Strategy) waitForCompletion(ctx context.Context, p *cluster.Project, name string) error {
	var failed bool
	err := retry.UntilSuccess(ctx, func(ctx context.Context) error {
		var pod corev1.Pod
		if err := p.Cluster().Client.Get(ctx, types.NamespacedName{Namespace: p.Name(), Name: name}, &pod); err != nil {
			return err
		}
		switch pod.Status.Phase {
		case corev1.PodSucceeded:
			return nil
		case corev1.PodFailed:
			failed = true
			return nil
		default:
			return errors.Errorf("APB pod %s is %s", name, pod.Status.Phase)
		}
	}, s.timeouts.APBCompletion, s.timeouts.PollInterval)
	if err != nil {
		return errors.Wrap(err, "while waiting for APB completion")
	}
	if failed {
		logs, logErr := p.PodLogs(ctx, name, containerName)
		if logErr != nil {
			log.Error(logErr, "Failed to read APB logs", "namespace", p.Name(), "pod", name)
		}
		return errors.Errorf("APB pod %s failed: %s", name, logs)
	}
	return nil
}

func (s *Strategy) AwaitReady(ctx context.Context, deployments []deployment.Deployment) error {
	return deployment.WaitSequentially(ctx, deployments)
}

// Teardown has nothing to do: the bundle only creates resources in the project.
func (s *Strategy) Teardown(context.Context, *cluster.Project) error {
	return nil
}
