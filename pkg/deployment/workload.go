// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package deployment

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/utils/k8s"
	"github.com/kiegroup/kie-cloud-tests/pkg/utils/metrics"
	"github.com/kiegroup/kie-cloud-tests/pkg/utils/retry"
)

// Workload is the Deployment implementation shared by all kinds of components.
type Workload struct {
	spec     Spec
	project  *cluster.Project
	timeouts config.Timeouts
	// desired is the last value passed to Scale, nil until Scale is called.
	desired *int32
}

var _ Deployment = &Workload{}

func New(p *cluster.Project, spec Spec, timeouts config.Timeouts) *Workload {
	return &Workload{spec: spec.withDefaults(), project: p, timeouts: timeouts}
}

func (w *Workload) Name() string {
	return w.spec.Name
}

func (w *Workload) Kind() Kind {
	return w.spec.Kind
}

func (w *Workload) Namespace() string {
	return w.project.Name()
}

func (w *Workload) Credentials() Credentials {
	return w.spec.Credentials
}

func (w *Workload) Project() *cluster.Project {
	return w.project
}

func (w *Workload) String() string {
	return fmt.Sprintf("%s %s/%s", w.spec.Kind, w.Namespace(), w.spec.Name)
}

func (w *Workload) get(ctx context.Context) (*unstructured.Unstructured, error) {
	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(w.spec.GVK)
	err := w.project.Cluster().Client.Get(ctx, types.NamespacedName{Namespace: w.Namespace(), Name: w.spec.Name}, obj)
	return obj, err
}

func (w *Workload) Exists(ctx context.Context) (bool, error) {
	_, err := w.get(ctx)
	switch {
	case apierrors.IsNotFound(err):
		return false, nil
	case err != nil:
		return false, err
	default:
		return true, nil
	}
}

func (w *Workload) Scale(ctx context.Context, replicas int32) error {
	if replicas < 0 {
		return errors.Errorf("cannot scale %s to %d replicas", w.spec.Name, replicas)
	}
	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(w.spec.GVK)
	obj.SetNamespace(w.Namespace())
	obj.SetName(w.spec.Name)
	patch := []byte(fmt.Sprintf(`{"spec":{"replicas":%d}}`, replicas))
	if err := w.project.Cluster().Client.Patch(ctx, obj, client.RawPatch(types.MergePatchType, patch)); err != nil {
		return errors.Wrapf(err, "while scaling %s to %d", w.spec.Name, replicas)
	}
	log.V(1).Info("Scaled", "namespace", w.Namespace(), "name", w.spec.Name, "replicas", replicas)
	w.desired = &replicas
	return nil
}

// desiredReplicas is the last scaled value, or the replicas the workload declares.
func (w *Workload) desiredReplicas(ctx context.Context) (int32, error) {
	if w.desired != nil {
		return *w.desired, nil
	}
	obj, err := w.get(ctx)
	if err != nil {
		return 0, err
	}
	return cluster.WorkloadReplicas(obj), nil
}

// notReadyError reports a workload that does not have the desired ready instances yet.
type notReadyError struct {
	msg string
}

func (e *notReadyError) Error() string {
	return e.msg
}

// readiness compares the live instances of the workload with the desired replicas.
// It returns a *notReadyError while they differ.
func (w *Workload) readiness(ctx context.Context) (int32, error) {
	desired, err := w.desiredReplicas(ctx)
	if err != nil {
		return 0, err
	}
	pods, err := w.livePods(ctx)
	if err != nil {
		return desired, err
	}
	readyCount := 0
	for _, pod := range pods {
		if k8s.IsPodReady(pod) {
			readyCount++
		}
	}
	if len(pods) != int(desired) || readyCount != int(desired) {
		return desired, &notReadyError{
			msg: fmt.Sprintf("%s has %d ready instances out of %d, expected %d", w, readyCount, len(pods), desired),
		}
	}
	return desired, nil
}

func (w *Workload) IsReady(ctx context.Context) (bool, error) {
	_, err := w.readiness(ctx)
	var notReady *notReadyError
	switch {
	case err == nil:
		return true, nil
	case apierrors.IsNotFound(err) || errors.As(err, &notReady):
		return false, nil
	default:
		return false, err
	}
}

func (w *Workload) WaitForScale(ctx context.Context) error {
	start := time.Now()
	var desired int32
	timeout := w.timeouts.DeploymentReady
	if w.desired != nil && *w.desired == 0 {
		timeout = w.timeouts.ScaleDown
	}
	log.Info("Waiting for deployment to scale", "namespace", w.Namespace(), "name", w.spec.Name, "timeout", timeout)
	err := retry.UntilSuccess(ctx, func(ctx context.Context) error {
		var err error
		desired, err = w.readiness(ctx)
		return err
	}, timeout, w.timeouts.PollInterval)
	if err != nil {
		if ctx.Err() == nil {
			metrics.ReadinessTimeouts.WithLabelValues(string(w.spec.Kind)).Inc()
		}
		return errors.Wrapf(err, "while waiting for %s to scale", w)
	}
	log.Info("Deployment scaled", "namespace", w.Namespace(), "name", w.spec.Name, "replicas", desired, "duration", time.Since(start))
	return nil
}

func (w *Workload) livePods(ctx context.Context) ([]corev1.Pod, error) {
	obj, err := w.get(ctx)
	if err != nil {
		return nil, err
	}
	selector := cluster.WorkloadSelector(obj)
	if len(selector) == 0 {
		return nil, errors.Errorf("%s has no pod selector", w)
	}
	pods, err := w.project.Pods(ctx, selector)
	if err != nil {
		return nil, err
	}
	return k8s.LivePods(pods), nil
}

func (w *Workload) Instances(ctx context.Context) ([]Instance, error) {
	pods, err := w.livePods(ctx)
	if err != nil {
		return nil, err
	}
	instances := make([]Instance, 0, len(pods))
	for _, pod := range pods {
		instances = append(instances, Instance{Name: pod.Name, project: w.project})
	}
	return instances, nil
}

func (w *Workload) URL(ctx context.Context) (string, error) {
	return w.project.URL(ctx, w.spec.Service, false)
}

func (w *Workload) SecureURL(ctx context.Context) (string, error) {
	return w.project.URL(ctx, w.spec.Service, true)
}
