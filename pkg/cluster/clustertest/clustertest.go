// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package clustertest provides an in-memory cluster for unit tests.
// Workloads created or scaled through it get one pod per declared replica, which is enough
// to exercise readiness polling without a real cluster.
package clustertest

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/rand"
	fakeclientset "k8s.io/client-go/kubernetes/fake"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/apiutil"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/utils/httpclient"
	"github.com/kiegroup/kie-cloud-tests/pkg/utils/k8s"
)

var workloadKinds = map[schema.GroupKind]bool{
	cluster.DeploymentGVK.GroupKind():       true,
	cluster.StatefulSetGVK.GroupKind():      true,
	cluster.DeploymentConfigGVK.GroupKind(): true,
}

// Options tune the behaviour of the fake cluster.
type Options struct {
	// UnreadyPods makes workload pods run without ever becoming ready.
	UnreadyPods bool
	// NamespaceDeleteError is returned when deleting a namespace, if set.
	NamespaceDeleteError error
	// URLs are the service URLs returned by the cluster.
	URLs cluster.StaticURLResolver
}

// NewClient returns a fake cluster whose workloads become ready as soon as they are scaled.
func NewClient(objs ...client.Object) *cluster.Client {
	return New(Options{}, objs...)
}

// New returns a fake cluster configured with opts.
func New(opts Options, objs ...client.Object) *cluster.Client {
	sync := func(ctx context.Context, c client.WithWatch, obj client.Object) error {
		return syncPods(ctx, c, obj, !opts.UnreadyPods)
	}
	c := k8s.NewFakeClientWithFuncs(interceptor.Funcs{
		Create: func(ctx context.Context, c client.WithWatch, obj client.Object, createOpts ...client.CreateOption) error {
			if err := c.Create(ctx, obj, createOpts...); err != nil {
				return err
			}
			return sync(ctx, c, obj)
		},
		Update: func(ctx context.Context, c client.WithWatch, obj client.Object, updateOpts ...client.UpdateOption) error {
			if err := c.Update(ctx, obj, updateOpts...); err != nil {
				return err
			}
			return sync(ctx, c, obj)
		},
		Patch: func(ctx context.Context, c client.WithWatch, obj client.Object, patch client.Patch, patchOpts ...client.PatchOption) error {
			if err := c.Patch(ctx, obj, patch, patchOpts...); err != nil {
				return err
			}
			return sync(ctx, c, obj)
		},
		Delete: func(ctx context.Context, c client.WithWatch, obj client.Object, deleteOpts ...client.DeleteOption) error {
			if _, isNamespace := obj.(*corev1.Namespace); isNamespace && opts.NamespaceDeleteError != nil {
				return opts.NamespaceDeleteError
			}
			return c.Delete(ctx, obj, deleteOpts...)
		},
	}, objs...)

	images, err := cluster.NewImageResolver(c, 16, false)
	if err != nil {
		panic(err)
	}
	urls := opts.URLs
	if urls == nil {
		urls = cluster.StaticURLResolver{}
	}
	return &cluster.Client{
		Client:    c,
		Clientset: fakeclientset.NewSimpleClientset(),
		URLs:      urls,
		Images:    images,
		HTTP:      httpclient.New("clustertest"),
	}
}

// syncPods makes the number of pods matching a workload selector equal to its replicas.
func syncPods(ctx context.Context, c client.WithWatch, obj client.Object, ready bool) error {
	gvk, err := apiutil.GVKForObject(obj, c.Scheme())
	if err != nil || !workloadKinds[gvk.GroupKind()] {
		return nil //nolint:nilerr
	}
	workload := &unstructured.Unstructured{}
	workload.SetGroupVersionKind(gvk)
	if err := c.Get(ctx, client.ObjectKeyFromObject(obj), workload); err != nil {
		return err
	}
	replicas := int(cluster.WorkloadReplicas(workload))
	selector := cluster.WorkloadSelector(workload)
	labels, _, _ := unstructured.NestedStringMap(workload.Object, "spec", "template", "metadata", "labels")
	if len(labels) == 0 {
		labels = selector
	}

	var pods corev1.PodList
	if err := c.List(ctx, &pods, client.InNamespace(workload.GetNamespace()), client.MatchingLabels(selector)); err != nil {
		return err
	}
	for i := len(pods.Items); i < replicas; i++ {
		pod := newPod(workload.GetNamespace(), workload.GetName()+"-"+rand.String(5), labels, ready)
		if err := c.Create(ctx, &pod); err != nil {
			return err
		}
	}
	for i := replicas; i < len(pods.Items); i++ {
		if err := c.Delete(ctx, &pods.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

func newPod(namespace, name string, labels map[string]string, ready bool) corev1.Pod {
	condition := corev1.ConditionFalse
	if ready {
		condition = corev1.ConditionTrue
	}
	return corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name, Labels: labels},
		Spec:       corev1.PodSpec{Containers: []corev1.Container{{Name: "main"}}},
		Status: corev1.PodStatus{
			Phase: corev1.PodRunning,
			Conditions: []corev1.PodCondition{
				{Type: corev1.PodReady, Status: condition},
				{Type: corev1.ContainersReady, Status: condition},
			},
		},
	}
}

// SetPodPhase updates the phase of a pod, simulating a pod that ran to completion or failed.
func SetPodPhase(ctx context.Context, c *cluster.Client, namespace, name string, phase corev1.PodPhase) error {
	var pod corev1.Pod
	if err := c.Client.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, &pod); err != nil {
		return err
	}
	pod.Status.Phase = phase
	return c.Client.Status().Update(ctx, &pod)
}
