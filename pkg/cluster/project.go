// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package cluster

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/rand"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/kiegroup/kie-cloud-tests/pkg/utils/retry"
)

const (
	ManagedByLabel = "app.kubernetes.io/managed-by"
	ManagedBy      = "kie-cloud-tests"
	RunIDLabel     = "kie-cloud-tests/run-id"
	ScenarioLabel  = "kie-cloud-tests/scenario"

	maxProjectNameLength = 63
	projectSuffixLength  = 4
)

// RandomProjectName returns a DNS-1123 compatible name made of the prefix followed by a short random suffix.
func RandomProjectName(prefix string) string {
	suffix := rand.String(projectSuffixLength)
	prefix = strings.Trim(strings.ToLower(prefix), "-")
	if prefix == "" {
		return suffix
	}
	if maxPrefix := maxProjectNameLength - projectSuffixLength - 1; len(prefix) > maxPrefix {
		prefix = strings.TrimRight(prefix[:maxPrefix], "-")
	}
	return prefix + "-" + suffix
}

// Project is a namespace dedicated to a single scenario run.
type Project struct {
	name    string
	cluster *Client
}

// CreateProject creates a new namespace labelled as managed by this tool.
func (c *Client) CreateProject(ctx context.Context, name string, labels map[string]string) (*Project, error) {
	ns := corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: name, Labels: map[string]string{ManagedByLabel: ManagedBy}}}
	for k, v := range labels {
		ns.Labels[k] = v
	}
	if err := c.Client.Create(ctx, &ns); err != nil {
		return nil, errors.Wrapf(err, "while creating project %s", name)
	}
	log.Info("Project created", "namespace", name)
	return &Project{name: name, cluster: c}, nil
}

// Project returns a handle on an existing namespace.
func (c *Client) Project(name string) *Project {
	return &Project{name: name, cluster: c}
}

// Projects lists the namespaces managed by this tool, oldest first.
func (c *Client) Projects(ctx context.Context) ([]corev1.Namespace, error) {
	var list corev1.NamespaceList
	if err := c.Client.List(ctx, &list, client.MatchingLabels{ManagedByLabel: ManagedBy}); err != nil {
		return nil, err
	}
	sort.SliceStable(list.Items, func(i, j int) bool {
		return list.Items[i].CreationTimestamp.Before(&list.Items[j].CreationTimestamp)
	})
	return list.Items, nil
}

// DeleteProjectsOlderThan deletes the managed namespaces created more than maxAge before now.
// It returns the names of the deleted namespaces.
func (c *Client) DeleteProjectsOlderThan(ctx context.Context, maxAge time.Duration, now time.Time) ([]string, error) {
	projects, err := c.Projects(ctx)
	if err != nil {
		return nil, err
	}
	var deleted []string
	for _, ns := range projects {
		if now.Sub(ns.CreationTimestamp.Time) < maxAge {
			continue
		}
		if err := c.Project(ns.Name).Delete(ctx); err != nil {
			return deleted, err
		}
		deleted = append(deleted, ns.Name)
	}
	return deleted, nil
}

func (p *Project) Name() string {
	return p.name
}

func (p *Project) Cluster() *Client {
	return p.cluster
}

// Delete requests the deletion of the namespace. A namespace that does not exist is not an error.
func (p *Project) Delete(ctx context.Context) error {
	ns := corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: p.name}}
	if err := p.cluster.Client.Delete(ctx, &ns); err != nil && !apierrors.IsNotFound(err) {
		return errors.Wrapf(err, "while deleting project %s", p.name)
	}
	log.Info("Project deletion requested", "namespace", p.name)
	return nil
}

// WaitForDeletion waits until the namespace is gone.
func (p *Project) WaitForDeletion(ctx context.Context, timeout, interval time.Duration) error {
	return retry.UntilSuccess(ctx, func(ctx context.Context) error {
		var ns corev1.Namespace
		err := p.cluster.Client.Get(ctx, types.NamespacedName{Name: p.name}, &ns)
		switch {
		case apierrors.IsNotFound(err):
			return nil
		case err != nil:
			return err
		default:
			return errors.Errorf("project %s still exists in phase %s", p.name, ns.Status.Phase)
		}
	}, timeout, interval)
}

// CreateSecret creates an opaque secret in the project.
func (p *Project) CreateSecret(ctx context.Context, name string, data map[string]string) error {
	secret := corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: p.name},
		Type:       corev1.SecretTypeOpaque,
		StringData: data,
	}
	return errors.Wrapf(p.cluster.Client.Create(ctx, &secret), "while creating secret %s", name)
}

// Create creates a typed object in the project.
func (p *Project) Create(ctx context.Context, obj client.Object) error {
	obj.SetNamespace(p.name)
	return errors.Wrapf(p.cluster.Client.Create(ctx, obj), "while creating %s", obj.GetName())
}

// CreateObjects creates the given objects in the project, in order.
func (p *Project) CreateObjects(ctx context.Context, objs ...*unstructured.Unstructured) error {
	for _, obj := range objs {
		obj.SetNamespace(p.name)
		if err := p.cluster.Client.Create(ctx, obj); err != nil {
			return errors.Wrapf(err, "while creating %s %s", obj.GetKind(), obj.GetName())
		}
		log.V(1).Info("Object created", "namespace", p.name, "kind", obj.GetKind(), "name", obj.GetName())
	}
	return nil
}

// ApplyManifests creates every object found in the given YAML or JSON documents.
func (p *Project) ApplyManifests(ctx context.Context, data []byte) error {
	objs, err := DecodeObjects(data)
	if err != nil {
		return err
	}
	return p.CreateObjects(ctx, objs...)
}

// ProcessTemplate reads the template at source, processes it with params and creates the resulting objects.
func (p *Project) ProcessTemplate(ctx context.Context, source string, params map[string]string) ([]*unstructured.Unstructured, error) {
	data, err := p.cluster.ReadSource(ctx, source)
	if err != nil {
		return nil, err
	}
	tpl, err := ParseTemplate(data)
	if err != nil {
		return nil, errors.Wrapf(err, "while parsing template %s", source)
	}
	objs, err := tpl.Process(params)
	if err != nil {
		return nil, err
	}
	log.Info("Processing template", "namespace", p.name, "template", tpl.Name(), "objects", len(objs))
	return objs, p.CreateObjects(ctx, objs...)
}

// CreateImageStreams creates the image streams listed at source in the project.
func (p *Project) CreateImageStreams(ctx context.Context, source string) error {
	data, err := p.cluster.ReadSource(ctx, source)
	if err != nil {
		return err
	}
	return p.ApplyManifests(ctx, data)
}

// Pods returns the pods of the project matching the given labels.
func (p *Project) Pods(ctx context.Context, selector map[string]string) ([]corev1.Pod, error) {
	var pods corev1.PodList
	if err := p.cluster.Client.List(ctx, &pods, client.InNamespace(p.name), client.MatchingLabels(selector)); err != nil {
		return nil, err
	}
	sort.Slice(pods.Items, func(i, j int) bool {
		return pods.Items[i].Name < pods.Items[j].Name
	})
	return pods.Items, nil
}

// PodLogs returns the logs of a pod container. An empty container name selects the only container of the pod.
func (p *Project) PodLogs(ctx context.Context, pod, container string) ([]byte, error) {
	logs, err := p.cluster.Clientset.CoreV1().Pods(p.name).
		GetLogs(pod, &corev1.PodLogOptions{Container: container}).
		DoRaw(ctx)
	return logs, errors.Wrapf(err, "while reading logs of pod %s", pod)
}

// URL returns the base URL of a service of the project.
func (p *Project) URL(ctx context.Context, service string, secure bool) (string, error) {
	return p.cluster.URLs.ResolveURL(ctx, p.name, service, secure)
}
