// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package cluster

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

var (
	DeploymentGVK       = schema.GroupVersionKind{Group: "apps", Version: "v1", Kind: "Deployment"}
	StatefulSetGVK      = schema.GroupVersionKind{Group: "apps", Version: "v1", Kind: "StatefulSet"}
	DeploymentConfigGVK = schema.GroupVersionKind{Group: "apps.openshift.io", Version: "v1", Kind: "DeploymentConfig"}
)

// WorkloadSelector returns the pod selector of a workload.
// Deployments and StatefulSets use a label selector, DeploymentConfigs a plain label map.
func WorkloadSelector(workload *unstructured.Unstructured) map[string]string {
	if selector, found, _ := unstructured.NestedStringMap(workload.Object, "spec", "selector", "matchLabels"); found {
		return selector
	}
	selector, _, _ := unstructured.NestedStringMap(workload.Object, "spec", "selector")
	return selector
}

// WorkloadReplicas returns the declared replicas of a workload, defaulting to 1 like the API server does.
func WorkloadReplicas(workload *unstructured.Unstructured) int32 {
	replicas, found, _ := unstructured.NestedInt64(workload.Object, "spec", "replicas")
	if !found {
		return 1
	}
	return int32(replicas) //nolint:gosec
}
