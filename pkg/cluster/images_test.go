// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package cluster

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/kiegroup/kie-cloud-tests/pkg/utils/k8s"
)

const testDigest = "sha256:0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func imageStream() *unstructured.Unstructured {
	is := &unstructured.Unstructured{Object: map[string]interface{}{
		"spec": map[string]interface{}{
			"tags": []interface{}{
				map[string]interface{}{"name": "7.13", "from": map[string]interface{}{"kind": "DockerImage", "name": "registry.example.com/rhpam/kieserver:7.13"}},
				map[string]interface{}{"name": "7.12", "from": map[string]interface{}{"kind": "DockerImage", "name": "registry.example.com/rhpam/kieserver:7.12"}},
			},
		},
		"status": map[string]interface{}{
			"tags": []interface{}{
				map[string]interface{}{"tag": "7.13", "items": []interface{}{
					map[string]interface{}{"dockerImageReference": "registry.example.com/rhpam/kieserver@" + testDigest},
				}},
			},
		},
	}}
	is.SetGroupVersionKind(imageStreamGVK)
	is.SetNamespace("openshift")
	is.SetName("rhpam-kieserver")
	return is
}

func TestImageResolver_Resolve(t *testing.T) {
	r, err := NewImageResolver(k8s.NewFakeClient(imageStream()), 8, false)
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := r.Resolve(ctx, "openshift", "rhpam-kieserver", "7.13")
	require.NoError(t, err)
	require.Equal(t, "registry.example.com/rhpam/kieserver@"+testDigest, ref)

	ref, err = r.ResolveReference(ctx, "istag:openshift/rhpam-kieserver:7.12")
	require.NoError(t, err)
	require.Equal(t, "registry.example.com/rhpam/kieserver:7.12", ref)

	_, err = r.Resolve(ctx, "openshift", "rhpam-kieserver", "7.0")
	require.EqualError(t, err, "image stream rhpam-kieserver has no tag 7.0")
	_, err = r.ResolveReference(ctx, "istag:rhpam-kieserver")
	require.Error(t, err)

	ref, err = r.ResolveReference(ctx, "quay.io/keycloak/keycloak:legacy")
	require.NoError(t, err)
	require.Equal(t, "quay.io/keycloak/keycloak:legacy", ref)
}

func TestImageResolver_PinDigests(t *testing.T) {
	r, err := NewImageResolver(k8s.NewFakeClient(imageStream()), 8, true)
	require.NoError(t, err)
	calls := 0
	r.digest = func(ref string) (string, error) {
		calls++
		if ref == "quay.io/unknown/image:1" {
			return "", errors.New("not found")
		}
		return testDigest, nil
	}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ref, err := r.ResolveReference(ctx, "quay.io/keycloak/keycloak:legacy")
		require.NoError(t, err)
		require.Equal(t, "quay.io/keycloak/keycloak@"+testDigest, ref)
	}
	require.Equal(t, 1, calls)

	// already pinned references are left untouched
	ref, err := r.Resolve(ctx, "openshift", "rhpam-kieserver", "7.13")
	require.NoError(t, err)
	require.Equal(t, "registry.example.com/rhpam/kieserver@"+testDigest, ref)
	require.Equal(t, 1, calls)

	_, err = r.ResolveReference(ctx, "quay.io/unknown/image:1")
	require.EqualError(t, err, "while getting digest of quay.io/unknown/image:1: not found")
}
