// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package k8s

import (
	appsv1 "k8s.io/api/apps/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/api/meta/testrestmapper"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"
)

// OpenShiftKinds are the OpenShift resources handled as unstructured objects.
var OpenShiftKinds = []schema.GroupVersionKind{
	{Group: "route.openshift.io", Version: "v1", Kind: "Route"},
	{Group: "image.openshift.io", Version: "v1", Kind: "ImageStream"},
	{Group: "build.openshift.io", Version: "v1", Kind: "BuildConfig"},
	{Group: "apps.openshift.io", Version: "v1", Kind: "DeploymentConfig"},
}

// NewFakeClient creates a new fake Kubernetes client.
func NewFakeClient(initObjs ...client.Object) Client {
	return NewFakeClientWithFuncs(interceptor.Funcs{}, initObjs...)
}

// NewFakeClientWithFuncs creates a fake Kubernetes client whose calls go through the given interceptors.
// Built-in types, pods included, have a status subresource: their status is only changed through Status().
func NewFakeClientWithFuncs(funcs interceptor.Funcs, initObjs ...client.Object) Client {
	return fake.NewClientBuilder().
		WithScheme(Scheme()).
		WithRESTMapper(fakeRESTMapper()).
		WithObjects(initObjs...).
		WithStatusSubresource(&appsv1.Deployment{}, &appsv1.StatefulSet{}).
		WithInterceptorFuncs(funcs).
		Build()
}

func fakeRESTMapper() meta.RESTMapper {
	openshift := meta.NewDefaultRESTMapper(nil)
	for _, gvk := range OpenShiftKinds {
		openshift.Add(gvk, meta.RESTScopeNamespace)
	}
	return meta.MultiRESTMapper{testrestmapper.TestOnlyStaticRESTMapper(Scheme()), openshift}
}
