// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package cluster

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/kiegroup/kie-cloud-tests/pkg/utils/k8s"
)

var routeListGVK = schema.GroupVersionKind{Group: "route.openshift.io", Version: "v1", Kind: "RouteList"}

// URLResolver returns the base URL through which a service can be reached from the test process.
type URLResolver interface {
	ResolveURL(ctx context.Context, namespace, service string, secure bool) (string, error)
}

// RouteResolver resolves URLs from OpenShift routes, falling back to the in-cluster service address
// when no matching route exists or the route API is not served.
type RouteResolver struct {
	Client k8s.Client
}

func (r RouteResolver) ResolveURL(ctx context.Context, namespace, service string, secure bool) (string, error) {
	routes := &unstructured.UnstructuredList{}
	routes.SetGroupVersionKind(routeListGVK)
	err := r.Client.List(ctx, routes, client.InNamespace(namespace))
	switch {
	case meta.IsNoMatchError(err) || runtime.IsNotRegisteredError(err):
		return ServiceURL(ctx, r.Client, namespace, service, secure)
	case err != nil:
		return "", errors.Wrapf(err, "while listing routes in %s", namespace)
	}
	for _, route := range routes.Items {
		if url, ok := routeURL(route, service, secure); ok {
			return url, nil
		}
	}
	return ServiceURL(ctx, r.Client, namespace, service, secure)
}

func routeURL(route unstructured.Unstructured, service string, secure bool) (string, bool) {
	target, _, _ := unstructured.NestedString(route.Object, "spec", "to", "name")
	host, _, _ := unstructured.NestedString(route.Object, "spec", "host")
	_, hasTLS, _ := unstructured.NestedMap(route.Object, "spec", "tls")
	if target != service || host == "" || hasTLS != secure {
		return "", false
	}
	return fmt.Sprintf("%s://%s", urlScheme(secure), host), true
}

// ServiceURL returns the in-cluster URL of a service, picking its https port when secure is set.
func ServiceURL(ctx context.Context, c k8s.Client, namespace, service string, secure bool) (string, error) {
	var svc corev1.Service
	if err := c.Get(ctx, types.NamespacedName{Namespace: namespace, Name: service}, &svc); err != nil {
		return "", errors.Wrapf(err, "while resolving URL of service %s", service)
	}
	port, ok := servicePort(svc, secure)
	if !ok {
		return "", errors.Errorf("service %s has no %s port", service, urlScheme(secure))
	}
	return fmt.Sprintf("%s://%s:%d", urlScheme(secure), k8s.GetServiceDNSName(svc), port), nil
}

func servicePort(svc corev1.Service, secure bool) (int32, bool) {
	for _, p := range svc.Spec.Ports {
		if isSecurePort(p) == secure {
			return p.Port, true
		}
	}
	return 0, false
}

func isSecurePort(p corev1.ServicePort) bool {
	return p.Name == "https" || p.Port == 443 || p.Port == 8443
}

func urlScheme(secure bool) string {
	if secure {
		return "https"
	}
	return "http"
}

// StaticURLResolver resolves URLs from a fixed map keyed by service name.
// Secure URLs are looked up under "<service>:https" first.
type StaticURLResolver map[string]string

func (s StaticURLResolver) ResolveURL(_ context.Context, _, service string, secure bool) (string, error) {
	if secure {
		if url, ok := s[service+":https"]; ok {
			return url, nil
		}
	}
	if url, ok := s[service]; ok {
		return url, nil
	}
	return "", errors.Errorf("no URL known for service %s", service)
}
