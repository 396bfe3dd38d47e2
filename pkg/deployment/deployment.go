// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package deployment

import (
	"context"

	"k8s.io/apimachinery/pkg/runtime/schema"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
)

var log = logf.Log.WithName("deployment")

// Kind is the role a deployment plays in a scenario.
type Kind string

const (
	KindWorkbench           Kind = "Workbench"
	KindWorkbenchMonitoring Kind = "WorkbenchMonitoring"
	KindKieServer           Kind = "KieServer"
	KindSmartRouter         Kind = "SmartRouter"
	KindController          Kind = "Controller"
	KindDatabase            Kind = "Database"
	KindAmq                 Kind = "Amq"
	KindSso                 Kind = "Sso"
	KindDockerRegistry      Kind = "DockerRegistry"
	KindMavenRepository     Kind = "MavenRepository"
	KindLdap                Kind = "Ldap"
	KindGit                 Kind = "Git"
	KindPrometheus          Kind = "Prometheus"
	KindProcessMigration    Kind = "ProcessMigration"
)

// Credentials are the credentials used to talk to a deployed component.
type Credentials struct {
	Username string
	Password string
}

// Deployment is a handle on one logical component of a scenario, backed by a single workload.
type Deployment interface {
	Name() string
	Kind() Kind
	Namespace() string
	Credentials() Credentials
	// Scale sets the desired number of replicas and returns without waiting.
	Scale(ctx context.Context, replicas int32) error
	// WaitForScale blocks until the number of ready instances equals the desired replicas.
	WaitForScale(ctx context.Context) error
	Instances(ctx context.Context) ([]Instance, error)
	IsReady(ctx context.Context) (bool, error)
	Exists(ctx context.Context) (bool, error)
	URL(ctx context.Context) (string, error)
	SecureURL(ctx context.Context) (string, error)
}

// Spec identifies the workload backing a deployment.
type Spec struct {
	Name string
	Kind Kind
	// Service is the service exposing the workload. Defaults to Name.
	Service string
	// GVK is the workload kind. Defaults to apps/v1 Deployment.
	GVK         schema.GroupVersionKind
	Credentials Credentials
}

func (s Spec) withDefaults() Spec {
	if s.Service == "" {
		s.Service = s.Name
	}
	if s.GVK.Empty() {
		s.GVK = cluster.DeploymentGVK
	}
	return s
}
