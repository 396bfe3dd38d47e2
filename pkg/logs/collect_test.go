// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package logs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster/clustertest"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
)

func newKieServer(t *testing.T) []deployment.Deployment {
	t.Helper()
	ctx := context.Background()
	c := clustertest.NewClient()
	labels := map[string]string{"deployment": "myapp-kieserver"}
	require.NoError(t, c.Client.Create(ctx, &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Namespace: "kie", Name: "myapp-kieserver"},
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.To[int32](2),
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{ObjectMeta: metav1.ObjectMeta{Labels: labels}},
		},
	}))
	timeouts := config.Timeouts{DeploymentReady: time.Second, PollInterval: time.Millisecond}
	p := c.Project("kie")
	deployments := []deployment.Deployment{
		deployment.New(p, deployment.Spec{Name: "myapp-kieserver", Kind: deployment.KindKieServer}, timeouts),
		// missing workloads are skipped
		deployment.New(p, deployment.Spec{Name: "myapp-rhpamcentr", Kind: deployment.KindWorkbench}, timeouts),
	}
	return deployments
}

func TestCollect(t *testing.T) {
	ctx := context.Background()
	deployments := newKieServer(t)

	dir := t.TempDir()
	require.Equal(t, 2, Collect(ctx, deployments, dir))

	files, err := filepath.Glob(filepath.Join(dir, "kie", "myapp-kieserver", "*.log"))
	require.NoError(t, err)
	require.Len(t, files, 2)
	content, err := os.ReadFile(files[0])
	require.NoError(t, err)
	require.NotEmpty(t, content)
}

func TestCollect_NoDirectory(t *testing.T) {
	ctx := context.Background()
	deployments := newKieServer(t)

	cwd := t.TempDir()
	t.Chdir(cwd)
	require.Equal(t, 0, Collect(ctx, deployments, ""))

	entries, err := os.ReadDir(cwd)
	require.NoError(t, err)
	require.Empty(t, entries)
}
