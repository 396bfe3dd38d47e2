// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package logs archives the logs of deployed instances.
package logs

import (
	"context"
	"os"
	"path/filepath"

	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
)

var log = logf.Log.WithName("logs")

// Collect writes the logs of every instance of every deployment to <dir>/<namespace>/<deployment>/<instance>.log.
// Failures are logged and skipped: collecting logs must never prevent a teardown.
// Nothing is collected when dir is empty. It returns the number of log files written.
func Collect(ctx context.Context, deployments []deployment.Deployment, dir string) int {
	if dir == "" {
		log.Info("No logs directory configured, skipping log collection")
		return 0
	}
	written := 0
	for _, d := range deployments {
		instances, err := d.Instances(ctx)
		if err != nil {
			log.Error(err, "Failed to list instances", "namespace", d.Namespace(), "deployment", d.Name())
			continue
		}
		target := filepath.Join(dir, d.Namespace(), d.Name())
		if err := os.MkdirAll(target, 0o755); err != nil {
			log.Error(err, "Failed to create log directory", "dir", target)
			continue
		}
		for _, instance := range instances {
			content, err := instance.Logs(ctx)
			if err != nil {
				log.Error(err, "Failed to read instance logs", "namespace", d.Namespace(), "instance", instance.Name)
				continue
			}
			path := filepath.Join(target, instance.Name+".log")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec
				log.Error(err, "Failed to write instance logs", "path", path)
				continue
			}
			written++
		}
	}
	log.Info("Instance logs collected", "dir", dir, "files", written)
	return written
}
