// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package deployment

import (
	"context"

	"github.com/pkg/errors"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
)

// Instance is a single pod of a deployment.
type Instance struct {
	Name    string
	project *cluster.Project
}

func (i Instance) Logs(ctx context.Context) (string, error) {
	logs, err := i.project.PodLogs(ctx, i.Name, "")
	return string(logs), err
}

// RunCommand executes cmd in the instance and returns its standard output.
func (i Instance) RunCommand(ctx context.Context, cmd ...string) (string, error) {
	stdout, stderr, err := i.project.Exec(ctx, i.Name, "", cmd)
	if err != nil {
		return stdout, errors.Wrapf(err, "stderr: %s", stderr)
	}
	return stdout, nil
}
