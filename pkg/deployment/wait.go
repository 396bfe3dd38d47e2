// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package deployment

import (
	"context"

	"github.com/pkg/errors"

	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/utils/retry"
)

// WaitSequentially waits for each deployment to scale, one after the other, in the given order.
// The order matters: components depending on others are listed after them.
func WaitSequentially(ctx context.Context, deployments []Deployment) error {
	for _, d := range deployments {
		if err := d.WaitForScale(ctx); err != nil {
			return err
		}
	}
	return nil
}

// WaitForExistence waits until the workload backing d has been created.
func WaitForExistence(ctx context.Context, d Deployment, timeouts config.Timeouts) error {
	err := retry.UntilSuccess(ctx, func(ctx context.Context) error {
		exists, err := d.Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return errors.Errorf("%s %s does not exist yet", d.Kind(), d.Name())
		}
		return nil
	}, timeouts.DeploymentReady, timeouts.PollInterval)
	return errors.Wrapf(err, "while waiting for %s to be created", d.Name())
}

// WaitForServerRegistration waits until r sees exactly expected kie-servers.
func WaitForServerRegistration(ctx context.Context, r Registrar, expected int, timeouts config.Timeouts) error {
	err := retry.UntilSuccess(ctx, func(ctx context.Context) error {
		registered, err := r.RegisteredServers(ctx)
		if err != nil {
			return err
		}
		if registered != expected {
			return errors.Errorf("%s has %d registered servers, expected %d", r.Name(), registered, expected)
		}
		return nil
	}, timeouts.ServerRegistration, timeouts.PollInterval)
	return errors.Wrapf(err, "while waiting for server registration on %s", r.Name())
}
