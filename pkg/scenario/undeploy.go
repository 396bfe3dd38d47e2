// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package scenario

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/kiegroup/kie-cloud-tests/pkg/logs"
	"github.com/kiegroup/kie-cloud-tests/pkg/tracing"
	"github.com/kiegroup/kie-cloud-tests/pkg/utils/metrics"
)

// Undeploy collects the logs of every instance, removes the flavor resources, scales the ready deployments
// down and deletes the project.
// All teardown steps run even if one of them fails, the failures are returned together.
func (s *Scenario) Undeploy(ctx context.Context) (err error) {
	if s.state != StateDeployed && s.state != StateFailed {
		return errors.Wrapf(ErrInvalidState, "cannot undeploy scenario %s in state %s", s.name, s.state)
	}
	if s.project == nil {
		// deployment failed before anything was created
		s.state = StateUndeployed
		return nil
	}
	tx, ctx := tracing.NewTransaction(ctx, s.tracer, s.name, tracing.TxTypeUndeploy)
	defer tracing.EndTransaction(tx)

	start := time.Now()
	s.state = StateUndeploying
	log.Info("Undeploying scenario", "scenario", s.name, "namespace", s.Namespace())
	defer func() {
		metrics.ObserveScenario(s.name, tracing.TxTypeUndeploy, err, time.Since(start))
		if err != nil {
			s.state = StateFailed
			err = tracing.CaptureError(ctx, errors.Wrapf(err, "while undeploying scenario %s", s.name))
			return
		}
		s.state = StateUndeployed
		s.torndown = true
		log.Info("Scenario undeployed", "scenario", s.name, "namespace", s.Namespace(), "duration", time.Since(start))
	}()

	s.collectLogs(ctx)
	var result *multierror.Error
	// an operator would otherwise reconcile the scaled down workloads back up
	if err := s.strategy.Teardown(ctx, s.project); err != nil {
		result = multierror.Append(result, errors.Wrapf(err, "while tearing down %s resources", s.strategy.Flavor()))
	}
	if err := s.scaleDown(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.deleteProject(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func (s *Scenario) collectLogs(ctx context.Context) {
	defer tracing.Span(&ctx)()
	logs.Collect(ctx, s.deployments, s.cfg.LogsDir)
}

// scaleDown scales every live and ready deployment to zero, one after the other.
func (s *Scenario) scaleDown(ctx context.Context) error {
	defer tracing.Span(&ctx)()
	var result *multierror.Error
	for _, d := range s.deployments {
		ready, err := d.IsReady(ctx)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if !ready {
			continue
		}
		if err := d.Scale(ctx, 0); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if err := d.WaitForScale(ctx); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (s *Scenario) deleteProject(ctx context.Context) error {
	defer tracing.Span(&ctx)()
	if err := s.project.Delete(ctx); err != nil {
		return err
	}
	return s.project.WaitForDeletion(ctx, s.cfg.Timeouts.ProjectDeletion, s.cfg.Timeouts.PollInterval)
}
