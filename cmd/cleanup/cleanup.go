// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package cleanup provides the subcommand deleting leftover scenario projects.
package cleanup

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/harness"
)

const defaultMaxAge = 24 * time.Hour

// Command returns the cleanup cobra command.
func Command() *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete scenario projects older than a given age",
		Long: `cleanup deletes the projects created by scenarios that were kept or not undeployed.
This should typically be run in the context of some form of scheduler.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := harness.New(cmd.Flags())
			if err != nil {
				return err
			}
			defer h.Close()
			return Run(signals.SetupSignalHandler(), h.Cluster, maxAge, time.Now(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVar(&maxAge, "older-than", defaultMaxAge, "Minimum age of the projects to delete")

	return cmd
}

// Run deletes the managed projects created more than maxAge before now and prints their names.
func Run(ctx context.Context, c *cluster.Client, maxAge time.Duration, now time.Time, out io.Writer) error {
	if maxAge < 0 {
		return fmt.Errorf("maximum age must not be negative, got %s", maxAge)
	}
	deleted, err := c.DeleteProjectsOlderThan(ctx, maxAge, now)
	for _, name := range deleted {
		fmt.Fprintln(out, name)
	}
	return err
}
