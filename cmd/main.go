// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package main

import (
	"fmt"
	"os"

	_ "github.com/KimMachineGun/automemlimit" // set GOMEMLIMIT to the container memory limit
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	_ "k8s.io/client-go/plugin/pkg/client/auth" // allow cloud provider authentication
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kiegroup/kie-cloud-tests/cmd/cleanup"
	"github.com/kiegroup/kie-cloud-tests/cmd/deploy"
	"github.com/kiegroup/kie-cloud-tests/cmd/list"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/harness"
	"github.com/kiegroup/kie-cloud-tests/pkg/utils/log"
)

func main() {
	// update GOMAXPROCS to container cpu limit if necessary
	_, err := maxprocs.Set(maxprocs.Logger(func(s string, i ...interface{}) {
		logf.Log.WithName("maxprocs").V(1).Info(fmt.Sprintf(s, i...))
	}))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error setting GOMAXPROCS:", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:          harness.ServiceName,
		Short:        "Deploy and tear down KIE scenarios on OpenShift",
		Version:      harness.Version,
		SilenceUsage: true,
	}
	config.BindFlags(rootCmd.PersistentFlags())
	log.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(deploy.Command(), cleanup.Command(), list.Command())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
