// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package test

import (
	"flag"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"
	ctrlconfig "sigs.k8s.io/controller-runtime/pkg/client/config"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kiegroup/kie-cloud-tests/pkg/builder"
	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/harness"
	logutil "github.com/kiegroup/kie-cloud-tests/pkg/utils/log"
	"github.com/kiegroup/kie-cloud-tests/pkg/utils/vault"
)

var (
	flavors     = flag.String("flavors", strings.Join(builder.Flavors(), ","), "Comma-separated flavors to test")
	testTimeout = flag.Duration("test-timeout", 10*time.Minute, "Timeout of a single check")
	ctxInit     sync.Once
	ctx         Context
	log         logr.Logger
)

func init() {
	logutil.InitLogger(logutil.WithVersion(harness.Version))
	log = logf.Log.WithName("e2e")
}

// Context encapsulates data about a specific test run
type Context struct {
	Config      config.Config
	Flavors     []string
	TestTimeout time.Duration
}

// HasFlavor returns true if the flavor is tested in this run.
func (c Context) HasFlavor(flavor string) bool {
	return contains(c.Flavors, flavor)
}

// Ctx returns the current test context, configured from the KIE_* environment variables.
func Ctx() Context {
	ctxInit.Do(initializeContext)
	return ctx
}

func initializeContext() {
	fs := pflag.NewFlagSet("e2e", pflag.ContinueOnError)
	config.BindFlags(fs)
	cfg, err := harness.LoadConfig(fs, vault.NewClient)
	if err != nil {
		panic(err)
	}
	ctx = Context{
		Config:      cfg,
		Flavors:     strings.Split(*flavors, ","),
		TestTimeout: *testTimeout,
	}
	log.Info("Test context initialized", "profile", cfg.Profile, "flavors", ctx.Flavors)
}

// NewClusterOrFatal returns a client of the cluster the current kubeconfig points to.
func NewClusterOrFatal(t *testing.T) *cluster.Client {
	t.Helper()
	restCfg, err := ctrlconfig.GetConfig()
	if err != nil {
		t.Fatalf("while loading the kubeconfig: %v", err)
	}
	c, err := cluster.NewClient(restCfg, Ctx().Config.PinImageDigests)
	if err != nil {
		t.Fatal(err)
	}
	return c
}
