// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package list provides the subcommand describing the scenario catalog and the scenario projects.
//
// Example of use:
//
//	> kie-cloud-tests list --output yaml
//	- id: immutable-kieserver
//	  description: Kie-server built from sources with its containers deployed at startup
//	  profiles:
//	  - JBPM
//	  - DROOLS
//	  flavors:
//	    apb:
//	    - git-source
//	    ...
package list

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ghodss/yaml"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/util/duration"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"

	"github.com/kiegroup/kie-cloud-tests/pkg/builder"
	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/harness"
)

const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// ScenarioInfo describes a catalog scenario.
type ScenarioInfo struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	Profiles    []config.Profile `json:"profiles"`
	// Flavors maps each flavor able to deploy the scenario to the capabilities it supports.
	Flavors map[string][]builder.Capability `json:"flavors"`
}

// ProjectInfo describes a namespace created by a scenario.
type ProjectInfo struct {
	Name string `json:"name"`
	Age  string `json:"age"`
}

// Command returns the list cobra command.
func Command() *cobra.Command {
	var (
		output   string
		projects bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the catalog scenarios or the scenario projects",
		Long: `list prints the catalog scenarios with the capabilities each flavor supports.
With --projects, it prints the projects left in the cluster by scenarios instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !projects {
				return Print(cmd.OutOrStdout(), output, Scenarios())
			}
			h, err := harness.New(cmd.Flags())
			if err != nil {
				return err
			}
			defer h.Close()
			infos, err := Projects(signals.SetupSignalHandler(), h.Cluster, time.Now())
			if err != nil {
				return err
			}
			return Print(cmd.OutOrStdout(), output, infos)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", OutputText, fmt.Sprintf("Output format, one of %s, %s, %s", OutputText, OutputJSON, OutputYAML))
	cmd.Flags().BoolVar(&projects, "projects", false, "List the scenario projects of the cluster")

	return cmd
}

// Scenarios describes the catalog, sorted by identifier.
func Scenarios() []ScenarioInfo {
	catalog := builder.Catalog()
	infos := make([]ScenarioInfo, 0, len(catalog))
	for _, e := range catalog {
		info := ScenarioInfo{
			ID:          e.ID,
			Description: e.Description,
			Profiles:    e.Profiles,
			Flavors:     map[string][]builder.Capability{},
		}
		for _, flavor := range builder.Flavors() {
			if e.SupportsFlavor(flavor) {
				info.Flavors[flavor] = e.CapabilitiesFor(flavor).List()
			}
		}
		infos = append(infos, info)
	}
	return infos
}

// Projects describes the scenario projects of the cluster, oldest first.
func Projects(ctx context.Context, c *cluster.Client, now time.Time) ([]ProjectInfo, error) {
	namespaces, err := c.Projects(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]ProjectInfo, 0, len(namespaces))
	for _, ns := range namespaces {
		infos = append(infos, ProjectInfo{
			Name: ns.Name,
			Age:  duration.HumanDuration(now.Sub(ns.CreationTimestamp.Time)),
		})
	}
	return infos, nil
}

// Print writes v in the given output format.
func Print(out io.Writer, output string, v interface{}) error {
	switch output {
	case OutputJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case OutputText:
		return printText(out, v)
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

func printText(out io.Writer, v interface{}) error {
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	switch infos := v.(type) {
	case []ScenarioInfo:
		fmt.Fprintln(w, "SCENARIO\tPROFILES\tFLAVOR\tCAPABILITIES")
		for _, info := range infos {
			for _, flavor := range builder.Flavors() {
				caps, ok := info.Flavors[flavor]
				if !ok {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.ID, joinProfiles(info.Profiles), flavor, joinCapabilities(caps))
			}
		}
	case []ProjectInfo:
		fmt.Fprintln(w, "PROJECT\tAGE")
		for _, info := range infos {
			fmt.Fprintf(w, "%s\t%s\n", info.Name, info.Age)
		}
	default:
		return fmt.Errorf("cannot print %T as text", v)
	}
	return w.Flush()
}

func joinProfiles(profiles []config.Profile) string {
	s := make([]string, len(profiles))
	for i, p := range profiles {
		s[i] = string(p)
	}
	return strings.Join(s, ",")
}

func joinCapabilities(caps []builder.Capability) string {
	if len(caps) == 0 {
		return "-"
	}
	s := make([]string, len(caps))
	for i, c := range caps {
		s[i] = string(c)
	}
	return strings.Join(s, ",")
}
