// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package builder

import (
	"fmt"
	"sort"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	kieappv2 "github.com/kiegroup/kie-cloud-tests/pkg/apis/kieapp/v2"
	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario/apb"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario/operator"
	"github.com/kiegroup/kie-cloud-tests/pkg/scenario/template"
)

// Scenario identifiers.
const (
	WorkbenchKieServer                       = "workbench-kieserver"
	WorkbenchKieServerDatabase               = "workbench-kieserver-database"
	WorkbenchRuntimeSmartRouterTwoKieServers = "workbench-runtime-smartrouter-two-kieservers-two-databases"
	KieServerAMQ                             = "kieserver-amq"
	ImmutableKieServer                       = "immutable-kieserver"
)

const (
	applicationNameRef = "${" + envvars.ApplicationName + "}"
	// edgeTemplateSuffix selects the edge terminated variant of a template.
	edgeTemplateSuffix = "-edge"
)

// Component names shared by the catalog topologies.
const (
	ComponentWorkbench   = "workbench"
	ComponentKieServer   = "kie-server"
	ComponentSmartRouter = "smart-router"
	ComponentDatabase    = "database"
	ComponentMigration   = "process-migration"
)

// flavorCapabilities is what each flavor implements, whatever the scenario.
var flavorCapabilities = map[string]CapabilitySet{
	template.Flavor: NewCapabilitySet(
		CapabilitySSO, CapabilityLDAP, CapabilityPrometheus, CapabilitySecretAdminCredentials,
		CapabilityEdgeTermination, CapabilityGitSource, CapabilityMavenRepository, CapabilityAMQ,
		CapabilityHostnames, CapabilityDockerRegistry,
	),
	apb.Flavor: NewCapabilitySet(
		CapabilitySSO, CapabilityGitSource, CapabilityMavenRepository,
	),
	operator.Flavor: NewCapabilitySet(
		CapabilitySSO, CapabilityLDAP, CapabilityProcessMigration, CapabilitySecretAdminCredentials,
		CapabilityGitSource, CapabilityMavenRepository, CapabilityDatabase, CapabilityReplicas,
		CapabilityUpgrade, CapabilityHostnames, CapabilityAMQ,
	),
}

// Flavors returns the supported deployment flavors.
func Flavors() []string {
	return []string{template.Flavor, apb.Flavor, operator.Flavor}
}

// Entry is a named scenario of the catalog.
type Entry struct {
	ID          string
	Description string
	// Profiles the scenario can be deployed with.
	Profiles []config.Profile
	// Templates are the configuration keys of the templates processed by the template flavor, in order.
	Templates []string
	// APBPlan is the bundle plan of the APB flavor, empty when the scenario has no bundle.
	APBPlan string
	// Capabilities the scenario can use, the flavor restricts them further.
	Capabilities CapabilitySet
	// AMQ scenarios always deploy a broker, they need a flavor supporting it.
	AMQ bool

	// topology returns the components created by the templates and the bundle.
	topology func(profile config.Profile) scenario.Topology
	// kieApp returns the resource submitted by the operator flavor.
	kieApp func(profile config.Profile) *kieappv2.KieApp
	// consoleKind is the role of the KieApp console.
	consoleKind deployment.Kind
}

// SupportsProfile returns true if the scenario can be deployed with the given profile.
func (e Entry) SupportsProfile(profile config.Profile) bool {
	for _, p := range e.Profiles {
		if p == profile {
			return true
		}
	}
	return false
}

// SupportsFlavor returns true if the scenario can be deployed with the given flavor.
func (e Entry) SupportsFlavor(flavor string) bool {
	switch flavor {
	case template.Flavor:
		return len(e.Templates) > 0
	case apb.Flavor:
		return e.APBPlan != "" && !e.AMQ
	case operator.Flavor:
		return e.kieApp != nil
	default:
		return false
	}
}

// CapabilitiesFor returns the capabilities of the scenario with the given flavor.
func (e Entry) CapabilitiesFor(flavor string) CapabilitySet {
	return e.Capabilities.Intersect(flavorCapabilities[flavor])
}

var commonCapabilities = []Capability{
	CapabilitySSO, CapabilityLDAP, CapabilityPrometheus, CapabilitySecretAdminCredentials,
	CapabilityEdgeTermination, CapabilityMavenRepository, CapabilityHostnames, CapabilityDockerRegistry,
	CapabilityReplicas, CapabilityUpgrade,
}

func capabilities(extra ...Capability) CapabilitySet {
	return NewCapabilitySet(append(append([]Capability{}, commonCapabilities...), extra...)...)
}

var catalog = []Entry{
	{
		ID:           WorkbenchKieServer,
		Description:  "Workbench with one kie-server registered to it",
		Profiles:     []config.Profile{config.ProfileJBPM, config.ProfileDrools},
		Templates:    []string{WorkbenchKieServer},
		APBPlan:      "authoring",
		Capabilities: capabilities(CapabilityGitSource),
		topology: func(profile config.Profile) scenario.Topology {
			return scenario.Topology{
				Components: []scenario.Component{
					workbench(profile, deployment.KindWorkbench, ""),
					kieServer(ComponentKieServer, "-kieserver", envvars.SingleKieServerSSOClientKeys),
				},
				Registrations: []scenario.Registration{{Component: ComponentWorkbench, Expected: 1}},
			}
		},
		kieApp: func(profile config.Profile) *kieappv2.KieApp {
			return newKieApp(WorkbenchKieServer, environment(profile, kieappv2.RhpamTrial, kieappv2.RhdmTrial),
				kieappv2.KieAppObjects{
					Console: &kieappv2.ConsoleObject{},
					Servers: []kieappv2.KieServerSet{{}},
				})
		},
		consoleKind: deployment.KindWorkbench,
	},
	{
		ID:           WorkbenchKieServerDatabase,
		Description:  "Workbench with one kie-server persisting to a PostgreSQL database",
		Profiles:     []config.Profile{config.ProfileJBPM},
		Templates:    []string{WorkbenchKieServerDatabase},
		APBPlan:      "authoring-postgresql",
		Capabilities: capabilities(CapabilityDatabase, CapabilityProcessMigration, CapabilityGitSource),
		topology: func(profile config.Profile) scenario.Topology {
			return scenario.Topology{
				Components: []scenario.Component{
					workbench(profile, deployment.KindWorkbench, ""),
					kieServer(ComponentKieServer, "-kieserver", envvars.SingleKieServerSSOClientKeys),
					database(ComponentDatabase, "-postgresql"),
				},
				WaitOrder:     []string{ComponentDatabase, ComponentKieServer, ComponentWorkbench},
				Registrations: []scenario.Registration{{Component: ComponentWorkbench, Expected: 1}},
			}
		},
		kieApp: func(profile config.Profile) *kieappv2.KieApp {
			return newKieApp(WorkbenchKieServerDatabase, kieappv2.RhpamAuthoring, kieappv2.KieAppObjects{
				Console: &kieappv2.ConsoleObject{},
				Servers: []kieappv2.KieServerSet{{Database: &kieappv2.DatabaseObject{Type: kieappv2.DatabasePostgreSQL}}},
			})
		},
		consoleKind: deployment.KindWorkbench,
	},
	{
		ID:           WorkbenchRuntimeSmartRouterTwoKieServers,
		Description:  "Monitoring workbench and smart router with two kie-servers, each with its own MySQL database",
		Profiles:     []config.Profile{config.ProfileJBPM},
		Templates:    []string{WorkbenchRuntimeSmartRouterTwoKieServers},
		Capabilities: capabilities(CapabilityDatabase, CapabilityProcessMigration),
		topology: func(profile config.Profile) scenario.Topology {
			return scenario.Topology{
				Components: []scenario.Component{
					workbench(profile, deployment.KindWorkbenchMonitoring, "mon"),
					smartRouter(),
					kieServer(indexed(ComponentKieServer, 1), "-kieserver-1", envvars.KieServerSSOClientKeys(1)),
					kieServer(indexed(ComponentKieServer, 2), "-kieserver-2", envvars.KieServerSSOClientKeys(2)),
					database(indexed(ComponentDatabase, 1), "-mysql-1"),
					database(indexed(ComponentDatabase, 2), "-mysql-2"),
				},
				WaitOrder: []string{
					ComponentWorkbench, ComponentSmartRouter,
					indexed(ComponentDatabase, 1), indexed(ComponentKieServer, 1),
					indexed(ComponentDatabase, 2), indexed(ComponentKieServer, 2),
				},
				Registrations: []scenario.Registration{
					{Component: ComponentWorkbench, Expected: 2},
					{Component: ComponentSmartRouter, Expected: 2},
				},
			}
		},
		kieApp: func(profile config.Profile) *kieappv2.KieApp {
			mysql := func() *kieappv2.DatabaseObject {
				return &kieappv2.DatabaseObject{Type: kieappv2.DatabaseMySQL}
			}
			return newKieApp(WorkbenchRuntimeSmartRouterTwoKieServers, kieappv2.RhpamProduction, kieappv2.KieAppObjects{
				Console:     &kieappv2.ConsoleObject{},
				SmartRouter: &kieappv2.SmartRouterObject{},
				Servers:     []kieappv2.KieServerSet{{Database: mysql()}, {Database: mysql()}},
			})
		},
		consoleKind: deployment.KindWorkbenchMonitoring,
	},
	{
		ID:           KieServerAMQ,
		Description:  "Kie-server consuming requests from an AMQ broker",
		Profiles:     []config.Profile{config.ProfileJBPM, config.ProfileDrools},
		Templates:    []string{KieServerAMQ},
		Capabilities: capabilities(CapabilityAMQ),
		AMQ:          true,
		topology: func(config.Profile) scenario.Topology {
			return scenario.Topology{
				Components: []scenario.Component{
					kieServer(ComponentKieServer, "-kieserver", envvars.SingleKieServerSSOClientKeys),
				},
			}
		},
		kieApp: func(profile config.Profile) *kieappv2.KieApp {
			return newKieApp(KieServerAMQ,
				environment(profile, kieappv2.RhpamProductionImmutable, kieappv2.RhdmProductionImmutable),
				kieappv2.KieAppObjects{
					Servers: []kieappv2.KieServerSet{{Jms: &kieappv2.KieAppJmsObject{EnableIntegration: true}}},
				})
		},
	},
	{
		ID:           ImmutableKieServer,
		Description:  "Kie-server built from sources with its containers deployed at startup",
		Profiles:     []config.Profile{config.ProfileJBPM, config.ProfileDrools},
		Templates:    []string{ImmutableKieServer},
		APBPlan:      "immutable-kieserver",
		Capabilities: capabilities(CapabilityGitSource),
		topology: func(config.Profile) scenario.Topology {
			return scenario.Topology{
				Components: []scenario.Component{
					kieServer(ComponentKieServer, "-kieserver", envvars.SingleKieServerSSOClientKeys),
				},
			}
		},
		kieApp: func(profile config.Profile) *kieappv2.KieApp {
			return newKieApp(ImmutableKieServer,
				environment(profile, kieappv2.RhpamProductionImmutable, kieappv2.RhdmProductionImmutable),
				kieappv2.KieAppObjects{
					Servers: []kieappv2.KieServerSet{{Build: &kieappv2.KieAppBuildObject{}}},
				})
		},
	},
}

// Catalog returns the scenarios, sorted by identifier.
func Catalog() []Entry {
	entries := append([]Entry(nil), catalog...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// Lookup returns the scenario with the given identifier.
func Lookup(id string) (Entry, bool) {
	for _, e := range catalog {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

func indexed(name string, i int) string {
	return fmt.Sprintf("%s-%d", name, i)
}

func environment(profile config.Profile, jbpm, drools kieappv2.EnvironmentType) kieappv2.EnvironmentType {
	if profile == config.ProfileDrools {
		return drools
	}
	return jbpm
}

func newKieApp(name string, env kieappv2.EnvironmentType, objects kieappv2.KieAppObjects) *kieappv2.KieApp {
	return &kieappv2.KieApp{
		TypeMeta:   metav1.TypeMeta{APIVersion: kieappv2.GroupVersion.String(), Kind: kieappv2.Kind},
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Spec:       kieappv2.KieAppSpec{Environment: env, Objects: objects},
	}
}

func workloadName(suffix string) string {
	return applicationNameRef + suffix
}

func workbench(profile config.Profile, kind deployment.Kind, suffix string) scenario.Component {
	name := "-rhpamcentr"
	if profile == config.ProfileDrools {
		name = "-rhdmcentr"
	}
	return scenario.Component{
		Name:        ComponentWorkbench,
		Kind:        kind,
		Workload:    workloadName(name + suffix),
		GVK:         cluster.DeploymentConfigGVK,
		UserKey:     envvars.KieAdminUser,
		PasswordKey: envvars.KieAdminPwd,
		SSOClient:   ptr.To(envvars.WorkbenchSSOClientKeys),
	}
}

func kieServer(name, suffix string, client envvars.SSOClientKeys) scenario.Component {
	return scenario.Component{
		Name:        name,
		Kind:        deployment.KindKieServer,
		Workload:    workloadName(suffix),
		GVK:         cluster.DeploymentConfigGVK,
		UserKey:     envvars.KieServerUser,
		PasswordKey: envvars.KieServerPwd,
		SSOClient:   ptr.To(client),
	}
}

func smartRouter() scenario.Component {
	return scenario.Component{
		Name:        ComponentSmartRouter,
		Kind:        deployment.KindSmartRouter,
		Workload:    workloadName("-smartrouter"),
		GVK:         cluster.DeploymentConfigGVK,
		UserKey:     envvars.KieAdminUser,
		PasswordKey: envvars.KieAdminPwd,
		SSOClient:   ptr.To(envvars.SmartRouterSSOClientKeys),
	}
}

func database(name, suffix string) scenario.Component {
	return scenario.Component{
		Name:     name,
		Kind:     deployment.KindDatabase,
		Workload: workloadName(suffix),
		GVK:      cluster.DeploymentConfigGVK,
	}
}
