// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/blang/semver/v4"
	"github.com/pkg/errors"
)

// Profile is the product flavour under test.
type Profile string

const (
	ProfileJBPM   Profile = "JBPM"
	ProfileDrools Profile = "DROOLS"
)

// ParseProfile parses a profile name, case insensitive.
func ParseProfile(s string) (Profile, error) {
	switch p := Profile(strings.ToUpper(s)); p {
	case ProfileJBPM, ProfileDrools:
		return p, nil
	default:
		return "", fmt.Errorf("unknown profile %q, expected one of %s, %s", s, ProfileJBPM, ProfileDrools)
	}
}

// Image keys.
const (
	ImageSSO            = "sso"
	ImageAMQ            = "amq"
	ImageMaven          = "maven"
	ImageDockerRegistry = "docker-registry"
	ImageLDAP           = "ldap"
	ImageGogs           = "gogs"
	ImagePrometheus     = "prometheus"
)

// Template key holding the image streams list.
const TemplateImageStreams = "image-streams"

// Timeouts bounds every blocking wait of a scenario.
type Timeouts struct {
	// DeploymentReady bounds the wait for a deployment to reach its desired number of ready instances.
	DeploymentReady time.Duration
	// ScaleDown bounds the wait for a deployment scaled to zero.
	ScaleDown time.Duration
	// PollInterval separates two readiness checks.
	PollInterval time.Duration
	// ServerRegistration bounds the wait for controllers and routers to see their kie-servers.
	ServerRegistration time.Duration
	// SSOAdmin bounds the wait for the SSO admin API to accept requests.
	SSOAdmin time.Duration
	// APBCompletion bounds the run of an Ansible Playbook Bundle.
	APBCompletion time.Duration
	// ProjectDeletion bounds the wait for a namespace to be gone.
	ProjectDeletion time.Duration
}

// Credentials are the users configured in the deployed products.
type Credentials struct {
	AdminUser          string
	AdminPassword      string
	KieServerUser      string
	KieServerPassword  string
	ControllerUser     string
	ControllerPassword string
	MavenUser          string
	MavenPassword      string
	SSOAdminUser       string
	SSOAdminPassword   string
	AMQUser            string
	AMQPassword        string
}

// Config is the configuration of the scenario harness.
type Config struct {
	Profile        Profile
	ProductVersion semver.Version
	// ProjectPrefix is prepended to the random namespace name of each scenario.
	ProjectPrefix string
	// LogsDir receives instance logs and the environment of each scenario.
	LogsDir string
	// APBImage runs the Ansible Playbook Bundle flavour.
	APBImage string
	// ImageStreamNamespace holds the product image streams, the scenario namespace when empty.
	ImageStreamNamespace string
	// PinImageDigests resolves image stream tags to digests.
	PinImageDigests bool
	EnableTracing   bool
	// MetricsFile receives the scenario metrics in text format when set.
	MetricsFile string
	// AMQKeystore and AMQTruststore are local files mounted into the broker.
	AMQKeystore   string
	AMQTruststore string

	Credentials Credentials
	Timeouts    Timeouts
	// Templates maps a template key to its URL or local path.
	Templates map[string]string
	// Images maps an image key to an image reference.
	Images map[string]string
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Profile:        ProfileJBPM,
		ProductVersion: semver.MustParse("7.13.0"),
		ProjectPrefix:  "kie",
		LogsDir:        "logs",
		APBImage:       "quay.io/kiegroup/rhpam-apb:latest",
		Credentials: Credentials{
			AdminUser:          "adminUser",
			AdminPassword:      "adminUser1!",
			KieServerUser:      "executionUser",
			KieServerPassword:  "executionUser1!",
			ControllerUser:     "controllerUser",
			ControllerPassword: "controllerUser1!",
			MavenUser:          "mavenUser",
			MavenPassword:      "mavenUser1!",
			SSOAdminUser:       "admin",
			SSOAdminPassword:   "admin",
			AMQUser:            "amqUser",
			AMQPassword:        "amqUser1!",
		},
		Timeouts: Timeouts{
			DeploymentReady:    15 * time.Minute,
			ScaleDown:          5 * time.Minute,
			PollInterval:       3 * time.Second,
			ServerRegistration: 5 * time.Minute,
			SSOAdmin:           2 * time.Minute,
			APBCompletion:      20 * time.Minute,
			ProjectDeletion:    5 * time.Minute,
		},
		Templates: map[string]string{},
		Images: map[string]string{
			ImageSSO:            "registry.redhat.io/rh-sso-7/sso76-openshift-rhel8:latest",
			ImageAMQ:            "quay.io/artemiscloud/activemq-artemis-broker:1.0.25",
			ImageMaven:          "docker.io/sonatype/nexus3:3.37.3",
			ImageDockerRegistry: "docker.io/library/registry:2",
			ImageLDAP:           "docker.io/osixia/openldap:1.5.0",
			ImageGogs:           "docker.io/gogs/gogs:0.13",
			ImagePrometheus:     "quay.io/prometheus/prometheus:v2.53.0",
		},
	}
}

// Image returns the image configured for the given key.
func (c Config) Image(key string) string {
	return c.Images[key]
}

// Template returns the source of the given template key.
func (c Config) Template(key string) (string, error) {
	src, ok := c.Templates[key]
	if !ok || src == "" {
		return "", fmt.Errorf("no template configured for %s", key)
	}
	return src, nil
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if _, err := ParseProfile(string(c.Profile)); err != nil {
		return err
	}
	if c.ProjectPrefix == "" {
		return errors.New("project prefix must not be empty")
	}
	timeouts := map[string]time.Duration{
		"deployment ready":    c.Timeouts.DeploymentReady,
		"scale down":          c.Timeouts.ScaleDown,
		"poll interval":       c.Timeouts.PollInterval,
		"server registration": c.Timeouts.ServerRegistration,
		"sso admin":           c.Timeouts.SSOAdmin,
		"apb completion":      c.Timeouts.APBCompletion,
		"project deletion":    c.Timeouts.ProjectDeletion,
	}
	for name, d := range timeouts {
		if d <= 0 {
			return fmt.Errorf("%s timeout must be positive, got %s", name, d)
		}
	}
	return nil
}
