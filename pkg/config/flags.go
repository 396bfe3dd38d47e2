// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package config

import (
	"strings"

	"github.com/blang/semver/v4"
	"github.com/magiconair/properties"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "KIE"

	ProfileFlag              = "profile"
	ProductVersionFlag       = "product-version"
	ProjectPrefixFlag        = "project-prefix"
	LogsDirFlag              = "logs-dir"
	APBImageFlag             = "apb-image"
	ImageStreamNamespaceFlag = "image-stream-namespace"
	PinImageDigestsFlag      = "pin-image-digests"
	EnableTracingFlag        = "enable-tracing"
	MetricsFileFlag          = "metrics-file"
	PropertiesFileFlag       = "properties-file"
	VaultPathFlag            = "vault-path"
	AMQKeystoreFlag          = "amq-keystore"
	AMQTruststoreFlag        = "amq-truststore"

	DeploymentReadyTimeoutFlag    = "deployment-ready-timeout"
	ScaleDownTimeoutFlag          = "scale-down-timeout"
	PollIntervalFlag              = "poll-interval"
	ServerRegistrationTimeoutFlag = "server-registration-timeout"
	SSOAdminTimeoutFlag           = "sso-admin-timeout"
	APBCompletionTimeoutFlag      = "apb-completion-timeout"
	ProjectDeletionTimeoutFlag    = "project-deletion-timeout"

	AdminUserFlag          = "admin-user"
	AdminPasswordFlag      = "admin-password"
	KieServerUserFlag      = "kie-server-user"
	KieServerPasswordFlag  = "kie-server-password"
	ControllerUserFlag     = "controller-user"
	ControllerPasswordFlag = "controller-password"
	MavenUserFlag          = "maven-user"
	MavenPasswordFlag      = "maven-password"
	SSOAdminUserFlag       = "sso-admin-user"
	SSOAdminPasswordFlag   = "sso-admin-password"
	AMQUserFlag            = "amq-user"
	AMQPasswordFlag        = "amq-password"

	templatePropertyPrefix = "template."
	imagePropertyPrefix    = "image."
)

// BindFlags declares the configuration flags, with their defaults, on the given flag set.
func BindFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(ProfileFlag, string(d.Profile), "Product profile, JBPM or DROOLS")
	fs.String(ProductVersionFlag, d.ProductVersion.String(), "Version of the product under test")
	fs.String(ProjectPrefixFlag, d.ProjectPrefix, "Prefix of the namespaces created for scenarios")
	fs.String(LogsDirFlag, d.LogsDir, "Directory receiving instance logs and scenario environments")
	fs.String(APBImageFlag, d.APBImage, "Ansible Playbook Bundle image")
	fs.String(ImageStreamNamespaceFlag, d.ImageStreamNamespace, "Namespace holding the product image streams")
	fs.Bool(PinImageDigestsFlag, d.PinImageDigests, "Resolve image stream tags to digests")
	fs.Bool(EnableTracingFlag, d.EnableTracing, "Send traces to the APM server configured through ELASTIC_APM_* variables")
	fs.String(MetricsFileFlag, d.MetricsFile, "File receiving scenario metrics in Prometheus text format")
	fs.String(PropertiesFileFlag, "", "Properties file with template.<key> and image.<key> entries")
	fs.String(VaultPathFlag, "", "Vault path holding credentials, read when set")
	fs.String(AMQKeystoreFlag, d.AMQKeystore, "Keystore file mounted into the AMQ broker")
	fs.String(AMQTruststoreFlag, d.AMQTruststore, "Truststore file mounted into the AMQ broker")

	fs.Duration(DeploymentReadyTimeoutFlag, d.Timeouts.DeploymentReady, "Timeout for a deployment to become ready")
	fs.Duration(ScaleDownTimeoutFlag, d.Timeouts.ScaleDown, "Timeout for a deployment to scale down")
	fs.Duration(PollIntervalFlag, d.Timeouts.PollInterval, "Interval between two readiness checks")
	fs.Duration(ServerRegistrationTimeoutFlag, d.Timeouts.ServerRegistration, "Timeout for kie-servers to register")
	fs.Duration(SSOAdminTimeoutFlag, d.Timeouts.SSOAdmin, "Timeout for the SSO admin API to become available")
	fs.Duration(APBCompletionTimeoutFlag, d.Timeouts.APBCompletion, "Timeout for an APB run to complete")
	fs.Duration(ProjectDeletionTimeoutFlag, d.Timeouts.ProjectDeletion, "Timeout for a namespace deletion")

	fs.String(AdminUserFlag, d.Credentials.AdminUser, "Product admin user")
	fs.String(AdminPasswordFlag, d.Credentials.AdminPassword, "Product admin password")
	fs.String(KieServerUserFlag, d.Credentials.KieServerUser, "Kie-server user")
	fs.String(KieServerPasswordFlag, d.Credentials.KieServerPassword, "Kie-server password")
	fs.String(ControllerUserFlag, d.Credentials.ControllerUser, "Controller user")
	fs.String(ControllerPasswordFlag, d.Credentials.ControllerPassword, "Controller password")
	fs.String(MavenUserFlag, d.Credentials.MavenUser, "Maven repository user")
	fs.String(MavenPasswordFlag, d.Credentials.MavenPassword, "Maven repository password")
	fs.String(SSOAdminUserFlag, d.Credentials.SSOAdminUser, "SSO admin user")
	fs.String(SSOAdminPasswordFlag, d.Credentials.SSOAdminPassword, "SSO admin password")
	fs.String(AMQUserFlag, d.Credentials.AMQUser, "AMQ broker user")
	fs.String(AMQPasswordFlag, d.Credentials.AMQPassword, "AMQ broker password")
}

// NewViper returns a viper instance bound to the given flags and to KIE_* environment variables.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, errors.Wrap(err, "while binding flags")
	}
	return v, nil
}

// Load builds the configuration from viper, then from the properties file it points to.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()

	profile, err := ParseProfile(v.GetString(ProfileFlag))
	if err != nil {
		return Config{}, err
	}
	cfg.Profile = profile

	version, err := semver.ParseTolerant(v.GetString(ProductVersionFlag))
	if err != nil {
		return Config{}, errors.Wrapf(err, "while parsing %s", ProductVersionFlag)
	}
	cfg.ProductVersion = version

	cfg.ProjectPrefix = v.GetString(ProjectPrefixFlag)
	cfg.LogsDir = v.GetString(LogsDirFlag)
	cfg.APBImage = v.GetString(APBImageFlag)
	cfg.ImageStreamNamespace = v.GetString(ImageStreamNamespaceFlag)
	cfg.PinImageDigests = v.GetBool(PinImageDigestsFlag)
	cfg.EnableTracing = v.GetBool(EnableTracingFlag)
	cfg.MetricsFile = v.GetString(MetricsFileFlag)
	cfg.AMQKeystore = v.GetString(AMQKeystoreFlag)
	cfg.AMQTruststore = v.GetString(AMQTruststoreFlag)

	cfg.Timeouts = Timeouts{
		DeploymentReady:    v.GetDuration(DeploymentReadyTimeoutFlag),
		ScaleDown:          v.GetDuration(ScaleDownTimeoutFlag),
		PollInterval:       v.GetDuration(PollIntervalFlag),
		ServerRegistration: v.GetDuration(ServerRegistrationTimeoutFlag),
		SSOAdmin:           v.GetDuration(SSOAdminTimeoutFlag),
		APBCompletion:      v.GetDuration(APBCompletionTimeoutFlag),
		ProjectDeletion:    v.GetDuration(ProjectDeletionTimeoutFlag),
	}

	cfg.Credentials = Credentials{
		AdminUser:          v.GetString(AdminUserFlag),
		AdminPassword:      v.GetString(AdminPasswordFlag),
		KieServerUser:      v.GetString(KieServerUserFlag),
		KieServerPassword:  v.GetString(KieServerPasswordFlag),
		ControllerUser:     v.GetString(ControllerUserFlag),
		ControllerPassword: v.GetString(ControllerPasswordFlag),
		MavenUser:          v.GetString(MavenUserFlag),
		MavenPassword:      v.GetString(MavenPasswordFlag),
		SSOAdminUser:       v.GetString(SSOAdminUserFlag),
		SSOAdminPassword:   v.GetString(SSOAdminPasswordFlag),
		AMQUser:            v.GetString(AMQUserFlag),
		AMQPassword:        v.GetString(AMQPasswordFlag),
	}

	if path := v.GetString(PropertiesFileFlag); path != "" {
		if err := cfg.LoadProperties(path); err != nil {
			return Config{}, err
		}
	}

	return cfg, cfg.Validate()
}

// LoadProperties reads template.<key> and image.<key> entries from a properties file.
// Entries override the current values, other entries are ignored.
func (c *Config) LoadProperties(path string) error {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return errors.Wrapf(err, "while loading %s", path)
	}
	c.applyProperties(p)
	return nil
}

func (c *Config) applyProperties(p *properties.Properties) {
	if c.Templates == nil {
		c.Templates = map[string]string{}
	}
	if c.Images == nil {
		c.Images = map[string]string{}
	}
	for k, v := range p.FilterStripPrefix(templatePropertyPrefix).Map() {
		c.Templates[k] = v
	}
	for k, v := range p.FilterStripPrefix(imagePropertyPrefix).Map() {
		c.Images[k] = v
	}
}
