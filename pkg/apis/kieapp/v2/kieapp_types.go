// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package v2

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	Kind = "KieApp"
)

// EnvironmentType is the name of a product environment known by the operator.
type EnvironmentType string

const (
	RhpamTrial               EnvironmentType = "rhpam-trial"
	RhpamAuthoring           EnvironmentType = "rhpam-authoring"
	RhpamAuthoringHA         EnvironmentType = "rhpam-authoring-ha"
	RhpamProduction          EnvironmentType = "rhpam-production"
	RhpamProductionImmutable EnvironmentType = "rhpam-production-immutable"
	RhdmTrial                EnvironmentType = "rhdm-trial"
	RhdmAuthoring            EnvironmentType = "rhdm-authoring"
	RhdmProductionImmutable  EnvironmentType = "rhdm-production-immutable"
)

// DatabaseType is the database backing a kie-server.
type DatabaseType string

const (
	DatabaseH2         DatabaseType = "h2"
	DatabaseMySQL      DatabaseType = "mysql"
	DatabasePostgreSQL DatabaseType = "postgresql"
	DatabaseExternal   DatabaseType = "external"
)

// KieAppSpec defines the desired state of KieApp
type KieAppSpec struct {
	// Environment to deploy.
	Environment EnvironmentType `json:"environment"`
	// Version of the product to deploy, defaults to the latest supported by the operator.
	Version string `json:"version,omitempty"`
	// UseImageTags makes the operator reference images by tag rather than by digest.
	UseImageTags bool `json:"useImageTags,omitempty"`
	// Objects overrides the environment defaults per component.
	Objects      KieAppObjects     `json:"objects,omitempty"`
	CommonConfig CommonConfig      `json:"commonConfig,omitempty"`
	Auth         *KieAppAuthObject `json:"auth,omitempty"`
	Upgrades     KieAppUpgrades    `json:"upgrades,omitempty"`
}

// KieAppObjects lists the product components.
// Servers[i] is the i-th logical kie-server of the scenario.
type KieAppObjects struct {
	Console          *ConsoleObject          `json:"console,omitempty"`
	Servers          []KieServerSet          `json:"servers,omitempty"`
	SmartRouter      *SmartRouterObject      `json:"smartRouter,omitempty"`
	ProcessMigration *ProcessMigrationObject `json:"processMigration,omitempty"`
}

// KieAppObject holds the settings shared by all components.
type KieAppObject struct {
	Env           []corev1.EnvVar `json:"env,omitempty"`
	Replicas      *int32          `json:"replicas,omitempty"`
	SSOClient     *SSOAuthClient  `json:"ssoClient,omitempty"`
	RouteHostname string          `json:"routeHostname,omitempty"`
}

// ConsoleObject configures the workbench.
type ConsoleObject struct {
	KieAppObject `json:",inline"`
	GitHooks     *GitHooksVolume `json:"gitHooks,omitempty"`
}

// GitHooksVolume mounts git hooks into the workbench.
type GitHooksVolume struct {
	MountPath string                  `json:"mountPath,omitempty"`
	From      *corev1.ObjectReference `json:"from,omitempty"`
}

// KieServerSet configures a group of identical kie-servers.
type KieServerSet struct {
	KieAppObject `json:",inline"`
	Name         string             `json:"name,omitempty"`
	ID           string             `json:"id,omitempty"`
	Deployments  *int               `json:"deployments,omitempty"`
	Build        *KieAppBuildObject `json:"build,omitempty"`
	Database     *DatabaseObject    `json:"database,omitempty"`
	Jms          *KieAppJmsObject   `json:"jms,omitempty"`
}

// KieAppBuildObject configures an S2I build of a kie-server image.
type KieAppBuildObject struct {
	KieServerContainerDeployment string    `json:"kieServerContainerDeployment,omitempty"`
	GitSource                    GitSource `json:"gitSource,omitempty"`
	MavenMirrorURL               string    `json:"mavenMirrorURL,omitempty"`
	ArtifactDir                  string    `json:"artifactDir,omitempty"`
}

// GitSource points to the sources of a build.
type GitSource struct {
	URI        string `json:"uri,omitempty"`
	Reference  string `json:"reference,omitempty"`
	ContextDir string `json:"contextDir,omitempty"`
}

// DatabaseObject selects the database of a kie-server.
type DatabaseObject struct {
	Type           DatabaseType            `json:"type,omitempty"`
	Size           string                  `json:"size,omitempty"`
	ExternalConfig *ExternalDatabaseObject `json:"externalConfig,omitempty"`
}

// ExternalDatabaseObject describes a database not managed by the operator.
type ExternalDatabaseObject struct {
	Dialect  string `json:"dialect,omitempty"`
	Driver   string `json:"driver,omitempty"`
	Host     string `json:"host,omitempty"`
	Port     string `json:"port,omitempty"`
	Name     string `json:"name,omitempty"`
	JdbcURL  string `json:"jdbcURL,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// KieAppJmsObject enables JMS integration with an AMQ broker.
type KieAppJmsObject struct {
	EnableIntegration bool   `json:"enableIntegration,omitempty"`
	QueueRequest      string `json:"queueRequest,omitempty"`
	QueueResponse     string `json:"queueResponse,omitempty"`
	Username          string `json:"username,omitempty"`
	Password          string `json:"password,omitempty"`
	AMQSecretName     string `json:"amqSecretName,omitempty"`
	AMQTruststoreName string `json:"amqTruststoreName,omitempty"`
	AMQKeystoreName   string `json:"amqKeystoreName,omitempty"`
}

// SmartRouterObject configures the smart router.
type SmartRouterObject struct {
	KieAppObject     `json:",inline"`
	Protocol         string `json:"protocol,omitempty"`
	UseExternalRoute bool   `json:"useExternalRoute,omitempty"`
}

// ProcessMigrationObject enables the process instance migration service.
type ProcessMigrationObject struct {
	Database ProcessMigrationDatabaseObject `json:"database,omitempty"`
}

// ProcessMigrationDatabaseObject selects the database of the process migration service.
type ProcessMigrationDatabaseObject struct {
	Type DatabaseType `json:"type,omitempty"`
}

// KieAppAuthObject configures authentication.
type KieAppAuthObject struct {
	SSO  *SSOAuthConfig  `json:"sso,omitempty"`
	LDAP *LDAPAuthConfig `json:"ldap,omitempty"`
}

// SSOAuthConfig points to an SSO server.
type SSOAuthConfig struct {
	URL                      string `json:"url"`
	Realm                    string `json:"realm"`
	AdminUser                string `json:"adminUser,omitempty"`
	AdminPassword            string `json:"adminPassword,omitempty"`
	DisableSSLCertValidation bool   `json:"disableSSLCertValidation,omitempty"`
	PrincipalAttribute       string `json:"principalAttribute,omitempty"`
}

// SSOAuthClient is the SSO client of a component.
type SSOAuthClient struct {
	Name          string `json:"name,omitempty"`
	Secret        string `json:"secret,omitempty"`
	HostnameHTTP  string `json:"hostnameHTTP,omitempty"`
	HostnameHTTPS string `json:"hostnameHTTPS,omitempty"`
}

// LDAPAuthConfig points to an LDAP server.
type LDAPAuthConfig struct {
	URL             string `json:"url"`
	BindDN          string `json:"bindDN,omitempty"`
	BindCredential  string `json:"bindCredential,omitempty"`
	BaseCtxDN       string `json:"baseCtxDN,omitempty"`
	BaseFilter      string `json:"baseFilter,omitempty"`
	RolesCtxDN      string `json:"rolesCtxDN,omitempty"`
	RoleFilter      string `json:"roleFilter,omitempty"`
	RoleAttributeID string `json:"roleAttributeID,omitempty"`
}

// CommonConfig holds settings shared by all components.
type CommonConfig struct {
	ApplicationName        string `json:"applicationName,omitempty"`
	AdminUser              string `json:"adminUser,omitempty"`
	AdminPassword          string `json:"adminPassword,omitempty"`
	AdminCredentialsSecret string `json:"adminCredentialsSecret,omitempty"`
	KeyStorePassword       string `json:"keyStorePassword,omitempty"`
	DBPassword             string `json:"dbPassword,omitempty"`
	AMQPassword            string `json:"amqPassword,omitempty"`
	ImageTag               string `json:"imageTag,omitempty"`
}

// KieAppUpgrades controls automatic upgrades.
type KieAppUpgrades struct {
	Enabled bool `json:"enabled,omitempty"`
	Minor   bool `json:"minor,omitempty"`
}

// KieAppStatus defines the observed state of KieApp
type KieAppStatus struct {
	Phase   string `json:"phase,omitempty"`
	Version string `json:"version,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status

// KieApp is the Schema for the kieapps API
type KieApp struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   KieAppSpec   `json:"spec,omitempty"`
	Status KieAppStatus `json:"status,omitempty"`
}

// ApplicationName returns the name the operator prefixes every object with.
func (k *KieApp) ApplicationName() string {
	if k.Spec.CommonConfig.ApplicationName != "" {
		return k.Spec.CommonConfig.ApplicationName
	}
	return k.Name
}

// ConsoleDeploymentName returns the name of the workbench workload.
func (k *KieApp) ConsoleDeploymentName() string {
	if k.IsDecisionManager() {
		return k.ApplicationName() + "-rhdmcentr"
	}
	return k.ApplicationName() + "-rhpamcentr"
}

// ServerDeploymentName returns the name of the workload backing Servers[i].
// Unnamed servers get the operator defaults: <app>-kieserver, then <app>-kieserver-2, and so on.
func (k *KieApp) ServerDeploymentName(i int) string {
	if i < len(k.Spec.Objects.Servers) && k.Spec.Objects.Servers[i].Name != "" {
		return k.Spec.Objects.Servers[i].Name
	}
	if i == 0 {
		return k.ApplicationName() + "-kieserver"
	}
	return fmt.Sprintf("%s-kieserver-%d", k.ApplicationName(), i+1)
}

// SmartRouterDeploymentName returns the name of the smart router workload.
func (k *KieApp) SmartRouterDeploymentName() string {
	return k.ApplicationName() + "-smartrouter"
}

// ProcessMigrationDeploymentName returns the name of the process migration workload.
func (k *KieApp) ProcessMigrationDeploymentName() string {
	return k.ApplicationName() + "-process-migration"
}

// IsDecisionManager returns true for the rules-only environments.
func (k *KieApp) IsDecisionManager() bool {
	switch k.Spec.Environment {
	case RhdmTrial, RhdmAuthoring, RhdmProductionImmutable:
		return true
	default:
		return false
	}
}

// +kubebuilder:object:root=true

// KieAppList contains a list of KieApp
type KieAppList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []KieApp `json:"items"`
}

func init() {
	SchemeBuilder.Register(&KieApp{}, &KieAppList{})
}
