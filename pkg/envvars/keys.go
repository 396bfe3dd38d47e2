// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package envvars

import "fmt"

// Keys understood by the product images and templates. They must match what the images expect.
const (
	ApplicationName      = "APPLICATION_NAME"
	ImageStreamNamespace = "IMAGE_STREAM_NAMESPACE"
	CredentialsSecret    = "CREDENTIALS_SECRET"

	KieAdminUser                 = "KIE_ADMIN_USER"
	KieAdminPwd                  = "KIE_ADMIN_PWD"
	KieServerUser                = "KIE_SERVER_USER"
	KieServerPwd                 = "KIE_SERVER_PWD"
	KieServerControllerUser      = "KIE_SERVER_CONTROLLER_USER"
	KieServerControllerPwd       = "KIE_SERVER_CONTROLLER_PWD"
	KieMavenUser                 = "KIE_MAVEN_USER"
	KieMavenPwd                  = "KIE_MAVEN_PWD"
	BusinessCentralMavenUsername = "BUSINESS_CENTRAL_MAVEN_USERNAME"
	BusinessCentralMavenPassword = "BUSINESS_CENTRAL_MAVEN_PASSWORD"

	BusinessCentralHostnameHTTP  = "BUSINESS_CENTRAL_HOSTNAME_HTTP"
	BusinessCentralHostnameHTTPS = "BUSINESS_CENTRAL_HOSTNAME_HTTPS"
	ExecutionServerHostnameHTTP  = "EXECUTION_SERVER_HOSTNAME_HTTP"
	ExecutionServerHostnameHTTPS = "EXECUTION_SERVER_HOSTNAME_HTTPS"
	KieServerRouterHostnameHTTP  = "KIE_SERVER_ROUTER_HOSTNAME_HTTP"
	KieServerRouterHostnameHTTPS = "KIE_SERVER_ROUTER_HOSTNAME_HTTPS"

	SSOURL                      = "SSO_URL"
	SSORealm                    = "SSO_REALM"
	SSOUsername                 = "SSO_USERNAME"
	SSOPassword                 = "SSO_PASSWORD"
	SSODisableSSLCertValidation = "SSO_DISABLE_SSL_CERTIFICATE_VALIDATION"
	SSOPrincipalAttribute       = "SSO_PRINCIPAL_ATTRIBUTE"
	BusinessCentralSSOClient    = "BUSINESS_CENTRAL_SSO_CLIENT"
	BusinessCentralSSOSecret    = "BUSINESS_CENTRAL_SSO_SECRET"
	KieServerSSOClient          = "KIE_SERVER_SSO_CLIENT"
	KieServerSSOSecret          = "KIE_SERVER_SSO_SECRET"
	KieServerRouterSSOClient    = "KIE_SERVER_ROUTER_SSO_CLIENT"
	KieServerRouterSSOSecret    = "KIE_SERVER_ROUTER_SSO_SECRET"

	MavenRepoURL      = "MAVEN_REPO_URL"
	MavenRepoID       = "MAVEN_REPO_ID"
	MavenRepoUsername = "MAVEN_REPO_USERNAME"
	MavenRepoPassword = "MAVEN_REPO_PASSWORD"
	MavenMirrorURL    = "MAVEN_MIRROR_URL"

	GitHooksDir                  = "GIT_HOOKS_DIR"
	SourceRepositoryURL          = "SOURCE_REPOSITORY_URL"
	SourceRepositoryRef          = "SOURCE_REPOSITORY_REF"
	ContextDir                   = "CONTEXT_DIR"
	KieServerContainerDeployment = "KIE_SERVER_CONTAINER_DEPLOYMENT"

	KieServerExternalDBDialect  = "KIE_SERVER_EXTERNALDB_DIALECT"
	KieServerExternalDBDriver   = "KIE_SERVER_EXTERNALDB_DRIVER"
	KieServerExternalDBHost     = "KIE_SERVER_EXTERNALDB_HOST"
	KieServerExternalDBPort     = "KIE_SERVER_EXTERNALDB_PORT"
	KieServerExternalDBName     = "KIE_SERVER_EXTERNALDB_DB"
	KieServerExternalDBURL      = "KIE_SERVER_EXTERNALDB_URL"
	KieServerExternalDBUser     = "KIE_SERVER_EXTERNALDB_USER"
	KieServerExternalDBPassword = "KIE_SERVER_EXTERNALDB_PWD"

	AMQUsername               = "AMQ_USERNAME"
	AMQPassword               = "AMQ_PASSWORD"
	AMQQueues                 = "AMQ_QUEUES"
	AMQSecret                 = "AMQ_SECRET"
	AMQTruststore             = "AMQ_TRUSTSTORE"
	AMQTruststorePassword     = "AMQ_TRUSTSTORE_PASSWORD"
	AMQKeystore               = "AMQ_KEYSTORE"
	AMQKeystorePassword       = "AMQ_KEYSTORE_PASSWORD"
	KieServerJMSEnable        = "KIE_SERVER_JMS_ENABLE"
	KieServerJMSQueueRequest  = "KIE_SERVER_JMS_QUEUE_REQUEST"
	KieServerJMSQueueResponse = "KIE_SERVER_JMS_QUEUE_RESPONSE"

	AuthLDAPURL             = "AUTH_LDAP_URL"
	AuthLDAPBindDN          = "AUTH_LDAP_BIND_DN"
	AuthLDAPBindCredential  = "AUTH_LDAP_BIND_CREDENTIAL"
	AuthLDAPBaseCtxDN       = "AUTH_LDAP_BASE_CTX_DN"
	AuthLDAPBaseFilter      = "AUTH_LDAP_BASE_FILTER"
	AuthLDAPRolesCtxDN      = "AUTH_LDAP_ROLES_CTX_DN"
	AuthLDAPRoleFilter      = "AUTH_LDAP_ROLE_FILTER"
	AuthLDAPRoleAttributeID = "AUTH_LDAP_ROLE_ATTRIBUTE_ID"

	KieServerHTTPSSecret   = "KIE_SERVER_HTTPS_SECRET"
	KieServerHTTPSName     = "KIE_SERVER_HTTPS_NAME"
	KieServerHTTPSPassword = "KIE_SERVER_HTTPS_PASSWORD"

	PrometheusServerExtDisabled = "PROMETHEUS_SERVER_EXT_DISABLED"
)

// Keys set by the harness itself for test code, not read by the product.
const (
	AMQBrokerURL      = "AMQ_BROKER_URL"
	DockerRegistryURL = "DOCKER_REGISTRY_URL"
	GitServerURL      = "GIT_SERVER_URL"
	GitUser           = "GIT_USER"
	GitPassword       = "GIT_PASSWORD"
	PrometheusURL     = "PROMETHEUS_URL"
)

// SSOClientKeys is the pair of keys holding the SSO client id and secret of one component.
type SSOClientKeys struct {
	// ClientName is the client id registered in the realm.
	ClientName string
	ClientKey  string
	SecretKey  string
}

// KieServerSSOClientKeys returns the client keys of the n-th kie-server, counting from 1,
// for templates deploying several kie-servers.
func KieServerSSOClientKeys(n int) SSOClientKeys {
	return SSOClientKeys{
		ClientName: fmt.Sprintf("kie-server-%d-client", n),
		ClientKey:  fmt.Sprintf("KIE_SERVER%d_SSO_CLIENT", n),
		SecretKey:  fmt.Sprintf("KIE_SERVER%d_SSO_SECRET", n),
	}
}

// Client keys of single-instance components.
var (
	WorkbenchSSOClientKeys = SSOClientKeys{
		ClientName: "business-central-client",
		ClientKey:  BusinessCentralSSOClient,
		SecretKey:  BusinessCentralSSOSecret,
	}
	SingleKieServerSSOClientKeys = SSOClientKeys{
		ClientName: "kie-server-client",
		ClientKey:  KieServerSSOClient,
		SecretKey:  KieServerSSOSecret,
	}
	SmartRouterSSOClientKeys = SSOClientKeys{
		ClientName: "kie-server-router-client",
		ClientKey:  KieServerRouterSSOClient,
		SecretKey:  KieServerRouterSSOSecret,
	}
)
