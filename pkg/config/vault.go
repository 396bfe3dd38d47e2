// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package config

import (
	"github.com/pkg/errors"

	"github.com/kiegroup/kie-cloud-tests/pkg/utils/vault"
)

// ApplyVaultCredentials overrides the credentials with the fields found in the Vault secret at path.
// Field names are the credential flag names, for example admin-password.
func (c *Config) ApplyVaultCredentials(client vault.Client, path string) error {
	targets := map[string]*string{
		AdminUserFlag:          &c.Credentials.AdminUser,
		AdminPasswordFlag:      &c.Credentials.AdminPassword,
		KieServerUserFlag:      &c.Credentials.KieServerUser,
		KieServerPasswordFlag:  &c.Credentials.KieServerPassword,
		ControllerUserFlag:     &c.Credentials.ControllerUser,
		ControllerPasswordFlag: &c.Credentials.ControllerPassword,
		MavenUserFlag:          &c.Credentials.MavenUser,
		MavenPasswordFlag:      &c.Credentials.MavenPassword,
		SSOAdminUserFlag:       &c.Credentials.SSOAdminUser,
		SSOAdminPasswordFlag:   &c.Credentials.SSOAdminPassword,
		AMQUserFlag:            &c.Credentials.AMQUser,
		AMQPasswordFlag:        &c.Credentials.AMQPassword,
	}
	fieldNames := make([]string, 0, len(targets))
	for name := range targets {
		fieldNames = append(fieldNames, name)
	}

	fields, err := vault.ReadFields(client, path, fieldNames...)
	if err != nil {
		return errors.Wrapf(err, "while reading credentials from vault at %s", path)
	}
	for name, value := range fields {
		*targets[name] = value
	}
	return nil
}
