// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/vault/api"
	"github.com/pkg/errors"
)

const (
	addrEnvVar    = "VAULT_ADDR"
	tokenEnvVar   = "VAULT_TOKEN"
	roleIDEnvVar  = "VAULT_ROLE_ID"
	secretEnvVar  = "VAULT_SECRET_ID"
	ghTokenEnvVar = "GITHUB_TOKEN" //nolint:gosec

	cachedTokenFile = ".vault-token"
)

// Client reads secrets. *api.Logical satisfies it.
type Client interface {
	Read(path string) (*api.Secret, error)
}

// NewClient returns a Vault client for the server at VAULT_ADDR.
// A token from VAULT_TOKEN is used as is, otherwise the client logs in with an approle or a GitHub token,
// and falls back to the token cached by `vault login`.
func NewClient() (Client, error) {
	if os.Getenv(addrEnvVar) == "" {
		return nil, fmt.Errorf("%s must be set", addrEnvVar)
	}
	c, err := api.NewClient(api.DefaultConfig())
	if err != nil {
		return nil, err
	}
	if c.Token() == "" {
		token, err := obtainToken(c.Logical())
		if err != nil {
			return nil, err
		}
		c.SetToken(token)
	}
	return c.Logical(), nil
}

type writer interface {
	Write(path string, data map[string]interface{}) (*api.Secret, error)
}

// loginRequest is a login against one of the Vault auth methods.
type loginRequest struct {
	method string
	data   map[string]interface{}
}

func loginFromEnv() *loginRequest {
	if roleID, secretID := os.Getenv(roleIDEnvVar), os.Getenv(secretEnvVar); roleID != "" && secretID != "" {
		return &loginRequest{method: "approle", data: map[string]interface{}{"role_id": roleID, "secret_id": secretID}}
	}
	if ghToken := os.Getenv(ghTokenEnvVar); ghToken != "" {
		return &loginRequest{method: "github", data: map[string]interface{}{"token": ghToken}}
	}
	return nil
}

func obtainToken(w writer) (string, error) {
	req := loginFromEnv()
	if req == nil {
		token, err := readCachedToken()
		if err != nil {
			return "", errors.Wrap(err, "while reading cached token")
		}
		if token == "" {
			return "", fmt.Errorf("set %s or %s/%s or %s or run `vault login`", tokenEnvVar, roleIDEnvVar, secretEnvVar, ghTokenEnvVar)
		}
		return token, nil
	}

	resp, err := w.Write("auth/"+req.method+"/login", req.data)
	if err != nil {
		return "", errors.Wrapf(err, "while logging into vault using method %s", req.method)
	}
	if resp == nil || resp.Auth == nil {
		return "", fmt.Errorf("while logging into vault: no auth info in response")
	}
	return resp.Auth.ClientToken, nil
}

func readCachedToken() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(filepath.Join(dir, cachedTokenFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(content)), nil
}
