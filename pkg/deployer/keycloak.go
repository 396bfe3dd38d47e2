// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package deployer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/kiegroup/kie-cloud-tests/pkg/kieclient"
)

const keycloakAdminClientID = "admin-cli"

// keycloak is a client of the SSO admin REST API, authenticated as the master realm administrator.
type keycloak struct {
	http     *retryablehttp.Client
	baseURL  string
	username string
	password string
	token    string
}

type keycloakRole struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type keycloakCredential struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

type keycloakUser struct {
	Username    string               `json:"username"`
	Enabled     bool                 `json:"enabled"`
	Credentials []keycloakCredential `json:"credentials,omitempty"`
}

type keycloakClient struct {
	ClientID                  string   `json:"clientId"`
	Secret                    string   `json:"secret"`
	Enabled                   bool     `json:"enabled"`
	PublicClient              bool     `json:"publicClient"`
	DirectAccessGrantsEnabled bool     `json:"directAccessGrantsEnabled"`
	RedirectURIs              []string `json:"redirectUris"`
	WebOrigins                []string `json:"webOrigins"`
}

func newKeycloak(httpClient *retryablehttp.Client, baseURL, username, password string) *keycloak {
	return &keycloak{
		http:     httpClient,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		password: password,
	}
}

// login gets an access token for the administrator.
func (k *keycloak) login(ctx context.Context) error {
	form := url.Values{
		"grant_type": {"password"},
		"client_id":  {keycloakAdminClientID},
		"username":   {k.username},
		"password":   {k.password},
	}
	tokenURL := k.baseURL + "/realms/master/protocol/openid-connect/token"
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	var token struct {
		AccessToken string `json:"access_token"`
	}
	if _, err := k.do(req, &token); err != nil {
		return errors.Wrap(err, "while logging in to SSO")
	}
	if token.AccessToken == "" {
		return errors.New("SSO returned an empty access token")
	}
	k.token = token.AccessToken
	return nil
}

// do sends req and decodes the JSON response into out, if not nil.
func (k *keycloak) do(req *retryablehttp.Request, out interface{}) (*http.Response, error) {
	req.Header.Set("Accept", "application/json")
	if k.token != "" {
		req.Header.Set("Authorization", "Bearer "+k.token)
	}
	resp, err := k.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, &kieclient.APIError{StatusCode: resp.StatusCode, URL: req.URL.String(), Body: string(body)}
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return resp, errors.Wrapf(err, "while decoding response of %s", req.URL)
		}
	}
	return resp, nil
}

func (k *keycloak) adminURL(segments ...string) string {
	return k.baseURL + path.Join(append([]string{"/admin/realms"}, segments...)...)
}

func (k *keycloak) send(ctx context.Context, method, url string, in, out interface{}) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return k.do(req, out)
}

// create posts a new representation. An already existing one is not an error.
func (k *keycloak) create(ctx context.Context, url string, in interface{}) error {
	_, err := k.send(ctx, http.MethodPost, url, in, nil)
	var apiErr *kieclient.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
		return nil
	}
	return err
}

func (k *keycloak) createRealm(ctx context.Context, realm string) error {
	err := k.create(ctx, k.baseURL+"/admin/realms", map[string]interface{}{"realm": realm, "enabled": true})
	return errors.Wrapf(err, "while creating realm %s", realm)
}

func (k *keycloak) createRole(ctx context.Context, realm, role string) error {
	err := k.create(ctx, k.adminURL(realm, "roles"), keycloakRole{Name: role})
	return errors.Wrapf(err, "while creating role %s", role)
}

// createUser creates a user with a permanent password and grants it the given realm roles.
func (k *keycloak) createUser(ctx context.Context, realm, username, password string, roles []string) error {
	err := k.create(ctx, k.adminURL(realm, "users"), keycloakUser{
		Username:    username,
		Enabled:     true,
		Credentials: []keycloakCredential{{Type: "password", Value: password}},
	})
	if err != nil {
		return errors.Wrapf(err, "while creating user %s", username)
	}
	var users []struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	query := fmt.Sprintf("%s?username=%s&exact=true", k.adminURL(realm, "users"), url.QueryEscape(username))
	if _, err := k.send(ctx, http.MethodGet, query, nil, &users); err != nil {
		return errors.Wrapf(err, "while looking up user %s", username)
	}
	var userID string
	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			userID = u.ID
		}
	}
	if userID == "" {
		return errors.Errorf("user %s not found after creation", username)
	}
	mappings := make([]keycloakRole, 0, len(roles))
	for _, name := range roles {
		var role keycloakRole
		if _, err := k.send(ctx, http.MethodGet, k.adminURL(realm, "roles", name), nil, &role); err != nil {
			return errors.Wrapf(err, "while getting role %s", name)
		}
		mappings = append(mappings, role)
	}
	_, err = k.send(ctx, http.MethodPost, k.adminURL(realm, "users", userID, "role-mappings", "realm"), mappings, nil)
	return errors.Wrapf(err, "while granting roles to %s", username)
}

// createClient registers a confidential client allowed to redirect anywhere.
func (k *keycloak) createClient(ctx context.Context, realm, clientID, secret string) error {
	err := k.create(ctx, k.adminURL(realm, "clients"), keycloakClient{
		ClientID:                  clientID,
		Secret:                    secret,
		Enabled:                   true,
		DirectAccessGrantsEnabled: true,
		RedirectURIs:              []string{"*"},
		WebOrigins:                []string{"*"},
	})
	return errors.Wrapf(err, "while creating client %s", clientID)
}
