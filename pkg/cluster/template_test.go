// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package cluster

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

const kieTemplate = `
apiVersion: template.openshift.io/v1
kind: Template
metadata:
  name: rhpam-trial
parameters:
- name: APPLICATION_NAME
  value: myapp
  required: true
- name: KIE_ADMIN_PWD
  generate: expression
  from: "[a-zA-Z]{8}[0-9]{2}"
- name: KIE_SERVER_REPLICAS
  value: "1"
- name: KIE_SERVER_HTTPS_SECRET
  required: true
- name: MAVEN_REPO_URL
objects:
- apiVersion: apps/v1
  kind: Deployment
  metadata:
    name: ${APPLICATION_NAME}-kieserver
    labels:
      application: ${APPLICATION_NAME}
  spec:
    replicas: ${{KIE_SERVER_REPLICAS}}
    template:
      spec:
        containers:
        - name: kieserver
          env:
          - name: KIE_ADMIN_PWD
            value: ${KIE_ADMIN_PWD}
          - name: MAVEN_REPO_URL
            value: ${MAVEN_REPO_URL}
          - name: UNKNOWN
            value: ${NOT_A_PARAMETER}
- apiVersion: v1
  kind: Service
  metadata:
    name: ${APPLICATION_NAME}-kieserver
  spec:
    ports:
    - port: 8080
`

func TestTemplate_Process(t *testing.T) {
	tpl, err := ParseTemplate([]byte(kieTemplate))
	require.NoError(t, err)
	require.Equal(t, "rhpam-trial", tpl.Name())
	require.Len(t, tpl.Parameters, 5)

	objs, err := tpl.Process(map[string]string{
		"APPLICATION_NAME":        "custom",
		"KIE_SERVER_REPLICAS":     "2",
		"KIE_SERVER_HTTPS_SECRET": "secret",
		"IGNORED":                 "value",
	})
	require.NoError(t, err)
	require.Len(t, objs, 2)

	deployment := objs[0]
	require.Equal(t, "Deployment", deployment.GetKind())
	require.Equal(t, "custom-kieserver", deployment.GetName())
	require.Equal(t, map[string]string{"application": "custom"}, deployment.GetLabels())

	// a raw parameter reference becomes a JSON value
	replicas, found, err := unstructured.NestedInt64(deployment.Object, "spec", "replicas")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(2), replicas)

	containers, _, err := unstructured.NestedSlice(deployment.Object, "spec", "template", "spec", "containers")
	require.NoError(t, err)
	env := containers[0].(map[string]interface{})["env"].([]interface{})
	password := env[0].(map[string]interface{})["value"].(string)
	assert.Regexp(t, regexp.MustCompile("^[a-zA-Z]{8}[0-9]{2}$"), password)
	assert.Equal(t, "", env[1].(map[string]interface{})["value"])
	assert.Equal(t, "${NOT_A_PARAMETER}", env[2].(map[string]interface{})["value"])

	ports, _, err := unstructured.NestedSlice(objs[1].Object, "spec", "ports")
	require.NoError(t, err)
	require.Equal(t, int64(8080), ports[0].(map[string]interface{})["port"])
	// processing does not alter the template itself
	require.Equal(t, "${APPLICATION_NAME}-kieserver", tpl.Objects[0]["metadata"].(map[string]interface{})["name"])
}

func TestTemplate_ProcessMissingRequired(t *testing.T) {
	tpl, err := ParseTemplate([]byte(kieTemplate))
	require.NoError(t, err)

	_, err = tpl.Process(map[string]string{"APPLICATION_NAME": ""})
	require.EqualError(t, err, "template rhpam-trial: missing required parameters: APPLICATION_NAME, KIE_SERVER_HTTPS_SECRET")
}

func TestParseTemplate_WrongKind(t *testing.T) {
	_, err := ParseTemplate([]byte("kind: ConfigMap\napiVersion: v1\n"))
	require.EqualError(t, err, "expected a Template, got ConfigMap")
}

func TestSubstituteString(t *testing.T) {
	values := map[string]string{"NAME": "app", "PORT": "8080", "FLAG": "true", "TEXT": "not json"}
	tests := []struct {
		in   string
		want interface{}
	}{
		{in: "${NAME}", want: "app"},
		{in: "${NAME}-${NAME}", want: "app-app"},
		{in: "${{PORT}}", want: int64(8080)},
		{in: "${{FLAG}}", want: true},
		{in: "${{TEXT}}", want: "not json"},
		{in: "port ${{PORT}}", want: "port 8080"},
		{in: "${MISSING}", want: "${MISSING}"},
		{in: "plain", want: "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, substituteString(tt.in, values))
		})
	}
}

func TestGenerateValue(t *testing.T) {
	tests := []struct {
		from    string
		pattern string
	}{
		{from: "[a-z]{4}", pattern: "^[a-z]{4}$"},
		{from: "[\\w]{10}", pattern: "^\\w{10}$"},
		{from: "[\\d]{3}", pattern: "^[0-9]{3}$"},
		{from: "user-[A-Z0-9]{5}", pattern: "^user-[A-Z0-9]{5}$"},
		{from: "[ab]{6}", pattern: "^[ab]{6}$"},
	}
	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			got, err := GenerateValue(tt.from)
			require.NoError(t, err)
			require.Regexp(t, tt.pattern, got)
		})
	}

	_, err := GenerateValue("[z-a]{3}")
	require.EqualError(t, err, "invalid range z-a")
	_, err = GenerateValue("[a]{999}")
	require.EqualError(t, err, "invalid length in [a]{999}")
}
