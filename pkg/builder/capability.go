// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package builder assembles scenarios from the catalog. Builders advertise the optional
// features they support for a deployment flavor as a set of capabilities.
package builder

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// Capability is an optional feature of a scenario.
type Capability string

const (
	CapabilitySSO                    Capability = "sso"
	CapabilityLDAP                   Capability = "ldap"
	CapabilityPrometheus             Capability = "prometheus"
	CapabilityProcessMigration       Capability = "process-migration"
	CapabilitySecretAdminCredentials Capability = "secret-admin-credentials"
	CapabilityEdgeTermination        Capability = "edge-termination"
	CapabilityGitSource              Capability = "git-source"
	CapabilityMavenRepository        Capability = "maven-repository"
	CapabilityDockerRegistry         Capability = "docker-registry"
	CapabilityAMQ                    Capability = "amq"
	CapabilityHostnames              Capability = "hostnames"
	CapabilityDatabase               Capability = "database"
	CapabilityReplicas               Capability = "replicas"
	CapabilityUpgrade                Capability = "upgrade"
)

// CapabilitySet is a set of capabilities.
type CapabilitySet map[Capability]struct{}

func NewCapabilitySet(capabilities ...Capability) CapabilitySet {
	s := make(CapabilitySet, len(capabilities))
	for _, c := range capabilities {
		s[c] = struct{}{}
	}
	return s
}

func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// Intersect returns the capabilities present in both sets.
func (s CapabilitySet) Intersect(other CapabilitySet) CapabilitySet {
	res := CapabilitySet{}
	for c := range s {
		if other.Has(c) {
			res[c] = struct{}{}
		}
	}
	return res
}

// List returns the capabilities sorted by name.
func (s CapabilitySet) List() []Capability {
	list := make([]Capability, 0, len(s))
	for c := range s {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

// NotSupportedYet is the message of operations a flavor does not implement.
const NotSupportedYet = "Not supported yet."

var (
	// ErrUnsupported matches every UnsupportedError.
	ErrUnsupported = errors.New("unsupported capability")
	// ErrProfileMismatch is returned when a scenario is built under a product profile it does not support.
	ErrProfileMismatch = errors.New("scenario not available for profile")
	// ErrDuplicateSetting is returned when a setting that can only be set once is set twice.
	ErrDuplicateSetting = errors.New("setting already defined")
)

// UnsupportedError is recorded by a builder when asked for a capability it does not support.
type UnsupportedError struct {
	Flavor     string
	Scenario   string
	Capability Capability
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s of scenario %s with %s flavor: %s", e.Capability, e.Scenario, e.Flavor, NotSupportedYet)
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}
