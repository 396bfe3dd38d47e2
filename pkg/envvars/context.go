// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package envvars

import (
	"os"
	"sort"
	"strings"
)

// Context is an immutable set of environment variables handed from one deployment step to the next.
// Every modification returns a new Context: keys are only ever added or overwritten, never removed.
// The zero value is an empty context.
type Context struct {
	vars map[string]string
}

// New returns a Context holding a copy of the given variables.
func New(vars map[string]string) Context {
	return Context{}.WithAll(vars)
}

// With returns a copy of the context where key is set to value.
func (c Context) With(key, value string) Context {
	return c.WithAll(map[string]string{key: value})
}

// WithAll returns a copy of the context with all the given variables set.
func (c Context) WithAll(vars map[string]string) Context {
	merged := make(map[string]string, len(c.vars)+len(vars))
	for k, v := range c.vars {
		merged[k] = v
	}
	for k, v := range vars {
		merged[k] = v
	}
	return Context{vars: merged}
}

// Merge returns a copy of the context overwritten with the variables of other.
func (c Context) Merge(other Context) Context {
	return c.WithAll(other.vars)
}

// Get returns the value of key, or an empty string.
func (c Context) Get(key string) string {
	return c.vars[key]
}

// Lookup returns the value of key and whether it is set.
func (c Context) Lookup(key string) (string, bool) {
	v, ok := c.vars[key]
	return v, ok
}

// Has returns true if key is set.
func (c Context) Has(key string) bool {
	_, ok := c.vars[key]
	return ok
}

// Len returns the number of variables.
func (c Context) Len() int {
	return len(c.vars)
}

// Keys returns the sorted variable names.
func (c Context) Keys() []string {
	keys := make([]string, 0, len(c.vars))
	for k := range c.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AsMap returns a copy of the variables.
func (c Context) AsMap() map[string]string {
	m := make(map[string]string, len(c.vars))
	for k, v := range c.vars {
		m[k] = v
	}
	return m
}

// Expand replaces ${KEY} and $KEY references in s with their values. Unknown references expand to nothing.
func (c Context) Expand(s string) string {
	return os.Expand(s, c.Get)
}

// Masked returns the variables with the values of secret looking keys replaced, for logging and dumps.
func (c Context) Masked() map[string]string {
	m := c.AsMap()
	for k := range m {
		if isSecretKey(k) {
			m[k] = "********"
		}
	}
	return m
}

func isSecretKey(key string) bool {
	for _, suffix := range []string{"_PWD", "_PASSWORD", "_SECRET", "_CREDENTIAL"} {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}
