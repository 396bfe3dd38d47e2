// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package cryptutil

import (
	"bufio"
	"bytes"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Htpasswd is an htpasswd file with bcrypt entries, as read by the Docker registry.
type Htpasswd struct {
	hasher  PasswordHasher
	entries map[string][]byte
}

// NewHtpasswd returns an empty file hashing passwords with hasher.
func NewHtpasswd(hasher PasswordHasher) *Htpasswd {
	return &Htpasswd{hasher: hasher, entries: map[string][]byte{}}
}

// ParseHtpasswd reads an existing file. Blank lines and comments are ignored.
func ParseHtpasswd(hasher PasswordHasher, data []byte) (*Htpasswd, error) {
	h := NewHtpasswd(hasher)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		user, hash, ok := strings.Cut(line, ":")
		if !ok || user == "" || hash == "" {
			return nil, errors.Errorf("invalid htpasswd line %q", line)
		}
		h.entries[user] = []byte(hash)
	}
	return h, scanner.Err()
}

// Set adds or updates the entry of user. The existing hash is kept if it matches password.
func (h *Htpasswd) Set(user, password string) error {
	if user == "" || strings.Contains(user, ":") {
		return errors.Errorf("invalid htpasswd user %q", user)
	}
	hash, err := h.hasher.ReuseOrGenerateHash([]byte(password), h.entries[user])
	if err != nil {
		return errors.Wrapf(err, "while hashing password of %s", user)
	}
	h.entries[user] = hash
	return nil
}

// Users returns the users of the file, sorted.
func (h *Htpasswd) Users() []string {
	users := make([]string, 0, len(h.entries))
	for user := range h.entries {
		users = append(users, user)
	}
	sort.Strings(users)
	return users
}

// Bytes returns the file content, one sorted "user:hash" line per user.
func (h *Htpasswd) Bytes() []byte {
	var buf bytes.Buffer
	for _, user := range h.Users() {
		buf.WriteString(user)
		buf.WriteByte(':')
		buf.Write(h.entries[user])
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
