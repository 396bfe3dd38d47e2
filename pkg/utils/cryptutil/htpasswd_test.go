// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package cryptutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHtpasswd(t *testing.T) {
	hasher, err := NewPasswordHasher(0)
	require.NoError(t, err)

	h, err := ParseHtpasswd(hasher, []byte("# registry users\n\nreader:"+storedHash+"\n"))
	require.NoError(t, err)
	require.NoError(t, h.Set("reader", "password2"))
	require.NoError(t, h.Set("admin", "s3cret"))
	require.Equal(t, []string{"admin", "reader"}, h.Users())

	lines := strings.Split(strings.TrimSuffix(string(h.Bytes()), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "reader:"+storedHash, lines[1])
	user, hash, _ := strings.Cut(lines[0], ":")
	require.Equal(t, "admin", user)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

func TestHtpasswd_Invalid(t *testing.T) {
	hasher, err := NewPasswordHasher(0)
	require.NoError(t, err)

	_, err = ParseHtpasswd(hasher, []byte("no-separator\n"))
	require.EqualError(t, err, `invalid htpasswd line "no-separator"`)
	require.EqualError(t, NewHtpasswd(hasher).Set("a:b", "pwd"), `invalid htpasswd user "a:b"`)
}
