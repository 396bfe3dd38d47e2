// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package cryptutil generates the password hashes written to htpasswd files.
package cryptutil

import (
	"bytes"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher returns a bcrypt hash of password, reusing existingHash when it still matches.
type PasswordHasher interface {
	ReuseOrGenerateHash(password, existingHash []byte) ([]byte, error)
}

// NewPasswordHasher returns a bcrypt hash generator.
// If cacheSize is greater than 0, hashes are kept in an LRU cache of that size
// so that regenerating the same htpasswd file does not pay the bcrypt cost twice.
func NewPasswordHasher(cacheSize int) (PasswordHasher, error) {
	if cacheSize <= 0 {
		return &bcryptHasher{}, nil
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, err
	}
	return &cachingHasher{
		generate: bcrypt.GenerateFromPassword,
		compare:  bcrypt.CompareHashAndPassword,
		cache:    cache,
	}, nil
}

type cachingHasher struct {
	cache *lru.Cache[string, []byte]

	// replaced in unit tests
	generate func(password []byte, cost int) ([]byte, error)
	compare  func(hashedPassword, password []byte) error
}

func (h *cachingHasher) ReuseOrGenerateHash(password, existingHash []byte) ([]byte, error) {
	key := string(password)
	if len(existingHash) > 0 {
		if cached, ok := h.cache.Get(key); ok && bytes.Equal(cached, existingHash) {
			return existingHash, nil
		}
		if h.compare(existingHash, password) == nil {
			h.cache.Add(key, existingHash)
			return existingHash, nil
		}
	}
	hash, err := h.generate(password, bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	h.cache.Add(key, hash)
	return hash, nil
}

type bcryptHasher struct{}

func (bcryptHasher) ReuseOrGenerateHash(password, existingHash []byte) ([]byte, error) {
	if len(existingHash) > 0 && bcrypt.CompareHashAndPassword(existingHash, password) == nil {
		return existingHash, nil
	}
	return bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
}
