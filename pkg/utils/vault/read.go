// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package vault

import (
	"fmt"
)

// ReadFields fetches the given fields of the secret stored at path.
// KV v2 secrets nest their fields under "data", both layouts are supported.
// Fields missing from the secret are left out of the result.
func ReadFields(c Client, path string, fieldNames ...string) (map[string]string, error) {
	secret, err := c.Read(path)
	if err != nil {
		return nil, err
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("no data found at %s", path)
	}

	data := secret.Data
	if nested, ok := data["data"].(map[string]interface{}); ok {
		data = nested
	}

	result := make(map[string]string, len(fieldNames))
	for _, name := range fieldNames {
		val, ok := data[name]
		if !ok {
			continue
		}
		stringVal, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("field %s at %s is not a string", name, path)
		}
		result[name] = stringVal
	}
	return result, nil
}
