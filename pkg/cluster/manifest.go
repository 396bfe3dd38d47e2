// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package cluster

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
)

// DecodeObjects decodes a stream of YAML or JSON documents into objects.
// Documents of kind List are expanded into their items and empty documents are skipped.
func DecodeObjects(data []byte) ([]*unstructured.Unstructured, error) {
	reader := utilyaml.NewYAMLReader(bufio.NewReader(bytes.NewReader(data)))
	var objs []*unstructured.Unstructured
	for {
		doc, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return objs, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "while reading manifest")
		}
		if len(bytes.TrimSpace(doc)) == 0 {
			continue
		}
		value, err := decodeYAMLValue(doc)
		if err != nil {
			return nil, err
		}
		content, ok := value.(map[string]interface{})
		if !ok {
			if value == nil {
				continue
			}
			return nil, errors.Errorf("expected an object, got %T", value)
		}
		objs = append(objs, expandList(content)...)
	}
}

func expandList(content map[string]interface{}) []*unstructured.Unstructured {
	obj := &unstructured.Unstructured{Object: content}
	if !obj.IsList() {
		return []*unstructured.Unstructured{obj}
	}
	var objs []*unstructured.Unstructured
	items, _, _ := unstructured.NestedSlice(content, "items")
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			objs = append(objs, expandList(m)...)
		}
	}
	return objs
}

// decodeYAMLValue converts a YAML or JSON document into the generic representation used by unstructured objects,
// where whole numbers are int64.
func decodeYAMLValue(doc []byte) (interface{}, error) {
	jsonDoc, err := yaml.YAMLToJSON(doc)
	if err != nil {
		return nil, errors.Wrap(err, "while converting YAML to JSON")
	}
	return decodeJSONValue(jsonDoc)
}

func decodeJSONValue(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after JSON value")
	}
	return normalizeNumbers(value), nil
}

func normalizeNumbers(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		for k, item := range v {
			v[k] = normalizeNumbers(item)
		}
		return v
	case []interface{}:
		for i, item := range v {
			v[i] = normalizeNumbers(item)
		}
		return v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	default:
		return v
	}
}
