// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package cluster

import (
	"context"
	"strings"

	"github.com/google/go-containerregistry/pkg/crane"
	"github.com/google/go-containerregistry/pkg/name"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"

	"github.com/kiegroup/kie-cloud-tests/pkg/utils/k8s"
)

// ImageStreamTagPrefix marks image references that point to an image stream tag: istag:<namespace>/<stream>:<tag>.
const ImageStreamTagPrefix = "istag:"

var imageStreamGVK = schema.GroupVersionKind{Group: "image.openshift.io", Version: "v1", Kind: "ImageStream"}

// ImageResolver turns image stream tags and image references into pullable references.
// Results are cached since the same images are resolved by every scenario of a run.
type ImageResolver struct {
	client     k8s.Client
	cache      *lru.Cache[string, string]
	pinDigests bool
	digest     func(ref string) (string, error)
}

// NewImageResolver creates an ImageResolver. When pinDigests is set, resolved references are pinned to their digest.
func NewImageResolver(c k8s.Client, size int, pinDigests bool) (*ImageResolver, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &ImageResolver{
		client:     c,
		cache:      cache,
		pinDigests: pinDigests,
		digest: func(ref string) (string, error) {
			return crane.Digest(ref)
		},
	}, nil
}

// ResolveReference resolves an image reference that is either a plain registry reference or an image stream tag.
func (r *ImageResolver) ResolveReference(ctx context.Context, ref string) (string, error) {
	if !strings.HasPrefix(ref, ImageStreamTagPrefix) {
		return r.pin(ref)
	}
	namespace, stream, tag, err := parseImageStreamTag(strings.TrimPrefix(ref, ImageStreamTagPrefix))
	if err != nil {
		return "", err
	}
	return r.Resolve(ctx, namespace, stream, tag)
}

// Resolve returns the image reference a tag of an image stream points to.
func (r *ImageResolver) Resolve(ctx context.Context, namespace, stream, tag string) (string, error) {
	key := namespace + "/" + stream + ":" + tag
	if ref, ok := r.cache.Get(key); ok {
		return ref, nil
	}
	is := &unstructured.Unstructured{}
	is.SetGroupVersionKind(imageStreamGVK)
	if err := r.client.Get(ctx, types.NamespacedName{Namespace: namespace, Name: stream}, is); err != nil {
		return "", errors.Wrapf(err, "while getting image stream %s", key)
	}
	ref, ok := taggedReference(is, tag)
	if !ok {
		return "", errors.Errorf("image stream %s has no tag %s", stream, tag)
	}
	ref, err := r.pin(ref)
	if err != nil {
		return "", err
	}
	r.cache.Add(key, ref)
	return ref, nil
}

func (r *ImageResolver) pin(ref string) (string, error) {
	if !r.pinDigests {
		return ref, nil
	}
	if pinned, ok := r.cache.Get(ref); ok {
		return pinned, nil
	}
	parsed, err := name.ParseReference(ref)
	if err != nil {
		return "", errors.Wrapf(err, "while parsing image reference %s", ref)
	}
	if _, isDigest := parsed.(name.Digest); isDigest {
		return ref, nil
	}
	digest, err := r.digest(ref)
	if err != nil {
		return "", errors.Wrapf(err, "while getting digest of %s", ref)
	}
	pinned := parsed.Context().Digest(digest).String()
	r.cache.Add(ref, pinned)
	return pinned, nil
}

// taggedReference prefers the image the tag was last imported as, then the tag source.
func taggedReference(is *unstructured.Unstructured, tag string) (string, bool) {
	statusTags, _, _ := unstructured.NestedSlice(is.Object, "status", "tags")
	for _, t := range statusTags {
		m, ok := t.(map[string]interface{})
		if !ok || m["tag"] != tag {
			continue
		}
		items, _, _ := unstructured.NestedSlice(m, "items")
		if len(items) == 0 {
			continue
		}
		if item, ok := items[0].(map[string]interface{}); ok {
			if ref, _, _ := unstructured.NestedString(item, "dockerImageReference"); ref != "" {
				return ref, true
			}
		}
	}
	specTags, _, _ := unstructured.NestedSlice(is.Object, "spec", "tags")
	for _, t := range specTags {
		m, ok := t.(map[string]interface{})
		if !ok || m["name"] != tag {
			continue
		}
		kind, _, _ := unstructured.NestedString(m, "from", "kind")
		ref, _, _ := unstructured.NestedString(m, "from", "name")
		if kind == "DockerImage" && ref != "" {
			return ref, true
		}
	}
	return "", false
}

func parseImageStreamTag(s string) (namespace, stream, tag string, err error) {
	slash := strings.Index(s, "/")
	colon := strings.LastIndex(s, ":")
	if slash <= 0 || colon < slash+2 || colon == len(s)-1 {
		return "", "", "", errors.Errorf("invalid image stream tag %q, expected <namespace>/<stream>:<tag>", s)
	}
	return s[:slash], s[slash+1 : colon], s[colon+1:], nil
}
