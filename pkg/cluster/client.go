// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package cluster

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/client"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kiegroup/kie-cloud-tests/pkg/utils/httpclient"
	"github.com/kiegroup/kie-cloud-tests/pkg/utils/k8s"
)

var log = logf.Log.WithName("cluster")

const defaultImageCacheSize = 256

// Client gives access to the cluster scenarios are deployed to.
type Client struct {
	Client     k8s.Client
	Clientset  kubernetes.Interface
	RestConfig *rest.Config
	URLs       URLResolver
	Images     *ImageResolver
	HTTP       *retryablehttp.Client
}

// NewClient creates a cluster client from the given REST configuration.
func NewClient(restCfg *rest.Config, pinImageDigests bool) (*Client, error) {
	c, err := client.New(restCfg, client.Options{Scheme: k8s.Scheme()})
	if err != nil {
		return nil, errors.Wrap(err, "while creating the Kubernetes client")
	}
	clientset, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return nil, errors.Wrap(err, "while creating the Kubernetes clientset")
	}
	images, err := NewImageResolver(c, defaultImageCacheSize, pinImageDigests)
	if err != nil {
		return nil, err
	}
	return &Client{
		Client:     c,
		Clientset:  clientset,
		RestConfig: restCfg,
		URLs:       RouteResolver{Client: c},
		Images:     images,
		HTTP:       httpclient.New("cluster-http"),
	}, nil
}

// ReadSource returns the content of a template or manifest, either fetched over HTTP(S) or read from the local filesystem.
func (c *Client) ReadSource(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		return data, errors.Wrapf(err, "while reading %s", source)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "while fetching %s", source)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("while fetching %s: unexpected status %s", source, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	return data, errors.Wrapf(err, "while reading %s", source)
}
