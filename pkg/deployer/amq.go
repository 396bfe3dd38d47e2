// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package deployer

import (
	"context"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kiegroup/kie-cloud-tests/pkg/cluster"
	"github.com/kiegroup/kie-cloud-tests/pkg/config"
	"github.com/kiegroup/kie-cloud-tests/pkg/deployment"
	"github.com/kiegroup/kie-cloud-tests/pkg/envvars"
)

const (
	AMQName       = "amq"
	AMQSecretName = "amq-app-secret"

	amqKeystoreFile   = "broker.ks"
	amqTruststoreFile = "broker.ts"
	amqPort           = 61616
)

// DefaultAMQQueues are the queues the kie-server listens to when JMS is enabled.
var DefaultAMQQueues = []string{"queue/KIE.SERVER.REQUEST", "queue/KIE.SERVER.RESPONSE", "queue/KIE.SERVER.EXECUTOR", "queue/KIE.SERVER.SIGNAL"}

// AMQ deploys an Artemis broker. When a keystore and a truststore are configured
// they are mounted into the broker from a secret the kie-server can mount too.
type AMQ struct {
	image      string
	user       string
	password   string
	keystore   string
	truststore string
	queues     []string
	timeouts   config.Timeouts
}

func NewAMQ(cfg config.Config) *AMQ {
	return &AMQ{
		image:      cfg.Image(config.ImageAMQ),
		user:       cfg.Credentials.AMQUser,
		password:   cfg.Credentials.AMQPassword,
		keystore:   cfg.AMQKeystore,
		truststore: cfg.AMQTruststore,
		queues:     DefaultAMQQueues,
		timeouts:   cfg.Timeouts,
	}
}

func (a *AMQ) Name() string {
	return AMQName
}

func (a *AMQ) secured() bool {
	return a.keystore != "" && a.truststore != ""
}

// Deploy returns the AMQ_* variables, and the store variables when the broker is secured.
func (a *AMQ) Deploy(ctx context.Context, p *cluster.Project, _ envvars.Context) (deployment.Deployment, envvars.Context, error) {
	values := map[string]string{
		"user":          a.user,
		"password":      a.password,
		"queues":        strings.Join(a.queues, ","),
		"secret":        "",
		"keystore":      amqKeystoreFile,
		"truststore":    amqTruststoreFile,
		"storePassword": a.password,
	}
	if a.secured() {
		if err := a.createStoresSecret(ctx, p); err != nil {
			return nil, envvars.Context{}, err
		}
		values["secret"] = AMQSecretName
	}
	w, err := deployManifest(ctx, p, "amq.yaml", manifestParams{Name: AMQName, Image: a.image, Values: values}, deployment.KindAmq, a.timeouts)
	if err != nil {
		return nil, envvars.Context{}, err
	}

	env := envvars.New(map[string]string{
		envvars.AMQUsername:  a.user,
		envvars.AMQPassword:  a.password,
		envvars.AMQQueues:    values["queues"],
		envvars.AMQBrokerURL: fmt.Sprintf("tcp://%s.%s.svc:%d", AMQName, p.Name(), amqPort),
	})
	if a.secured() {
		env = env.WithAll(map[string]string{
			envvars.AMQSecret:             AMQSecretName,
			envvars.AMQKeystore:           amqKeystoreFile,
			envvars.AMQKeystorePassword:   a.password,
			envvars.AMQTruststore:         amqTruststoreFile,
			envvars.AMQTruststorePassword: a.password,
		})
	}
	return w, env, nil
}

func (a *AMQ) createStoresSecret(ctx context.Context, p *cluster.Project) error {
	keystore, err := p.Cluster().ReadSource(ctx, a.keystore)
	if err != nil {
		return err
	}
	truststore, err := p.Cluster().ReadSource(ctx, a.truststore)
	if err != nil {
		return err
	}
	return p.Create(ctx, &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: AMQSecretName, Labels: map[string]string{"app": AMQName}},
		Type:       corev1.SecretTypeOpaque,
		Data: map[string][]byte{
			amqKeystoreFile:   keystore,
			amqTruststoreFile: truststore,
		},
	})
}
