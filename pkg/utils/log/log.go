// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package log

import (
	"flag"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"go.elastic.co/apm/module/apmzap/v2"
	"go.elastic.co/apm/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	klog "k8s.io/klog/v2"
	crlog "sigs.k8s.io/controller-runtime/pkg/log"
	crzap "sigs.k8s.io/controller-runtime/pkg/log/zap"
)

const (
	EcsVersion     = "1.4.0"
	EcsServiceType = "kie-cloud-tests"
	FlagName       = "log-verbosity"
	DevFlagName    = "log-development"
)

var (
	verbosity   = flag.Int(FlagName, 0, "Verbosity level of logs (-2=Error, -1=Warn, 0=Info, >0=Debug)")
	development = flag.Bool(DevFlagName, false, "Use a human readable console encoder instead of JSON")
)

// BindFlags attaches logging flags to the given flag set.
func BindFlags(flags *pflag.FlagSet) {
	flags.AddGoFlag(flag.Lookup(FlagName))
	flags.AddGoFlag(flag.Lookup(DevFlagName))
}

type logBuilder struct {
	tracer      *apm.Tracer
	verbosity   *int
	development bool
	version     string
	dest        io.Writer
}

// Option represents log configuration options.
type Option func(*logBuilder)

// WithVerbosity sets the log verbosity level.
// Verbosity levels from 2 are custom levels that increase the verbosity as the value increases.
// Standard levels are 1 (Debug), 0 (Info), -1 (Warn) and -2 (Error).
func WithVerbosity(verbosity int) Option {
	return func(lb *logBuilder) {
		lb.verbosity = &verbosity
	}
}

// WithTracer sets the tracer used by the logger to send logs to APM.
func WithTracer(tracer *apm.Tracer) Option {
	return func(lb *logBuilder) {
		lb.tracer = tracer
	}
}

// WithDevelopment switches to the console encoder.
func WithDevelopment(enabled bool) Option {
	return func(lb *logBuilder) {
		lb.development = enabled
	}
}

// WithVersion sets the service.version field attached to every entry.
func WithVersion(version string) Option {
	return func(lb *logBuilder) {
		lb.version = version
	}
}

// WithDestination overrides the writer logs go to. Defaults to stderr.
func WithDestination(w io.Writer) Option {
	return func(lb *logBuilder) {
		lb.dest = w
	}
}

// InitLogger initializes the global logger.
func InitLogger(opts ...Option) {
	lb := &logBuilder{
		verbosity:   verbosity,
		development: *development,
		version:     "unknown",
		dest:        os.Stderr,
	}

	for _, opt := range opts {
		opt(lb)
	}

	setLogger(lb)
}

func setLogger(lb *logBuilder) {
	zapLevel := determineLogLevel(lb.verbosity, lb.development)

	// if the Zap custom level is less than debug (verbosity level 2 and above) set the klog level to the same level
	if zapLevel.Level() < zap.DebugLevel {
		flagset := flag.NewFlagSet("", flag.ContinueOnError)
		klog.InitFlags(flagset)
		_ = flagset.Set("v", strconv.Itoa(int(zapLevel.Level())*-1))
	}

	opts := []zap.Option{
		zap.Fields(
			zap.String("service.version", lb.version),
		),
	}

	// use instrumented core if tracing is enabled
	if lb.tracer != nil {
		opts = append(opts, zap.WrapCore((&apmzap.Core{Tracer: lb.tracer}).WrapCore))
	}

	stackTraceLevel := zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	crlog.SetLogger(crzap.New(func(o *crzap.Options) {
		o.DestWriter = lb.dest
		o.Development = lb.development
		o.Level = &zapLevel
		o.StacktraceLevel = &stackTraceLevel
		o.Encoder = newEncoder(lb.development)
		o.ZapOpts = append(opts, ecsFields(lb.development)...)
	}))
}

func newEncoder(development bool) zapcore.Encoder {
	if development {
		encoderConf := zap.NewDevelopmentEncoderConfig()
		encoderConf.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConf)
	}
	encoderConf := zap.NewProductionEncoderConfig()
	encoderConf.MessageKey = "message"
	encoderConf.TimeKey = "@timestamp"
	encoderConf.LevelKey = "log.level"
	encoderConf.NameKey = "log.logger"
	encoderConf.StacktraceKey = "error.stack_trace"
	encoderConf.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(encoderConf)
}

func ecsFields(development bool) []zap.Option {
	if development {
		return nil
	}
	return []zap.Option{
		zap.Fields(
			zap.String("service.type", EcsServiceType),
			zap.String("ecs.version", EcsVersion),
		),
	}
}

func determineLogLevel(v *int, development bool) zap.AtomicLevel {
	switch {
	case v != nil && *v > -3:
		return zap.NewAtomicLevelAt(zapcore.Level(*v * -1))
	case development:
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	default:
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
}
