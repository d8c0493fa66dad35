package contractkit

import "github.com/goliatone/go-contractkit/core"

type Config = core.Config
type GuardConfig = core.GuardConfig
type EnvelopeConfig = core.EnvelopeConfig

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies

type Envelope = core.Envelope
type EnvelopeBuilder = core.EnvelopeBuilder
type EnvelopeSink = core.EnvelopeSink
type SinkResolver = core.SinkResolver

type MockServerPortConfig = core.MockServerPortConfig
type LifecycleDecision = core.LifecycleDecision
type TestClass = core.TestClass
type ComponentRegistry = core.ComponentRegistry
type MarkerLookup = core.MarkerLookup
type ContextInvalidator = core.ContextInvalidator
type InvalidationScope = core.InvalidationScope
type StaticFixtureRegistry = core.StaticFixtureRegistry

var (
	WithLogger             = core.WithLogger
	WithLoggerProvider     = core.WithLoggerProvider
	WithMetricsRecorder    = core.WithMetricsRecorder
	WithErrorFactory       = core.WithErrorFactory
	WithErrorMapper        = core.WithErrorMapper
	WithConfigProvider     = core.WithConfigProvider
	WithOptionsResolver    = core.WithOptionsResolver
	WithComponentRegistry  = core.WithComponentRegistry
	WithMarkerLookup       = core.WithMarkerLookup
	WithFixtureRegistry    = core.WithFixtureRegistry
	WithContextInvalidator = core.WithContextInvalidator
	WithSinkResolver       = core.WithSinkResolver
	WithEnvelopeBuilder    = core.WithEnvelopeBuilder
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}

func NewFixtureRegistry() *StaticFixtureRegistry {
	return core.NewStaticFixtureRegistry()
}
