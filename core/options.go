package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	opts "github.com/goliatone/go-options"
)

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type serviceBuilder struct {
	runtimeConfig   Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	components      ComponentRegistry
	markers         MarkerLookup
	invalidator     ContextInvalidator
	sinks           SinkResolver
	envelopeBuilder *EnvelopeBuilder
}

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *serviceBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorFactory(factory ErrorFactory) Option {
	return func(b *serviceBuilder) {
		b.errorFactory = factory
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *serviceBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *serviceBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *serviceBuilder) {
		b.optionsResolver = resolver
	}
}

func WithComponentRegistry(registry ComponentRegistry) Option {
	return func(b *serviceBuilder) {
		b.components = registry
	}
}

func WithMarkerLookup(lookup MarkerLookup) Option {
	return func(b *serviceBuilder) {
		b.markers = lookup
	}
}

// WithFixtureRegistry sets both lookups from a single StaticFixtureRegistry.
func WithFixtureRegistry(registry *StaticFixtureRegistry) Option {
	return func(b *serviceBuilder) {
		if registry == nil {
			return
		}
		b.components = registry
		b.markers = registry
	}
}

func WithContextInvalidator(invalidator ContextInvalidator) Option {
	return func(b *serviceBuilder) {
		b.invalidator = invalidator
	}
}

func WithSinkResolver(resolver SinkResolver) Option {
	return func(b *serviceBuilder) {
		b.sinks = resolver
	}
}

func WithEnvelopeBuilder(builder *EnvelopeBuilder) Option {
	return func(b *serviceBuilder) {
		b.envelopeBuilder = builder
	}
}

// defaultServiceBuilder leaves logger and provider unset so NewService can
// apply provider > logger > nop precedence to what the caller passed.
func defaultServiceBuilder(runtime Config) serviceBuilder {
	return serviceBuilder{
		runtimeConfig:   runtime,
		metricsRecorder: NopMetricsRecorder{},
		errorFactory:    goerrors.New,
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return contractErrorMapper(err)
}

// StaticRawConfigLoader serves a fixed map, typically decoded from a test
// suite's configuration file.
type StaticRawConfigLoader struct {
	Values map[string]any
}

func (l StaticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = StaticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	return cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
}

// GoOptionsResolver layers defaults < loaded config < runtime config.
type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			configToLayerMap(defaults, true),
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			configToLayerMap(loaded, false),
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			configToLayerMap(runtime, false),
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}

	guard := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Guard.ComponentKind) != "" {
		guard["component_kind"] = cfg.Guard.ComponentKind
	}
	if includeZero || strings.TrimSpace(cfg.Guard.MarkerKind) != "" {
		guard["marker_kind"] = cfg.Guard.MarkerKind
	}
	if includeZero || cfg.Guard.SuppressFixedPortWarning {
		guard["suppress_fixed_port_warning"] = cfg.Guard.SuppressFixedPortWarning
	}
	if len(guard) > 0 {
		layer["guard"] = guard
	}

	if includeZero || strings.TrimSpace(cfg.Envelope.DefaultSink) != "" {
		layer["envelope"] = map[string]any{
			"default_sink": cfg.Envelope.DefaultSink,
		}
	}
	return layer
}
