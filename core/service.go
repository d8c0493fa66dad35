package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

type Service struct {
	config          Config
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
	envelopes       *EnvelopeBuilder
	guard           *FixtureLifecycleGuard
	listener        *LifecycleListener
	telemetry       telemetry
}

type ServiceDependencies struct {
	Logger            Logger
	LoggerProvider    LoggerProvider
	MetricsRecorder   MetricsRecorder
	ErrorFactory      ErrorFactory
	ErrorMapper       ErrorMapper
	ConfigProvider    ConfigProvider
	OptionsResolver   OptionsResolver
	ComponentRegistry ComponentRegistry
	MarkerLookup      MarkerLookup
	Invalidator       ContextInvalidator
	SinkResolver      SinkResolver
	EnvelopeBuilder   *EnvelopeBuilder
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("contracts", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if builder.loggerProvider != nil {
		if named := builder.loggerProvider.GetLogger("contracts"); named != nil {
			logger = glog.Ensure(named)
		}
	}
	if provider == nil {
		provider = glog.ProviderFromLogger(logger)
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.envelopeBuilder == nil {
		builder.envelopeBuilder = NewEnvelopeBuilder()
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	svc := &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorFactory:    builder.errorFactory,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		components:      builder.components,
		markers:         builder.markers,
		invalidator:     builder.invalidator,
		sinks:           builder.sinks,
		envelopes:       builder.envelopeBuilder,
		telemetry:       newTelemetry(logger, builder.metricsRecorder),
	}

	if svc.components != nil && svc.markers != nil {
		guard, guardErr := NewFixtureLifecycleGuard(svc.components, svc.markers,
			WithGuardLogger(logger),
			WithGuardMetrics(builder.metricsRecorder),
			WithGuardKinds(finalConfig.Guard.ComponentKind, finalConfig.Guard.MarkerKind),
			WithSuppressedFixedPortWarning(finalConfig.Guard.SuppressFixedPortWarning),
		)
		if guardErr != nil {
			return nil, mapBuildError(builder.errorMapper, guardErr)
		}
		svc.guard = guard
		if svc.invalidator != nil {
			listener, listenerErr := NewLifecycleListener(guard, svc.invalidator)
			if listenerErr != nil {
				return nil, mapBuildError(builder.errorMapper, listenerErr)
			}
			svc.listener = listener
		}
	}
	return svc, nil
}

// Setup builds a service and reports the resolved configuration.
func Setup(cfg Config, opts ...Option) (*Service, error) {
	svc, err := NewService(cfg, opts...)
	if err != nil {
		return nil, err
	}
	svc.telemetry.logWithLevel(context.Background(), "info", "contracts service ready", map[string]any{
		"service_name":   svc.config.ServiceName,
		"component_kind": svc.config.Guard.ComponentKind,
		"marker_kind":    svc.config.Guard.MarkerKind,
		"guard_enabled":  svc.guard != nil,
		"sinks_enabled":  svc.sinks != nil,
	})
	return svc, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:            s.logger,
		LoggerProvider:    s.loggerProvider,
		MetricsRecorder:   s.metricsRecorder,
		ErrorFactory:      s.errorFactory,
		ErrorMapper:       s.errorMapper,
		ConfigProvider:    s.configProvider,
		OptionsResolver:   s.optionsResolver,
		ComponentRegistry: s.components,
		MarkerLookup:      s.markers,
		Invalidator:       s.invalidator,
		SinkResolver:      s.sinks,
		EnvelopeBuilder:   s.envelopes,
	}
}

func (s *Service) BuildEnvelope(ctx context.Context, payload any, headers map[string]any) (envelope Envelope, err error) {
	startedAt := time.Now()
	defer func() {
		s.observeOperation(ctx, startedAt, "envelope.build", err, map[string]any{
			"attributes": len(headers),
		})
	}()
	if s == nil || s.envelopes == nil {
		return Envelope{}, s.dependencyError("core: envelope builder is not configured")
	}
	envelope, err = s.envelopes.Create(payload, headers)
	if err != nil {
		return Envelope{}, s.mapError(err)
	}
	return envelope, nil
}

// EvaluateFixture runs the lifecycle guard. Failures from the component
// registry or marker lookup are returned unchanged.
func (s *Service) EvaluateFixture(ctx context.Context, class TestClass) (decision LifecycleDecision, err error) {
	startedAt := time.Now()
	defer func() {
		s.observeOperation(ctx, startedAt, "fixture.evaluate", err, map[string]any{
			"test_class": class.Name,
			"invalidate": decision.Invalidate,
		})
	}()
	if s == nil || s.guard == nil {
		return LifecycleDecision{}, s.dependencyError("core: component registry and marker lookup are required")
	}
	return s.guard.Evaluate(ctx, class)
}

func (s *Service) AfterTestClass(ctx context.Context, class TestClass) (decision LifecycleDecision, err error) {
	startedAt := time.Now()
	defer func() {
		s.observeOperation(ctx, startedAt, "fixture.after_test_class", err, map[string]any{
			"test_class":  class.Name,
			"context_key": contextKeyFor(class),
			"invalidate":  decision.Invalidate,
		})
	}()
	if s == nil || s.listener == nil {
		return LifecycleDecision{}, s.dependencyError("core: lifecycle listener requires a context invalidator")
	}
	return s.listener.AfterTestClass(ctx, class)
}

// SendEnvelope builds an envelope and hands it to the named sink. A blank
// kind falls back to envelope.default_sink.
func (s *Service) SendEnvelope(
	ctx context.Context,
	sinkKind string,
	payload any,
	headers map[string]any,
) (envelope Envelope, err error) {
	startedAt := time.Now()
	kind := strings.TrimSpace(sinkKind)
	if kind == "" && s != nil {
		kind = strings.TrimSpace(s.config.Envelope.DefaultSink)
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "envelope.send", err, map[string]any{
			"sink_kind":   kind,
			"envelope_id": envelope.ID(),
		})
	}()
	if s == nil || s.sinks == nil {
		return Envelope{}, s.dependencyError("core: sink resolver is not configured")
	}
	if kind == "" {
		return Envelope{}, s.mapError(badInputError("core: sink kind is required"))
	}
	sink, ok := s.sinks.Get(kind)
	if !ok || sink == nil {
		return Envelope{}, s.mapError(newContractError(
			fmt.Sprintf("core: sink %q not registered", kind),
			goerrors.CategoryNotFound,
			ContractErrorSinkNotFound,
		))
	}
	built, err := s.BuildEnvelope(ctx, payload, headers)
	if err != nil {
		return Envelope{}, err
	}
	if err := sink.Send(ctx, built); err != nil {
		return Envelope{}, s.mapError(deliveryError(err, kind))
	}
	return built, nil
}

func (s *Service) observeOperation(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	err error,
	fields map[string]any,
) {
	if s == nil {
		return
	}
	s.telemetry.observeOperation(ctx, startedAt, operation, err, fields)
}

func (s *Service) dependencyError(message string) error {
	factory := goerrors.New
	if s != nil && s.errorFactory != nil {
		factory = s.errorFactory
	}
	return ensureContractErrorEnvelope(factory(message, goerrors.CategoryInternal).
		WithTextCode(ContractErrorInternal))
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}
