package contractkit

import (
	"fmt"

	"github.com/goliatone/go-command/runner"
	"github.com/goliatone/go-contractkit/adapters/gocommand"
	"github.com/goliatone/go-contractkit/adapters/gologger"
	contractcommand "github.com/goliatone/go-contractkit/command"
	"github.com/goliatone/go-contractkit/core"
	contractquery "github.com/goliatone/go-contractkit/query"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
)

type CommandQueryService interface {
	contractcommand.FixtureService
	contractcommand.EnvelopeService
	contractquery.FixtureEvaluator
	contractquery.EnvelopeBuilder
}

type Commands struct {
	AfterTestClass    *contractcommand.AfterTestClassCommand
	SendEnvelope      *contractcommand.SendEnvelopeCommand
	InvalidateContext *contractcommand.InvalidateContextCommand
}

type Queries struct {
	EvaluateFixture *contractquery.EvaluateFixtureQuery
	BuildEnvelope   *contractquery.BuildEnvelopeQuery
}

type Facade struct {
	service     CommandQueryService
	invalidator core.ContextInvalidator
	logger      core.Logger
	commands    Commands
	queries     Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	invalidator core.ContextInvalidator
}

// WithFacadeInvalidator overrides the invalidator used by the
// InvalidateContext command. By default it comes from the service
// dependencies.
func WithFacadeInvalidator(invalidator core.ContextInvalidator) FacadeOption {
	return func(options *facadeOptions) {
		options.invalidator = invalidator
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("contractkit: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	deps := serviceDependencies(service)
	invalidator := cfg.invalidator
	if invalidator == nil {
		invalidator = deps.Invalidator
	}

	facade := &Facade{
		service:     service,
		invalidator: invalidator,
		logger:      gologger.ComponentLogger(deps.LoggerProvider, deps.Logger, "facade"),
	}
	facade.commands = Commands{
		AfterTestClass:    contractcommand.NewAfterTestClassCommand(service),
		SendEnvelope:      contractcommand.NewSendEnvelopeCommand(service),
		InvalidateContext: contractcommand.NewInvalidateContextCommand(invalidator),
	}
	facade.queries = Queries{
		EvaluateFixture: contractquery.NewEvaluateFixtureQuery(service),
		BuildEnvelope:   contractquery.NewBuildEnvelopeQuery(service),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

type RegisterOption func(*registerOptions)

type registerOptions struct {
	queueKey      string
	queueRegistry *jobqueuecommand.Registry
	runnerOpts    []runner.Option
}

// WithQueueRegistry mirrors the registered commands into a go-job queue
// registry under the given resolver key.
func WithQueueRegistry(key string, registry *jobqueuecommand.Registry) RegisterOption {
	return func(options *registerOptions) {
		options.queueKey = key
		options.queueRegistry = registry
	}
}

func WithRunnerOptions(opts ...runner.Option) RegisterOption {
	return func(options *registerOptions) {
		options.runnerOpts = append(options.runnerOpts, opts...)
	}
}

// RegisterHandlers registers and subscribes every facade handler on the
// adapter, then initializes the registry. The InvalidateContext command is
// skipped when no invalidator is available. On failure all subscriptions
// made so far are released.
func (f *Facade) RegisterHandlers(adapter *gocommand.RegistryAdapter, opts ...RegisterOption) (*gocommand.Subscriptions, error) {
	if f == nil {
		return nil, fmt.Errorf("contractkit: facade is nil")
	}
	if adapter == nil {
		return nil, fmt.Errorf("contractkit: registry adapter is required")
	}
	cfg := registerOptions{queueKey: "queue"}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.queueRegistry != nil {
		if err := adapter.AddQueueResolver(cfg.queueKey, cfg.queueRegistry); err != nil {
			return nil, err
		}
	}

	subs := &gocommand.Subscriptions{}
	fail := func(err error) (*gocommand.Subscriptions, error) {
		subs.UnsubscribeAll()
		return nil, err
	}

	sub, err := gocommand.RegisterAndSubscribe(adapter, f.commands.AfterTestClass, cfg.runnerOpts...)
	if err != nil {
		return fail(err)
	}
	subs.Add(sub)

	sub, err = gocommand.RegisterAndSubscribe(adapter, f.commands.SendEnvelope, cfg.runnerOpts...)
	if err != nil {
		return fail(err)
	}
	subs.Add(sub)

	if f.invalidator != nil {
		sub, err = gocommand.RegisterAndSubscribe(adapter, f.commands.InvalidateContext, cfg.runnerOpts...)
		if err != nil {
			return fail(err)
		}
		subs.Add(sub)
	}

	sub, err = gocommand.RegisterAndSubscribeQuery(adapter, f.queries.EvaluateFixture, cfg.runnerOpts...)
	if err != nil {
		return fail(err)
	}
	subs.Add(sub)

	sub, err = gocommand.RegisterAndSubscribeQuery(adapter, f.queries.BuildEnvelope, cfg.runnerOpts...)
	if err != nil {
		return fail(err)
	}
	subs.Add(sub)

	if err := adapter.Initialize(); err != nil {
		return fail(err)
	}
	f.logger.Info("contract handlers registered",
		"subscriptions", subs.Len(),
		"invalidation", f.invalidator != nil,
		"queue_resolver", cfg.queueRegistry != nil,
	)
	return subs, nil
}

func serviceDependencies(service CommandQueryService) core.ServiceDependencies {
	provider, ok := service.(interface {
		Dependencies() core.ServiceDependencies
	})
	if !ok {
		return core.ServiceDependencies{}
	}
	return provider.Dependencies()
}

var _ CommandQueryService = (*core.Service)(nil)
