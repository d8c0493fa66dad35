package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-contractkit/core"
)

type FixtureService interface {
	AfterTestClass(ctx context.Context, class core.TestClass) (core.LifecycleDecision, error)
}

type EnvelopeService interface {
	SendEnvelope(ctx context.Context, sinkKind string, payload any, headers map[string]any) (core.Envelope, error)
}

type AfterTestClassCommand struct {
	service FixtureService
}

func NewAfterTestClassCommand(service FixtureService) *AfterTestClassCommand {
	return &AfterTestClassCommand{service: service}
}

func (c *AfterTestClassCommand) Execute(ctx context.Context, msg AfterTestClassMessage) error {
	if c == nil || c.service == nil {
		return missingDependency("after_test_class", "fixture service")
	}
	decision, err := c.service.AfterTestClass(ctx, msg.Class)
	if err != nil {
		return err
	}
	storeResult(ctx, decision)
	return nil
}

type SendEnvelopeCommand struct {
	service EnvelopeService
}

func NewSendEnvelopeCommand(service EnvelopeService) *SendEnvelopeCommand {
	return &SendEnvelopeCommand{service: service}
}

func (c *SendEnvelopeCommand) Execute(ctx context.Context, msg SendEnvelopeMessage) error {
	if c == nil || c.service == nil {
		return missingDependency("send_envelope", "envelope service")
	}
	envelope, err := c.service.SendEnvelope(ctx, msg.SinkKind, msg.Payload, msg.Headers)
	if err != nil {
		return err
	}
	storeResult(ctx, envelope)
	return nil
}

type InvalidateContextCommand struct {
	invalidator core.ContextInvalidator
}

func NewInvalidateContextCommand(invalidator core.ContextInvalidator) *InvalidateContextCommand {
	return &InvalidateContextCommand{invalidator: invalidator}
}

func (c *InvalidateContextCommand) Execute(ctx context.Context, msg InvalidateContextMessage) error {
	if c == nil || c.invalidator == nil {
		return missingDependency("invalidate_context", "context invalidator")
	}
	scope := msg.Scope
	if scope.Mode == "" {
		scope.Mode = core.HierarchyExhaustive
	}
	return c.invalidator.Invalidate(ctx, scope)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
