package query

import (
	"context"

	"github.com/goliatone/go-contractkit/core"
)

type FixtureEvaluator interface {
	EvaluateFixture(ctx context.Context, class core.TestClass) (core.LifecycleDecision, error)
}

type EnvelopeBuilder interface {
	BuildEnvelope(ctx context.Context, payload any, headers map[string]any) (core.Envelope, error)
}

type EvaluateFixtureQuery struct {
	evaluator FixtureEvaluator
}

func NewEvaluateFixtureQuery(evaluator FixtureEvaluator) *EvaluateFixtureQuery {
	return &EvaluateFixtureQuery{evaluator: evaluator}
}

func (q *EvaluateFixtureQuery) Query(ctx context.Context, msg EvaluateFixtureMessage) (core.LifecycleDecision, error) {
	if q == nil || q.evaluator == nil {
		return core.LifecycleDecision{}, missingDependency("evaluate_fixture", "fixture evaluator")
	}
	return q.evaluator.EvaluateFixture(ctx, msg.Class)
}

type BuildEnvelopeQuery struct {
	builder EnvelopeBuilder
}

func NewBuildEnvelopeQuery(builder EnvelopeBuilder) *BuildEnvelopeQuery {
	return &BuildEnvelopeQuery{builder: builder}
}

func (q *BuildEnvelopeQuery) Query(ctx context.Context, msg BuildEnvelopeMessage) (core.Envelope, error) {
	if q == nil || q.builder == nil {
		return core.Envelope{}, missingDependency("build_envelope", "envelope builder")
	}
	return q.builder.BuildEnvelope(ctx, msg.Payload, msg.Headers)
}
