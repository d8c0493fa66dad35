package core

import (
	"context"
	"fmt"
	"strings"
)

// LifecycleListener is the host runner hook invoked after each test class. It
// applies the guard decision to the context invalidation sink.
type LifecycleListener struct {
	guard       Evaluator
	invalidator ContextInvalidator
}

func NewLifecycleListener(guard Evaluator, invalidator ContextInvalidator) (*LifecycleListener, error) {
	if guard == nil {
		return nil, badInputError("core: lifecycle evaluator is required")
	}
	if invalidator == nil {
		return nil, badInputError("core: context invalidator is required")
	}
	return &LifecycleListener{guard: guard, invalidator: invalidator}, nil
}

func (l *LifecycleListener) AfterTestClass(ctx context.Context, class TestClass) (LifecycleDecision, error) {
	if l == nil || l.guard == nil || l.invalidator == nil {
		return LifecycleDecision{}, fmt.Errorf("core: lifecycle listener is not configured")
	}
	decision, err := l.guard.Evaluate(ctx, class)
	if err != nil {
		return LifecycleDecision{}, err
	}
	if !decision.Invalidate {
		return decision, nil
	}
	scope := InvalidationScope{
		ContextKey: contextKeyFor(class),
		Mode:       HierarchyExhaustive,
		Reason:     decision.Reason,
	}
	if err := l.invalidator.Invalidate(ctx, scope); err != nil {
		return decision, err
	}
	return decision, nil
}

func contextKeyFor(class TestClass) string {
	if key := strings.TrimSpace(class.ContextKey); key != "" {
		return key
	}
	return strings.TrimSpace(class.Name)
}
