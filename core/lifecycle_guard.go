package core

import (
	"context"
	"fmt"
	"strings"
)

const metricFixtureGuardTotal = "contracts.fixture_guard.total"

const fixedPortWarning = "mock server uses fixed ports, the shared test context will be rebuilt; " +
	"prefer ephemeral ports so fixtures can be reused and this warning goes away"

type GuardOption func(*FixtureLifecycleGuard)

func WithGuardLogger(logger Logger) GuardOption {
	return func(g *FixtureLifecycleGuard) {
		g.telemetry.logger = logger
	}
}

func WithGuardMetrics(recorder MetricsRecorder) GuardOption {
	return func(g *FixtureLifecycleGuard) {
		g.telemetry.metrics = recorder
	}
}

// WithGuardKinds overrides the component and marker kinds the guard looks up.
// Blank values keep the defaults.
func WithGuardKinds(componentKind, markerKind string) GuardOption {
	return func(g *FixtureLifecycleGuard) {
		if kind := strings.TrimSpace(componentKind); kind != "" {
			g.componentKind = kind
		}
		if kind := strings.TrimSpace(markerKind); kind != "" {
			g.markerKind = kind
		}
	}
}

func WithSuppressedFixedPortWarning(suppress bool) GuardOption {
	return func(g *FixtureLifecycleGuard) {
		g.suppressWarning = suppress
	}
}

// FixtureLifecycleGuard decides, once per finished test class, whether the
// shared context must be rebuilt because the mock server held a fixed port.
type FixtureLifecycleGuard struct {
	components      ComponentRegistry
	markers         MarkerLookup
	componentKind   string
	markerKind      string
	suppressWarning bool
	telemetry       telemetry
}

func NewFixtureLifecycleGuard(
	components ComponentRegistry,
	markers MarkerLookup,
	opts ...GuardOption,
) (*FixtureLifecycleGuard, error) {
	if components == nil {
		return nil, badInputError("core: component registry is required")
	}
	if markers == nil {
		return nil, badInputError("core: marker lookup is required")
	}
	guard := &FixtureLifecycleGuard{
		components:    components,
		markers:       markers,
		componentKind: ComponentMockServerConfig,
		markerKind:    MarkerAutoConfigureMockServer,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(guard)
	}
	guard.telemetry = newTelemetry(guard.telemetry.logger, guard.telemetry.metrics)
	return guard, nil
}

// Evaluate runs the applicability, opt-in and port checks in that order.
// Collaborator errors are returned as is.
func (g *FixtureLifecycleGuard) Evaluate(ctx context.Context, class TestClass) (LifecycleDecision, error) {
	if g == nil || g.components == nil || g.markers == nil {
		return LifecycleDecision{}, fmt.Errorf("core: fixture lifecycle guard is not configured")
	}
	if strings.TrimSpace(class.Name) == "" {
		return LifecycleDecision{}, badInputError("core: test class name is required")
	}

	registered, err := g.components.HasComponent(ctx, g.componentKind)
	if err != nil {
		return LifecycleDecision{}, err
	}
	if !registered {
		g.telemetry.logWithLevel(ctx, "debug", "mock server configuration is missing, skipping", map[string]any{
			"test_class":     class.Name,
			"component_kind": g.componentKind,
		})
		return g.record(ctx, keepContext(), "component_missing"), nil
	}

	marked, err := g.markers.HasMarker(ctx, class, g.markerKind)
	if err != nil {
		return LifecycleDecision{}, err
	}
	if !marked {
		g.telemetry.logWithLevel(ctx, "debug", "mock server auto-configuration marker not found, skipping", map[string]any{
			"test_class":  class.Name,
			"marker_kind": g.markerKind,
		})
		return g.record(ctx, keepContext(), "marker_missing"), nil
	}

	ports, err := g.components.GetComponent(ctx, g.componentKind)
	if err != nil {
		return LifecycleDecision{}, err
	}
	if !ports.FixedPort() {
		return g.record(ctx, keepContext(), "ephemeral_ports"), nil
	}

	if !g.suppressWarning {
		g.telemetry.logWithLevel(ctx, "warn", fixedPortWarning, map[string]any{
			"test_class": class.Name,
			"http_port":  ports.HTTPPort,
			"https_port": ports.HTTPSPort,
		})
	}
	return g.record(ctx, invalidateContext(ReasonFixedPort), "fixed_port"), nil
}

func (g *FixtureLifecycleGuard) record(ctx context.Context, decision LifecycleDecision, outcome string) LifecycleDecision {
	label := "keep"
	if decision.Invalidate {
		label = "invalidate"
	}
	g.telemetry.recordCounter(ctx, metricFixtureGuardTotal, 1, map[string]string{
		"decision": label,
		"outcome":  outcome,
	})
	return decision
}
