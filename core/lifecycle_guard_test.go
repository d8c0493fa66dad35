package core

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestMockServerPortConfig_FixedPortTruthTable(t *testing.T) {
	cases := []struct {
		name      string
		httpPort  int
		httpsPort int
		fixed     bool
	}{
		{name: "ephemeral http, https disabled", httpPort: 0, httpsPort: -1, fixed: false},
		{name: "fixed http, https disabled", httpPort: 8080, httpsPort: -1, fixed: true},
		{name: "ephemeral http, ephemeral https", httpPort: 0, httpsPort: 0, fixed: false},
		{name: "ephemeral http, fixed https", httpPort: 0, httpsPort: 8443, fixed: true},
		{name: "fixed http, ephemeral https", httpPort: 8080, httpsPort: 0, fixed: false},
		{name: "fixed http, fixed https", httpPort: 8080, httpsPort: 8443, fixed: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := MockServerPortConfig{HTTPPort: tc.httpPort, HTTPSPort: tc.httpsPort}
			if got := cfg.FixedPort(); got != tc.fixed {
				t.Fatalf("expected fixed=%t for (%d, %d), got %t", tc.fixed, tc.httpPort, tc.httpsPort, got)
			}
		})
	}
}

func TestDefaultMockServerPortConfig_IsNotFixed(t *testing.T) {
	if DefaultMockServerPortConfig().FixedPort() {
		t.Fatalf("expected default port config to use ephemeral ports")
	}
}

func TestFixtureLifecycleGuard_InvalidatesOnFixedPort(t *testing.T) {
	fixtures := &stubFixtures{registered: true, marked: true, ports: MockServerPortConfig{HTTPPort: 8080, HTTPSPort: -1}}
	logger := &capturingLogger{}
	guard, err := NewFixtureLifecycleGuard(fixtures, fixtures, WithGuardLogger(logger))
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}

	decision, err := guard.Evaluate(context.Background(), TestClass{Name: "OrdersContractTest"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !decision.Invalidate {
		t.Fatalf("expected invalidate decision for fixed port")
	}
	if decision.Reason != ReasonFixedPort {
		t.Fatalf("expected reason %q, got %q", ReasonFixedPort, decision.Reason)
	}
	if logger.count("warn") != 1 {
		t.Fatalf("expected one fixed port warning, got %d", logger.count("warn"))
	}
	if fixtures.lastMarker != MarkerAutoConfigureMockServer {
		t.Fatalf("expected default marker kind, got %q", fixtures.lastMarker)
	}
	if fixtures.lastKind != ComponentMockServerConfig {
		t.Fatalf("expected default component kind, got %q", fixtures.lastKind)
	}
}

func TestFixtureLifecycleGuard_KeepsContextForEphemeralPorts(t *testing.T) {
	for _, ports := range []MockServerPortConfig{
		{HTTPPort: 0, HTTPSPort: -1},
		{HTTPPort: 0, HTTPSPort: 0},
		{HTTPPort: 8080, HTTPSPort: 0},
	} {
		fixtures := &stubFixtures{registered: true, marked: true, ports: ports}
		guard, err := NewFixtureLifecycleGuard(fixtures, fixtures)
		if err != nil {
			t.Fatalf("new guard: %v", err)
		}
		decision, err := guard.Evaluate(context.Background(), TestClass{Name: "PaymentsContractTest"})
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if decision.Invalidate || decision.Reason != "" {
			t.Fatalf("expected keep decision without reason for %+v, got %+v", ports, decision)
		}
	}
}

func TestFixtureLifecycleGuard_ComponentMissingShortCircuits(t *testing.T) {
	fixtures := &stubFixtures{registered: false, marked: true, ports: MockServerPortConfig{HTTPPort: 8080, HTTPSPort: 8443}}
	recorder := &capturingRecorder{}
	guard, err := NewFixtureLifecycleGuard(fixtures, fixtures, WithGuardMetrics(recorder))
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}

	decision, err := guard.Evaluate(context.Background(), TestClass{Name: "NoMockServerTest"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if decision.Invalidate {
		t.Fatalf("expected keep decision when mock server configuration is missing")
	}
	if fixtures.markerCalls != 0 || fixtures.getCalls != 0 {
		t.Fatalf("expected no marker or config lookups, got marker=%d get=%d", fixtures.markerCalls, fixtures.getCalls)
	}
	calls := recorder.find(metricFixtureGuardTotal)
	if len(calls) != 1 || calls[0].tags["outcome"] != "component_missing" || calls[0].tags["decision"] != "keep" {
		t.Fatalf("unexpected guard metrics: %#v", calls)
	}
}

func TestFixtureLifecycleGuard_MarkerMissingShortCircuits(t *testing.T) {
	fixtures := &stubFixtures{registered: true, marked: false, ports: MockServerPortConfig{HTTPPort: 8080, HTTPSPort: 8443}}
	guard, err := NewFixtureLifecycleGuard(fixtures, fixtures)
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}

	decision, err := guard.Evaluate(context.Background(), TestClass{Name: "UnmarkedTest"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if decision.Invalidate {
		t.Fatalf("expected keep decision when opt-in marker is absent")
	}
	if fixtures.getCalls != 0 {
		t.Fatalf("expected no config lookup when marker is absent, got %d", fixtures.getCalls)
	}
	if fixtures.lastClass.Name != "UnmarkedTest" {
		t.Fatalf("expected marker lookup for evaluated class, got %q", fixtures.lastClass.Name)
	}
}

func TestFixtureLifecycleGuard_PropagatesCollaboratorErrorsUnchanged(t *testing.T) {
	sentinel := errors.New("registry unavailable")
	cases := []struct {
		name     string
		fixtures *stubFixtures
	}{
		{name: "has component", fixtures: &stubFixtures{hasErr: sentinel}},
		{name: "has marker", fixtures: &stubFixtures{registered: true, markerErr: sentinel}},
		{name: "get component", fixtures: &stubFixtures{registered: true, marked: true, getErr: sentinel}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			guard, err := NewFixtureLifecycleGuard(tc.fixtures, tc.fixtures)
			if err != nil {
				t.Fatalf("new guard: %v", err)
			}
			_, err = guard.Evaluate(context.Background(), TestClass{Name: "BrokenRegistryTest"})
			if err != sentinel {
				t.Fatalf("expected collaborator error unchanged, got %v", err)
			}
		})
	}
}

func TestFixtureLifecycleGuard_RejectsMissingClassName(t *testing.T) {
	fixtures := &stubFixtures{registered: true, marked: true}
	guard, err := NewFixtureLifecycleGuard(fixtures, fixtures)
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	_, err = guard.Evaluate(context.Background(), TestClass{})
	if err == nil {
		t.Fatalf("expected precondition error for empty test class")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors type, got %T", err)
	}
	if rich.TextCode != ContractErrorBadInput {
		t.Fatalf("expected bad input text code, got %q", rich.TextCode)
	}
	if fixtures.hasCalls != 0 {
		t.Fatalf("expected no collaborator calls for invalid descriptor")
	}
}

func TestNewFixtureLifecycleGuard_RequiresCollaborators(t *testing.T) {
	fixtures := &stubFixtures{}
	if _, err := NewFixtureLifecycleGuard(nil, fixtures); err == nil {
		t.Fatalf("expected component registry requirement")
	}
	if _, err := NewFixtureLifecycleGuard(fixtures, nil); err == nil {
		t.Fatalf("expected marker lookup requirement")
	}
}

func TestFixtureLifecycleGuard_IsIdempotent(t *testing.T) {
	fixtures := &stubFixtures{registered: true, marked: true, ports: MockServerPortConfig{HTTPPort: 0, HTTPSPort: 8443}}
	guard, err := NewFixtureLifecycleGuard(fixtures, fixtures)
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	class := TestClass{Name: "RepeatTest"}
	first, err := guard.Evaluate(context.Background(), class)
	if err != nil {
		t.Fatalf("first evaluate: %v", err)
	}
	second, err := guard.Evaluate(context.Background(), class)
	if err != nil {
		t.Fatalf("second evaluate: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical decisions, got %+v and %+v", first, second)
	}
}

func TestFixtureLifecycleGuard_CustomKindsAndSuppressedWarning(t *testing.T) {
	fixtures := &stubFixtures{registered: true, marked: true, ports: MockServerPortConfig{HTTPPort: 9090, HTTPSPort: -1}}
	logger := &capturingLogger{}
	guard, err := NewFixtureLifecycleGuard(fixtures, fixtures,
		WithGuardLogger(logger),
		WithGuardKinds("wiremock.config", "wiremock.marker"),
		WithSuppressedFixedPortWarning(true),
	)
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	decision, err := guard.Evaluate(context.Background(), TestClass{Name: "CustomKindsTest"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !decision.Invalidate {
		t.Fatalf("expected invalidate decision")
	}
	if fixtures.lastKind != "wiremock.config" || fixtures.lastMarker != "wiremock.marker" {
		t.Fatalf("expected custom kinds, got %q / %q", fixtures.lastKind, fixtures.lastMarker)
	}
	if logger.count("warn") != 0 {
		t.Fatalf("expected warning to be suppressed")
	}
}

func TestFixtureLifecycleGuard_WorksWithStaticRegistry(t *testing.T) {
	registry := NewStaticFixtureRegistry()
	if err := registry.RegisterComponent(ComponentMockServerConfig, MockServerPortConfig{HTTPPort: 0, HTTPSPort: 8443}); err != nil {
		t.Fatalf("register component: %v", err)
	}
	if err := registry.Mark("MarkedTest", MarkerAutoConfigureMockServer); err != nil {
		t.Fatalf("mark class: %v", err)
	}
	guard, err := NewFixtureLifecycleGuard(registry, registry)
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}

	decision, err := guard.Evaluate(context.Background(), TestClass{Name: "MarkedTest"})
	if err != nil {
		t.Fatalf("evaluate marked: %v", err)
	}
	if !decision.Invalidate {
		t.Fatalf("expected marked class with fixed https port to invalidate")
	}

	decision, err = guard.Evaluate(context.Background(), TestClass{Name: "OtherTest"})
	if err != nil {
		t.Fatalf("evaluate unmarked: %v", err)
	}
	if decision.Invalidate {
		t.Fatalf("expected unmarked class to keep context")
	}

	registry.RemoveComponent(ComponentMockServerConfig)
	decision, err = guard.Evaluate(context.Background(), TestClass{Name: "MarkedTest"})
	if err != nil {
		t.Fatalf("evaluate without component: %v", err)
	}
	if decision.Invalidate {
		t.Fatalf("expected keep decision once component is removed")
	}
}
