package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

const (
	ComponentMockServerConfig     = "mock_server.configuration"
	MarkerAutoConfigureMockServer = "mock_server.auto_configure"
)

// TestClass describes a test class that just finished running.
type TestClass struct {
	Name       string
	ContextKey string
}

// ComponentRegistry answers component lookups against the resolved
// configuration of the fixture a test class ran in.
type ComponentRegistry interface {
	HasComponent(ctx context.Context, kind string) (bool, error)
	GetComponent(ctx context.Context, kind string) (MockServerPortConfig, error)
}

// MarkerLookup reports whether a test class declares a marker.
type MarkerLookup interface {
	HasMarker(ctx context.Context, class TestClass, markerKind string) (bool, error)
}

type HierarchyMode string

const (
	// HierarchyExhaustive covers the context and every context derived from it.
	HierarchyExhaustive   HierarchyMode = "exhaustive"
	HierarchyCurrentLevel HierarchyMode = "current_level"
)

type InvalidationScope struct {
	ContextKey string
	Mode       HierarchyMode
	Reason     string
}

// ContextInvalidator tears down shared test contexts.
type ContextInvalidator interface {
	Invalidate(ctx context.Context, scope InvalidationScope) error
}

// EnvelopeSink delivers envelopes over a messaging channel. Serialising the
// attributes and body is the sink's concern.
type EnvelopeSink interface {
	Kind() string
	Send(ctx context.Context, envelope Envelope) error
}

type SinkResolver interface {
	Get(kind string) (EnvelopeSink, bool)
}

// Evaluator is satisfied by FixtureLifecycleGuard.
type Evaluator interface {
	Evaluate(ctx context.Context, class TestClass) (LifecycleDecision, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
