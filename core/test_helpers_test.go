package core

import (
	"context"
	"sync"

	glog "github.com/goliatone/go-logger/glog"
)

type logEntry struct {
	level string
	msg   string
	args  []any
}

type capturingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *capturingLogger) record(level string, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: append([]any(nil), args...)})
}

func (l *capturingLogger) Trace(msg string, args ...any) { l.record("trace", msg, args) }
func (l *capturingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *capturingLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *capturingLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *capturingLogger) Error(msg string, args ...any) { l.record("error", msg, args) }
func (l *capturingLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args) }

func (l *capturingLogger) WithContext(context.Context) glog.Logger {
	return l
}

func (l *capturingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, entry := range l.entries {
		if entry.level == level {
			total++
		}
	}
	return total
}

type stubLoggerProvider struct {
	logger glog.Logger
}

func (p stubLoggerProvider) GetLogger(string) glog.Logger {
	return p.logger
}

type counterCall struct {
	name  string
	value int64
	tags  map[string]string
}

type capturingRecorder struct {
	mu       sync.Mutex
	counters []counterCall
}

func (r *capturingRecorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters = append(r.counters, counterCall{name: name, value: value, tags: tags})
}

func (r *capturingRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

func (r *capturingRecorder) find(name string) []counterCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []counterCall
	for _, call := range r.counters {
		if call.name == name {
			out = append(out, call)
		}
	}
	return out
}

// stubFixtures records lookups and can inject collaborator failures.
type stubFixtures struct {
	registered  bool
	marked      bool
	ports       MockServerPortConfig
	hasErr      error
	getErr      error
	markerErr   error
	hasCalls    int
	getCalls    int
	markerCalls int
	lastKind    string
	lastMarker  string
	lastClass   TestClass
}

func (s *stubFixtures) HasComponent(_ context.Context, kind string) (bool, error) {
	s.hasCalls++
	s.lastKind = kind
	if s.hasErr != nil {
		return false, s.hasErr
	}
	return s.registered, nil
}

func (s *stubFixtures) GetComponent(_ context.Context, kind string) (MockServerPortConfig, error) {
	s.getCalls++
	s.lastKind = kind
	if s.getErr != nil {
		return MockServerPortConfig{}, s.getErr
	}
	return s.ports, nil
}

func (s *stubFixtures) HasMarker(_ context.Context, class TestClass, markerKind string) (bool, error) {
	s.markerCalls++
	s.lastClass = class
	s.lastMarker = markerKind
	if s.markerErr != nil {
		return false, s.markerErr
	}
	return s.marked, nil
}

type recordingInvalidator struct {
	scopes []InvalidationScope
	err    error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, scope InvalidationScope) error {
	r.scopes = append(r.scopes, scope)
	return r.err
}

type recordingSink struct {
	kind      string
	envelopes []Envelope
	err       error
}

func (s *recordingSink) Kind() string { return s.kind }

func (s *recordingSink) Send(_ context.Context, envelope Envelope) error {
	if s.err != nil {
		return s.err
	}
	s.envelopes = append(s.envelopes, envelope)
	return nil
}

type mapSinkResolver map[string]EnvelopeSink

func (m mapSinkResolver) Get(kind string) (EnvelopeSink, bool) {
	sink, ok := m[kind]
	return sink, ok
}

var (
	_ glog.Logger        = (*capturingLogger)(nil)
	_ ComponentRegistry  = (*stubFixtures)(nil)
	_ MarkerLookup       = (*stubFixtures)(nil)
	_ ContextInvalidator = (*recordingInvalidator)(nil)
	_ EnvelopeSink       = (*recordingSink)(nil)
	_ MetricsRecorder    = (*capturingRecorder)(nil)
)
