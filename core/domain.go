package core

import (
	"bytes"
	"maps"
	"time"
)

const (
	// EphemeralPort asks the server to bind to any free port.
	EphemeralPort = 0
	// HTTPSDisabled turns the HTTPS listener off.
	HTTPSDisabled = -1
)

const ReasonFixedPort = "fixed port configuration detected"

// MockServerPortConfig is a read-only snapshot of the resolved mock server
// ports for a finished test class.
type MockServerPortConfig struct {
	HTTPPort  int `koanf:"http_port" mapstructure:"http_port" json:"http_port"`
	HTTPSPort int `koanf:"https_port" mapstructure:"https_port" json:"https_port"`
}

func DefaultMockServerPortConfig() MockServerPortConfig {
	return MockServerPortConfig{
		HTTPPort:  EphemeralPort,
		HTTPSPort: HTTPSDisabled,
	}
}

// FixedPort reports whether the server was pinned to a caller-chosen port.
// An ephemeral HTTPS port always wins over a fixed HTTP port; keep the
// predicate shape as is.
func (c MockServerPortConfig) FixedPort() bool {
	return (c.HTTPPort != EphemeralPort || c.HTTPSPort != HTTPSDisabled) && c.HTTPSPort != EphemeralPort
}

type LifecycleDecision struct {
	Invalidate bool
	Reason     string
}

func keepContext() LifecycleDecision {
	return LifecycleDecision{}
}

func invalidateContext(reason string) LifecycleDecision {
	return LifecycleDecision{Invalidate: true, Reason: reason}
}

// Envelope pairs a transport body with named attributes. It is immutable once
// built; accessors hand out copies of the attribute map.
type Envelope struct {
	id         string
	timestamp  time.Time
	body       any
	ownsBody   bool
	attributes map[string]any
}

func (e Envelope) ID() string {
	return e.id
}

func (e Envelope) Timestamp() time.Time {
	return e.timestamp
}

// Body is a []byte for textual payloads, the original value otherwise.
// Bytes converted from text are copied on every call; caller-supplied
// payloads are returned as is.
func (e Envelope) Body() any {
	if raw, ok := e.body.([]byte); ok && e.ownsBody {
		return bytes.Clone(raw)
	}
	return e.body
}

// BodyBytes returns the body when it is binary.
func (e Envelope) BodyBytes() ([]byte, bool) {
	raw, ok := e.body.([]byte)
	if ok && e.ownsBody {
		return bytes.Clone(raw), true
	}
	return raw, ok
}

func (e Envelope) Attributes() map[string]any {
	return copyAttributes(e.attributes)
}

func (e Envelope) Attribute(name string) (any, bool) {
	value, ok := e.attributes[name]
	return value, ok
}

func (e Envelope) Len() int {
	return len(e.attributes)
}

func copyAttributes(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	maps.Copy(out, in)
	return out
}
