package core

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

type EnvelopeBuilderOption func(*EnvelopeBuilder)

func WithEnvelopeClock(now func() time.Time) EnvelopeBuilderOption {
	return func(b *EnvelopeBuilder) {
		if now != nil {
			b.now = now
		}
	}
}

func WithEnvelopeIDGenerator(newID func() string) EnvelopeBuilderOption {
	return func(b *EnvelopeBuilder) {
		if newID != nil {
			b.newID = newID
		}
	}
}

// EnvelopeBuilder normalizes contract payloads into transport envelopes so
// sinks only ever see binary bodies for textual input.
type EnvelopeBuilder struct {
	now   func() time.Time
	newID func() string
}

func NewEnvelopeBuilder(opts ...EnvelopeBuilderOption) *EnvelopeBuilder {
	builder := &EnvelopeBuilder{
		now: func() time.Time {
			return time.Now().UTC()
		},
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(builder)
	}
	return builder
}

// Create wraps payload and headers. Headers must be non-nil; an empty map
// yields an envelope without attributes.
func (b *EnvelopeBuilder) Create(payload any, headers map[string]any) (Envelope, error) {
	if headers == nil {
		return Envelope{}, badInputError("core: envelope headers are required")
	}
	if b == nil {
		b = NewEnvelopeBuilder()
	}
	body, converted := normalizeBody(payload)
	return Envelope{
		id:         b.newID(),
		timestamp:  b.now(),
		body:       body,
		ownsBody:   converted,
		attributes: copyAttributes(headers),
	}, nil
}

// normalizeBody reports whether it allocated the returned body.
func normalizeBody(payload any) (any, bool) {
	switch value := payload.(type) {
	case nil:
		return nil, false
	case string:
		return []byte(value), true
	case []byte:
		return value, false
	}
	// named string kinds such as json.Number or type Payload string
	rv := reflect.ValueOf(payload)
	if rv.Kind() == reflect.String {
		return []byte(rv.String()), true
	}
	return payload, false
}
