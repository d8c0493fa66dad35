package command

import (
	"strings"

	"github.com/goliatone/go-contractkit/core"
)

const (
	TypeAfterTestClass    = "contracts.command.fixture.after_test_class"
	TypeSendEnvelope      = "contracts.command.envelope.send"
	TypeInvalidateContext = "contracts.command.context.invalidate"
)

type AfterTestClassMessage struct {
	Class core.TestClass
}

func (AfterTestClassMessage) Type() string { return TypeAfterTestClass }

func (m AfterTestClassMessage) Validate() error {
	if strings.TrimSpace(m.Class.Name) == "" {
		return invalidMessage(TypeAfterTestClass, "class.name", "test class name is required")
	}
	return nil
}

type SendEnvelopeMessage struct {
	SinkKind string
	Payload  any
	Headers  map[string]any
}

func (SendEnvelopeMessage) Type() string { return TypeSendEnvelope }

// Validate leaves a blank SinkKind to the configured default sink.
func (m SendEnvelopeMessage) Validate() error {
	if m.Headers == nil {
		return invalidMessage(TypeSendEnvelope, "headers", "envelope headers are required")
	}
	return nil
}

type InvalidateContextMessage struct {
	Scope core.InvalidationScope
}

func (InvalidateContextMessage) Type() string { return TypeInvalidateContext }

func (m InvalidateContextMessage) Validate() error {
	if strings.TrimSpace(m.Scope.ContextKey) == "" {
		return invalidMessage(TypeInvalidateContext, "scope.context_key", "context key is required")
	}
	switch m.Scope.Mode {
	case "", core.HierarchyExhaustive, core.HierarchyCurrentLevel:
		return nil
	default:
		return invalidMessage(TypeInvalidateContext, "scope.mode", "unsupported hierarchy mode")
	}
}
