package query

import (
	"strings"

	"github.com/goliatone/go-contractkit/core"
)

const (
	TypeEvaluateFixture = "contracts.query.fixture.evaluate"
	TypeBuildEnvelope   = "contracts.query.envelope.build"
)

type EvaluateFixtureMessage struct {
	Class core.TestClass
}

func (EvaluateFixtureMessage) Type() string { return TypeEvaluateFixture }

func (m EvaluateFixtureMessage) Validate() error {
	if strings.TrimSpace(m.Class.Name) == "" {
		return invalidMessage(TypeEvaluateFixture, "class.name", "test class name is required")
	}
	return nil
}

type BuildEnvelopeMessage struct {
	Payload any
	Headers map[string]any
}

func (BuildEnvelopeMessage) Type() string { return TypeBuildEnvelope }

func (m BuildEnvelopeMessage) Validate() error {
	if m.Headers == nil {
		return invalidMessage(TypeBuildEnvelope, "headers", "envelope headers are required")
	}
	return nil
}
