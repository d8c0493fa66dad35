package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-contractkit/core"
)

var (
	_ gocmd.Querier[EvaluateFixtureMessage, core.LifecycleDecision] = (*EvaluateFixtureQuery)(nil)
	_ gocmd.Querier[BuildEnvelopeMessage, core.Envelope]            = (*BuildEnvelopeQuery)(nil)
)
