package transport

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-contractkit/core"
	goerrors "github.com/goliatone/go-errors"
)

// UnsupportedSink stands in for a declared messaging kind with no delivery
// wiring yet. Every send fails.
type UnsupportedSink struct {
	kind string
}

func NewUnsupportedSink(kind string) *UnsupportedSink {
	return &UnsupportedSink{kind: normalizeKind(kind)}
}

func (s *UnsupportedSink) Kind() string {
	if s == nil {
		return ""
	}
	return s.kind
}

func (s *UnsupportedSink) Send(context.Context, core.Envelope) error {
	kind := strings.TrimSpace(s.Kind())
	return sinkError(
		kind,
		nil,
		goerrors.CategoryOperation,
		http.StatusNotImplemented,
		fmt.Sprintf("transport: sink kind %q does not support delivery", kind),
		nil,
	)
}

var _ core.EnvelopeSink = (*UnsupportedSink)(nil)
