package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-contractkit/core"
	goerrors "github.com/goliatone/go-errors"
)

func testEnvelope(t *testing.T, payload any, headers map[string]any) core.Envelope {
	t.Helper()
	builder := core.NewEnvelopeBuilder(
		core.WithEnvelopeClock(func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }),
		core.WithEnvelopeIDGenerator(func() string { return "env_test" }),
	)
	envelope, err := builder.Create(payload, headers)
	if err != nil {
		t.Fatalf("create envelope: %v", err)
	}
	return envelope
}

func TestMemorySink_RecordsAndResets(t *testing.T) {
	sink := NewMemorySink("")
	if sink.Kind() != KindMemory {
		t.Fatalf("expected default memory kind, got %q", sink.Kind())
	}
	if _, ok := sink.Last(); ok {
		t.Fatalf("expected no envelopes on a new sink")
	}

	envelope := testEnvelope(t, "x", map[string]any{})
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sink.Send(context.Background(), envelope)
		}()
	}
	wg.Wait()
	if got := len(sink.Envelopes()); got != 10 {
		t.Fatalf("expected 10 envelopes, got %d", got)
	}
	if last, ok := sink.Last(); !ok || last.ID() != "env_test" {
		t.Fatalf("expected last envelope, got %+v", last)
	}

	sink.Reset()
	if len(sink.Envelopes()) != 0 {
		t.Fatalf("expected reset to clear envelopes")
	}
}

func TestMemorySink_RespectsCanceledContext(t *testing.T) {
	sink := NewMemorySink("queue")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sink.Send(ctx, testEnvelope(t, "x", map[string]any{})); err == nil {
		t.Fatalf("expected canceled context error")
	}
	if len(sink.Envelopes()) != 0 {
		t.Fatalf("expected nothing recorded")
	}
}

func TestUnsupportedSink_FailsWithOperationError(t *testing.T) {
	sink := NewUnsupportedSink("Kafka")
	if sink.Kind() != "kafka" {
		t.Fatalf("expected normalized kind, got %q", sink.Kind())
	}
	err := sink.Send(context.Background(), testEnvelope(t, "x", map[string]any{}))
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors type, got %T", err)
	}
	if rich.Category != goerrors.CategoryOperation || rich.TextCode != core.ContractErrorDeliveryFailed {
		t.Fatalf("unexpected error envelope: %q %q", rich.Category, rich.TextCode)
	}
}

func TestHTTPSink_PostsBinaryBodyWithAttributeHeaders(t *testing.T) {
	var gotBody []byte
	var gotHeaders http.Header
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeaders = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sink := NewHTTPSink(server.URL, server.Client())
	sink.DefaultHeaders["Authorization"] = "Bearer test"
	envelope := testEnvelope(t, `{"id":"o-1"}`, map[string]any{"eventType": "order.created", "retries": 2})
	if err := sink.Send(context.Background(), envelope); err != nil {
		t.Fatalf("send envelope: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Fatalf("expected POST, got %s", gotMethod)
	}
	if string(gotBody) != `{"id":"o-1"}` {
		t.Fatalf("unexpected body %q", gotBody)
	}
	if gotHeaders.Get("Content-Type") != "application/octet-stream" {
		t.Fatalf("expected octet-stream content type, got %q", gotHeaders.Get("Content-Type"))
	}
	if gotHeaders.Get("X-Contract-Eventtype") != "order.created" || gotHeaders.Get("X-Contract-Retries") != "2" {
		t.Fatalf("expected attribute headers, got %v", gotHeaders)
	}
	if gotHeaders.Get(HeaderEnvelopeID) != "env_test" {
		t.Fatalf("expected envelope id header, got %q", gotHeaders.Get(HeaderEnvelopeID))
	}
	if gotHeaders.Get(HeaderEnvelopeTimestamp) != "2026-03-04T05:06:07Z" {
		t.Fatalf("unexpected timestamp header %q", gotHeaders.Get(HeaderEnvelopeTimestamp))
	}
	if gotHeaders.Get("Authorization") != "Bearer test" {
		t.Fatalf("expected default header")
	}
}

func TestHTTPSink_EncodesStructuredBodyAsJSON(t *testing.T) {
	var decoded map[string]any
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&decoded)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	payload := struct {
		ID    string `json:"id"`
		Total int    `json:"total"`
	}{ID: "o-2", Total: 7}
	sink := NewHTTPSink(server.URL, server.Client())
	if err := sink.Send(context.Background(), testEnvelope(t, payload, map[string]any{})); err != nil {
		t.Fatalf("send envelope: %v", err)
	}
	if contentType != "application/json" {
		t.Fatalf("expected json content type, got %q", contentType)
	}
	if decoded["id"] != "o-2" || decoded["total"] != float64(7) {
		t.Fatalf("unexpected decoded body %#v", decoded)
	}
}

func TestHTTPSink_NonSuccessStatusIsExternalError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("broker offline"))
	}))
	defer server.Close()

	err := NewHTTPSink(server.URL, server.Client()).Send(context.Background(), testEnvelope(t, "x", map[string]any{}))
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors type, got %T", err)
	}
	if rich.Category != goerrors.CategoryExternal || rich.Code != http.StatusBadGateway {
		t.Fatalf("unexpected error envelope: %q %d", rich.Category, rich.Code)
	}
	if rich.Metadata["status_code"] != http.StatusServiceUnavailable || rich.Metadata["body"] != "broker offline" {
		t.Fatalf("unexpected error metadata %#v", rich.Metadata)
	}
}

func TestHTTPSink_RejectsInvalidEndpoint(t *testing.T) {
	err := NewHTTPSink("not a url", nil).Send(context.Background(), testEnvelope(t, "x", map[string]any{}))
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryBadInput {
		t.Fatalf("expected bad input error, got %v", err)
	}
}
