package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-contractkit/core"
	goerrors "github.com/goliatone/go-errors"
)

const KindHTTP = "http"

const (
	HeaderEnvelopeID        = "X-Envelope-Id"
	HeaderEnvelopeTimestamp = "X-Envelope-Timestamp"
	headerAttributePrefix   = "X-Contract-"
)

const defaultHTTPClientTimeout = 30 * time.Second
const defaultHTTPErrorBodyLimit int64 = 64 << 10

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSink posts envelope bodies to an endpoint. Attributes travel as
// X-Contract-<name> headers.
type HTTPSink struct {
	Endpoint       string
	Method         string
	Client         HTTPDoer
	DefaultHeaders map[string]string
	kind           string
}

func NewHTTPSink(endpoint string, client HTTPDoer) *HTTPSink {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPClientTimeout}
	}
	return &HTTPSink{
		Endpoint:       strings.TrimSpace(endpoint),
		Method:         http.MethodPost,
		Client:         client,
		DefaultHeaders: map[string]string{},
		kind:           KindHTTP,
	}
}

func (s *HTTPSink) Kind() string {
	if s == nil || s.kind == "" {
		return KindHTTP
	}
	return s.kind
}

func (s *HTTPSink) Send(ctx context.Context, envelope core.Envelope) error {
	if s == nil || s.Client == nil {
		return sinkError(
			KindHTTP,
			nil,
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			"transport: http sink requires an http client",
			nil,
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	endpoint, err := url.Parse(strings.TrimSpace(s.Endpoint))
	if err != nil || endpoint.String() == "" || endpoint.Host == "" {
		return sinkError(
			KindHTTP,
			err,
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			"transport: http sink endpoint is invalid",
			map[string]any{"endpoint": strings.TrimSpace(s.Endpoint)},
		)
	}

	body, contentType, err := encodeBody(envelope)
	if err != nil {
		return sinkError(
			KindHTTP,
			err,
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			"transport: encode envelope body",
			map[string]any{"envelope_id": envelope.ID()},
		)
	}

	method := strings.TrimSpace(strings.ToUpper(s.Method))
	if method == "" {
		method = http.MethodPost
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return sinkError(
			KindHTTP,
			err,
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			"transport: create http request",
			map[string]any{"method": method},
		)
	}
	httpReq.Header.Set("Content-Type", contentType)
	for key, value := range s.DefaultHeaders {
		if strings.TrimSpace(key) == "" {
			continue
		}
		httpReq.Header.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	for key, value := range attributeHeaders(envelope) {
		httpReq.Header.Set(key, value)
	}
	if id := envelope.ID(); id != "" {
		httpReq.Header.Set(HeaderEnvelopeID, id)
	}
	if ts := envelope.Timestamp(); !ts.IsZero() {
		httpReq.Header.Set(HeaderEnvelopeTimestamp, ts.UTC().Format(time.RFC3339Nano))
	}

	httpRes, err := s.Client.Do(httpReq)
	if err != nil {
		return sinkError(
			KindHTTP,
			err,
			goerrors.CategoryExternal,
			http.StatusBadGateway,
			"transport: deliver envelope",
			map[string]any{"endpoint": endpoint.String()},
		)
	}
	defer httpRes.Body.Close()

	if httpRes.StatusCode < 200 || httpRes.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(httpRes.Body, defaultHTTPErrorBodyLimit))
		return sinkError(
			KindHTTP,
			nil,
			goerrors.CategoryExternal,
			http.StatusBadGateway,
			fmt.Sprintf("transport: http sink returned status %d", httpRes.StatusCode),
			map[string]any{
				"status_code": httpRes.StatusCode,
				"body":        strings.TrimSpace(string(detail)),
			},
		)
	}
	_, _ = io.Copy(io.Discard, httpRes.Body)
	return nil
}

func encodeBody(envelope core.Envelope) ([]byte, string, error) {
	if body, ok := envelope.BodyBytes(); ok {
		return body, "application/octet-stream", nil
	}
	if envelope.Body() == nil {
		return []byte{}, "application/octet-stream", nil
	}
	encoded, err := json.Marshal(envelope.Body())
	if err != nil {
		return nil, "", err
	}
	return encoded, "application/json", nil
}

func attributeHeaders(envelope core.Envelope) map[string]string {
	attrs := envelope.Attributes()
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		if strings.TrimSpace(key) == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	headers := make(map[string]string, len(keys))
	for _, key := range keys {
		name := http.CanonicalHeaderKey(headerAttributePrefix + strings.TrimSpace(key))
		headers[name] = fmt.Sprint(attrs[key])
	}
	return headers
}

func httpSinkFactory(config map[string]any) (core.EnvelopeSink, error) {
	endpoint, _ := config["endpoint"].(string)
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("transport: http sink endpoint is required")
	}
	sink := NewHTTPSink(endpoint, nil)
	if method, ok := config["method"].(string); ok && strings.TrimSpace(method) != "" {
		sink.Method = method
	}
	if headers, ok := config["headers"].(map[string]string); ok {
		for key, value := range headers {
			sink.DefaultHeaders[key] = value
		}
	}
	return sink, nil
}

var _ core.EnvelopeSink = (*HTTPSink)(nil)
