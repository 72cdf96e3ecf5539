package httpx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
)

// Mock HTTP RoundTripper for testing
type mockRoundTripper struct {
	responses []*http.Response
	errors    []error
	index     int
	calls     int
	mux       sync.Mutex
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mux.Lock()
	defer m.mux.Unlock()

	m.calls++

	if m.index >= len(m.responses) {
		// keep serving the last canned response, so "always 503" setups
		// only need one entry
		m.index = len(m.responses) - 1
	}

	resp := m.responses[m.index]
	err := m.errors[m.index]
	m.index++

	// Clone the response body so it can be read on every attempt
	if resp != nil && resp.Body != nil {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewBuffer(body))
		return &http.Response{
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
			Body:       io.NopCloser(bytes.NewReader(body)),
		}, err
	}

	return resp, err
}

func (m *mockRoundTripper) attempts() int {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.calls
}

func newMockTransport(responses []*http.Response, errs []error) *mockRoundTripper {
	if len(errs) < len(responses) {
		for i := len(errs); i < len(responses); i++ {
			errs = append(errs, nil)
		}
	}
	return &mockRoundTripper{responses: responses, errors: errs}
}

func newMockClient(responses []*http.Response, errs []error) *http.Client {
	return &http.Client{Transport: newMockTransport(responses, errs)}
}

func newMockResponse(statusCode int, body string, headers map[string]string) *http.Response {
	header := http.Header{}
	for k, v := range headers {
		header.Set(k, v)
	}

	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     header,
	}
}

func buildGet(url string) func(ctx context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func fastConfig() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.BaseDelay = 1 * time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	return cfg
}

func TestDoWithRetrySuccess(t *testing.T) {
	client := newMockClient(
		[]*http.Response{newMockResponse(200, `{"success": true}`, nil)},
		[]error{nil},
	)

	resp, body, err := DoWithRetry(context.Background(), client, buildGet("https://example.com"), DefaultRetryConfig())

	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("Expected status code 200, got %d", resp.StatusCode)
	}

	if string(body) != `{"success": true}` {
		t.Errorf("Expected body %q, got %q", `{"success": true}`, string(body))
	}
}

func TestDoWithRetryBuildReqError(t *testing.T) {
	client := newMockClient([]*http.Response{nil}, []error{nil})

	buildReq := func(ctx context.Context) (*http.Request, error) {
		return nil, errors.New("request build error")
	}

	_, _, err := DoWithRetry(context.Background(), client, buildReq, DefaultRetryConfig())

	if err == nil || !strings.Contains(err.Error(), "request build error") {
		t.Errorf("Expected request build error, got %v", err)
	}
}

func TestDoWithRetryServerErrorThenSuccess(t *testing.T) {
	client := newMockClient(
		[]*http.Response{
			newMockResponse(503, `{"error": "unavailable"}`, map[string]string{"Retry-After": "0"}),
			newMockResponse(200, `{"success": true}`, nil),
		},
		[]error{nil, nil},
	)

	resp, body, err := DoWithRetry(context.Background(), client, buildGet("https://example.com"), fastConfig())

	if err != nil {
		t.Errorf("Expected no error after retry, got %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("Expected status code 200, got %d", resp.StatusCode)
	}

	if string(body) != `{"success": true}` {
		t.Errorf("Expected body %q, got %q", `{"success": true}`, string(body))
	}
}

func TestDoWithRetryExhaustsAttemptsOn503(t *testing.T) {
	transport := newMockTransport(
		[]*http.Response{newMockResponse(503, `{"error": "unavailable"}`, nil)},
		[]error{nil},
	)
	client := &http.Client{Transport: transport}

	cfg := fastConfig()
	cfg.MaxAttempts = 4

	_, _, err := DoWithRetry(context.Background(), client, buildGet("https://example.com"), cfg)

	if err == nil {
		t.Fatal("Expected error after max attempts, got nil")
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Expected HTTPError, got %T", err)
	}
	if httpErr.StatusCode != 503 {
		t.Errorf("Expected status code 503, got %d", httpErr.StatusCode)
	}

	if got := transport.attempts(); got != 4 {
		t.Errorf("Expected exactly 4 attempts, got %d", got)
	}
}

func TestDoWithRetryShortCircuitsOn404(t *testing.T) {
	transport := newMockTransport(
		[]*http.Response{newMockResponse(404, `{"error": "not found"}`, nil)},
		[]error{nil},
	)
	client := &http.Client{Transport: transport}

	_, _, err := DoWithRetry(context.Background(), client, buildGet("https://example.com"), fastConfig())

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Expected HTTPError, got %T (%v)", err, err)
	}
	if httpErr.StatusCode != 404 {
		t.Errorf("Expected status code 404, got %d", httpErr.StatusCode)
	}

	if got := transport.attempts(); got != 1 {
		t.Errorf("Expected exactly 1 attempt for 404, got %d", got)
	}
}

func TestDoWithRetryBrotliBody(t *testing.T) {
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	if _, err := bw.Write([]byte(`{"compressed": true}`)); err != nil {
		t.Fatal(err)
	}
	if err := bw.Close(); err != nil {
		t.Fatal(err)
	}

	client := newMockClient(
		[]*http.Response{newMockResponse(200, buf.String(), map[string]string{"Content-Encoding": "br"})},
		[]error{nil},
	)

	_, body, err := DoWithRetry(context.Background(), client, buildGet("https://example.com"), DefaultRetryConfig())

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(body) != `{"compressed": true}` {
		t.Errorf("Expected decoded body, got %q", string(body))
	}
}

func TestDoWithRetryDefaultConfig(t *testing.T) {
	client := newMockClient(
		[]*http.Response{newMockResponse(200, `{"success": true}`, nil)},
		[]error{nil},
	)

	// Test with zero values to ensure defaults are applied
	cfg := RetryConfig{}

	_, _, err := DoWithRetry(context.Background(), client, buildGet("https://example.com"), cfg)

	if err != nil {
		t.Errorf("Expected no error with default config, got %v", err)
	}
}

func TestDoJSONSuccess(t *testing.T) {
	client := newMockClient(
		[]*http.Response{newMockResponse(200, `{"name": "test", "value": 123}`, nil)},
		[]error{nil},
	)

	var result struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	err := DoJSON(context.Background(), client, buildGet("https://example.com"), &result, DefaultRetryConfig())

	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if result.Name != "test" || result.Value != 123 {
		t.Errorf("Expected {Name: 'test', Value: 123}, got %+v", result)
	}
}

func TestDoJSONInvalidJSON(t *testing.T) {
	client := newMockClient(
		[]*http.Response{newMockResponse(200, `{"name": "test", invalid json}`, nil)},
		[]error{nil},
	)

	var result struct {
		Name string `json:"name"`
	}

	err := DoJSON(context.Background(), client, buildGet("https://example.com"), &result, DefaultRetryConfig())

	if err == nil {
		t.Error("Expected JSON parse error, got nil")
	}

	if !strings.Contains(err.Error(), "json parse error") {
		t.Errorf("Expected 'json parse error' in error message, got %v", err)
	}
}

// Test helper for readAndClose
func TestReadAndClose(t *testing.T) {
	testData := "test data"
	r := io.NopCloser(strings.NewReader(testData))

	data, err := readAndClose(r)

	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if string(data) != testData {
		t.Errorf("Expected %q, got %q", testData, string(data))
	}
}
