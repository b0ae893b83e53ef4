package upstream

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/n0madic/go-genpipe/internal/endpoint"
	"github.com/n0madic/go-genpipe/internal/types"
)

func candidate(url string) endpoint.Candidate {
	return endpoint.Candidate{URL: url, Shape: endpoint.ShapeOf(url)}
}

func TestAttemptSuccessExtractsText(t *testing.T) {
	var gotHeaders http.Header
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("x-request-id", "req_1")
		w.Header().Set("x-ratelimit-remaining-requests", "9")
		w.Write([]byte(`{"choices":[{"message":{"content":"hi"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(NewCallClient(), false)
	res := c.Attempt(t.Context(), candidate(srv.URL+"/v1/chat/completions"), []byte(`{"x":1}`), "key123", "call-1")
	if !res.OK || res.Text != "hi" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.HTTPStatus != 200 {
		t.Errorf("status: got %d, want 200", res.HTTPStatus)
	}
	if res.Shape != types.ShapeChatCompletions {
		t.Errorf("shape: got %q", res.Shape)
	}
	if res.RequestID != "req_1" {
		t.Errorf("request id: got %q, want req_1", res.RequestID)
	}
	if res.RateLimit == nil || res.RateLimit.Requests == nil || *res.RateLimit.Requests.Remaining != 9 {
		t.Errorf("rate limit: got %+v", res.RateLimit)
	}
	if gotBody != `{"x":1}` {
		t.Errorf("body: got %q", gotBody)
	}
	if gotHeaders.Get("Authorization") != "Bearer key123" || gotHeaders.Get("x-api-key") != "key123" {
		t.Errorf("credential headers missing: %v", gotHeaders)
	}
	if gotHeaders.Get("X-Client-Request-Id") != "call-1" {
		t.Errorf("call id header: got %q", gotHeaders.Get("X-Client-Request-Id"))
	}
}

func TestAttemptHTTPErrorRedactsAndTruncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key topsecret ` + strings.Repeat("x", 500) + `"}}`))
	}))
	defer srv.Close()

	res := NewClient(nil, false).Attempt(t.Context(), candidate(srv.URL+"/v1/completions"), nil, "topsecret", "")
	if res.OK {
		t.Fatal("expected failure")
	}
	if res.ErrorKind != types.KindProviderHTTP {
		t.Errorf("kind: got %q, want provider_http", res.ErrorKind)
	}
	if strings.Contains(res.ErrorMessage, "topsecret") {
		t.Errorf("key leaked: %s", res.ErrorMessage)
	}
	if n := len([]rune(res.ErrorMessage)); n > 360 {
		t.Errorf("message length: got %d", n)
	}
	if !strings.HasPrefix(res.ErrorMessage, "Upstream returned HTTP 401 Unauthorized") {
		t.Errorf("message: got %q", res.ErrorMessage)
	}
}

func TestAttemptEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	res := NewClient(nil, false).Attempt(t.Context(), candidate(srv.URL+"/v1/responses"), nil, "", "")
	if res.ErrorKind != types.KindEmptyResponse || res.ErrorMessage != ErrNoText {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.HTTPStatus != 200 {
		t.Errorf("status: got %d", res.HTTPStatus)
	}
}

func TestAttemptTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	res := NewClient(nil, false).Attempt(t.Context(), candidate(url+"/v1/chat/completions"), nil, "", "")
	if res.ErrorKind != types.KindTransport {
		t.Fatalf("kind: got %q, want transport", res.ErrorKind)
	}
	if res.HTTPStatus != 0 {
		t.Errorf("status: got %d, want 0", res.HTTPStatus)
	}
	if res.ErrorMessage == "" {
		t.Error("expected an error message")
	}
}

type panicTransport struct{}

func (panicTransport) RoundTrip(*http.Request) (*http.Response, error) { panic("boom") }

func TestAttemptRecoversPanic(t *testing.T) {
	c := NewClient(&http.Client{Transport: panicTransport{}}, false)
	res := c.Attempt(t.Context(), candidate("http://127.0.0.1:1/v1/chat/completions"), nil, "", "")
	if res.ErrorKind != types.KindTransport || !strings.Contains(res.ErrorMessage, "boom") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestNewCallClientDisablesKeepAlives(t *testing.T) {
	hc := NewCallClient()
	tr, ok := hc.Transport.(*http.Transport)
	if !ok || !tr.DisableKeepAlives {
		t.Fatalf("expected a transport with keep-alives disabled, got %T", hc.Transport)
	}
	if hc.Timeout != 0 {
		t.Errorf("timeout: got %v, want none", hc.Timeout)
	}
}

func TestAttemptMasksKeyInURL(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("x-ratelimit-reset-requests", "30s")
		w.Write([]byte(`{"output_text":"hi"}`))
	}))
	defer srv.Close()

	before := time.Now()
	res := NewClient(nil, false).Attempt(t.Context(), candidate(srv.URL+"/v1/responses?key=urlsecret99"), nil, "urlsecret99", "")
	if !res.OK {
		t.Fatalf("unexpected result: %+v", res)
	}
	if gotKey != "urlsecret99" {
		t.Errorf("provider key: got %q, want urlsecret99", gotKey)
	}
	if want := srv.URL + "/v1/responses?key=***"; res.URL != want {
		t.Errorf("url: got %q, want %q", res.URL, want)
	}
	if res.RateLimit == nil || res.RateLimit.CapturedAt.Before(before) {
		t.Errorf("rate limit capture time: got %+v", res.RateLimit)
	}
}
