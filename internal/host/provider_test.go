package host

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/n0madic/go-genpipe/internal/codec"
	"github.com/n0madic/go-genpipe/internal/config"
)

const completionBody = `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"from host"}}]}`

type capturedRequest struct {
	auth string
	body map[string]any
}

func newHostServer(t *testing.T, got *capturedRequest) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		got.auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &got.body) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody))
	})
	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm() //nolint:errcheck
		if r.Form.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"cc-token","token_type":"bearer","expires_in":3600}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestProviderStaticKey(t *testing.T) {
	var got capturedRequest
	srv := newHostServer(t, &got)

	p, err := New(t.Context(), config.HostConfig{BaseURL: srv.URL + "/v1", APIKey: "hostkey", Model: "gpt-4o-mini"}, codec.DefaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	text, err := p.Generate(t.Context(), "hello", "be brief")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "from host" {
		t.Errorf("text: got %q, want %q", text, "from host")
	}
	if got.auth != "Bearer hostkey" {
		t.Errorf("Authorization: got %q", got.auth)
	}
	if got.body["model"] != "gpt-4o-mini" {
		t.Errorf("model: got %v", got.body["model"])
	}
	msgs, _ := got.body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages: got %v", got.body["messages"])
	}
	if first, _ := msgs[0].(map[string]any); first["role"] != "system" {
		t.Errorf("first message role: got %v", first["role"])
	}
	if got.body["max_tokens"] != float64(1024) {
		t.Errorf("max_tokens: got %v", got.body["max_tokens"])
	}
}

func TestProviderClientCredentials(t *testing.T) {
	var got capturedRequest
	srv := newHostServer(t, &got)

	cfg := config.HostConfig{
		BaseURL:      srv.URL + "/v1",
		Model:        "m",
		TokenURL:     srv.URL + "/oauth/token",
		ClientID:     "id",
		ClientSecret: "secret",
	}
	p, err := New(t.Context(), cfg, codec.DefaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Generate(t.Context(), "hello", ""); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.EqualFold(got.auth, "Bearer cc-token") {
		t.Errorf("Authorization: got %q", got.auth)
	}
	if msgs, _ := got.body["messages"].([]any); len(msgs) != 1 {
		t.Errorf("blank system should be omitted: %v", got.body["messages"])
	}
}

func TestProviderHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	p, err := New(t.Context(), config.HostConfig{BaseURL: srv.URL + "/v1", Model: "m"}, codec.DefaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Generate(t.Context(), "hello", ""); err == nil {
		t.Fatal("expected an error")
	}
}

func TestNewRequiresBaseURLAndModel(t *testing.T) {
	if _, err := New(t.Context(), config.HostConfig{Model: "m"}, codec.DefaultParams()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("missing base: got %v, want ErrNotConfigured", err)
	}
	if _, err := New(t.Context(), config.HostConfig{BaseURL: "http://x"}, codec.DefaultParams()); err == nil {
		t.Error("missing model should fail")
	}
}
