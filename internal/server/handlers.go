package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/n0madic/go-genpipe/internal/codec"
	"github.com/n0madic/go-genpipe/internal/config"
	"github.com/n0madic/go-genpipe/internal/endpoint"
	"github.com/n0madic/go-genpipe/internal/pipeline"
	"github.com/n0madic/go-genpipe/internal/types"
)

type generateRequest struct {
	Prompt    string `json:"prompt"`
	System    string `json:"system"`
	Kind      string `json:"kind"`
	Confirmed bool   `json:"confirmed"`
}

type generateResponse struct {
	OK        bool                  `json:"ok"`
	Text      string                `json:"text,omitempty"`
	CallID    string                `json:"call_id,omitempty"`
	Path      types.Path            `json:"path,omitempty"`
	Attempts  []types.AttemptResult `json:"attempts,omitempty"`
	ErrorKind types.ErrorKind       `json:"error_kind,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// handleGenerate runs one call. The confirmed flag answers the
// confirmation gate when settings require it.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		codec.WriteOpenAIError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	confirmer := pipeline.ConfirmFunc(func(context.Context, string, string, string) (bool, error) {
		return req.Confirmed, nil
	})
	out, err := s.Pipeline.GenerateWith(r.Context(), types.GenerationRequest{
		Prompt: req.Prompt,
		System: req.System,
		Kind:   req.Kind,
	}, confirmer)

	if out == nil {
		if errors.Is(err, types.ErrUserCancelled) {
			codec.WriteJSON(w, http.StatusConflict, generateResponse{
				ErrorKind: types.KindUserCancelled,
				Error:     "confirmation required: resend with \"confirmed\": true",
			})
			return
		}
		codec.WriteOpenAIError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := generateResponse{
		OK:        out.OK,
		Text:      out.Text,
		CallID:    out.CallID,
		Path:      out.Path,
		Attempts:  out.Attempts,
		ErrorKind: out.ErrorKind,
		Error:     out.ErrorMessage,
	}
	codec.WriteJSON(w, statusFor(err), resp)
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, types.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, types.ErrConfiguration), errors.Is(err, types.ErrAuthorizationMissing):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

type selfTestRequest struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
}

const selfTestOverrideError = "selftest overrides require a server access token"

// handleSelfTest checks the configured provider, or the one in the body when
// a base_url is given. Overrides are only accepted when an access token
// guards the route, and each one is charged to the spend limiter.
func (s *Server) handleSelfTest(w http.ResponseWriter, r *http.Request) {
	var req selfTestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cfg := s.settings().Provider
	if strings.TrimSpace(req.BaseURL) != "" {
		if s.accessToken() == "" {
			codec.WriteOpenAIError(w, http.StatusForbidden, selfTestOverrideError)
			return
		}
		if !s.Pipeline.Limiter.Allow() {
			codec.WriteOpenAIError(w, http.StatusTooManyRequests, types.ErrRateLimited.Error())
			return
		}
		cfg = config.ProviderConfig{BaseURL: req.BaseURL, APIKey: req.APIKey, Model: req.Model}
	}
	codec.WriteJSON(w, http.StatusOK, s.Pipeline.SelfTest(r.Context(), cfg))
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.Pipeline.Recorder.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	codec.WriteJSON(w, http.StatusOK, snap)
}

type candidatesResponse struct {
	Normalized string               `json:"normalized"`
	Local      bool                 `json:"local"`
	Candidates []endpoint.Candidate `json:"candidates"`
}

// handleCandidates lists the candidates for ?url=, or for the configured
// base URL with its credentials masked.
func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	apiKey := ""
	if strings.TrimSpace(raw) == "" {
		provider := s.settings().Provider
		raw, apiKey = provider.BaseURL, provider.APIKey
	}
	base := endpoint.Normalize(raw)
	cands := endpoint.Candidates(base)
	if cands == nil {
		cands = []endpoint.Candidate{}
	}
	for i := range cands {
		cands[i].URL = codec.RedactURL(cands[i].URL, apiKey)
	}
	codec.WriteJSON(w, http.StatusOK, candidatesResponse{
		Normalized: codec.RedactURL(base, apiKey),
		Local:      endpoint.IsLocal(base),
		Candidates: cands,
	})
}
