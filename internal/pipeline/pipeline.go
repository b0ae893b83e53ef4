// Package pipeline routes a generation request to the user's endpoint or to
// the host provider, walking endpoint candidates until one yields text.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/n0madic/go-genpipe/internal/codec"
	"github.com/n0madic/go-genpipe/internal/config"
	"github.com/n0madic/go-genpipe/internal/diagnostics"
	"github.com/n0madic/go-genpipe/internal/endpoint"
	"github.com/n0madic/go-genpipe/internal/limits"
	"github.com/n0madic/go-genpipe/internal/metrics"
	"github.com/n0madic/go-genpipe/internal/models"
	"github.com/n0madic/go-genpipe/internal/types"
	"github.com/n0madic/go-genpipe/internal/upstream"
)

// PreviewLimit bounds the prompt preview shown by the confirmation gate.
const PreviewLimit = 900

// Pipeline is safe for concurrent use. It must not be copied after first use.
type Pipeline struct {
	Settings  SettingsSource
	Host      HostProvider
	Confirmer Confirmer
	Notifier  Notifier
	Recorder  *diagnostics.Recorder
	Metrics   *metrics.Collector
	Limiter   *limits.SpendLimiter

	warn WarnOnce
}

// New creates a pipeline reading settings from src, with a slog notifier and
// a fresh diagnostics recorder.
func New(src SettingsSource) *Pipeline {
	return &Pipeline{
		Settings: src,
		Notifier: SlogNotifier{},
		Recorder: diagnostics.NewRecorder(),
	}
}

// route is the pure routing decision for one call.
type route struct {
	path      types.Path
	readiness Readiness
}

// Generate runs one logical call using the pipeline's Confirmer.
//
// On failure the outcome is non-nil and the error is a *types.GenerationError.
// A declined confirmation returns (nil, types.ErrUserCancelled), and a ctx
// that is already done returns (nil, ctx.Err()).
func (p *Pipeline) Generate(ctx context.Context, req types.GenerationRequest) (*types.Outcome, error) {
	return p.GenerateWith(ctx, req, p.Confirmer)
}

// GenerateWith is Generate with an explicit confirmer for this call only.
func (p *Pipeline) GenerateWith(ctx context.Context, req types.GenerationRequest, confirmer Confirmer) (*types.Outcome, error) {
	settings := p.settings()
	rt := p.decide(settings.Provider)

	if settings.ConfirmationRequired || req.ConfirmationRequired {
		if !p.confirm(ctx, confirmer, req, settings, rt) {
			slog.Info("pipeline.cancelled", "kind", req.Kind)
			return nil, types.ErrUserCancelled
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &types.Outcome{CallID: uuid.NewString(), Path: rt.path}
	var err error
	switch {
	case !p.Limiter.Allow():
		err = out.Fail(types.KindRateLimited, "spend limit reached; try again later")
	case rt.path == types.PathDirect:
		err = p.runDirect(ctx, out, settings.Provider, paramsFrom(settings), settings.Verbose, req.Prompt, req.System)
	default:
		err = p.runHost(ctx, out, settings, rt.readiness, req)
	}

	p.Metrics.ObserveCall(out.Path, out.ErrorKind)
	slog.Info("pipeline.outcome",
		"call_id", out.CallID,
		"path", out.Path,
		"ok", out.OK,
		"attempts", len(out.Attempts),
		"error_kind", out.ErrorKind,
	)
	return out, err
}

// Text runs Generate and returns only the generated text.
func (p *Pipeline) Text(ctx context.Context, req types.GenerationRequest) (string, error) {
	out, err := p.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

func (p *Pipeline) settings() config.Settings {
	if p.Settings == nil {
		return config.Default()
	}
	return p.Settings.Settings()
}

// SettingsReloaded clears the diagnostics mirror when the direct provider
// changed, so the last attempt never describes an endpoint no longer in use.
func (p *Pipeline) SettingsReloaded(prev, next config.Settings) {
	if prev.Provider == next.Provider {
		return
	}
	p.Recorder.Reset()
	slog.Info("diagnostics.reset", "reason", "provider settings changed")
}

// decide picks the path without touching the network. An enabled but
// unready provider warns once per distinct reason and falls back to the host.
func (p *Pipeline) decide(cfg config.ProviderConfig) route {
	r := CheckReadiness(cfg)
	if r.Ready {
		return route{path: types.PathDirect, readiness: r}
	}
	if cfg.Enabled {
		p.warn.Warn(p.Notifier, r.Reason+"; using the host provider")
	}
	return route{path: types.PathHost, readiness: r}
}

func (p *Pipeline) confirm(ctx context.Context, c Confirmer, req types.GenerationRequest, s config.Settings, rt route) bool {
	if c == nil {
		return false
	}
	label := strings.TrimSpace(req.Kind)
	if label == "" {
		label = "text generation"
	}
	ok, err := c.Confirm(ctx, label, providerModelLabel(s, rt), Preview(req.Prompt, req.System))
	if err != nil {
		slog.Warn("pipeline.confirm", "error", err)
		return false
	}
	return ok
}

// Preview assembles the text shown to the user before a call, capped at
// PreviewLimit characters.
func Preview(prompt, system string) string {
	text := prompt
	if strings.TrimSpace(system) != "" {
		text = system + "\n\n" + prompt
	}
	return types.Truncate(text, PreviewLimit)
}

func providerModelLabel(s config.Settings, rt route) string {
	if rt.path == types.PathDirect {
		base := endpoint.Normalize(s.Provider.BaseURL)
		return models.Resolve(base, s.Provider.Model) + " @ " + codec.RedactURL(base, s.Provider.APIKey)
	}
	if s.Host.Model != "" {
		return "host provider (" + s.Host.Model + ")"
	}
	return "host provider"
}

func paramsFrom(s config.Settings) codec.Params {
	return codec.Params{Temperature: s.Generation.Temperature, MaxTokens: s.Generation.MaxTokens}
}

// runDirect walks the candidate list sequentially and stops at the first
// attempt that yields text. The loop ignores caller cancellation once
// started; each call gets its own non-pooled transport.
func (p *Pipeline) runDirect(ctx context.Context, out *types.Outcome, cfg config.ProviderConfig, params codec.Params, verbose bool, prompt, system string) error {
	out.Path = types.PathDirect
	base := endpoint.Normalize(cfg.BaseURL)
	candidates := endpoint.Candidates(base)
	if len(candidates) == 0 {
		return out.Fail(types.KindConfiguration, fmt.Sprintf("no usable endpoint for base URL %q", codec.RedactURL(base, cfg.APIKey)))
	}

	model := models.Resolve(base, cfg.Model)
	messages := types.Messages(prompt, system)

	hc := upstream.NewCallClient()
	defer hc.CloseIdleConnections()
	client := upstream.NewClient(hc, verbose)
	loopCtx := context.WithoutCancel(ctx)

	for i, cand := range candidates {
		var res types.AttemptResult
		body, err := codec.BuildRequest(cand.Shape, model, messages, params)
		if err != nil {
			res = types.AttemptResult{URL: codec.RedactURL(cand.URL, cfg.APIKey), Shape: cand.Shape, ErrorKind: types.KindTransport, ErrorMessage: codec.Redact(err.Error(), cfg.APIKey)}
		} else {
			res = client.Attempt(loopCtx, cand, body, cfg.APIKey, out.CallID)
		}
		out.Record(res)
		p.Recorder.Record(res)
		p.Metrics.ObserveAttempt(res)
		slog.Info("pipeline.attempt",
			"call_id", out.CallID,
			"index", i+1,
			"of", len(candidates),
			"url", res.URL,
			"shape", res.Shape,
			"status", res.HTTPStatus,
			"ok", res.OK,
			"elapsed_ms", res.ElapsedMs,
			"error", res.ErrorMessage,
		)
		if res.OK {
			out.OK = true
			out.Text = res.Text
			return nil
		}
	}

	last := out.LastAttempt
	return out.Fail(last.ErrorKind, fmt.Sprintf("all %d endpoint candidates failed; last: %s", len(candidates), last.ErrorMessage))
}

func (p *Pipeline) runHost(ctx context.Context, out *types.Outcome, s config.Settings, r Readiness, req types.GenerationRequest) error {
	out.Path = types.PathHost
	if p.Host == nil {
		if s.Provider.Enabled && r.Kind == types.KindAuthorizationMissing {
			return out.Fail(types.KindAuthorizationMissing, r.Reason)
		}
		return out.Fail(types.KindConfiguration, "no generation provider is configured")
	}

	text, err := p.Host.Generate(context.WithoutCancel(ctx), req.Prompt, req.System)
	if err != nil {
		msg := types.Truncate(codec.Redact(err.Error(), s.Host.APIKey), codec.MaxErrorLen)
		return out.Fail(types.KindHost, msg)
	}
	if strings.TrimSpace(text) == "" {
		return out.Fail(types.KindHost, "host provider returned no text")
	}
	out.OK = true
	out.Text = text
	return nil
}
