package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/n0madic/go-genpipe/internal/codec"
	"github.com/n0madic/go-genpipe/internal/endpoint"
	"github.com/n0madic/go-genpipe/internal/limits"
	"github.com/n0madic/go-genpipe/internal/types"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// ErrNoText is the message recorded when a 2xx body carries no usable text.
const ErrNoText = "Invalid API response (no text)"

// Client performs single attempts against candidate endpoints.
type Client struct {
	HTTPClient *http.Client
	Verbose    bool
}

// NewClient creates a client over the given HTTP client.
func NewClient(hc *http.Client, verbose bool) *Client {
	return &Client{HTTPClient: hc, Verbose: verbose}
}

// NewCallClient returns an HTTP client owned by one logical call. Its
// transport does not keep connections alive, and the caller must call
// CloseIdleConnections when the call ends. No timeout is set.
func NewCallClient() *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DisableKeepAlives = true
	return &http.Client{Transport: tr}
}

// Attempt sends one request body to a candidate and classifies the result.
// It never returns an error: every failure is folded into the result. The
// recorded URL has credentials masked; the request goes to cand.URL as is.
func (c *Client) Attempt(ctx context.Context, cand endpoint.Candidate, body []byte, apiKey, callID string) (res types.AttemptResult) {
	res = types.AttemptResult{URL: codec.RedactURL(cand.URL, apiKey), Shape: cand.Shape}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res.OK = false
			res.Text = ""
			res.ErrorKind = types.KindTransport
			res.ErrorMessage = clean(fmt.Sprintf("attempt panicked: %v", r), apiKey)
		}
		res.ElapsedMs = time.Since(start).Milliseconds()
		if c.Verbose {
			slog.Info("upstream.response",
				"url", res.URL,
				"shape", res.Shape,
				"status", res.HTTPStatus,
				"ok", res.OK,
				"elapsed_ms", res.ElapsedMs,
				"request_id", res.RequestID,
			)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cand.URL, bytes.NewReader(body))
	if err != nil {
		res.ErrorKind = types.KindTransport
		res.ErrorMessage = clean(err.Error(), apiKey)
		return res
	}
	req.Header = codec.RequestHeaders(apiKey)
	if callID != "" {
		req.Header.Set("X-Client-Request-Id", callID)
	}

	if c.Verbose {
		slog.Info("upstream.request",
			"url", res.URL,
			"shape", cand.Shape,
			"body_bytes", len(body),
			"call_id", callID,
		)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		res.ErrorKind = types.KindTransport
		res.ErrorMessage = clean(err.Error(), apiKey)
		return res
	}
	defer resp.Body.Close()

	res.HTTPStatus = resp.StatusCode
	res.RequestID = codec.UpstreamRequestID(resp.Header)
	res.RateLimit = limits.ParseHeaders(resp.Header, time.Now())

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		res.ErrorKind = types.KindTransport
		res.ErrorMessage = clean("failed to read response body: "+err.Error(), apiKey)
		return res
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		res.ErrorKind = types.KindProviderHTTP
		res.ErrorMessage = clean(codec.FormatUpstreamErrorWithHeaders(resp.StatusCode, raw, resp.Header), apiKey)
		return res
	}

	text := codec.ExtractText(raw)
	if text == "" {
		res.ErrorKind = types.KindEmptyResponse
		res.ErrorMessage = ErrNoText
		return res
	}
	res.OK = true
	res.Text = text
	return res
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func clean(msg, apiKey string) string {
	return types.Truncate(codec.Redact(msg, apiKey), codec.MaxErrorLen)
}
