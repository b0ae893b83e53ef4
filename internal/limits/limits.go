package limits

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RateLimitWindow represents one provider-reported rate limit window.
type RateLimitWindow struct {
	Limit           *int `json:"limit,omitempty"`
	Remaining       *int `json:"remaining,omitempty"`
	ResetsInSeconds *int `json:"resets_in_seconds,omitempty"`
}

// RateLimitSnapshot holds the request and token windows an OpenAI-compatible
// provider advertises on a response. CapturedAt anchors ResetsInSeconds.
type RateLimitSnapshot struct {
	Requests   *RateLimitWindow `json:"requests,omitempty"`
	Tokens     *RateLimitWindow `json:"tokens,omitempty"`
	CapturedAt time.Time        `json:"captured_at"`
}

// ParseHeaders extracts rate limit information from upstream response headers
// received at capturedAt. Returns nil when the provider sent none.
func ParseHeaders(headers http.Header, capturedAt time.Time) *RateLimitSnapshot {
	if headers == nil {
		return nil
	}
	requests := parseWindow(headers,
		"x-ratelimit-limit-requests",
		"x-ratelimit-remaining-requests",
		"x-ratelimit-reset-requests",
	)
	tokens := parseWindow(headers,
		"x-ratelimit-limit-tokens",
		"x-ratelimit-remaining-tokens",
		"x-ratelimit-reset-tokens",
	)
	if requests == nil && tokens == nil {
		return nil
	}
	return &RateLimitSnapshot{Requests: requests, Tokens: tokens, CapturedAt: capturedAt}
}

func parseWindow(headers http.Header, limitKey, remainingKey, resetKey string) *RateLimitWindow {
	limit := parseCount(headers.Get(limitKey))
	remaining := parseCount(headers.Get(remainingKey))
	reset := parseReset(headers.Get(resetKey))
	if limit == nil && remaining == nil && reset == nil {
		return nil
	}
	return &RateLimitWindow{Limit: limit, Remaining: remaining, ResetsInSeconds: reset}
}

func parseCount(v string) *int {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		return nil
	}
	return &i
}

// parseReset accepts Go-style durations ("6m0s", "20ms") and bare seconds.
func parseReset(v string) *int {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		secs := int(math.Ceil(d.Seconds()))
		return &secs
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil
	}
	secs := int(math.Ceil(f))
	return &secs
}

// ComputeResetAt calculates when a rate limit window will reset.
func ComputeResetAt(capturedAt time.Time, w *RateLimitWindow) *time.Time {
	if w == nil || w.ResetsInSeconds == nil {
		return nil
	}
	t := capturedAt.Add(time.Duration(*w.ResetsInSeconds) * time.Second)
	return &t
}
