package types

import "github.com/n0madic/go-genpipe/internal/limits"

// Shape identifies the request/response schema family a candidate endpoint
// is assumed to speak.
type Shape string

const (
	ShapeChatCompletions Shape = "chat_completions"
	ShapeCompletions     Shape = "completions"
	ShapeResponses       Shape = "responses"
	ShapeUnknown         Shape = "unknown"
)

// Path names the route a generation call took.
type Path string

const (
	PathDirect Path = "direct"
	PathHost   Path = "host"
)

// GenerationRequest is one logical text-generation call. Prompt and System
// are opaque to the pipeline; Kind is only used to label the confirmation
// prompt.
type GenerationRequest struct {
	Prompt               string
	System               string
	Kind                 string
	ConfirmationRequired bool
}

// AttemptResult records a single request against one candidate endpoint.
type AttemptResult struct {
	URL          string                    `json:"url"`
	Shape        Shape                     `json:"shape"`
	HTTPStatus   int                       `json:"http_status"`
	ElapsedMs    int64                     `json:"elapsed_ms"`
	OK           bool                      `json:"ok"`
	Text         string                    `json:"text,omitempty"`
	ErrorKind    ErrorKind                 `json:"error_kind,omitempty"`
	ErrorMessage string                    `json:"error,omitempty"`
	RequestID    string                    `json:"request_id,omitempty"`
	RateLimit    *limits.RateLimitSnapshot `json:"rate_limit,omitempty"`
}

// Outcome is the full result of one pipeline call. It owns every attempt the
// call made, so callers never need the shared diagnostics mirror to explain
// a failure.
type Outcome struct {
	CallID       string          `json:"call_id"`
	Path         Path            `json:"path"`
	OK           bool            `json:"ok"`
	Text         string          `json:"text,omitempty"`
	LastAttempt  *AttemptResult  `json:"last_attempt,omitempty"`
	Attempts     []AttemptResult `json:"attempts,omitempty"`
	Tried        []string        `json:"tried,omitempty"`
	ErrorKind    ErrorKind       `json:"error_kind,omitempty"`
	ErrorMessage string          `json:"error,omitempty"`
}

// Record appends an attempt and keeps LastAttempt and Tried in step.
func (o *Outcome) Record(a AttemptResult) {
	o.Attempts = append(o.Attempts, a)
	o.LastAttempt = &o.Attempts[len(o.Attempts)-1]
	if a.URL != "" {
		o.Tried = append(o.Tried, a.URL)
	}
}

// Fail marks the outcome failed and returns the matching error.
func (o *Outcome) Fail(kind ErrorKind, message string) error {
	o.OK = false
	o.Text = ""
	o.ErrorKind = kind
	o.ErrorMessage = message
	return &GenerationError{Kind: kind, Message: message}
}
