package codec

import (
	"github.com/n0madic/go-genpipe/internal/types"
)

// Default generation parameters.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1024
)

// Params carries the fixed generation parameters shared by every shape.
// Requests are always whole-response; there is no stream switch.
type Params struct {
	Temperature float64
	MaxTokens   int
}

// DefaultParams returns the parameters used when settings leave them unset.
func DefaultParams() Params {
	return Params{Temperature: DefaultTemperature, MaxTokens: DefaultMaxTokens}
}

func (p Params) withDefaults() Params {
	if p.Temperature < 0 {
		p.Temperature = DefaultTemperature
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = DefaultMaxTokens
	}
	return p
}

// Encoder serializes a request body for one wire shape.
type Encoder interface {
	Encode(model string, messages []types.ChatMessage, p Params) ([]byte, error)
	Shape() types.Shape
}

// EncoderFor returns the encoder for a shape. Unknown shapes use the chat
// completions body, which is what most OpenAI-compatible servers accept.
func EncoderFor(shape types.Shape) Encoder {
	switch shape {
	case types.ShapeCompletions:
		return &TextEncoder{}
	case types.ShapeResponses:
		return &ResponsesEncoder{}
	default:
		return &ChatEncoder{}
	}
}

// BuildRequest serializes the body for a candidate of the given shape.
func BuildRequest(shape types.Shape, model string, messages []types.ChatMessage, p Params) ([]byte, error) {
	return EncoderFor(shape).Encode(model, messages, p.withDefaults())
}
