package codec

import (
	"encoding/json"
	"fmt"

	"github.com/n0madic/go-genpipe/internal/types"
)

// ResponsesEncoder encodes requests in OpenAI Responses API format. The
// message array goes into input unchanged.
type ResponsesEncoder struct{}

func (e *ResponsesEncoder) Shape() types.Shape { return types.ShapeResponses }

func (e *ResponsesEncoder) Encode(model string, messages []types.ChatMessage, p Params) ([]byte, error) {
	body, err := json.Marshal(types.ResponsesRequest{
		Model:       model,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
		Stream:      false,
		Input:       messages,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal responses payload: %w", err)
	}
	return body, nil
}
