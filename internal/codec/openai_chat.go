package codec

import (
	"encoding/json"
	"fmt"

	"github.com/n0madic/go-genpipe/internal/types"
)

// ChatEncoder encodes requests in OpenAI chat completions format.
type ChatEncoder struct{}

func (e *ChatEncoder) Shape() types.Shape { return types.ShapeChatCompletions }

func (e *ChatEncoder) Encode(model string, messages []types.ChatMessage, p Params) ([]byte, error) {
	body, err := json.Marshal(types.ChatCompletionRequest{
		Model:       model,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
		Stream:      false,
		Messages:    messages,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat payload: %w", err)
	}
	return body, nil
}
