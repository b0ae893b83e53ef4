package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/n0madic/go-genpipe/internal/types"
)

// TextEncoder encodes requests in the legacy text completions format.
type TextEncoder struct{}

func (e *TextEncoder) Shape() types.Shape { return types.ShapeCompletions }

func (e *TextEncoder) Encode(model string, messages []types.ChatMessage, p Params) ([]byte, error) {
	body, err := json.Marshal(types.TextCompletionRequest{
		Model:       model,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
		Stream:      false,
		Prompt:      FlattenMessages(messages),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completions payload: %w", err)
	}
	return body, nil
}

// FlattenMessages renders messages as "ROLE: content" blocks separated by a
// blank line, for endpoints that only take a prompt string.
func FlattenMessages(messages []types.ChatMessage) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, strings.ToUpper(m.Role)+": "+m.Content)
	}
	return strings.Join(parts, "\n\n")
}
