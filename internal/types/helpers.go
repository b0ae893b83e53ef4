package types

import "strings"

// RoleSystem and RoleUser are the only roles the pipeline emits.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Messages builds the message list for a prompt, omitting a blank system text.
func Messages(prompt, system string) []ChatMessage {
	msgs := make([]ChatMessage, 0, 2)
	if strings.TrimSpace(system) != "" {
		msgs = append(msgs, ChatMessage{Role: RoleSystem, Content: system})
	}
	msgs = append(msgs, ChatMessage{Role: RoleUser, Content: prompt})
	return msgs
}

// Truncate shortens s to at most max runes, appending "..." when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
