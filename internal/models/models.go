package models

import (
	"net/url"
	"strings"
)

// PlaceholderModel is sent when no model id is configured. Local servers
// such as LM Studio and llama.cpp accept any id.
const PlaceholderModel = "local-model"

// FirstParty describes a provider host whose own model naming we know.
type FirstParty struct {
	Provider     string
	Host         string
	DefaultModel string
}

// FirstParties returns the hosts that get the model-id compatibility shim.
func FirstParties() []FirstParty {
	return []FirstParty{
		{Provider: "openai", Host: "api.openai.com", DefaultModel: "gpt-4o-mini"},
		{Provider: "anthropic", Host: "api.anthropic.com", DefaultModel: "claude-3-5-haiku-latest"},
		{Provider: "google", Host: "generativelanguage.googleapis.com", DefaultModel: "gemini-2.0-flash"},
		{Provider: "deepseek", Host: "api.deepseek.com", DefaultModel: "deepseek-chat"},
		{Provider: "mistral", Host: "api.mistral.ai", DefaultModel: "mistral-small-latest"},
	}
}

// familyPrefixes maps a provider to the prefixes its model ids start with.
var familyPrefixes = []struct {
	provider string
	prefixes []string
}{
	{"openai", []string{"gpt-", "chatgpt-", "o1", "o3", "o4", "ft:gpt", "text-", "davinci", "babbage", "codex-", "omni-"}},
	{"anthropic", []string{"claude"}},
	{"google", []string{"gemini", "gemma", "learnlm"}},
	{"deepseek", []string{"deepseek"}},
	{"mistral", []string{"mistral", "mixtral", "codestral", "ministral", "pixtral", "open-mistral", "magistral", "devstral"}},
	{"meta", []string{"llama", "meta-llama", "codellama"}},
	{"qwen", []string{"qwen", "qwq"}},
	{"microsoft", []string{"phi"}},
	{"xai", []string{"grok"}},
}

// FamilyOf returns the provider whose naming convention the model id follows,
// or "" when it matches none.
func FamilyOf(model string) string {
	m := strings.ToLower(strings.TrimSpace(model))
	m = strings.TrimPrefix(m, "models/")
	for _, f := range familyPrefixes {
		for _, p := range f.prefixes {
			if strings.HasPrefix(m, p) {
				return f.provider
			}
		}
	}
	return ""
}

// FirstPartyFor returns the first-party entry for a base URL's host.
func FirstPartyFor(baseURL string) (FirstParty, bool) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return FirstParty{}, false
	}
	host := strings.ToLower(u.Hostname())
	for _, fp := range FirstParties() {
		if host == fp.Host {
			return fp, true
		}
	}
	return FirstParty{}, false
}

// Resolve picks the model id to send. An empty id becomes PlaceholderModel.
// When the base URL is a known first-party host and the configured id still
// follows another provider's naming (left over from switching providers by
// URL alone), the host's default model is used instead.
func Resolve(baseURL, configured string) string {
	model := strings.TrimSpace(configured)
	if model == "" {
		return PlaceholderModel
	}
	if fp, ok := FirstPartyFor(baseURL); ok && looksForeign(model, fp.Provider) {
		return fp.DefaultModel
	}
	return model
}

func looksForeign(model, provider string) bool {
	m := strings.ToLower(model)
	m = strings.TrimPrefix(m, "models/")
	if strings.Contains(m, "/") {
		return true
	}
	if fam := FamilyOf(m); fam != "" {
		return fam != provider
	}
	// Ollama-style name:tag
	return strings.Contains(m, ":")
}
