package codec

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// CredentialHeaders lists every header a configured credential is sent
// under. Providers disagree on where they look for the key (OpenAI-style
// bearer, Azure api-key, Anthropic x-api-key), so the key is broadcast under
// all of them at once instead of guessing per provider.
var CredentialHeaders = []string{"Authorization", "api-key", "x-api-key"}

// RequestHeaders builds the headers for one attempt. With an empty apiKey
// no credential header is set at all.
func RequestHeaders(apiKey string) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return h
	}
	for _, name := range CredentialHeaders {
		if name == "Authorization" {
			h.Set(name, "Bearer "+key)
			continue
		}
		h.Set(name, key)
	}
	return h
}

var redactPatterns = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`sk-[A-Za-z0-9_\-]{8,}`), "sk-***"},
	{regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`), "Bearer ***"},
	{regexp.MustCompile(`(?i)(api[-_]?key["'=:\s]+)[A-Za-z0-9\-._~+/]{8,}`), "${1}***"},
}

// Redact removes the configured key and anything shaped like a credential
// from text bound for logs or diagnostics.
func Redact(text, apiKey string) string {
	if text == "" {
		return text
	}
	if key := strings.TrimSpace(apiKey); key != "" {
		text = strings.ReplaceAll(text, key, "***")
	}
	for _, p := range redactPatterns {
		text = p.re.ReplaceAllString(text, p.replacement)
	}
	return text
}

// credentialParams names query parameters that carry secrets in base URLs
// (Gemini ?key=, Azure SAS sig=, bearer access_token=).
var credentialParams = map[string]bool{
	"key":          true,
	"api_key":      true,
	"api-key":      true,
	"apikey":       true,
	"access_token": true,
	"token":        true,
	"sig":          true,
	"signature":    true,
}

// RedactURL masks credential query parameters and drops userinfo passwords
// from rawURL, then applies Redact. The result is for display only and must not
// be used to send a request.
func RedactURL(rawURL, apiKey string) string {
	if rawURL == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Redact(rawURL, apiKey)
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.User(u.User.Username())
		}
	}
	if u.RawQuery != "" {
		parts := strings.Split(u.RawQuery, "&")
		for i, part := range parts {
			name, _, hasValue := strings.Cut(part, "=")
			if !hasValue {
				continue
			}
			if decoded, err := url.QueryUnescape(name); err == nil {
				name = decoded
			}
			if credentialParams[strings.ToLower(name)] {
				parts[i] = part[:strings.Index(part, "=")+1] + "***"
			}
		}
		u.RawQuery = strings.Join(parts, "&")
	}
	return Redact(u.String(), apiKey)
}
