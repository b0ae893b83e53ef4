package endpoint

import (
	"net/url"
	"strings"

	"github.com/n0madic/go-genpipe/internal/types"
)

// Candidate is one guess at where the completions endpoint lives.
type Candidate struct {
	URL   string      `json:"url"`
	Shape types.Shape `json:"shape"`
}

// fallbackSuffixes are appended to a base whose path matches no known suffix.
var fallbackSuffixes = []string{
	"/v1/chat/completions",
	"/v1/completions",
	"/v1/responses",
	"/chat/completions",
	"/completions",
	"/responses",
}

// Candidates derives the ordered candidate list for a normalized base URL.
// The result is deterministic for a given base, deduplicated with the first
// occurrence winning, and empty when the base is blank or malformed. Any
// query string or fragment on the base is carried onto every candidate.
func Candidates(base string) []Candidate {
	base = strings.TrimSpace(base)
	if base == "" {
		return nil
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil
	}

	tail := ""
	if u.RawQuery != "" {
		tail += "?" + u.RawQuery
	}
	if u.Fragment != "" {
		tail += "#" + u.EscapedFragment()
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""
	root := strings.TrimRight(u.String(), "/")
	path := strings.ToLower(strings.TrimRight(u.EscapedPath(), "/"))

	var urls []string
	switch {
	case strings.HasSuffix(path, "/v1"):
		urls = []string{root + "/chat/completions", root + "/completions", root + "/responses"}
	case strings.HasSuffix(path, "/v1/chat/completions"):
		prefix := root[:len(root)-len("/chat/completions")]
		urls = []string{root, prefix + "/completions", prefix + "/responses"}
	case strings.HasSuffix(path, "/v1/completions"):
		prefix := root[:len(root)-len("/completions")]
		urls = []string{prefix + "/chat/completions", root, prefix + "/responses"}
	case strings.HasSuffix(path, "/v1/responses"):
		prefix := root[:len(root)-len("/responses")]
		urls = []string{prefix + "/chat/completions", prefix + "/completions", root}
	case strings.HasSuffix(path, "/chat"):
		urls = []string{root + "/completions"}
	case strings.HasSuffix(path, "/chat/completions"):
		urls = []string{root}
	default:
		urls = make([]string, 0, len(fallbackSuffixes))
		for _, s := range fallbackSuffixes {
			urls = append(urls, root+s)
		}
	}

	out := make([]Candidate, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))
	for _, raw := range urls {
		full := raw + tail
		if _, ok := seen[full]; ok {
			continue
		}
		seen[full] = struct{}{}
		out = append(out, Candidate{URL: full, Shape: ShapeOf(raw)})
	}
	return out
}

// ShapeOf infers the schema family from a URL's path suffix.
func ShapeOf(rawURL string) types.Shape {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	p = strings.ToLower(strings.TrimRight(p, "/"))
	switch {
	case strings.HasSuffix(p, "/chat/completions"):
		return types.ShapeChatCompletions
	case strings.HasSuffix(p, "/completions"):
		return types.ShapeCompletions
	case strings.HasSuffix(p, "/responses"):
		return types.ShapeResponses
	}
	return types.ShapeUnknown
}
