// Package endpoint turns a user-typed provider URL into an ordered list of
// completion endpoints worth trying.
package endpoint

import (
	"net"
	"net/url"
	"strings"
)

// Normalize repairs a raw user-typed base URL. It strips whitespace, turns
// commas into periods (numeric host entry with a decimal comma), adds a
// scheme when missing and removes trailing slashes. Empty input returns "",
// meaning "not configured".
func Normalize(raw string) string {
	s := strings.Join(strings.Fields(raw), "")
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, ",", ".")

	scheme := ""
	rest := s
	if i := strings.Index(s, "://"); i >= 0 {
		scheme = strings.ToLower(s[:i])
		rest = s[i+3:]
	} else if strings.HasPrefix(s, "//") {
		rest = s[2:]
	}
	rest = strings.TrimLeft(rest, "/")
	rest = strings.TrimRight(rest, "/")
	if rest == "" {
		return ""
	}

	switch scheme {
	case "http", "https":
	default:
		scheme = "https"
		if isLocalHost(hostOf(rest)) {
			scheme = "http"
		}
	}
	return scheme + "://" + rest
}

// IsLocal reports whether the URL points at a loopback or local-network host.
// Local inference servers (Ollama, LM Studio, vLLM) need no credential.
func IsLocal(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return isLocalHost(u.Hostname())
}

// hostOf extracts the host part of a scheme-less URL remainder.
func hostOf(rest string) string {
	end := len(rest)
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		end = i
	}
	authority := rest[:end]
	if i := strings.LastIndex(authority, "@"); i >= 0 {
		authority = authority[i+1:]
	}
	if h, _, err := net.SplitHostPort(authority); err == nil {
		return h
	}
	return strings.Trim(authority, "[]")
}

func isLocalHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return false
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".local") {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
