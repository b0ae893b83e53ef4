package pipeline

import (
	"strings"
	"sync"

	"github.com/n0madic/go-genpipe/internal/codec"
	"github.com/n0madic/go-genpipe/internal/config"
	"github.com/n0madic/go-genpipe/internal/endpoint"
	"github.com/n0madic/go-genpipe/internal/types"
)

// Readiness explains whether the direct path can be used.
type Readiness struct {
	Ready  bool
	Kind   types.ErrorKind
	Reason string
}

// CheckReadiness reports whether cfg can serve a direct call: it must be
// enabled, have a base URL, and either point at a local host or carry an
// API key.
func CheckReadiness(cfg config.ProviderConfig) Readiness {
	if !cfg.Enabled {
		return Readiness{Kind: types.KindConfiguration, Reason: "generation provider is disabled"}
	}
	base := endpoint.Normalize(cfg.BaseURL)
	if base == "" {
		return Readiness{Kind: types.KindConfiguration, Reason: "generation provider has no base URL"}
	}
	if !endpoint.IsLocal(base) && strings.TrimSpace(cfg.APIKey) == "" {
		return Readiness{Kind: types.KindAuthorizationMissing, Reason: "remote endpoint " + codec.RedactURL(base, "") + " requires an API key"}
	}
	return Readiness{Ready: true}
}

// WarnOnce remembers which warnings were already shown. The zero value is
// ready to use.
type WarnOnce struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// Warn sends msg to n unless the same msg was sent before. It reports
// whether the notice went out.
func (w *WarnOnce) Warn(n Notifier, msg string) bool {
	w.mu.Lock()
	if w.seen == nil {
		w.seen = make(map[string]struct{})
	}
	if _, ok := w.seen[msg]; ok {
		w.mu.Unlock()
		return false
	}
	w.seen[msg] = struct{}{}
	w.mu.Unlock()
	if n != nil {
		n.Notify(LevelWarn, msg)
	}
	return true
}
