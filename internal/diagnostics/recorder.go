// Package diagnostics keeps a best-effort mirror of the most recent
// generation attempt for status displays.
//
// The mirror is shared by every call on a Recorder. Concurrent calls race
// and the last writer wins, so the value is only a hint; each call's
// types.Outcome is the authoritative record of what it did.
package diagnostics

import (
	"sync"
	"time"

	"github.com/n0madic/go-genpipe/internal/types"
)

// Snapshot is the mirrored state of one attempt.
type Snapshot struct {
	OK           bool      `json:"ok"`
	URL          string    `json:"url"`
	ElapsedMs    int64     `json:"elapsed_ms"`
	HTTPStatus   int       `json:"http_status"`
	ErrorMessage string    `json:"error,omitempty"`
	At           time.Time `json:"at"`
}

// Recorder holds at most one snapshot. The zero value is ready to use and a
// nil *Recorder discards everything.
type Recorder struct {
	mu     sync.Mutex
	latest Snapshot
	set    bool
	now    func() time.Time
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record overwrites the mirror with an attempt.
func (r *Recorder) Record(a types.AttemptResult) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	at := time.Now()
	if r.now != nil {
		at = r.now()
	}
	r.latest = Snapshot{
		OK:           a.OK,
		URL:          a.URL,
		ElapsedMs:    a.ElapsedMs,
		HTTPStatus:   a.HTTPStatus,
		ErrorMessage: a.ErrorMessage,
		At:           at,
	}
	r.set = true
}

// Latest returns the most recent snapshot, or false if nothing was recorded.
func (r *Recorder) Latest() (Snapshot, bool) {
	if r == nil {
		return Snapshot{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest, r.set
}

// Reset clears the mirror.
func (r *Recorder) Reset() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.latest = Snapshot{}
	r.set = false
	r.mu.Unlock()
}
