package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/n0madic/go-genpipe/internal/endpoint"
	"github.com/n0madic/go-genpipe/internal/limits"
	"github.com/n0madic/go-genpipe/internal/pipeline"
	"github.com/n0madic/go-genpipe/internal/types"
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F780FF")).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4")).Italic(true)
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E9E9F4"))
	successMark   = okStyle.Render("✓")
	failureMark   = errorStyle.Render("✗")
	attemptIndent = "    "
)

func renderOutcome(w io.Writer, out *types.Outcome) {
	if out == nil {
		return
	}
	title := fmt.Sprintf("Call %s via %s", out.CallID, out.Path)
	fmt.Fprintln(w, headerStyle.Render(title))
	for i, a := range out.Attempts {
		renderAttempt(w, i+1, a)
	}
	if !out.OK {
		fmt.Fprintf(w, "%s %s\n", errorStyle.Render("Error:"), out.ErrorMessage)
	}
}

func renderAttempt(w io.Writer, n int, a types.AttemptResult) {
	mark := failureMark
	if a.OK {
		mark = successMark
	}
	status := "---"
	if a.HTTPStatus != 0 {
		status = fmt.Sprintf("%d", a.HTTPStatus)
	}
	fmt.Fprintf(w, "%s %d. %s %s %s\n", mark, n, status, a.URL, hintStyle.Render(fmt.Sprintf("(%s, %dms)", a.Shape, a.ElapsedMs)))
	if a.ErrorMessage != "" {
		fmt.Fprintln(w, attemptIndent+detailStyle.Render(a.ErrorMessage))
	}
	if a.RequestID != "" {
		fmt.Fprintln(w, attemptIndent+hintStyle.Render("request id: "+a.RequestID))
	}
	if a.RateLimit != nil {
		renderWindow(w, "requests", a.RateLimit.Requests, a.RateLimit.CapturedAt)
		renderWindow(w, "tokens", a.RateLimit.Tokens, a.RateLimit.CapturedAt)
	}
}

func renderWindow(w io.Writer, name string, win *limits.RateLimitWindow, capturedAt time.Time) {
	if win == nil {
		return
	}
	var parts []string
	if win.Remaining != nil && win.Limit != nil {
		parts = append(parts, fmt.Sprintf("%d/%d left", *win.Remaining, *win.Limit))
	} else if win.Remaining != nil {
		parts = append(parts, fmt.Sprintf("%d left", *win.Remaining))
	}
	if reset := formatResetDuration(win.ResetsInSeconds); reset != "" {
		if at := limits.ComputeResetAt(capturedAt, win); at != nil && !capturedAt.IsZero() {
			reset += " at " + at.Local().Format("15:04:05")
		}
		parts = append(parts, "resets in "+reset)
	}
	if len(parts) == 0 {
		return
	}
	fmt.Fprintln(w, attemptIndent+hintStyle.Render(name+": "+strings.Join(parts, ", ")))
}

func renderSelfTest(w io.Writer, r pipeline.SelfTestReport) {
	if r.OK {
		fmt.Fprintf(w, "%s %s %s\n", successMark, okStyle.Render("Self-test passed"), hintStyle.Render(fmt.Sprintf("(%dms)", r.ElapsedMs)))
	} else {
		fmt.Fprintf(w, "%s %s\n", failureMark, errorStyle.Render("Self-test failed"))
	}
	for _, u := range r.Tried {
		fmt.Fprintln(w, attemptIndent+hintStyle.Render("tried "+u))
	}
	if r.Sample != "" {
		fmt.Fprintln(w, attemptIndent+detailStyle.Render("sample: "+r.Sample))
	}
	if r.Error != "" {
		fmt.Fprintln(w, attemptIndent+detailStyle.Render(r.Error))
	}
}

func renderCandidates(w io.Writer, base string, local bool, cands []endpoint.Candidate) {
	if base == "" {
		fmt.Fprintln(w, errorStyle.Render("Not configured: empty URL"))
		return
	}
	where := "remote"
	if local {
		where = "local"
	}
	fmt.Fprintf(w, "%s %s\n", headerStyle.Render(base), hintStyle.Render("("+where+")"))
	if len(cands) == 0 {
		fmt.Fprintln(w, errorStyle.Render("No usable candidates"))
		return
	}
	for i, c := range cands {
		fmt.Fprintf(w, "%d. %s %s\n", i+1, c.URL, hintStyle.Render(string(c.Shape)))
	}
}

func formatResetDuration(seconds *int) string {
	if seconds == nil {
		return ""
	}
	v := *seconds
	if v < 0 {
		v = 0
	}
	days := v / 86400
	v %= 86400
	hours := v / 3600
	v %= 3600
	minutes := v / 60
	v %= 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if len(parts) == 0 && v > 0 {
		parts = append(parts, "under 1m")
	}
	if len(parts) == 0 {
		parts = append(parts, "0m")
	}
	return strings.Join(parts, " ")
}
