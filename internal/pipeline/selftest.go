package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/n0madic/go-genpipe/internal/config"
	"github.com/n0madic/go-genpipe/internal/types"
)

const (
	selfTestSystem = "You are a connectivity check. Reply with exactly {\"ok\":true} and nothing else."
	selfTestPrompt = "Return the JSON object {\"ok\":true}."
	sampleLimit    = 200
)

// SelfTestReport summarizes a connectivity check.
type SelfTestReport struct {
	OK        bool     `json:"ok"`
	ElapsedMs int64    `json:"elapsed_ms"`
	Tried     []string `json:"tried"`
	Sample    string   `json:"sample,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// SelfTest checks cfg over the direct path with a canned prompt. The Enabled
// flag is ignored, and confirmation and the spend limiter are skipped. An
// unready cfg returns without any network call.
func (p *Pipeline) SelfTest(ctx context.Context, cfg config.ProviderConfig) SelfTestReport {
	cfg.Enabled = true
	report := SelfTestReport{Tried: []string{}}
	if r := CheckReadiness(cfg); !r.Ready {
		report.Error = r.Reason
		return report
	}

	s := p.settings()
	out := &types.Outcome{CallID: uuid.NewString()}
	start := time.Now()
	err := p.runDirect(ctx, out, cfg, paramsFrom(s), s.Verbose, selfTestPrompt, selfTestSystem)
	report.ElapsedMs = time.Since(start).Milliseconds()
	if out.Tried != nil {
		report.Tried = out.Tried
	}
	if err != nil {
		report.Error = out.ErrorMessage
		return report
	}
	report.OK = true
	report.Sample = types.Truncate(out.Text, sampleLimit)
	return report
}
