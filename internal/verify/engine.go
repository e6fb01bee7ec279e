// Package verify scores how well retrieved source text substantiates a
// record's factual claims. Mechanical checks are deterministic and always
// run; the external judge is advisory and degrades gracefully.
package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/crosscheck/internal/model"
	"github.com/ppiankov/crosscheck/internal/retrieve"
)

// Judge is the external text-evaluation capability. Implementations must
// return an error rather than a fabricated response when the service fails.
type Judge interface {
	Evaluate(ctx context.Context, rec *model.IncidentRecord, sources []retrieve.SourceText) (*JudgeResponse, error)
}

// Engine verifies records against retrieved source texts.
type Engine struct {
	cfg   model.VerifyConfig
	judge Judge // nil disables judge evaluation
}

// NewEngine creates a verification engine. Pass a nil judge for
// mechanical-only scoring.
func NewEngine(cfg model.VerifyConfig, judge Judge) *Engine {
	return &Engine{cfg: cfg, judge: judge}
}

// Verify scores one record against its retrieved source texts.
//
// No sources at all is the no_sources verdict with score 0: a retrieval or
// data-completeness problem, not a content judgment. Otherwise each source
// is checked independently and the best-supported source sets the
// mechanical score; a record needs one substantiating citation, not
// unanimity across citations of mixed quality.
func (e *Engine) Verify(ctx context.Context, rec *model.IncidentRecord, sources []retrieve.SourceText) model.VerificationResult {
	result := model.VerificationResult{
		EntryID:    rec.ID,
		VerifiedAt: time.Now().UTC(),
	}

	if len(sources) == 0 {
		result.Verdict = model.VerdictNoSources
		result.Reasoning = "no retrievable or archived source text"
		return result
	}

	best := 0
	for _, src := range sources {
		checks := []model.CheckResult{
			checkName(rec.VictimName, src.Text),
			checkLocation(rec.City, rec.State, src.Text),
			checkDate(rec.Date, src.Text),
			checkKeywords(rec.IncidentType, src.Text),
		}
		score := scoreChecks(checks)
		if score > best {
			best = score
		}
		result.SourceEvals = append(result.SourceEvals, model.SourceEval{
			SourceName: src.Name,
			URL:        src.URL,
			Score:      score,
			Checks:     checks,
		})
	}

	result.Score = best
	result.Verdict = e.cfg.VerdictFor(best)

	if e.judge != nil {
		e.applyJudge(ctx, rec, sources, &result)
	}

	return result
}

// applyJudge merges the advisory judge evaluation into the result. The
// mechanical score is the floor: judge agreement can raise the blended
// score, disagreement surfaces as issues and per-source relevance flags,
// and any failure degrades to mechanical-only with an explicit marker.
func (e *Engine) applyJudge(ctx context.Context, rec *model.IncidentRecord, sources []retrieve.SourceText, result *model.VerificationResult) {
	resp, err := e.judge.Evaluate(ctx, rec, sources)
	if err != nil {
		result.JudgeUnavailable = true
		result.Issues = append(result.Issues, fmt.Sprintf("judge_unavailable: %v", err))
		return
	}

	mech := result.Score
	blended := (mech*7 + resp.Score*3) / 10
	if blended > mech {
		result.Score = blended
		result.Verdict = e.cfg.VerdictFor(blended)
	}

	result.Issues = append(result.Issues, resp.Issues...)
	result.Corrections = append(result.Corrections, resp.Corrections...)
	result.Reasoning = resp.Reasoning
	if resp.ArticleSays != nil {
		result.ArticleSays = resp.ArticleSays
	}

	for _, eval := range resp.SourceEvaluations {
		for i := range result.SourceEvals {
			if result.SourceEvals[i].SourceName != eval.SourceName {
				continue
			}
			relevant := eval.Relevant
			result.SourceEvals[i].JudgeRelevant = &relevant
			result.SourceEvals[i].JudgeQuality = eval.Quality
			result.SourceEvals[i].JudgeReason = eval.Reason
		}
	}
}
