package verify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/crosscheck/internal/model"
	"github.com/ppiankov/crosscheck/internal/retrieve"
)

type stubJudge struct {
	resp *JudgeResponse
	err  error
}

func (s stubJudge) Evaluate(_ context.Context, _ *model.IncidentRecord, _ []retrieve.SourceText) (*JudgeResponse, error) {
	return s.resp, s.err
}

func testConfig() model.VerifyConfig {
	return model.VerifyConfig{VerifiedMin: 70, LikelyValidMin: 50, WeakMatchMin: 30}
}

func janeDoe() *model.IncidentRecord {
	return &model.IncidentRecord{
		ID:           "rec-jane",
		SourceTier:   model.TierRegional,
		Date:         "2025-06-10",
		State:        "Illinois",
		City:         "Springfield",
		IncidentType: model.IncidentShooting,
		VictimName:   "Jane Doe",
	}
}

func TestVerify_FullySupportedRecord(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	sources := []retrieve.SourceText{{
		Name: "Local News",
		URL:  "https://news.example.com/a",
		Text: "Jane Doe was shot and killed in Springfield, Ill., on June 10, 2025. " +
			"Police said the shooting happened outside her home.",
	}}

	res := e.Verify(context.Background(), janeDoe(), sources)

	if res.Score < 90 {
		t.Errorf("score = %d, want >= 90", res.Score)
	}
	if res.Verdict != model.VerdictVerified {
		t.Errorf("verdict = %s, want verified", res.Verdict)
	}
}

func TestVerify_UnrelatedText(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	sources := []retrieve.SourceText{{
		Name: "State News",
		URL:  "https://news.example.com/b",
		Text: "The state budget office released its annual fiscal outlook for Illinois, " +
			"projecting a shortfall driven by pension obligations and slowing revenue.",
	}}

	res := e.Verify(context.Background(), janeDoe(), sources)

	if res.Score >= 20 {
		t.Errorf("score = %d, want < 20 for unrelated text", res.Score)
	}
	if res.Verdict != model.VerdictNoMatch {
		t.Errorf("verdict = %s, want no_match", res.Verdict)
	}
}

func TestVerify_RenormalizesWithoutVictimName(t *testing.T) {
	rec := janeDoe()
	rec.VictimName = ""

	e := NewEngine(testConfig(), nil)
	sources := []retrieve.SourceText{{
		Name: "Wire",
		URL:  "https://wire.example.com/c",
		Text: "A man was shot in Springfield, Illinois on June 10, 2025 after gunfire broke out downtown.",
	}}

	res := e.Verify(context.Background(), rec, sources)

	if res.Score != 100 {
		t.Errorf("score = %d, want 100 over the remaining applicable checks", res.Score)
	}
	if res.Verdict != model.VerdictVerified {
		t.Errorf("verdict = %s, want verified", res.Verdict)
	}
}

func TestVerify_NoSources(t *testing.T) {
	e := NewEngine(testConfig(), nil)

	res := e.Verify(context.Background(), janeDoe(), nil)

	if res.Verdict != model.VerdictNoSources {
		t.Errorf("verdict = %s, want no_sources", res.Verdict)
	}
	if res.Score != 0 {
		t.Errorf("score = %d, want 0", res.Score)
	}
}

func TestVerify_BestSourceWins(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	sources := []retrieve.SourceText{
		{Name: "Weak", URL: "https://a.example.com", Text: "city council agenda for the month"},
		{Name: "Strong", URL: "https://b.example.com",
			Text: "Jane Doe was shot in Springfield, Ill. on June 10, 2025 as gunfire erupted."},
	}

	res := e.Verify(context.Background(), janeDoe(), sources)

	if len(res.SourceEvals) != 2 {
		t.Fatalf("expected evals for both sources, got %d", len(res.SourceEvals))
	}
	if res.Score != res.SourceEvals[1].Score {
		t.Errorf("record score %d should equal the best source score %d", res.Score, res.SourceEvals[1].Score)
	}
	if res.SourceEvals[0].Score >= res.SourceEvals[1].Score {
		t.Errorf("expected strong source to outscore weak: %d vs %d",
			res.SourceEvals[1].Score, res.SourceEvals[0].Score)
	}
}

func TestVerify_JudgeDegradesGracefully(t *testing.T) {
	e := NewEngine(testConfig(), stubJudge{err: errors.New("connection refused")})
	sources := []retrieve.SourceText{{
		Name: "Local News",
		URL:  "https://news.example.com/a",
		Text: "Jane Doe was shot in Springfield, Ill. on June 10, 2025 as gunfire erupted.",
	}}

	res := e.Verify(context.Background(), janeDoe(), sources)

	if !res.JudgeUnavailable {
		t.Error("judge failure must be marked on the result")
	}
	found := false
	for _, issue := range res.Issues {
		if strings.HasPrefix(issue, "judge_unavailable:") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a judge_unavailable issue, got %v", res.Issues)
	}
	if res.Verdict != model.VerdictVerified {
		t.Errorf("mechanical verdict must stand when the judge fails, got %s", res.Verdict)
	}
}

func TestVerify_JudgeRaisesButNeverLowers(t *testing.T) {
	// Location and date match, name and keywords do not: mechanical 45.
	sources := []retrieve.SourceText{{
		Name: "Parade Piece",
		URL:  "https://news.example.com/d",
		Text: "A crowd gathered in Springfield, Illinois on June 10, 2025 for the annual parade.",
	}}

	agree := NewEngine(testConfig(), stubJudge{resp: &JudgeResponse{Score: 95, Passed: true}})
	res := agree.Verify(context.Background(), janeDoe(), sources)
	if res.Score != 60 {
		t.Errorf("blended score = %d, want 60 (45*7 + 95*3)/10", res.Score)
	}
	if res.Verdict != model.VerdictLikelyValid {
		t.Errorf("verdict = %s, want likely_valid after blending", res.Verdict)
	}

	disagree := NewEngine(testConfig(), stubJudge{resp: &JudgeResponse{Score: 0}})
	res = disagree.Verify(context.Background(), janeDoe(), sources)
	if res.Score != 45 {
		t.Errorf("judge disagreement must not lower the mechanical score, got %d", res.Score)
	}
}

func TestVerify_JudgeFlagsIrrelevantSource(t *testing.T) {
	judge := stubJudge{resp: &JudgeResponse{
		Score: 10,
		SourceEvaluations: []JudgeSourceEval{
			{SourceName: "Parade Piece", Relevant: false, Quality: "low", Reason: "different event at the same location"},
		},
		Issues: []string{"source describes a parade, not a shooting"},
	}}
	e := NewEngine(testConfig(), judge)
	sources := []retrieve.SourceText{{
		Name: "Parade Piece",
		URL:  "https://news.example.com/d",
		Text: "A crowd gathered in Springfield, Illinois on June 10, 2025 for the annual parade.",
	}}

	res := e.Verify(context.Background(), janeDoe(), sources)

	eval := res.SourceEvals[0]
	if eval.JudgeRelevant == nil || *eval.JudgeRelevant {
		t.Error("judge relevance flag should be recorded on the source eval")
	}
	if eval.JudgeReason == "" {
		t.Error("judge reason should be recorded")
	}
	found := false
	for _, issue := range res.Issues {
		if strings.Contains(issue, "parade") {
			found = true
		}
	}
	if !found {
		t.Errorf("judge issues should merge into the result, got %v", res.Issues)
	}
}
