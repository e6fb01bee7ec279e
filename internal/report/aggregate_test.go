package report

import (
	"testing"

	"github.com/ppiankov/crosscheck/internal/model"
)

func checkSet(name, location, date, keywords float64) []model.CheckResult {
	return []model.CheckResult{
		{Name: "name", Applicable: true, Credit: name},
		{Name: "location", Applicable: true, Credit: location},
		{Name: "date", Applicable: true, Credit: date},
		{Name: "keywords", Applicable: true, Credit: keywords},
	}
}

func TestAggregate_BucketsByVerdict(t *testing.T) {
	results := []model.VerificationResult{
		{EntryID: "a", Verdict: model.VerdictVerified, Score: 95},
		{EntryID: "b", Verdict: model.VerdictVerified, Score: 80},
		{EntryID: "c", Verdict: model.VerdictNoSources},
	}

	rep := Aggregate(results)

	if rep.Total != 3 {
		t.Errorf("total = %d, want 3", rep.Total)
	}
	if rep.ByVerdict[model.VerdictVerified] != 2 || rep.ByVerdict[model.VerdictNoSources] != 1 {
		t.Errorf("verdict buckets wrong: %v", rep.ByVerdict)
	}
	if len(rep.ReviewQueue) != 1 || rep.ReviewQueue[0].EntryID != "c" {
		t.Errorf("only failures belong in the review queue: %v", rep.ReviewQueue)
	}
}

func TestAggregate_DomainDeadCause(t *testing.T) {
	rep := Aggregate([]model.VerificationResult{{
		EntryID: "a",
		Verdict: model.VerdictInaccessible,
		FetchFailures: []string{
			"https://dead.example.com: direct: dns_failure: no such host",
			"https://dead.example.com: stealth: dns_failure: no such host",
		},
	}})

	if rep.ByCause[model.CauseDomainDead] != 1 {
		t.Errorf("all-DNS failures should classify as dead domain: %v", rep.ByCause)
	}
}

func TestAggregate_AllBlockedCause(t *testing.T) {
	rep := Aggregate([]model.VerificationResult{{
		EntryID: "a",
		Verdict: model.VerdictInaccessible,
		FetchFailures: []string{
			"https://x.example.com: direct: blocked_content: blocked or non-viable content",
			"https://x.example.com: stealth: blocked_content: blocked or non-viable content",
		},
	}})

	if rep.ByCause[model.CauseAllBlocked] != 1 {
		t.Errorf("all-blocked failures should classify as blocked: %v", rep.ByCause)
	}
}

func TestAggregate_WrongIncidentCause(t *testing.T) {
	rep := Aggregate([]model.VerificationResult{{
		EntryID: "a",
		Verdict: model.VerdictNoMatch,
		Score:   25,
		SourceEvals: []model.SourceEval{{
			SourceName: "Local",
			Score:      25,
			Checks:     checkSet(0, 1.0, 1.0, 0),
		}},
	}})

	if rep.ByCause[model.CauseWrongIncident] != 1 {
		t.Errorf("matching place and date without the name is a wrong-incident signature: %v", rep.ByCause)
	}
}

func TestAggregate_NameAbsentCause(t *testing.T) {
	rep := Aggregate([]model.VerificationResult{{
		EntryID: "a",
		Verdict: model.VerdictNoMatch,
		Score:   10,
		SourceEvals: []model.SourceEval{
			{SourceName: "One", Score: 10, Checks: checkSet(0, 0.5, 0, 0.75)},
			{SourceName: "Two", Score: 5, Checks: checkSet(0, 0, 0, 0.75)},
		},
	}})

	if rep.ByCause[model.CauseNameAbsent] != 1 {
		t.Errorf("name missing from every source should classify as name-absent: %v", rep.ByCause)
	}
}

func TestAggregate_GenericOverviewCause(t *testing.T) {
	rep := Aggregate([]model.VerificationResult{{
		EntryID: "a",
		Verdict: model.VerdictNoMatch,
		Score:   15,
		SourceEvals: []model.SourceEval{{
			SourceName: "Overview",
			Score:      15,
			Checks: []model.CheckResult{
				{Name: "name", Applicable: false},
				{Name: "location", Applicable: true, Credit: 0.5},
				{Name: "date", Applicable: true, Credit: 0},
				{Name: "keywords", Applicable: true, Credit: 0},
			},
		}},
	}})

	if rep.ByCause[model.CauseGenericOverview] != 1 {
		t.Errorf("no incident keywords should classify as generic overview: %v", rep.ByCause)
	}
}

func TestAggregate_NoSourcesWithoutFailures(t *testing.T) {
	rep := Aggregate([]model.VerificationResult{{
		EntryID: "a",
		Verdict: model.VerdictNoSources,
	}})

	if len(rep.ReviewQueue) != 1 {
		t.Fatalf("review queue: %v", rep.ReviewQueue)
	}
	if rep.ReviewQueue[0].Cause != model.CauseUnknown {
		t.Errorf("cause = %s, want unknown", rep.ReviewQueue[0].Cause)
	}
}

func TestAggregate_FlaggedSourcesAndDegradation(t *testing.T) {
	irrelevant := false
	rep := Aggregate([]model.VerificationResult{{
		EntryID:          "a",
		Verdict:          model.VerdictVerified,
		Score:            85,
		JudgeUnavailable: true,
		SourceEvals: []model.SourceEval{{
			SourceName:    "Tangent",
			URL:           "https://x.example.com",
			JudgeRelevant: &irrelevant,
			JudgeReason:   "covers a different event",
		}},
	}})

	if rep.JudgeDegraded != 1 {
		t.Errorf("degraded runs should be counted, got %d", rep.JudgeDegraded)
	}
	if len(rep.FlaggedSources) != 1 || rep.FlaggedSources[0].SourceName != "Tangent" {
		t.Errorf("judge-flagged sources should surface: %v", rep.FlaggedSources)
	}
}

func TestAggregate_ReviewQueueSorted(t *testing.T) {
	rep := Aggregate([]model.VerificationResult{
		{EntryID: "z", Verdict: model.VerdictNoSources},
		{EntryID: "a", Verdict: model.VerdictNoSources},
		{EntryID: "m", Verdict: model.VerdictNoSources},
	})

	if len(rep.ReviewQueue) != 3 {
		t.Fatalf("queue: %v", rep.ReviewQueue)
	}
	for i, want := range []string{"a", "m", "z"} {
		if rep.ReviewQueue[i].EntryID != want {
			t.Errorf("queue[%d] = %s, want %s", i, rep.ReviewQueue[i].EntryID, want)
		}
	}
}
