// Package report aggregates verification results into a run-level summary
// for human review.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/crosscheck/internal/model"
)

// Aggregate buckets results by verdict, applies the root-cause taxonomy to
// failures, and surfaces judge-flagged unrelated sources. Every input
// result appears exactly once in the output.
func Aggregate(results []model.VerificationResult) *model.RunReport {
	rep := &model.RunReport{
		GeneratedAt: time.Now().UTC(),
		Total:       len(results),
		ByVerdict:   make(map[model.Verdict]int),
		ByCause:     make(map[model.RootCause]int),
		Results:     results,
	}

	for _, res := range results {
		rep.ByVerdict[res.Verdict]++
		if res.JudgeUnavailable {
			rep.JudgeDegraded++
		}

		switch res.Verdict {
		case model.VerdictNoMatch, model.VerdictInaccessible, model.VerdictNoSources:
			cause, detail := rootCause(res)
			rep.ByCause[cause]++
			rep.ReviewQueue = append(rep.ReviewQueue, model.ReviewItem{
				EntryID: res.EntryID,
				Verdict: res.Verdict,
				Score:   res.Score,
				Cause:   cause,
				Detail:  detail,
			})
		}

		for _, eval := range res.SourceEvals {
			if eval.JudgeRelevant != nil && !*eval.JudgeRelevant {
				rep.FlaggedSources = append(rep.FlaggedSources, model.FlaggedSource{
					EntryID:    res.EntryID,
					SourceName: eval.SourceName,
					URL:        eval.URL,
					Reason:     eval.JudgeReason,
				})
			}
		}
	}

	sort.Slice(rep.ReviewQueue, func(i, j int) bool {
		return rep.ReviewQueue[i].EntryID < rep.ReviewQueue[j].EntryID
	})
	return rep
}

// rootCause inspects which sub-checks passed and failed to classify a
// failure for review triage.
func rootCause(res model.VerificationResult) (model.RootCause, string) {
	if res.Verdict == model.VerdictNoSources && len(res.FetchFailures) == 0 {
		return model.CauseUnknown, "record has no retrievable or archived sources"
	}
	if res.Verdict == model.VerdictInaccessible || res.Verdict == model.VerdictNoSources {
		dns, blocked, total := 0, 0, 0
		for _, f := range res.FetchFailures {
			total++
			lower := strings.ToLower(f)
			if strings.Contains(lower, string(model.FetchDNSFailure)) || strings.Contains(lower, "no such host") {
				dns++
			}
			if strings.Contains(lower, string(model.FetchBlockedContent)) {
				blocked++
			}
		}
		switch {
		case total > 0 && dns == total:
			return model.CauseDomainDead, "every strategy failed on DNS"
		case total > 0 && blocked == total:
			return model.CauseAllBlocked, "every strategy returned blocked or non-viable content"
		default:
			return model.CauseUnknown, "mixed retrieval failures"
		}
	}

	// no_match: look at the best-scoring source's sub-checks.
	var best *model.SourceEval
	for i := range res.SourceEvals {
		if best == nil || res.SourceEvals[i].Score > best.Score {
			best = &res.SourceEvals[i]
		}
	}
	if best == nil {
		return model.CauseUnknown, "no source evaluations recorded"
	}

	var name, location, date, keywords *model.CheckResult
	for i := range best.Checks {
		c := &best.Checks[i]
		switch c.Name {
		case "name":
			name = c
		case "location":
			location = c
		case "date":
			date = c
		case "keywords":
			keywords = c
		}
	}

	switch {
	case name != nil && name.Applicable && name.Credit == 0 &&
		location != nil && location.Credit > 0 && date != nil && date.Credit > 0:
		return model.CauseWrongIncident, "location and date match but the named subject is absent"
	case name != nil && name.Applicable && nameAbsentEverywhere(res):
		return model.CauseNameAbsent, "subject name missing from every retrieved source"
	case keywords != nil && keywords.Credit == 0:
		return model.CauseGenericOverview, "no incident-type keywords in any source"
	default:
		return model.CauseUnknown, "low support across all sub-checks"
	}
}

func nameAbsentEverywhere(res model.VerificationResult) bool {
	for _, eval := range res.SourceEvals {
		for _, c := range eval.Checks {
			if c.Name == "name" && c.Credit > 0 {
				return false
			}
		}
	}
	return true
}
