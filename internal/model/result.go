package model

import "time"

// Verdict classifies how well retrieved source text supports a record.
type Verdict string

const (
	VerdictVerified    Verdict = "verified"
	VerdictLikelyValid Verdict = "likely_valid"
	VerdictWeakMatch   Verdict = "weak_match"
	VerdictNoMatch     Verdict = "no_match"

	// VerdictNoSources means no source text was retrievable or archived.
	// A pipeline problem, distinct from a content problem.
	VerdictNoSources Verdict = "no_sources"

	// VerdictInaccessible means every retrieval strategy failed for every
	// citation on the record.
	VerdictInaccessible Verdict = "url_inaccessible"
)

// CheckResult is one mechanical sub-check with partial credit.
// Credit is 0..1 of the check's weight.
type CheckResult struct {
	Name       string  `json:"name"` // name, location, date, keywords
	Applicable bool    `json:"applicable"`
	Credit     float64 `json:"credit"`
	Detail     string  `json:"detail,omitempty"`
}

// SourceEval is the per-source evaluation, mechanical plus optional judge.
type SourceEval struct {
	SourceName string        `json:"source_name"`
	URL        string        `json:"url,omitempty"`
	Score      int           `json:"score"` // 0-100, mechanical
	Checks     []CheckResult `json:"checks,omitempty"`

	// Judge fields, advisory only.
	JudgeRelevant *bool  `json:"judge_relevant,omitempty"`
	JudgeQuality  string `json:"judge_quality,omitempty"`
	JudgeReason   string `json:"judge_reason,omitempty"`
}

// Correction is a judge-suggested field fix. Never auto-applied; a human
// reviewer decides.
type Correction struct {
	Field    string `json:"field"`
	Current  string `json:"current"`
	ShouldBe string `json:"should_be"`
	Reason   string `json:"reason,omitempty"`
}

// ArticleFacts is what the judge says the article itself reports.
type ArticleFacts struct {
	Date       string   `json:"date,omitempty"`
	Location   string   `json:"location,omitempty"`
	VictimName string   `json:"victim_name,omitempty"`
	Agency     string   `json:"agency,omitempty"`
	KeyFacts   []string `json:"key_facts,omitempty"`
}

// VerificationResult is the per-record report artifact. Not persisted as
// ground truth; consumed by a human reviewer.
type VerificationResult struct {
	EntryID string  `json:"entry_id"`
	Score   int     `json:"score"` // 0-100
	Verdict Verdict `json:"verdict"`

	SourceEvals []SourceEval  `json:"source_evals,omitempty"`
	Corrections []Correction  `json:"corrections,omitempty"`
	Issues      []string      `json:"issues,omitempty"`
	ArticleSays *ArticleFacts `json:"article_says,omitempty"`
	Reasoning   string        `json:"reasoning,omitempty"`

	// JudgeUnavailable is set when the judge call failed or returned
	// unparseable output and the score is mechanical-only. Distinguishes
	// degradation from a genuine low score.
	JudgeUnavailable bool `json:"judge_unavailable,omitempty"`

	// FetchFailures lists per-strategy failure reasons when the verdict is
	// url_inaccessible.
	FetchFailures []string `json:"fetch_failures,omitempty"`

	VerifiedAt time.Time `json:"verified_at"`
}
