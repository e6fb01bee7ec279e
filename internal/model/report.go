package model

import "time"

// RootCause is the fixed taxonomy applied to no_match / url_inaccessible
// results. It exists to prioritize human review, not to auto-resolve.
type RootCause string

const (
	CauseWrongIncident   RootCause = "wrong_incident_at_same_location"
	CauseNameAbsent      RootCause = "name_absent_from_any_source"
	CauseGenericOverview RootCause = "source_is_generic_overview"
	CauseDomainDead      RootCause = "domain_does_not_resolve"
	CauseAllBlocked      RootCause = "all_strategies_blocked"
	CauseUnknown         RootCause = "unknown"
)

// FlaggedSource is a citation the judge marked as topically unrelated, so
// operators can strip it from the record without discarding the record.
type FlaggedSource struct {
	EntryID    string `json:"entry_id"`
	SourceName string `json:"source_name"`
	URL        string `json:"url,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// ReviewItem is one record needing human attention, with its root cause.
type ReviewItem struct {
	EntryID string    `json:"entry_id"`
	Verdict Verdict   `json:"verdict"`
	Score   int       `json:"score"`
	Cause   RootCause `json:"cause"`
	Detail  string    `json:"detail,omitempty"`
}

// RunReport summarizes one verification run over the whole store. Every
// attempted record appears exactly once; silently missing entries are a bug.
type RunReport struct {
	GeneratedAt time.Time `json:"generated_at"`
	Total       int       `json:"total"`

	ByVerdict map[Verdict]int   `json:"by_verdict"`
	ByCause   map[RootCause]int `json:"by_cause,omitempty"`

	Results        []VerificationResult `json:"results"`
	ReviewQueue    []ReviewItem         `json:"review_queue,omitempty"`
	FlaggedSources []FlaggedSource      `json:"flagged_sources,omitempty"`

	JudgeDegraded int `json:"judge_degraded,omitempty"` // results scored mechanical-only
}
