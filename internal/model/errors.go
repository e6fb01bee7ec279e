package model

import "fmt"

// FindingKind classifies structural problems reported by grouping and
// validation. Findings are surfaced for manual resolution, never auto-fixed.
type FindingKind string

const (
	// FindingDanglingReference: a related_incidents link points at a record
	// that does not exist. The edge is excluded from grouping; the batch
	// continues.
	FindingDanglingReference FindingKind = "dangling_reference"

	// FindingCanonicalMismatch: linked records disagree on an already
	// assigned canonical_incident_id. Ambiguous which is correct.
	FindingCanonicalMismatch FindingKind = "canonical_mismatch"

	// FindingAsymmetricLink: A lists B but B does not list A.
	FindingAsymmetricLink FindingKind = "asymmetric_link"

	// FindingPrimaryCount: a canonical group has zero or multiple primary
	// records.
	FindingPrimaryCount FindingKind = "primary_count"
)

// FindingSeverity separates findings that block a batch from ones that
// only need eventual cleanup.
type FindingSeverity string

const (
	SeverityWarning  FindingSeverity = "warning"
	SeverityCritical FindingSeverity = "critical"
)

// Finding is one typed validation/grouping problem.
type Finding struct {
	Kind     FindingKind     `json:"kind"`
	Severity FindingSeverity `json:"severity"`
	RecordID string          `json:"record_id"`
	OtherID  string          `json:"other_id,omitempty"`
	Detail   string          `json:"detail,omitempty"`
}

func (f Finding) String() string {
	if f.OtherID != "" {
		return fmt.Sprintf("%s: %s -> %s: %s", f.Kind, f.RecordID, f.OtherID, f.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", f.Kind, f.RecordID, f.Detail)
}

// FetchErrorKind classifies one failed retrieval attempt.
type FetchErrorKind string

const (
	FetchTimeout           FetchErrorKind = "timeout"
	FetchConnectionRefused FetchErrorKind = "connection_refused"
	FetchDNSFailure        FetchErrorKind = "dns_failure"
	FetchHTTP4xx           FetchErrorKind = "http_4xx"
	FetchHTTP5xx           FetchErrorKind = "http_5xx"
	FetchBlockedContent    FetchErrorKind = "blocked_content"
	FetchOther             FetchErrorKind = "other"
)

// FetchError is one per-strategy failure. All strategies failing yields the
// terminal url_inaccessible state for that run.
type FetchError struct {
	Strategy string         `json:"strategy"`
	Kind     FetchErrorKind `json:"kind"`
	Message  string         `json:"message"`
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Strategy, e.Kind, e.Message)
}
