package group

import (
	"fmt"
	"sort"

	"github.com/ppiankov/crosscheck/internal/model"
)

// Validate checks the structural invariants of the duplicate-link graph and
// canonical assignments. Idempotent and read-only: it reports findings and
// never mutates records.
//
// Invariants checked:
//   - related_incidents symmetry (A lists B => B lists A)
//   - exactly one primary per canonical group
//   - canonical_incident_id consistent across each group
func Validate(records []*model.IncidentRecord) []model.Finding {
	byID := make(map[string]*model.IncidentRecord, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var findings []model.Finding

	// Symmetry. Dangling references are reported here too so a validation
	// pass is usable standalone, before any grouping run.
	for _, id := range ids {
		rec := byID[id]
		for _, other := range rec.RelatedIncidents {
			otherRec, ok := byID[other]
			if !ok {
				findings = append(findings, model.Finding{
					Kind:     model.FindingDanglingReference,
					Severity: model.SeverityWarning,
					RecordID: id,
					OtherID:  other,
					Detail:   "related incident does not exist",
				})
				continue
			}
			if !otherRec.RelatedSet()[id] {
				findings = append(findings, model.Finding{
					Kind:     model.FindingAsymmetricLink,
					Severity: model.SeverityWarning,
					RecordID: id,
					OtherID:  other,
					Detail:   "link is not reciprocated",
				})
			}
		}
	}

	// Primary count and canonical consistency per assigned group.
	groups := make(map[string][]string)
	for _, id := range ids {
		rec := byID[id]
		canonical := rec.CanonicalIncidentID
		if canonical == "" {
			canonical = rec.ID
		}
		groups[canonical] = append(groups[canonical], id)
	}

	canonicals := make([]string, 0, len(groups))
	for c := range groups {
		canonicals = append(canonicals, c)
	}
	sort.Strings(canonicals)

	for _, canonical := range canonicals {
		members := groups[canonical]
		primaries := 0
		for _, id := range members {
			if byID[id].IsPrimaryRecord {
				primaries++
			}
		}
		// Singleton groups with no explicit canonical assignment are
		// implicitly their own primary; only flag explicit groups.
		if len(members) == 1 && byID[members[0]].CanonicalIncidentID == "" {
			continue
		}
		if primaries != 1 {
			findings = append(findings, model.Finding{
				Kind:     model.FindingPrimaryCount,
				Severity: model.SeverityCritical,
				RecordID: members[0],
				Detail:   fmt.Sprintf("group %s has %d primary records, want exactly 1", canonical, primaries),
			})
		}
	}

	// Linked records must agree on canonical ID once assigned.
	for _, id := range ids {
		rec := byID[id]
		if rec.CanonicalIncidentID == "" {
			continue
		}
		for _, other := range rec.RelatedIncidents {
			otherRec, ok := byID[other]
			if !ok || otherRec.CanonicalIncidentID == "" {
				continue
			}
			if id < other && rec.CanonicalIncidentID != otherRec.CanonicalIncidentID {
				findings = append(findings, model.Finding{
					Kind:     model.FindingCanonicalMismatch,
					Severity: model.SeverityCritical,
					RecordID: id,
					OtherID:  other,
					Detail: fmt.Sprintf("linked records carry canonical ids %q vs %q",
						rec.CanonicalIncidentID, otherRec.CanonicalIncidentID),
				})
			}
		}
	}

	return findings
}
