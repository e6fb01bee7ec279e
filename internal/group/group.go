// Package group assigns canonical identities to incident records that
// describe the same real-world event. Grouping operates only on the curated
// related_incidents links; it never infers duplicates by fuzzy matching.
package group

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/crosscheck/internal/model"
)

// Result is the outcome of one grouping pass.
type Result struct {
	// Groups maps canonical ID to the derived group.
	Groups map[string]*model.CanonicalGroup

	// Findings lists structural problems hit during grouping. They never
	// abort the batch.
	Findings []model.Finding
}

// Group computes connected components over the related_incidents relation
// and elects a primary per component. Deterministic: identical input yields
// identical canonical IDs and primary designations.
func Group(records []*model.IncidentRecord) *Result {
	byID := make(map[string]*model.IncidentRecord, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}

	res := &Result{Groups: make(map[string]*model.CanonicalGroup)}

	uf := newUnionFind()
	for _, rec := range records {
		uf.add(rec.ID)
	}
	// Sorted iteration keeps finding order stable across runs.
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		rec := byID[id]
		for _, other := range rec.RelatedIncidents {
			if _, ok := byID[other]; !ok {
				res.Findings = append(res.Findings, model.Finding{
					Kind:     model.FindingDanglingReference,
					Severity: model.SeverityWarning,
					RecordID: rec.ID,
					OtherID:  other,
					Detail:   "related incident does not exist; edge excluded from grouping",
				})
				continue
			}
			uf.union(rec.ID, other)
		}
	}

	for _, members := range uf.components() {
		sort.Strings(members)
		primary := electPrimary(members, byID)

		var canonicalID string
		if len(members) == 1 {
			// A record with no duplicates keeps its own ID as canonical.
			canonicalID = members[0]
		} else {
			canonicalID = CanonicalID(byID[primary])
		}

		if f := checkPreassigned(members, byID, canonicalID); f != nil {
			res.Findings = append(res.Findings, *f)
		}

		g := &model.CanonicalGroup{
			CanonicalID: canonicalID,
			MemberIDs:   members,
			PrimaryID:   primary,
		}
		res.Groups[canonicalID] = g
	}

	return res
}

// electPrimary picks the authoritative member: lowest source tier first,
// then lowest ID. Insertion order never matters.
func electPrimary(members []string, byID map[string]*model.IncidentRecord) string {
	best := members[0]
	for _, id := range members[1:] {
		a, b := byID[id], byID[best]
		if a.SourceTier < b.SourceTier || (a.SourceTier == b.SourceTier && id < best) {
			best = id
		}
	}
	return best
}

// checkPreassigned reports a canonical mismatch when members arrived with a
// conflicting canonical_incident_id already assigned. The conflict is
// surfaced for manual resolution, never auto-resolved.
func checkPreassigned(members []string, byID map[string]*model.IncidentRecord, canonicalID string) *model.Finding {
	for _, id := range members {
		rec := byID[id]
		pre := rec.CanonicalIncidentID
		if pre == "" || pre == rec.ID || pre == canonicalID {
			continue
		}
		return &model.Finding{
			Kind:     model.FindingCanonicalMismatch,
			Severity: model.SeverityCritical,
			RecordID: id,
			Detail:   fmt.Sprintf("pre-assigned canonical id %q disagrees with computed %q", pre, canonicalID),
		}
	}
	return nil
}

// CanonicalID derives a stable canonical identifier from the primary
// record's identifying fields. Re-running after a new duplicate joins the
// group yields the same ID as long as the primary's fields are unchanged.
func CanonicalID(primary *model.IncidentRecord) string {
	key := strings.ToLower(strings.Join([]string{
		primary.Date,
		primary.State,
		primary.City,
		string(primary.IncidentType),
	}, "|"))
	if strings.Trim(key, "|") == "" {
		return primary.ID
	}
	sum := sha256.Sum256([]byte(key))
	return "ci-" + hex.EncodeToString(sum[:])[:12]
}

// Apply writes the grouping result back onto the records: canonical IDs and
// the exactly-one-primary designation per group.
func Apply(res *Result, byID map[string]*model.IncidentRecord) {
	for _, g := range res.Groups {
		for _, id := range g.MemberIDs {
			rec, ok := byID[id]
			if !ok {
				continue
			}
			rec.CanonicalIncidentID = g.CanonicalID
			rec.IsPrimaryRecord = id == g.PrimaryID
		}
	}
}
