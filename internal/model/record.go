package model

import (
	"fmt"
	"sort"
)

// SourceTier is the evidentiary quality of a record's origin.
// Lower is better: tier 1 is official/government data, tier 4 ad-hoc news.
type SourceTier int

const (
	TierOfficial      SourceTier = 1 // government / official records
	TierInvestigative SourceTier = 2 // investigative journalism databases
	TierRegional      SourceTier = 3 // established regional outlets
	TierAdHoc         SourceTier = 4 // one-off news reports
)

func (t SourceTier) String() string {
	switch t {
	case TierOfficial:
		return "official"
	case TierInvestigative:
		return "investigative"
	case TierRegional:
		return "regional"
	case TierAdHoc:
		return "adhoc"
	default:
		return "unknown"
	}
}

// Valid reports whether the tier is inside the 1-4 ordinal range.
func (t SourceTier) Valid() bool {
	return t >= TierOfficial && t <= TierAdHoc
}

// IncidentType is the closed set of incident categories. Each type carries
// its own keyword set for the verification keyword sub-check, so adding a
// category is a single case in Keywords.
type IncidentType string

const (
	IncidentShooting IncidentType = "shooting"
	IncidentDeath    IncidentType = "death"
	IncidentAssault  IncidentType = "assault"
	IncidentArrest   IncidentType = "arrest"
	IncidentRaid     IncidentType = "raid"
	IncidentOther    IncidentType = "other"
)

// Keywords returns the domain keywords whose presence in source text
// supports a record of this type.
func (it IncidentType) Keywords() []string {
	switch it {
	case IncidentShooting:
		return []string{"shot", "shooting", "gunfire", "gunshot", "fired", "firearm"}
	case IncidentDeath:
		return []string{"died", "death", "killed", "fatal", "dead", "pronounced"}
	case IncidentAssault:
		return []string{"assault", "assaulted", "beaten", "attacked", "injured", "struck"}
	case IncidentArrest:
		return []string{"arrest", "arrested", "detained", "custody", "charged", "booked"}
	case IncidentRaid:
		return []string{"raid", "raided", "warrant", "search", "seized", "agents"}
	default:
		return []string{"incident", "police", "officer", "officers", "investigation"}
	}
}

// ParseIncidentType maps free-text type strings onto the closed enum.
// Unrecognized values become IncidentOther rather than failing the load.
func ParseIncidentType(s string) IncidentType {
	switch IncidentType(s) {
	case IncidentShooting, IncidentDeath, IncidentAssault, IncidentArrest, IncidentRaid:
		return IncidentType(s)
	default:
		return IncidentOther
	}
}

// Source is one citation attached to a record. At most one entry per record
// may be marked primary; multiple independent citations are allowed.
type Source struct {
	URL         string     `json:"url"`
	Name        string     `json:"name,omitempty"`
	Tier        SourceTier `json:"tier,omitempty"`
	Primary     bool       `json:"primary,omitempty"`
	Archived    bool       `json:"archived,omitempty"`
	ArchivePath string     `json:"archive_path,omitempty"`
}

// IncidentRecord is one report of a real-world event as ingested from a
// tier-partitioned subset. Identity comes only from ID and the curated
// related-incident links; descriptive fields are verification evidence.
type IncidentRecord struct {
	ID         string     `json:"id"`
	SourceTier SourceTier `json:"source_tier"`

	// CanonicalIncidentID is shared by every record describing the same
	// event. Defaults to the record's own ID when it has no duplicates.
	CanonicalIncidentID string `json:"canonical_incident_id,omitempty"`

	// IsPrimaryRecord is true on exactly one member of each canonical group.
	IsPrimaryRecord bool `json:"is_primary_record,omitempty"`

	// RelatedIncidents lists other record IDs curated as describing the
	// same event. Symmetry is a validation invariant, not enforced on write.
	RelatedIncidents []string `json:"related_incidents,omitempty"`

	Date         string       `json:"date,omitempty"` // YYYY-MM-DD
	State        string       `json:"state,omitempty"`
	City         string       `json:"city,omitempty"`
	IncidentType IncidentType `json:"incident_type,omitempty"`
	Outcome      string       `json:"outcome,omitempty"`
	VictimName   string       `json:"victim_name,omitempty"`
	Agency       string       `json:"agency,omitempty"`
	Description  string       `json:"description,omitempty"`

	Sources []Source `json:"sources,omitempty"`
}

// Validate checks construction-time invariants so schema violations fail at
// load time instead of surfacing as silent defaults during verification.
func (r *IncidentRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("record has empty id")
	}
	if !r.SourceTier.Valid() {
		return fmt.Errorf("record %s: source_tier %d outside 1-4", r.ID, r.SourceTier)
	}
	primaries := 0
	for i, s := range r.Sources {
		if s.URL == "" {
			return fmt.Errorf("record %s: source %d has empty url", r.ID, i)
		}
		if s.Primary {
			primaries++
		}
	}
	if primaries > 1 {
		return fmt.Errorf("record %s: %d sources marked primary, at most 1 allowed", r.ID, primaries)
	}
	for _, rel := range r.RelatedIncidents {
		if rel == r.ID {
			return fmt.Errorf("record %s: related_incidents references itself", r.ID)
		}
	}
	r.IncidentType = ParseIncidentType(string(r.IncidentType))
	return nil
}

// RelatedSet returns the related-incident IDs as a set for symmetry checks.
func (r *IncidentRecord) RelatedSet() map[string]bool {
	set := make(map[string]bool, len(r.RelatedIncidents))
	for _, id := range r.RelatedIncidents {
		set[id] = true
	}
	return set
}

// CanonicalGroup is the derived set of records sharing one canonical ID.
type CanonicalGroup struct {
	CanonicalID string   `json:"canonical_id"`
	MemberIDs   []string `json:"member_ids"`
	PrimaryID   string   `json:"primary_id"`
}

// SortMembers orders member IDs lexicographically for stable output.
func (g *CanonicalGroup) SortMembers() {
	sort.Strings(g.MemberIDs)
}
