package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/crosscheck/internal/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MergesFiles(t *testing.T) {
	dir := t.TempDir()
	official := writeFile(t, dir, "official.json",
		`[{"id": "rec-1", "source_tier": 1, "date": "2025-06-10"}]`)
	regional := writeFile(t, dir, "regional.json",
		`[{"id": "rec-2", "source_tier": 3}, {"id": "rec-3", "source_tier": 3}]`)

	s, err := Load(official, regional)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Len() != 3 {
		t.Errorf("expected 3 records, got %d", s.Len())
	}
	rec, ok := s.Get("rec-1")
	if !ok || rec.SourceTier != model.TierOfficial {
		t.Errorf("rec-1 not loaded correctly: %+v", rec)
	}
}

func TestLoad_DuplicateIDFails(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `[{"id": "rec-1", "source_tier": 1}]`)
	b := writeFile(t, dir, "b.json", `[{"id": "rec-1", "source_tier": 2}]`)

	if _, err := Load(a, b); err == nil {
		t.Fatal("duplicate ID across files must fail the load")
	}
}

func TestLoad_InvalidTierFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.json", `[{"id": "rec-1", "source_tier": 9}]`)

	if _, err := Load(path); err == nil {
		t.Fatal("out-of-range tier must fail the load")
	}
}

func TestLoad_NormalizesIncidentType(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "odd.json",
		`[{"id": "rec-1", "source_tier": 2, "incident_type": "ufo sighting"}]`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rec, _ := s.Get("rec-1")
	if rec.IncidentType != model.IncidentOther {
		t.Errorf("unrecognized incident type should normalize to other, got %s", rec.IncidentType)
	}
}

func TestIDs_Sorted(t *testing.T) {
	s := New()
	for _, id := range []string{"c", "a", "b"} {
		if err := s.Add(&model.IncidentRecord{ID: id, SourceTier: model.TierAdHoc}); err != nil {
			t.Fatal(err)
		}
	}
	ids := s.IDs()
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("IDs not sorted: %v", ids)
	}
}

func TestQuarantine_RetainsRecord(t *testing.T) {
	s := New()
	if err := s.Add(&model.IncidentRecord{
		ID:         "rec-1",
		SourceTier: model.TierAdHoc,
		VictimName: "Jane Doe",
		City:       "Springfield",
		Sources:    []model.Source{{URL: "https://news.example.com/a"}},
	}); err != nil {
		t.Fatal(err)
	}

	if err := s.Quarantine("rec-1", "suspected fabrication"); err != nil {
		t.Fatalf("Quarantine: %v", err)
	}

	if _, ok := s.Get("rec-1"); ok {
		t.Error("quarantined record must leave the active set")
	}
	if s.Len() != 0 {
		t.Errorf("Len should exclude quarantined records, got %d", s.Len())
	}
	q := s.Quarantined()
	if q["rec-1"] != "suspected fabrication" {
		t.Errorf("quarantine reason not retained: %v", q)
	}

	// The full record survives, not just the reason.
	rec, reason, ok := s.QuarantinedRecord("rec-1")
	if !ok {
		t.Fatal("quarantined record not retrievable")
	}
	if reason != "suspected fabrication" {
		t.Errorf("reason = %q", reason)
	}
	if rec.VictimName != "Jane Doe" || rec.City != "Springfield" || len(rec.Sources) != 1 {
		t.Errorf("quarantined record lost data: %+v", rec)
	}

	if _, _, ok := s.QuarantinedRecord("rec-ghost"); ok {
		t.Error("unknown ID must not resolve")
	}
	if err := s.Quarantine("ghost", "x"); err == nil {
		t.Error("quarantining an unknown ID must fail")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	s := New()
	if err := s.Add(&model.IncidentRecord{
		ID: "rec-1", SourceTier: model.TierInvestigative, VictimName: "Jane Doe",
	}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load after Save: %v", err)
	}
	rec, ok := loaded.Get("rec-1")
	if !ok || rec.VictimName != "Jane Doe" {
		t.Errorf("round trip lost data: %+v", rec)
	}
}
