package report

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/crosscheck/internal/model"
)

func sampleReport() *model.RunReport {
	return &model.RunReport{
		GeneratedAt: time.Unix(1750000000, 0).UTC(),
		Total:       2,
		ByVerdict: map[model.Verdict]int{
			model.VerdictVerified: 1,
			model.VerdictNoMatch:  1,
		},
		ByCause: map[model.RootCause]int{
			model.CauseWrongIncident: 1,
		},
		ReviewQueue: []model.ReviewItem{
			{EntryID: "rec-2", Verdict: model.VerdictNoMatch, Score: 25, Cause: model.CauseWrongIncident},
		},
	}
}

func TestRenderer_WritesBothFormats(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir, false)

	jsonPath, mdPath, err := r.Write(sampleReport())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var parsed model.RunReport
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("JSON report not parseable: %v", err)
	}
	if parsed.Total != 2 {
		t.Errorf("round-tripped total = %d, want 2", parsed.Total)
	}

	md, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"verified: 1", "no_match: 1", "wrong_incident_at_same_location", "rec-2"} {
		if !strings.Contains(string(md), want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderer_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	rep := sampleReport()

	if _, _, err := NewRenderer(dir, false).Write(rep); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewRenderer(dir, false).Write(rep); err == nil {
		t.Error("second write of the same run must fail without reset")
	}
	if _, _, err := NewRenderer(dir, true).Write(rep); err != nil {
		t.Errorf("reset should allow overwrite: %v", err)
	}
}
