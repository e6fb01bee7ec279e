package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/crosscheck/internal/model"
	"github.com/spf13/cobra"
)

func TestRunReport_ResummarizesStoredRun(t *testing.T) {
	prev := model.RunReport{
		GeneratedAt: time.Unix(1750000000, 0).UTC(),
		Total:       2,
		Results: []model.VerificationResult{
			{EntryID: "rec-1", Verdict: model.VerdictVerified, Score: 95},
			{EntryID: "rec-2", Verdict: model.VerdictNoSources},
		},
	}
	data, err := json.Marshal(prev)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "report.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	if err := runReport(cmd, []string{path}); err != nil {
		t.Fatalf("runReport: %v", err)
	}

	// Buckets and the review queue are recomputed from the stored
	// per-record results.
	for _, want := range []string{"verified: 1", "no_sources: 1", "rec-2", "unknown"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunReport_RejectsBadInput(t *testing.T) {
	cmd := &cobra.Command{}

	if err := runReport(cmd, []string{filepath.Join(t.TempDir(), "absent.json")}); err == nil {
		t.Error("missing file must fail")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := runReport(cmd, []string{path}); err == nil {
		t.Error("unparseable report must fail")
	}
}
