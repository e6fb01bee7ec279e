package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/crosscheck/internal/model"
)

// Renderer writes run reports as timestamped JSON and Markdown files.
// Outputs are write-once per run: an existing file is never silently
// overwritten unless reset is set.
type Renderer struct {
	dir   string
	reset bool
}

// NewRenderer creates a renderer targeting dir.
func NewRenderer(dir string, reset bool) *Renderer {
	return &Renderer{dir: dir, reset: reset}
}

// Write renders both outputs and returns their paths.
func (r *Renderer) Write(rep *model.RunReport) (jsonPath, mdPath string, err error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", "", fmt.Errorf("create report dir: %w", err)
	}

	stamp := rep.GeneratedAt.Unix()
	jsonPath = filepath.Join(r.dir, fmt.Sprintf("report-%d.json", stamp))
	mdPath = filepath.Join(r.dir, fmt.Sprintf("report-%d.md", stamp))

	for _, path := range []string{jsonPath, mdPath} {
		if _, statErr := os.Stat(path); statErr == nil && !r.reset {
			return "", "", fmt.Errorf("report already exists: %s (use --reset to overwrite)", path)
		}
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(jsonPath, append(data, '\n'), 0644); err != nil {
		return "", "", fmt.Errorf("write JSON report: %w", err)
	}

	if err := os.WriteFile(mdPath, []byte(Markdown(rep)), 0644); err != nil {
		return "", "", fmt.Errorf("write Markdown report: %w", err)
	}
	return jsonPath, mdPath, nil
}

// Markdown renders the human-readable run summary.
func Markdown(rep *model.RunReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Verification Run Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", rep.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "Records verified: %d\n\n", rep.Total)

	fmt.Fprintf(&b, "## Verdicts\n\n")
	for _, v := range []model.Verdict{
		model.VerdictVerified, model.VerdictLikelyValid, model.VerdictWeakMatch,
		model.VerdictNoMatch, model.VerdictNoSources, model.VerdictInaccessible,
	} {
		if n := rep.ByVerdict[v]; n > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", v, n)
		}
	}
	if rep.JudgeDegraded > 0 {
		fmt.Fprintf(&b, "\n%d result(s) scored mechanical-only (judge unavailable).\n", rep.JudgeDegraded)
	}

	if len(rep.ByCause) > 0 {
		fmt.Fprintf(&b, "\n## Root causes\n\n")
		causes := make([]string, 0, len(rep.ByCause))
		for c := range rep.ByCause {
			causes = append(causes, string(c))
		}
		sort.Strings(causes)
		for _, c := range causes {
			fmt.Fprintf(&b, "- %s: %d\n", c, rep.ByCause[model.RootCause(c)])
		}
	}

	if len(rep.ReviewQueue) > 0 {
		fmt.Fprintf(&b, "\n## Review queue\n\n")
		fmt.Fprintf(&b, "| Entry | Verdict | Score | Cause |\n")
		fmt.Fprintf(&b, "|---|---|---|---|\n")
		for _, item := range rep.ReviewQueue {
			fmt.Fprintf(&b, "| %s | %s | %d | %s |\n", item.EntryID, item.Verdict, item.Score, item.Cause)
		}
	}

	if len(rep.FlaggedSources) > 0 {
		fmt.Fprintf(&b, "\n## Flagged sources (judge: topically unrelated)\n\n")
		for _, f := range rep.FlaggedSources {
			fmt.Fprintf(&b, "- %s / %s: %s\n", f.EntryID, f.SourceName, f.Reason)
		}
	}

	b.WriteString("\n")
	return b.String()
}
