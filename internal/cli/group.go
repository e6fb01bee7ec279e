package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/crosscheck/internal/group"
	"github.com/ppiankov/crosscheck/internal/model"
	"github.com/ppiankov/crosscheck/internal/store"
	"github.com/spf13/cobra"
)

var (
	groupApply  bool
	groupOutput string
)

// groupCmd represents the group command
var groupCmd = &cobra.Command{
	Use:   "group <records.json> [more.json...]",
	Short: "Group duplicate records into canonical incidents",
	Long: `Group computes connected components over the curated
related_incidents links, elects one primary record per component by
source-tier priority, and derives a stable canonical ID per group.

Structural problems (dangling links, canonical mismatches) are reported
and never halt the batch.

Example:
  crosscheck group official.json news.json
  crosscheck group official.json news.json --apply -o merged.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGroup,
}

func init() {
	rootCmd.AddCommand(groupCmd)

	groupCmd.Flags().BoolVar(&groupApply, "apply", false, "write canonical IDs and primary flags back onto the records")
	groupCmd.Flags().StringVarP(&groupOutput, "output", "o", "", "output path for updated records (requires --apply)")
}

func runGroup(cmd *cobra.Command, args []string) error {
	s, err := store.Load(args...)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	records := s.All()
	res := group.Group(records)

	multi := 0
	for _, g := range res.Groups {
		if len(g.MemberIDs) > 1 {
			multi++
		}
	}

	fmt.Fprintf(os.Stderr, "✓ Grouped %d records into %d canonical incidents (%d with duplicates)\n",
		len(records), len(res.Groups), multi)

	for _, f := range res.Findings {
		fmt.Fprintf(os.Stderr, "✗ %s\n", f)
	}

	if verbose {
		for _, g := range res.Groups {
			if len(g.MemberIDs) > 1 {
				fmt.Fprintf(os.Stderr, "  %s: primary=%s members=%v\n", g.CanonicalID, g.PrimaryID, g.MemberIDs)
			}
		}
	}

	if groupApply {
		byID := make(map[string]*model.IncidentRecord, len(records))
		for _, rec := range records {
			byID[rec.ID] = rec
		}
		group.Apply(res, byID)

		out := groupOutput
		if out == "" {
			return fmt.Errorf("--apply requires --output")
		}
		if err := s.Save(out); err != nil {
			return fmt.Errorf("save records: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote updated records: %s\n", out)
	}

	if hasCritical(res.Findings) {
		return fmt.Errorf("%d finding(s) need manual resolution", len(res.Findings))
	}
	return nil
}

func hasCritical(findings []model.Finding) bool {
	for _, f := range findings {
		if f.Severity == model.SeverityCritical {
			return true
		}
	}
	return false
}
