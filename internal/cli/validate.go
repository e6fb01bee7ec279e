package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/crosscheck/internal/group"
	"github.com/ppiankov/crosscheck/internal/store"
	"github.com/spf13/cobra"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <records.json> [more.json...]",
	Short: "Check structural invariants of the duplicate-link graph",
	Long: `Validate confirms, without mutating anything:
- related_incidents symmetry (A lists B implies B lists A)
- exactly one primary record per canonical group
- canonical ID consistency across linked records

Idempotent; safe to run anytime.

Example:
  crosscheck validate official.json news.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	s, err := store.Load(args...)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	findings := group.Validate(s.All())
	if len(findings) == 0 {
		fmt.Fprintf(os.Stderr, "✓ %d records, no structural problems\n", s.Len())
		return nil
	}

	for _, f := range findings {
		fmt.Fprintf(os.Stderr, "✗ [%s] %s\n", f.Severity, f)
	}
	fmt.Fprintf(os.Stderr, "\n%d finding(s) across %d records\n", len(findings), s.Len())

	if hasCritical(findings) {
		return fmt.Errorf("critical findings present")
	}
	return nil
}
