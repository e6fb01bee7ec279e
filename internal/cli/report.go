package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ppiankov/crosscheck/internal/model"
	"github.com/ppiankov/crosscheck/internal/report"
	"github.com/spf13/cobra"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report <report.json>",
	Short: "Re-summarize a previous verification run",
	Long: `Report reads the JSON report of an earlier run, re-applies the
root-cause taxonomy to its per-record results, and prints the Markdown
summary to stdout. Nothing is refetched or re-verified.

Useful for re-bucketing old runs after the taxonomy changes, or for
regenerating a summary whose Markdown file was lost.

Example:
  crosscheck report reports/report-1750000000.json`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}
	var prev model.RunReport
	if err := json.Unmarshal(data, &prev); err != nil {
		return fmt.Errorf("parse report %s: %w", args[0], err)
	}

	rep := report.Aggregate(prev.Results)
	rep.GeneratedAt = prev.GeneratedAt
	fmt.Fprint(cmd.OutOrStdout(), report.Markdown(rep))
	return nil
}
