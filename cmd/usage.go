package cmd

import (
	"fmt"

	"github.com/commishdev/commish/internal/usage"
	"github.com/spf13/cobra"
)

// usageCmd reports accumulated model usage and cost across past runs.
var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Report model usage and cost",
	Long: `Report token usage and cost per pipeline operation, aggregated across
all previous runs. Records are flushed to a local JSON file after each
session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		records, err := usage.LoadFile(usagePath())
		if err != nil {
			return fmt.Errorf("failed to load usage history: %w", err)
		}

		formatter := usage.NewFormatter(format)
		report, err := formatter.FormatSummary(usage.SummarizeRecords(records))
		if err != nil {
			return fmt.Errorf("failed to format usage report: %w", err)
		}
		fmt.Print(report)
		return nil
	},
}

func init() {
	usageCmd.Flags().String("format", "text", "output format: text or json")
	rootCmd.AddCommand(usageCmd)
}
